package kafkax

import (
	"context"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}}
}

func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	msg := kafka.Message{
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}
	return p.writer.WriteMessages(ctx, msg)
}

// PublishCollectJobs writes all jobs in one batch, keyed by date so repeated
// requests for a day land on one partition in order.
func (p *Producer) PublishCollectJobs(ctx context.Context, jobs []CollectJob) error {
	msgs := make([]kafka.Message, 0, len(jobs))
	now := time.Now()
	for _, j := range jobs {
		b, err := j.Encode()
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{Key: []byte(j.Date), Value: b, Time: now})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Producer) Close() error { return p.writer.Close() }

// Brokers splits a comma separated broker list; an empty string yields none.
func Brokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
