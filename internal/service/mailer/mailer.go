package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/samirwankhede/roomstats/internal/mailer"
	"github.com/samirwankhede/roomstats/internal/metrics"
)

var ErrNoRecipient = errors.New("report recipient not configured")

type MailerService struct {
	log    *zap.Logger
	sender mailer.Sender
	to     string
}

func NewMailerService(log *zap.Logger, sender mailer.Sender, to string) *MailerService {
	return &MailerService{
		log:    log,
		sender: sender,
		to:     to,
	}
}

// SendDailyReport mails the text report of one date.
func (m *MailerService) SendDailyReport(ctx context.Context, date, report string) error {
	if m.to == "" {
		return ErrNoRecipient
	}
	mail := mailer.Mail{
		To:      m.to,
		Subject: fmt.Sprintf("[스터디룸] %s 일일 통계", date),
		Body:    report,
	}

	if err := m.sender.Send(ctx, mail); err != nil {
		metrics.ReportMailsTotal.WithLabelValues("error").Inc()
		m.log.Error("Failed to send daily report", zap.Error(err), zap.String("email", m.to), zap.String("date", date))
		return err
	}

	metrics.ReportMailsTotal.WithLabelValues("sent").Inc()
	m.log.Info("Daily report sent", zap.String("email", m.to), zap.String("date", date))
	return nil
}
