package worker

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"
)

type tracked struct {
	m    kafka.Message
	done bool
}

// offsetTracker commits a partition's offset only once every message fetched
// before it on that partition is done. A message that is never marked done
// holds back all later commits on its partition.
type offsetTracker struct {
	mu      sync.Mutex
	pending map[int][]*tracked
}

func newOffsetTracker() *offsetTracker {
	return &offsetTracker{pending: map[int][]*tracked{}}
}

func (t *offsetTracker) add(m kafka.Message) *tracked {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr := &tracked{m: m}
	t.pending[m.Partition] = append(t.pending[m.Partition], tr)
	return tr
}

// complete marks tr done and commits the highest contiguous done message of its
// partition. Commits run under the lock so offsets never move backwards.
func (t *offsetTracker) complete(ctx context.Context, tr *tracked, commit func(context.Context, kafka.Message) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr.done = true

	p := tr.m.Partition
	queue := t.pending[p]
	n := 0
	for n < len(queue) && queue[n].done {
		n++
	}
	if n == 0 {
		return nil
	}
	if err := commit(ctx, queue[n-1].m); err != nil {
		return err
	}
	t.pending[p] = queue[n:]
	return nil
}
