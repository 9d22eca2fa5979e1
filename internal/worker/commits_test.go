package worker

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestOffsetTracker_CommitsInFetchOrder(t *testing.T) {
	var commits []int64
	commit := func(_ context.Context, m kafka.Message) error {
		commits = append(commits, m.Offset)
		return nil
	}
	tr := newOffsetTracker()
	first := tr.add(kafka.Message{Partition: 0, Offset: 10})
	second := tr.add(kafka.Message{Partition: 0, Offset: 11})
	third := tr.add(kafka.Message{Partition: 0, Offset: 12})

	if err := tr.complete(context.Background(), second, commit); err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("Expected no commit while offset 10 is running, got %v", commits)
	}

	if err := tr.complete(context.Background(), first, commit); err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}
	if len(commits) != 1 || commits[0] != 11 {
		t.Errorf("Expected a single commit at 11, got %v", commits)
	}

	if err := tr.complete(context.Background(), third, commit); err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}
	if len(commits) != 2 || commits[1] != 12 {
		t.Errorf("Expected a commit at 12, got %v", commits)
	}
}

func TestOffsetTracker_PartitionsAreIndependent(t *testing.T) {
	var commits []kafka.Message
	commit := func(_ context.Context, m kafka.Message) error {
		commits = append(commits, m)
		return nil
	}
	tr := newOffsetTracker()
	tr.add(kafka.Message{Partition: 0, Offset: 5})
	other := tr.add(kafka.Message{Partition: 1, Offset: 7})

	if err := tr.complete(context.Background(), other, commit); err != nil {
		t.Fatalf("Failed to complete: %v", err)
	}
	if len(commits) != 1 || commits[0].Partition != 1 || commits[0].Offset != 7 {
		t.Errorf("Expected partition 1 committed at 7, got %v", commits)
	}
}
