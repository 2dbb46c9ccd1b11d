package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"karaokeforge/internal/queue"
	"karaokeforge/internal/workset"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	store := queue.NewStore(4)
	first, err := store.Enqueue(queue.Job{Artist: "A", Title: "one", Mode: workset.ModeFile})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	second, err := store.Enqueue(queue.Job{Artist: "B", Title: "two", Mode: workset.ModeFile})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	got, ok := store.Dequeue(context.Background())
	if !ok || got.ID != first.ID {
		t.Fatalf("dequeued %v, want %v", got.ID, first.ID)
	}
	got, ok = store.Dequeue(context.Background())
	if !ok || got.ID != second.ID {
		t.Fatalf("dequeued %v, want %v", got.ID, second.ID)
	}
}

func TestEnqueueNeverBlocksPastCapacity(t *testing.T) {
	store := queue.NewStore(1)
	if _, err := store.Enqueue(queue.Job{Title: "fits"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		_, err := store.Enqueue(queue.Job{Title: "overflow"})
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, queue.ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}

func TestDequeueHonorsContext(t *testing.T) {
	store := queue.NewStore(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := store.Dequeue(ctx); ok {
		t.Fatal("dequeue returned a job from an empty queue")
	}
}

func TestSetStatusAndList(t *testing.T) {
	store := queue.NewStore(4)
	job, _ := store.Enqueue(queue.Job{Title: "one"})
	time.Sleep(time.Millisecond)
	store.Enqueue(queue.Job{Title: "two"})

	store.SetStatus(job.ID, queue.StatusSeparating)
	jobs := store.List()
	if len(jobs) != 2 {
		t.Fatalf("list = %d jobs", len(jobs))
	}
	if jobs[0].Title != "one" || jobs[0].Status != queue.StatusSeparating {
		t.Fatalf("first job = %+v", jobs[0])
	}
	if jobs[1].Status != queue.StatusPending {
		t.Fatalf("second job status = %s", jobs[1].Status)
	}
}

func TestTerminal(t *testing.T) {
	for status, want := range map[queue.Status]bool{
		queue.StatusPending:      false,
		queue.StatusTranscribing: false,
		queue.StatusFinished:     true,
		queue.StatusFailed:       true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("Terminal(%s) = %v", status, got)
		}
	}
}

func TestEnqueueVisibleBeforeDequeue(t *testing.T) {
	store := queue.NewStore(1)
	for i := 0; i < 50; i++ {
		accepted := make(chan queue.Job)
		go func() {
			job, ok := store.Dequeue(context.Background())
			if ok {
				store.SetStatus(job.ID, queue.StatusDownloading)
			}
			accepted <- job
		}()

		job, err := store.Enqueue(queue.Job{Title: "race", Mode: workset.ModeFile})
		if err != nil {
			t.Fatalf("enqueue: %v", err)
		}
		dequeued := <-accepted
		if dequeued.ID != job.ID {
			t.Fatalf("dequeued %v, want %v", dequeued.ID, job.ID)
		}
		got, ok := store.Get(job.ID)
		if !ok {
			t.Fatal("job missing from snapshot")
		}
		if got.Status != queue.StatusDownloading {
			t.Fatalf("status = %q, want %q; transition raced the snapshot write", got.Status, queue.StatusDownloading)
		}
	}
}

func TestRejectedEnqueueLeavesNoSnapshot(t *testing.T) {
	store := queue.NewStore(1)
	if _, err := store.Enqueue(queue.Job{Title: "fits"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := store.Enqueue(queue.Job{Title: "overflow"}); !errors.Is(err, queue.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if jobs := store.List(); len(jobs) != 1 || jobs[0].Title != "fits" {
		t.Fatalf("rejected job leaked into snapshot: %v", jobs)
	}
}
