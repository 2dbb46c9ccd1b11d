package queue

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"karaokeforge/internal/workset"
)

// Status is the externally reported job state. The values double as the
// status strings sent to the notification sink; the sink treats them as
// free-form text, not a closed enum.
type Status string

const (
	StatusPending      Status = "pending"
	StatusDownloading  Status = "downloading"
	StatusSeparating   Status = "separating"
	StatusDereverbing  Status = "dereverbing"
	StatusTranscribing Status = "transcribing"
	StatusFinished     Status = "finished"
	StatusFailed       Status = "failed"
)

// Terminal reports whether the status ends a job's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusFailed
}

// Job is the flattened description handed to the queue; the worker expands
// it into a full working-set descriptor when it dequeues.
type Job struct {
	ID         uuid.UUID
	Artist     string
	Title      string
	Folder     string
	Mode       workset.Mode
	SourceURL  string
	SongID     int
	Status     Status
	EnqueuedAt time.Time
}

// ErrQueueFull is returned when the bounded queue cannot accept another job.
// Producers report it upstream instead of blocking.
var ErrQueueFull = errors.New("queue full")

// Store is the in-memory FIFO job queue: a bounded channel for the single
// worker plus a snapshot map for status reporting. There is no persistence;
// job state lives only for the duration of processing.
type Store struct {
	jobs chan Job

	mu       sync.Mutex
	snapshot map[uuid.UUID]Job
}

// NewStore creates a queue bounded at capacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	return &Store{
		jobs:     make(chan Job, capacity),
		snapshot: make(map[uuid.UUID]Job),
	}
}

// Enqueue accepts a job without blocking. A zero ID and enqueue time are
// filled in; status starts pending.
func (s *Store) Enqueue(job Job) (Job, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}
	job.Status = StatusPending

	// Snapshot first: the worker may dequeue and transition the job before
	// this function returns, and SetStatus must find it.
	s.mu.Lock()
	s.snapshot[job.ID] = job
	s.mu.Unlock()

	select {
	case s.jobs <- job:
	default:
		s.mu.Lock()
		delete(s.snapshot, job.ID)
		s.mu.Unlock()
		return Job{}, ErrQueueFull
	}
	return job, nil
}

// Dequeue blocks until a job is available or the context ends.
func (s *Store) Dequeue(ctx context.Context) (Job, bool) {
	select {
	case job, ok := <-s.jobs:
		return job, ok
	case <-ctx.Done():
		return Job{}, false
	}
}

// SetStatus updates the reported status of a job. Terminal jobs stay in the
// snapshot so the CLI can show recent history.
func (s *Store) SetStatus(id uuid.UUID, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.snapshot[id]
	if !ok {
		return
	}
	job.Status = status
	s.snapshot[id] = job
}

// Get returns the snapshot of one job.
func (s *Store) Get(id uuid.UUID) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.snapshot[id]
	return job, ok
}

// List returns all known jobs in enqueue order.
func (s *Store) List() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Job, 0, len(s.snapshot))
	for _, job := range s.snapshot {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnqueuedAt.Equal(out[j].EnqueuedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].EnqueuedAt.Before(out[j].EnqueuedAt)
	})
	return out
}

// Pending counts jobs waiting in the channel, the queue position a producer
// reports back.
func (s *Store) Pending() int {
	return len(s.jobs)
}
