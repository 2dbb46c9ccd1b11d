package ipc_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"karaokeforge/internal/config"
	"karaokeforge/internal/ipc"
	"karaokeforge/internal/notifications"
	"karaokeforge/internal/queue"
	"karaokeforge/internal/workflow"
)

func TestServerClientRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	store := queue.NewStore(4)
	notifier := notifications.NewService(&cfg, nil)
	// The manager is never started; enqueued jobs stay pending for the
	// duration of the test.
	manager := workflow.NewManager(&cfg, store, notifier, nil, workflow.Stages{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "karaokeforge.sock")
	srv, err := ipc.NewServer(ctx, socket, manager, store, nil)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping ipc server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	enq, err := client.Enqueue(ipc.EnqueueRequest{
		Artist: "Band",
		Title:  "Song",
		Folder: "band-song",
		Mode:   "usdb",
		SongID: 4242,
	})
	if err != nil {
		t.Fatalf("Enqueue RPC failed: %v", err)
	}
	if enq.Job.ID == "" || enq.Job.Status != string(queue.StatusPending) {
		t.Fatalf("unexpected job summary: %+v", enq.Job)
	}
	if enq.Job.SongID != 4242 {
		t.Fatalf("song id lost on the wire: %+v", enq.Job)
	}

	list, err := client.QueueList()
	if err != nil {
		t.Fatalf("QueueList RPC failed: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != enq.Job.ID {
		t.Fatalf("queue list = %+v", list.Jobs)
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if status.PID <= 0 || status.Pending != 1 || status.Total != 1 {
		t.Fatalf("status = %+v", status)
	}
}

func TestEnqueueRejectsBadRequests(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LibraryDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	store := queue.NewStore(4)
	manager := workflow.NewManager(&cfg, store, notifications.NewService(&cfg, nil), nil, workflow.Stages{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	socket := filepath.Join(cfg.Paths.LogDir, "karaokeforge.sock")
	srv, err := ipc.NewServer(ctx, socket, manager, store, nil)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping ipc server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	time.Sleep(50 * time.Millisecond)

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})

	if _, err := client.Enqueue(ipc.EnqueueRequest{Mode: "file"}); err == nil {
		t.Fatal("expected error for missing folder")
	}
	if _, err := client.Enqueue(ipc.EnqueueRequest{Folder: "x", Mode: "sideways"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
	if len(store.List()) != 0 {
		t.Fatalf("rejected requests reached the queue: %v", store.List())
	}
}
