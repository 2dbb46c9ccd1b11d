package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"path/filepath"
	"sync"
	"time"

	"log/slog"

	"karaokeforge/internal/config"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/queue"
	"karaokeforge/internal/workflow"
	"karaokeforge/internal/workset"
)

// SocketPath returns the control socket location for this configuration.
// It lives next to the daemon's instance lock.
func SocketPath(cfg *config.Config) string {
	dir := cfg.Paths.LogDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "karaokeforge.sock")
}

// Server exposes queue intake via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, manager *workflow.Manager, store *queue.Store, logger *slog.Logger) (*Server, error) {
	if manager == nil || store == nil {
		return nil, errors.New("ipc server requires manager and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(logging.String(logging.FieldComponent, "ipc"))

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("socket directory: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	if err := rpcServer.RegisterName("Karaoke", &service{manager: manager, store: store, logger: logger}); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
		)
	}
}

type service struct {
	manager *workflow.Manager
	store   *queue.Store
	logger  *slog.Logger
}

func (s *service) Enqueue(req EnqueueRequest, resp *EnqueueResponse) error {
	if req.Folder == "" {
		return errors.New("enqueue requires a folder")
	}
	mode, ok := workset.ParseMode(req.Mode)
	if !ok {
		return fmt.Errorf("unknown mode %q", req.Mode)
	}
	job, err := s.manager.Enqueue(queue.Job{
		Artist:    req.Artist,
		Title:     req.Title,
		Folder:    req.Folder,
		Mode:      mode,
		SourceURL: req.SourceURL,
		SongID:    req.SongID,
	})
	if err != nil {
		return err
	}
	s.logger.Info("job enqueued via ipc",
		logging.String(logging.FieldJobID, job.ID.String()),
		logging.String("folder", job.Folder),
	)
	resp.Job = summarize(job)
	return nil
}

func (s *service) QueueList(_ QueueListRequest, resp *QueueListResponse) error {
	jobs := s.store.List()
	resp.Jobs = make([]JobSummary, 0, len(jobs))
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, summarize(job))
	}
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.PID = os.Getpid()
	resp.Pending = s.store.Pending()
	resp.Total = len(s.store.List())
	return nil
}

func summarize(job queue.Job) JobSummary {
	return JobSummary{
		ID:         job.ID.String(),
		Artist:     job.Artist,
		Title:      job.Title,
		Folder:     job.Folder,
		Mode:       string(job.Mode),
		SourceURL:  job.SourceURL,
		SongID:     job.SongID,
		Status:     string(job.Status),
		EnqueuedAt: job.EnqueuedAt.Format(time.RFC3339),
	}
}
