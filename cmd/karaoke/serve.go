package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"karaokeforge/internal/daemon"
	"karaokeforge/internal/ipc"
	"karaokeforge/internal/logging"
	"karaokeforge/internal/notifications"
	"karaokeforge/internal/preflight"
	"karaokeforge/internal/queue"
	"karaokeforge/internal/workflow"
)

func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the processing daemon",
		Long:  "serve starts the single-worker pipeline daemon and processes queued song folders until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdCtx.cfg

			if !skipPreflight {
				results := preflight.Run(cfg)
				if !preflight.Passed(results) {
					fmt.Fprintln(cmd.ErrOrStderr(), renderPreflight(results))
					return fmt.Errorf("preflight checks failed")
				}
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := queue.NewStore(cfg.Workflow.QueueCapacity)
			notifier := notifications.NewService(cfg, logger)
			defer notifier.Close()

			manager := workflow.NewManager(cfg, store, notifier, logger, workflow.DefaultStages(cfg, logger))

			ipcServer, err := ipc.NewServer(ctx, ipc.SocketPath(cfg), manager, store, logger)
			if err != nil {
				return fmt.Errorf("start ipc server: %w", err)
			}
			ipcServer.Serve()
			defer ipcServer.Close()

			return daemon.New(cfg, logger, manager).Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "start even when preflight checks fail")

	return cmd
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		status := "ok"
		if !res.OK {
			status = "failed"
		}
		rows = append(rows, []string{res.Name, status, res.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows)
}
