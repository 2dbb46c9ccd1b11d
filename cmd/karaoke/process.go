package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"karaokeforge/internal/logging"
	"karaokeforge/internal/notifications"
	"karaokeforge/internal/queue"
	"karaokeforge/internal/workflow"
	"karaokeforge/internal/workset"
)

func newProcessCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		artist    string
		title     string
		modeFlag  string
		sourceURL string
		songID    int
	)

	cmd := &cobra.Command{
		Use:   "process <folder>",
		Short: "Process a single song folder and exit",
		Long:  "process runs the full pipeline for one folder without starting the daemon. The folder is resolved against the library directory unless it is an absolute path.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cmdCtx.cfg

			mode, ok := workset.ParseMode(modeFlag)
			if !ok {
				return fmt.Errorf("unknown mode %q", modeFlag)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store := queue.NewStore(1)
			notifier := notifications.NewService(cfg, logger)
			defer notifier.Close()

			manager := workflow.NewManager(cfg, store, notifier, logger, workflow.DefaultStages(cfg, logger))
			manager.Start(ctx)
			defer manager.Stop()

			job, err := manager.Enqueue(queue.Job{
				Artist:    artist,
				Title:     title,
				Folder:    args[0],
				Mode:      mode,
				SourceURL: sourceURL,
				SongID:    songID,
			})
			if err != nil {
				return fmt.Errorf("enqueue job: %w", err)
			}

			final, err := waitForJob(ctx, store, job)
			if err != nil {
				return err
			}
			if final.Status == queue.StatusFailed {
				return fmt.Errorf("processing failed for %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "finished %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "artist name for lyrics metadata")
	cmd.Flags().StringVar(&title, "title", "", "song title for lyrics metadata")
	cmd.Flags().StringVar(&modeFlag, "mode", string(workset.ModeFile), "acquisition mode (usdb, magic-song, magic-video, magic-youtube, file, cache, server-video)")
	cmd.Flags().StringVar(&sourceURL, "url", "", "source URL used when media must be downloaded")
	cmd.Flags().IntVar(&songID, "song-id", 0, "USDB song id to fetch the tagged lyrics file for")

	return cmd
}

func waitForJob(ctx context.Context, store *queue.Store, job queue.Job) (queue.Job, error) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return queue.Job{}, ctx.Err()
		case <-ticker.C:
			if current, ok := store.Get(job.ID); ok && current.Status.Terminal() {
				return current, nil
			}
		}
	}
}
