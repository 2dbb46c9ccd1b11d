package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"karaokeforge/internal/ipc"
	"karaokeforge/internal/workset"
)

func newAddCommand(cmdCtx *commandContext) *cobra.Command {
	var (
		artist    string
		title     string
		modeFlag  string
		sourceURL string
		songID    int
	)

	cmd := &cobra.Command{
		Use:   "add <folder>",
		Short: "Queue a song folder on the running daemon",
		Long:  "add hands one song folder to a daemon started with serve. The daemon must be running; use process to run a folder without one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := workset.ParseMode(modeFlag); !ok {
				return fmt.Errorf("unknown mode %q", modeFlag)
			}

			client, err := ipc.Dial(ipc.SocketPath(cmdCtx.cfg))
			if err != nil {
				return fmt.Errorf("connect to daemon (is serve running?): %w", err)
			}
			defer client.Close()

			resp, err := client.Enqueue(ipc.EnqueueRequest{
				Artist:    artist,
				Title:     title,
				Folder:    args[0],
				Mode:      modeFlag,
				SourceURL: sourceURL,
				SongID:    songID,
			})
			if err != nil {
				return fmt.Errorf("enqueue job: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "queued %s (%s)\n", resp.Job.Folder, resp.Job.ID)
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
