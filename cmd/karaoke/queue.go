package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"karaokeforge/internal/fileutil"
	"karaokeforge/internal/ipc"
	"karaokeforge/internal/workset"
)

func newQueueCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the daemon queue, or pipeline progress per library folder",
		Long:  "queue lists the jobs a running daemon knows about. Without a daemon it falls back to inspecting each library folder for existing pipeline artifacts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := daemonQueueRows(cmd, cmdCtx); done {
				return err
			}
			rows, err := libraryRows(cmdCtx.cfg.Paths.LibraryDir)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "library is empty")
				return nil
			}
			headers := []string{"Folder", "Audio", "Normalized", "Instrumentals", "Vocals", "Lyrics"}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows))
			return nil
		},
	}
}

// daemonQueueRows renders the live queue when a daemon is reachable. A failed
// dial is not an error; the caller falls back to the library scan.
func daemonQueueRows(cmd *cobra.Command, cmdCtx *commandContext) (bool, error) {
	client, err := ipc.Dial(ipc.SocketPath(cmdCtx.cfg))
	if err != nil {
		return false, nil
	}
	defer client.Close()

	resp, err := client.QueueList()
	if err != nil {
		return true, fmt.Errorf("query daemon queue: %w", err)
	}
	if len(resp.Jobs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "daemon queue is empty")
		return true, nil
	}
	rows := make([][]string, 0, len(resp.Jobs))
	for _, job := range resp.Jobs {
		rows = append(rows, []string{job.ID, job.Folder, job.Mode, job.Status, job.EnqueuedAt})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Folder", "Mode", "Status", "Enqueued"}, rows))
	return true, nil
}

func libraryRows(libraryDir string) ([][]string, error) {
	entries, err := os.ReadDir(libraryDir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rows = append(rows, folderRow(libraryDir, entry.Name()))
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })
	return rows, nil
}

func folderRow(libraryDir, folder string) []string {
	dir := filepath.Join(libraryDir, folder)

	base := ""
	if audio := workset.FindAudioFiles(dir); len(audio) > 0 {
		base = workset.BaseFromPath(audio[0])
	} else if video := workset.FindVideoFiles(dir); len(video) > 0 {
		base = workset.BaseFromPath(video[0])
	}
	if base == "" {
		return []string{folder, "-", "-", "-", "-", "-"}
	}

	mark := func(suffix, ext string) string {
		if fileutil.Exists(filepath.Join(dir, workset.CanonicalName(base, suffix, ext))) {
			return "yes"
		}
		return "-"
	}

	return []string{
		folder,
		mark("", "mp3"),
		mark(workset.SuffixNormalized, "mp3"),
		mark(workset.SuffixHP2, "mp3"),
		mark(workset.SuffixVocals, "mp3"),
		mark("", "txt"),
	}
}
