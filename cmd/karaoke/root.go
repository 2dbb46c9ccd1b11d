package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"karaokeforge/internal/config"
)

const skipConfigLoadAnnotation = "skipConfigLoad"

type commandContext struct {
	configFlag string
	cfg        *config.Config
	configPath string
}

func newRootCommand() *cobra.Command {
	cmdCtx := &commandContext{}

	root := &cobra.Command{
		Use:           "karaoke",
		Short:         "Karaoke asset pipeline",
		Long:          "karaoke prepares song folders for karaoke playback: it acquires media, separates and cleans vocals, transcribes timed lyrics, and tidies the folder.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfigLoadAnnotation] == "true" {
				return nil
			}
			cfg, path, _, err := config.Load(cmdCtx.configFlag)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cmdCtx.cfg = cfg
			cmdCtx.configPath = path
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&cmdCtx.configFlag, "config", "c", "", "path to config file")

	root.AddCommand(newServeCommand(cmdCtx))
	root.AddCommand(newAddCommand(cmdCtx))
	root.AddCommand(newProcessCommand(cmdCtx))
	root.AddCommand(newQueueCommand(cmdCtx))
	root.AddCommand(newConfigCommand(cmdCtx))
	root.AddCommand(newDepsCommand(cmdCtx))
	root.AddCommand(newVersionCommand())

	return root
}
