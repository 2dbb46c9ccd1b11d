package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"karaokeforge/internal/deps"
)

func newDepsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		Long:  "deps resolves every external tool the pipeline shells out to and reports where each one was found.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := deps.Check(deps.DefaultRequirements(cmdCtx.cfg))

			rows := make([][]string, 0, len(statuses))
			missingRequired := false
			for _, status := range statuses {
				state := "missing"
				detail := ""
				switch {
				case status.Found:
					state = "found"
					detail = status.Path
				case status.Requirement.Optional:
					state = "missing (optional)"
				default:
					missingRequired = true
				}
				rows = append(rows, []string{status.Requirement.Name, status.Requirement.Binary, state, detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Tool", "Binary", "Status", "Path"}, rows))
			if missingRequired {
				return fmt.Errorf("required tools are missing")
			}
			return nil
		},
	}
}
