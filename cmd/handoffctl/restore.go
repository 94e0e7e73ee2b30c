package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/photohandoff/internal/state"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRestoreCmd())
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore [state-file]",
		Short: "Recreate a viewer screen from a persisted state file",
		Long: `The restore command starts a fresh process and rebuilds the viewer screen
from its saved restoration state. Pending deliveries from the launching process
are gone, so every item is recovered by identifier or degrades to a loss.

Example:
  handoffctl restore local/state/viewer.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runRestore(cmd, path)
		},
	}
}

func runRestore(cmd *cobra.Command, path string) error {
	p, err := newProcess()
	if err != nil {
		return err
	}
	defer p.Shutdown()

	if strings.TrimSpace(path) == "" {
		path = p.Config().StateFile
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("restore: no state file given")
	}
	saved, err := state.Load(path, p.Config().MaxBlobBytes)
	if err != nil {
		return err
	}
	s, err := p.Restore(cmd.Context(), saved)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), reportScreen(s))
}
