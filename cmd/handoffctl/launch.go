package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var launchSelect int

func init() {
	cmd := newLaunchCmd()
	cmd.Flags().IntVar(&launchSelect, "select", -1, "Page to select on the receiving screen before persisting")
	rootCmd.AddCommand(cmd)
}

func newLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "launch <manifest>",
		Short: "Hand a photo manifest to a new viewer screen",
		Long: `The launch command hands the manifest's photos to a viewer screen in the
same process. When a state file is configured the receiving screen's
restoration state is written there so a later restore can recover it.

Example:
  handoffctl launch photos.toml --state local/state/viewer.toml
  handoffctl launch photos.toml --select 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, args[0])
		},
	}
}

func runLaunch(cmd *cobra.Command, path string) error {
	m, err := loadManifest(path)
	if err != nil {
		return err
	}
	p, err := newProcess()
	if err != nil {
		return err
	}
	defer p.Shutdown()

	s, err := p.Launch(cmd.Context(), m.Items, m.Index, m.Background)
	if err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	if launchSelect >= 0 {
		s.Controller().Select(launchSelect)
	}
	if target := strings.TrimSpace(p.Config().StateFile); target != "" {
		if err := s.Persist(target); err != nil {
			return fmt.Errorf("persist state: %w", err)
		}
	}
	return printJSON(cmd.OutOrStdout(), reportScreen(s))
}
