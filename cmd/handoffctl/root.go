package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/danmuck/photohandoff/internal/config"
	"github.com/danmuck/photohandoff/internal/host"
	"github.com/spf13/cobra"
)

var (
	configPath string
	stateFile  string
)

var rootCmd = &cobra.Command{
	Use:   "handoffctl",
	Short: "Hand photo collections to a viewer screen and restore them after process death",
	Long: `handoffctl drives the photo handoff host: it launches a viewer screen from a
manifest, restores a screen from a persisted state file, and serves the debug
HTTP surface.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Host config file (toml)")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", "", "State file path (overrides state_file)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadHostConfig() (config.HostConfig, error) {
	if strings.TrimSpace(configPath) == "" {
		return config.DefaultHostConfig(), nil
	}
	return config.LoadHostConfig(configPath)
}

func newProcess() (*host.Process, error) {
	cfg, err := loadHostConfig()
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(stateFile); v != "" {
		cfg.StateFile = v
	}
	return host.NewProcess(cfg)
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
