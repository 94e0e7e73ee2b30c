package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultName            = "photohandoff"
	DefaultAddr            = "127.0.0.1:9300"
	DefaultRecoveryWorkers = 4
	DefaultMaxBlobBytes    = 64 << 10
	DefaultMismatchPolicy  = "prefer_delivered"
	DefaultMaxItems        = 1 << 14
)

// HostConfig configures one handoff host process.
type HostConfig struct {
	Name            string   `toml:"name"`
	Addr            string   `toml:"addr"`
	CorsOrigins     []string `toml:"cors_origins"`
	StateFile       string   `toml:"state_file"`
	RecoveryWorkers int      `toml:"recovery_workers"`
	MaxBlobBytes    int      `toml:"max_blob_bytes"`
	MismatchPolicy  string   `toml:"mismatch_policy"`
	MaxItems        int      `toml:"max_items"`
}

func DefaultHostConfig() HostConfig {
	return HostConfig{
		Name:            DefaultName,
		Addr:            DefaultAddr,
		RecoveryWorkers: DefaultRecoveryWorkers,
		MaxBlobBytes:    DefaultMaxBlobBytes,
		MismatchPolicy:  DefaultMismatchPolicy,
		MaxItems:        DefaultMaxItems,
	}
}

func LoadHostConfig(path string) (HostConfig, error) {
	cfg := DefaultHostConfig()
	if err := loadToml(path, &cfg); err != nil {
		return HostConfig{}, err
	}
	cfg = cfg.WithDefaults()
	if err := ValidateHostConfig(cfg); err != nil {
		return HostConfig{}, err
	}
	return cfg, nil
}

// WithDefaults fills zero fields left empty by a partial file.
func (c HostConfig) WithDefaults() HostConfig {
	def := DefaultHostConfig()
	if strings.TrimSpace(c.Name) == "" {
		c.Name = def.Name
	}
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = def.Addr
	}
	if c.RecoveryWorkers == 0 {
		c.RecoveryWorkers = def.RecoveryWorkers
	}
	if c.MaxBlobBytes == 0 {
		c.MaxBlobBytes = def.MaxBlobBytes
	}
	if strings.TrimSpace(c.MismatchPolicy) == "" {
		c.MismatchPolicy = def.MismatchPolicy
	}
	if c.MaxItems == 0 {
		c.MaxItems = def.MaxItems
	}
	return c
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateHostConfig(cfg HostConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("host config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("host config missing addr")
	}
	if cfg.RecoveryWorkers < 1 {
		return fmt.Errorf("host config recovery_workers must be >= 1, got %d", cfg.RecoveryWorkers)
	}
	if cfg.MaxBlobBytes < 1 {
		return fmt.Errorf("host config max_blob_bytes must be >= 1, got %d", cfg.MaxBlobBytes)
	}
	if cfg.MaxItems < 1 {
		return fmt.Errorf("host config max_items must be >= 1, got %d", cfg.MaxItems)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.MismatchPolicy)) {
	case "prefer_delivered", "prefer_recovered":
	default:
		return fmt.Errorf("host config invalid mismatch_policy %q", cfg.MismatchPolicy)
	}
	return nil
}
