package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/melon/internal/logger"
	"github.com/samcharles93/melon/internal/viewer"
)

const (
	envViewer = "MELON_VIEWER"
	envConfig = "MELON_CONFIG"
)

// Config represents the melon configuration file (~/.config/melon/config.yaml).
type Config struct {
	ViewerPath   string        `yaml:"viewer_path"`
	ArtifactPath string        `yaml:"artifact_path"`
	WorkDir      string        `yaml:"work_dir"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	KeepTemp     *bool         `yaml:"keep_temp"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "melon", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields a zero
// Config; a malformed one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig fills flag variables from cfg when the corresponding flag
// was not set on the command line or through the environment.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.ViewerPath != "" && !c.IsSet("melon") {
		viewerPath = cfg.ViewerPath
	}
	if cfg.ArtifactPath != "" && !c.IsSet("artifact") {
		artifactPath = cfg.ArtifactPath
	}
	if cfg.WorkDir != "" && !c.IsSet("work-dir") {
		workDir = cfg.WorkDir
	}
	if cfg.Timeout > 0 && !c.IsSet("timeout") {
		timeout = cfg.Timeout
	}
	if cfg.PollInterval > 0 && !c.IsSet("poll-interval") {
		pollInterval = cfg.PollInterval
	}
	if cfg.KeepTemp != nil && !c.IsSet("keep-temp") {
		keepTemp = *cfg.KeepTemp
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

var loadedConfig Config

// setup loads the config file and installs the logger on the context.
func setup(ctx context.Context, c *cli.Command) (context.Context, error) {
	path := configFile
	if path == "" {
		path = configPath()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	loadedConfig = cfg
	applyConfig(c, cfg)

	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	log := logger.ForFormat(os.Stderr, logFormat, level)
	return logger.WithContext(ctx, log), nil
}

func viewerConfig() viewer.Config {
	return viewer.Config{
		Executable:   viewerPath,
		ArtifactPath: artifactPath,
		WorkDir:      workDir,
		Timeout:      timeout,
		PollInterval: pollInterval,
		KeepTemp:     keepTemp,
	}
}
