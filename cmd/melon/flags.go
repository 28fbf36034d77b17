package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/melon/internal/viewer"
)

var (
	outputPath   string
	viewerPath   string
	artifactPath string
	workDir      string
	configFile   string
	timeout      time.Duration
	pollInterval time.Duration
	keepTemp     bool
	logLevel     string
	logFormat    string
	debug        bool
)

func decodeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "output file (default: {sourcefile}_decoded.{ext})",
			Destination: &outputPath,
		},
		&cli.StringFlag{
			Name:        "melon",
			Aliases:     []string{"m"},
			Usage:       "path to melonbooksviewer.exe (default: " + viewer.DefaultExecutable + ")",
			Sources:     cli.EnvVars(envViewer),
			Destination: &viewerPath,
		},
	}
}

func settingsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "artifact",
			Usage:       "file the viewer writes its decoded output to",
			Destination: &artifactPath,
		},
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "directory for the temporary patched container",
			Value:       ".",
			Destination: &workDir,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "how long to wait for the viewer output",
			Value:       viewer.DefaultTimeout,
			Destination: &timeout,
		},
		&cli.DurationFlag{
			Name:        "poll-interval",
			Usage:       "how often to check for the viewer output",
			Value:       viewer.DefaultPollInterval,
			Destination: &pollInterval,
		},
		&cli.BoolFlag{
			Name:        "keep-temp",
			Usage:       "keep the temporary patched container",
			Destination: &keepTemp,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Sources:     cli.EnvVars(envConfig),
			Destination: &configFile,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
