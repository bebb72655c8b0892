// Package main provides the CLI entry point for omxjpeg.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/omxjpeg/pkg/adapters/logger"
	"github.com/user/omxjpeg/pkg/config"
	"github.com/user/omxjpeg/pkg/ports"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "omxjpeg",
		Usage:   l10n.T("Encode raw frames to JPEG on the OpenMAX IL image encoder"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("YAML configuration file"),
			},
			&cli.StringFlag{
				Name:     "log-level",
				Aliases:  []string{"l"},
				Value:    "info",
				Usage:    l10n.T("Log level (debug, info, warn, error)"),
				Category: l10n.T("Logging"),
			},
			&cli.BoolFlag{
				Name:     "quiet",
				Aliases:  []string{"Q"},
				Usage:    l10n.T("Suppress all log output"),
				Category: l10n.T("Logging"),
			},
		},
		Commands: []*cli.Command{
			encodeCommand(),
			testpatternCommand(),
			formatsCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Fprintln(c.App.Writer, l10n.F("omxjpeg version %s", version))
					return nil
				},
			},
		},
	}
}

// encoderFlags are shared by every command that opens an encoder.
func encoderFlags() []cli.Flag {
	cat := l10n.T("Encoder")
	return []cli.Flag{
		&cli.StringFlag{Name: "backend", Usage: l10n.T("Component backend (auto, omx, soft)"), Category: cat},
		&cli.StringFlag{Name: "component", Usage: l10n.T("OpenMAX IL component name"), Category: cat},
		&cli.UintFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Frame width in pixels"), Category: cat},
		&cli.UintFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Frame height in pixels"), Category: cat},
		&cli.UintFlag{Name: "slice-height", Usage: l10n.T("Input slice height (16 or the frame height)"), Category: cat},
		&cli.UintFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("JPEG quality (1-100)"), Category: cat},
		&cli.StringFlag{Name: "color-format", Aliases: []string{"f"}, Usage: l10n.T("Input color format, e.g. 24bitRGB888"), Category: cat},
		&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: l10n.T("Number of encoders run in parallel"), Category: cat},
		&cli.DurationFlag{Name: "command-timeout", Usage: l10n.T("Timeout for component commands"), Category: cat},
		&cli.DurationFlag{Name: "stream-timeout", Usage: l10n.T("Timeout for each buffer exchange"), Category: cat},
	}
}

// loadConfig reads --config and applies flag overrides on top of it.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}
	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("component") {
		cfg.Component = c.String("component")
	}
	if c.IsSet("width") {
		cfg.Width = uint32(c.Uint("width"))
	}
	if c.IsSet("height") {
		cfg.Height = uint32(c.Uint("height"))
	}
	if c.IsSet("slice-height") {
		cfg.SliceHeight = uint32(c.Uint("slice-height"))
	}
	if c.IsSet("quality") {
		cfg.Quality = uint32(c.Uint("quality"))
	}
	if c.IsSet("color-format") {
		cfg.ColorFormat = c.String("color-format")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("command-timeout") {
		cfg.CommandTimeout = c.Duration("command-timeout")
	}
	if c.IsSet("stream-timeout") {
		cfg.StreamTimeout = c.Duration("stream-timeout")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger creates the console logger for cfg.
func newLogger(cfg config.Config) ports.Logger {
	level := ports.ParseLogLevel(cfg.LogLevel)
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(level)
}
