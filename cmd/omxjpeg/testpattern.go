package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/omxjpeg/pkg/jpegenc"
	"github.com/user/omxjpeg/pkg/testpattern"
)

func testpatternCommand() *cli.Command {
	return &cli.Command{
		Name:  "testpattern",
		Usage: l10n.T("Encode a generated test pattern"),
		Flags: append(encoderFlags(),
			&cli.StringFlag{
				Name:    "pattern",
				Aliases: []string{"p"},
				Value:   testpattern.PatternGradient,
				Usage:   l10n.F("Pattern to generate (%s)", strings.Join(testpattern.Names(), ", ")),
			},
			&cli.IntFlag{
				Name:    "frames",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   l10n.T("Number of times the frame is encoded"),
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Value:    "testpattern.jpg",
				Usage:    l10n.T("Output JPEG file path"),
				Category: l10n.T("Output"),
			},
		),
		Action: runTestpattern,
	}
}

func runTestpattern(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	params, err := cfg.ToParams()
	if err != nil {
		return err
	}
	raw, err := testpattern.Raw(c.String("pattern"), int(cfg.Width), int(cfg.Height), params.ColorFormat)
	if err != nil {
		return err
	}

	loader, err := newLoader(cfg, log)
	if err != nil {
		return err
	}
	enc, err := jpegenc.Init(c.Context, loader, params, log, cfg.ToOptions())
	if err != nil {
		return err
	}
	defer enc.Deinit()

	frames := c.Int("frames")
	if frames < 1 {
		frames = 1
	}
	log.Info("Encoding %d frames (%dx%d %s, quality %d)", frames, cfg.Width, cfg.Height, params.ColorFormat, cfg.Quality)

	var jpeg []byte
	start := time.Now()
	for i := 0; i < frames; i++ {
		if jpeg, err = enc.Process(c.Context, raw); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	elapsed := time.Since(start)

	out := c.String("output")
	if err := os.WriteFile(out, jpeg, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("Wrote %s (%s)", out, humanize.Bytes(uint64(len(jpeg))))
	log.Info("Encoded %d frames in %s (%s/frame)", frames, elapsed.Round(time.Millisecond), (elapsed / time.Duration(frames)).Round(time.Microsecond))

	return enc.Deinit()
}
