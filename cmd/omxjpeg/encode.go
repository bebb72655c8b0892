package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/omxjpeg/pkg/batch"
	"github.com/user/omxjpeg/pkg/config"
	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
	"github.com/user/omxjpeg/pkg/summarizer"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     l10n.T("Encode images or raw frames to JPEG files"),
		ArgsUsage: "FILE...",
		Flags: append(encoderFlags(),
			&cli.StringFlag{
				Name:     "output-dir",
				Aliases:  []string{"o"},
				Value:    ".",
				Usage:    l10n.T("Directory for the JPEG files"),
				Category: l10n.T("Output"),
			},
			&cli.StringFlag{
				Name:     "summary",
				Usage:    l10n.T("Write a Markdown summary of the run to this path"),
				Category: l10n.T("Output"),
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: l10n.T("Treat inputs as packed frames in the configured color format"),
			},
		),
		Action: runEncode,
	}
}

func runEncode(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("no input files"), 2)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	params, err := cfg.ToParams()
	if err != nil {
		return err
	}

	jobs := make([]batch.Job, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		raw, err := readFrame(path, c.Bool("raw"), cfg, params.ColorFormat)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		jobs = append(jobs, batch.Job{Name: path, Raw: raw})
	}

	loader, err := newLoader(cfg, log)
	if err != nil {
		return err
	}
	factory, err := encoderFactory(c.Context, loader, cfg, log)
	if err != nil {
		return err
	}

	log.Info("Encoding %d frames (%dx%d %s, quality %d)", len(jobs), cfg.Width, cfg.Height, params.ColorFormat, cfg.Quality)
	start := time.Now()
	results, runErr := batch.Run(c.Context, jobs, factory, cfg.Workers, log)

	outDir := c.String("output-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	names := outputNames(jobs)
	for i, job := range jobs {
		if want := jpegName(job.Name); names[i] != want {
			log.Warn("Output %s already taken, writing %s as %s", want, job.Name, names[i])
		}
	}

	failed := 0
	for i, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		out := filepath.Join(outDir, names[i])
		if err := os.WriteFile(out, r.JPEG, 0o644); err != nil {
			log.Error("Failed to write output: %s", err.Error())
			results[i].Err = err
			failed++
			continue
		}
		log.Info("Wrote %s (%s)", out, humanize.Bytes(uint64(len(r.JPEG))))
	}

	elapsed := time.Since(start)
	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithSettings(summarizer.Settings{
				Backend:     cfg.Backend,
				Component:   cfg.Component,
				Width:       cfg.Width,
				Height:      cfg.Height,
				SliceHeight: cfg.SliceHeight,
				Quality:     cfg.Quality,
				ColorFormat: params.ColorFormat.String(),
				Workers:     cfg.Workers,
			}).
			WithResults(results, func(i int, _ batch.Result) string { return filepath.Join(outDir, names[i]) }).
			WithElapsed(elapsed).
			Build()
		if err := summarizer.NewWriter(summarizer.NewMarkdownFormatter()).Write(path, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if done := len(results) - failed; done > 0 {
		log.Info("Encoded %d frames in %s (%s/frame)", done, elapsed.Round(time.Millisecond), (elapsed / time.Duration(done)).Round(time.Microsecond))
	}
	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return cli.Exit(l10n.F("%d of %d frames failed", failed, len(results)), 1)
	}
	return nil
}

// readFrame loads path as a packed frame of cfg's geometry.
func readFrame(path string, raw bool, cfg config.Config, format ports.ColorFormat) ([]byte, error) {
	if raw {
		return os.ReadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := rawimage.Decode(f)
	if err != nil {
		return nil, err
	}
	img = rawimage.Fit(img, int(cfg.Width), int(cfg.Height))
	return rawimage.Pack(img, format)
}

// jpegName replaces the extension of an input path's base name with .jpg.
func jpegName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}

// outputNames picks one output file name per job. Inputs that share a base
// name, compared case-insensitively, get -2, -3, ... suffixes in job order.
func outputNames(jobs []batch.Job) []string {
	names := make([]string, len(jobs))
	taken := make(map[string]bool, len(jobs))
	for i, job := range jobs {
		name := jpegName(job.Name)
		stem := strings.TrimSuffix(name, ".jpg")
		for n := 2; taken[strings.ToLower(name)]; n++ {
			name = fmt.Sprintf("%s-%d.jpg", stem, n)
		}
		taken[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}
