package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/omxjpeg/pkg/jpegenc"
	"github.com/user/omxjpeg/pkg/omx"
	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

func formatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "formats",
		Usage: l10n.T("Probe which input color formats the component accepts"),
		Flags: append(encoderFlags(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: l10n.T("Probe every known color format, not only the packable ones"),
			},
		),
		Action: runFormats,
	}
}

// formatProbe is the outcome of initializing an encoder for one format.
type formatProbe struct {
	format    ports.ColorFormat
	frameSize int
	inSize    uint32
	outSize   uint32
	err       error
}

func runFormats(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	loader, err := newLoader(cfg, log)
	if err != nil {
		return err
	}
	params, err := cfg.ToParams()
	if err != nil {
		return err
	}

	formats := rawimage.SupportedFormats()
	if c.Bool("all") {
		formats = ports.AllColorFormats()[1:]
	}

	probes := make([]formatProbe, 0, len(formats))
	for _, f := range formats {
		if err := c.Context.Err(); err != nil {
			return err
		}
		p := params
		p.ColorFormat = f
		probes = append(probes, probeFormat(c.Context, loader, p, cfg.ToOptions(), log))
	}

	fmt.Fprintln(c.App.Writer, renderProbes(probes))
	return nil
}

func probeFormat(ctx context.Context, loader ports.Loader, params jpegenc.Params, opts jpegenc.Options, log ports.Logger) formatProbe {
	probe := formatProbe{format: params.ColorFormat}
	enc, err := jpegenc.Init(ctx, loader, params, log, opts)
	if err != nil {
		probe.err = err
		return probe
	}
	probe.frameSize = enc.FrameSize()
	probe.inSize = enc.InputBufferSize()
	probe.outSize = enc.OutputBufferSize()
	probe.err = enc.Deinit()
	return probe
}

func renderProbes(probes []formatProbe) string {
	headers := []string{
		l10n.T("Format"), l10n.T("Value"), l10n.T("Frame"),
		l10n.T("Input buffer"), l10n.T("Output buffer"), l10n.T("Result"),
	}
	rows := make([][]string, 0, len(probes))
	for _, p := range probes {
		row := []string{p.format.String(), fmt.Sprintf("0x%08x", uint32(p.format)), "-", "-", "-", probeResult(p.err)}
		if p.frameSize > 0 {
			row[2] = humanize.IBytes(uint64(p.frameSize))
		}
		if p.err == nil {
			row[3] = humanize.IBytes(uint64(p.inSize))
			row[4] = humanize.IBytes(uint64(p.outSize))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft})
}

func probeResult(err error) string {
	switch {
	case err == nil:
		return l10n.T("supported")
	case errors.Is(err, omx.ErrUnsupportedFormat):
		return l10n.T("not advertised")
	case errors.Is(err, omx.ErrRejectedParameters):
		return l10n.T("rejected")
	}
	return err.Error()
}
