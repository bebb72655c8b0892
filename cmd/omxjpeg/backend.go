package main

import (
	"context"
	"fmt"

	"github.com/user/omxjpeg/pkg/adapters/omxil"
	"github.com/user/omxjpeg/pkg/adapters/softjpeg"
	"github.com/user/omxjpeg/pkg/batch"
	"github.com/user/omxjpeg/pkg/config"
	"github.com/user/omxjpeg/pkg/jpegenc"
	"github.com/user/omxjpeg/pkg/ports"
)

// newLoader picks the component loader for cfg.Backend.
func newLoader(cfg config.Config, log ports.Logger) (ports.Loader, error) {
	soft := func() ports.Loader {
		return softjpeg.NewLoader(softjpeg.Options{
			Name:             cfg.Component,
			OutputBufferSize: cfg.OutputBufferSize,
		})
	}

	switch cfg.Backend {
	case config.BackendOMX:
		if !omxil.Available() {
			return nil, omxil.ErrPlatformNotSupported
		}
		log.Info("Using %s backend", config.BackendOMX)
		return omxil.NewLoader(), nil
	case config.BackendSoft:
		log.Info("Using %s backend", config.BackendSoft)
		return soft(), nil
	case config.BackendAuto:
		if omxil.Available() {
			log.Info("Using %s backend", config.BackendOMX)
			return omxil.NewLoader(), nil
		}
		log.Warn("Hardware encoder not available, using software component")
		return soft(), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// encoderFactory opens one encoder per call for batch workers.
func encoderFactory(ctx context.Context, loader ports.Loader, cfg config.Config, log ports.Logger) (batch.Factory, error) {
	params, err := cfg.ToParams()
	if err != nil {
		return nil, err
	}
	opts := cfg.ToOptions()
	return func() (ports.ImageEncoder, error) {
		enc, err := jpegenc.Init(ctx, loader, params, log, opts)
		if err != nil {
			return nil, err
		}
		return enc, nil
	}, nil
}
