// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/omxjpeg/pkg/jpegenc"
	"github.com/user/omxjpeg/pkg/omx"
	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// Backend names accepted by the backend setting.
const (
	BackendAuto = "auto"
	BackendOMX  = "omx"
	BackendSoft = "soft"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config represents the full configuration for omxjpeg.
type Config struct {
	// Frame
	Width       uint32 `yaml:"width"`
	Height      uint32 `yaml:"height"`
	SliceHeight uint32 `yaml:"slice_height"`
	ColorFormat string `yaml:"color_format"`

	// Encoding
	Quality   uint32 `yaml:"quality"`
	Component string `yaml:"component"`
	Backend   string `yaml:"backend"`
	Workers   int    `yaml:"workers"`

	// Timeouts
	CommandTimeout time.Duration `yaml:"command_timeout"`
	StreamTimeout  time.Duration `yaml:"stream_timeout"`

	// Software backend
	OutputBufferSize uint32 `yaml:"output_buffer_size"`

	// Logging
	LogLevel string `yaml:"log_level"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Width:       640,
		Height:      480,
		SliceHeight: 0,
		ColorFormat: ports.ColorFormat24bitRGB888.String(),

		Quality:   20,
		Component: jpegenc.DefaultComponentName,
		Backend:   BackendAuto,
		Workers:   1,

		CommandTimeout: omx.DefaultCommandTimeout,
		StreamTimeout:  jpegenc.DefaultStreamTimeout,

		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// ParseColorFormat accepts a format name as ports.ColorFormat prints it,
// ignoring case and an optional "ColorFormat" prefix.
func ParseColorFormat(name string) (ports.ColorFormat, error) {
	trimmed := strings.TrimSpace(name)
	if len(trimmed) > len("ColorFormat") && strings.EqualFold(trimmed[:len("ColorFormat")], "ColorFormat") {
		trimmed = trimmed[len("ColorFormat"):]
	}
	if f, ok := ports.ParseColorFormat(trimmed); ok && f != ports.ColorFormatUnused {
		return f, nil
	}
	for _, f := range ports.AllColorFormats() {
		if f != ports.ColorFormatUnused && strings.EqualFold(f.String(), trimmed) {
			return f, nil
		}
	}
	return ports.ColorFormatUnused, fmt.Errorf("%w: unknown color format %q", ErrInvalid, name)
}

// Validate checks the configuration without touching any component.
func (c Config) Validate() error {
	params, err := c.ToParams()
	if err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Backend == BackendSoft && !rawimage.Supported(params.ColorFormat) {
		return fmt.Errorf("%w: software backend cannot read %s", ErrInvalid, params.ColorFormat)
	}

	switch c.Backend {
	case BackendAuto, BackendOMX, BackendSoft:
	default:
		return fmt.Errorf("%w: backend %q (want auto, omx or soft)", ErrInvalid, c.Backend)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d", ErrInvalid, c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error", "quiet":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// ToParams converts Config to jpegenc.Params.
func (c Config) ToParams() (jpegenc.Params, error) {
	format, err := ParseColorFormat(c.ColorFormat)
	if err != nil {
		return jpegenc.Params{}, err
	}
	return jpegenc.Params{
		Width:         c.Width,
		Height:        c.Height,
		SliceHeight:   c.SliceHeight,
		Quality:       c.Quality,
		ColorFormat:   format,
		ComponentName: c.Component,
	}, nil
}

// ToOptions converts Config to jpegenc.Options.
func (c Config) ToOptions() jpegenc.Options {
	return jpegenc.Options{
		CommandTimeout: c.CommandTimeout,
		StreamTimeout:  c.StreamTimeout,
	}
}
