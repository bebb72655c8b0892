package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/omxjpeg/pkg/jpegenc"
	"github.com/user/omxjpeg/pkg/ports"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	params, err := cfg.ToParams()
	if err != nil {
		t.Fatalf("ToParams: %v", err)
	}
	want := jpegenc.Params{
		Width:         640,
		Height:        480,
		Quality:       20,
		ColorFormat:   ports.ColorFormat24bitRGB888,
		ComponentName: jpegenc.DefaultComponentName,
	}
	if params != want {
		t.Errorf("params = %+v, want %+v", params, want)
	}
	if opts := cfg.ToOptions(); opts != jpegenc.DefaultOptions() {
		t.Errorf("options = %+v, want defaults", opts)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "omxjpeg.yaml")
	data := []byte(`
width: 1280
height: 720
slice_height: 16
color_format: yuv420packedplanar
quality: 85
backend: soft
workers: 3
stream_timeout: 250ms
log_level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Width != 1280 || cfg.Height != 720 || cfg.SliceHeight != 16 || cfg.Quality != 85 {
		t.Errorf("frame settings = %+v", cfg)
	}
	if cfg.StreamTimeout != 250*time.Millisecond {
		t.Errorf("stream timeout = %v", cfg.StreamTimeout)
	}
	// Unset keys keep their defaults.
	if cfg.CommandTimeout != Defaults().CommandTimeout || cfg.Component != jpegenc.DefaultComponentName {
		t.Errorf("defaults lost: %+v", cfg)
	}

	params, err := cfg.ToParams()
	if err != nil {
		t.Fatalf("ToParams: %v", err)
	}
	if params.ColorFormat != ports.ColorFormatYUV420PackedPlanar {
		t.Errorf("color format = %s", params.ColorFormat)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("width: [1, 2"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestParseColorFormat(t *testing.T) {
	tests := []struct {
		in   string
		want ports.ColorFormat
	}{
		{"24bitRGB888", ports.ColorFormat24bitRGB888},
		{"24bitrgb888", ports.ColorFormat24bitRGB888},
		{"ColorFormat24bitBGR888", ports.ColorFormat24bitBGR888},
		{" YUV420PackedPlanar ", ports.ColorFormatYUV420PackedPlanar},
		{"16bitRGB565", ports.ColorFormat16bitRGB565},
	}
	for _, tt := range tests {
		got, err := ParseColorFormat(tt.in)
		if err != nil {
			t.Errorf("ParseColorFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorFormat(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "Unused", "rgb", "ColorFormat"} {
		if _, err := ParseColorFormat(bad); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseColorFormat(%q): got %v, want ErrInvalid", bad, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"slice height", func(c *Config) { c.SliceHeight = 32 }},
		{"quality", func(c *Config) { c.Quality = 101 }},
		{"color format", func(c *Config) { c.ColorFormat = "nope" }},
		{"backend", func(c *Config) { c.Backend = "gpu" }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"soft cannot read format", func(c *Config) {
			c.Backend = BackendSoft
			c.ColorFormat = "YUV411Planar"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}
