// Package summarizer provides summary generation for encoding runs.
package summarizer

import (
	"time"

	"github.com/user/omxjpeg/pkg/batch"
)

// Summary contains all data collected during an encoding run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Encoder settings
	Settings Settings

	// Per-frame outcomes in input order
	Frames []FrameInfo

	// Wall time of the whole run
	Elapsed time.Duration
}

// Settings contains the encoder configuration.
type Settings struct {
	Backend     string
	Component   string
	Width       uint32
	Height      uint32
	SliceHeight uint32
	Quality     uint32
	ColorFormat string
	Workers     int
}

// FrameInfo describes one encoded frame.
type FrameInfo struct {
	Name    string
	Output  string
	Bytes   int
	Worker  int
	Elapsed time.Duration
	Err     string
}

// Failed reports whether the frame produced no output.
func (f FrameInfo) Failed() bool {
	return f.Err != ""
}

// Totals aggregates the frames of s.
func (s *Summary) Totals() (encoded, failed int, bytes int64) {
	for _, f := range s.Frames {
		if f.Failed() {
			failed++
			continue
		}
		encoded++
		bytes += int64(f.Bytes)
	}
	return encoded, failed, bytes
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets encoder settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithResults appends one frame per batch result. output maps the i-th
// result to the file it was written to.
func (b *Builder) WithResults(results []batch.Result, output func(i int, r batch.Result) string) *Builder {
	for i, r := range results {
		f := FrameInfo{
			Name:    r.Name,
			Bytes:   len(r.JPEG),
			Worker:  r.Worker,
			Elapsed: r.Elapsed,
		}
		if r.Err != nil {
			f.Err = r.Err.Error()
		} else if output != nil {
			f.Output = output(i, r)
		}
		b.summary.Frames = append(b.summary.Frames, f)
	}
	return b
}

// WithElapsed sets the wall time of the run.
func (b *Builder) WithElapsed(d time.Duration) *Builder {
	b.summary.Elapsed = d
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
