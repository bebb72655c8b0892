// Package testpattern draws synthetic frames for exercising the encoder.
package testpattern

import (
	"errors"
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/user/omxjpeg/pkg/ports"
	"github.com/user/omxjpeg/pkg/rawimage"
)

// ErrUnknownPattern is returned by Generate for an unknown pattern name.
var ErrUnknownPattern = errors.New("testpattern: unknown pattern")

// Pattern names accepted by Generate.
const (
	PatternGradient = "gradient"
	PatternBars     = "bars"
)

// Names lists the available patterns.
func Names() []string {
	return []string{PatternGradient, PatternBars}
}

// Generate draws the named pattern.
func Generate(name string, width, height int) (image.Image, error) {
	switch name {
	case PatternGradient:
		return Gradient(width, height), nil
	case PatternBars:
		return Bars(width, height), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
}

// Gradient returns a frame with R = x, G = y and B = x+y, each modulo 256.
func Gradient(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dc.SetRGB255(x%256, y%256, (x+y)%256)
			dc.SetPixel(x, y)
		}
	}
	return dc.Image()
}

// barColors are the seven 75% color bars, left to right.
var barColors = [][3]int{
	{191, 191, 191}, // gray
	{191, 191, 0},   // yellow
	{0, 191, 191},   // cyan
	{0, 191, 0},     // green
	{191, 0, 191},   // magenta
	{191, 0, 0},     // red
	{0, 0, 191},     // blue
}

// Bars returns vertical color bars over a black-to-white ramp in the bottom
// quarter.
func Bars(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	barHeight := float64(height) * 3 / 4
	barWidth := float64(width) / float64(len(barColors))
	for i, c := range barColors {
		dc.SetRGB255(c[0], c[1], c[2])
		dc.DrawRectangle(float64(i)*barWidth, 0, barWidth, barHeight)
		dc.Fill()
	}

	ramp := gg.NewLinearGradient(0, 0, float64(width), 0)
	ramp.AddColorStop(0, image.Black.C)
	ramp.AddColorStop(1, image.White.C)
	dc.SetFillStyle(ramp)
	dc.DrawRectangle(0, barHeight, float64(width), float64(height)-barHeight)
	dc.Fill()

	return dc.Image()
}

// Raw draws the named pattern and packs it in format.
func Raw(name string, width, height int, format ports.ColorFormat) ([]byte, error) {
	img, err := Generate(name, width, height)
	if err != nil {
		return nil, err
	}
	return rawimage.Pack(img, format)
}
