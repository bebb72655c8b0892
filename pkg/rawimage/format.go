// Package rawimage converts between image.Image and packed raw frames in
// the component color formats. All layouts are described in memory byte
// order: ARGB8888 stores A, R, G, B at increasing addresses.
package rawimage

import (
	"errors"
	"fmt"

	"github.com/user/omxjpeg/pkg/ports"
)

// ErrUnsupportedFormat is returned for formats this package cannot pack or unpack.
var ErrUnsupportedFormat = errors.New("rawimage: unsupported color format")

// ErrShortFrame is returned when a raw frame holds fewer bytes than its geometry needs.
var ErrShortFrame = errors.New("rawimage: frame shorter than expected")

// layout describes how one format is laid out.
type layout struct {
	bpp     int // bytes per pixel for packed formats, 0 for planar
	planar  bool
	pairs   bool // 4:2:2 interleaved, two pixels per 4 bytes
	channel [4]int
}

// Slots of layout.channel. Packed RGB formats store the byte offsets of
// R, G, B and A (-1 when absent); 4:2:2 formats store the offsets of
// Y0, Cb, Y1 and Cr within a pixel pair.
const (
	chR = iota
	chG
	chB
	chA
)

const (
	pY0 = iota
	pCb
	pY1
	pCr
)

var layouts = map[ports.ColorFormat]layout{
	ports.ColorFormat24bitRGB888:        {bpp: 3, channel: [4]int{0, 1, 2, -1}},
	ports.ColorFormat24bitBGR888:        {bpp: 3, channel: [4]int{2, 1, 0, -1}},
	ports.ColorFormat32bitARGB8888:      {bpp: 4, channel: [4]int{1, 2, 3, 0}},
	ports.ColorFormat32bitABGR8888:      {bpp: 4, channel: [4]int{3, 2, 1, 0}},
	ports.ColorFormat32bitBGRA8888:      {bpp: 4, channel: [4]int{2, 1, 0, 3}},
	ports.ColorFormat16bitRGB565:        {bpp: 2},
	ports.ColorFormat16bitBGR565:        {bpp: 2},
	ports.ColorFormatL8:                 {bpp: 1},
	ports.ColorFormatYUV420PackedPlanar: {planar: true},
	ports.ColorFormatYCbYCr:             {pairs: true, channel: [4]int{0, 1, 2, 3}},
	ports.ColorFormatYCrYCb:             {pairs: true, channel: [4]int{0, 3, 2, 1}},
	ports.ColorFormatCbYCrY:             {pairs: true, channel: [4]int{1, 0, 3, 2}},
	ports.ColorFormatCrYCbY:             {pairs: true, channel: [4]int{1, 2, 3, 0}},
}

func lookup(format ports.ColorFormat) (layout, error) {
	l, ok := layouts[format]
	if !ok {
		return layout{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return l, nil
}

// Supported reports whether format can be packed and unpacked.
func Supported(format ports.ColorFormat) bool {
	_, ok := layouts[format]
	return ok
}

// SupportedFormats lists every format this package handles, in numeric order.
func SupportedFormats() []ports.ColorFormat {
	var out []ports.ColorFormat
	for _, f := range ports.AllColorFormats() {
		if Supported(f) {
			out = append(out, f)
		}
	}
	return out
}

// Stride returns the byte length of one row of the first plane.
func Stride(format ports.ColorFormat, width int) (int, error) {
	l, err := lookup(format)
	if err != nil {
		return 0, err
	}
	switch {
	case l.planar:
		return width, nil
	case l.pairs:
		return half(width) * 4, nil
	default:
		return width * l.bpp, nil
	}
}

// FrameSize returns the number of bytes a width x height frame occupies.
func FrameSize(format ports.ColorFormat, width, height int) (int, error) {
	l, err := lookup(format)
	if err != nil {
		return 0, err
	}
	if l.planar {
		return width*height + 2*half(width)*half(height), nil
	}
	stride, _ := Stride(format, width)
	return stride * height, nil
}

func half(n int) int {
	return (n + 1) / 2
}
