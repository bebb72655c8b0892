package rawimage

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/omxjpeg/pkg/ports"
)

// Pack converts img into a raw frame in format.
func Pack(img image.Image, format ports.ColorFormat) ([]byte, error) {
	l, err := lookup(format)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	size, _ := FrameSize(format, w, h)
	out := make([]byte, size)
	stride, _ := Stride(format, w)

	switch {
	case l.planar:
		packYUV420(out, img, w, h)
	case l.pairs:
		packYUV422(out, img, l, w, h, stride)
	default:
		for y := 0; y < h; y++ {
			row := out[y*stride:]
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				packPixel(row[x*l.bpp:], format, l, c)
			}
		}
	}
	return out, nil
}

func packPixel(dst []byte, format ports.ColorFormat, l layout, c color.NRGBA) {
	switch format {
	case ports.ColorFormat16bitRGB565:
		v := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
		dst[0], dst[1] = byte(v), byte(v>>8)
	case ports.ColorFormat16bitBGR565:
		v := uint16(c.B>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.R>>3)
		dst[0], dst[1] = byte(v), byte(v>>8)
	case ports.ColorFormatL8:
		dst[0] = color.GrayModel.Convert(c).(color.Gray).Y
	default:
		dst[l.channel[chR]] = c.R
		dst[l.channel[chG]] = c.G
		dst[l.channel[chB]] = c.B
		if a := l.channel[chA]; a >= 0 {
			dst[a] = c.A
		}
	}
}

func ycbcrAt(img image.Image, x, y int) color.YCbCr {
	r, g, b, _ := img.At(x, y).RGBA()
	yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	return color.YCbCr{Y: yy, Cb: cb, Cr: cr}
}

// packYUV420 writes the Y plane followed by quarter-size U and V planes.
// Chroma is sampled at the top-left pixel of each 2x2 block.
func packYUV420(out []byte, img image.Image, w, h int) {
	b := img.Bounds()
	cw, ch := half(w), half(h)
	yPlane := out[:w*h]
	uPlane := out[w*h : w*h+cw*ch]
	vPlane := out[w*h+cw*ch:]

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := ycbcrAt(img, b.Min.X+x, b.Min.Y+y)
			yPlane[y*w+x] = c.Y
			if x%2 == 0 && y%2 == 0 {
				uPlane[(y/2)*cw+x/2] = c.Cb
				vPlane[(y/2)*cw+x/2] = c.Cr
			}
		}
	}
}

func packYUV422(out []byte, img image.Image, l layout, w, h, stride int) {
	b := img.Bounds()
	for y := 0; y < h; y++ {
		row := out[y*stride:]
		for x := 0; x < w; x += 2 {
			c0 := ycbcrAt(img, b.Min.X+x, b.Min.Y+y)
			c1 := c0
			if x+1 < w {
				c1 = ycbcrAt(img, b.Min.X+x+1, b.Min.Y+y)
			}
			pair := row[(x/2)*4:]
			pair[l.channel[pY0]] = c0.Y
			pair[l.channel[pY1]] = c1.Y
			pair[l.channel[pCb]] = c0.Cb
			pair[l.channel[pCr]] = c0.Cr
		}
	}
}

// checkLen verifies raw covers a width x height frame in format.
func checkLen(raw []byte, format ports.ColorFormat, w, h int) error {
	size, err := FrameSize(format, w, h)
	if err != nil {
		return err
	}
	if len(raw) < size {
		return fmt.Errorf("%w: %d bytes, %s %dx%d needs %d", ErrShortFrame, len(raw), format, w, h, size)
	}
	return nil
}
