package rawimage

import (
	"image"
	"image/color"

	"github.com/user/omxjpeg/pkg/ports"
)

// Unpack converts a raw frame in format into an image of width x height.
func Unpack(raw []byte, format ports.ColorFormat, width, height int) (image.Image, error) {
	l, err := lookup(format)
	if err != nil {
		return nil, err
	}
	if err := checkLen(raw, format, width, height); err != nil {
		return nil, err
	}
	rect := image.Rect(0, 0, width, height)
	stride, _ := Stride(format, width)

	switch {
	case l.planar:
		cw, ch := half(width), half(height)
		ySize := width * height
		img := &image.YCbCr{
			Y:              raw[:ySize],
			Cb:             raw[ySize : ySize+cw*ch],
			Cr:             raw[ySize+cw*ch : ySize+2*cw*ch],
			YStride:        width,
			CStride:        cw,
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           rect,
		}
		return img, nil

	case l.pairs:
		img := image.NewYCbCr(rect, image.YCbCrSubsampleRatio422)
		for y := 0; y < height; y++ {
			row := raw[y*stride:]
			for x := 0; x < width; x += 2 {
				pair := row[(x/2)*4:]
				img.Y[y*img.YStride+x] = pair[l.channel[pY0]]
				if x+1 < width {
					img.Y[y*img.YStride+x+1] = pair[l.channel[pY1]]
				}
				ci := img.COffset(x, y)
				img.Cb[ci] = pair[l.channel[pCb]]
				img.Cr[ci] = pair[l.channel[pCr]]
			}
		}
		return img, nil

	case format == ports.ColorFormatL8:
		img := image.NewGray(rect)
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], raw[y*stride:])
		}
		return img, nil
	}

	img := image.NewNRGBA(rect)
	for y := 0; y < height; y++ {
		row := raw[y*stride:]
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, unpackPixel(row[x*l.bpp:], format, l))
		}
	}
	return img, nil
}

func unpackPixel(src []byte, format ports.ColorFormat, l layout) color.NRGBA {
	switch format {
	case ports.ColorFormat16bitRGB565, ports.ColorFormat16bitBGR565:
		v := uint16(src[0]) | uint16(src[1])<<8
		hi := expand5(uint8(v >> 11))
		g := expand6(uint8(v>>5) & 0x3f)
		lo := expand5(uint8(v) & 0x1f)
		if format == ports.ColorFormat16bitBGR565 {
			hi, lo = lo, hi
		}
		return color.NRGBA{R: hi, G: g, B: lo, A: 0xff}
	}

	c := color.NRGBA{
		R: src[l.channel[chR]],
		G: src[l.channel[chG]],
		B: src[l.channel[chB]],
		A: 0xff,
	}
	if a := l.channel[chA]; a >= 0 {
		c.A = src[a]
	}
	return c
}

func expand5(v uint8) uint8 {
	return v<<3 | v>>2
}

func expand6(v uint8) uint8 {
	return v<<2 | v>>4
}
