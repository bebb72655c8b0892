package ports

import "fmt"

// ColorFormat identifies a raw pixel layout. Values follow the OpenMAX IL
// headers, including the Broadcom vendor extensions.
type ColorFormat uint32

const (
	ColorFormatUnused ColorFormat = iota
	ColorFormatMonochrome
	ColorFormat8bitRGB332
	ColorFormat12bitRGB444
	ColorFormat16bitARGB4444
	ColorFormat16bitARGB1555
	ColorFormat16bitRGB565
	ColorFormat16bitBGR565
	ColorFormat18bitRGB666
	ColorFormat18bitARGB1665
	ColorFormat19bitARGB1666
	ColorFormat24bitRGB888
	ColorFormat24bitBGR888
	ColorFormat24bitARGB1887
	ColorFormat25bitARGB1888
	ColorFormat32bitBGRA8888
	ColorFormat32bitARGB8888
	ColorFormatYUV411Planar
	ColorFormatYUV411PackedPlanar
	ColorFormatYUV420Planar
	ColorFormatYUV420PackedPlanar
	ColorFormatYUV420SemiPlanar
	ColorFormatYUV422Planar
	ColorFormatYUV422PackedPlanar
	ColorFormatYUV422SemiPlanar
	ColorFormatYCbYCr
	ColorFormatYCrYCb
	ColorFormatCbYCrY
	ColorFormatCrYCbY
	ColorFormatYUV444Interleaved
	ColorFormatRawBayer8bit
	ColorFormatRawBayer10bit
	ColorFormatRawBayer8bitcompressed
	ColorFormatL2
	ColorFormatL4
	ColorFormatL8
	ColorFormatL16
	ColorFormatL24
	ColorFormatL32
	ColorFormatYUV420PackedSemiPlanar
	ColorFormatYUV422PackedSemiPlanar
	ColorFormat18BitBGR666
	ColorFormat24BitARGB6666
	ColorFormat24BitABGR6666
)

// Broadcom vendor extensions.
const (
	ColorFormat32bitABGR8888 ColorFormat = 0x7F000001 + iota
	ColorFormat8bitPalette
	ColorFormatYUVUV128
	ColorFormatRawBayer12bit
	ColorFormatBRCMEGL
	ColorFormatBRCMOpaque
	ColorFormatYVU420PackedPlanar
	ColorFormatYVU420PackedSemiPlanar
	ColorFormatRawBayer16bit
	ColorFormatYUV420_16PackedPlanar
	ColorFormatYUVUV64_16
)

var colorFormatNames = map[ColorFormat]string{
	ColorFormatUnused:                 "Unused",
	ColorFormatMonochrome:             "Monochrome",
	ColorFormat8bitRGB332:             "8bitRGB332",
	ColorFormat12bitRGB444:            "12bitRGB444",
	ColorFormat16bitARGB4444:          "16bitARGB4444",
	ColorFormat16bitARGB1555:          "16bitARGB1555",
	ColorFormat16bitRGB565:            "16bitRGB565",
	ColorFormat16bitBGR565:            "16bitBGR565",
	ColorFormat18bitRGB666:            "18bitRGB666",
	ColorFormat18bitARGB1665:          "18bitARGB1665",
	ColorFormat19bitARGB1666:          "19bitARGB1666",
	ColorFormat24bitRGB888:            "24bitRGB888",
	ColorFormat24bitBGR888:            "24bitBGR888",
	ColorFormat24bitARGB1887:          "24bitARGB1887",
	ColorFormat25bitARGB1888:          "25bitARGB1888",
	ColorFormat32bitBGRA8888:          "32bitBGRA8888",
	ColorFormat32bitARGB8888:          "32bitARGB8888",
	ColorFormatYUV411Planar:           "YUV411Planar",
	ColorFormatYUV411PackedPlanar:     "YUV411PackedPlanar",
	ColorFormatYUV420Planar:           "YUV420Planar",
	ColorFormatYUV420PackedPlanar:     "YUV420PackedPlanar",
	ColorFormatYUV420SemiPlanar:       "YUV420SemiPlanar",
	ColorFormatYUV422Planar:           "YUV422Planar",
	ColorFormatYUV422PackedPlanar:     "YUV422PackedPlanar",
	ColorFormatYUV422SemiPlanar:       "YUV422SemiPlanar",
	ColorFormatYCbYCr:                 "YCbYCr",
	ColorFormatYCrYCb:                 "YCrYCb",
	ColorFormatCbYCrY:                 "CbYCrY",
	ColorFormatCrYCbY:                 "CrYCbY",
	ColorFormatYUV444Interleaved:      "YUV444Interleaved",
	ColorFormatRawBayer8bit:           "RawBayer8bit",
	ColorFormatRawBayer10bit:          "RawBayer10bit",
	ColorFormatRawBayer8bitcompressed: "RawBayer8bitcompressed",
	ColorFormatL2:                     "L2",
	ColorFormatL4:                     "L4",
	ColorFormatL8:                     "L8",
	ColorFormatL16:                    "L16",
	ColorFormatL24:                    "L24",
	ColorFormatL32:                    "L32",
	ColorFormatYUV420PackedSemiPlanar: "YUV420PackedSemiPlanar",
	ColorFormatYUV422PackedSemiPlanar: "YUV422PackedSemiPlanar",
	ColorFormat18BitBGR666:            "18BitBGR666",
	ColorFormat24BitARGB6666:          "24BitARGB6666",
	ColorFormat24BitABGR6666:          "24BitABGR6666",
	ColorFormat32bitABGR8888:          "32bitABGR8888",
	ColorFormat8bitPalette:            "8bitPalette",
	ColorFormatYUVUV128:               "YUVUV128",
	ColorFormatRawBayer12bit:          "RawBayer12bit",
	ColorFormatBRCMEGL:                "BRCMEGL",
	ColorFormatBRCMOpaque:             "BRCMOpaque",
	ColorFormatYVU420PackedPlanar:     "YVU420PackedPlanar",
	ColorFormatYVU420PackedSemiPlanar: "YVU420PackedSemiPlanar",
	ColorFormatRawBayer16bit:          "RawBayer16bit",
	ColorFormatYUV420_16PackedPlanar:  "YUV420_16PackedPlanar",
	ColorFormatYUVUV64_16:             "YUVUV64_16",
}

func (f ColorFormat) String() string {
	if name, ok := colorFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("ColorFormat(0x%08x)", uint32(f))
}

// ParseColorFormat looks a format up by the name String returns.
func ParseColorFormat(name string) (ColorFormat, bool) {
	for f, n := range colorFormatNames {
		if n == name {
			return f, true
		}
	}
	return ColorFormatUnused, false
}

// AllColorFormats returns every known format in ascending numeric order.
func AllColorFormats() []ColorFormat {
	formats := make([]ColorFormat, 0, len(colorFormatNames))
	for f := ColorFormatUnused; f <= ColorFormat24BitABGR6666; f++ {
		formats = append(formats, f)
	}
	for f := ColorFormat32bitABGR8888; f <= ColorFormatYUVUV64_16; f++ {
		formats = append(formats, f)
	}
	return formats
}
