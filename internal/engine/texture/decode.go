// Package texture decodes image files and manages per-model texture uploads.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

var (
	ErrUnsupportedFormat   = errors.New("unsupported image format")
	ErrUnsupportedChannels = errors.New("unsupported channel count")
)

type decodeFunc func(data []byte) (image.Image, error)

func fromReader(decode func(io.Reader) (image.Image, error)) decodeFunc {
	return func(data []byte) (image.Image, error) {
		return decode(bytes.NewReader(data))
	}
}

// decoders is keyed by the extension filetype reports for the magic bytes.
var decoders = map[string]decodeFunc{
	"png":  fromReader(png.Decode),
	"jpg":  fromReader(jpeg.Decode),
	"gif":  fromReader(gif.Decode),
	"bmp":  fromReader(bmp.Decode),
	"tif":  fromReader(tiff.Decode),
	"webp": fromReader(webp.Decode),
}

// Decode sniffs the image format from its content and decodes it. TGA has no
// magic number, so it is chosen by the name's extension when sniffing fails.
func Decode(data []byte, name string) (image.Image, error) {
	kind, _ := filetype.Match(data)
	decode, ok := decoders[kind.Extension]
	if !ok {
		if !strings.EqualFold(filepath.Ext(name), ".tga") {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
		}
		decode = DecodeTGA
	}

	if kind.Extension == "png" && pngColorType(data) == pngGrayAlpha {
		return nil, fmt.Errorf("%w: %s is gray with alpha (2 channels)", ErrUnsupportedChannels, name)
	}

	img, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

const (
	pngGrayAlpha = 4
	// 8 byte signature, chunk length and type, width, height, bit depth.
	pngColorTypeOffset = 25
)

// pngColorType reads the color type from the IHDR chunk, or -1 when the
// header is too short. image/png widens gray+alpha to NRGBA, hiding the
// file's channel count.
func pngColorType(data []byte) int {
	if len(data) <= pngColorTypeOffset || string(data[12:16]) != "IHDR" {
		return -1
	}
	return int(data[pngColorTypeOffset])
}

// Channels reports how many channels an upload of img needs: 1 for gray and
// alpha images, 3 for opaque color, 4 for color with transparency.
func Channels(img image.Image) (int, error) {
	switch im := img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return 1, nil
	case *image.RGBA, *image.RGBA64, *image.NRGBA, *image.NRGBA64,
		*image.YCbCr, *image.NYCbCrA, *image.CMYK, *image.Paletted:
		if im.(interface{ Opaque() bool }).Opaque() {
			return 3, nil
		}
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: color model %T", ErrUnsupportedChannels, img.ColorModel())
	}
}

// FormatFor maps a channel count to an upload format.
func FormatFor(channels int) (gpu.PixelFormat, error) {
	switch channels {
	case 1:
		return gpu.FormatRed, nil
	case 3:
		return gpu.FormatRGB, nil
	case 4:
		return gpu.FormatRGBA, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedChannels, channels)
	}
}

// ToPixels converts img into tightly packed rows, top row first, in the format
// its channel count selects. flipV mirrors it vertically first.
func ToPixels(img image.Image, flipV bool) (gpu.Image, error) {
	channels, err := Channels(img)
	if err != nil {
		return gpu.Image{}, err
	}
	format, err := FormatFor(channels)
	if err != nil {
		return gpu.Image{}, err
	}

	if flipV {
		img = transform.FlipV(img)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := gpu.Image{Width: w, Height: h, Format: format}
	rect := image.Rect(0, 0, w, h)

	if format == gpu.FormatRed {
		gray := image.NewGray(rect)
		draw.Draw(gray, rect, img, b.Min, draw.Src)
		out.Pix = gray.Pix
		return out, nil
	}

	nrgba := image.NewNRGBA(rect)
	draw.Draw(nrgba, rect, img, b.Min, draw.Src)
	if format == gpu.FormatRGBA {
		out.Pix = nrgba.Pix
		return out, nil
	}

	out.Pix = make([]byte, 0, w*h*3)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		out.Pix = append(out.Pix, nrgba.Pix[i], nrgba.Pix[i+1], nrgba.Pix[i+2])
	}
	return out, nil
}
