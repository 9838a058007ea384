package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2
	TGATypeGray         = 3
	TGATypeTrueColorRLE = 10
	TGATypeGrayRLE      = 11
)

const tgaHeaderSize = 18

var (
	ErrTGATruncated   = errors.New("tga data truncated")
	ErrTGAUnsupported = errors.New("unsupported tga variant")
)

// DecodeTGA decodes uncompressed or RLE true-color (24/32 bit) and grayscale
// (8 bit) TGA images. True-color images decode to *image.NRGBA, grayscale to
// *image.Gray, always top row first.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty %dx%d image", ErrTGAUnsupported, width, height)
	}

	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	switch {
	case imageType != TGATypeTrueColor && imageType != TGATypeTrueColorRLE && !gray:
		return nil, fmt.Errorf("%w: type %d", ErrTGAUnsupported, imageType)
	case gray && bpp != 8:
		return nil, fmt.Errorf("%w: %d-bit grayscale", ErrTGAUnsupported, bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("%w: %d-bit true-color", ErrTGAUnsupported, bpp)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	bytesPerPixel := bpp / 8
	var raw []byte
	var err error
	if imageType == TGATypeTrueColorRLE || imageType == TGATypeGrayRLE {
		raw, err = unpackTGARLE(data[offset:], width*height, bytesPerPixel)
		if err != nil {
			return nil, err
		}
	} else {
		size := width * height * bytesPerPixel
		if len(data[offset:]) < size {
			return nil, ErrTGATruncated
		}
		raw = data[offset : offset+size]
	}

	if gray {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			src := raw[y*width : (y+1)*width]
			copy(img.Pix[tgaRow(y, height, topToBottom)*img.Stride:], src)
		}
		return img, nil
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := img.Pix[tgaRow(y, height, topToBottom)*img.Stride:]
		for x := 0; x < width; x++ {
			s := raw[(y*width+x)*bytesPerPixel:]
			d := row[x*4:]
			// Pixels are stored BGR(A).
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 255
			if bytesPerPixel == 4 {
				d[3] = s[3]
			}
		}
	}
	return img, nil
}

// tgaRow maps a stored row to its destination; TGA defaults to bottom-up.
func tgaRow(y, height int, topToBottom bool) int {
	if topToBottom {
		return y
	}
	return height - 1 - y
}

// unpackTGARLE expands RLE packets into count pixels of bytesPerPixel each.
func unpackTGARLE(data []byte, count, bytesPerPixel int) ([]byte, error) {
	out := make([]byte, 0, count*bytesPerPixel)
	i := 0
	for len(out) < cap(out) {
		if i >= len(data) {
			return nil, ErrTGATruncated
		}
		packet := data[i]
		i++
		n := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if i+bytesPerPixel > len(data) {
				return nil, ErrTGATruncated
			}
			px := data[i : i+bytesPerPixel]
			i += bytesPerPixel
			for k := 0; k < n && len(out) < cap(out); k++ {
				out = append(out, px...)
			}
			continue
		}

		size := n * bytesPerPixel
		if i+size > len(data) {
			return nil, ErrTGATruncated
		}
		remaining := cap(out) - len(out)
		if size > remaining {
			size = remaining
		}
		out = append(out, data[i:i+size]...)
		i += n * bytesPerPixel
	}
	return out, nil
}
