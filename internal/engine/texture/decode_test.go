package texture

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/internal/engine/gpu"
)

// makeTGAHeader builds an 18-byte TGA header.
func makeTGAHeader(imageType byte, w, h int, bpp byte, topToBottom bool) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	if topToBottom {
		hdr[17] = 0x20
	}
	return hdr
}

func TestDecodeTGA(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
		check   func(t *testing.T, img image.Image)
	}{
		{
			name: "uncompressed 24-bit bottom-up",
			// Stored rows: bottom (blue), then top (red). BGR order.
			data: append(makeTGAHeader(TGATypeTrueColor, 1, 2, 24, false), 255, 0, 0, 0, 0, 255),
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.At(0, 0))
				assert.Equal(t, color.NRGBA{B: 255, A: 255}, img.At(0, 1))
			},
		},
		{
			name: "uncompressed 32-bit top-down",
			data: append(makeTGAHeader(TGATypeTrueColor, 2, 1, 32, true), 0, 0, 255, 128, 0, 255, 0, 255),
			check: func(t *testing.T, img image.Image) {
				assert.Equal(t, color.NRGBA{R: 255, A: 128}, img.At(0, 0))
				assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.At(1, 0))
			},
		},
		{
			name: "rle 32-bit",
			// Run of 3 green pixels, then one raw white pixel.
			data: append(makeTGAHeader(TGATypeTrueColorRLE, 4, 1, 32, true),
				0x82, 0, 255, 0, 255,
				0x00, 255, 255, 255, 255),
			check: func(t *testing.T, img image.Image) {
				for x := 0; x < 3; x++ {
					assert.Equal(t, color.NRGBA{G: 255, A: 255}, img.At(x, 0))
				}
				assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.At(3, 0))
			},
		},
		{
			name: "grayscale",
			data: append(makeTGAHeader(TGATypeGray, 2, 2, 8, true), 10, 20, 30, 40),
			check: func(t *testing.T, img image.Image) {
				gray, ok := img.(*image.Gray)
				require.True(t, ok, "expected *image.Gray, got %T", img)
				assert.Equal(t, []byte{10, 20, 30, 40}, gray.Pix)
			},
		},
		{
			name: "grayscale rle bottom-up",
			data: append(makeTGAHeader(TGATypeGrayRLE, 2, 2, 8, false), 0x81, 7, 0x81, 9),
			check: func(t *testing.T, img image.Image) {
				gray := img.(*image.Gray)
				assert.Equal(t, []byte{9, 9, 7, 7}, gray.Pix)
			},
		},
		{name: "short header", data: []byte{0, 0, 2}, wantErr: ErrTGATruncated},
		{name: "truncated pixels", data: append(makeTGAHeader(TGATypeTrueColor, 2, 2, 24, false), 1, 2, 3), wantErr: ErrTGATruncated},
		{name: "truncated rle", data: append(makeTGAHeader(TGATypeTrueColorRLE, 4, 1, 24, false), 0x83, 1), wantErr: ErrTGATruncated},
		{name: "color mapped", data: func() []byte { h := makeTGAHeader(1, 1, 1, 8, false); h[1] = 1; return h }(), wantErr: ErrTGAUnsupported},
		{name: "16-bit", data: makeTGAHeader(TGATypeTrueColor, 1, 1, 16, false), wantErr: ErrTGAUnsupported},
		{name: "zero size", data: makeTGAHeader(TGATypeTrueColor, 0, 4, 24, false), wantErr: ErrTGAUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeTGA(tt.data)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, img)
		})
	}
}

func TestDecodeDispatch(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, solid(8, 8, color.NRGBA{R: 255, A: 255}), nil))

	img, err := Decode(jpg.Bytes(), "photo.png")
	require.NoError(t, err, "content decides, not the extension")
	assert.Equal(t, 8, img.Bounds().Dx())

	tga := append(makeTGAHeader(TGATypeGray, 1, 1, 8, false), 42)
	img, err = Decode(tga, "height.TGA")
	require.NoError(t, err)
	assert.IsType(t, &image.Gray{}, img)

	_, err = Decode(tga, "height.raw")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, "broken.png")
	assert.Error(t, err)
}

// rawPNG writes a 1x1, 8-bit PNG of the given color type with one pixel of
// samples. image/png never encodes gray+alpha, so the file is built by hand.
func rawPNG(t *testing.T, colorType byte, samples ...byte) []byte {
	t.Helper()
	chunk := func(buf *bytes.Buffer, typ string, data []byte) {
		require.NoError(t, binary.Write(buf, binary.BigEndian, uint32(len(data))))
		body := append([]byte(typ), data...)
		buf.Write(body)
		require.NoError(t, binary.Write(buf, binary.BigEndian, crc32.ChecksumIEEE(body)))
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(append([]byte{0}, samples...))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	chunk(&out, "IHDR", []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, colorType, 0, 0, 0})
	chunk(&out, "IDAT", idat.Bytes())
	chunk(&out, "IEND", nil)
	return out.Bytes()
}

func TestDecodePNGChannels(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		channels int
		rejected bool
	}{
		{"gray", rawPNG(t, 0, 7), 1, false},
		{"gray with alpha", rawPNG(t, pngGrayAlpha, 7, 128), 0, true},
		{"rgb", rawPNG(t, 2, 1, 2, 3), 3, false},
		{"rgba", rawPNG(t, 6, 1, 2, 3, 128), 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(tt.data, "tex.png")
			if tt.rejected {
				assert.ErrorIs(t, err, ErrUnsupportedChannels)
				return
			}
			require.NoError(t, err)
			got, err := Channels(img)
			require.NoError(t, err)
			assert.Equal(t, tt.channels, got)
		})
	}
}

func TestChannels(t *testing.T) {
	rect := image.Rect(0, 0, 1, 1)
	translucent := image.NewNRGBA(rect)
	translucent.SetNRGBA(0, 0, color.NRGBA{R: 1, A: 10})

	tests := []struct {
		name string
		img  image.Image
		want int
	}{
		{"gray", image.NewGray(rect), 1},
		{"gray16", image.NewGray16(rect), 1},
		{"alpha", image.NewAlpha(rect), 1},
		{"opaque nrgba", solid(1, 1, color.NRGBA{A: 255}), 3},
		{"translucent nrgba", translucent, 4},
		{"ycbcr", image.NewYCbCr(rect, image.YCbCrSubsampleRatio444), 3},
		{"paletted opaque", image.NewPaletted(rect, color.Palette{color.Black}), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Channels(tt.img)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Channels(image.NewUniform(color.White))
	assert.ErrorIs(t, err, ErrUnsupportedChannels)
}

func TestFormatFor(t *testing.T) {
	for channels, want := range map[int]gpu.PixelFormat{1: gpu.FormatRed, 3: gpu.FormatRGB, 4: gpu.FormatRGBA} {
		got, err := FormatFor(channels)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, channels, got.Channels())
	}
	for _, channels := range []int{0, 2, 5} {
		_, err := FormatFor(channels)
		assert.ErrorIs(t, err, ErrUnsupportedChannels)
	}
}

func TestToPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	px, err := ToPixels(img, false)
	require.NoError(t, err)
	assert.Equal(t, gpu.FormatRGB, px.Format)
	assert.Equal(t, []byte{10, 20, 30, 40, 50, 60}, px.Pix)

	flipped, err := ToPixels(img, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{40, 50, 60, 10, 20, 30}, flipped.Pix)

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	copy(gray.Pix, []byte{1, 2, 3, 4})
	px, err = ToPixels(gray, true)
	require.NoError(t, err)
	assert.Equal(t, gpu.FormatRed, px.Format)
	assert.Equal(t, []byte{3, 4, 1, 2}, px.Pix)

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	translucent.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 0x80})
	px, err = ToPixels(translucent, false)
	require.NoError(t, err)
	assert.Equal(t, gpu.FormatRGBA, px.Format)
	assert.Equal(t, []byte{255, 0, 0, 0x80}, px.Pix)

	sub := solid(4, 4, color.NRGBA{B: 9, A: 255}).SubImage(image.Rect(1, 1, 3, 2))
	px, err = ToPixels(sub, false)
	require.NoError(t, err)
	assert.Equal(t, 2, px.Width)
	assert.Equal(t, 1, px.Height)
	assert.Len(t, px.Pix, 6)
}
