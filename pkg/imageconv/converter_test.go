package imageconv

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image_conversion/entity"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func TestConvertPNGToJPEG(t *testing.T) {
	c := NewConverter("jpeg", 4096)

	out, err := c.Convert(context.Background(), samplePNG(t, 8, 8), 85)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, []byte{0xFF, 0xD8}, out[:2], "JPEG SOI marker")

	// same input and quality, same bytes
	out2, err := c.Convert(context.Background(), samplePNG(t, 8, 8), 85)
	require.NoError(t, err)
	assert.Equal(t, out, out2)
}

func TestConvertToPNG(t *testing.T) {
	c := NewConverter("png", 4096)

	out, err := c.Convert(context.Background(), samplePNG(t, 4, 4), 85)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, out[:4])
}

func TestConvertTruncatedInput(t *testing.T) {
	c := NewConverter("jpeg", 4096)

	data := samplePNG(t, 8, 8)
	_, err := c.Convert(context.Background(), data[:len(data)/2], 85)
	require.ErrorIs(t, err, entity.ErrDecode)
}

func TestConvertGarbageInput(t *testing.T) {
	c := NewConverter("jpeg", 4096)

	for _, data := range [][]byte{nil, {}, []byte("not an image at all")} {
		_, err := c.Convert(context.Background(), data, 85)
		assert.ErrorIs(t, err, entity.ErrDecode)
	}
}

func TestConvertRejectsOversizedResolution(t *testing.T) {
	c := NewConverter("jpeg", 4)

	_, err := c.Convert(context.Background(), samplePNG(t, 8, 8), 85)
	require.ErrorIs(t, err, entity.ErrImageTooLarge)
}

func TestTargetMapping(t *testing.T) {
	tests := []struct {
		target      string
		ext         string
		contentType string
	}{
		{"jpeg", ".jpg", "image/jpeg"},
		{"png", ".png", "image/png"},
		{"webp", ".webp", "image/webp"},
	}

	for _, tt := range tests {
		c := NewConverter(tt.target, 4096)
		assert.Equal(t, tt.ext, c.TargetExt())
		assert.Equal(t, tt.contentType, c.ContentType())
	}
}

func TestSelect(t *testing.T) {
	assert.IsType(t, &Converter{}, Select("native", "jpeg", 4096))
	assert.IsType(t, &FFmpegConverter{}, Select("ffmpeg", "jpeg", 4096))
}
