package imageconv

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	// webp decode registration; jpeg/png/gif/tiff/bmp come in with imaging
	_ "golang.org/x/image/webp"

	"image_conversion/entity"
)

// Converter is the in-process codec: stdlib and x/image decoders in,
// target-format encoder out.
type Converter struct {
	target        string
	maxResolution int
}

func NewConverter(target string, maxResolution int) *Converter {
	return &Converter{target: target, maxResolution: maxResolution}
}

// Decode parses the upload into pixels, honoring EXIF orientation.
func (c *Converter) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(entity.ErrDecode, err.Error())
	}
	return img, nil
}

// Encode re-encodes pixels into the target format at the given quality.
func (c *Converter) Encode(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch c.target {
	case "png":
		err = png.Encode(&buf, img) // lossless, quality does not apply
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)})
	default:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, errors.Wrap(entity.ErrEncode, err.Error())
	}

	return buf.Bytes(), nil
}

func (c *Converter) Convert(_ context.Context, data []byte, quality int) ([]byte, error) {
	// Header-only dimension check first, so decompression bombs are
	// rejected before any pixel buffer is allocated.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if cfg.Width > c.maxResolution || cfg.Height > c.maxResolution {
			return nil, errors.Wrapf(entity.ErrImageTooLarge,
				"%dx%d (max %dx%d)", cfg.Width, cfg.Height, c.maxResolution, c.maxResolution)
		}
	}

	img, err := c.Decode(data)
	if err != nil {
		return nil, err
	}

	if b := img.Bounds(); b.Dx() > c.maxResolution || b.Dy() > c.maxResolution {
		return nil, errors.Wrapf(entity.ErrImageTooLarge,
			"%dx%d (max %dx%d)", b.Dx(), b.Dy(), c.maxResolution, c.maxResolution)
	}

	return c.Encode(img, quality)
}

func (c *Converter) TargetExt() string   { return targetExt(c.target) }
func (c *Converter) ContentType() string { return targetContentType(c.target) }
