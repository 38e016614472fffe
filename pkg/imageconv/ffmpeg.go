package imageconv

import (
	"bytes"
	"context"
	"image"
	"os/exec"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"image_conversion/entity"
)

// FFmpegConverter shells out to ffmpeg. It covers inputs the
// in-process decoders cannot (HEIC, AVIF) and keeps codec faults in a
// separate process, at the cost of one process spawn per conversion.
type FFmpegConverter struct {
	target        string
	maxResolution int
}

func NewFFmpegConverter(target string, maxResolution int) *FFmpegConverter {
	return &FFmpegConverter{target: target, maxResolution: maxResolution}
}

// Convert pipes the upload through ffmpeg. The process runs to
// completion; the caller enforces its own deadline and discards the
// result once it expires.
func (c *FFmpegConverter) Convert(_ context.Context, data []byte, quality int) ([]byte, error) {
	// Header-only dimension check for every format the in-process
	// decoders know, so oversized frames are rejected before a process
	// is spawned. Formats only ffmpeg understands skip the probe.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		if cfg.Width > c.maxResolution || cfg.Height > c.maxResolution {
			return nil, errors.Wrapf(entity.ErrImageTooLarge,
				"%dx%d (max %dx%d)", cfg.Width, cfg.Height, c.maxResolution, c.maxResolution)
		}
	}

	in := bytes.NewReader(data)
	out := new(bytes.Buffer)

	args := ffmpeg.KwArgs{"f": "image2", "frames:v": 1}
	switch c.target {
	case "png":
		args["vcodec"] = "png"
	case "webp":
		args["vcodec"] = "libwebp"
		args["quality"] = quality
	default:
		args["vcodec"] = "mjpeg"
		// ffmpeg jpeg quality runs 2 (best) to 31 (worst)
		args["q:v"] = 2 + (100-quality)*29/99
	}

	err := ffmpeg.Input("pipe:").
		Output("pipe:", args).
		WithInput(in).
		WithOutput(out).
		OverWriteOutput().
		Run()
	if err != nil {
		return nil, wrapRunError(err)
	}
	if out.Len() == 0 {
		return nil, errors.Wrap(entity.ErrDecode, "ffmpeg produced no output")
	}

	return out.Bytes(), nil
}

// wrapRunError separates tooling faults from bad input: a spawn
// failure (ffmpeg missing or not executable) is ours, not the
// client's; anything the process itself rejected is treated as
// undecodable input.
func wrapRunError(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return errors.Wrap(entity.ErrInternal, err.Error())
	}
	return errors.Wrap(entity.ErrDecode, err.Error())
}

func (c *FFmpegConverter) TargetExt() string   { return targetExt(c.target) }
func (c *FFmpegConverter) ContentType() string { return targetContentType(c.target) }
