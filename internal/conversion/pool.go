package conversion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"image_conversion/entity"
	"image_conversion/internal/telemetry/metric"
	"image_conversion/pkg/logger"
)

// Pool runs codec work off the request-handling path. Each dispatched
// conversion holds exactly one permit, released by the worker
// goroutine on every exit path including codec panics, so an abandoned
// caller can never leak capacity.
type Pool struct {
	codec entity.Codec
	l     logger.Interface
}

func NewPool(codec entity.Codec, l logger.Interface) *Pool {
	return &Pool{codec: codec, l: l}
}

// Dispatch starts one conversion under the given permit and returns a
// buffered channel that will carry the outcome. The worker always
// finishes and always sends, even when the caller stops listening.
func (p *Pool) Dispatch(ctx context.Context, req entity.ConversionRequest, permit *Permit) <-chan entity.ConversionResult {
	ch := make(chan entity.ConversionResult, 1)

	go func() {
		defer permit.Release()

		metric.ConversionsInFlight.Inc()
		defer metric.ConversionsInFlight.Dec()

		start := time.Now()
		res := p.run(ctx, req)

		metric.ConversionDuration.Observe(time.Since(start).Seconds())
		metric.ConversionsTotal.WithLabelValues(outcome(res.Err)).Inc()

		ch <- res
	}()

	return ch
}

// run converts one request, turning any codec panic into a typed
// fault. A bad input must never take the service down for everyone
// else.
func (p *Pool) run(ctx context.Context, req entity.ConversionRequest) (res entity.ConversionResult) {
	defer func() {
		if r := recover(); r != nil {
			p.l.Error(fmt.Errorf("codec panic: %v", r), "conversion - pool - run")
			res = entity.ConversionResult{Err: errors.Wrapf(entity.ErrInternal, "codec panic: %v", r)}
		}
	}()

	out, err := p.codec.Convert(ctx, req.Data, req.Quality)
	if err != nil {
		return entity.ConversionResult{Err: err}
	}

	return entity.ConversionResult{
		Filename:    OutputFilename(req.Filename, p.codec.TargetExt()),
		ContentType: p.codec.ContentType(),
		Data:        out,
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, entity.ErrDecode):
		return "decode_error"
	case errors.Is(err, entity.ErrEncode):
		return "encode_error"
	case errors.Is(err, entity.ErrImageTooLarge):
		return "image_too_large"
	default:
		return "internal_fault"
	}
}

// OutputFilename derives the download name from the upload name by
// swapping the extension for the target format. Path separators and
// shell-unfriendly characters are stripped; a timestamped name is
// generated when the upload carried no usable name.
func OutputFilename(input, targetExt string) string {
	base := sanitizeName(filepath.Base(strings.TrimSpace(input)))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return fmt.Sprintf("converted-%d%s", time.Now().UnixMilli(), targetExt)
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + targetExt
}

func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
