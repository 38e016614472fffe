package conversion

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"image_conversion/config"
	"image_conversion/entity"
	"image_conversion/internal/telemetry/metric"
	"image_conversion/pkg/logger"
)

const traceName = "conversion"

// UseCase drives one upload through admit -> dispatch -> await. Each
// request moves strictly forward: validation happened in the
// controller, admission happens here before any worker is touched,
// and every terminal outcome maps to exactly one result.
type UseCase struct {
	adm     *Admission
	pool    *Pool
	timeout time.Duration
	l       logger.Interface
}

var _ entity.ConversionUsecase = (*UseCase)(nil)

func NewUseCase(codec entity.Codec, cfg *config.Config, l logger.Interface) *UseCase {
	return &UseCase{
		adm:     NewAdmission(cfg.Convert.WorkerCount, cfg.Convert.QueueSize),
		pool:    NewPool(codec, l),
		timeout: cfg.Convert.Timeout,
		l:       l,
	}
}

// Convert performs one conversion. The deadline covers both the wait
// for a permit and the codec work; on expiry the caller gets
// ErrTimeout while the worker finishes on its own and discards the
// result, releasing the permit either way.
func (u *UseCase) Convert(ctx context.Context, req entity.ConversionRequest) (entity.ConversionResult, error) {
	ctx, span := otel.Tracer(traceName).Start(ctx, "Convert")
	defer span.End()

	span.SetAttributes(
		attribute.Int("input_size", len(req.Data)),
		attribute.Int("quality", req.Quality),
	)

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	permit, err := u.adm.Acquire(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrServiceBusy) {
			metric.BusyRejectionsTotal.Inc()
			span.AddEvent("admission saturated")
			u.l.Debug("conversion - UseCase - Convert: admission saturated")
			return entity.ConversionResult{}, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return entity.ConversionResult{}, errors.Wrap(entity.ErrTimeout, "waiting for permit")
		}
		// caller went away while queued; nothing was started
		return entity.ConversionResult{}, err
	}

	resCh := u.pool.Dispatch(ctx, req, permit)

	select {
	case res := <-resCh:
		return res, res.Err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return entity.ConversionResult{}, entity.ErrTimeout
		}
		return entity.ConversionResult{}, ctx.Err()
	}
}

// AvailablePermits reports free conversion slots; /api/info surfaces
// it and the tests use it to prove permits never leak.
func (u *UseCase) AvailablePermits() int {
	return u.adm.Available()
}
