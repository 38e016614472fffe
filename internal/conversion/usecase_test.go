package conversion

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image_conversion/config"
	"image_conversion/entity"
	"image_conversion/pkg/logger"
)

func newTestUseCase(codec entity.Codec, workers, queue int, timeout time.Duration) *UseCase {
	cfg := &config.Config{}
	cfg.Convert.WorkerCount = workers
	cfg.Convert.QueueSize = queue
	cfg.Convert.Timeout = timeout

	return NewUseCase(codec, cfg, logger.New("error"))
}

func TestConvertSuccess(t *testing.T) {
	cu := newTestUseCase(&stubCodec{}, 2, 4, time.Second)

	res, err := cu.Convert(context.Background(), entity.ConversionRequest{
		Filename: "cat.heic",
		Data:     []byte("input"),
		Quality:  85,
	})

	require.NoError(t, err)
	assert.Equal(t, "cat.jpg", res.Filename)
	assert.NotEmpty(t, res.Data)
	assert.Eventually(t, func() bool { return cu.AvailablePermits() == 2 }, time.Second, 5*time.Millisecond)
}

func TestConvertBusyWhenSaturated(t *testing.T) {
	block := make(chan struct{})
	cu := newTestUseCase(&stubCodec{block: block}, 1, 0, time.Second)

	firstDone := make(chan error, 1)
	go func() {
		_, err := cu.Convert(context.Background(), entity.ConversionRequest{Data: []byte("x")})
		firstDone <- err
	}()

	require.Eventually(t, func() bool { return cu.AvailablePermits() == 0 }, time.Second, time.Millisecond)

	_, err := cu.Convert(context.Background(), entity.ConversionRequest{Data: []byte("y")})
	require.ErrorIs(t, err, entity.ErrServiceBusy)

	close(block)
	require.NoError(t, <-firstDone)
}

func TestConvertTimeout(t *testing.T) {
	block := make(chan struct{})
	cu := newTestUseCase(&stubCodec{block: block}, 1, 0, 30*time.Millisecond)

	_, err := cu.Convert(context.Background(), entity.ConversionRequest{Data: []byte("x")})
	require.ErrorIs(t, err, entity.ErrTimeout)

	// the worker finishes on its own and hands the permit back
	close(block)
	assert.Eventually(t, func() bool { return cu.AvailablePermits() == 1 }, time.Second, 5*time.Millisecond)
}

func TestConvertTimeoutWhileQueued(t *testing.T) {
	block := make(chan struct{})
	cu := newTestUseCase(&stubCodec{block: block}, 1, 1, 40*time.Millisecond)

	firstDone := make(chan error, 1)
	go func() {
		_, err := cu.Convert(context.Background(), entity.ConversionRequest{Data: []byte("x")})
		firstDone <- err
	}()

	require.Eventually(t, func() bool { return cu.AvailablePermits() == 0 }, time.Second, time.Millisecond)

	// queued behind the running conversion; never gets a permit
	_, err := cu.Convert(context.Background(), entity.ConversionRequest{Data: []byte("y")})
	require.ErrorIs(t, err, entity.ErrTimeout)

	close(block)
	<-firstDone
	assert.Eventually(t, func() bool { return cu.AvailablePermits() == 1 }, time.Second, 5*time.Millisecond)
}

func TestConvertCallerCancelled(t *testing.T) {
	block := make(chan struct{})
	cu := newTestUseCase(&stubCodec{block: block}, 1, 1, time.Second)

	firstDone := make(chan error, 1)
	go func() {
		_, err := cu.Convert(context.Background(), entity.ConversionRequest{Data: []byte("x")})
		firstDone <- err
	}()

	require.Eventually(t, func() bool { return cu.AvailablePermits() == 0 }, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := make(chan error, 1)
	go func() {
		_, err := cu.Convert(ctx, entity.ConversionRequest{Data: []byte("y")})
		cancelled <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()
	require.ErrorIs(t, <-cancelled, context.Canceled)

	close(block)
	require.NoError(t, <-firstDone)
	assert.Eventually(t, func() bool { return cu.AvailablePermits() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPermitsRecoverAfterMixedOutcomes(t *testing.T) {
	// quality selects the outcome so one codec covers all paths
	codec := &stubCodec{fn: func(_ []byte, quality int) ([]byte, error) {
		switch quality % 3 {
		case 0:
			return []byte("ok"), nil
		case 1:
			return nil, errors.Wrap(entity.ErrDecode, "bad input")
		default:
			panic("fault")
		}
	}}
	cu := newTestUseCase(codec, 2, 4, time.Second)

	for i := 0; i < 12; i++ {
		_, _ = cu.Convert(context.Background(), entity.ConversionRequest{
			Data:    []byte("x"),
			Quality: i,
		})
	}

	assert.Eventually(t, func() bool { return cu.AvailablePermits() == 2 }, time.Second, 5*time.Millisecond)
}
