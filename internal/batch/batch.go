// Package batch converts a directory of images through the same
// admission/pool path the HTTP endpoint uses.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"image_conversion/entity"
	"image_conversion/pkg/logger"
)

type Runner struct {
	cu      entity.ConversionUsecase
	l       logger.Interface
	quality int
	// caps our own fan-out at the pool size so submissions queue here
	// instead of bouncing off admission with ServiceBusy
	slots chan struct{}
}

func NewRunner(cu entity.ConversionUsecase, l logger.Interface, quality, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		cu:      cu,
		l:       l,
		quality: quality,
		slots:   make(chan struct{}, concurrency),
	}
}

// Run converts every regular file in inDir and writes the results to
// outDir. Individual failures are logged and counted, not fatal.
func (r *Runner) Run(ctx context.Context, inDir, outDir string) error {
	entries, err := os.ReadDir(inDir)
	if err != nil {
		return errors.Wrap(err, "batch - Run - ReadDir")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "batch - Run - MkdirAll")
	}

	var wg sync.WaitGroup
	var converted, failed int64

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		wg.Add(1)

		r.slots <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-r.slots }()

			if err := r.convertFile(ctx, inDir, outDir, name); err != nil {
				atomic.AddInt64(&failed, 1)
				r.l.Error(err, "batch - Run - convertFile")
				return
			}
			atomic.AddInt64(&converted, 1)
		}()
	}

	wg.Wait()

	r.l.Info("batch done: converted=%d failed=%d", converted, failed)
	return nil
}

func (r *Runner) convertFile(ctx context.Context, inDir, outDir, name string) error {
	data, err := os.ReadFile(filepath.Join(inDir, name))
	if err != nil {
		return errors.Wrap(err, name)
	}

	res, err := r.cu.Convert(ctx, entity.ConversionRequest{
		Filename: name,
		Data:     data,
		Quality:  r.quality,
	})
	if err != nil {
		return errors.Wrap(err, name)
	}

	return os.WriteFile(filepath.Join(outDir, res.Filename), res.Data, 0o644)
}
