package main

import (
	"context"
	"flag"
	"log"

	"image_conversion/config"
	"image_conversion/internal/batch"
	"image_conversion/internal/conversion"
	"image_conversion/pkg/imageconv"
	"image_conversion/pkg/logger"
)

func main() {
	in := flag.String("in", ".", "directory of images to convert")
	out := flag.String("out", "converted", "output directory")
	quality := flag.Int("quality", 0, "encode quality 1-100 (0 uses the configured default)")
	flag.Parse()

	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	q := cfg.Convert.DefaultQuality
	if *quality != 0 {
		if *quality < 1 || *quality > 100 {
			log.Fatalf("quality must be in [1,100], got %d", *quality)
		}
		q = *quality
	}

	l := logger.New(cfg.Log.Level)

	codec := imageconv.Select(cfg.Convert.Codec, cfg.Convert.Target, cfg.Convert.MaxResolution)
	cu := conversion.NewUseCase(codec, cfg, l)

	r := batch.NewRunner(cu, l, q, cfg.Convert.WorkerCount)
	if err := r.Run(context.Background(), *in, *out); err != nil {
		l.Fatal(err)
	}
}
