package main

import (
	"context"
	"log"

	"image_conversion/config"
	"image_conversion/internal/server"
)

// @title           Image Conversion API
// @version         1.0
// @description     Converts uploaded images to the configured target format.

// @host      localhost:8080
// @BasePath  /api

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	ctx := context.Background()
	s := server.NewServer(cfg)
	s.Run(ctx, cfg)
}
