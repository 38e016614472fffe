package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"image_conversion/config"
	v1 "image_conversion/internal/controller/http/v1"
	"image_conversion/internal/conversion"
	"image_conversion/internal/telemetry/metric"
	ttrace "image_conversion/internal/telemetry/trace"
	"image_conversion/pkg/httpserver"
	"image_conversion/pkg/imageconv"
	"image_conversion/pkg/logger"
)

var name = "image-conversion-server"

// NewServer ...
func NewServer(cfg *config.Config) *Server {
	srv := &Server{}

	srv.InitGlobalProvider(name, cfg.TraceExporter, cfg.TraceEndpoint)

	return srv
}

type Server struct {
	traceProviderCloseFn []ttrace.CloseFunc
}

// Run ...
func (s *Server) Run(ctx context.Context, cfg *config.Config) error {
	l := logger.New(cfg.Log.Level)
	l.Info("Starting server...")

	codec := imageconv.Select(cfg.Convert.Codec, cfg.Convert.Target, cfg.Convert.MaxResolution)
	cu := conversion.NewUseCase(codec, cfg, l)

	l.Info("conversion pool ready: workers=%d queue=%d codec=%s target=%s",
		cfg.Convert.WorkerCount, cfg.Convert.QueueSize, cfg.Convert.Codec, cfg.Convert.Target)

	go metric.Serve(cfg.PrometheusPort, l)

	handler := gin.New()
	v1.NewRouter(handler, l, cu, cfg)
	httpServer := httpserver.New(s.cors().Handler(handler), httpserver.Port(cfg.Server.Port))

	l.Info("server serving on port %s", cfg.Server.Port)

	// Waiting signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var err error
	select {
	case sig := <-interrupt:
		l.Info("app - Run - signal: " + sig.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	log.Printf("server stopped")

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer func() {
		cancel()
	}()

	// Shutdown
	if err := httpServer.Shutdown(); err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	log.Printf("server exited properly")

	for _, closeFn := range s.traceProviderCloseFn {
		closeFn := closeFn
		go func() {
			if err := closeFn(ctxShutDown); err != nil {
				log.Error().Err(err).Msgf("Unable to close trace provider")
			}
		}()
	}

	return err
}

func (s *Server) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{"POST", "GET", "HEAD", "OPTIONS"},
		AllowedHeaders:     []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-Request-ID"},
		MaxAge:             60, // 1 minutes
		AllowCredentials:   false,
		OptionsPassthrough: false,
		Debug:              false,
	})
}
