package config

import (
	"fmt"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config -.
	Config struct {
		App     `yaml:"app"`
		Server  `yaml:"server"`
		Log     `yaml:"logger"`
		Convert `yaml:"convert"`
		OTEL    `yaml:"otel"`
	}

	// App -.
	App struct {
		Name    string `env-required:"true" yaml:"name"    env:"APP_NAME"`
		Version string `env-required:"true" yaml:"version" env:"APP_VERSION"`
	}

	// Server -.
	Server struct {
		Port string `env-required:"true" yaml:"port" env:"HTTP_PORT"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level"   env:"LOG_LEVEL"`
	}

	// Convert bounds every request before and during codec work.
	Convert struct {
		MaxUploadSize  int64 `yaml:"max_upload_size" env:"MAX_UPLOAD_SIZE" env-default:"52428800" validate:"gt=0"`
		MaxResolution  int   `yaml:"max_resolution"  env:"MAX_RESOLUTION"  env-default:"16384"    validate:"gt=0"`
		DefaultQuality int   `yaml:"default_quality" env:"DEFAULT_QUALITY" env-default:"85"       validate:"min=1,max=100"`
		// WorkerCount 0 auto-sizes from the host CPU count.
		WorkerCount int `yaml:"worker_count" env:"WORKER_COUNT" validate:"min=0"`
		// QueueSize -1 auto-sizes from the worker count; 0 disables
		// queueing so saturation rejects immediately.
		QueueSize int           `yaml:"queue_size" env:"QUEUE_SIZE" env-default:"-1" validate:"min=-1"`
		Timeout   time.Duration `yaml:"timeout"    env:"CONVERT_TIMEOUT" env-default:"30s" validate:"gt=0"`
		Codec     string        `yaml:"codec"      env:"CONVERT_CODEC"  env-default:"native" validate:"oneof=native ffmpeg"`
		Target    string        `yaml:"target"     env:"CONVERT_TARGET" env-default:"jpeg"   validate:"oneof=jpeg png webp"`
	}

	// OTEL selects the span backend; the endpoint format follows the
	// exporter (collector URL for jaeger, gRPC host:port for otlp).
	OTEL struct {
		TraceExporter  string `yaml:"trace_exporter" env:"TRACE_EXPORTER" env-default:"jaeger" validate:"omitempty,oneof=jaeger otlp"`
		TraceEndpoint  string `env-required:"true" yaml:"trace_endpoint" env:"TRACE_ENDPOINT"`
		PrometheusPort string `env-required:"true" yaml:"prometheus_port" env:"PROMETHEUS_PORT"`
	}
)

// NewConfig returns app config. It is read exactly once at startup;
// out-of-range values fail startup instead of being clamped.
func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig("./config/config.yml", cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	if c.Convert.WorkerCount == 0 {
		c.Convert.WorkerCount = detectWorkerCount()
	}
	if c.Convert.QueueSize < 0 {
		q := c.Convert.WorkerCount * 4
		if q < 100 {
			q = 100
		}
		c.Convert.QueueSize = q
	}
}

// detectWorkerCount leaves one core for request handling on larger
// hosts and never drops below two workers.
func detectWorkerCount() int {
	n := runtime.NumCPU()
	if n > 4 {
		n--
	}
	if n < 2 {
		n = 2
	}
	return n
}
