package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/config"
)

// Config holds HTTP server configuration
type Config struct {
	// Server address (host:port)
	Addr string

	Logger *slog.Logger

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
	MaxHeaderBytes int

	// ShutdownTimeout is the maximum duration for graceful shutdown
	ShutdownTimeout time.Duration
}

// FromSettings maps the loaded server settings onto a Config.
func FromSettings(s config.ServerConfig, logger *slog.Logger) *Config {
	return &Config{
		Addr:              ":" + s.Port,
		Logger:            logger,
		ReadTimeout:       s.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
		MaxHeaderBytes:    1 << 20,
		ShutdownTimeout:   s.ShutdownTimeout,
	}
}

// New creates a new HTTP server with the given configuration
func New(handler http.Handler, cfg *Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("http server configured",
		"addr", cfg.Addr,
		"read_timeout", cfg.ReadTimeout.String(),
		"write_timeout", cfg.WriteTimeout.String(),
		"idle_timeout", cfg.IdleTimeout.String(),
	)

	return srv
}
