package http

import (
	"net/http"

	"github.com/MKhiriev/go-list-sync/internal/logger"
	"github.com/MKhiriev/go-list-sync/internal/service"
)

type Handler struct {
	services *service.Services
	metrics  http.Handler

	logger *logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithMetricsHandler serves h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(handler *Handler) {
		handler.metrics = h
	}
}

func NewHandler(services *service.Services, logger *logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		services: services,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}

	logger.Info().Bool("metrics", h.metrics != nil).Msg("http handler created")
	return h
}
