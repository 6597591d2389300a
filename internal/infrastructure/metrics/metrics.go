// Package metrics expone métricas Prometheus de la API y del flujo de cotizaciones.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/Cotizaciones-api/internal/application/quote"
)

var _ quote.Observer = (*Metrics)(nil)

// Metrics registry propio (no el global) con las métricas de la app.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transitions     *prometheus.CounterVec
}

// New inicializa el registry y las métricas.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cotizaciones_http_requests_total",
		Help: "Peticiones HTTP por ruta, método y código.",
	}, []string{"route", "method", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cotizaciones_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_transitions_total",
		Help: "Operaciones del flujo de cotizaciones por acción y resultado.",
	}, []string{"action", "outcome"})
	registry.MustRegister(requests, duration, transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		transitions:     transitions,
	}
}

// Handler http.Handler para /metrics (se monta en Fiber con adaptor).
func (m *Metrics) Handler() http.Handler {
	return m.handler
}

// ObserveTransition implementa quote.Observer.
func (m *Metrics) ObserveTransition(action, outcome string) {
	m.transitions.WithLabelValues(action, outcome).Inc()
}

// Middleware registra conteo y duración por ruta (patrón, no la URL concreta).
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}
