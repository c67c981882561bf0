package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"strconv"
	"time"
)

const (
	OutcomeOK            = "ok"
	OutcomeClientError   = "client_error"
	OutcomeInternalError = "internal_error"
)

type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	imagesProcessed *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
	outputBytes     *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optimizer_http_requests_total",
			Help: "Total HTTP requests handled by the API.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optimizer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		imagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "optimizer_images_processed_total",
			Help: "Images processed, by operation, output format and outcome.",
		}, []string{"operation", "format", "outcome"}),
		processDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optimizer_image_process_duration_seconds",
			Help:    "Time spent decoding, transforming and encoding one image.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		outputBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "optimizer_image_output_bytes",
			Help:    "Size of encoded output images.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"operation", "format"}),
	}
	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.imagesProcessed,
		m.processDuration,
		m.outputBytes,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records request count and latency. Chain errors are rendered
// by the app error handler here so the recorded status is the final one.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())

		m.requestTotal.WithLabelValues(c.Method(), route, status).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route, status).Observe(time.Since(start).Seconds())

		return nil
	}
}

func (m *Metrics) ObserveImage(operation, format, outcome string, size int64, d time.Duration) {
	m.imagesProcessed.WithLabelValues(operation, format, outcome).Inc()
	m.processDuration.WithLabelValues(operation).Observe(d.Seconds())
	if outcome == OutcomeOK {
		m.outputBytes.WithLabelValues(operation, format).Observe(float64(size))
	}
}
