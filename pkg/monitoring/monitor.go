package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// source: ai | fallback | failed
	GenerationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_generation_total",
			Help: "Quiz generation attempts by outcome source",
		},
		[]string{"source"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_generation_duration_seconds",
			Help:    "Time spent generating a question set, including fallback",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	GradingCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_grading_total",
			Help: "Graded submissions by pass/fail",
		},
		[]string{"passed"},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(GenerationCounter)
		prometheus.MustRegister(GenerationDuration)
		prometheus.MustRegister(GradingCounter)
	})
}

func ObserveGeneration(source string, elapsed time.Duration) {
	GenerationCounter.WithLabelValues(source).Inc()
	GenerationDuration.Observe(elapsed.Seconds())
}

func ObserveGrading(passed bool) {
	GradingCounter.WithLabelValues(strconv.FormatBool(passed)).Inc()
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
