// Package metrics exposes Prometheus collectors for HTTP traffic and grading.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduexam_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eduexam_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// Submissions counts graded submissions by mode ("submit" or "preview").
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduexam_submissions_total",
			Help: "Total number of graded submissions",
		},
		[]string{"mode"},
	)

	// GradedAnswers counts every graded answer by question type and outcome.
	GradedAnswers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eduexam_graded_answers_total",
			Help: "Total number of graded answers",
		},
		[]string{"type", "correct"},
	)

	ManualOverrides = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "eduexam_manual_overrides_total",
			Help: "Total number of manual grade overrides",
		},
	)
)

func init() {
	prometheus.MustRegister(RequestCounter, RequestDuration, Submissions, GradedAnswers, ManualOverrides)
}

// ObserveAnswer records one graded answer.
func ObserveAnswer(questionType string, correct bool) {
	GradedAnswers.WithLabelValues(questionType, strconv.FormatBool(correct)).Inc()
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
