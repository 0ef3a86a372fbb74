// Package metrics exports assessment and HTTP metrics to Prometheus.
package metrics

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "maturity"

// Recorder holds the service's collectors. A nil *Recorder records nothing.
type Recorder struct {
	gatherer prometheus.Gatherer

	sessionsCreated   *prometheus.CounterVec
	answers           *prometheus.CounterVec
	answerRejections  *prometheus.CounterVec
	sessionsCompleted prometheus.Counter
	requestDuration   *prometheus.HistogramVec
}

// NewRecorder registers the collectors on reg. A nil reg gets a fresh registry.
func NewRecorder(reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{gatherer: reg}

	var err error
	if r.sessionsCreated, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Assessment sessions started.",
	}, []string{"assessment_type", "role"})); err != nil {
		return nil, err
	}
	if r.answers, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Answers recorded, by submit or revise.",
	}, []string{"action"})); err != nil {
		return nil, err
	}
	if r.answerRejections, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answer_rejections_total",
		Help:      "Answers rejected, by reason.",
	}, []string{"reason"})); err != nil {
		return nil, err
	}
	if r.sessionsCompleted, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_completed_total",
		Help:      "Sessions that reached the complete state.",
	})); err != nil {
		return nil, err
	}
	if r.requestDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})); err != nil {
		return nil, err
	}
	return r, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (r *Recorder) SessionCreated(assessmentType, role string) {
	if r == nil {
		return
	}
	r.sessionsCreated.WithLabelValues(assessmentType, role).Inc()
}

func (r *Recorder) AnswerRecorded(action string) {
	if r == nil {
		return
	}
	r.answers.WithLabelValues(action).Inc()
}

func (r *Recorder) AnswerRejected(reason string) {
	if r == nil {
		return
	}
	r.answerRejections.WithLabelValues(reason).Inc()
}

func (r *Recorder) SessionCompleted() {
	if r == nil {
		return
	}
	r.sessionsCompleted.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}

// Middleware times requests, labelled by the matched mux route template
func (r *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r == nil {
			next.ServeHTTP(w, req)
			return
		}
		start := time.Now()
		sw := &StatusWriter{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(sw, req)

		route := "unmatched"
		if cur := mux.CurrentRoute(req); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		r.requestDuration.WithLabelValues(route, req.Method, strconv.Itoa(sw.Status)).Observe(time.Since(start).Seconds())
	})
}

// StatusWriter remembers the status code written through it
type StatusWriter struct {
	http.ResponseWriter
	Status int
}

func (w *StatusWriter) WriteHeader(code int) {
	w.Status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *StatusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack passes through to the underlying writer so websocket upgrades work
func (w *StatusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.Status = http.StatusSwitchingProtocols
	return h.Hijack()
}
