package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	rec, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	rec.SessionCreated("quick", "manager")
	rec.SessionCreated("quick", "manager")
	rec.AnswerRecorded("submit")
	rec.AnswerRejected("not_eligible")
	rec.SessionCompleted()

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.sessionsCreated.WithLabelValues("quick", "manager")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.answers.WithLabelValues("submit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.answerRejections.WithLabelValues("not_eligible")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.sessionsCompleted))
}

func TestRecorder_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRecorder(reg)
	require.NoError(t, err)
	second, err := NewRecorder(reg)
	require.NoError(t, err)

	first.SessionCompleted()
	second.SessionCompleted()
	assert.Equal(t, 2.0, testutil.ToFloat64(first.sessionsCompleted))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var rec *Recorder
	rec.SessionCreated("quick", "manager")
	rec.AnswerRecorded("submit")

	h := rec.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestRecorder_MiddlewareUsesRouteTemplate(t *testing.T) {
	rec, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(rec.Middleware)
	r.HandleFunc("/v1/sessions/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", rec.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `route="/v1/sessions/{sessionId}"`), body)
	assert.Contains(t, body, `status="404"`)
}
