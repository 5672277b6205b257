package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	return NewCollector("mindmapx_test")
}

func TestNewCollector_Singleton(t *testing.T) {
	c := newTestCollector(t)
	assert.Same(t, c, NewCollector("other"))
	assert.NotNil(t, c.GetRegistry())
}

func TestCollector_BusObservations(t *testing.T) {
	c := newTestCollector(t)

	c.ObserveCommand("AddChildNodeCommand", 3*time.Millisecond, nil)
	c.ObserveCommand("AddChildNodeCommand", time.Millisecond, errors.New("boom"))
	c.ObserveQuery("ExportQuery", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("AddChildNodeCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("AddChildNodeCommand", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("ExportQuery", "success")))
}

func TestCollector_BusinessCounters(t *testing.T) {
	c := newTestCollector(t)

	c.NodeCreated()
	c.NodeCreated()
	c.DragCompleted(true)
	c.DragCompleted(false)
	c.DragCompleted(false)
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()
	c.ExportFinished("png", 20*time.Millisecond, nil)
	c.ExportFinished("png", time.Millisecond, errors.New("cancelled"))
	c.ObserverConnected(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.NodesCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DragsCompleted.WithLabelValues("true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.DragsCompleted.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ActiveSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Exports.WithLabelValues("png", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Exports.WithLabelValues("png", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Observers))
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	c := newTestCollector(t)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(c))
	r.Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/sessions/a", "/sessions/b", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/sessions/{id}", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/ok", "200")))
}

func TestCollector_Handler(t *testing.T) {
	c := newTestCollector(t)
	c.NodeCreated()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mindmapx_test_nodes_created_total 1"))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
	}{
		{"development default", "development", "", false},
		{"production info", "production", "info", false},
		{"upper case level", "staging", "DEBUG", false},
		{"unknown level", "development", "loud", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			NewBusLogger(logger).Info("hello", "k", "v")
		})
	}
}
