package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/videos/{videoId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/videos/{videoId}", "404")
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/8b1d", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestObserveUploadAndAuth(t *testing.T) {
	failures := MediaUploadsTotal.WithLabelValues("failure")
	before := testutil.ToFloat64(failures)
	ObserveUpload(errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(failures))

	logins := AuthEventsTotal.WithLabelValues("login", "success")
	before = testutil.ToFloat64(logins)
	ObserveAuth("login", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(logins))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveAuth("refresh", nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "vidtube_auth_events_total"))
}
