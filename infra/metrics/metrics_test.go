package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_ExposesRecordedValues(t *testing.T) {
	c := NewCollector()
	c.PageFetched("home", 20)
	c.PageFetched("home", 5)
	c.FetchFailed("home", domain.ErrorNetwork)
	c.StatusesHidden("tag:go", 2)
	c.Request(http.MethodGet, 200, 30*time.Millisecond)
	c.Request(http.MethodGet, 0, time.Second)
	c.EventRelayed("favourite", "out")

	body := scrape(t, c)
	for _, want := range []string{
		`fedtimeline_timeline_pages_fetched_total{timeline="home"} 2`,
		`fedtimeline_timeline_statuses_fetched_total{timeline="home"} 25`,
		`fedtimeline_timeline_fetch_failures_total{kind="network",timeline="home"} 1`,
		`fedtimeline_timeline_statuses_hidden_total{timeline="tag:go"} 2`,
		`fedtimeline_api_requests_total{code="200",method="GET"} 1`,
		`fedtimeline_api_requests_total{code="0",method="GET"} 1`,
		`fedtimeline_api_request_duration_seconds_count{method="GET"} 2`,
		`fedtimeline_events_relayed_total{direction="out",event="favourite"} 1`,
	} {
		assert.Contains(t, body, want)
	}
}

func TestCollectors_AreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.PageFetched("home", 1)
	assert.NotContains(t, scrape(t, b), `timeline="home"`)
}

func TestRouter_Healthz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCollector().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}
