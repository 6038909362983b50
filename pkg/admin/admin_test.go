package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashpect/cacheproxy/pkg/accesslog"
	"github.com/ashpect/cacheproxy/pkg/cache"
)

func newTestRouter(t *testing.T, logs LogReader) (http.Handler, *cache.Store) {
	t.Helper()
	c, err := cache.New(1000)
	require.NoError(t, err)
	c.Insert("http://example.com/a", []byte("aaaa"))
	c.Insert("http://example.com/b", []byte("bb"))
	return NewRouter(c, logs, zerolog.Nop()), c
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestStats(t *testing.T) {
	h, c := newTestRouter(t, nil)
	c.Lookup("http://example.com/a")
	c.Lookup("http://example.com/missing")

	rr := do(h, http.MethodGet, "/stats")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 2, got["entries"])
	assert.Equal(t, 6, got["usage"])
	assert.Equal(t, 1000, got["capacity"])
	assert.Equal(t, 1, got["hits"])
	assert.Equal(t, 1, got["misses"])
	assert.Equal(t, 2, got["insertions"])
}

func TestEntries(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rr := do(h, http.MethodGet, "/cache")
	require.Equal(t, http.StatusOK, rr.Code)

	var got []cache.EntryInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, []cache.EntryInfo{
		{URL: "http://example.com/a", Size: 4},
		{URL: "http://example.com/b", Size: 2},
	}, got)
}

func TestPurge(t *testing.T) {
	h, c := newTestRouter(t, nil)

	rr := do(h, http.MethodDelete, "/cache")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, c.Len())
}

func TestRemoveEntry(t *testing.T) {
	h, c := newTestRouter(t, nil)
	target := "/cache/entry?url=" + url.QueryEscape("HTTP://EXAMPLE.COM/a")

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, target).Code)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, target).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodDelete, "/cache/entry").Code)
}

func TestLogs(t *testing.T) {
	store, err := accesslog.Open(accesslog.MemoryDSN, 10)
	require.NoError(t, err)
	defer store.Close()
	for _, o := range []accesslog.Outcome{accesslog.OutcomeMiss, accesslog.OutcomeHit, accesslog.OutcomeDropped} {
		require.NoError(t, store.Record(context.Background(), accesslog.Entry{
			Time: time.Now(), Method: "GET", URL: "http://example.com/a", Outcome: o,
		}))
	}
	h, _ := newTestRouter(t, store)

	rr := do(h, http.MethodGet, "/logs?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)
	var got []accesslog.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, accesslog.OutcomeDropped, got[0].Outcome)
	assert.Equal(t, accesslog.OutcomeHit, got[1].Outcome)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/logs?limit=zero").Code)
}

func TestLogsDisabled(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/logs").Code)
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/cache").Code)
}
