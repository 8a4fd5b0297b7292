package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flatsite/internal/crawl"
	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/eventstore"
	"git.home.luguber.info/inful/flatsite/internal/metrics"
	"git.home.luguber.info/inful/flatsite/internal/route"
	"git.home.luguber.info/inful/flatsite/internal/site"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, crawl.EntriesDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("2024/01/15/hello.md", "---\nTitle: Hello\nTags: go web\n---\nFirst post.\n")
	write("2024/02/01/second.md", "---\nTags: go\n---\nSecond post.\n")
	write("2024/03/01/third.md", "Third post.\n")

	reg := prom.NewRegistry()
	cache := enginecache.New(enginecache.WithRecorder(metrics.NewPrometheusRecorder(reg)))
	s := site.New("", root, cache, nil)
	s.EntriesPerPage = 2
	if opts.Gatherer == nil && opts.MetricsPath != "" {
		opts.Gatherer = reg
	}
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s, opts)
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Options{Version: "1.2.3"})
	rec := get(t, srv.Handler(), "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
}

func TestPage_Listing(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := get(t, srv.Handler(), "/?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("ETag"))

	var body PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, route.ViewEntries, body.View)
	assert.Equal(t, 2, body.Paging.Page)
	assert.Equal(t, 3, body.Paging.TotalItems)
	assert.Equal(t, 2, body.Paging.TotalPages)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "2024/01/15/hello", body.Entries[0].Path)
	assert.Equal(t, "First post.", body.Entries[0].Summary)
	assert.Empty(t, body.Entries[0].Content)
	assert.NotEmpty(t, body.Generation)
}

func TestPage_TagFilter(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := get(t, srv.Handler(), "/Tag/web", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Filter)
	assert.Equal(t, "Tag", body.Filter.FilteredBy)
	assert.Equal(t, "Tag: web", body.Title)
	require.Len(t, body.Entries, 1)
	assert.Equal(t, []string{"go", "web"}, body.Entries[0].Tags)
}

func TestPage_SingleEntryETag(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := get(t, srv.Handler(), "/2024/01/15/hello", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tag := rec.Header().Get("ETag")
	require.NotEmpty(t, tag)

	var body PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, route.ViewEntry, body.View)
	require.Len(t, body.Entries, 1)
	assert.Contains(t, body.Entries[0].Content, "First post.")
	assert.Equal(t, "Hello", body.Entries[0].Metadata["Title"])
	assert.NotContains(t, body.Entries[0].Metadata, "FilePath")

	rec = get(t, srv.Handler(), "/2024/01/15/hello", http.Header{"If-None-Match": {tag}})
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestPage_EmptyPrefixListingIsOK(t *testing.T) {
	srv := newTestServer(t, Options{})
	rec := get(t, srv.Handler(), "/1999", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body PageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, route.ViewEntries, body.View)
	assert.Empty(t, body.Entries)
}

func TestIndexes(t *testing.T) {
	srv := newTestServer(t, Options{})

	rec := get(t, srv.Handler(), "/_indexes/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body IndexResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []IndexKey{{Key: "go", Count: 2}, {Key: "web", Count: 1}}, body.Keys)

	rec = get(t, srv.Handler(), "/_indexes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ByMonth")

	rec = get(t, srv.Handler(), "/_indexes/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, Options{MetricsPath: "/metrics"})
	require.Equal(t, http.StatusOK, get(t, srv.Handler(), "/", nil).Code)

	rec := get(t, srv.Handler(), "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flatsite_generation_outcomes_total")
}

func TestHistoryEndpoint(t *testing.T) {
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	projection := eventstore.NewHistoryProjection(store)
	projection.Apply(eventstore.Event{Type: "GenerationBuilt", Root: "/srv", Timestamp: time.Now(), Payload: []byte(`{"entries":3}`)})

	srv := newTestServer(t, Options{History: projection})
	rec := get(t, srv.Handler(), "/_history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var roots []eventstore.RootSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, 3, roots[0].Entries)
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := newTestServer(t, Options{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln, time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
