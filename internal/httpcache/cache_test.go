package httpcache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCountingServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func get(t *testing.T, client *http.Client, url string) string {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return string(body)
}

func TestTransportServesFromCache(t *testing.T) {
	srv, hits := newCountingServer(t)
	client := &http.Client{Transport: New(t.TempDir(), time.Hour)}

	first := get(t, client, srv.URL+"/v1/forecast?latitude=1")
	second := get(t, client, srv.URL+"/v1/forecast?latitude=1")

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), hits.Load())
}

func TestTransportKeysByFullURL(t *testing.T) {
	srv, hits := newCountingServer(t)
	client := &http.Client{Transport: New(t.TempDir(), time.Hour)}

	get(t, client, srv.URL+"/v1/forecast?latitude=1")
	get(t, client, srv.URL+"/v1/forecast?latitude=2")

	assert.Equal(t, int64(2), hits.Load())
}

func TestTransportExpiry(t *testing.T) {
	srv, hits := newCountingServer(t)
	client := &http.Client{Transport: New(t.TempDir(), 10*time.Millisecond)}

	get(t, client, srv.URL+"/v1/forecast")
	time.Sleep(30 * time.Millisecond)
	get(t, client, srv.URL+"/v1/forecast")

	assert.Equal(t, int64(2), hits.Load())
}

func TestTransportRemovesExpiredEntries(t *testing.T) {
	srv, _ := newCountingServer(t)
	dir := t.TempDir()
	client := &http.Client{Transport: New(dir, 10*time.Millisecond)}

	get(t, client, srv.URL+"/v1/forecast")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	time.Sleep(30 * time.Millisecond)
	srv.Close()

	// The refetch fails, but the stale entry must be gone regardless.
	_, err = client.Get(srv.URL + "/v1/forecast")
	require.Error(t, err)

	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransportDisabledTTL(t *testing.T) {
	srv, hits := newCountingServer(t)
	client := &http.Client{Transport: New(t.TempDir(), 0)}

	get(t, client, srv.URL+"/v1/forecast")
	get(t, client, srv.URL+"/v1/forecast")

	assert.Equal(t, int64(2), hits.Load())
}

func TestTransportSkipsNonGet(t *testing.T) {
	srv, hits := newCountingServer(t)
	client := &http.Client{Transport: New(t.TempDir(), time.Hour)}

	resp, err := client.Post(srv.URL, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = client.Post(srv.URL, "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, int64(2), hits.Load())
}

func TestTransportDoesNotCacheErrors(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: New(t.TempDir(), time.Hour)}
	for i := 0; i < 2; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, int64(2), hits.Load())
}
