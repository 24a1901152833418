// Package httpcache provides a file-backed TTL cache for HTTP GET
// responses, installed as an http.RoundTripper. Entries are keyed by
// the full request URL (including query parameters) and served without
// touching the network until they expire, matching the unconditional
// caching the forecast fetcher relies on.
package httpcache

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"
)

type Transport struct {
	base http.RoundTripper
	dir  string
	ttl  time.Duration
}

// New returns a caching transport storing entries under dir. A zero or
// negative ttl disables reuse, every request goes to the network.
func New(dir string, ttl time.Duration) *Transport {
	return &Transport{
		base: http.DefaultTransport,
		dir:  dir,
		ttl:  ttl,
	}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	path := t.entryPath(req.URL.String())

	if resp, ok := t.load(path, req); ok {
		return resp, nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusOK {
		// A failed write only costs a cache miss next run.
		t.save(path, resp)
	}

	return resp, nil
}

func (t *Transport) entryPath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(t.dir, hex.EncodeToString(sum[:])+".cache")
}

func (t *Transport) load(path string, req *http.Request) (*http.Response, bool) {
	if t.ttl <= 0 {
		return nil, false
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > t.ttl {
		// Prune stale entries so the cache directory does not grow
		// without bound across runs.
		_ = os.Remove(path)
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(data)), req)
	if err != nil {
		return nil, false
	}
	return resp, true
}

func (t *Transport) save(path string, resp *http.Response) {
	// DumpResponse leaves resp.Body readable for the caller.
	data, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return
	}
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return
	}
	tmp := fmt.Sprintf("%s.tmp%d", path, os.Getpid())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, path)
}
