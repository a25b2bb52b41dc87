package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestServer serves body for every request and counts hits
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func newTestFetcher(t *testing.T, server *httptest.Server, cacheDir string) *Fetcher {
	t.Helper()
	return NewFetcher(server.Client(), FetcherOptions{
		BaseURL:   server.URL + "/",
		CacheDir:  cacheDir,
		UserAgent: "setsheet-test",
	}, zap.NewNop())
}

func TestFetcher_CacheRoundTrip(t *testing.T) {
	body := `{"data":[{"code":"LEA","name":"Limited Edition Alpha"}]}`
	server, hits := newTestServer(t, http.StatusOK, body)
	cacheDir := filepath.Join(t.TempDir(), "downloads")
	f := newTestFetcher(t, server, cacheDir)
	ctx := context.Background()

	first, err := f.Fetch(ctx, "SetList.json", DefaultOptions())
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.JSONEq(t, body, string(first.Data))

	second, err := f.Fetch(ctx, "SetList.json", DefaultOptions())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Data, second.Data)

	assert.Equal(t, int32(1), hits.Load(), "second fetch must not hit the network")

	// Cache file holds the body verbatim
	cached, err := os.ReadFile(filepath.Join(cacheDir, "SetList.json"))
	require.NoError(t, err)
	assert.Equal(t, body, string(cached))
}

func TestFetcher_CorruptCacheIsRefetched(t *testing.T) {
	body := `{"data":{"cards":[]}}`
	server, hits := newTestServer(t, http.StatusOK, body)
	cacheDir := t.TempDir()
	path := filepath.Join(cacheDir, "LEA.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data": {"cards": [`), 0644))

	f := newTestFetcher(t, server, cacheDir)
	res, err := f.Fetch(context.Background(), "LEA.json", DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(1), hits.Load())

	cached, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(cached))
}

func TestFetcher_EmptyCacheDocumentIsAMiss(t *testing.T) {
	server, hits := newTestServer(t, http.StatusOK, `{"data":[]}`)
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "SetList.json"), []byte("{}"), 0644))

	f := newTestFetcher(t, server, cacheDir)
	res, err := f.Fetch(context.Background(), "SetList.json", DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_NoPersist(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"a":1}`)
	cacheDir := filepath.Join(t.TempDir(), "downloads")
	f := newTestFetcher(t, server, cacheDir)

	_, err := f.Fetch(context.Background(), "AllPricesToday.json", Options{UseCache: true, Persist: false})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(cacheDir, "AllPricesToday.json"))
}

func TestFetcher_BypassCache(t *testing.T) {
	server, hits := newTestServer(t, http.StatusOK, `{"fresh":true}`)
	cacheDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "SetList.json"), []byte(`{"fresh":false}`), 0644))

	f := newTestFetcher(t, server, cacheDir)
	res, err := f.Fetch(context.Background(), "SetList.json", Options{UseCache: false, Persist: true})
	require.NoError(t, err)
	assert.False(t, res.FromCache)
	assert.JSONEq(t, `{"fresh":true}`, string(res.Data))
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_FetchError(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusNotFound, `not found`)
		f := newTestFetcher(t, server, t.TempDir())

		_, err := f.Fetch(context.Background(), "XYZ.json", DefaultOptions())

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, "XYZ.json", fetchErr.Resource)
		assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusOK, `<html>`)
		cacheDir := t.TempDir()
		f := newTestFetcher(t, server, cacheDir)

		_, err := f.Fetch(context.Background(), "XYZ.json", DefaultOptions())

		var fetchErr *FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.NoFileExists(t, filepath.Join(cacheDir, "XYZ.json"))
	})

	t.Run("unreachable server", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusOK, `{}`)
		f := newTestFetcher(t, server, t.TempDir())
		server.Close()

		_, err := f.Fetch(context.Background(), "SetList.json", DefaultOptions())

		var fetchErr *FetchError
		assert.True(t, errors.As(err, &fetchErr))
	})

	t.Run("unreachable server with usable cache", func(t *testing.T) {
		server, _ := newTestServer(t, http.StatusOK, `{}`)
		cacheDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "SetList.json"), []byte(`{"data":[]}`), 0644))
		f := newTestFetcher(t, server, cacheDir)
		server.Close()

		res, err := f.Fetch(context.Background(), "SetList.json", DefaultOptions())
		require.NoError(t, err)
		assert.True(t, res.FromCache)
	})
}

func TestFetcher_SendsHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SetList.json", r.URL.Path)
		assert.Equal(t, "setsheet-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	f := newTestFetcher(t, server, t.TempDir())
	_, err := f.Fetch(context.Background(), "SetList.json", DefaultOptions())
	require.NoError(t, err)
}

func TestFetcher_Decode(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"data":[{"code":"LEA"}]}`)
	f := newTestFetcher(t, server, t.TempDir())

	var out struct {
		Data []struct {
			Code string `json:"code"`
		} `json:"data"`
	}
	_, err := f.Decode(context.Background(), "SetList.json", DefaultOptions(), &out)
	require.NoError(t, err)
	require.Len(t, out.Data, 1)
	assert.Equal(t, "LEA", out.Data[0].Code)
}

func TestFetcher_CachedResourcesAndClear(t *testing.T) {
	server, _ := newTestServer(t, http.StatusOK, `{"a":1}`)
	cacheDir := filepath.Join(t.TempDir(), "downloads")
	f := newTestFetcher(t, server, cacheDir)

	resources, err := f.CachedResources()
	require.NoError(t, err)
	assert.Empty(t, resources)

	for _, name := range []string{"SetList.json", "LEA.json"} {
		_, err := f.Fetch(context.Background(), name, DefaultOptions())
		require.NoError(t, err)
	}

	resources, err = f.CachedResources()
	require.NoError(t, err)
	assert.Equal(t, []CachedResource{
		{Name: "LEA.json", Size: 7},
		{Name: "SetList.json", Size: 7},
	}, resources)

	removed, err := f.Clear()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	resources, err = f.CachedResources()
	require.NoError(t, err)
	assert.Empty(t, resources)
}
