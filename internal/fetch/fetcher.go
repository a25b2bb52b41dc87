package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Options controls how a single resource is retrieved
type Options struct {
	// UseCache serves the local copy when it holds usable JSON
	UseCache bool
	// Persist writes freshly downloaded data to the cache
	Persist bool
}

// DefaultOptions reads from and writes to the cache
func DefaultOptions() Options {
	return Options{UseCache: true, Persist: true}
}

// Resource is a retrieved JSON document
type Resource struct {
	Name      string
	Data      json.RawMessage
	FromCache bool
}

// Fetcher retrieves named JSON resources from a remote API, backed by a directory
// holding one file per resource name.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	cacheDir  string
	userAgent string
	logger    *zap.Logger
}

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	BaseURL   string
	CacheDir  string
	UserAgent string
}

// NewFetcher creates a Fetcher using the given HTTP client
func NewFetcher(client *http.Client, options FetcherOptions, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client:    client,
		baseURL:   strings.TrimRight(options.BaseURL, "/"),
		cacheDir:  options.CacheDir,
		userAgent: options.UserAgent,
		logger:    logger,
	}
}

// CacheDir returns the directory backing the fetcher
func (f *Fetcher) CacheDir() string {
	return f.cacheDir
}

// Fetch returns the resource, from the cache when allowed and usable, otherwise from the network.
func (f *Fetcher) Fetch(ctx context.Context, name string, opts Options) (*Resource, error) {
	if opts.UseCache {
		data, err := f.readCache(name)
		if err == nil {
			f.logger.Debug("Serving resource from cache", zap.String("resource", name))
			return &Resource{Name: name, Data: data, FromCache: true}, nil
		}

		var corrupt *CacheCorruptionError
		if errors.As(err, &corrupt) {
			f.logger.Debug("Ignoring corrupt cache file", zap.String("resource", name), zap.Error(err))
		} else {
			f.logger.Debug("Cache miss", zap.String("resource", name), zap.Error(err))
		}
	}

	data, err := f.download(ctx, name)
	if err != nil {
		return nil, err
	}

	if opts.Persist {
		if err := f.writeCache(name, data); err != nil {
			return nil, err
		}
	}

	return &Resource{Name: name, Data: data}, nil
}

// Decode fetches the resource and unmarshals it into v
func (f *Fetcher) Decode(ctx context.Context, name string, opts Options, v any) (*Resource, error) {
	res, err := f.Fetch(ctx, name, opts)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(res.Data, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return res, nil
}

func (f *Fetcher) download(ctx context.Context, name string) (json.RawMessage, error) {
	url := f.baseURL + "/" + name
	fail := func(status int, err error) error {
		return &FetchError{Resource: name, URL: url, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fail(0, fmt.Errorf("failed to create request: %w", err))
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	f.logger.Debug("Downloading resource", zap.String("url", url))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fail(0, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fail(resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	if !json.Valid(body) {
		return nil, fail(resp.StatusCode, errors.New("response body is not valid JSON"))
	}

	f.logger.Debug("Downloaded resource", zap.String("resource", name), zap.Int("bytes", len(body)))

	return body, nil
}

func (f *Fetcher) cachePath(name string) string {
	return filepath.Join(f.cacheDir, name)
}

// readCache returns the cached body. A missing file is returned as is, anything
// present but unusable as a *CacheCorruptionError.
func (f *Fetcher) readCache(name string) (json.RawMessage, error) {
	path := f.cachePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !usable(data) {
		return nil, &CacheCorruptionError{Path: path}
	}
	return data, nil
}

func (f *Fetcher) writeCache(name string, data []byte) error {
	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(f.cachePath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache for %s: %w", name, err)
	}
	f.logger.Debug("Cached resource", zap.String("resource", name))
	return nil
}

// usable rejects invalid JSON as well as empty documents
func usable(data []byte) bool {
	if !json.Valid(data) {
		return false
	}
	switch string(bytes.TrimSpace(data)) {
	case "null", "{}", "[]", `""`:
		return false
	}
	return true
}

// CachedResource describes one file in the cache directory
type CachedResource struct {
	Name string
	Size int64
}

// CachedResources lists the cached resources sorted by name.
// A missing cache directory yields an empty list.
func (f *Fetcher) CachedResources() ([]CachedResource, error) {
	entries, err := os.ReadDir(f.cacheDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var resources []CachedResource
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		resources = append(resources, CachedResource{Name: entry.Name(), Size: info.Size()})
	}

	sort.Slice(resources, func(i, j int) bool { return resources[i].Name < resources[j].Name })
	return resources, nil
}

// Clear removes every cached resource and returns how many were removed
func (f *Fetcher) Clear() (int, error) {
	resources, err := f.CachedResources()
	if err != nil {
		return 0, err
	}
	for i, res := range resources {
		if err := os.Remove(f.cachePath(res.Name)); err != nil {
			return i, fmt.Errorf("failed to remove %s: %w", res.Name, err)
		}
	}
	return len(resources), nil
}
