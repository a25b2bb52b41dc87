package fetch

import "fmt"

// FetchError is returned when a resource could not be downloaded and no usable
// cached copy was available.
type FetchError struct {
	Resource   string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s from %s: %v", e.Resource, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CacheCorruptionError marks a cache file that exists but doesn't hold usable JSON.
// The fetcher treats it as a cache miss.
type CacheCorruptionError struct {
	Path string
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("cache file %s does not contain usable JSON", e.Path)
}
