package resolve

import (
	"context"
	"fmt"
	"net/http"
)

func (r *Resolver) openCache() (*Cache, error) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if r.cache != nil {
		return r.cache, nil
	}
	c, err := OpenCache(r.cacheDir)
	if err != nil {
		return nil, err
	}
	r.cache = c
	return c, nil
}

// fetch returns a local copy of url, downloading it on first use.
// Concurrent fetches of the same url share one download.
func (r *Resolver) fetch(ctx context.Context, url string) (string, error) {
	v, err, _ := r.group.Do(url, func() (any, error) {
		cache, err := r.openCache()
		if err != nil {
			return "", err
		}
		if e, ok, err := cache.Lookup(url); err == nil && ok {
			return e.File, nil
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", err
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("download %s: %w", url, err)
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return "", fmt.Errorf("%w: %s", ErrNotFound, url)
		case resp.StatusCode != http.StatusOK:
			return "", fmt.Errorf("download %s: %s", url, resp.Status)
		}
		e, err := cache.Store(url, resp.Body, resp.Header.Get("ETag"))
		if err != nil {
			return "", fmt.Errorf("cache %s: %w", url, err)
		}
		return e.File, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Cache returns the download cache, opening it if needed.
func (r *Resolver) Cache() (*Cache, error) {
	return r.openCache()
}
