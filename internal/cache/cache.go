// Package cache memoizes (source-key -> ModMetadata, raw bytes) so repeated
// analysis and final emission never re-download or re-parse the same
// archive entry. Reads are idempotent: a hit never re-fetches.
package cache

import (
	"context"
	"fmt"
	"sync"

	"modpack-merger/internal/archive"
	"modpack-merger/internal/fetch"
	"modpack-merger/internal/manifest"
)

// Entry is the cached result for one source key.
type Entry struct {
	Metadata manifest.ModMetadata
	Raw      []byte // present for remote sources once fetched; nil for local
}

// Cache is a simple in-memory map guarded by a mutex; the metadata cache is
// written only by the session's deep-analysis batch workers and read by the
// emitter, so a plain mutex (rather than per-key sharding) is sufficient.
type Cache struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// LocalKey builds the source key for a local archive entry.
func LocalKey(packID, path string) string {
	return fmt.Sprintf("local:%s:%s", packID, path)
}

// RemoteKey builds the source key for a remote file: its primary download URL.
func RemoteKey(url string) string {
	return url
}

// Get returns the cached entry for key, if present.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// put inserts or overwrites an entry.
func (c *Cache) put(key string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

// GetOrFetchLocal returns the cached metadata for a local archive entry,
// parsing it from the pack's own archive on a miss.
func (c *Cache) GetOrFetchLocal(packID, entryPath, fileName string, r *archive.Reader) (manifest.ModMetadata, []manifest.Diagnostic, error) {
	key := LocalKey(packID, entryPath)
	if e, ok := c.Get(key); ok {
		return e.Metadata, nil, nil
	}

	raw, err := r.ReadBytes(entryPath)
	if err != nil {
		return manifest.ModMetadata{}, nil, fmt.Errorf("cache: read local entry %s: %w", entryPath, err)
	}

	inner, err := archive.Open(raw)
	if err != nil {
		// Not every local mod-category file is itself a valid zip (e.g. a
		// plain config file); callers decide whether that is fatal.
		return manifest.ModMetadata{}, nil, err
	}

	md, diags := manifest.Parse(inner, fileName)
	c.put(key, Entry{Metadata: md})
	return md, diags, nil
}

// GetOrFetchRemote returns the cached metadata for a remote file, fetching
// and parsing it on a miss. The raw bytes are retained in the cache so a
// subsequent full-archive emit does not re-download.
func (c *Cache) GetOrFetchRemote(ctx context.Context, f fetch.Fetcher, urls []string, fileName string) (manifest.ModMetadata, []manifest.Diagnostic, error) {
	if len(urls) == 0 {
		return manifest.ModMetadata{}, nil, fmt.Errorf("cache: no download URLs for %s", fileName)
	}
	key := RemoteKey(urls[0])
	if e, ok := c.Get(key); ok {
		return e.Metadata, nil, nil
	}

	raw, err := fetch.FetchFirst(ctx, f, urls)
	if err != nil {
		return manifest.ModMetadata{}, nil, fmt.Errorf("cache: fetch %s: %w", fileName, err)
	}

	inner, err := archive.Open(raw)
	if err != nil {
		c.put(key, Entry{Raw: raw})
		return manifest.ModMetadata{}, []manifest.Diagnostic{{ArchiveName: fileName, Reason: "downloaded file is not a valid archive"}}, nil
	}

	md, diags := manifest.Parse(inner, fileName)
	c.put(key, Entry{Metadata: md, Raw: raw})
	return md, diags, nil
}

// RawBytes returns cached raw bytes for key, if any were retained.
func (c *Cache) RawBytes(key string) ([]byte, bool) {
	e, ok := c.Get(key)
	if !ok || e.Raw == nil {
		return nil, false
	}
	return e.Raw, true
}
