package cache

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"modpack-merger/internal/archive"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, _ := zw.Create(name)
		w.Write([]byte(content))
	}
	zw.Close()
	return buf.Bytes()
}

type fakeFetcher struct {
	calls int
	data  []byte
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}

func TestGetOrFetchLocalMemoizes(t *testing.T) {
	raw := buildZip(t, map[string]string{"mods/foo.jar": ""})
	outerRaw := buildZip(t, map[string]string{"mods/foo.jar": string(buildZip(t, map[string]string{"fabric.mod.json": `{"id":"foo","version":"1.0"}`}))})
	_ = raw

	r, err := archive.Open(outerRaw)
	if err != nil {
		t.Fatalf("open outer: %v", err)
	}

	c := New()
	md1, _, err := c.GetOrFetchLocal("pack1", "mods/foo.jar", "foo.jar", r)
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	primary, _ := md1.Primary()
	if primary.ID != "foo" {
		t.Errorf("expected id foo, got %s", primary.ID)
	}

	md2, _, err := c.GetOrFetchLocal("pack1", "mods/foo.jar", "foo.jar", r)
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if p2, _ := md2.Primary(); p2.ID != "foo" {
		t.Errorf("cached fetch should return same metadata")
	}

	if _, ok := c.Get(LocalKey("pack1", "mods/foo.jar")); !ok {
		t.Error("expected cache entry to be present after fetch")
	}
}

func TestGetOrFetchRemoteMemoizesAndDoesNotRefetch(t *testing.T) {
	innerZip := buildZip(t, map[string]string{"fabric.mod.json": `{"id":"bar","version":"2.0"}`})
	ff := &fakeFetcher{data: innerZip}

	c := New()
	md1, _, err := c.GetOrFetchRemote(context.Background(), ff, []string{"https://example.com/bar.jar"}, "bar.jar")
	if err != nil {
		t.Fatalf("first fetch failed: %v", err)
	}
	if p, _ := md1.Primary(); p.ID != "bar" {
		t.Errorf("expected id bar, got %s", p.ID)
	}
	if ff.calls != 1 {
		t.Fatalf("expected 1 fetch call, got %d", ff.calls)
	}

	_, _, err = c.GetOrFetchRemote(context.Background(), ff, []string{"https://example.com/bar.jar"}, "bar.jar")
	if err != nil {
		t.Fatalf("second fetch failed: %v", err)
	}
	if ff.calls != 1 {
		t.Errorf("expected fetch to be memoized, got %d calls", ff.calls)
	}

	if raw, ok := c.RawBytes(RemoteKey("https://example.com/bar.jar")); !ok || len(raw) == 0 {
		t.Error("expected raw bytes to be cached for remote entry")
	}
}

func TestGetOrFetchRemoteErrorNotCached(t *testing.T) {
	ff := &fakeFetcher{err: errors.New("network down")}
	c := New()
	_, _, err := c.GetOrFetchRemote(context.Background(), ff, []string{"https://example.com/x.jar"}, "x.jar")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := c.Get(RemoteKey("https://example.com/x.jar")); ok {
		t.Error("a failed fetch should not populate the cache")
	}
}
