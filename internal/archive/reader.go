// Package archive provides a lazy, random-access read-only view over a zip
// container held entirely in memory (a local file's bytes or a downloaded
// blob). No third-party zip library is attested anywhere in the retrieval
// pack (the one example that manipulates zips, invowk-invowk's pkg/bundle
// and pkg/pack, does so with plain archive/zip), so this wraps the
// standard library reader.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Reader is a read-only random-access view over a zip archive's entries.
// Entries may be read more than once; nothing is decompressed until an
// entry's bytes are first requested.
type Reader struct {
	zr      *zip.Reader
	byPath  map[string]*zip.File
	entries []string
}

// Open parses raw as a zip archive and indexes its entries by path.
func Open(raw []byte) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("archive: malformed zip: %w", err)
	}

	r := &Reader{
		zr:      zr,
		byPath:  make(map[string]*zip.File, len(zr.File)),
		entries: make([]string, 0, len(zr.File)),
	}
	for _, f := range zr.File {
		r.byPath[f.Name] = f
		r.entries = append(r.entries, f.Name)
	}
	return r, nil
}

// Entries returns every entry path in the archive, including directory
// markers (paths ending in '/'); callers must skip those explicitly.
func (r *Reader) Entries() []string {
	out := make([]string, len(r.entries))
	copy(out, r.entries)
	return out
}

// Has reports whether path exists in the archive, exactly.
func (r *Reader) Has(path string) bool {
	_, ok := r.byPath[path]
	return ok
}

// IsDir reports whether path is a directory marker entry.
func (r *Reader) IsDir(path string) bool {
	f, ok := r.byPath[path]
	if !ok {
		return strings.HasSuffix(path, "/")
	}
	return f.FileInfo().IsDir()
}

// ReadBytes returns the decompressed bytes of the entry at path.
func (r *Reader) ReadBytes(path string) ([]byte, error) {
	f, ok := r.byPath[path]
	if !ok {
		return nil, fmt.Errorf("archive: entry not found: %s", path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: open entry %s: %w", path, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("archive: read entry %s: %w", path, err)
	}
	return data, nil
}

// ReadString is ReadBytes with a string conversion, for textual manifests.
func (r *Reader) ReadString(path string) (string, error) {
	data, err := r.ReadBytes(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Size returns the uncompressed size of the entry at path.
func (r *Reader) Size(path string) (int64, error) {
	f, ok := r.byPath[path]
	if !ok {
		return 0, fmt.Errorf("archive: entry not found: %s", path)
	}
	return int64(f.UncompressedSize64), nil
}
