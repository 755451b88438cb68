// Package emit streams surviving files into one of two output archive
// formats: a full portable archive with files at their original paths, or
// an index-descriptor archive carrying a modrinth.index.json plus
// overrides/ for local files and pass-through descriptors for remote
// ones.
package emit

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"modpack-merger/internal/cache"
	"modpack-merger/internal/fetch"
	"modpack-merger/internal/modpack"
)

// Mode selects the output format.
type Mode string

const (
	ModeFullArchive    Mode = "full"
	ModeIndexDescriptor Mode = "index"
)

// Options configures one emit run.
type Options struct {
	Mode      Mode
	VersionID string
	Name      string
}

// ProgressFunc is called with a monotone percentage (0-100) as the collect
// phase advances.
type ProgressFunc func(percent int)

// Run executes the collect, manifest (index mode only), and produce phases
// and writes the resulting zip to w. Packs must already be
// priority-ordered and resolved (C6 has run). Compression is store-only:
// the payload is already-compressed jars, so deflating again wastes CPU
// for no size benefit.
func Run(ctx context.Context, packs []*modpack.Pack, opts Options, c *cache.Cache, f fetch.Fetcher, w io.Writer, progress ProgressFunc) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	seen := make(map[string]bool)
	var descriptorFiles []modpack.IndexFileDescriptor

	total := countSurvivingFiles(packs)
	done := 0

	for _, pack := range packs {
		for _, file := range pack.Files {
			if !file.Enabled {
				continue
			}
			if seen[file.Path] {
				// Belt-and-suspenders: C6 should already have excluded
				// every later duplicate at this path.
				continue
			}
			seen[file.Path] = true

			if err := collectOne(ctx, zw, pack, file, opts.Mode, c, f, &descriptorFiles); err != nil {
				return fmt.Errorf("emit: collecting %s: %w", file.Path, err)
			}

			done++
			if progress != nil && total > 0 {
				progress(done * 100 / total)
			}
		}
	}

	if opts.Mode == ModeIndexDescriptor {
		desc := buildDescriptor(packs, opts, descriptorFiles)
		raw, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return fmt.Errorf("emit: marshal modrinth.index.json: %w", err)
		}
		out, err := zw.CreateHeader(&zip.FileHeader{Name: "modrinth.index.json", Method: zip.Store})
		if err != nil {
			return fmt.Errorf("emit: create modrinth.index.json entry: %w", err)
		}
		if _, err := out.Write(raw); err != nil {
			return fmt.Errorf("emit: write modrinth.index.json: %w", err)
		}
	}

	if progress != nil {
		progress(100)
	}
	return nil
}

func countSurvivingFiles(packs []*modpack.Pack) int {
	seen := make(map[string]bool)
	n := 0
	for _, pack := range packs {
		for _, file := range pack.Files {
			if file.Enabled && !seen[file.Path] {
				seen[file.Path] = true
				n++
			}
		}
	}
	return n
}

func collectOne(ctx context.Context, zw *zip.Writer, pack *modpack.Pack, file modpack.FileRecord, mode Mode, c *cache.Cache, f fetch.Fetcher, descriptorFiles *[]modpack.IndexFileDescriptor) error {
	switch mode {
	case ModeFullArchive:
		data, err := materialize(ctx, pack, file, c, f)
		if err != nil {
			return err
		}
		out, err := zw.CreateHeader(&zip.FileHeader{Name: file.Path, Method: zip.Store})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err

	case ModeIndexDescriptor:
		if file.Origin.Local != nil {
			data, err := materialize(ctx, pack, file, c, f)
			if err != nil {
				return err
			}
			out, err := zw.CreateHeader(&zip.FileHeader{Name: "overrides/" + file.Path, Method: zip.Store})
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}
		if file.Origin.Remote != nil {
			*descriptorFiles = append(*descriptorFiles, file.Origin.Remote.Descriptor)
		}
		return nil

	default:
		return fmt.Errorf("emit: unknown mode %q", mode)
	}
}

// materialize returns a file's bytes regardless of origin: local entries
// come from the owning pack's own archive, remote entries from the
// metadata cache's retained raw bytes if present, else a fresh fetch.
func materialize(ctx context.Context, pack *modpack.Pack, file modpack.FileRecord, c *cache.Cache, f fetch.Fetcher) ([]byte, error) {
	if file.Origin.Local != nil {
		if pack.Archive == nil {
			return nil, fmt.Errorf("pack %s has no archive handle", pack.Name)
		}
		return pack.Archive.ReadBytes(file.Origin.Local.EntryPath)
	}

	remote := file.Origin.Remote
	if remote == nil {
		return nil, fmt.Errorf("file %s has neither local nor remote origin", file.Path)
	}
	if len(remote.URLs) > 0 {
		if raw, ok := c.RawBytes(cache.RemoteKey(remote.URLs[0])); ok {
			return raw, nil
		}
	}
	return fetch.FetchFirst(ctx, f, remote.URLs)
}

func buildDescriptor(packs []*modpack.Pack, opts Options, files []modpack.IndexFileDescriptor) modpack.IndexDescriptor {
	desc := modpack.IndexDescriptor{
		FormatVersion: 1,
		Game:          "minecraft",
		VersionID:     opts.VersionID,
		Name:          opts.Name,
		Files:         files,
	}

	if len(packs) == 0 {
		return desc
	}
	head := packs[0]
	if head.Type == modpack.TypeIndexed && head.Index != nil && head.Index.Dependencies != nil {
		desc.Dependencies = head.Index.Dependencies
		return desc
	}
	desc.Dependencies = map[string]string{
		"minecraft":        head.MinecraftVersion,
		string(head.Loader): "latest",
	}
	return desc
}
