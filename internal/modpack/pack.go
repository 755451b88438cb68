// Package modpack classifies a loaded archive as indexed or standard,
// enumerates its contained files into FileRecords, and detects the pack's
// minecraft version and loader.
package modpack

import (
	"fmt"
	"strings"

	"modpack-merger/internal/archive"
	"modpack-merger/internal/manifest"
)

// Loader identifies a Minecraft mod-loading runtime.
type Loader string

const (
	LoaderFabric     Loader = "fabric"
	LoaderForge      Loader = "forge"
	LoaderNeoForge   Loader = "neoforge"
	LoaderQuilt      Loader = "quilt"
	LoaderLiteLoader Loader = "liteloader"
	LoaderUnknown    Loader = "unknown"
)

// Type distinguishes how a pack's contents are located.
type Type string

const (
	TypeIndexed  Type = "indexed"
	TypeStandard Type = "standard"
)

// Category classifies a file record by its target directory.
type Category string

const (
	CategoryMods          Category = "mods"
	CategoryResourcePacks Category = "resourcepacks"
	CategoryShaderPacks   Category = "shaderpacks"
	CategoryConfigs       Category = "configs"
	CategoryOthers        Category = "others"
)

// Origin is the tagged-variant describing where a file's bytes come from.
type Origin struct {
	Local  *LocalOrigin
	Remote *RemoteOrigin
}

// LocalOrigin points at an entry inside the owning pack's own archive.
type LocalOrigin struct {
	EntryPath string
}

// RemoteOrigin points at a downloadable file with a fallback URL list and
// the original descriptor it was parsed from (for pass-through emission).
type RemoteOrigin struct {
	URLs       []string
	Hashes     map[string]string
	Size       int64
	Descriptor IndexFileDescriptor
}

// FileRecord is a single asset belonging to a pack.
type FileRecord struct {
	Path       string
	FileName   string
	PackID     string
	Category   Category
	Origin     Origin
	Enabled    bool
	IsDuplicate    bool
	KeptSource     string
	ConflictReason string
	Metadata       *manifest.ModMetadata
}

// IndexFileDescriptor mirrors one entry of modrinth.index.json's "files"
// array, preserved verbatim for pass-through re-emission.
type IndexFileDescriptor struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       map[string]string `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

// IndexDescriptor mirrors modrinth.index.json's top level for indexed packs.
type IndexDescriptor struct {
	FormatVersion int                  `json:"formatVersion"`
	Game          string               `json:"game"`
	VersionID     string               `json:"versionId"`
	Name          string               `json:"name"`
	Files         []IndexFileDescriptor `json:"files"`
	Dependencies  map[string]string    `json:"dependencies"`
}

// Pack is a single loaded input archive.
type Pack struct {
	ID               string
	Name             string
	MinecraftVersion string
	Loader           Loader
	Type             Type
	Archive          *archive.Reader
	Index            *IndexDescriptor
	Files            []FileRecord
}

// EditHeadVersionLoader lets the user correct an undetected or misdetected
// minecraft version/loader on a standard pack. Per the data model this is
// only legal on standard packs; callers must trigger re-analysis afterward.
func (p *Pack) EditHeadVersionLoader(mcVersion string, loader Loader) error {
	if p.Type != TypeStandard {
		return fmt.Errorf("modpack: only standard packs may have their version/loader edited")
	}
	p.MinecraftVersion = mcVersion
	p.Loader = loader
	return nil
}

// ClassifyPath assigns a Category from a file's target path using
// leading/substring matches against the canonical subdirectories; scripts/
// collapses into configs, and anything unmatched becomes "others".
func ClassifyPath(path string) Category {
	lower := strings.ToLower(path)
	switch {
	case strings.HasPrefix(lower, "mods/") || strings.Contains(lower, "/mods/"):
		return CategoryMods
	case strings.HasPrefix(lower, "resourcepacks/") || strings.Contains(lower, "/resourcepacks/"):
		return CategoryResourcePacks
	case strings.HasPrefix(lower, "shaderpacks/") || strings.Contains(lower, "/shaderpacks/"):
		return CategoryShaderPacks
	case strings.HasPrefix(lower, "config/") || strings.Contains(lower, "/config/"),
		strings.HasPrefix(lower, "scripts/") || strings.Contains(lower, "/scripts/"):
		return CategoryConfigs
	default:
		return CategoryOthers
	}
}
