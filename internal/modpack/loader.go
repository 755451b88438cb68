package modpack

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"strings"

	"modpack-merger/internal/archive"
)

// Load classifies raw (a pack archive's bytes) as indexed or standard,
// enumerates its files into FileRecords, and detects minecraft
// version/loader. id is the caller-assigned process-unique pack ID; name
// is the user-visible pack name; headPack, if non-nil, supplies
// inheritance defaults for a standard pack whose own detection fails.
func Load(id, name string, raw []byte, headPack *Pack) (*Pack, error) {
	r, err := archive.Open(raw)
	if err != nil {
		return nil, fmt.Errorf("modpack: failed to open pack archive %q: %w", name, err)
	}

	if r.Has("modrinth.index.json") {
		return loadIndexed(id, name, r)
	}
	return loadStandard(id, name, r, headPack)
}

// --- Indexed packs (modrinth.index.json) ---

type modrinthIndexFile struct {
	Path      string            `json:"path"`
	Hashes    map[string]string `json:"hashes"`
	Env       map[string]string `json:"env,omitempty"`
	Downloads []string          `json:"downloads"`
	FileSize  int64             `json:"fileSize"`
}

type modrinthIndex struct {
	FormatVersion int                  `json:"formatVersion"`
	Game          string               `json:"game"`
	VersionID     string               `json:"versionId"`
	Name          string               `json:"name"`
	Files         []modrinthIndexFile  `json:"files"`
	Dependencies  map[string]string   `json:"dependencies"`
}

func loadIndexed(id, name string, r *archive.Reader) (*Pack, error) {
	raw, err := r.ReadBytes("modrinth.index.json")
	if err != nil {
		return nil, fmt.Errorf("modpack: failed to read modrinth.index.json: %w", err)
	}

	var idx modrinthIndex
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("modpack: malformed modrinth.index.json: %w", err)
	}

	desc := &IndexDescriptor{
		FormatVersion: idx.FormatVersion,
		Game:          idx.Game,
		VersionID:     idx.VersionID,
		Name:          idx.Name,
		Dependencies:  idx.Dependencies,
	}

	pack := &Pack{
		ID:               id,
		Name:             name,
		Type:             TypeIndexed,
		Archive:          r,
		Index:            desc,
		MinecraftVersion: idx.Dependencies["minecraft"],
		Loader:           detectIndexedLoader(idx.Dependencies),
	}

	for _, f := range idx.Files {
		if len(f.Downloads) == 0 {
			continue
		}
		desc.Files = append(desc.Files, IndexFileDescriptor{
			Path: f.Path, Hashes: f.Hashes, Env: f.Env, Downloads: f.Downloads, FileSize: f.FileSize,
		})
		pack.Files = append(pack.Files, FileRecord{
			Path:     f.Path,
			FileName: path.Base(f.Path),
			PackID:   id,
			Category: CategoryMods,
			Enabled:  true,
			Origin: Origin{Remote: &RemoteOrigin{
				URLs:   f.Downloads,
				Hashes: f.Hashes,
				Size:   f.FileSize,
				Descriptor: IndexFileDescriptor{
					Path: f.Path, Hashes: f.Hashes, Env: f.Env, Downloads: f.Downloads, FileSize: f.FileSize,
				},
			}},
		})
	}

	const overridesPrefix = "overrides/"
	for _, entry := range r.Entries() {
		if r.IsDir(entry) || !strings.HasPrefix(entry, overridesPrefix) {
			continue
		}
		stripped := strings.TrimPrefix(entry, overridesPrefix)
		if stripped == "" {
			continue
		}
		pack.Files = append(pack.Files, FileRecord{
			Path:     stripped,
			FileName: path.Base(stripped),
			PackID:   id,
			Category: ClassifyPath(stripped),
			Enabled:  true,
			Origin:   Origin{Local: &LocalOrigin{EntryPath: entry}},
		})
	}

	return pack, nil
}

// detectIndexedLoader scans dependency keys by substring, in priority
// order: fabric, forge (unless a key mentions neoforge), neoforge, quilt,
// liteloader; default fabric.
func detectIndexedLoader(deps map[string]string) Loader {
	keys := make([]string, 0, len(deps))
	for k := range deps {
		keys = append(keys, strings.ToLower(k))
	}
	joined := strings.Join(keys, " ")

	hasNeoForge := strings.Contains(joined, "neoforge")
	for _, k := range keys {
		if strings.Contains(k, "fabric") {
			return LoaderFabric
		}
	}
	for _, k := range keys {
		if strings.Contains(k, "forge") && !hasNeoForge {
			return LoaderForge
		}
	}
	if hasNeoForge {
		return LoaderNeoForge
	}
	for _, k := range keys {
		if strings.Contains(k, "quilt") {
			return LoaderQuilt
		}
	}
	for _, k := range keys {
		if strings.Contains(k, "liteloader") {
			return LoaderLiteLoader
		}
	}
	return LoaderFabric
}

// --- Standard packs ---

func loadStandard(id, name string, r *archive.Reader, headPack *Pack) (*Pack, error) {
	pack := &Pack{
		ID:      id,
		Name:    name,
		Type:    TypeStandard,
		Archive: r,
	}

	for _, entry := range r.Entries() {
		if r.IsDir(entry) {
			continue
		}
		pack.Files = append(pack.Files, FileRecord{
			Path:     entry,
			FileName: path.Base(entry),
			PackID:   id,
			Category: ClassifyPath(entry),
			Enabled:  true,
			Origin:   Origin{Local: &LocalOrigin{EntryPath: entry}},
		})
	}

	mcVersion, loader := detectStandardMetadata(r, pack.Files)
	if mcVersion == "" || loader == "" || loader == LoaderUnknown {
		if headPack != nil {
			if mcVersion == "" {
				mcVersion = headPack.MinecraftVersion
			}
			if loader == "" || loader == LoaderUnknown {
				loader = headPack.Loader
			}
		}
	}
	if mcVersion == "" {
		mcVersion = "1.20.1"
	}
	if loader == "" || loader == LoaderUnknown {
		loader = LoaderFabric
	}

	pack.MinecraftVersion = mcVersion
	pack.Loader = loader
	return pack, nil
}

type curseforgeManifest struct {
	Minecraft struct {
		Version     string `json:"version"`
		ModLoaders []struct {
			ID string `json:"id"`
		} `json:"modLoaders"`
	} `json:"minecraft"`
}

var (
	instanceCfgVersionRegex = regexp.MustCompile(`(?m)^IntendedVersion=(.+)$`)
	modsDirVersionRegex     = regexp.MustCompile(`1\.\d+(?:\.\d+)?`)
)

// Order matters: "neoforge" contains "forge" as a substring, so it must be
// checked first to avoid misclassifying neoforge packs as forge.
var loaderSubstrings = []struct {
	needle string
	loader Loader
}{
	{"fabric", LoaderFabric},
	{"neoforge", LoaderNeoForge},
	{"forge", LoaderForge},
	{"quilt", LoaderQuilt},
	{"liteloader", LoaderLiteLoader},
}

// detectStandardMetadata runs the three detection strategies in order,
// stopping once both fields are known.
func detectStandardMetadata(r *archive.Reader, files []FileRecord) (mcVersion string, loader Loader) {
	// 1. manifest.json (CurseForge-style).
	if r.Has("manifest.json") {
		if raw, err := r.ReadBytes("manifest.json"); err == nil {
			var m curseforgeManifest
			if err := json.Unmarshal(raw, &m); err == nil {
				if m.Minecraft.Version != "" {
					mcVersion = m.Minecraft.Version
				}
				if len(m.Minecraft.ModLoaders) > 0 {
					raw := m.Minecraft.ModLoaders[0].ID
					if i := strings.IndexByte(raw, '-'); i >= 0 {
						raw = raw[:i]
					}
					loader = normalizeLoader(raw)
				}
			}
		}
		if mcVersion != "" && loader != "" && loader != LoaderUnknown {
			return mcVersion, loader
		}
	}

	// 2. instance.cfg (MultiMC/Prism).
	if r.Has("instance.cfg") {
		if text, err := r.ReadString("instance.cfg"); err == nil {
			if mcVersion == "" {
				if m := instanceCfgVersionRegex.FindStringSubmatch(text); m != nil {
					mcVersion = strings.TrimSpace(m[1])
				}
			}
			if (loader == "" || loader == LoaderUnknown) && strings.Contains(text, "LWJGL") {
				if strings.Contains(text, "Fabric") {
					loader = LoaderFabric
				} else {
					loader = LoaderForge
				}
			}
		}
		if mcVersion != "" && loader != "" && loader != LoaderUnknown {
			return mcVersion, loader
		}
	}

	// 3. Heuristic: scan filenames under any mods/ directory.
	for _, f := range files {
		if f.Category != CategoryMods {
			continue
		}
		if mcVersion == "" {
			if m := modsDirVersionRegex.FindString(f.FileName); m != "" {
				mcVersion = m
			}
		}
		if loader == "" || loader == LoaderUnknown {
			lower := strings.ToLower(f.FileName)
			if strings.HasSuffix(lower, ".litemod") {
				loader = LoaderLiteLoader
			} else {
				for _, cand := range loaderSubstrings {
					if strings.Contains(lower, cand.needle) {
						loader = cand.loader
						break
					}
				}
			}
		}
		if mcVersion != "" && loader != "" && loader != LoaderUnknown {
			break
		}
	}

	return mcVersion, loader
}

func normalizeLoader(s string) Loader {
	lower := strings.ToLower(s)
	for _, cand := range loaderSubstrings {
		if strings.Contains(lower, cand.needle) {
			return cand.loader
		}
	}
	return LoaderUnknown
}
