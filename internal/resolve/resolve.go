// Package resolve implements the conflict resolver: given an
// enriched file list plus a priority-ordered pack list, it marks each
// file kept or excluded with a reason, running either a cheap
// priority-only pass or a rich pass over metadata-enriched files.
package resolve

import (
	"regexp"
	"strings"

	"modpack-merger/internal/modpack"
	"modpack-merger/internal/version"
)

// ConflictKind distinguishes the two conflict record shapes the resolver produces.
type ConflictKind string

const (
	ConflictVersion   ConflictKind = "version"
	ConflictDuplicate ConflictKind = "duplicate"
)

// Resolution names which of two files in a version conflict survives.
type Resolution string

const (
	ResolutionKeepThis  Resolution = "keep_this"
	ResolutionKeepOther Resolution = "keep_other"
)

// Conflict is a single detected conflict for one file.
type Conflict struct {
	Kind          ConflictKind
	ModID         string
	ThisVersion   string
	OtherVersion  string
	OtherFileName string
	Resolution    Resolution
}

// Result is the outcome of one resolution pass over a pack set.
type Result struct {
	Conflicts map[string][]Conflict // keyed by "packID:path"
}

// registry holds the three per-pass lookup tables described in the core
// spec: exact path, mod-id -> (version, pack name), and filename slug.
type registry struct {
	byPath map[string]ownedFile
	byMod  map[string]modEntryOwner
	bySlug map[string]string // slug -> owning file name
}

type ownedFile struct {
	packID, path, fileName string
}

type modEntryOwner struct {
	version, packName, fileName string
}

func newRegistry() *registry {
	return &registry{
		byPath: make(map[string]ownedFile),
		byMod:  make(map[string]modEntryOwner),
		bySlug: make(map[string]string),
	}
}

// Run executes one resolution pass (priority-only if rich is false, rich
// if true — the two passes share identical logic; "rich" only describes
// that the caller has already populated FileRecord.Metadata for every
// enabled mod file before calling) over packs in their current priority
// order. Files are mutated in place: Enabled, IsDuplicate, KeptSource, and
// ConflictReason are reset and recomputed.
func Run(packs []*modpack.Pack) Result {
	reg := newRegistry()
	result := Result{Conflicts: make(map[string][]Conflict)}

	for _, pack := range packs {
		for i := range pack.Files {
			f := &pack.Files[i]
			f.Enabled = true
			f.IsDuplicate = false
			f.ConflictReason = ""
			f.KeptSource = ""

			resolveFile(pack, f, reg, &result)
		}
	}

	return result
}

func resolveFile(pack *modpack.Pack, f *modpack.FileRecord, reg *registry, result *Result) {
	key := pack.ID + ":" + f.Path

	// Step 2: exact path duplicate, always checked first.
	if owner, exists := reg.byPath[f.Path]; exists {
		f.Enabled = false
		f.IsDuplicate = true
		f.ConflictReason = "exact path duplicate"
		f.KeptSource = owner.packID
		result.Conflicts[key] = append(result.Conflicts[key], Conflict{
			Kind:          ConflictDuplicate,
			OtherFileName: owner.fileName,
			Resolution:    ResolutionKeepOther,
		})
		return
	}

	// Step 3: mod-id registry check, only when metadata is present. The
	// first pack (in priority order) to register a mod id wins outright:
	// every later encounter of the same id is excluded, whether its
	// version is older, equal, or newer. This resolves the spec's open
	// question about equal-version duplicates (§9: "first seen wins") in
	// favor of pack-priority dominance, which is also the only reading
	// that keeps the §3 invariant ("primary ModEntry.id is unique across
	// all surviving mod files") satisfiable for every input. The reason
	// string still names the older-version case distinctly since that is
	// the scenario spelled out in §8.
	if f.Metadata != nil && len(f.Metadata.Mods) > 0 {
		primary := f.Metadata.Mods[0]
		if owner, exists := reg.byMod[primary.ID]; exists {
			f.Enabled = false
			f.KeptSource = owner.fileName
			if version.Compare(version.Parse(primary.Version), version.Parse(owner.version)) < 0 {
				f.ConflictReason = "older version (Mod ID: " + primary.ID + ")"
			} else {
				f.ConflictReason = "duplicate mod id, lower priority (Mod ID: " + primary.ID + ")"
			}
			result.Conflicts[key] = append(result.Conflicts[key], Conflict{
				Kind:          ConflictVersion,
				ModID:         primary.ID,
				ThisVersion:   primary.Version,
				OtherVersion:  owner.version,
				OtherFileName: owner.fileName,
				Resolution:    ResolutionKeepOther,
			})
			return
		}
		reg.byPath[f.Path] = ownedFile{packID: pack.ID, path: f.Path, fileName: f.FileName}
		reg.byMod[primary.ID] = modEntryOwner{version: primary.Version, packName: pack.Name, fileName: f.FileName}
		return
	}

	// Step 4: slug duplicate check, mods category only, no metadata.
	if f.Category == modpack.CategoryMods {
		slug := slugify(f.FileName)
		if owner, exists := reg.bySlug[slug]; exists {
			f.Enabled = false
			f.IsDuplicate = true
			f.ConflictReason = "possible duplicate of " + owner
			f.KeptSource = owner
			result.Conflicts[key] = append(result.Conflicts[key], Conflict{
				Kind:          ConflictDuplicate,
				OtherFileName: owner,
				Resolution:    ResolutionKeepOther,
			})
			return
		}
		reg.bySlug[slug] = f.FileName
	}

	reg.byPath[f.Path] = ownedFile{packID: pack.ID, path: f.Path, fileName: f.FileName}
}

// versionSuffix matches the point where a jar filename's version suffix
// begins: a '-' or '+' immediately followed by a digit, or by "v" then a
// digit (e.g. "-1.2.0", "-v2", "+1.20"). "+build3" is not a marker: '+'
// is followed by a letter other than "v".
var versionSuffix = regexp.MustCompile(`[-+](?:[0-9]|v[0-9])`)

// slugify computes the human-comparable slug of a jar filename: drop a
// trailing ".jar", strip everything from the first version-suffix marker
// onward, lowercase, trim.
func slugify(fileName string) string {
	name := strings.TrimSuffix(fileName, ".jar")
	if m := versionSuffix.FindStringIndex(name); m != nil {
		name = name[:m[0]]
	}
	return strings.TrimSpace(strings.ToLower(name))
}
