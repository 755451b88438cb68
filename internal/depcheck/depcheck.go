// Package depcheck validates resolved mods' dependencies against a
// presence index built from every ModEntry discovered during analysis,
// reporting missing or outdated required dependencies.
package depcheck

import (
	"strings"

	"modpack-merger/internal/manifest"
	"modpack-merger/internal/modpack"
	"modpack-merger/internal/version"
)

// Kind distinguishes a missing dependency from a present-but-unsatisfying one.
type Kind string

const (
	KindMissing  Kind = "missing"
	KindOutdated Kind = "outdated"
)

// Issue is one unmet dependency of one analyzed file's primary mod.
type Issue struct {
	Kind            Kind
	ModID           string
	RequiredBy      string
	RequiredRange   string
	PresentVersion  string
}

// platformIdentifiers are runtime/platform dependency ids that are never
// validated against the presence index — they are satisfied by the game
// environment itself, not by any loaded mod.
var platformIdentifiers = map[string]bool{
	"minecraft":     true,
	"java":          true,
	"fabricloader":  true,
	"fabric":        true,
	"quiltloader":   true,
	"forge":         true,
	"neoforge":      true,
	"liteloader":    true,
	"mixinextras":   true,
	"mixinextra":    true,
	"mixins":        true,
	"cloth-config":  true,
	"cloth-config2": true,
}

type presenceEntry struct {
	version string
	real    bool
}

// presenceIndex maps a mod id (or provides alias) to its discovered
// version. Real entries (an actual primary or bundled ModEntry) always
// take precedence over aliases from `provides`.
type presenceIndex map[string]presenceEntry

func buildPresenceIndex(packs []*modpack.Pack) presenceIndex {
	idx := presenceIndex{}

	addReal := func(id, ver string) {
		idx[id] = presenceEntry{version: ver, real: true}
	}
	addAlias := func(id, ver string) {
		if existing, ok := idx[id]; ok && existing.real {
			return
		}
		idx[id] = presenceEntry{version: ver, real: false}
	}

	for _, pack := range packs {
		for _, f := range pack.Files {
			if !f.Enabled || f.IsDuplicate || f.Metadata == nil {
				continue
			}
			for _, entry := range f.Metadata.Mods {
				addReal(entry.ID, entry.Version)
				for _, alias := range entry.Provides {
					addAlias(alias, entry.Version)
				}
			}
			for _, entry := range f.Metadata.Bundled {
				addReal(entry.ID, entry.Version)
				for _, alias := range entry.Provides {
					addAlias(alias, entry.Version)
				}
			}
		}
	}
	return idx
}

// Check iterates every primary ModEntry across the resolved, enabled,
// non-duplicate mod files and reports missing/outdated required
// dependencies against the presence index built from all discovered
// ModEntrys (primary, bundled, and provides aliases).
func Check(packs []*modpack.Pack) []Issue {
	idx := buildPresenceIndex(packs)

	var issues []Issue
	for _, pack := range packs {
		for _, f := range pack.Files {
			if !f.Enabled || f.IsDuplicate || f.Metadata == nil {
				continue
			}
			primary, ok := f.Metadata.Primary()
			if !ok {
				continue
			}
			issues = append(issues, checkEntry(primary, idx)...)
		}
	}
	return issues
}

func checkEntry(primary manifest.ModEntry, idx presenceIndex) []Issue {
	var issues []Issue
	for depID, depRange := range primary.Depends {
		if platformIdentifiers[strings.ToLower(depID)] {
			continue
		}
		present, ok := idx[depID]
		if !ok {
			issues = append(issues, Issue{
				Kind:          KindMissing,
				ModID:         depID,
				RequiredBy:    primary.ID,
				RequiredRange: depRange,
			})
			continue
		}
		if !version.Satisfies(present.version, depRange) {
			issues = append(issues, Issue{
				Kind:           KindOutdated,
				ModID:          depID,
				RequiredBy:     primary.ID,
				RequiredRange:  depRange,
				PresentVersion: present.version,
			})
		}
	}
	return issues
}
