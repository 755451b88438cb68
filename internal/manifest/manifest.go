// Package manifest extracts ModMetadata records from mod archives by
// trying, in order, the Fabric-style JSON manifest, the Forge-style TOML
// manifest, and a fallback synthetic entry. Parse failures at any level
// never abort the caller: they degrade to the fallback and are reported
// through the configured log sink.
package manifest

import (
	"encoding/json"
	"fmt"
	"strings"

	"modpack-merger/internal/archive"
)

// ModEntry is a single mod declaration, either the primary mod of an
// archive or one bundled (nested) inside it.
type ModEntry struct {
	ID       string
	Version  string
	Name     string
	Depends  map[string]string
	Provides []string
}

// ModMetadata is the result of parsing one archive's manifest(s).
type ModMetadata struct {
	Mods    []ModEntry
	Bundled []ModEntry
}

// Primary returns the first mod declared by the archive, or a zero
// ModEntry if none were found (should not happen: Parse always yields at
// least a fallback entry).
func (m ModMetadata) Primary() (ModEntry, bool) {
	if len(m.Mods) == 0 {
		return ModEntry{}, false
	}
	return m.Mods[0], true
}

// Diagnostic reports a non-fatal parse failure for the log sink.
type Diagnostic struct {
	ArchiveName string
	Reason      string
}

const maxRecursionDepth = 4

// Parse extracts ModMetadata from an archive, using archiveFileName as the
// fallback mod ID (and for diagnostics) when no manifest is found or
// parsing fails.
func Parse(r *archive.Reader, archiveFileName string) (ModMetadata, []Diagnostic) {
	return parseDepth(r, archiveFileName, 0)
}

func parseDepth(r *archive.Reader, archiveFileName string, depth int) (ModMetadata, []Diagnostic) {
	if depth > maxRecursionDepth {
		return fallback(archiveFileName), []Diagnostic{{archiveFileName, "max recursion depth exceeded"}}
	}

	if r.Has("fabric.mod.json") {
		md, diags, ok := parseFabric(r, archiveFileName, depth)
		if ok {
			return md, diags
		}
		diags = append(diags, Diagnostic{archiveFileName, "fabric.mod.json present but unparseable"})
		return fallback(archiveFileName), diags
	}

	if r.Has("META-INF/mods.toml") {
		md, ok := parseForge(r, archiveFileName)
		if ok {
			return md, nil
		}
		return fallback(archiveFileName), []Diagnostic{{archiveFileName, "META-INF/mods.toml present but unparseable"}}
	}

	return fallback(archiveFileName), nil
}

func fallback(archiveFileName string) ModMetadata {
	return ModMetadata{
		Mods: []ModEntry{{
			ID:      archiveFileName,
			Version: "unknown",
			Depends: map[string]string{},
		}},
	}
}

// --- Fabric ---

type fabricJar struct {
	File string `json:"file"`
}

type fabricManifest struct {
	ID       string          `json:"id"`
	Version  string          `json:"version"`
	Name     string          `json:"name"`
	Depends  json.RawMessage `json:"depends"`
	Provides json.RawMessage `json:"provides"`
	Jars     []fabricJar     `json:"jars"`
}

func parseFabric(r *archive.Reader, archiveFileName string, depth int) (ModMetadata, []Diagnostic, bool) {
	raw, err := r.ReadBytes("fabric.mod.json")
	if err != nil {
		return ModMetadata{}, nil, false
	}

	var fm fabricManifest
	if err := json.Unmarshal(raw, &fm); err != nil {
		return ModMetadata{}, nil, false
	}

	primary := ModEntry{
		ID:       orDefault(fm.ID, "unknown"),
		Version:  orDefault(fm.Version, "unknown"),
		Name:     fm.Name,
		Depends:  parseDependsObject(fm.Depends),
		Provides: parseProvides(fm.Provides),
	}

	md := ModMetadata{Mods: []ModEntry{primary}}
	var diags []Diagnostic

	for _, jar := range fm.Jars {
		if jar.File == "" || !r.Has(jar.File) {
			continue
		}
		nested, err := r.ReadBytes(jar.File)
		if err != nil {
			diags = append(diags, Diagnostic{archiveFileName, fmt.Sprintf("failed to read bundled jar %s: %v", jar.File, err)})
			continue
		}
		nestedReader, err := archive.Open(nested)
		if err != nil {
			diags = append(diags, Diagnostic{archiveFileName, fmt.Sprintf("failed to open bundled jar %s: %v", jar.File, err)})
			continue
		}
		nestedMD, nestedDiags := parseDepth(nestedReader, jar.File, depth+1)
		diags = append(diags, nestedDiags...)
		if entry, ok := nestedMD.Primary(); ok {
			md.Bundled = append(md.Bundled, entry)
		}
		md.Bundled = append(md.Bundled, nestedMD.Bundled...)
	}

	return md, diags, true
}

// parseDependsObject parses fabric's `depends` object ({mod_id: range}).
func parseDependsObject(raw json.RawMessage) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return out
	}
	for k, v := range m {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		// Some manifests declare an array of acceptable ranges; join with
		// a space so version.Satisfies' AND rule applies uniformly.
		var arr []string
		if err := json.Unmarshal(v, &arr); err == nil {
			out[k] = strings.Join(arr, " ")
		}
	}
	return out
}

// parseProvides handles the documented ambiguity in fabric.mod.json's
// `provides` field: it may be a JSON array of mod IDs or an object whose
// keys are mod IDs. Either way, only the identifiers are kept as aliases.
func parseProvides(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		out := make([]string, 0, len(obj))
		for k := range obj {
			out = append(out, k)
		}
		return out
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
