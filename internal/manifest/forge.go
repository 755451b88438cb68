package manifest

import (
	"regexp"

	"modpack-merger/internal/archive"
)

// Forge's META-INF/mods.toml is deliberately parsed by regex rather than a
// full TOML parser: only modId, version, and [[dependencies.<id>]] blocks
// with mandatory = true are consumed. A full TOML parser is overkill for
// the three fields this engine actually needs (spec §9).
var (
	forgeModIDRegex      = regexp.MustCompile(`(?m)^\s*modId\s*=\s*"([^"]*)"`)
	forgeVersionRegex    = regexp.MustCompile(`(?m)^\s*version\s*=\s*"([^"]*)"`)
	forgeDependencyBlock = regexp.MustCompile(`(?s)\[\[dependencies\.([A-Za-z0-9_\-]+)\]\](.*?)(?:\[\[|\z)`)
	forgeMandatoryRegex  = regexp.MustCompile(`(?m)^\s*mandatory\s*=\s*true\b`)
	forgeVersionRangeRe  = regexp.MustCompile(`(?m)^\s*versionRange\s*=\s*"([^"]*)"`)
	forgeDepModIDRegex   = regexp.MustCompile(`(?m)^\s*modId\s*=\s*"([^"]*)"`)
)

func parseForge(r *archive.Reader, archiveFileName string) (ModMetadata, bool) {
	text, err := r.ReadString("META-INF/mods.toml")
	if err != nil {
		return ModMetadata{}, false
	}

	idMatch := forgeModIDRegex.FindStringSubmatch(text)
	if idMatch == nil {
		return ModMetadata{}, false
	}
	versionMatch := forgeVersionRegex.FindStringSubmatch(text)

	entry := ModEntry{
		ID:      idMatch[1],
		Version: "unknown",
		Depends: map[string]string{},
	}
	if versionMatch != nil && versionMatch[1] != "" {
		entry.Version = versionMatch[1]
	}

	// Each match ends by consuming the next block's "[[", so the search
	// resumes at the end of the body rather than the end of the match.
	for pos := 0; ; {
		m := forgeDependencyBlock.FindStringSubmatchIndex(text[pos:])
		if m == nil {
			break
		}
		targetMod, body := text[pos+m[2]:pos+m[3]], text[pos+m[4]:pos+m[5]]
		pos += m[5]
		if targetMod != entry.ID {
			// Dependency blocks declared for a different modId in a
			// multi-mod toml are not this entry's dependencies.
			continue
		}
		if !forgeMandatoryRegex.MatchString(body) {
			continue
		}
		depIDMatch := forgeDepModIDRegex.FindStringSubmatch(body)
		rangeMatch := forgeVersionRangeRe.FindStringSubmatch(body)
		if depIDMatch == nil {
			continue
		}
		depRange := ""
		if rangeMatch != nil {
			depRange = rangeMatch[1]
		}
		entry.Depends[depIDMatch[1]] = depRange
	}

	return ModMetadata{Mods: []ModEntry{entry}}, true
}
