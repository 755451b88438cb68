// Package compat validates pack combinations against the head pack
// (index 0 of the priority-ordered pack list), emitting one advisory issue
// per deviating pack per mismatched field.
package compat

import (
	"fmt"

	"modpack-merger/internal/modpack"
)

// Kind distinguishes the two fields compatibility is checked over.
type Kind string

const (
	KindVersionMismatch Kind = "version_mismatch"
	KindLoaderMismatch  Kind = "loader_mismatch"
)

// Severity mirrors the log sink's severity vocabulary (§6 of the core
// spec); compatibility issues are always "warning".
type Severity string

const SeverityWarning Severity = "warning"

// Issue is one detected compatibility mismatch.
type Issue struct {
	Kind       Kind
	Severity   Severity
	Message    string
	HeadPack   string
	OtherPack  string
}

// Check compares every pack after index 0 against the head pack's
// minecraft version and loader, returning one issue per mismatched field
// per deviating pack. An empty pack list or a single-pack list never
// produces issues (there is nothing to compare against).
func Check(packs []*modpack.Pack) []Issue {
	if len(packs) < 2 {
		return nil
	}
	head := packs[0]

	var issues []Issue
	for _, p := range packs[1:] {
		if p.MinecraftVersion != head.MinecraftVersion {
			issues = append(issues, Issue{
				Kind:      KindVersionMismatch,
				Severity:  SeverityWarning,
				HeadPack:  head.Name,
				OtherPack: p.Name,
				Message: fmt.Sprintf(
					"%s targets minecraft %s but head pack %s targets %s",
					p.Name, p.MinecraftVersion, head.Name, head.MinecraftVersion,
				),
			})
		}
		if p.Loader != head.Loader {
			issues = append(issues, Issue{
				Kind:      KindLoaderMismatch,
				Severity:  SeverityWarning,
				HeadPack:  head.Name,
				OtherPack: p.Name,
				Message: fmt.Sprintf(
					"%s uses loader %s but head pack %s uses %s",
					p.Name, p.Loader, head.Name, head.Loader,
				),
			})
		}
	}
	return issues
}
