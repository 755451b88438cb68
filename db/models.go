package db

import (
	"gorm.io/gorm"
)

// EmitRecord is one past emit: the pack order it was produced from (pack
// IDs and names only), the output mode, the descriptor fields, the file
// count, and the output path. Records are only listed; nothing re-emits
// from one.
type EmitRecord struct {
	gorm.Model
	Mode       string // "full" | "index"
	VersionID  string // user-supplied versionId (index mode only)
	Name       string // user-supplied descriptor name (index mode only)
	FileCount  int    // enabled files at emit time (index mode: includes remote files listed only in the descriptor)
	PackOrder  string // JSON-encoded ordered list of {id, name} snapshots
	OutputPath string // where the emitted archive was written, if kept
}
