// Package db persists emit history so a later session can list past
// emits and the pack order each was produced from, using the same gorm +
// gormlite (ncruces/go-sqlite3) stack as the teacher's mod-install
// history store.
package db

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDatabase initializes the SQLite database connection and migrates
// the EmitRecord schema.
func InitDatabase(dbPath string) {
	var err error

	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      false,
			Colorful:                  true,
		},
	)

	DB, err = gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := DB.AutoMigrate(&EmitRecord{}); err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}
}

// PackSnapshot is one entry of a recorded pack order.
type PackSnapshot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecordEmit appends a new EmitRecord for a successful emit.
func RecordEmit(mode, versionID, name string, fileCount int, packOrder []PackSnapshot, outputPath string) (*EmitRecord, error) {
	raw, err := json.Marshal(packOrder)
	if err != nil {
		return nil, fmt.Errorf("db: marshal pack order: %w", err)
	}
	rec := &EmitRecord{
		Mode:       mode,
		VersionID:  versionID,
		Name:       name,
		FileCount:  fileCount,
		PackOrder:  string(raw),
		OutputPath: outputPath,
	}
	if err := DB.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("db: record emit: %w", err)
	}
	return rec, nil
}

// ListEmitHistory returns every recorded emit, most recent first.
func ListEmitHistory() ([]EmitRecord, error) {
	var records []EmitRecord
	if err := DB.Order("created_at desc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("db: list emit history: %w", err)
	}
	return records, nil
}

// PackSnapshots decodes a record's stored pack-order snapshot.
func (r EmitRecord) PackSnapshots() ([]PackSnapshot, error) {
	var snaps []PackSnapshot
	if err := json.Unmarshal([]byte(r.PackOrder), &snaps); err != nil {
		return nil, fmt.Errorf("db: decode pack order: %w", err)
	}
	return snaps, nil
}
