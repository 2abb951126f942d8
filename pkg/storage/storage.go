// Package storage stages incoming report files on local disk so the parsers,
// which work on paths, can read them.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a staged file
type FileInfo struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"` // Original upload name
	Size      int64     `json:"size"`
	Path      string    `json:"path"` // Location on disk
	CreatedAt time.Time `json:"created_at"`
}

// Storage defines the staging operations used by the ingest pipeline
type Storage interface {
	// Stage copies r into a new file named after filename and returns its metadata
	Stage(ctx context.Context, filename string, r io.Reader) (*FileInfo, error)

	// Remove deletes a staged file; removing a missing file is not an error
	Remove(ctx context.Context, info *FileInfo) error
}

// Config holds storage configuration
type Config struct {
	LocalPath string
}

// New creates the Storage implementation for cfg
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
