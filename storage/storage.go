// Package storage persists discovery exports: renderer payloads for each
// pair and profile, and the consolidated profile of a case.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Download when no object exists at the path
var ErrNotFound = errors.New("export not found")

// Storage interface for export storage operations
type Storage interface {
	// Upload stores an export and returns its storage path
	Upload(ctx context.Context, key Key, data io.Reader) (string, error)

	// Download retrieves an export by storage path
	Download(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Delete removes an export by storage path
	Delete(ctx context.Context, storagePath string) error
}

// Key identifies one export inside a case's discovery job. ExportID keeps
// paths unique when two exports share a filename.
type Key struct {
	CaseID   uuid.UUID
	JobID    uuid.UUID
	ExportID uuid.UUID
	Profile  string
	Filename string
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal, "":
		if cfg.LocalPath == "" {
			cfg.LocalPath = "./storage/exports"
		}
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET is required for S3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// storagePath lays exports out as cases/<case>/jobs/<job>/<profile>/<export>_<file>
func storagePath(key Key) string {
	profile := key.Profile
	if profile == "" {
		profile = "all"
	}
	exportID := key.ExportID
	if exportID == uuid.Nil {
		exportID = uuid.New()
	}
	name := fmt.Sprintf("%s_%s", exportID.String(), sanitize(key.Filename))
	return path.Join("cases", key.CaseID.String(), "jobs", key.JobID.String(), profile, name)
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")

func sanitize(name string) string {
	name = filenameReplacer.Replace(strings.TrimSpace(name))
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "export.json"
	}
	return name
}

// contentType determines content type from filename
func contentType(filename string) string {
	switch path.Ext(filename) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
