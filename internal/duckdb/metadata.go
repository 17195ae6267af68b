package duckdb

import (
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for an analysis input file.
type FileFingerprint struct {
	Role    string // "variants", "genes" or "domains"
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(role, path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Role:    role,
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
