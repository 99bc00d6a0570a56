// Package cache keeps the last built lookup and snapshot on disk so repeated
// runs inside the freshness window skip the network.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// File names used by the service.
const (
	LookupFile   = "bearingcache.json"
	SnapshotFile = "sensorcache.json"
)

// Default freshness windows.
const (
	DefaultLookupTTL   = time.Hour
	DefaultSnapshotTTL = 5 * time.Minute
)

// File is a single cached document whose age is its modification time.
type File struct {
	Path string
	TTL  time.Duration
}

// New returns a cache file named name inside dir.
func New(dir, name string, ttl time.Duration) *File {
	return &File{Path: filepath.Join(dir, name), TTL: ttl}
}

// Age returns how long ago the file was written.
func (f *File) Age(now time.Time) (time.Duration, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0, err
	}
	return now.Sub(info.ModTime()), nil
}

// Fresh reports whether the file exists and is younger than TTL.
func (f *File) Fresh(now time.Time) bool {
	if f.TTL <= 0 {
		return false
	}
	age, err := f.Age(now)
	return err == nil && age < f.TTL
}

// Load returns the cached bytes when the file is fresh. A missing or stale
// file is not an error; ok is false.
func (f *File) Load(now time.Time) (data []byte, ok bool, err error) {
	if !f.Fresh(now) {
		return nil, false, nil
	}
	data, err = os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache file: %w", err)
	}
	return data, true, nil
}

// Save replaces the cached document. The write goes through a temporary file
// in the same directory so readers never see a partial document.
func (f *File) Save(data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
