// Package storage defines the content-root file-system abstraction.
package storage

import "time"

// FileInfo describes one markdown file found under the content root.
type FileInfo struct {
	Path    string // relative to the content root
	ModTime time.Time
}

// Provider is the interface for content file operations. All paths are
// relative to the content root.
type Provider interface {
	// List recursively returns every markdown file under dir.
	// The extension match is case-insensitive.
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (temp file, fsync, rename),
	// so concurrent readers never observe a partial file.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Abs resolves path against the content root, rejecting escapes.
	Abs(path string) (string, error)
}
