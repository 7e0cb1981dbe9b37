package policy

import (
	"context"
	"os"
	"strings"
)

// Source loads the current policy identity from some backing location.
type Source interface {
	// Load returns the identity the source currently describes.
	Load(ctx context.Context) (Identity, error)
}

// StaticSource is a Source that always returns a fixed identity.
type StaticSource Identity

// Load returns the fixed identity.
func (s StaticSource) Load(_ context.Context) (Identity, error) {
	id := Identity(s)
	if id.IsZero() {
		return "", &LoadError{Source: "static", Cause: ErrEmptyIdentity}
	}
	return id, nil
}

// FileSource loads the identity from the trimmed contents of a file.
// The file holds the identity token itself, not policy rules.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the watched file path.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads the file and returns its trimmed contents as the identity.
func (s *FileSource) Load(_ context.Context) (Identity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", &LoadError{Source: "file", Cause: err}
	}
	id := Identity(strings.TrimSpace(string(data)))
	if id.IsZero() {
		return "", &LoadError{Source: "file", Cause: ErrEmptyIdentity}
	}
	return id, nil
}
