package source

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zeebo/blake3"
)

// FileSource reads a rules document from the local filesystem. Its version
// token is the BLAKE3 hash of the file content, so any edit is a new version.
type FileSource struct {
	path     string
	encoding string
}

// NewFileSource creates a FileSource for path. An empty encoding means
// Windows-1252.
func NewFileSource(path, encoding string) *FileSource {
	return &FileSource{path: path, encoding: encoding}
}

// Path returns the watched document path.
func (fileSource *FileSource) Path() string {
	return fileSource.path
}

// LatestVersion hashes the current file content.
func (fileSource *FileSource) LatestVersion(ctx context.Context) (string, error) {
	data, err := fileSource.read(ctx)
	if err != nil {
		return "", err
	}
	return contentVersion(data), nil
}

// Fetch reads and decodes the file. The version argument is informational:
// the file is read as it is now.
func (fileSource *FileSource) Fetch(ctx context.Context, version string) (string, error) {
	data, err := fileSource.read(ctx)
	if err != nil {
		return "", err
	}
	return decodeDocument(data, fileSource.encoding)
}

func (fileSource *FileSource) read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fileSource.path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return data, nil
}

func contentVersion(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
