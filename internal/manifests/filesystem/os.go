package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const temporaryFilePatternConstant = ".%s.tmp-*"

// OSFileSystem implements shared.FileSystem using the operating system primitives.
type OSFileSystem struct{}

// Stat retrieves file metadata.
func (OSFileSystem) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads file contents.
func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile replaces path with data through a sibling temporary file and a
// rename, so readers see either the old or the new contents.
func (OSFileSystem) WriteFile(path string, data []byte, permissions fs.FileMode) (writeError error) {
	temporaryFile, createError := os.CreateTemp(filepath.Dir(path), fmt.Sprintf(temporaryFilePatternConstant, filepath.Base(path)))
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()
	defer func() {
		if writeError != nil {
			_ = temporaryFile.Close()
			_ = os.Remove(temporaryPath)
		}
	}()

	if chmodError := temporaryFile.Chmod(permissions); chmodError != nil {
		return chmodError
	}
	if _, dataError := temporaryFile.Write(data); dataError != nil {
		return dataError
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		return syncError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return closeError
	}
	return os.Rename(temporaryPath, path)
}
