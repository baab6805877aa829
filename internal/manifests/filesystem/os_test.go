package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdeps/internal/manifests/filesystem"
)

const (
	manifestFileNameConstant = "Cargo.toml"
	originalTextConstant     = "[dependencies]\nfoo = { git = \"https://old/repo\" }\n"
	replacedTextConstant     = "[dependencies]\nfoo = { git = \"https://new/repo\" }\n"
)

func TestWriteFileReplacesContentsAndPermissions(testInstance *testing.T) {
	directory := testInstance.TempDir()
	manifestPath := filepath.Join(directory, manifestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(originalTextConstant), 0o644))

	fileSystem := filesystem.OSFileSystem{}
	require.NoError(testInstance, fileSystem.WriteFile(manifestPath, []byte(replacedTextConstant), 0o600))

	contents, readError := fileSystem.ReadFile(manifestPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, replacedTextConstant, string(contents))

	info, statError := fileSystem.Stat(manifestPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o600), info.Mode().Perm())

	entries, listError := os.ReadDir(directory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, entries, 1)
	require.Equal(testInstance, manifestFileNameConstant, entries[0].Name())
}

func TestWriteFileFailureLeavesNoTemporaryFile(testInstance *testing.T) {
	directory := testInstance.TempDir()
	targetPath := filepath.Join(directory, manifestFileNameConstant)
	require.NoError(testInstance, os.Mkdir(targetPath, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetPath, "keep"), []byte("x"), 0o644))

	fileSystem := filesystem.OSFileSystem{}
	require.Error(testInstance, fileSystem.WriteFile(targetPath, []byte(replacedTextConstant), 0o644))

	entries, listError := os.ReadDir(directory)
	require.NoError(testInstance, listError)
	require.Len(testInstance, entries, 1)
	require.True(testInstance, entries[0].IsDir())
}

func TestWriteFileReportsMissingDirectory(testInstance *testing.T) {
	missingPath := filepath.Join(testInstance.TempDir(), "absent", manifestFileNameConstant)
	require.Error(testInstance, filesystem.OSFileSystem{}.WriteFile(missingPath, []byte(replacedTextConstant), 0o644))
}
