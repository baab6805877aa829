package discovery

import (
	"io/fs"
	"iter"
	"path/filepath"
	"sort"

	"github.com/temirov/gitdeps/internal/manifests/shared"
)

// FilesystemManifestScanner locates manifests on disk.
type FilesystemManifestScanner struct {
	matcher      *ManifestMatcher
	ignoreOutput bool
	fileSystem   shared.FileSystem
}

// NewFilesystemManifestScanner constructs a scanner backed by filepath.WalkDir.
func NewFilesystemManifestScanner(matcher *ManifestMatcher, ignoreOutput bool, fileSystem shared.FileSystem) *FilesystemManifestScanner {
	return &FilesystemManifestScanner{matcher: matcher, ignoreOutput: ignoreOutput, fileSystem: fileSystem}
}

// Manifests lazily walks root and yields every manifest path in traversal
// order. Entries that cannot be read are skipped. Stopping the iteration
// stops the walk.
func (scanner *FilesystemManifestScanner) Manifests(root string) iter.Seq[string] {
	outputDirectoryName := scanner.matcher.OutputDirectory()
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, directoryEntry fs.DirEntry, walkError error) error {
			if walkError != nil {
				return nil
			}

			if directoryEntry.IsDir() {
				if scanner.ignoreOutput && path != root && directoryEntry.Name() == outputDirectoryName {
					return fs.SkipDir
				}
				return nil
			}

			relativePath, relativeError := filepath.Rel(root, path)
			if relativeError != nil {
				relativePath = path
			}
			if !scanner.matcher.Included(relativePath, scanner.ignoreOutput) {
				return nil
			}

			if directoryEntry.Type()&fs.ModeSymlink != 0 {
				if _, statError := scanner.fileSystem.Stat(path); statError != nil {
					return nil
				}
			}

			if !yield(path) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

// DiscoverManifests walks every root and returns the distinct manifest paths.
func (scanner *FilesystemManifestScanner) DiscoverManifests(roots []string) []string {
	seen := make(map[string]struct{})
	var manifests []string

	for _, root := range roots {
		for manifestPath := range scanner.Manifests(root) {
			cleanedPath := filepath.Clean(manifestPath)
			if _, alreadySeen := seen[cleanedPath]; alreadySeen {
				continue
			}
			seen[cleanedPath] = struct{}{}
			manifests = append(manifests, cleanedPath)
		}
	}

	sort.Strings(manifests)
	return manifests
}
