package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdeps/internal/manifests/discovery"
	"github.com/temirov/gitdeps/internal/manifests/filesystem"
)

const (
	manifestContents            = "[package]\nname = \"fixture\"\n"
	manifestDirectoryPermission = 0o755
	manifestFilePermission      = 0o644
)

var scannerFixtureFiles = []string{
	"Cargo.toml",
	"crates/alpha/Cargo.toml",
	"crates/alpha/src/lib.rs",
	"crates/beta/Cargo.toml",
	"target/debug/wbuild/Cargo.toml",
	"crates/alpha/target/package/Cargo.toml",
}

func writeScannerFixture(testInstance *testing.T) string {
	testInstance.Helper()

	rootDirectory := testInstance.TempDir()
	for _, relativePath := range scannerFixtureFiles {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(absolutePath), manifestDirectoryPermission))
		require.NoError(testInstance, os.WriteFile(absolutePath, []byte(manifestContents), manifestFilePermission))
	}
	return rootDirectory
}

func expectedManifestPaths(rootDirectory string, relativePaths ...string) []string {
	expected := make([]string, 0, len(relativePaths))
	for _, relativePath := range relativePaths {
		expected = append(expected, filepath.Join(rootDirectory, filepath.FromSlash(relativePath)))
	}
	return expected
}

func TestFilesystemManifestScannerDiscoversManifests(testInstance *testing.T) {
	testCases := []struct {
		name          string
		ignoreOutput  bool
		expectedPaths []string
	}{
		{
			name:          "ignoring_output_directories",
			ignoreOutput:  true,
			expectedPaths: []string{"Cargo.toml", "crates/alpha/Cargo.toml", "crates/beta/Cargo.toml"},
		},
		{
			name:         "including_output_directories",
			ignoreOutput: false,
			expectedPaths: []string{
				"Cargo.toml",
				"crates/alpha/Cargo.toml",
				"crates/alpha/target/package/Cargo.toml",
				"crates/beta/Cargo.toml",
				"target/debug/wbuild/Cargo.toml",
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			rootDirectory := writeScannerFixture(testingInstance)
			matcher, matcherError := discovery.NewManifestMatcher(testManifestName, testOutputDirectory)
			require.NoError(testingInstance, matcherError)

			scanner := discovery.NewFilesystemManifestScanner(matcher, testCase.ignoreOutput, filesystem.OSFileSystem{})
			discovered := scanner.DiscoverManifests([]string{rootDirectory})
			require.ElementsMatch(testingInstance, expectedManifestPaths(rootDirectory, testCase.expectedPaths...), discovered)
		})
	}
}

func TestFilesystemManifestScannerDeduplicatesNestedRoots(testInstance *testing.T) {
	rootDirectory := writeScannerFixture(testInstance)
	matcher, matcherError := discovery.NewManifestMatcher(testManifestName, testOutputDirectory)
	require.NoError(testInstance, matcherError)

	scanner := discovery.NewFilesystemManifestScanner(matcher, true, filesystem.OSFileSystem{})
	discovered := scanner.DiscoverManifests([]string{rootDirectory, filepath.Join(rootDirectory, "crates")})
	require.Equal(testInstance, expectedManifestPaths(rootDirectory, "Cargo.toml", "crates/alpha/Cargo.toml", "crates/beta/Cargo.toml"), discovered)
}

func TestFilesystemManifestScannerToleratesMissingRoots(testInstance *testing.T) {
	matcher, matcherError := discovery.NewManifestMatcher(testManifestName, testOutputDirectory)
	require.NoError(testInstance, matcherError)

	scanner := discovery.NewFilesystemManifestScanner(matcher, true, filesystem.OSFileSystem{})
	require.Empty(testInstance, scanner.DiscoverManifests([]string{filepath.Join(testInstance.TempDir(), "missing")}))
}

func TestFilesystemManifestScannerSkipsBrokenLinks(testInstance *testing.T) {
	rootDirectory := writeScannerFixture(testInstance)
	brokenDirectory := filepath.Join(rootDirectory, "broken")
	require.NoError(testInstance, os.MkdirAll(brokenDirectory, manifestDirectoryPermission))
	linkError := os.Symlink(filepath.Join(rootDirectory, "does-not-exist"), filepath.Join(brokenDirectory, testManifestName))
	if linkError != nil {
		testInstance.Skip("symbolic links unavailable")
	}

	matcher, matcherError := discovery.NewManifestMatcher(testManifestName, testOutputDirectory)
	require.NoError(testInstance, matcherError)

	scanner := discovery.NewFilesystemManifestScanner(matcher, true, filesystem.OSFileSystem{})
	require.NotContains(testInstance, scanner.DiscoverManifests([]string{rootDirectory}), filepath.Join(brokenDirectory, testManifestName))
}

func TestFilesystemManifestScannerStopsWhenConsumerStops(testInstance *testing.T) {
	rootDirectory := writeScannerFixture(testInstance)
	matcher, matcherError := discovery.NewManifestMatcher(testManifestName, testOutputDirectory)
	require.NoError(testInstance, matcherError)

	scanner := discovery.NewFilesystemManifestScanner(matcher, false, filesystem.OSFileSystem{})
	yielded := 0
	for range scanner.Manifests(rootDirectory) {
		yielded++
		break
	}
	require.Equal(testInstance, 1, yielded)
}
