package discovery

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	inclusionPatternTemplateConstant = "**/%s"
	exclusionPatternTemplateConstant = "**/%s/**/%s"
	globMetaCharactersConstant       = `*?[]{}\`
	pathSeparatorConstant            = "/"
	emptyNameMessageConstant         = "manifest name and output directory must not be empty"
	nestedNameTemplateConstant       = "%q must be a single path segment"
	invalidPatternTemplateConstant   = "invalid glob pattern %q"
)

// ManifestMatcher decides which walked paths are manifests. Patterns are
// built once and reused for every path of a run.
type ManifestMatcher struct {
	outputDirectoryName string
	inclusionPattern    string
	exclusionPattern    string
}

// NewManifestMatcher builds the `**/<manifest>` inclusion pattern and the
// `**/<output>/**/<manifest>` exclusion pattern.
func NewManifestMatcher(manifestName string, outputDirectoryName string) (*ManifestMatcher, error) {
	if len(manifestName) == 0 || len(outputDirectoryName) == 0 {
		return nil, errors.New(emptyNameMessageConstant)
	}
	for _, name := range []string{manifestName, outputDirectoryName} {
		if strings.ContainsAny(name, `/\`) {
			return nil, fmt.Errorf(nestedNameTemplateConstant, name)
		}
	}

	escapedManifest := escapeGlob(manifestName)
	matcher := &ManifestMatcher{
		outputDirectoryName: outputDirectoryName,
		inclusionPattern:    fmt.Sprintf(inclusionPatternTemplateConstant, escapedManifest),
		exclusionPattern:    fmt.Sprintf(exclusionPatternTemplateConstant, escapeGlob(outputDirectoryName), escapedManifest),
	}
	for _, pattern := range []string{matcher.inclusionPattern, matcher.exclusionPattern} {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf(invalidPatternTemplateConstant, pattern)
		}
	}
	return matcher, nil
}

// OutputDirectory returns the build output directory name.
func (matcher *ManifestMatcher) OutputDirectory() string {
	return matcher.outputDirectoryName
}

// Included reports whether candidatePath names a manifest. With ignoreOutput
// set, manifests below an output directory are rejected as well.
func (matcher *ManifestMatcher) Included(candidatePath string, ignoreOutput bool) bool {
	normalizedPath := normalizeCandidatePath(candidatePath)

	included, _ := doublestar.Match(matcher.inclusionPattern, normalizedPath)
	if !included || !ignoreOutput {
		return included
	}

	excluded, _ := doublestar.Match(matcher.exclusionPattern, normalizedPath)
	return !excluded
}

func normalizeCandidatePath(candidatePath string) string {
	slashed := filepath.ToSlash(strings.TrimPrefix(candidatePath, filepath.VolumeName(candidatePath)))
	return strings.TrimLeft(path.Clean(slashed), pathSeparatorConstant)
}

func escapeGlob(name string) string {
	var builder strings.Builder
	for _, character := range name {
		if strings.ContainsRune(globMetaCharactersConstant, character) {
			builder.WriteByte('\\')
		}
		builder.WriteRune(character)
	}
	return builder.String()
}
