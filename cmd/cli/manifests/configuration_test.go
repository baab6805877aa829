package manifests

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdeps/internal/manifests/shared"
)

func TestDefaultConfigurationValuesUseRootKey(testInstance *testing.T) {
	values := DefaultConfigurationValues("tools")

	require.Equal(testInstance, []string{"."}, values["tools.rewrite.roots"])
	require.Equal(testInstance, shared.DefaultManifestNameConstant, values["tools.rewrite.manifest_name"])
	require.Equal(testInstance, shared.DefaultDependencyTables(), values["tools.rewrite.dependency_tables"])
	require.Equal(testInstance, "print", values["tools.rewrite.output_mode"])
	require.Equal(testInstance, "abort", values["tools.rewrite.failure_policy"])
}

func TestRewriteConfigurationSanitize(testInstance *testing.T) {
	configuration := RewriteConfiguration{
		Roots:            []string{"  ", " crates "},
		ManifestName:     " ",
		DependencyTables: []string{" dependencies ", ""},
		NewRepository:    " https://new/repo ",
		Revision:         " abc ",
	}

	sanitized := configuration.sanitize()
	require.Equal(testInstance, []string{"crates"}, sanitized.Roots)
	require.Equal(testInstance, shared.DefaultManifestNameConstant, sanitized.ManifestName)
	require.Equal(testInstance, shared.DefaultOutputDirectoryConstant, sanitized.OutputDirectory)
	require.Equal(testInstance, []string{"dependencies"}, sanitized.DependencyTables)
	require.Equal(testInstance, "https://new/repo", sanitized.NewRepository)
	require.Equal(testInstance, "abc", sanitized.Revision)
	require.Equal(testInstance, shared.OutputModePrint, sanitized.OutputMode)
	require.Equal(testInstance, shared.FailurePolicyAbort, sanitized.FailurePolicy)
}

func TestDetermineRootsPrefersArguments(testInstance *testing.T) {
	require.Equal(testInstance, []string{"a"}, determineRoots([]string{" a "}, []string{"b"}))
	require.Equal(testInstance, []string{"b"}, determineRoots(nil, []string{"b"}))
	require.Equal(testInstance, []string{"."}, determineRoots([]string{" "}, nil))
}
