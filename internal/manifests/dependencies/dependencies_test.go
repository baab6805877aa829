package dependencies_test

import (
	"errors"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdeps/internal/manifests/dependencies"
	"github.com/temirov/gitdeps/internal/manifests/document"
	"github.com/temirov/gitdeps/internal/manifests/shared"
)

const (
	dependenciesTableName    = "dependencies"
	devDependenciesTableName = "dev-dependencies"
	newLocation              = "https://new/repo"
	configuredRevision       = "abcdef"
	configuredBranch         = "stable"

	workspaceManifest = `[package]
name = "chisa" # the wired

[dependencies]
bar = "1.0"  # bare
foo = { git = "https://old/repo", branch = "main" }
serde = { version = "1.0", features = ["derive"] }
numeric = 3

[dependencies.substrate]
git = "https://old/substrate"
rev = "0123456"

[dev-dependencies]
tokio.git = "https://old/tokio"
tokio.branch = "dev"
`

	workspaceManifestWithRevision = `[package]
name = "chisa" # the wired

[dependencies]
bar = "1.0"  # bare
foo = { git = "https://new/repo", rev = "abcdef" }
serde = { version = "1.0", features = ["derive"] }
numeric = 3

[dependencies.substrate]
git = "https://new/repo"
rev = "abcdef"

[dev-dependencies]
tokio.git = "https://new/repo"
tokio.rev = "abcdef"
`

	workspaceManifestWithBranch = `[package]
name = "chisa" # the wired

[dependencies]
bar = "1.0"  # bare
foo = { git = "https://new/repo", branch = "stable" }
serde = { version = "1.0", features = ["derive"] }
numeric = 3

[dependencies.substrate]
git = "https://new/repo"
branch = "stable"

[dev-dependencies]
tokio.git = "https://new/repo"
tokio.branch = "stable"
`

	workspaceManifestWithoutPin = `[package]
name = "chisa" # the wired

[dependencies]
bar = "1.0"  # bare
foo = { branch = "main", git = "https://new/repo" }
serde = { version = "1.0", features = ["derive"] }
numeric = 3

[dependencies.substrate]
rev = "0123456"
git = "https://new/repo"

[dev-dependencies]
tokio.branch = "dev"
tokio.git = "https://new/repo"
`
)

func parseDocument(testInstance *testing.T, content string) *document.Document {
	testInstance.Helper()
	parsedDocument, parseError := document.Parse(content)
	require.NoError(testInstance, parseError)
	return parsedDocument
}

func rewriteAllTables(testInstance *testing.T, manifestDocument *document.Document, configuration shared.MutationConfiguration) []dependencies.Change {
	testInstance.Helper()

	locator := dependencies.NewLocator()
	mutator, mutatorError := dependencies.NewMutator(configuration)
	require.NoError(testInstance, mutatorError)

	var changes []dependencies.Change
	for _, tableName := range []string{dependenciesTableName, devDependenciesTableName} {
		names, locateError := locator.Locate(manifestDocument, tableName)
		require.NoError(testInstance, locateError)
		tableChanges, mutateError := mutator.Mutate(manifestDocument, tableName, names)
		require.NoError(testInstance, mutateError)
		changes = append(changes, tableChanges...)
	}
	return changes
}

func TestLocatorEntriesClassifiesShapes(testInstance *testing.T) {
	manifestDocument := parseDocument(testInstance, workspaceManifest)
	locator := dependencies.NewLocator()

	entries, entriesError := locator.Entries(manifestDocument, dependenciesTableName)
	require.NoError(testInstance, entriesError)
	require.Equal(testInstance, []dependencies.Entry{
		{Name: "bar", Shape: dependencies.ShapeVersionString, Eligible: false},
		{Name: "foo", Shape: dependencies.ShapeInlineTable, Eligible: true},
		{Name: "serde", Shape: dependencies.ShapeInlineTable, Eligible: false},
		{Name: "numeric", Shape: dependencies.ShapeOther, Eligible: false},
		{Name: "substrate", Shape: dependencies.ShapeBlockTable, Eligible: true},
	}, entries)

	eligibleNames, locateError := locator.Locate(manifestDocument, devDependenciesTableName)
	require.NoError(testInstance, locateError)
	require.Equal(testInstance, []string{"tokio"}, eligibleNames)
}

func TestEligibleRequiresTableShapeAndGitKey(testInstance *testing.T) {
	testCases := []struct {
		shape     dependencies.Shape
		hasGitKey bool
		expected  bool
	}{
		{shape: dependencies.ShapeVersionString, hasGitKey: true, expected: false},
		{shape: dependencies.ShapeOther, hasGitKey: true, expected: false},
		{shape: dependencies.ShapeInlineTable, hasGitKey: false, expected: false},
		{shape: dependencies.ShapeInlineTable, hasGitKey: true, expected: true},
		{shape: dependencies.ShapeBlockTable, hasGitKey: true, expected: true},
		{shape: dependencies.ShapeDottedTable, hasGitKey: true, expected: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.shape.String(), func(testingInstance *testing.T) {
			require.Equal(testingInstance, testCase.expected, dependencies.Eligible(testCase.shape, testCase.hasGitKey))
		})
	}
}

func TestLocatorReportsMissingTable(testInstance *testing.T) {
	manifestDocument := parseDocument(testInstance, "[package]\nname = \"lonely\"\n")
	locator := dependencies.NewLocator()

	present, presenceError := locator.HasTable(manifestDocument, dependenciesTableName)
	require.NoError(testInstance, presenceError)
	require.False(testInstance, present)

	_, locateError := locator.Locate(manifestDocument, dependenciesTableName)
	require.ErrorIs(testInstance, locateError, shared.ErrNotFound)

	var notFoundError *shared.NotFoundError
	require.True(testInstance, errors.As(locateError, &notFoundError))
	require.Equal(testInstance, shared.NotFoundReasonMissingTable, notFoundError.Reason)
	require.Equal(testInstance, dependenciesTableName, notFoundError.Table)
}

func TestLocatorRejectsInvalidTableName(testInstance *testing.T) {
	manifestDocument := parseDocument(testInstance, workspaceManifest)
	_, locateError := dependencies.NewLocator().Locate(manifestDocument, "dependencies extra")
	require.ErrorIs(testInstance, locateError, shared.ErrConfiguration)
}

func TestMutatorRewritesEligibleEntries(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration shared.MutationConfiguration
		expected      string
	}{
		{
			name:          "revision_pin_replaces_branch",
			configuration: shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision},
			expected:      workspaceManifestWithRevision,
		},
		{
			name:          "branch_pin_replaces_revision",
			configuration: shared.MutationConfiguration{NewLocation: newLocation, Branch: configuredBranch},
			expected:      workspaceManifestWithBranch,
		},
		{
			name:          "no_pin_keeps_existing_pins",
			configuration: shared.MutationConfiguration{NewLocation: newLocation},
			expected:      workspaceManifestWithoutPin,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			manifestDocument := parseDocument(testingInstance, workspaceManifest)
			changes := rewriteAllTables(testingInstance, manifestDocument, testCase.configuration)
			require.Len(testingInstance, changes, 3)
			require.Equal(testingInstance, testCase.expected, manifestDocument.String())
		})
	}
}

func TestMutatorEnforcesPinExclusivity(testInstance *testing.T) {
	testCases := []struct {
		name             string
		configuration    shared.MutationConfiguration
		expectedRevision string
		expectedBranch   string
	}{
		{name: "revision", configuration: shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision}, expectedRevision: configuredRevision},
		{name: "branch", configuration: shared.MutationConfiguration{NewLocation: newLocation, Branch: configuredBranch}, expectedBranch: configuredBranch},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			manifestDocument := parseDocument(testingInstance, workspaceManifest)
			changes := rewriteAllTables(testingInstance, manifestDocument, testCase.configuration)

			var decoded map[string]map[string]any
			require.NoError(testingInstance, toml.Unmarshal([]byte(manifestDocument.String()), &decoded))

			for _, change := range changes {
				entry, isTable := decoded[change.Table][change.Dependency].(map[string]any)
				require.True(testingInstance, isTable, change.Dependency)
				require.Equal(testingInstance, newLocation, entry["git"])

				revision, hasRevision := entry["rev"]
				branch, hasBranch := entry["branch"]
				require.False(testingInstance, hasRevision && hasBranch, change.Dependency)
				if len(testCase.expectedRevision) > 0 {
					require.Equal(testingInstance, testCase.expectedRevision, revision)
					require.Equal(testingInstance, testCase.expectedRevision, change.Revision)
					require.Empty(testingInstance, change.Branch)
				}
				if len(testCase.expectedBranch) > 0 {
					require.Equal(testingInstance, testCase.expectedBranch, branch)
					require.Equal(testingInstance, testCase.expectedBranch, change.Branch)
					require.Empty(testingInstance, change.Revision)
				}
			}

			require.Equal(testingInstance, "1.0", decoded[dependenciesTableName]["bar"])
		})
	}
}

func TestMutatorRecordsChanges(testInstance *testing.T) {
	manifestDocument := parseDocument(testInstance, workspaceManifest)
	changes := rewriteAllTables(testInstance, manifestDocument, shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision})

	require.Equal(testInstance, []dependencies.Change{
		{Table: dependenciesTableName, Dependency: "foo", PreviousLocation: "https://old/repo", NewLocation: newLocation, PreviousBranch: "main", Revision: configuredRevision},
		{Table: dependenciesTableName, Dependency: "substrate", PreviousLocation: "https://old/substrate", NewLocation: newLocation, PreviousRevision: "0123456", Revision: configuredRevision},
		{Table: devDependenciesTableName, Dependency: "tokio", PreviousLocation: "https://old/tokio", NewLocation: newLocation, PreviousBranch: "dev", Revision: configuredRevision},
	}, changes)
}

func TestMutatorSwapsBranchPinForRevision(testInstance *testing.T) {
	manifestDocument := parseDocument(testInstance, "[dependencies]\nfoo = { git = \"https://old/repo\", branch = \"main\" }\n")
	rewriteAllTablesPresent(testInstance, manifestDocument, shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision})
	require.Equal(testInstance, "[dependencies]\nfoo = { git = \"https://new/repo\", rev = \"abcdef\" }\n", manifestDocument.String())
}

func TestMutatorKeepsCommentsAroundRewrittenKeys(testInstance *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "dotted_group",
			content:  "[dependencies]\nbar = \"1.0\"\n\n# forked tokio, see issue 42\ntokio.git = \"https://old/tokio\"\ntokio.branch = \"dev\"\n",
			expected: "[dependencies]\nbar = \"1.0\"\n\n# forked tokio, see issue 42\ntokio.git = \"https://new/repo\"\ntokio.rev = \"abcdef\"\n",
		},
		{
			name:     "block_table",
			content:  "[dependencies]\nbar = \"1.0\"\n\n[dependencies.substrate]\n# pinned fork\ngit = \"https://old/substrate\" # upstream\nbranch = \"main\"\n",
			expected: "[dependencies]\nbar = \"1.0\"\n\n[dependencies.substrate]\n# pinned fork\n# upstream\ngit = \"https://new/repo\"\nrev = \"abcdef\"\n",
		},
		{
			name:     "crlf_without_final_newline",
			content:  "[dependencies.bar]\r\ngit = \"x\"",
			expected: "[dependencies.bar]\r\ngit = \"https://new/repo\"\r\nrev = \"abcdef\"\r\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			manifestDocument := parseDocument(testingInstance, testCase.content)
			rewriteAllTablesPresent(testingInstance, manifestDocument, shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision})
			require.Equal(testingInstance, testCase.expected, manifestDocument.String())
		})
	}
}

func rewriteAllTablesPresent(testInstance *testing.T, manifestDocument *document.Document, configuration shared.MutationConfiguration) {
	testInstance.Helper()

	locator := dependencies.NewLocator()
	mutator, mutatorError := dependencies.NewMutator(configuration)
	require.NoError(testInstance, mutatorError)

	for _, tableName := range []string{dependenciesTableName, devDependenciesTableName} {
		present, presenceError := locator.HasTable(manifestDocument, tableName)
		require.NoError(testInstance, presenceError)
		if !present {
			continue
		}
		names, locateError := locator.Locate(manifestDocument, tableName)
		require.NoError(testInstance, locateError)
		_, mutateError := mutator.Mutate(manifestDocument, tableName, names)
		require.NoError(testInstance, mutateError)
	}
}

func TestMutatorReportsInvariantViolations(testInstance *testing.T) {
	testCases := []struct {
		name           string
		entry          string
		expectedReason shared.NotFoundReason
	}{
		{name: "missing_entry", entry: "ghost", expectedReason: shared.NotFoundReasonMissingKey},
		{name: "bare_version", entry: "bar", expectedReason: shared.NotFoundReasonWrongValueKind},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			manifestDocument := parseDocument(testingInstance, workspaceManifest)
			mutator, mutatorError := dependencies.NewMutator(shared.MutationConfiguration{NewLocation: newLocation})
			require.NoError(testingInstance, mutatorError)

			_, mutateError := mutator.Mutate(manifestDocument, dependenciesTableName, []string{testCase.entry})
			require.ErrorIs(testingInstance, mutateError, shared.ErrMutation)

			var notFoundError *shared.NotFoundError
			require.True(testingInstance, errors.As(mutateError, &notFoundError))
			require.Equal(testingInstance, testCase.expectedReason, notFoundError.Reason)
			require.Equal(testingInstance, workspaceManifest, manifestDocument.String())
		})
	}
}

func TestNewMutatorValidatesConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration shared.MutationConfiguration
	}{
		{name: "missing_location", configuration: shared.MutationConfiguration{Revision: configuredRevision}},
		{name: "conflicting_pins", configuration: shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision, Branch: configuredBranch}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			_, mutatorError := dependencies.NewMutator(testCase.configuration)
			require.ErrorIs(testingInstance, mutatorError, shared.ErrConfiguration)
		})
	}
}

func TestRewriteWithoutDependencyTablesLeavesDocumentUnchanged(testInstance *testing.T) {
	const lonelyManifest = "[package]\nname = \"lonely\"\n\n[features]\ndefault = []\n"
	manifestDocument := parseDocument(testInstance, lonelyManifest)
	rewriteAllTablesPresent(testInstance, manifestDocument, shared.MutationConfiguration{NewLocation: newLocation, Revision: configuredRevision})
	require.Equal(testInstance, lonelyManifest, manifestDocument.String())
}
