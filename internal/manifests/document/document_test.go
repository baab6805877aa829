package document_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdeps/internal/manifests/document"
)

const (
	roundTripWorkspaceManifest = `# Workspace manifest
[package]
name    = "chisa"   # trailing comment
version = "0.1.0"
authors = [
    "Lain <lain@wired.example>",  # first
    'Eiri',
]
edition = "2018"

[dependencies]
serde = "1.0"
tokio = { version = "0.2", features = ["full"] }
"quoted-name" = { git = 'https://old/quoted' , branch="main" }
chrono.version = "0.4"
chrono.git     = "https://old/chrono"

[dependencies.substrate]
git    = "https://old/substrate"
rev = "0123456"

[[bin]]
name = "chisa"
path = "src/main.rs"

[profile.release]
opt-level = 3
lto = true
published = 1979-05-27 07:32:00Z
description = """
multi "line"
text"""
literal = '''
raw \ text'''
`
	roundTripCRLFManifest     = "[dependencies]\r\nfoo = { git = \"https://old/repo\" }\r\n\r\n# done\r\n"
	roundTripNoNewlineManifest = "[dependencies]\nfoo = \"1.0\""
	roundTripEmptyManifest     = ""
	roundTripCommentsOnly      = "# nothing here\n\n   # still nothing\n"
)

func TestParseRoundTripPreservesSource(testInstance *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "workspace_manifest", content: roundTripWorkspaceManifest},
		{name: "crlf_line_endings", content: roundTripCRLFManifest},
		{name: "missing_final_newline", content: roundTripNoNewlineManifest},
		{name: "empty_document", content: roundTripEmptyManifest},
		{name: "comments_only", content: roundTripCommentsOnly},
		{name: "empty_inline_table", content: "[dependencies]\nfoo = {  }\nbar = {}\n"},
		{name: "nested_arrays", content: "matrix = [ [1, 2], [3,4,] ,]\n"},
		{name: "indented_sections", content: "  [a]\n  b = 1\n\t[a.c]\n\td = true\n"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			parsedDocument, parseError := document.Parse(testCase.content)
			require.NoError(testingInstance, parseError)
			require.Equal(testingInstance, testCase.content, parsedDocument.String())
		})
	}
}

func TestParseRejectsMalformedContent(testInstance *testing.T) {
	testCases := []struct {
		name         string
		content      string
		expectedLine int
	}{
		{name: "unterminated_string", content: "[dependencies]\nfoo = \"1.0\n", expectedLine: 2},
		{name: "missing_equals", content: "foo \"1.0\"\n", expectedLine: 1},
		{name: "unclosed_header", content: "[dependencies\nfoo = 1\n", expectedLine: 1},
		{name: "unterminated_array", content: "a = [1, 2\n", expectedLine: 2},
		{name: "unterminated_inline_table", content: "a = { b = 1\n", expectedLine: 1},
		{name: "garbage_after_value", content: "a = 1 2\n", expectedLine: 1},
		{name: "invalid_escape", content: "a = \"\\q\"\n", expectedLine: 1},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			_, parseError := document.Parse(testCase.content)
			require.Error(testingInstance, parseError)

			var syntaxError *document.SyntaxError
			require.ErrorAs(testingInstance, parseError, &syntaxError)
			require.Equal(testingInstance, testCase.expectedLine, syntaxError.Line)
		})
	}
}

func TestStringValuesDecode(testInstance *testing.T) {
	parsedDocument, parseError := document.Parse("a = \"tab\\there\"\nb = 'C:\\path'\nc = \"\\u00e9\"\nd = \"\"\"\nline \\\n   joined\"\"\"\n")
	require.NoError(testInstance, parseError)

	expectedTexts := []string{"tab\there", `C:\path`, "é", "line joined"}
	entries := parsedDocument.Root().Entries()
	require.Len(testInstance, entries, len(expectedTexts))
	for entryIndex, entry := range entries {
		stringValue, isString := entry.Value().(*document.StringValue)
		require.True(testInstance, isString)
		require.Equal(testInstance, expectedTexts[entryIndex], stringValue.Text())
	}
}

func TestNewStringValueQuotesText(testInstance *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "plain", text: "https://new/repo", expected: `"https://new/repo"`},
		{name: "quotes_and_backslashes", text: `a"b\c`, expected: `"a\"b\\c"`},
		{name: "control_characters", text: "a\nb\x01", expected: `"a\nb\u0001"`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			value := document.NewStringValue(testCase.text)
			require.Equal(testingInstance, testCase.expected, value.Raw())
			require.Equal(testingInstance, testCase.text, value.Text())
		})
	}
}

func TestParseKeyPath(testInstance *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    []string
		expectError bool
	}{
		{name: "bare", input: "dependencies", expected: []string{"dependencies"}},
		{name: "dotted_with_spaces", input: " workspace . dependencies ", expected: []string{"workspace", "dependencies"}},
		{name: "quoted_segment", input: `target.'cfg(unix)'.dependencies`, expected: []string{"target", "cfg(unix)", "dependencies"}},
		{name: "rejects_empty", input: "", expectError: true},
		{name: "rejects_trailing", input: "a b", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testingInstance *testing.T) {
			segments, parseError := document.ParseKeyPath(testCase.input)
			if testCase.expectError {
				require.Error(testingInstance, parseError)
				return
			}
			require.NoError(testingInstance, parseError)
			require.Equal(testingInstance, testCase.expected, segments)
		})
	}
}
