package store

import (
	"errors"
	"io/fs"

	"github.com/pelletier/go-toml/v2"

	"github.com/temirov/gitdeps/internal/manifests/document"
	"github.com/temirov/gitdeps/internal/manifests/shared"
)

// Manifest is a loaded manifest file together with its editable document.
type Manifest struct {
	Path        string
	Permissions fs.FileMode
	Document    *document.Document
}

// Store reads and parses manifests.
type Store struct {
	fileSystem    shared.FileSystem
	failurePolicy shared.FailurePolicy
}

// NewStore constructs a Store reading through fileSystem.
func NewStore(fileSystem shared.FileSystem, failurePolicy shared.FailurePolicy) *Store {
	return &Store{fileSystem: fileSystem, failurePolicy: failurePolicy}
}

// Load reads every path. Under FailurePolicyAbort the first failure is
// returned; under FailurePolicyCollect failed paths are skipped and reported.
func (store *Store) Load(paths []string) ([]Manifest, []shared.FileFailure, error) {
	manifests := make([]Manifest, 0, len(paths))
	var failures []shared.FileFailure

	for _, manifestPath := range paths {
		manifest, loadError := store.LoadManifest(manifestPath)
		if loadError != nil {
			if !store.failurePolicy.CollectsFailures() {
				return nil, nil, loadError
			}
			failures = append(failures, shared.FileFailure{Path: manifestPath, Err: loadError})
			continue
		}
		manifests = append(manifests, manifest)
	}

	return manifests, failures, nil
}

// LoadManifest reads a single manifest, validates it against the TOML grammar,
// and parses it into a format-preserving document.
func (store *Store) LoadManifest(manifestPath string) (Manifest, error) {
	fileInfo, statError := store.fileSystem.Stat(manifestPath)
	if statError != nil {
		return Manifest{}, &shared.IOError{Path: manifestPath, Err: statError}
	}

	contents, readError := store.fileSystem.ReadFile(manifestPath)
	if readError != nil {
		return Manifest{}, &shared.IOError{Path: manifestPath, Err: readError}
	}

	if validationError := validateGrammar(manifestPath, contents); validationError != nil {
		return Manifest{}, validationError
	}

	parsedDocument, parseError := document.Parse(string(contents))
	if parseError != nil {
		manifestParseError := &shared.ParseError{Path: manifestPath, Err: parseError}
		var syntaxError *document.SyntaxError
		if errors.As(parseError, &syntaxError) {
			manifestParseError.Line = syntaxError.Line
			manifestParseError.Column = syntaxError.Column
		}
		return Manifest{}, manifestParseError
	}

	return Manifest{Path: manifestPath, Permissions: fileInfo.Mode().Perm(), Document: parsedDocument}, nil
}

// validateGrammar enforces the rules the editable document does not track,
// such as duplicate keys and redefined tables.
func validateGrammar(manifestPath string, contents []byte) error {
	var decoded map[string]any
	decodeError := toml.Unmarshal(contents, &decoded)
	if decodeError == nil {
		return nil
	}

	manifestParseError := &shared.ParseError{Path: manifestPath, Err: decodeError}
	var positionedError *toml.DecodeError
	if errors.As(decodeError, &positionedError) {
		manifestParseError.Line, manifestParseError.Column = positionedError.Position()
	}
	return manifestParseError
}
