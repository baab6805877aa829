package emit

import (
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/temirov/gitdeps/internal/manifests/dependencies"
	"github.com/temirov/gitdeps/internal/manifests/document"
	"github.com/temirov/gitdeps/internal/manifests/shared"
)

const (
	writeDoneMessageConstant          = "REWRITE-DONE: %s (%d dependencies now at %s)\n"
	writeSkipMessageConstant          = "REWRITE-SKIP: %s (no git dependencies)\n"
	planEncodeErrorTemplateConstant   = "unable to encode plan: %w"
	unknownOutputModeTemplateConstant = "%w: output mode %q"
	outputErrorTemplateConstant       = "unable to write output: %w"
	planIndentationConstant           = 2
)

// Manifest is a processed manifest ready for emission.
type Manifest struct {
	Path        string
	Permissions fs.FileMode
	Text        string
	Changes     []dependencies.Change
}

// Mutated reports whether any dependency of the manifest was rewritten.
func (manifest Manifest) Mutated() bool {
	return len(manifest.Changes) > 0
}

// Report is everything a run hands to the emitter.
type Report struct {
	GitRepository string
	NewLocation   string
	Manifests     []Manifest
	Failures      []shared.FileFailure
}

// Dependencies captures collaborators required to emit manifests.
type Dependencies struct {
	FileSystem shared.FileSystem
	Output     io.Writer
}

// Emitter delivers serialized manifests to the configured sink.
type Emitter struct {
	mode         shared.OutputMode
	dependencies Dependencies
}

// NewEmitter constructs an Emitter for mode.
func NewEmitter(mode shared.OutputMode, dependencies Dependencies) *Emitter {
	if len(mode) == 0 {
		mode = shared.OutputModePrint
	}
	return &Emitter{mode: mode, dependencies: dependencies}
}

// Render serializes a document back to manifest text.
func Render(manifestDocument *document.Document) string {
	return manifestDocument.String()
}

// Emit prints, writes, or plans every manifest of the report.
func (emitter *Emitter) Emit(report Report) error {
	switch emitter.mode {
	case shared.OutputModePrint:
		for _, manifest := range report.Manifests {
			if outputError := emitter.printfOutput("%s\n", manifest.Text); outputError != nil {
				return outputError
			}
		}
		return nil
	case shared.OutputModeWrite:
		return emitter.writeManifests(report)
	case shared.OutputModePlan:
		return emitter.encodePlan(report)
	default:
		return fmt.Errorf(unknownOutputModeTemplateConstant, shared.ErrConfiguration, emitter.mode)
	}
}

func (emitter *Emitter) writeManifests(report Report) error {
	for _, manifest := range report.Manifests {
		if !manifest.Mutated() {
			if outputError := emitter.printfOutput(writeSkipMessageConstant, manifest.Path); outputError != nil {
				return outputError
			}
			continue
		}
		writeError := emitter.dependencies.FileSystem.WriteFile(manifest.Path, []byte(manifest.Text), manifest.Permissions)
		if writeError != nil {
			return &shared.IOError{Path: manifest.Path, Err: writeError}
		}
		if outputError := emitter.printfOutput(writeDoneMessageConstant, manifest.Path, len(manifest.Changes), report.NewLocation); outputError != nil {
			return outputError
		}
	}
	return nil
}

type planDocument struct {
	GitRepository string         `yaml:"git_repo,omitempty"`
	NewLocation   string         `yaml:"new_repo"`
	Manifests     []planManifest `yaml:"manifests"`
	Unchanged     []string       `yaml:"unchanged,omitempty"`
	Failures      []planFailure  `yaml:"failures,omitempty"`
}

type planManifest struct {
	Path    string                `yaml:"path"`
	Changes []dependencies.Change `yaml:"changes"`
}

type planFailure struct {
	Path  string `yaml:"path"`
	Error string `yaml:"error"`
}

func (emitter *Emitter) encodePlan(report Report) error {
	plan := planDocument{
		GitRepository: report.GitRepository,
		NewLocation:   report.NewLocation,
		Manifests:     []planManifest{},
	}
	for _, manifest := range report.Manifests {
		if !manifest.Mutated() {
			plan.Unchanged = append(plan.Unchanged, manifest.Path)
			continue
		}
		plan.Manifests = append(plan.Manifests, planManifest{Path: manifest.Path, Changes: manifest.Changes})
	}
	for _, failure := range report.Failures {
		plan.Failures = append(plan.Failures, planFailure{Path: failure.Path, Error: failure.Err.Error()})
	}

	if emitter.dependencies.Output == nil {
		return nil
	}
	encoder := yaml.NewEncoder(emitter.dependencies.Output)
	encoder.SetIndent(planIndentationConstant)
	if encodeError := encoder.Encode(plan); encodeError != nil {
		return fmt.Errorf(planEncodeErrorTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(planEncodeErrorTemplateConstant, closeError)
	}
	return nil
}

func (emitter *Emitter) printfOutput(format string, arguments ...any) error {
	if emitter.dependencies.Output == nil {
		return nil
	}
	if _, printError := fmt.Fprintf(emitter.dependencies.Output, format, arguments...); printError != nil {
		return fmt.Errorf(outputErrorTemplateConstant, printError)
	}
	return nil
}
