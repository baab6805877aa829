package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

const (
	// DefaultManifestNameConstant is the manifest file name searched for.
	DefaultManifestNameConstant = "Cargo.toml"
	// DefaultOutputDirectoryConstant is the build output directory excluded when IgnoreTarget is set.
	DefaultOutputDirectoryConstant = "target"
	// GitKeyConstant names the source location key of a dependency entry.
	GitKeyConstant = "git"
	// RevisionKeyConstant names the revision pin key.
	RevisionKeyConstant = "rev"
	// BranchKeyConstant names the branch pin key.
	BranchKeyConstant = "branch"

	missingNewLocationMessageConstant    = "new repository location is required"
	conflictingPinsTemplateConstant      = "rev %q and branch %q are mutually exclusive"
	unknownOutputModeTemplateConstant    = "unknown output mode %q (expected print, write or plan)"
	unknownFailurePolicyTemplateConstant = "unknown failure policy %q (expected abort or collect)"
	configurationErrorTemplateConstant   = "%w: %s"
)

// DefaultDependencyTables lists the dependency tables inspected when none are configured.
func DefaultDependencyTables() []string {
	return []string{"dependencies", "dev-dependencies"}
}

// FileSystem exposes the filesystem operations required by manifest services.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}

// MutationConfiguration is supplied once per run and never changes afterwards.
type MutationConfiguration struct {
	IgnoreTarget bool
	// GitRepository is the current source location. It is reported but does
	// not restrict which entries are rewritten.
	GitRepository string
	NewLocation   string
	Revision      string
	Branch        string
}

// Validate ensures the configuration describes an unambiguous rewrite.
func (configuration MutationConfiguration) Validate() error {
	if len(strings.TrimSpace(configuration.NewLocation)) == 0 {
		return fmt.Errorf(configurationErrorTemplateConstant, ErrConfiguration, missingNewLocationMessageConstant)
	}
	if len(configuration.Revision) > 0 && len(configuration.Branch) > 0 {
		return fmt.Errorf(configurationErrorTemplateConstant, ErrConfiguration, fmt.Sprintf(conflictingPinsTemplateConstant, configuration.Revision, configuration.Branch))
	}
	return nil
}

// PinsRevision reports whether a revision pin is configured.
func (configuration MutationConfiguration) PinsRevision() bool {
	return len(configuration.Revision) > 0
}

// PinsBranch reports whether a branch pin is configured.
func (configuration MutationConfiguration) PinsBranch() bool {
	return len(configuration.Branch) > 0
}

// OutputMode selects what happens to documents once every manifest is processed.
type OutputMode string

// Supported output modes.
const (
	// OutputModePrint prints every document to standard output.
	OutputModePrint OutputMode = "print"
	// OutputModeWrite writes mutated documents back to their files.
	OutputModeWrite OutputMode = "write"
	// OutputModePlan prints a YAML description of the changes and touches nothing.
	OutputModePlan OutputMode = "plan"
)

// UnmarshalText parses an output mode, treating empty input as OutputModePrint.
func (mode *OutputMode) UnmarshalText(text []byte) error {
	normalized := OutputMode(strings.ToLower(strings.TrimSpace(string(text))))
	switch normalized {
	case "":
		*mode = OutputModePrint
	case OutputModePrint, OutputModeWrite, OutputModePlan:
		*mode = normalized
	default:
		return fmt.Errorf(configurationErrorTemplateConstant, ErrConfiguration, fmt.Sprintf(unknownOutputModeTemplateConstant, string(text)))
	}
	return nil
}

// FailurePolicy specifies how a run reacts to a manifest that cannot be loaded.
type FailurePolicy string

// Supported failure policies.
const (
	// FailurePolicyAbort stops the run at the first failure.
	FailurePolicyAbort FailurePolicy = "abort"
	// FailurePolicyCollect skips failed manifests and reports them at the end.
	FailurePolicyCollect FailurePolicy = "collect"
)

// FailurePolicyFromBool converts the continue-on-error flag into a policy.
func FailurePolicyFromBool(continueOnError bool) FailurePolicy {
	if continueOnError {
		return FailurePolicyCollect
	}
	return FailurePolicyAbort
}

// UnmarshalText parses a failure policy, treating empty input as FailurePolicyAbort.
func (policy *FailurePolicy) UnmarshalText(text []byte) error {
	normalized := FailurePolicy(strings.ToLower(strings.TrimSpace(string(text))))
	switch normalized {
	case "":
		*policy = FailurePolicyAbort
	case FailurePolicyAbort, FailurePolicyCollect:
		*policy = normalized
	default:
		return fmt.Errorf(configurationErrorTemplateConstant, ErrConfiguration, fmt.Sprintf(unknownFailurePolicyTemplateConstant, string(text)))
	}
	return nil
}

// CollectsFailures reports whether failed manifests are skipped instead of aborting.
func (policy FailurePolicy) CollectsFailures() bool {
	return policy == FailurePolicyCollect
}

// FileFailure records a manifest skipped under FailurePolicyCollect.
type FileFailure struct {
	Path string
	Err  error
}

// FailureSummary joins collected failures into a single error.
func FailureSummary(failures []FileFailure) error {
	if len(failures) == 0 {
		return nil
	}
	failureErrors := make([]error, 0, len(failures))
	for _, failure := range failures {
		failureErrors = append(failureErrors, failure.Err)
	}
	return errors.Join(failureErrors...)
}
