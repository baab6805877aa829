package rewrite

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/gitdeps/internal/manifests/dependencies"
	"github.com/temirov/gitdeps/internal/manifests/discovery"
	"github.com/temirov/gitdeps/internal/manifests/emit"
	"github.com/temirov/gitdeps/internal/manifests/filesystem"
	"github.com/temirov/gitdeps/internal/manifests/shared"
	"github.com/temirov/gitdeps/internal/manifests/store"
)

const (
	defaultRootConstant                   = "."
	runStartedLogMessageConstant          = "Rewriting git dependencies"
	manifestsDiscoveredLogMessageConstant = "Discovered manifests"
	manifestFailedLogMessageConstant      = "Skipping manifest"
	tableMissingLogMessageConstant        = "Dependency table not present"
	entriesLocatedLogMessageConstant      = "Located dependency entries"
	dependencyRewrittenLogMessageConstant = "Rewrote git dependency"
	runCompletedLogMessageConstant        = "Git dependency rewrite completed"
	rootsFieldNameConstant                = "roots"
	manifestFieldNameConstant             = "manifest"
	manifestCountFieldNameConstant        = "manifest_count"
	tableFieldNameConstant                = "table"
	dependencyFieldNameConstant           = "dependency"
	eligibleFieldNameConstant             = "eligible"
	skippedFieldNameConstant              = "skipped"
	gitRepositoryFieldNameConstant        = "git_repo"
	newLocationFieldNameConstant          = "new_repo"
	previousLocationFieldNameConstant     = "previous_git"
	revisionFieldNameConstant             = "rev"
	branchFieldNameConstant               = "branch"
	changeCountFieldNameConstant          = "change_count"
	failureCountFieldNameConstant         = "failure_count"
	matcherErrorTemplateConstant          = "%w: %v"
	processManifestErrorTemplateConstant  = "unable to rewrite %s: %w"
	failedManifestsErrorTemplateConstant  = "%d manifests could not be rewritten: %w"
)

// Options configures a rewrite run.
type Options struct {
	Roots            []string
	ManifestName     string
	OutputDirectory  string
	DependencyTables []string
	Mutation         shared.MutationConfiguration
	OutputMode       shared.OutputMode
	FailurePolicy    shared.FailurePolicy
}

// Dependencies captures collaborators required by the service.
type Dependencies struct {
	FileSystem shared.FileSystem
	Output     io.Writer
	Logger     *zap.Logger
}

// ManifestResult summarizes one processed manifest.
type ManifestResult struct {
	Path    string
	Changes []dependencies.Change
}

// Result summarizes a rewrite run.
type Result struct {
	GitRepository string
	Manifests     []ManifestResult
	Failures      []shared.FileFailure
}

// ChangeCount returns the number of rewritten dependency entries.
func (result Result) ChangeCount() int {
	changeCount := 0
	for _, manifest := range result.Manifests {
		changeCount += len(manifest.Changes)
	}
	return changeCount
}

// Service scans a workspace and rewrites git dependencies of every manifest.
type Service struct {
	dependencies Dependencies
}

// NewService constructs a Service, defaulting missing collaborators.
func NewService(dependencies Dependencies) *Service {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.FileSystem == nil {
		dependencies.FileSystem = filesystem.OSFileSystem{}
	}
	return &Service{dependencies: dependencies}
}

// Execute scans, loads, rewrites, and finally emits every manifest. Nothing is
// emitted when the run fails before emission.
func (service *Service) Execute(executionContext context.Context, options Options) (Result, error) {
	options = normalizeOptions(options)
	logger := service.dependencies.Logger

	mutator, mutatorError := dependencies.NewMutator(options.Mutation)
	if mutatorError != nil {
		return Result{}, mutatorError
	}
	matcher, matcherError := discovery.NewManifestMatcher(options.ManifestName, options.OutputDirectory)
	if matcherError != nil {
		return Result{}, fmt.Errorf(matcherErrorTemplateConstant, shared.ErrConfiguration, matcherError)
	}

	logger.Info(runStartedLogMessageConstant,
		zap.Strings(rootsFieldNameConstant, options.Roots),
		zap.String(gitRepositoryFieldNameConstant, options.Mutation.GitRepository),
		zap.String(newLocationFieldNameConstant, options.Mutation.NewLocation),
		zap.String(revisionFieldNameConstant, options.Mutation.Revision),
		zap.String(branchFieldNameConstant, options.Mutation.Branch),
	)

	scanner := discovery.NewFilesystemManifestScanner(matcher, options.Mutation.IgnoreTarget, service.dependencies.FileSystem)
	manifestPaths := scanner.DiscoverManifests(options.Roots)
	logger.Info(manifestsDiscoveredLogMessageConstant, zap.Int(manifestCountFieldNameConstant, len(manifestPaths)))

	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, contextError
	}

	manifestStore := store.NewStore(service.dependencies.FileSystem, options.FailurePolicy)
	manifests, failures, loadError := manifestStore.Load(manifestPaths)
	if loadError != nil {
		return Result{}, loadError
	}
	for _, failure := range failures {
		logger.Warn(manifestFailedLogMessageConstant, zap.String(manifestFieldNameConstant, failure.Path), zap.Error(failure.Err))
	}

	locator := dependencies.NewLocator()
	result := Result{GitRepository: options.Mutation.GitRepository, Failures: failures}
	report := emit.Report{
		GitRepository: options.Mutation.GitRepository,
		NewLocation:   options.Mutation.NewLocation,
		Failures:      failures,
	}

	for _, manifest := range manifests {
		if contextError := executionContext.Err(); contextError != nil {
			return Result{}, contextError
		}

		changes, processError := service.processManifest(locator, mutator, manifest, options.DependencyTables)
		if processError != nil {
			return Result{}, fmt.Errorf(processManifestErrorTemplateConstant, manifest.Path, processError)
		}

		result.Manifests = append(result.Manifests, ManifestResult{Path: manifest.Path, Changes: changes})
		report.Manifests = append(report.Manifests, emit.Manifest{
			Path:        manifest.Path,
			Permissions: manifest.Permissions,
			Text:        emit.Render(manifest.Document),
			Changes:     changes,
		})
	}

	emitter := emit.NewEmitter(options.OutputMode, emit.Dependencies{
		FileSystem: service.dependencies.FileSystem,
		Output:     service.dependencies.Output,
	})
	if emitError := emitter.Emit(report); emitError != nil {
		return Result{}, emitError
	}

	logger.Info(runCompletedLogMessageConstant,
		zap.Int(manifestCountFieldNameConstant, len(result.Manifests)),
		zap.Int(changeCountFieldNameConstant, result.ChangeCount()),
		zap.Int(failureCountFieldNameConstant, len(result.Failures)),
	)

	if len(result.Failures) > 0 {
		return result, fmt.Errorf(failedManifestsErrorTemplateConstant, len(result.Failures), shared.FailureSummary(result.Failures))
	}
	return result, nil
}

func (service *Service) processManifest(locator *dependencies.Locator, mutator *dependencies.Mutator, manifest store.Manifest, tableNames []string) ([]dependencies.Change, error) {
	logger := service.dependencies.Logger
	var changes []dependencies.Change

	for _, tableName := range tableNames {
		present, presenceError := locator.HasTable(manifest.Document, tableName)
		if presenceError != nil {
			return nil, presenceError
		}
		if !present {
			logger.Debug(tableMissingLogMessageConstant,
				zap.String(manifestFieldNameConstant, manifest.Path),
				zap.String(tableFieldNameConstant, tableName),
			)
			continue
		}

		entries, entriesError := locator.Entries(manifest.Document, tableName)
		if entriesError != nil {
			return nil, entriesError
		}
		var eligibleNames []string
		var skippedNames []string
		for _, entry := range entries {
			if entry.Eligible {
				eligibleNames = append(eligibleNames, entry.Name)
				continue
			}
			skippedNames = append(skippedNames, entry.Name)
		}
		logger.Debug(entriesLocatedLogMessageConstant,
			zap.String(manifestFieldNameConstant, manifest.Path),
			zap.String(tableFieldNameConstant, tableName),
			zap.Strings(eligibleFieldNameConstant, eligibleNames),
			zap.Strings(skippedFieldNameConstant, skippedNames),
		)

		tableChanges, mutateError := mutator.Mutate(manifest.Document, tableName, eligibleNames)
		if mutateError != nil {
			return nil, mutateError
		}
		for _, change := range tableChanges {
			logger.Info(dependencyRewrittenLogMessageConstant,
				zap.String(manifestFieldNameConstant, manifest.Path),
				zap.String(tableFieldNameConstant, change.Table),
				zap.String(dependencyFieldNameConstant, change.Dependency),
				zap.String(previousLocationFieldNameConstant, change.PreviousLocation),
				zap.String(newLocationFieldNameConstant, change.NewLocation),
			)
		}
		changes = append(changes, tableChanges...)
	}

	return changes, nil
}

func normalizeOptions(options Options) Options {
	if len(options.Roots) == 0 {
		options.Roots = []string{defaultRootConstant}
	}
	if len(options.ManifestName) == 0 {
		options.ManifestName = shared.DefaultManifestNameConstant
	}
	if len(options.OutputDirectory) == 0 {
		options.OutputDirectory = shared.DefaultOutputDirectoryConstant
	}
	if len(options.DependencyTables) == 0 {
		options.DependencyTables = shared.DefaultDependencyTables()
	}
	if len(options.OutputMode) == 0 {
		options.OutputMode = shared.OutputModePrint
	}
	if len(options.FailurePolicy) == 0 {
		options.FailurePolicy = shared.FailurePolicyAbort
	}
	return options
}
