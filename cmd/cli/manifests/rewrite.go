package manifests

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/gitdeps/internal/manifests/rewrite"
	"github.com/temirov/gitdeps/internal/manifests/shared"
)

const (
	rewriteUseConstant              = "rewrite [root ...]"
	rewriteShortDescriptionConstant = "Point git dependencies of every Cargo manifest at a new repository"
	rewriteLongDescriptionConstant  = `rewrite scans each root for Cargo manifests, replaces the git source of every
git dependency with --new-repo, and optionally pins a revision or branch.

Documents are printed to standard output unless --write or --dry-run is given.`

	newRepositoryFlagNameConstant         = "new-repo"
	newRepositoryFlagUsageConstant        = "Repository location written into every git dependency"
	gitRepositoryFlagNameConstant         = "git-repo"
	gitRepositoryFlagUsageConstant        = "Repository location currently referenced by the manifests (reported only)"
	revisionFlagNameConstant              = "rev"
	revisionFlagUsageConstant             = "Pin rewritten dependencies to this revision and drop any branch"
	branchFlagNameConstant                = "branch"
	branchFlagUsageConstant               = "Pin rewritten dependencies to this branch and drop any revision"
	ignoreTargetFlagNameConstant          = "ignore-target"
	ignoreTargetFlagUsageConstant         = "Skip manifests inside build output directories"
	writeFlagNameConstant                 = "write"
	writeFlagUsageConstant                = "Write rewritten manifests back to disk instead of printing them"
	dryRunFlagNameConstant                = "dry-run"
	dryRunFlagUsageConstant               = "Print a YAML plan of the rewrite without touching any file"
	continueOnErrorFlagNameConstant       = "continue-on-error"
	continueOnErrorFlagUsageConstant      = "Skip unreadable or invalid manifests and report them at the end"
	tableFlagNameConstant                 = "table"
	tableFlagUsageConstant                = "Dependency table to rewrite (repeatable, dotted keys allowed)"
	manifestNameFlagNameConstant          = "manifest-name"
	manifestNameFlagUsageConstant         = "Manifest file name to search for"
	conflictingOutputFlagsMessageConstant = "--write and --dry-run cannot be combined"
	rewriteFlagErrorTemplateConstant      = "%w: %s"
	rewriteFlagReadErrorTemplateConstant  = "unable to read --%s: %w"
)

// RewriteCommandBuilder assembles the rewrite command.
type RewriteCommandBuilder struct {
	LoggerProvider        LoggerProvider
	FileSystem            shared.FileSystem
	ConfigurationProvider func() RewriteConfiguration
}

// Build constructs the rewrite command.
func (builder *RewriteCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           rewriteUseConstant,
		Short:         rewriteShortDescriptionConstant,
		Long:          rewriteLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          builder.run,
	}

	flagSet := command.Flags()
	flagSet.String(newRepositoryFlagNameConstant, "", newRepositoryFlagUsageConstant)
	flagSet.String(gitRepositoryFlagNameConstant, "", gitRepositoryFlagUsageConstant)
	flagSet.String(revisionFlagNameConstant, "", revisionFlagUsageConstant)
	flagSet.String(branchFlagNameConstant, "", branchFlagUsageConstant)
	flagSet.String(manifestNameFlagNameConstant, "", manifestNameFlagUsageConstant)
	flagSet.Bool(ignoreTargetFlagNameConstant, false, ignoreTargetFlagUsageConstant)
	flagSet.Bool(writeFlagNameConstant, false, writeFlagUsageConstant)
	flagSet.Bool(dryRunFlagNameConstant, false, dryRunFlagUsageConstant)
	flagSet.Bool(continueOnErrorFlagNameConstant, false, continueOnErrorFlagUsageConstant)
	flagSet.StringArray(tableFlagNameConstant, nil, tableFlagUsageConstant)

	return command, nil
}

func (builder *RewriteCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration, configurationError := builder.applyFlags(command, builder.resolveConfiguration())
	if configurationError != nil {
		return configurationError
	}

	options := rewrite.Options{
		Roots:            determineRoots(arguments, configuration.Roots),
		ManifestName:     configuration.ManifestName,
		OutputDirectory:  configuration.OutputDirectory,
		DependencyTables: configuration.DependencyTables,
		Mutation: shared.MutationConfiguration{
			IgnoreTarget:  configuration.IgnoreTarget,
			GitRepository: configuration.GitRepository,
			NewLocation:   configuration.NewRepository,
			Revision:      configuration.Revision,
			Branch:        configuration.Branch,
		},
		OutputMode:    configuration.OutputMode,
		FailurePolicy: configuration.FailurePolicy,
	}

	service := rewrite.NewService(rewrite.Dependencies{
		FileSystem: builder.FileSystem,
		Output:     command.OutOrStdout(),
		Logger:     resolveLogger(builder.LoggerProvider),
	})

	_, executionError := service.Execute(command.Context(), options)
	return executionError
}

// applyFlags overlays explicitly provided flags on top of the configuration.
func (builder *RewriteCommandBuilder) applyFlags(command *cobra.Command, configuration RewriteConfiguration) (RewriteConfiguration, error) {
	flagSet := command.Flags()

	stringTargets := []struct {
		flagName string
		target   *string
	}{
		{flagName: newRepositoryFlagNameConstant, target: &configuration.NewRepository},
		{flagName: gitRepositoryFlagNameConstant, target: &configuration.GitRepository},
		{flagName: revisionFlagNameConstant, target: &configuration.Revision},
		{flagName: branchFlagNameConstant, target: &configuration.Branch},
		{flagName: manifestNameFlagNameConstant, target: &configuration.ManifestName},
	}
	for _, stringTarget := range stringTargets {
		if !flagSet.Changed(stringTarget.flagName) {
			continue
		}
		value, readError := flagSet.GetString(stringTarget.flagName)
		if readError != nil {
			return RewriteConfiguration{}, fmt.Errorf(rewriteFlagReadErrorTemplateConstant, stringTarget.flagName, readError)
		}
		*stringTarget.target = value
	}

	if flagSet.Changed(ignoreTargetFlagNameConstant) {
		ignoreTarget, readError := flagSet.GetBool(ignoreTargetFlagNameConstant)
		if readError != nil {
			return RewriteConfiguration{}, fmt.Errorf(rewriteFlagReadErrorTemplateConstant, ignoreTargetFlagNameConstant, readError)
		}
		configuration.IgnoreTarget = ignoreTarget
	}

	if flagSet.Changed(continueOnErrorFlagNameConstant) {
		continueOnError, readError := flagSet.GetBool(continueOnErrorFlagNameConstant)
		if readError != nil {
			return RewriteConfiguration{}, fmt.Errorf(rewriteFlagReadErrorTemplateConstant, continueOnErrorFlagNameConstant, readError)
		}
		configuration.FailurePolicy = shared.FailurePolicyFromBool(continueOnError)
	}

	if flagSet.Changed(tableFlagNameConstant) {
		tables, readError := flagSet.GetStringArray(tableFlagNameConstant)
		if readError != nil {
			return RewriteConfiguration{}, fmt.Errorf(rewriteFlagReadErrorTemplateConstant, tableFlagNameConstant, readError)
		}
		configuration.DependencyTables = tables
	}

	writeRequested, writeError := flagSet.GetBool(writeFlagNameConstant)
	dryRunRequested, dryRunError := flagSet.GetBool(dryRunFlagNameConstant)
	if flagError := errors.Join(writeError, dryRunError); flagError != nil {
		return RewriteConfiguration{}, flagError
	}
	switch {
	case writeRequested && dryRunRequested:
		return RewriteConfiguration{}, fmt.Errorf(rewriteFlagErrorTemplateConstant, shared.ErrConfiguration, conflictingOutputFlagsMessageConstant)
	case writeRequested:
		configuration.OutputMode = shared.OutputModeWrite
	case dryRunRequested:
		configuration.OutputMode = shared.OutputModePlan
	}

	return configuration.sanitize(), nil
}

func (builder *RewriteCommandBuilder) resolveConfiguration() RewriteConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultToolsConfiguration().Rewrite
	}

	provided := builder.ConfigurationProvider()
	return provided.sanitize()
}
