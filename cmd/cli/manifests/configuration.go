package manifests

import (
	"strings"

	"github.com/temirov/gitdeps/internal/manifests/shared"
)

const (
	rewriteConfigurationKeyConstant         = "rewrite"
	configurationRootsKeyConstant           = "roots"
	configurationManifestNameKeyConstant    = "manifest_name"
	configurationOutputDirectoryKeyConstant = "output_directory"
	configurationIgnoreTargetKeyConstant    = "ignore_target"
	configurationTablesKeyConstant          = "dependency_tables"
	configurationGitRepositoryKeyConstant   = "git_repo"
	configurationNewRepositoryKeyConstant   = "new_repo"
	configurationRevisionKeyConstant        = "rev"
	configurationBranchKeyConstant          = "branch"
	configurationOutputModeKeyConstant      = "output_mode"
	configurationFailurePolicyKeyConstant   = "failure_policy"
	configurationKeySeparatorConstant       = "."
	defaultWorkspaceRootConstant            = "."
)

// ToolsConfiguration captures manifest command configuration sections.
type ToolsConfiguration struct {
	Rewrite RewriteConfiguration `mapstructure:"rewrite"`
}

// RewriteConfiguration describes configuration values for the rewrite command.
type RewriteConfiguration struct {
	Roots            []string             `mapstructure:"roots"`
	ManifestName     string               `mapstructure:"manifest_name"`
	OutputDirectory  string               `mapstructure:"output_directory"`
	IgnoreTarget     bool                 `mapstructure:"ignore_target"`
	DependencyTables []string             `mapstructure:"dependency_tables"`
	GitRepository    string               `mapstructure:"git_repo"`
	NewRepository    string               `mapstructure:"new_repo"`
	Revision         string               `mapstructure:"rev"`
	Branch           string               `mapstructure:"branch"`
	OutputMode       shared.OutputMode    `mapstructure:"output_mode"`
	FailurePolicy    shared.FailurePolicy `mapstructure:"failure_policy"`
}

// DefaultToolsConfiguration returns baseline configuration values for manifest commands.
func DefaultToolsConfiguration() ToolsConfiguration {
	return ToolsConfiguration{
		Rewrite: RewriteConfiguration{
			Roots:            []string{defaultWorkspaceRootConstant},
			ManifestName:     shared.DefaultManifestNameConstant,
			OutputDirectory:  shared.DefaultOutputDirectoryConstant,
			IgnoreTarget:     false,
			DependencyTables: shared.DefaultDependencyTables(),
			OutputMode:       shared.OutputModePrint,
			FailurePolicy:    shared.FailurePolicyAbort,
		},
	}
}

// DefaultConfigurationValues produces Viper defaults for manifest commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultToolsConfiguration().Rewrite
	prefix := rootKey + configurationKeySeparatorConstant + rewriteConfigurationKeyConstant + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRootsKeyConstant:           defaults.Roots,
		prefix + configurationManifestNameKeyConstant:    defaults.ManifestName,
		prefix + configurationOutputDirectoryKeyConstant: defaults.OutputDirectory,
		prefix + configurationIgnoreTargetKeyConstant:    defaults.IgnoreTarget,
		prefix + configurationTablesKeyConstant:          defaults.DependencyTables,
		prefix + configurationGitRepositoryKeyConstant:   defaults.GitRepository,
		prefix + configurationNewRepositoryKeyConstant:   defaults.NewRepository,
		prefix + configurationRevisionKeyConstant:        defaults.Revision,
		prefix + configurationBranchKeyConstant:          defaults.Branch,
		prefix + configurationOutputModeKeyConstant:      string(defaults.OutputMode),
		prefix + configurationFailurePolicyKeyConstant:   string(defaults.FailurePolicy),
	}
}

// sanitize normalizes rewrite configuration values.
func (configuration RewriteConfiguration) sanitize() RewriteConfiguration {
	defaults := DefaultToolsConfiguration().Rewrite
	sanitized := configuration

	sanitized.Roots = trimRoots(configuration.Roots)
	if len(sanitized.Roots) == 0 {
		sanitized.Roots = defaults.Roots
	}
	sanitized.ManifestName = strings.TrimSpace(configuration.ManifestName)
	if len(sanitized.ManifestName) == 0 {
		sanitized.ManifestName = defaults.ManifestName
	}
	sanitized.OutputDirectory = strings.TrimSpace(configuration.OutputDirectory)
	if len(sanitized.OutputDirectory) == 0 {
		sanitized.OutputDirectory = defaults.OutputDirectory
	}
	sanitized.DependencyTables = trimValues(configuration.DependencyTables)
	if len(sanitized.DependencyTables) == 0 {
		sanitized.DependencyTables = defaults.DependencyTables
	}
	sanitized.GitRepository = strings.TrimSpace(configuration.GitRepository)
	sanitized.NewRepository = strings.TrimSpace(configuration.NewRepository)
	sanitized.Revision = strings.TrimSpace(configuration.Revision)
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	if len(sanitized.OutputMode) == 0 {
		sanitized.OutputMode = defaults.OutputMode
	}
	if len(sanitized.FailurePolicy) == 0 {
		sanitized.FailurePolicy = defaults.FailurePolicy
	}
	return sanitized
}
