package manifests

import (
	"strings"

	"go.uber.org/zap"

	pathutils "github.com/temirov/gitdeps/internal/utils/path"
)

var workspaceHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func determineRoots(arguments []string, configuredRoots []string) []string {
	roots := trimRoots(arguments)
	if len(roots) > 0 {
		return roots
	}

	configured := trimRoots(configuredRoots)
	if len(configured) > 0 {
		return configured
	}

	return []string{defaultWorkspaceRootConstant}
}

func trimRoots(raw []string) []string {
	return workspaceHomeDirectoryExpander.ExpandAll(trimValues(raw))
}

func trimValues(raw []string) []string {
	trimmed := make([]string, 0, len(raw))
	for _, value := range raw {
		candidate := strings.TrimSpace(value)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	return trimmed
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
