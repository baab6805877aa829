package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant            = "~"
	homeShortcutSlashPrefixConstant = "~/"
)

var homeShortcutNativePrefix = homeShortcutConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander resolves "~" prefixed workspace roots against the user's home
// directory. The home directory is looked up at most once.
type HomeExpander struct {
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	lookupGuard           sync.Once
}

// NewHomeExpander constructs a HomeExpander using the operating system lookup.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{homeDirectoryProvider: provider}
}

// Expand rewrites "~" and "~/rest" into paths under the home directory. Other
// paths, including "~user" forms, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	if expander == nil || !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return candidatePath
	}

	remainder, expandable := homeRelativeRemainder(candidatePath)
	if !expandable {
		return candidatePath
	}

	homeDirectory := expander.lookupHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidatePath
	}
	if len(remainder) == 0 {
		return homeDirectory
	}
	return filepath.Join(homeDirectory, remainder)
}

// ExpandAll expands every path and returns a new slice.
func (expander *HomeExpander) ExpandAll(candidatePaths []string) []string {
	expanded := make([]string, 0, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		expanded = append(expanded, expander.Expand(candidatePath))
	}
	return expanded
}

func homeRelativeRemainder(candidatePath string) (string, bool) {
	switch {
	case candidatePath == homeShortcutConstant:
		return "", true
	case strings.HasPrefix(candidatePath, homeShortcutSlashPrefixConstant):
		return strings.TrimPrefix(candidatePath, homeShortcutSlashPrefixConstant), true
	case strings.HasPrefix(candidatePath, homeShortcutNativePrefix):
		return strings.TrimPrefix(candidatePath, homeShortcutNativePrefix), true
	default:
		return "", false
	}
}

func (expander *HomeExpander) lookupHomeDirectory() string {
	expander.lookupGuard.Do(func() {
		homeDirectory, lookupError := expander.homeDirectoryProvider()
		if lookupError != nil {
			return
		}
		expander.homeDirectory = homeDirectory
	})
	return expander.homeDirectory
}
