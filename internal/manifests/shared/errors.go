package shared

import (
	"errors"
	"fmt"
)

const (
	ioErrorTemplateConstant                 = "unable to read manifest %s: %v"
	parseErrorPositionTemplateConstant      = "invalid manifest %s (line %d, column %d): %v"
	parseErrorTemplateConstant              = "invalid manifest %s: %v"
	notFoundEntryTemplateConstant           = "not found (%s): table %s entry %s key %s"
	notFoundTableTemplateConstant           = "not found (%s): table %s"
	notFoundEntryWithoutKeyTemplateConstant = "not found (%s): table %s entry %s"
	mutationErrorTemplateConstant           = "unable to mutate %s.%s: %v"
	ioErrorSentinelMessageConstant          = "manifest io error"
	parseErrorSentinelMessageConstant       = "manifest parse error"
	notFoundErrorSentinelMessageConstant    = "manifest element not found"
	mutationErrorSentinelMessageConstant    = "manifest mutation error"
	configurationSentinelMessageConstant    = "invalid mutation configuration"
)

// Sentinel errors matched with errors.Is against the typed errors below.
var (
	ErrIO            = errors.New(ioErrorSentinelMessageConstant)
	ErrParse         = errors.New(parseErrorSentinelMessageConstant)
	ErrNotFound      = errors.New(notFoundErrorSentinelMessageConstant)
	ErrMutation      = errors.New(mutationErrorSentinelMessageConstant)
	ErrConfiguration = errors.New(configurationSentinelMessageConstant)
)

// IOError reports a manifest that could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

// Error describes the failed read.
func (ioError *IOError) Error() string {
	return fmt.Sprintf(ioErrorTemplateConstant, ioError.Path, ioError.Err)
}

// Unwrap exposes the underlying filesystem error.
func (ioError *IOError) Unwrap() error { return ioError.Err }

// Is matches ErrIO.
func (ioError *IOError) Is(target error) bool { return target == ErrIO }

// ParseError reports manifest content that violates the TOML grammar.
// Line and Column are one-based and zero when unknown.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

// Error describes the grammar violation with its position when known.
func (parseError *ParseError) Error() string {
	if parseError.Line > 0 {
		return fmt.Sprintf(parseErrorPositionTemplateConstant, parseError.Path, parseError.Line, parseError.Column, parseError.Err)
	}
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Path, parseError.Err)
}

// Unwrap exposes the parser error.
func (parseError *ParseError) Unwrap() error { return parseError.Err }

// Is matches ErrParse.
func (parseError *ParseError) Is(target error) bool { return target == ErrParse }

// NotFoundReason identifies which assumption about the document failed.
type NotFoundReason string

// Not-found reasons.
const (
	NotFoundReasonMissingTable   NotFoundReason = "missing-table"
	NotFoundReasonWrongValueKind NotFoundReason = "wrong-value-kind"
	NotFoundReasonMissingKey     NotFoundReason = "missing-key"
)

// NotFoundError reports a table, value shape, or key absent where it was expected.
type NotFoundError struct {
	Reason NotFoundReason
	Table  string
	Entry  string
	Key    string
}

// Error describes the missing element.
func (notFoundError *NotFoundError) Error() string {
	switch {
	case len(notFoundError.Key) > 0:
		return fmt.Sprintf(notFoundEntryTemplateConstant, notFoundError.Reason, notFoundError.Table, notFoundError.Entry, notFoundError.Key)
	case len(notFoundError.Entry) > 0:
		return fmt.Sprintf(notFoundEntryWithoutKeyTemplateConstant, notFoundError.Reason, notFoundError.Table, notFoundError.Entry)
	default:
		return fmt.Sprintf(notFoundTableTemplateConstant, notFoundError.Reason, notFoundError.Table)
	}
}

// Is matches ErrNotFound.
func (notFoundError *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// MutationError reports a located dependency that could not be edited. It
// signals a broken invariant between location and mutation.
type MutationError struct {
	Table string
	Entry string
	Err   error
}

// Error describes the failed mutation.
func (mutationError *MutationError) Error() string {
	return fmt.Sprintf(mutationErrorTemplateConstant, mutationError.Table, mutationError.Entry, mutationError.Err)
}

// Unwrap exposes the cause.
func (mutationError *MutationError) Unwrap() error { return mutationError.Err }

// Is matches ErrMutation.
func (mutationError *MutationError) Is(target error) bool { return target == ErrMutation }
