// Package deployerr defines the sum-typed error kinds the deploy engine
// raises, and the exit-code mapping the CLI front end uses to translate
// them to process exit status.
package deployerr

import "fmt"

// Kind identifies which class of failure an error represents.
type Kind int

const (
	// KindBadFormat means the binary-format detector could not classify
	// the subject executable. Fatal.
	KindBadFormat Kind = iota
	// KindMissingTool means a required external helper is not on PATH
	// for the selected target format. Fatal.
	KindMissingTool
	// KindMissingToolkitLibrary means a dependency reference whose name
	// matches the toolkit naming heuristic could not be resolved. Fatal.
	KindMissingToolkitLibrary
	// KindStagingIO means a file copy or directory create failed.
	// Non-fatal: the offending file is skipped.
	KindStagingIO
	// KindLinkEditWarning means an external link-editor invocation
	// returned nonzero. Non-fatal.
	KindLinkEditWarning
	// KindParserEmpty means a metadata-parsing helper returned nonzero
	// exit status; the subject is treated as a leaf node. Never
	// surfaced as an error value — recorded here only so callers that
	// want to log it have a name for it.
	KindParserEmpty
)

// Error wraps an underlying cause with a Kind so the orchestrator can
// decide whether to abort or to log and continue.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around an existing cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// Fatal reports whether errors of this kind should abort the run.
func (k Kind) Fatal() bool {
	switch k {
	case KindBadFormat, KindMissingTool, KindMissingToolkitLibrary:
		return true
	default:
		return false
	}
}

// ExitCode maps a fatal Kind to the process exit code from spec §6.
// Non-fatal kinds never reach this — they are logged and the run
// continues — so ExitCode is only meaningful for Fatal kinds.
func (k Kind) ExitCode() int {
	switch k {
	case KindBadFormat, KindMissingTool:
		return 2
	case KindMissingToolkitLibrary:
		return 1
	default:
		return 1
	}
}

// As reports whether err itself is an *Error and returns it, with the
// (value, ok) shape of errors.As; wrapped errors are not unwrapped.
func As(err error) (*Error, bool) {
	de, ok := err.(*Error)
	return de, ok
}
