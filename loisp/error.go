package loisp

import (
	"fmt"

	"github.com/HatsuSixty/loisp/parser/token"
)

// ErrKind classifies compile diagnostics.
type ErrKind uint

// Possible ErrKind values.
const (
	ErrLex ErrKind = iota
	ErrParse
	ErrResolve
	ErrMacroRecursion
	ErrType
	ErrInclude
	ErrToolchain
	ErrIO

	numErrKinds
)

var errKindStrings = [numErrKinds]string{
	ErrLex:            "lex error",
	ErrParse:          "parse error",
	ErrResolve:        "resolve error",
	ErrMacroRecursion: "macro recursion",
	ErrType:           "type error",
	ErrInclude:        "include error",
	ErrToolchain:      "toolchain error",
	ErrIO:             "io error",
}

func (k ErrKind) String() string {
	if k >= numErrKinds {
		return "error"
	}
	return errKindStrings[k]
}

// Error is a compiler diagnostic carrying the source location it points at.
type Error struct {
	Kind ErrKind
	Loc  *token.Location
	Msg  string
}

func (e *Error) Error() string {
	if e.Loc == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Msg)
}

// Errorf returns a diagnostic of the given kind pointing at loc.
func Errorf(kind ErrKind, loc *token.Location, format string, v ...interface{}) *Error {
	return &Error{Kind: kind, Loc: loc, Msg: fmt.Sprintf(format, v...)}
}

// ExitCode maps an error to the process exit status: 0 for nil, 2 for
// toolchain and output failures, 1 for compile diagnostics.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if lerr, ok := err.(*Error); ok {
		switch lerr.Kind {
		case ErrToolchain, ErrIO:
			return 2
		}
	}
	return 1
}
