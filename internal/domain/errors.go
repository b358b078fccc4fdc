package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfigParse        = errors.New("config parse error")
	ErrBuildUnknown       = errors.New("unknown build")
	ErrGroupUnknown       = errors.New("unknown group")
	ErrTestcaseUnknown    = errors.New("unknown testcase")
	ErrBuildInconsistency = errors.New("build inconsistency")
	ErrGroupCycle         = errors.New("group include cycle")
	ErrCompile            = errors.New("compile failed")
	ErrUnsupportedOption  = errors.New("unsupported option")
	ErrInterrupted        = errors.New("interrupted")
)

// ParseError reports a malformed configuration document.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Msg)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error { return ErrConfigParse }

// Catalog kinds used by UnknownNameError.
const (
	KindBuild = "build"
	KindGroup = "group"
	KindTest  = "test"
)

// UnknownNameError is returned when a build, group or test name does not
// exist. Available holds the valid names so the caller can print them.
type UnknownNameError struct {
	Kind      string
	Name      string
	Available []string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("%s: %s is unknown", e.Kind, e.Name)
}

func (e *UnknownNameError) Unwrap() error {
	switch e.Kind {
	case KindBuild:
		return ErrBuildUnknown
	case KindGroup:
		return ErrGroupUnknown
	}
	return ErrTestcaseUnknown
}

// BuildInconsistencyError reports a group whose tests do not agree on one build.
type BuildInconsistencyError struct {
	Group  string
	Builds []string
}

func (e *BuildInconsistencyError) Error() string {
	if len(e.Builds) == 0 {
		return fmt.Sprintf("group %s declares no build", e.Group)
	}
	return fmt.Sprintf("group %s and its included groups must use the same build, got [%s]",
		e.Group, strings.Join(e.Builds, ", "))
}

func (e *BuildInconsistencyError) Unwrap() error { return ErrBuildInconsistency }

// GroupCycleError reports an include chain that reaches its own start.
type GroupCycleError struct {
	Path []string
}

func (e *GroupCycleError) Error() string {
	return "group include cycle: " + strings.Join(e.Path, " -> ")
}

func (e *GroupCycleError) Unwrap() error { return ErrGroupCycle }

// CompileError is returned when the compile command chain fails.
type CompileError struct {
	LogPath string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile failed, see %s", e.LogPath)
}

func (e *CompileError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCompile}
	}
	return []error{ErrCompile, e.Err}
}
