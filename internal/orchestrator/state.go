package orchestrator

import (
	"context"
	"errors"

	"simrun/internal/ctxlog"
	"simrun/internal/domain"
)

// State is a step of an invocation.
type State string

const (
	StateLoading            State = "Loading"
	StateResolving          State = "Resolving"
	StateCheckingBuild      State = "CheckingBuild"
	StatePreparing          State = "Preparing"
	StateGeneratingCompile  State = "GeneratingCompile"
	StateGeneratingSimulate State = "GeneratingSimulate"
	StateExecutingCompile   State = "ExecutingCompile"
	StateExecutingSimulate  State = "ExecutingSimulate"
	StateClassifying        State = "Classifying"
	StateSucceeded          State = "Succeeded"
	StateFailed             State = "Failed"
)

func (s *Session) transition(ctx context.Context, to State) {
	ctxlog.FromContext(ctx).Debug("State transition", "from", s.state, "to", to)
	s.state = to
}

// fail moves the session to StateFailed and returns err unchanged.
func (s *Session) fail(ctx context.Context, err error) error {
	s.failure = failureKind(err)
	ctxlog.FromContext(ctx).Debug("State transition", "from", s.state, "to", StateFailed, "kind", s.failure)
	s.state = StateFailed
	return err
}

// State returns the current state and, in StateFailed, the failure kind.
func (s *Session) State() (State, string) { return s.state, s.failure }

func failureKind(err error) string {
	kinds := []struct {
		target error
		name   string
	}{
		{domain.ErrConfigParse, "ConfigParse"},
		{domain.ErrBuildUnknown, "BuildUnknown"},
		{domain.ErrGroupUnknown, "GroupUnknown"},
		{domain.ErrTestcaseUnknown, "TestcaseUnknown"},
		{domain.ErrBuildInconsistency, "BuildInconsistency"},
		{domain.ErrGroupCycle, "GroupCycle"},
		{domain.ErrCompile, "Compile"},
		{domain.ErrUnsupportedOption, "UnsupportedOption"},
		{domain.ErrInterrupted, "Interrupted"},
	}
	for _, k := range kinds {
		if errors.Is(err, k.target) {
			return k.name
		}
	}
	return "OS"
}
