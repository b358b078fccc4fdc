package execution

import (
	"context"
	"path/filepath"
	"time"

	"simrun/internal/ctxlog"
	"simrun/internal/domain"
	"simrun/internal/parser"
	"simrun/internal/script"
)

// Instance is one (test, seed) simulation ready to run.
type Instance struct {
	Bucket  string
	Test    string
	Seed    uint32
	Dir     string
	Command string
}

// Progress receives the running tally after each instance.
type Progress interface {
	Update(done, passed, failed int)
	Finish()
}

// Executor runs simulation instances one after the other and classifies their
// logs.
type Executor struct {
	runner     CommandRunner
	classifier parser.Parser
	timeout    time.Duration
	progress   Progress
	failFast   bool
}

// NewExecutor creates a new Executor
func NewExecutor(runner CommandRunner, classifier parser.Parser, timeout time.Duration) *Executor {
	return &Executor{runner: runner, classifier: classifier, timeout: timeout}
}

// SetProgress sets the progress reporter
func (e *Executor) SetProgress(p Progress) {
	e.progress = p
}

// SetFailFast stops execution after the first failing instance.
func (e *Executor) SetFailFast(v bool) {
	e.failFast = v
}

// Execute runs the instances in order. A failing simulate command is
// recorded on its result and execution continues; errors that prevent a
// command from running at all, and interruption, abort the run and are
// returned together with the results collected so far.
func (e *Executor) Execute(ctx context.Context, instances []Instance) ([]domain.InstanceResult, time.Duration, error) {
	if len(instances) == 0 {
		return nil, 0, nil
	}
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	defer func() {
		if e.progress != nil {
			e.progress.Finish()
		}
	}()

	results := make([]domain.InstanceResult, 0, len(instances))
	passed, failed := 0, 0
	for _, inst := range instances {
		res, err := e.runOne(ctx, inst)
		if err != nil {
			return results, time.Since(start), err
		}
		results = append(results, res)
		if res.Failed() {
			failed++
		} else {
			passed++
		}
		logger.Debug("Instance finished", "test", inst.Test, "seed", inst.Seed, "status", res.Outcome.Status)
		if e.progress != nil {
			e.progress.Update(len(results), passed, failed)
		}
		if e.failFast && res.Failed() {
			logger.Info("Stopping after first failure", "test", inst.Test, "seed", inst.Seed)
			break
		}
	}
	return results, time.Since(start), nil
}

func (e *Executor) runOne(ctx context.Context, inst Instance) (domain.InstanceResult, error) {
	res := domain.InstanceResult{Bucket: inst.Bucket, Test: inst.Test, Seed: inst.Seed, Dir: inst.Dir}

	started := time.Now()
	runErr := e.runner.Run(ctx, inst.Command, inst.Dir, e.timeout)
	res.Duration = time.Since(started)
	switch {
	case runErr == nil:
	case IsStepFailure(runErr):
		res.Error = runErr.Error()
	default:
		return res, runErr
	}

	logPath := filepath.Join(inst.Dir, script.SimLog)
	outcome, err := e.classifier.ClassifyFile(logPath)
	res.Outcome = outcome
	if err != nil && res.Error == "" {
		res.Error = err.Error()
	}
	return res, nil
}
