package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"simrun/internal/ctxlog"
	"simrun/internal/domain"
	"simrun/internal/execution"
	"simrun/internal/script"
)

// execute runs the compile chain in buildDir unless simulation only was
// requested, then the simulate instances. A failing compile aborts with a
// CompileError pointing at compile.log.
func (s *Session) execute(ctx context.Context, report *domain.RunReport, buildDir, target string, instances []execution.Instance, quiet bool) error {
	f := s.cfg.Flags
	logger := ctxlog.FromContext(ctx)

	if !f.SimOnly {
		s.transition(ctx, StateExecutingCompile)
		cmd := script.Command(script.PhaseCompile, target, s.lsf())
		logger.Info("Compiling", "dir", buildDir)
		if err := s.runner.Run(ctx, cmd, buildDir, s.cfg.CompileTimeout); err != nil {
			if execution.IsStepFailure(err) {
				return &domain.CompileError{LogPath: filepath.Join(buildDir, script.CompileLog), Err: err}
			}
			return err
		}
	}
	if len(instances) == 0 {
		return nil
	}

	s.transition(ctx, StateExecutingSimulate)
	exec := execution.NewExecutor(s.runner, s.classifier, s.cfg.SimTimeout)
	exec.SetFailFast(f.FailFast)
	if quiet && s.progress != nil {
		exec.SetProgress(s.progress(len(instances)))
	}
	results, _, err := exec.Execute(ctx, instances)
	report.Results = results
	if err != nil {
		return err
	}
	s.transition(ctx, StateClassifying)
	return nil
}

// recreate makes dir, removing it first when clean is set.
func recreate(dir string, clean bool) error {
	if clean {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

func prefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "__" + name
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
