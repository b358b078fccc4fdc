// Package orchestrator drives one invocation: it resolves builds, groups and
// testcases, writes the compile and simulate scripts and runs them.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/google/uuid"

	"simrun/internal/cfgfile"
	"simrun/internal/config"
	"simrun/internal/ctxlog"
	"simrun/internal/discovery"
	"simrun/internal/domain"
	"simrun/internal/execution"
	"simrun/internal/parser"
	"simrun/internal/script"
	"simrun/internal/simulator"
)

// Run modes recorded in reports.
const (
	ModeTest  = "test"
	ModeGroup = "group"
)

// ProgressFactory creates a progress reporter for a number of instances.
type ProgressFactory func(total int) execution.Progress

// Session holds everything one invocation reads: the runtime config, the
// simulator profile, the parsed build and group files and the testcase
// catalog. It is built once and read-only afterwards.
type Session struct {
	cfg        *config.Config
	profile    *simulator.Profile
	builds     *cfgfile.BuildSet
	groups     *cfgfile.GroupSet
	catalog    *discovery.Catalog
	runner     execution.CommandRunner
	classifier parser.Parser
	progress   ProgressFactory
	rand       *rand.Rand
	now        func() time.Time

	state   State
	failure string
}

// Option configures a Session.
type Option func(*Session)

// WithRunner replaces the shell runner.
func WithRunner(r execution.CommandRunner) Option {
	return func(s *Session) { s.runner = r }
}

// WithProgress sets the progress reporter used for unattended simulations.
func WithProgress(f ProgressFactory) Option {
	return func(s *Session) { s.progress = f }
}

// WithRand sets the source of random seeds.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rand = r }
}

// WithClock sets the clock used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession loads the simulator profile and the build file. The group file
// is loaded on first use.
func NewSession(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	s := &Session{
		cfg:    cfg,
		runner: execution.NewRunner(os.Stdout, os.Stderr),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.transition(ctx, StateLoading)

	profile, err := simulator.Lookup(cfg.Simulator)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	s.profile = profile
	s.classifier = parser.NewLogClassifier(profile.Patterns)

	path, err := cfg.BuildFilePath()
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	doc, err := cfgfile.Load(path)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if s.builds, err = cfgfile.NewBuildSet(doc); err != nil {
		return nil, s.fail(ctx, err)
	}
	ctxlog.FromContext(ctx).Debug("Loaded build file", "path", path, "builds", s.builds.Names())
	return s, nil
}

// Profile returns the active simulator profile.
func (s *Session) Profile() *simulator.Profile { return s.profile }

// Builds returns the parsed build file.
func (s *Session) Builds() *cfgfile.BuildSet { return s.builds }

// Groups returns the parsed group file, loading it on first use.
func (s *Session) Groups(ctx context.Context) (*cfgfile.GroupSet, error) {
	if s.groups != nil {
		return s.groups, nil
	}
	path, err := s.cfg.GroupFilePath()
	if err != nil {
		return nil, err
	}
	doc, err := cfgfile.Load(path)
	if err != nil {
		return nil, err
	}
	groups, err := cfgfile.NewGroupSet(doc)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Loaded group file", "path", path, "groups", groups.Names())
	s.groups = groups
	return groups, nil
}

// TestRoot returns the testcase root of a build: its testDir, else the
// configured test directory.
func (s *Session) TestRoot(build cfgfile.ResolvedBuildOptions) string {
	if build.TestDir != "" {
		return build.TestDir
	}
	return s.cfg.TestDir
}

// Catalog returns the testcase catalog rooted at root, rescanning only when
// the root changes.
func (s *Session) Catalog(ctx context.Context, root string) (*discovery.Catalog, error) {
	if s.catalog == nil {
		c, err := discovery.NewCatalog(root)
		if err != nil {
			return nil, err
		}
		s.catalog = c
	} else if s.catalog.Root() != absPath(os.ExpandEnv(root)) {
		if err := s.catalog.SetRoot(root); err != nil {
			return nil, err
		}
	} else {
		return s.catalog, nil
	}
	for _, d := range s.catalog.Duplicates() {
		kept, _ := s.catalog.Dir(d.Name)
		ctxlog.FromContext(ctx).Warn("Duplicate testcase ignored", "test", d.Name, "dir", d.Dir, "kept", kept)
	}
	return s.catalog, nil
}

// Run dispatches to RunGroup or RunTest according to the flags.
func (s *Session) Run(ctx context.Context) (*domain.RunReport, error) {
	f := s.cfg.Flags
	if f.Group != "" {
		return s.RunGroup(ctx, f.Group, s.BaseOptions())
	}
	if f.Test == "" {
		return nil, fmt.Errorf("nothing to run: give a test or a group")
	}
	return s.RunTest(ctx, s.BaseOptions())
}

// BaseOptions returns the run options given on the command line.
func (s *Session) BaseOptions() domain.RunOptions {
	f := s.cfg.Flags
	return domain.RunOptions{
		Test:           f.Test,
		Build:          f.Build,
		Seed:           f.Seed,
		SeedGiven:      f.SeedGiven,
		Repeat:         f.Repeat,
		Wave:           f.Wave,
		Coverage:       f.Coverage,
		DebugIDs:       splitList(f.DebugIDs),
		CompileOptions: append([]string(nil), f.CompileOptions...),
		SimOptions:     append([]string(nil), f.SimOptions...),
		Pinned: domain.Pinned{
			Seed:     f.SeedGiven,
			Repeat:   f.RepeatGiven,
			Wave:     f.WaveGiven,
			Coverage: f.CoverageGiven,
		},
	}
}

func (s *Session) lsf() script.LSF {
	return script.LSF{Enabled: s.cfg.Flags.LSF, Options: s.cfg.Flags.LSFOptions}
}

func (s *Session) newReport(mode, target, build string) *domain.RunReport {
	return &domain.RunReport{Meta: domain.RunMeta{
		RunID:     uuid.New().String(),
		Mode:      mode,
		Target:    target,
		Build:     build,
		Simulator: s.profile.Name(),
		Timestamp: s.now().Format(time.RFC3339),
	}}
}

func (s *Session) finish(ctx context.Context, report *domain.RunReport, started time.Time) *domain.RunReport {
	d := s.now().Sub(started)
	report.Meta.Duration = d.Round(time.Millisecond).String()
	report.Meta.DurationSeconds = d.Seconds()
	report.Tally()
	s.transition(ctx, StateSucceeded)
	return report
}
