package orchestrator

import (
	"context"
	"path/filepath"

	"simrun/internal/ctxlog"
	"simrun/internal/domain"
	"simrun/internal/execution"
	"simrun/internal/group"
	"simrun/internal/script"
	"simrun/internal/simulator"
)

type groupEntry struct {
	bucket string
	opts   domain.RunOptions
	knobs  simulator.Flags
}

// RunGroup expands a group, compiles its build once in
// <work>/<prefix__group>/<build> and simulates every test of every bucket
// in <work>/<prefix__group>/<bucket>__<test>__<seed>. Inline test arguments
// override base for their test only.
func (s *Session) RunGroup(ctx context.Context, name string, base domain.RunOptions) (*domain.RunReport, error) {
	started := s.now()
	logger := ctxlog.FromContext(ctx)
	f := s.cfg.Flags

	s.transition(ctx, StateResolving)
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	resolver := group.NewResolver(groups, s.cfg.TestDir)
	res, err := resolver.Expand(ctx, name)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	build, err := s.builds.Resolve(res.Build)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	// folder discovery follows the build's test root
	testRoot := s.TestRoot(build)
	if err := resolver.DiscoverFolders(res, testRoot); err != nil {
		return nil, s.fail(ctx, err)
	}

	base = base.Clone()
	base.Build = res.Build
	base.Test = ""
	knobs, err := s.profile.Translate(base)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	var entries []groupEntry
	for _, b := range res.Buckets {
		for _, t := range b.Tests {
			opts, err := group.ParseArgs(base, t.Args)
			if err != nil {
				return nil, s.fail(ctx, err)
			}
			opts.Test = t.Name
			k, err := s.profile.Translate(opts)
			if err != nil {
				return nil, s.fail(ctx, err)
			}
			entries = append(entries, groupEntry{bucket: b.Name, opts: opts, knobs: k})
		}
	}

	s.transition(ctx, StateCheckingBuild)
	catalog, err := s.Catalog(ctx, testRoot)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	for _, e := range entries {
		if !catalog.Has(e.opts.Test) {
			return nil, s.fail(ctx, &domain.UnknownNameError{Kind: domain.KindTest, Name: e.opts.Test, Available: catalog.Names()})
		}
	}
	if !s.profile.Available() {
		logger.Warn("Simulator not found", "simulator", s.profile.Name(), "env", s.profile.PathEnv())
	}
	logger.Info("Resolved group", "group", res.Group, "build", res.Build, "tests", res.Count())

	s.transition(ctx, StatePreparing)
	groupRoot := filepath.Join(s.cfg.WorkDir, prefixed(f.Prefix, name))
	buildDir := filepath.Join(groupRoot, build.Build)
	if !f.SimOnly {
		if err := recreate(buildDir, f.Clean); err != nil {
			return nil, s.fail(ctx, err)
		}
	}

	if !f.SimOnly {
		s.transition(ctx, StateGeneratingCompile)
		testList, err := catalog.GenTestFileList(buildDir, res.TestNames())
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		in := script.CompileInput{
			Profile:  s.profile,
			Build:    build,
			Knobs:    knobs,
			User:     base.CompileOptions,
			BuildDir: buildDir,
			TopFile:  s.cfg.TopFileListPath(),
			TestList: testList,
		}
		if base.Coverage == domain.CoverageCovfile {
			in.CovFile = s.cfg.CovFilePath()
		}
		if err := script.WriteAll(script.Compile(in)); err != nil {
			return nil, s.fail(ctx, err)
		}
	}

	var instances []execution.Instance
	if !f.CompileOnly {
		s.transition(ctx, StateGeneratingSimulate)
		for _, e := range entries {
			var covFile string
			if e.opts.Coverage == domain.CoverageCovfile {
				covFile = s.cfg.CovFilePath()
			}
			for _, seed := range domain.NewSeedSet(e.opts.Seed, e.opts.Repeat, s.rand) {
				dir := script.InstanceDir(groupRoot, e.bucket, e.opts.Test, seed)
				if err := recreate(dir, false); err != nil {
					return nil, s.fail(ctx, err)
				}
				in := script.SimInput{
					Profile:       s.profile,
					Build:         build,
					Knobs:         e.knobs,
					User:          e.opts.SimOptions,
					BuildDir:      buildDir,
					Dir:           dir,
					Test:          e.opts.Test,
					Seed:          seed,
					SeedDirective: e.opts.Seed == 0,
					CoverageName:  e.opts.Coverage != "",
					CovFile:       covFile,
					Quiet:         true,
				}
				if err := script.WriteAll(script.Simulate(in)); err != nil {
					return nil, s.fail(ctx, err)
				}
				instances = append(instances, execution.Instance{
					Bucket:  e.bucket,
					Test:    e.opts.Test,
					Seed:    seed,
					Dir:     dir,
					Command: script.Command(script.PhaseSim, e.opts.Test, s.lsf()),
				})
			}
		}
	}

	report := s.newReport(ModeGroup, name, build.Build)
	if err := s.execute(ctx, report, buildDir, name, instances, true); err != nil {
		report.Tally()
		return report, s.fail(ctx, err)
	}
	return s.finish(ctx, report, started), nil
}
