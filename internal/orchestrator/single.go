package orchestrator

import (
	"context"
	"path/filepath"

	"simrun/internal/config"
	"simrun/internal/ctxlog"
	"simrun/internal/domain"
	"simrun/internal/execution"
	"simrun/internal/script"
	"simrun/internal/simulator"
)

// RunTest compiles and simulates one testcase for every seed of its seed set.
//
// The build directory is <work>/<prefix__test>/<build>, or <work>/<build>
// when the build is shared between tests. Instances live in
// <work>/<prefix__test>/<test>__<seed>. A run with several seeds is
// unattended: its output is discarded and no viewer branch is written.
func (s *Session) RunTest(ctx context.Context, opts domain.RunOptions) (*domain.RunReport, error) {
	started := s.now()
	logger := ctxlog.FromContext(ctx)
	f := s.cfg.Flags

	s.transition(ctx, StateResolving)
	if opts.Build == "" {
		opts.Build = config.DefaultBuild
	}
	build, err := s.builds.Resolve(opts.Build)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	knobs, err := s.profile.Translate(opts)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	wave, _ := s.profile.ResolveWave(opts.Wave)

	s.transition(ctx, StateCheckingBuild)
	catalog, err := s.Catalog(ctx, s.TestRoot(build))
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if !catalog.Has(opts.Test) {
		return nil, s.fail(ctx, &domain.UnknownNameError{Kind: domain.KindTest, Name: opts.Test, Available: catalog.Names()})
	}
	if !s.profile.Available() {
		logger.Warn("Simulator not found", "simulator", s.profile.Name(), "env", s.profile.PathEnv())
	}

	s.transition(ctx, StatePreparing)
	testRoot := filepath.Join(s.cfg.WorkDir, prefixed(f.Prefix, opts.Test))
	buildDir := filepath.Join(testRoot, build.Build)
	if f.Unique {
		buildDir = filepath.Join(s.cfg.WorkDir, build.Build)
	}
	if !f.SimOnly {
		if err := recreate(buildDir, f.Clean); err != nil {
			return nil, s.fail(ctx, err)
		}
	}
	if !f.CompileOnly {
		if err := recreate(testRoot, f.Clean && f.Unique); err != nil {
			return nil, s.fail(ctx, err)
		}
	}
	seeds := domain.NewSeedSet(opts.Seed, opts.Repeat, s.rand)
	quiet := len(seeds) > 1

	var covFile string
	if opts.Coverage == domain.CoverageCovfile {
		covFile = s.cfg.CovFilePath()
	}

	if !f.SimOnly {
		s.transition(ctx, StateGeneratingCompile)
		testList, err := catalog.GenTestFileList(buildDir, []string{opts.Test})
		if err != nil {
			return nil, s.fail(ctx, err)
		}
		in := script.CompileInput{
			Profile:  s.profile,
			Build:    build,
			Knobs:    knobs,
			User:     opts.CompileOptions,
			BuildDir: buildDir,
			TopFile:  s.cfg.TopFileListPath(),
			TestList: testList,
			CovFile:  covFile,
			Verdi:    true,
		}
		if err := script.WriteAll(script.Compile(in)); err != nil {
			return nil, s.fail(ctx, err)
		}
	}

	var instances []execution.Instance
	if !f.CompileOnly {
		s.transition(ctx, StateGeneratingSimulate)
		for _, seed := range seeds {
			dir := script.InstanceDir(testRoot, "", opts.Test, seed)
			if err := recreate(dir, false); err != nil {
				return nil, s.fail(ctx, err)
			}
			in := script.SimInput{
				Profile:       s.profile,
				Build:         build,
				Knobs:         knobs,
				User:          opts.SimOptions,
				BuildDir:      buildDir,
				Dir:           dir,
				Test:          opts.Test,
				Seed:          seed,
				SeedDirective: opts.Seed == 0,
				CoverageName:  opts.Coverage != "",
				CovFile:       covFile,
				Quiet:         quiet,
			}
			if !quiet {
				in.DumpScript = s.dumpScript(opts.Test, wave)
				if v, ok := s.profile.Viewer(wave, buildDir, dir); ok {
					in.Viewer = v
				}
			}
			if err := script.WriteAll(script.Simulate(in)); err != nil {
				return nil, s.fail(ctx, err)
			}
			instances = append(instances, execution.Instance{
				Test:    opts.Test,
				Seed:    seed,
				Dir:     dir,
				Command: script.Command(script.PhaseSim, opts.Test, s.lsf()),
			})
		}
	}

	report := s.newReport(ModeTest, opts.Test, build.Build)
	if err := s.execute(ctx, report, buildDir, opts.Test, instances, quiet); err != nil {
		report.Tally()
		return report, s.fail(ctx, err)
	}
	return s.finish(ctx, report, started), nil
}

// dumpScript returns the testcase's own wave dump script, else the project
// default, for the dump kind of a wave mode.
func (s *Session) dumpScript(test, wave string) string {
	kind := simulator.DumpKind(wave)
	if kind == "" {
		return ""
	}
	if p := s.catalog.DumpScript(test, kind); p != "" {
		return p
	}
	return s.cfg.DumpScriptPath(kind)
}
