package orchestrator

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simrun/internal/domain"
	"simrun/internal/script"
)

const groupFile = `[testgroup]
  [[regress]]
  build = default
  tests = sanity1,
  include = smoke,
  [[smoke]]
  tests = sanity2 -seed 7, sanity1 -r 2 -w
  [[gate_only]]
  build = gate
  tests = sanity1,
  [[mixed]]
  include = regress, gate_only
`

func TestRunGroup_Layout(t *testing.T) {
	p := newProject(t, "sanity1", "sanity2", "unused")
	p.write(t, "etc/group.cfg", groupFile)
	p.cfg.Flags.Group = "regress"
	p.cfg.Flags.SimOptions = []string{"+base"}
	runner := &fakeRunner{}
	s := newSession(t, p, runner)

	report, err := s.Run(context.Background())
	require.NoError(t, err)

	groupRoot := p.path("work", "regress")
	buildDir := filepath.Join(groupRoot, "default")
	testList := readFile(t, filepath.Join(buildDir, "test.f"))
	assert.Contains(t, testList, "sanity1.sv")
	assert.Contains(t, testList, "sanity2.sv")
	assert.NotContains(t, testList, "unused.sv")
	assert.NoFileExists(t, filepath.Join(buildDir, script.VerdiFile))

	// regress: sanity1@10, smoke: sanity2@7 and sanity1 twice with random seeds
	require.Len(t, report.Results, 4)
	assert.Equal(t, ModeGroup, report.Meta.Mode)
	assert.Equal(t, "regress", report.Meta.Target)
	assert.Equal(t, "regress", report.Results[0].Bucket)
	assert.Equal(t, uint32(10), report.Results[0].Seed)
	assert.Equal(t, "smoke", report.Results[1].Bucket)
	assert.Equal(t, "sanity2", report.Results[1].Test)
	assert.Equal(t, uint32(7), report.Results[1].Seed)

	first := readFile(t, filepath.Join(groupRoot, "regress__sanity1__10", script.SimFile))
	assert.True(t, strings.HasSuffix(lastLine(first), script.NullSink))
	assert.NotContains(t, first, `"$1" = "-v"`)
	assert.Contains(t, first, "\t+base \\\n")
	assert.Contains(t, first, "\t+ntb_random_seed=10 \\\n")
	assert.NotContains(t, first, "+fsdb+autoflush")

	seeded := readFile(t, filepath.Join(groupRoot, "smoke__sanity2__7", script.SimFile))
	assert.Contains(t, seeded, "\t+ntb_random_seed=7 \\\n")
	assert.Equal(t, 1, strings.Count(seeded, "+ntb_random_seed="))

	for _, res := range report.Results[2:] {
		assert.Equal(t, "sanity1", res.Test)
		sim := readFile(t, filepath.Join(res.Dir, script.SimFile))
		assert.Contains(t, sim, "+fsdb+autoflush")
		assert.NotContains(t, sim, "-ucli -i")
	}

	require.Len(t, runner.calls, 5)
	assert.Contains(t, runner.calls[0].command, "./pre_compile.csh regress;")
	assert.Contains(t, runner.calls[2].command, "./pre_sim.csh sanity2;")
}

func TestRunGroup_BuildInconsistency(t *testing.T) {
	p := newProject(t, "sanity1", "sanity2")
	p.write(t, "etc/group.cfg", groupFile)
	p.cfg.Flags.Group = "mixed"
	runner := &fakeRunner{}
	s := newSession(t, p, runner)

	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrBuildInconsistency)
	assert.NoDirExists(t, p.path("work"))
	assert.Empty(t, runner.calls)
}

func TestRunGroup_UnknownGroup(t *testing.T) {
	p := newProject(t, "sanity1", "sanity2")
	p.write(t, "etc/group.cfg", groupFile)
	p.cfg.Flags.Group = "nightly"
	s := newSession(t, p, &fakeRunner{})

	_, err := s.Run(context.Background())
	var unknown *domain.UnknownNameError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, domain.KindGroup, unknown.Kind)
}

func TestRunGroup_UnknownTest(t *testing.T) {
	p := newProject(t, "sanity1")
	p.write(t, "etc/group.cfg", "[testgroup]\n[[g]]\nbuild = default\ntests = sanity1, sanity2\n")
	p.cfg.Flags.Group = "g"
	s := newSession(t, p, &fakeRunner{})

	_, err := s.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrTestcaseUnknown)
}

func TestRunGroup_BadInlineArgs(t *testing.T) {
	p := newProject(t, "sanity1")
	p.write(t, "etc/group.cfg", "[testgroup]\n[[g]]\nbuild = default\ntests = sanity1 -bogus 1,\n")
	p.cfg.Flags.Group = "g"
	s := newSession(t, p, &fakeRunner{})

	_, err := s.Run(context.Background())
	require.Error(t, err)
	assert.NoDirExists(t, p.path("work"))
}

func TestRunGroup_PrefixAndFailures(t *testing.T) {
	p := newProject(t, "sanity1")
	p.write(t, "etc/group.cfg", "[testgroup]\n[[g]]\nbuild = gate\ntests = sanity1,\n")
	p.cfg.Flags.Group = "g"
	p.cfg.Flags.Prefix = "ci"
	runner := &fakeRunner{simLog: "UVM_FATAL @ 10: reporter [CFG] missing\n"}
	s := newSession(t, p, runner)

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, p.path("work", "ci__g", "gate", script.CompileFile))
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusFail, report.Results[0].Outcome.Status)
	assert.Equal(t, 1, report.Meta.FailedInstances)
	assert.Len(t, report.Failures(), 1)
}

func TestRunGroup_FoldersUnderBuildTestDir(t *testing.T) {
	p := newProject(t)
	p.write(t, "etc/build.cfg", "[build]\n  [[default]]\n  testDir = "+p.path("ip_tests")+"\n")
	p.write(t, "etc/group.cfg", "[testgroup]\n  [[regr]]\n  build = default\n  folders = core,\n")
	p.write(t, "ip_tests/core/alu/alu.sv", "")
	p.write(t, "ip_tests/io/uart/uart.sv", "")
	require.NoDirExists(t, p.cfg.TestDir)
	p.cfg.Flags.Group = "regr"
	s := newSession(t, p, &fakeRunner{})

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.FolderBucket, report.Results[0].Bucket)
	assert.Equal(t, "alu", report.Results[0].Test)
	assert.Equal(t, p.path("work", "regr"), filepath.Dir(report.Results[0].Dir))
	assert.True(t, strings.HasPrefix(filepath.Base(report.Results[0].Dir), "folder___alu__"))
}

func TestRunGroup_CommandLineSeedBeatsInline(t *testing.T) {
	p := newProject(t, "sanity1")
	p.write(t, "etc/group.cfg", "[testgroup]\n  [[regr]]\n  build = default\n  tests = sanity1 -seed 3 -w vpd,\n")
	p.cfg.Flags.Group = "regr"
	p.cfg.Flags.Seed = 7
	p.cfg.Flags.SeedGiven = true
	s := newSession(t, p, &fakeRunner{})

	report, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, uint32(7), report.Results[0].Seed)

	sim := readFile(t, filepath.Join(p.path("work", "regr"), "regr__sanity1__7", script.SimFile))
	assert.Contains(t, sim, "\t+ntb_random_seed=7 \\\n")
	assert.NotContains(t, sim, "+ntb_random_seed=3")
}
