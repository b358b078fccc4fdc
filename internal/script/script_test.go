package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simrun/internal/cfgfile"
	"simrun/internal/simulator"
)

func profile(t *testing.T, name string) *simulator.Profile {
	t.Helper()
	p, err := simulator.Lookup(name)
	require.NoError(t, err)
	return p
}

func find(t *testing.T, artifacts []Artifact, name string) Artifact {
	t.Helper()
	for _, a := range artifacts {
		if a.Name == name {
			return a
		}
	}
	t.Fatalf("artifact %s not generated", name)
	return Artifact{}
}

func TestCompile_ContinuationMarkers(t *testing.T) {
	in := CompileInput{
		Profile:  profile(t, "vcs"),
		Build:    cfgfile.ResolvedBuildOptions{Compile: []string{"-sverilog", "+define+A=1"}, PreCompile: []string{"echo pre"}},
		Knobs:    simulator.Flags{Compile: []string{"-kdb -debug_access+pp +define+DUMP_FSDB"}},
		User:     []string{"-timescale=1ns/1ps"},
		BuildDir: "/w/t/default",
		TestList: "/w/t/default/test.f",
		Verdi:    true,
	}
	artifacts := Compile(in)

	var names []string
	for _, a := range artifacts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{PreCompileFile, CompileFile, VerdiFile, PostCompileFile}, names)

	csh := find(t, artifacts, CompileFile).Content
	assert.Equal(t, `#!/bin/sh -fe
vcs \
	-sverilog \
	+define+A=1 \
	-timescale=1ns/1ps \
	-kdb -debug_access+pp +define+DUMP_FSDB \
	-f /w/t/default/test.f \
	-top top \
	-l compile.log
`, csh)

	lines := strings.Split(strings.TrimSuffix(csh, "\n"), "\n")
	for _, l := range lines[1 : len(lines)-1] {
		assert.True(t, strings.HasSuffix(l, ` \`), "line %q must continue", l)
	}
	assert.False(t, strings.HasSuffix(lines[len(lines)-1], `\`))

	assert.Equal(t, "echo pre\n", find(t, artifacts, PreCompileFile).Content)
	assert.Empty(t, find(t, artifacts, PostCompileFile).Content)
	assert.Equal(t, "+define+A=1\n-f /w/t/default/test.f\n", find(t, artifacts, VerdiFile).Content)
}

func TestCompileOptions_Incisive(t *testing.T) {
	in := CompileInput{
		Profile:  profile(t, "irun"),
		BuildDir: "/w/g/default",
		TopFile:  "/p/etc/top.f",
		TestList: "/w/g/default/test.f",
		CovFile:  "/p/etc/covfile.ccf",
	}
	assert.Equal(t, []string{
		"-covfile /p/etc/covfile.ccf",
		"-elaborate",
		"-nclibdirname /w/g/default/INCA_libs",
		"-f /p/etc/top.f",
		"-f /w/g/default/test.f",
		"-snapshot top",
		"-top top",
		"-l compile.log",
	}, CompileOptions(in))
}

func TestSimulate(t *testing.T) {
	base := SimInput{
		Profile:  profile(t, "vcs"),
		Build:    cfgfile.ResolvedBuildOptions{Sim: []string{"+UVM_VERBOSITY=UVM_LOW"}, PreSim: []string{"source env.sh"}, PostSim: []string{"gzip sim.log"}},
		Knobs:    simulator.Flags{Sim: []string{"+fsdb+autoflush", "+UVM_TESTNAME=sanity1"}},
		User:     []string{"+timeout=10"},
		BuildDir: "/w/sanity1/default",
		Dir:      "/w/sanity1/sanity1__10",
		Test:     "sanity1",
		Seed:     10,
	}

	t.Run("viewer branch", func(t *testing.T) {
		in := base
		in.SeedDirective = true
		in.CoverageName = true
		in.DumpScript = "/t/sanity1/fsdb_dump.tcl"
		in.Viewer = "verdi -ssf waves.fsdb"

		artifacts := Simulate(in)
		assert.Equal(t, `#!/bin/sh -fe
if [ $# -gt 0 ] && [ "$1" = "-v" ]; then
verdi -ssf waves.fsdb
else
/w/sanity1/default/simv \
	-ucli -i /t/sanity1/fsdb_dump.tcl \
	+UVM_VERBOSITY=UVM_LOW \
	+timeout=10 \
	+fsdb+autoflush \
	+UVM_TESTNAME=sanity1 \
	+ntb_random_seed=10 \
	-cm_name sanity1__10 \
	-l sim.log
fi
`, find(t, artifacts, SimFile).Content)
		assert.Equal(t, "source env.sh\nsanity1\n", find(t, artifacts, PreSimFile).Content)
		assert.Equal(t, "gzip sim.log\n", find(t, artifacts, PostSimFile).Content)
	})

	t.Run("quiet run without pre commands", func(t *testing.T) {
		in := base
		in.Build.PreSim = nil
		in.Quiet = true

		artifacts := Simulate(in)
		sim := find(t, artifacts, SimFile).Content
		assert.NotContains(t, sim, "if [")
		assert.NotContains(t, sim, "ntb_random_seed")
		assert.True(t, strings.HasSuffix(sim, "\t-l sim.log > /dev/null 2>&1\n"))
		assert.Empty(t, find(t, artifacts, PreSimFile).Content)
	})

	t.Run("incisive structural and covfile", func(t *testing.T) {
		in := base
		in.Profile = profile(t, "irun")
		in.Knobs = simulator.Flags{}
		in.User = nil
		in.Build = cfgfile.ResolvedBuildOptions{}
		in.SeedDirective = true
		in.CoverageName = true
		in.CovFile = "/p/etc/covfile.ccf"

		assert.Equal(t, []string{
			"-nclibdirname /w/sanity1/default/INCA_libs",
			"-snapshot top",
			"-r top",
			"-svseed 10",
			"-covfile /p/etc/covfile.ccf",
			"-l sim.log",
		}, SimOptions(in))
	})
}

func TestCommand(t *testing.T) {
	assert.Equal(t,
		"set -e; chmod a+x pre_compile.csh compile.csh post_compile.csh; ./pre_compile.csh sanity1; ./compile.csh; ./post_compile.csh;",
		Command(PhaseCompile, "sanity1", LSF{}))
	assert.Equal(t,
		`bsub -Is -q normal -n 4 "set -e; chmod a+x pre_sim.csh sim.csh post_sim.csh; ./pre_sim.csh t; ./sim.csh; ./post_sim.csh;"`,
		Command(PhaseSim, "t", LSF{Enabled: true, Options: []string{"-q normal", "-n 4"}}))
}

func TestInstanceDir(t *testing.T) {
	assert.Equal(t, "/w/sanity1/sanity1__10", InstanceDir("/w/sanity1", "", "sanity1", 10))
	assert.Equal(t, "/w/regr/smoke__t1__4294967295", InstanceDir("/w/regr", "smoke", "t1", 0xFFFFFFFF))
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	artifacts := []Artifact{
		{Dir: dir, Name: SimFile, Content: "#!/bin/sh -fe\ntrue\n"},
		{Dir: dir, Name: VerdiFile, Content: "-f test.f\n"},
	}
	// an existing file gets the script mode back
	require.NoError(t, os.WriteFile(filepath.Join(dir, SimFile), []byte("old"), 0600))
	require.NoError(t, WriteAll(artifacts))

	info, err := os.Stat(filepath.Join(dir, SimFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(dir, SimFile))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh -fe\ntrue\n", string(data))

	info, err = os.Stat(filepath.Join(dir, VerdiFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	assert.Error(t, Artifact{Dir: filepath.Join(dir, "missing"), Name: SimFile}.Write())
}
