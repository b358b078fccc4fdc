package simulator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simrun/internal/domain"
)

func mustLookup(t *testing.T, name string) *Profile {
	t.Helper()
	p, err := Lookup(name)
	require.NoError(t, err)
	return p
}

func TestLookup(t *testing.T) {
	assert.Equal(t, VCS, mustLookup(t, "vcs").Kind)
	assert.Equal(t, Incisive, mustLookup(t, "irun").Kind)
	assert.Same(t, VCS.Profile(), mustLookup(t, "vcs"))

	_, err := Lookup("questa")
	require.ErrorIs(t, err, domain.ErrUnsupportedOption)
	assert.Contains(t, err.Error(), "irun, vcs")
}

func TestExecutables(t *testing.T) {
	vcs := mustLookup(t, "vcs")
	assert.Equal(t, "vcs", vcs.CompileExe)
	assert.Equal(t, "/w/default/simv", vcs.SimExecutable("/w/default"))

	irun := mustLookup(t, "irun")
	assert.Equal(t, "irun", irun.CompileExe)
	assert.Equal(t, "irun", irun.SimExecutable("/w/default"))
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		sim  string
		opts domain.RunOptions
		want Flags
	}{
		{
			name: "vcs fsdb",
			sim:  "vcs",
			opts: domain.RunOptions{Wave: domain.WaveFSDB},
			want: Flags{Compile: []string{"-kdb -debug_access+pp +define+DUMP_FSDB"}, Sim: []string{"+fsdb+autoflush"}},
		},
		{
			name: "vcs default wave is fsdb",
			sim:  "vcs",
			opts: domain.RunOptions{Wave: domain.WaveDefault},
			want: Flags{Compile: []string{"-kdb -debug_access+pp +define+DUMP_FSDB"}, Sim: []string{"+fsdb+autoflush"}},
		},
		{
			name: "vcs gui",
			sim:  "vcs",
			opts: domain.RunOptions{Wave: domain.WaveGUI},
			want: Flags{Compile: []string{"-kdb -debug_access+all +define+DUMP_FSDB"}, Sim: []string{"-verdi"}},
		},
		{
			name: "irun default wave is shm",
			sim:  "irun",
			opts: domain.RunOptions{Wave: domain.WaveDefault},
			want: Flags{Compile: []string{"-access +r"}},
		},
		{
			name: "vcs coverage all",
			sim:  "vcs",
			opts: domain.RunOptions{Coverage: domain.CoverageAll},
			want: Flags{
				Compile: []string{"-kdb -debug_access+pp", "-cm_dir coverage -cm line+cond+fsm+tgl+branch+assert"},
				Sim:     []string{"-cm line+cond+fsm+tgl+branch+assert", "+FCOV_EN"},
			},
		},
		{
			name: "vcs named coverage",
			sim:  "vcs",
			opts: domain.RunOptions{Coverage: "tgl"},
			want: Flags{Compile: []string{"-kdb -debug_access+pp", "-cm_dir coverage -cm tgl"}, Sim: []string{"-cm tgl", "+FCOV_EN"}},
		},
		{
			name: "irun coverage all",
			sim:  "irun",
			opts: domain.RunOptions{Coverage: domain.CoverageAll},
			want: Flags{
				Compile: []string{"-coverage all"},
				Sim:     []string{"-coverage all", "-covoverwrite", "-write_metrics"},
			},
		},
		{
			name: "irun named coverage",
			sim:  "irun",
			opts: domain.RunOptions{Coverage: "block"},
			want: Flags{
				Compile: []string{"-coverage block"},
				Sim:     []string{"-coverage block", "-covoverwrite", "-write_metrics"},
			},
		},
		{
			name: "irun covfile",
			sim:  "irun",
			opts: domain.RunOptions{Coverage: domain.CoverageCovfile},
			want: Flags{Sim: []string{"-covoverwrite", "-write_metrics"}},
		},
		{
			name: "vcs seed zero",
			sim:  "vcs",
			opts: domain.RunOptions{SeedGiven: true},
			want: Flags{Compile: []string{"-kdb -debug_access+pp"}, Sim: []string{"+ntb_random_seed=1"}},
		},
		{
			name: "irun seed",
			sim:  "irun",
			opts: domain.RunOptions{Seed: 42, SeedGiven: true},
			want: Flags{Sim: []string{"-svseed 42"}},
		},
		{
			name: "implicit seed adds nothing",
			sim:  "irun",
			opts: domain.RunOptions{Seed: 42},
			want: Flags{},
		},
		{
			name: "vcs without wave keeps debug access",
			sim:  "vcs",
			opts: domain.RunOptions{Seed: 42},
			want: Flags{Compile: []string{"-kdb -debug_access+pp"}},
		},
		{
			name: "test and debug ids",
			sim:  "vcs",
			opts: domain.RunOptions{Test: "uart_smoke", DebugIDs: []string{"DRV", " MON "}},
			want: Flags{Compile: []string{"-kdb -debug_access+pp"}, Sim: []string{
				"+UVM_TESTNAME=uart_smoke",
				"+uvm_set_verbosity=uvm_test_top*,DRV,UVM_DEBUG,time,0",
				"+uvm_set_verbosity=uvm_test_top*,MON,UVM_DEBUG,time,0",
			}},
		},
		{
			name: "knob order",
			sim:  "irun",
			opts: domain.RunOptions{Test: "t", Seed: 5, SeedGiven: true, Wave: domain.WaveFSDB, Coverage: "all"},
			want: Flags{
				Compile: []string{"-access +r", "-coverage all"},
				Sim:     []string{"+fsdb+autoflush", "-coverage all", "-covoverwrite", "-write_metrics", "-svseed 5", "+UVM_TESTNAME=t"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := mustLookup(t, tc.sim).Translate(tc.opts)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTranslate_UnsupportedWave(t *testing.T) {
	for _, tc := range []struct{ sim, wave string }{
		{"vcs", domain.WaveSHM},
		{"vcs", domain.WaveDebug},
		{"irun", domain.WaveVPD},
		{"irun", "vcd"},
	} {
		_, err := mustLookup(t, tc.sim).Translate(domain.RunOptions{Wave: tc.wave})
		assert.ErrorIs(t, err, domain.ErrUnsupportedOption, "%s %s", tc.sim, tc.wave)
	}
}

func TestResolveWave_GUINeedsSupport(t *testing.T) {
	p := *mustLookup(t, "vcs")
	got, err := p.ResolveWave(domain.WaveGUI)
	require.NoError(t, err)
	assert.Equal(t, domain.WaveGUI, got)

	p.SupportsGUI = false
	_, err = p.ResolveWave(domain.WaveGUI)
	assert.ErrorIs(t, err, domain.ErrUnsupportedOption)
}

func TestStructuralFlags(t *testing.T) {
	vcs := mustLookup(t, "vcs")
	assert.Equal(t, []string{"-f /p/etc/top.f", "-f /w/b/test.f", "-top top"},
		vcs.CompileStructural("/w/b", "/p/etc/top.f", "/w/b/test.f"))
	assert.Equal(t, []string{"-f /w/b/test.f", "-top top"}, vcs.CompileStructural("/w/b", "", "/w/b/test.f"))
	assert.Empty(t, vcs.SimStructural("/w/b"))

	irun := mustLookup(t, "irun")
	assert.Equal(t, []string{
		"-elaborate", "-nclibdirname /w/b/INCA_libs", "-f /w/b/test.f", "-snapshot top", "-top top",
	}, irun.CompileStructural("/w/b", "", "/w/b/test.f"))
	assert.Equal(t, []string{"-nclibdirname /w/b/INCA_libs", "-snapshot top", "-r top"}, irun.SimStructural("/w/b"))
}

func TestDirectives(t *testing.T) {
	vcs := mustLookup(t, "vcs")
	irun := mustLookup(t, "irun")

	assert.Equal(t, "+ntb_random_seed=10", vcs.SeedDirective(10))
	assert.Equal(t, "-svseed 10", irun.SeedDirective(10))

	assert.Equal(t, "-cm_name t1__10", vcs.CoverageNameDirective("t1", 10))
	assert.Empty(t, irun.CoverageNameDirective("t1", 10))

	assert.Equal(t, "-covfile /p/etc/covfile.ccf", irun.CovFileDirective("/p/etc/covfile.ccf"))
	assert.Empty(t, irun.CovFileDirective(""))
	assert.Empty(t, vcs.CovFileDirective("/p/etc/covfile.ccf"))

	assert.Equal(t, "-ucli -i /t/fsdb_dump.tcl", vcs.DumpDirective("/t/fsdb_dump.tcl"))
	assert.Equal(t, "-input /t/shm_dump.tcl", irun.DumpDirective("/t/shm_dump.tcl"))

	assert.Equal(t, "shm", DumpKind(domain.WaveSHM))
	assert.Empty(t, DumpKind(domain.WaveGUI))
}

func TestViewer(t *testing.T) {
	vcs := mustLookup(t, "vcs")
	irun := mustLookup(t, "irun")

	cmd, ok := irun.Viewer(domain.WaveSHM, "/w/b", "/w/t__1")
	require.True(t, ok)
	assert.Equal(t, "simvision -waves -snapshot top -cdslib /w/b/INCA_libs/top.nc/cds.lib /w/t__1/waves.shm", cmd)

	cmd, ok = irun.Viewer(domain.WaveFSDB, "/w/b", "/w/t__1")
	require.True(t, ok)
	assert.Equal(t, "verdi -sv -nologo -f /w/b/verdi.f -top top -ssf /w/t__1/waves.fsdb", cmd)

	cmd, ok = vcs.Viewer(domain.WaveFSDB, "/w/b", "/w/t__1")
	require.True(t, ok)
	assert.Equal(t, "verdi -sv -nologo -elab /w/b/simv.daidir/kdb.elab++ -top top -ssf /w/t__1/waves.fsdb", cmd)

	cmd, ok = vcs.Viewer(domain.WaveVPD, "/w/b", "/w/t__1")
	require.True(t, ok)
	assert.Equal(t, "dve -vpd /w/t__1/vcdplus.vpd", cmd)

	_, ok = vcs.Viewer(domain.WaveGUI, "/w/b", "/w/t__1")
	assert.False(t, ok)
}

func TestFindPrefix(t *testing.T) {
	vcs := mustLookup(t, "vcs")
	assert.Equal(t, "SIMRUN_VCS_PATH", vcs.PathEnv())

	t.Run("env override", func(t *testing.T) {
		t.Setenv("SIMRUN_VCS_PATH", "/opt/synopsys/vcs/bin")
		prefix, ok := vcs.FindPrefix()
		require.True(t, ok)
		assert.Equal(t, "/opt/synopsys/vcs/bin", prefix)
	})

	t.Run("search PATH", func(t *testing.T) {
		bin := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(bin, "irun"), []byte("#!/bin/sh\n"), 0755))
		t.Setenv("SIMRUN_IRUN_PATH", "")
		t.Setenv("PATH", bin)

		prefix, ok := mustLookup(t, "irun").FindPrefix()
		require.True(t, ok)
		assert.Equal(t, bin, prefix)
	})

	t.Run("not found", func(t *testing.T) {
		t.Setenv("SIMRUN_VCS_PATH", "")
		t.Setenv("PATH", t.TempDir())
		assert.False(t, vcs.Available())
	})
}
