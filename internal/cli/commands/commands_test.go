package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simrun/internal/cli"
	"simrun/internal/config"
	"simrun/internal/discovery"
	"simrun/internal/domain"
	"simrun/internal/orchestrator"
	"simrun/internal/script"
	"simrun/internal/storage"
	"simrun/internal/ui"
)

func init() {
	color.NoColor = true
}

const passLog = "UVM_INFO @ 0: reporter [RNTST] Running test\n" +
	"           V C S   S i m u l a t i o n   R e p o r t\n"

type logRunner struct {
	mu     sync.Mutex
	simLog string
	dirs   []string
}

func (r *logRunner) Run(_ context.Context, command, dir string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dirs = append(r.dirs, dir)
	if strings.Contains(command, "compile.csh") {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, script.SimLog), []byte(r.simLog), 0o644)
}

func newProject(t *testing.T, tests ...string) *config.Config {
	t.Helper()
	root := t.TempDir()
	write(t, filepath.Join(root, "etc", "build.cfg"), "[build]\n  [[default]]\n  [[gate]]\n  compileOption = +define+GATE,\n")
	write(t, filepath.Join(root, "etc", "group.cfg"), "[testgroup]\n  [[regress]]\n  build = default\n  tests = sanity1,\n")
	for _, name := range tests {
		write(t, filepath.Join(root, "testcases", name, name+".sv"), "class "+name+"_test extends uvm_test;\nendclass\n")
	}

	cfg := config.New()
	cfg.ProjectRoot = root
	cfg.WorkDir = filepath.Join(root, "work")
	cfg.TestDir = filepath.Join(root, "testcases")
	cfg.ReportDir = filepath.Join(root, "report")
	cfg.Simulator = "vcs"
	cfg.Apply(config.Flags{})
	return cfg
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestRunCommand_SavesReport(t *testing.T) {
	cfg := newProject(t, "sanity1")
	cfg.Apply(config.Flags{Test: "sanity1", NoProgress: true})
	runner := &logRunner{simLog: passLog}
	js := storage.NewJSONStorage(cfg)

	rc := NewRunCommand(cfg, js, ui.NewFormatterTo(&bytes.Buffer{}), orchestrator.WithRunner(runner))
	require.NoError(t, rc.Execute(newCmd(), nil))

	report, err := js.Load()
	require.NoError(t, err)
	assert.Equal(t, orchestrator.ModeTest, report.Meta.Mode)
	assert.Equal(t, "sanity1", report.Meta.Target)
	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.StatusPass, report.Results[0].Outcome.Status)
}

func TestRunCommand_FailuresReturnError(t *testing.T) {
	cfg := newProject(t, "sanity1")
	cfg.Apply(config.Flags{Group: "regress", NoProgress: true})
	runner := &logRunner{simLog: "Error-[NOA] Null object access\n"}
	js := storage.NewJSONStorage(cfg)

	rc := NewRunCommand(cfg, js, ui.NewFormatterTo(&bytes.Buffer{}), orchestrator.WithRunner(runner))
	err := rc.Execute(newCmd(), nil)
	require.ErrorIs(t, err, ErrFailures)

	report, err := js.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Meta.FailedInstances)
}

func TestRunCommand_CompileOnlySavesNothing(t *testing.T) {
	cfg := newProject(t, "sanity1")
	cfg.Apply(config.Flags{Test: "sanity1", CompileOnly: true, NoProgress: true})
	js := storage.NewJSONStorage(cfg)

	rc := NewRunCommand(cfg, js, ui.NewFormatterTo(&bytes.Buffer{}), orchestrator.WithRunner(&logRunner{}))
	require.NoError(t, rc.Execute(newCmd(), nil))

	_, err := os.Stat(js.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommand_UnknownTest(t *testing.T) {
	cfg := newProject(t, "sanity1")
	cfg.Apply(config.Flags{Test: "missing", NoProgress: true})

	rc := NewRunCommand(cfg, storage.NewJSONStorage(cfg), ui.NewFormatterTo(&bytes.Buffer{}), orchestrator.WithRunner(&logRunner{}))
	err := rc.Execute(newCmd(), nil)

	var unknown *domain.UnknownNameError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, []string{"sanity1"}, unknown.Available)
}

func TestListCommand_Tests(t *testing.T) {
	cfg := newProject(t, "sanity1", "uart_tx")
	cfg.Apply(config.Flags{TestCases: true})
	js := storage.NewJSONStorage(cfg)
	require.NoError(t, js.Save(&domain.RunReport{
		Meta: domain.RunMeta{RunID: "r1"},
		Results: []domain.InstanceResult{
			{Test: "uart_tx", Seed: 1, Outcome: domain.Outcome{Status: domain.StatusFail}},
		},
	}))

	var out bytes.Buffer
	lc := NewListCommand(cfg, discovery.NewFilter(), discovery.NewClassFinder(), ui.NewFormatterTo(&out), js)
	require.NoError(t, lc.Execute(newCmd(), nil))

	text := out.String()
	assert.Contains(t, text, "Found 2 testcase(s):")
	assert.Contains(t, text, "sanity1_test")
	assert.Contains(t, text, "uart_tx [F]")
	assert.NotContains(t, text, "sanity1 [F]")
}

func TestListCommand_Filter(t *testing.T) {
	cfg := newProject(t, "sanity1", "uart_tx")
	cfg.Apply(config.Flags{NameFilter: "uart_*"})

	var out bytes.Buffer
	lc := NewListCommand(cfg, discovery.NewFilter(), discovery.NewClassFinder(), ui.NewFormatterTo(&out), storage.NewJSONStorage(cfg))
	require.NoError(t, lc.Execute(newCmd(), nil))

	assert.Contains(t, out.String(), "Found 1 testcase(s):")
	assert.NotContains(t, out.String(), "sanity1")
}

func TestListCommand_BuildsAndGroups(t *testing.T) {
	cfg := newProject(t)

	var out bytes.Buffer
	lc := NewListCommand(cfg, discovery.NewFilter(), discovery.NewClassFinder(), ui.NewFormatterTo(&out), storage.NewJSONStorage(cfg))

	require.NoError(t, lc.Execute(newCmd(), []string{listBuilds}))
	assert.Contains(t, out.String(), "Available builds:")
	assert.Contains(t, out.String(), "gate")

	out.Reset()
	require.NoError(t, lc.Execute(newCmd(), []string{listGroups}))
	assert.Contains(t, out.String(), "Available groups:")
	assert.Contains(t, out.String(), "regress")
}

func TestCheckCommand(t *testing.T) {
	cfg := newProject(t)
	write(t, filepath.Join(cfg.WorkDir, "sanity1", "sanity1__10", script.SimLog), passLog)
	js := storage.NewJSONStorage(cfg)

	cc := NewCheckCommand(cfg, js, ui.NewFormatterTo(&bytes.Buffer{}))
	require.NoError(t, cc.Execute(newCmd(), nil))

	report, err := js.Load()
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "sanity1", report.Results[0].Test)
	assert.Equal(t, uint32(10), report.Results[0].Seed)
}

func TestCheckCommand_NoLogs(t *testing.T) {
	cfg := newProject(t)
	require.NoError(t, os.MkdirAll(cfg.WorkDir, 0o755))
	js := storage.NewJSONStorage(cfg)

	cc := NewCheckCommand(cfg, js, ui.NewFormatterTo(&bytes.Buffer{}))
	require.NoError(t, cc.Execute(newCmd(), nil))

	_, err := os.Stat(js.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestMigrateCommand_RequiresDSN(t *testing.T) {
	cfg := newProject(t)
	mc := NewMigrateCommand(cfg, nil)
	err := mc.Execute(newCmd(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SIMRUN_DB_DSN")
}

func TestFailsCommand_MissingReport(t *testing.T) {
	cfg := newProject(t)
	fc := NewFailsCommand(cfg, storage.NewJSONStorage(cfg))
	require.Error(t, fc.Execute(newCmd(), nil))
}

func TestRegister_RunNeedsTarget(t *testing.T) {
	cfg := newProject(t)
	var flags cli.Flags
	root := &cobra.Command{Use: "simrun", SilenceUsage: true, SilenceErrors: true}
	NewCommands(cfg).Register(root, &flags, cfg)

	root.SetArgs([]string{"run"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-t")

	root.SetArgs([]string{"run", "-t", "a", "-g", "b"})
	require.Error(t, root.Execute())
}

func TestRegister_RunRejectsRepeatBelowOne(t *testing.T) {
	for _, r := range []string{"0", "-2"} {
		cfg := newProject(t)
		var flags cli.Flags
		root := &cobra.Command{Use: "simrun", SilenceUsage: true, SilenceErrors: true}
		NewCommands(cfg).Register(root, &flags, cfg)

		root.SetArgs([]string{"run", "-t", "a", "-r=" + r})
		err := root.Execute()
		require.Error(t, err, r)
		assert.Contains(t, err.Error(), "--repeat must be at least 1")
	}
}

func TestRegister_RunPinsGivenScalars(t *testing.T) {
	cfg := newProject(t)
	var flags cli.Flags
	root := &cobra.Command{Use: "simrun", SilenceUsage: true, SilenceErrors: true}
	c := NewCommands(cfg)
	c.Register(root, &flags, cfg)
	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	run.RunE = func(*cobra.Command, []string) error { return nil }

	root.SetArgs([]string{"run", "-g", "regress", "--seed", "7", "-w"})
	require.NoError(t, root.Execute())
	assert.True(t, cfg.Flags.SeedGiven)
	assert.True(t, cfg.Flags.WaveGiven)
	assert.False(t, cfg.Flags.RepeatGiven)
	assert.False(t, cfg.Flags.CoverageGiven)
}

func TestRegister_RunFlags(t *testing.T) {
	cfg := newProject(t)
	var flags cli.Flags
	root := &cobra.Command{Use: "simrun"}
	NewCommands(cfg).Register(root, &flags, cfg)

	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	assert.Equal(t, domain.WaveDefault, run.Flags().Lookup("wave").NoOptDefVal)
	assert.Equal(t, domain.CoverageAll, run.Flags().Lookup("cov").NoOptDefVal)

	for _, name := range []string{"list", "check", "fails", "migrate"} {
		_, _, err := root.Find([]string{name})
		assert.NoError(t, err, name)
	}
}
