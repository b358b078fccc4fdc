// Package simulator maps neutral run options onto the flags of the supported
// simulator backends.
//
// Each backend is one Profile value in a closed table keyed by Kind. A
// profile carries its executables, capability flags, one translation row per
// neutral knob, its structural flags and its log classification patterns.
package simulator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"simrun/internal/domain"
	"simrun/internal/parser"
)

// Kind identifies a simulator backend.
type Kind int

const (
	VCS Kind = iota
	Incisive
)

func (k Kind) String() string {
	switch k {
	case VCS:
		return "vcs"
	case Incisive:
		return "irun"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Flags accumulates backend flags for the compile and simulate command lines.
type Flags struct {
	Compile []string
	Sim     []string
}

func (f *Flags) add(o Flags) {
	f.Compile = append(f.Compile, o.Compile...)
	f.Sim = append(f.Sim, o.Sim...)
}

// Profile describes one simulator backend.
type Profile struct {
	Kind        Kind
	CompileExe  string
	SimExe      string
	SupportsGUI bool
	// DefaultWave is used when a wave dump is requested without a format.
	DefaultWave string
	Patterns    parser.PatternSet

	// simInBuildDir means SimExe is produced by the compile step.
	simInBuildDir bool
	waves         map[string]Flags
	noWave        Flags
	coverage      func(mode string) Flags
	seed          func(seed uint32) string
	coverageName  func(test string, seed uint32) string
	dumpPrefix    string
	covFile       bool
	compileFlags  func(buildDir, topFile, testList string) []string
	simFlags      func(buildDir string) []string
	viewers       map[string]func(buildDir, instDir string) string
}

// Name returns the simulator name used in configuration and environment.
func (p *Profile) Name() string { return p.Kind.String() }

// Lookup returns the profile of a simulator by name.
func Lookup(name string) (*Profile, error) {
	for _, p := range profiles {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: simulator %q, supported: %s",
		domain.ErrUnsupportedOption, name, strings.Join(Names(), ", "))
}

// Names lists the supported simulators.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// Profile returns the profile of k.
func (k Kind) Profile() *Profile { return profiles[k] }

// SimExecutable returns the simulate executable for a build directory.
func (p *Profile) SimExecutable(buildDir string) string {
	if p.simInBuildDir {
		return filepath.Join(buildDir, p.SimExe)
	}
	return p.SimExe
}

// WaveModes returns the wave formats the profile supports, sorted.
func (p *Profile) WaveModes() []string {
	modes := make([]string, 0, len(p.waves))
	for m := range p.waves {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

// ResolveWave maps a requested wave mode to a supported one. "" stays ""
// and domain.WaveDefault becomes DefaultWave.
func (p *Profile) ResolveWave(mode string) (string, error) {
	switch mode {
	case "":
		return "", nil
	case domain.WaveDefault:
		return p.DefaultWave, nil
	case domain.WaveGUI:
		if !p.SupportsGUI {
			return "", fmt.Errorf("%w: %s has no GUI mode", domain.ErrUnsupportedOption, p.Name())
		}
	}
	if _, ok := p.waves[mode]; !ok {
		return "", fmt.Errorf("%w: %s does not support wave %q, want one of %s",
			domain.ErrUnsupportedOption, p.Name(), mode, strings.Join(p.WaveModes(), ", "))
	}
	return mode, nil
}

// Translate turns the neutral knobs of opts into backend flags. Knobs are
// applied in a fixed order: wave, coverage, seed, test name, debug ids.
// Without a wave mode the profile's noWave row applies. The
// seed knob applies only when the seed was given explicitly.
func (p *Profile) Translate(opts domain.RunOptions) (Flags, error) {
	var f Flags

	wave, err := p.ResolveWave(opts.Wave)
	if err != nil {
		return Flags{}, err
	}
	if wave != "" {
		f.add(p.waves[wave])
	} else {
		f.add(p.noWave)
	}
	if opts.Coverage != "" {
		f.add(p.coverage(opts.Coverage))
	}
	if opts.SeedGiven {
		f.Sim = append(f.Sim, p.seed(opts.Seed))
	}
	if opts.Test != "" {
		f.Sim = append(f.Sim, "+UVM_TESTNAME="+opts.Test)
	}
	for _, id := range opts.DebugIDs {
		if id = strings.TrimSpace(id); id != "" {
			f.Sim = append(f.Sim, "+uvm_set_verbosity=uvm_test_top*,"+id+",UVM_DEBUG,time,0")
		}
	}
	return f, nil
}

// CompileStructural returns the flags every compile line carries after the
// user and knob options. topFile may be empty.
func (p *Profile) CompileStructural(buildDir, topFile, testList string) []string {
	return p.compileFlags(buildDir, topFile, testList)
}

// SimStructural returns the snapshot and run directives of the simulate line.
func (p *Profile) SimStructural(buildDir string) []string {
	return p.simFlags(buildDir)
}

// SeedDirective returns the per-instance seed flag.
func (p *Profile) SeedDirective(seed uint32) string { return p.seed(seed) }

// CoverageNameDirective returns the flag naming an instance's coverage
// database, or "" when the profile names it implicitly.
func (p *Profile) CoverageNameDirective(test string, seed uint32) string {
	if p.coverageName == nil {
		return ""
	}
	return p.coverageName(test, seed)
}

// CovFileDirective returns the coverage configuration file flag, or "" when
// the profile has no coverage file support.
func (p *Profile) CovFileDirective(ccf string) string {
	if !p.covFile || ccf == "" {
		return ""
	}
	return "-covfile " + ccf
}

// DumpDirective returns the flag that sources a wave dump script.
func (p *Profile) DumpDirective(tcl string) string {
	return p.dumpPrefix + " " + tcl
}

// DumpKind returns the dump script kind ("shm" or "fsdb") read for a wave
// mode, or "" when the mode takes none.
func DumpKind(wave string) string {
	switch wave {
	case domain.WaveSHM, domain.WaveFSDB:
		return wave
	}
	return ""
}

// Viewer returns the command that opens the waves of an instance.
func (p *Profile) Viewer(wave, buildDir, instDir string) (string, bool) {
	v, ok := p.viewers[wave]
	if !ok {
		return "", false
	}
	return v(buildDir, instDir), true
}
