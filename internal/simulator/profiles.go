package simulator

import (
	"path/filepath"
	"regexp"
	"strconv"

	"simrun/internal/domain"
	"simrun/internal/parser"
)

const (
	vcsCoverAll = "line+cond+fsm+tgl+branch+assert"
	covDir      = "coverage"
	topModule   = "top"
)

var profiles = map[Kind]*Profile{
	VCS:      vcsProfile(),
	Incisive: incisiveProfile(),
}

func vcsProfile() *Profile {
	return &Profile{
		Kind:          VCS,
		CompileExe:    "vcs",
		SimExe:        "simv",
		simInBuildDir: true,
		SupportsGUI:   true,
		DefaultWave:   domain.WaveFSDB,
		waves: map[string]Flags{
			domain.WaveVPD: {
				Compile: []string{"-kdb -debug_access+pp +define+DUMP_VPD"},
			},
			domain.WaveFSDB: {
				Compile: []string{"-kdb -debug_access+pp +define+DUMP_FSDB"},
				Sim:     []string{"+fsdb+autoflush"},
			},
			domain.WaveGUI: {
				Compile: []string{"-kdb -debug_access+all +define+DUMP_FSDB"},
				Sim:     []string{"-verdi"},
			},
		},
		// keeps single runs and regressions on one compile line
		noWave: Flags{Compile: []string{"-kdb -debug_access+pp"}},
		coverage: func(mode string) Flags {
			metrics := mode
			if mode == domain.CoverageAll {
				metrics = vcsCoverAll
			}
			return Flags{
				Compile: []string{"-cm_dir " + covDir + " -cm " + metrics},
				Sim:     []string{"-cm " + metrics, "+FCOV_EN"},
			}
		},
		seed: func(seed uint32) string {
			if seed == 0 {
				return "+ntb_random_seed=1"
			}
			return "+ntb_random_seed=" + strconv.FormatUint(uint64(seed), 10)
		},
		coverageName: func(test string, seed uint32) string {
			return "-cm_name " + test + "__" + strconv.FormatUint(uint64(seed), 10)
		},
		dumpPrefix: "-ucli -i",
		compileFlags: func(buildDir, topFile, testList string) []string {
			var flags []string
			if topFile != "" {
				flags = append(flags, "-f "+topFile)
			}
			return append(flags, "-f "+testList, "-top "+topModule)
		},
		simFlags: func(string) []string { return nil },
		viewers: map[string]func(buildDir, instDir string) string{
			domain.WaveFSDB: func(buildDir, instDir string) string {
				return "verdi -sv -nologo -elab " + filepath.Join(buildDir, "simv.daidir", "kdb.elab++") +
					" -top " + topModule + " -ssf " + filepath.Join(instDir, "waves.fsdb")
			},
			domain.WaveVPD: func(_, instDir string) string {
				return "dve -vpd " + filepath.Join(instDir, "vcdplus.vpd")
			},
		},
		Patterns: parser.PatternSet{
			Error:    []*regexp.Regexp{regexp.MustCompile(`^Error-\[.*\]`), parser.UVMErrorPattern},
			Exclude:  regexp.MustCompile(`^Error-\[.*\].*\b(?i:ignored)\b`),
			CoreDump: parser.CoreDumpPattern,
			EndOfRun: regexp.MustCompile(`V C S   S i m u l a t i o n   R e p o r t`),
			Warning:  []*regexp.Regexp{parser.TimingViolation},
		},
	}
}

func incisiveProfile() *Profile {
	libDir := func(buildDir string) string { return filepath.Join(buildDir, "INCA_libs") }
	lineDebug := "-access +rwc -linedebug -uvmlinedebug"

	return &Profile{
		Kind:        Incisive,
		CompileExe:  "irun",
		SimExe:      "irun",
		SupportsGUI: true,
		DefaultWave: domain.WaveSHM,
		waves: map[string]Flags{
			domain.WaveSHM: {
				Compile: []string{"-access +r"},
			},
			domain.WaveFSDB: {
				Compile: []string{"-access +r"},
				Sim:     []string{"+fsdb+autoflush"},
			},
			domain.WaveGUI: {
				Compile: []string{lineDebug},
				Sim:     []string{"-access +rwc -linedebug -gui"},
			},
			domain.WaveDebug: {
				Compile: []string{lineDebug},
				Sim:     []string{lineDebug},
			},
		},
		coverage: func(mode string) Flags {
			housekeeping := []string{"-covoverwrite", "-write_metrics"}
			if mode == domain.CoverageCovfile {
				return Flags{Sim: housekeeping}
			}
			return Flags{
				Compile: []string{"-coverage " + mode},
				Sim:     append([]string{"-coverage " + mode}, housekeeping...),
			}
		},
		seed: func(seed uint32) string {
			return "-svseed " + strconv.FormatUint(uint64(seed), 10)
		},
		dumpPrefix: "-input",
		covFile:    true,
		compileFlags: func(buildDir, topFile, testList string) []string {
			flags := []string{"-elaborate", "-nclibdirname " + libDir(buildDir)}
			if topFile != "" {
				flags = append(flags, "-f "+topFile)
			}
			return append(flags, "-f "+testList, "-snapshot "+topModule, "-top "+topModule)
		},
		simFlags: func(buildDir string) []string {
			return []string{"-nclibdirname " + libDir(buildDir), "-snapshot " + topModule, "-r " + topModule}
		},
		viewers: map[string]func(buildDir, instDir string) string{
			domain.WaveSHM: func(buildDir, instDir string) string {
				return "simvision -waves -snapshot " + topModule + " -cdslib " +
					filepath.Join(libDir(buildDir), "top.nc", "cds.lib") + " " + filepath.Join(instDir, "waves.shm")
			},
			domain.WaveFSDB: func(buildDir, instDir string) string {
				return "verdi -sv -nologo -f " + filepath.Join(buildDir, "verdi.f") +
					" -top " + topModule + " -ssf " + filepath.Join(instDir, "waves.fsdb")
			},
		},
		Patterns: parser.PatternSet{
			Error:    []*regexp.Regexp{regexp.MustCompile(`^((ncsim)|(irun)): \*E,.*`), parser.UVMErrorPattern},
			CoreDump: parser.CoreDumpPattern,
			EndOfRun: regexp.MustCompile(`ncsim> exit`),
			Warning:  []*regexp.Regexp{parser.TimingViolation},
		},
	}
}
