package script

import (
	"path/filepath"
	"strings"

	"simrun/internal/cfgfile"
	"simrun/internal/simulator"
)

// NullSink redirects the simulate output of unattended runs.
const NullSink = " > /dev/null 2>&1"

// CompileInput describes the compile phase of one build.
type CompileInput struct {
	Profile  *simulator.Profile
	Build    cfgfile.ResolvedBuildOptions
	Knobs    simulator.Flags
	User     []string
	BuildDir string
	// TopFile is the project file list, "" when the project has none.
	TopFile  string
	TestList string
	// CovFile is the coverage configuration file of covfile coverage.
	CovFile string
	// Verdi also writes verdi.f for the waveform viewer.
	Verdi bool
}

// CompileOptions returns the options of the compile line in order: build
// options, user options, knob flags, coverage file, structural flags and the
// compile log.
func CompileOptions(in CompileInput) []string {
	var opts []string
	opts = append(opts, in.Build.Compile...)
	opts = append(opts, in.User...)
	opts = append(opts, in.Knobs.Compile...)
	if d := in.Profile.CovFileDirective(in.CovFile); d != "" {
		opts = append(opts, d)
	}
	opts = append(opts, in.Profile.CompileStructural(in.BuildDir, in.TopFile, in.TestList)...)
	return append(opts, "-l "+CompileLog)
}

// Compile returns the compile phase artifacts.
func Compile(in CompileInput) []Artifact {
	opts := CompileOptions(in)

	var b strings.Builder
	b.WriteString(shebang)
	invocation(&b, in.Profile.CompileExe, opts, "")

	artifacts := []Artifact{
		{Dir: in.BuildDir, Name: PreCompileFile, Content: lines(in.Build.PreCompile)},
		{Dir: in.BuildDir, Name: CompileFile, Content: b.String()},
	}
	if in.Verdi {
		artifacts = append(artifacts, Artifact{Dir: in.BuildDir, Name: VerdiFile, Content: verdiList(opts, in.TopFile, in.TestList)})
	}
	return append(artifacts, Artifact{Dir: in.BuildDir, Name: PostCompileFile, Content: lines(in.Build.PostCompile)})
}

// verdiList keeps the define options of the compile line plus the file lists.
func verdiList(opts []string, topFile, testList string) string {
	var keep []string
	for _, o := range opts {
		if strings.HasPrefix(o, "-define") || strings.HasPrefix(o, "+define+") {
			keep = append(keep, o)
		}
	}
	if topFile != "" {
		keep = append(keep, "-f "+topFile)
	}
	return lines(append(keep, "-f "+testList))
}

// SimInput describes the simulate phase of one test instance.
type SimInput struct {
	Profile  *simulator.Profile
	Build    cfgfile.ResolvedBuildOptions
	Knobs    simulator.Flags
	User     []string
	BuildDir string
	Dir      string
	Test     string
	Seed     uint32
	// SeedDirective adds the instance seed; set when no fixed seed was requested.
	SeedDirective bool
	// CoverageName adds the coverage database name directive.
	CoverageName bool
	CovFile      string
	// DumpScript is the wave dump script sourced by the simulator.
	DumpScript string
	// Viewer is the command run by "sim.csh -v"; "" disables the branch.
	Viewer string
	// Quiet sends the simulator output to NullSink.
	Quiet bool
}

// SimOptions returns the options of the simulate line, in order.
func SimOptions(in SimInput) []string {
	var opts []string
	if in.DumpScript != "" {
		opts = append(opts, in.Profile.DumpDirective(in.DumpScript))
	}
	opts = append(opts, in.Build.Sim...)
	opts = append(opts, in.User...)
	opts = append(opts, in.Knobs.Sim...)
	opts = append(opts, in.Profile.SimStructural(in.BuildDir)...)
	if in.SeedDirective {
		opts = append(opts, in.Profile.SeedDirective(in.Seed))
	}
	if in.CoverageName {
		if d := in.Profile.CoverageNameDirective(in.Test, in.Seed); d != "" {
			opts = append(opts, d)
		}
	}
	if d := in.Profile.CovFileDirective(in.CovFile); d != "" {
		opts = append(opts, d)
	}
	return append(opts, "-l "+SimLog)
}

// Simulate returns the simulate phase artifacts of one instance.
func Simulate(in SimInput) []Artifact {
	var b strings.Builder
	b.WriteString(shebang)
	if in.Viewer != "" {
		b.WriteString(`if [ $# -gt 0 ] && [ "$1" = "-v" ]; then` + "\n")
		b.WriteString(in.Viewer + "\n")
		b.WriteString("else\n")
	}
	suffix := ""
	if in.Quiet {
		suffix = NullSink
	}
	invocation(&b, in.Profile.SimExecutable(in.BuildDir), SimOptions(in), suffix)
	if in.Viewer != "" {
		b.WriteString("fi\n")
	}

	pre := append([]string(nil), in.Build.PreSim...)
	if len(pre) > 0 {
		pre = append(pre, in.Test)
	}
	return []Artifact{
		{Dir: in.Dir, Name: PreSimFile, Content: lines(pre)},
		{Dir: in.Dir, Name: SimFile, Content: b.String()},
		{Dir: in.Dir, Name: PostSimFile, Content: lines(in.Build.PostSim)},
	}
}

// InstanceDir returns the directory of one test instance. bucket is empty
// outside group runs.
func InstanceDir(root, bucket, test string, seed uint32) string {
	name := test + "__" + formatSeed(seed)
	if bucket != "" {
		name = bucket + "__" + name
	}
	return filepath.Join(root, name)
}
