package cli

import (
	"time"

	"simrun/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Test  string
	Group string
	Build string

	Seed      uint32
	SeedGiven bool
	Repeat    int
	Wave      string
	Coverage  string
	DebugIDs  string

	RepeatGiven   bool
	WaveGiven     bool
	CoverageGiven bool

	CompileOptions []string
	SimOptions     []string

	Unique      bool
	Prefix      string
	Clean       bool
	CompileOnly bool
	SimOnly     bool

	LSF        bool
	LSFOptions []string

	CompileTimeout time.Duration
	SimTimeout     time.Duration

	BuildFile string
	GroupFile string

	NameFilter string
	TestCases  bool
	NoProgress bool
	FailFast   bool
	OpenFails  bool
	Fresh      bool

	LogLevel  string
	LogFormat string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Test:           f.Test,
		Group:          f.Group,
		Build:          f.Build,
		Seed:           f.Seed,
		SeedGiven:      f.SeedGiven,
		Repeat:         f.Repeat,
		Wave:           f.Wave,
		Coverage:       f.Coverage,
		DebugIDs:       f.DebugIDs,
		RepeatGiven:    f.RepeatGiven,
		WaveGiven:      f.WaveGiven,
		CoverageGiven:  f.CoverageGiven,
		CompileOptions: append([]string(nil), f.CompileOptions...),
		SimOptions:     append([]string(nil), f.SimOptions...),
		Unique:         f.Unique,
		Prefix:         f.Prefix,
		Clean:          f.Clean,
		CompileOnly:    f.CompileOnly,
		SimOnly:        f.SimOnly,
		LSF:            f.LSF,
		LSFOptions:     append([]string(nil), f.LSFOptions...),
		CompileTimeout: f.CompileTimeout,
		SimTimeout:     f.SimTimeout,
		BuildFile:      f.BuildFile,
		GroupFile:      f.GroupFile,
		NameFilter:     f.NameFilter,
		TestCases:      f.TestCases,
		NoProgress:     f.NoProgress,
		FailFast:       f.FailFast,
		OpenFails:      f.OpenFails,
		Fresh:          f.Fresh,
	}
}
