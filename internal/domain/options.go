package domain

// RunOptions is the neutral option set of one invocation or one group test.
// Simulator profiles translate it into backend specific flags.
type RunOptions struct {
	Test  string
	Build string

	// Seed 0 is the sentinel for "no fixed seed".
	Seed      uint32
	SeedGiven bool
	Repeat    int

	Wave     string
	Coverage string
	DebugIDs []string

	// User supplied options appended after the build options.
	CompileOptions []string
	SimOptions     []string

	// Pinned marks the scalar options set explicitly on the command line.
	// Inline group arguments do not override them.
	Pinned Pinned
}

// Pinned flags one bool per scalar option.
type Pinned struct {
	Seed     bool
	Repeat   bool
	Wave     bool
	Coverage bool
}

// Clone returns a deep copy so per-test overrides never leak into the base.
func (o RunOptions) Clone() RunOptions {
	c := o
	c.DebugIDs = append([]string(nil), o.DebugIDs...)
	c.CompileOptions = append([]string(nil), o.CompileOptions...)
	c.SimOptions = append([]string(nil), o.SimOptions...)
	return c
}

// Wave modes understood by at least one profile.
const (
	// WaveDefault asks for the profile's default wave format.
	WaveDefault = "default"
	WaveVPD     = "vpd"
	WaveFSDB    = "fsdb"
	WaveSHM     = "shm"
	WaveGUI     = "gui"
	WaveDebug   = "debug"
)

// Coverage modes with special handling.
const (
	CoverageAll     = "all"
	CoverageCovfile = "covfile"
)
