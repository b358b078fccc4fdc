package parser

import "regexp"

// PatternSet is the log classification pattern set of one simulator.
type PatternSet struct {
	// Error lines fail the run.
	Error []*regexp.Regexp
	// Exclude downgrades error lines that also match it. May be nil.
	Exclude *regexp.Regexp
	// CoreDump lines fail the run.
	CoreDump *regexp.Regexp
	// EndOfRun confirms that the simulator reached a clean terminal state.
	EndOfRun *regexp.Regexp
	Warning  []*regexp.Regexp
}

// Patterns shared by every simulator.
var (
	UVMErrorPattern = regexp.MustCompile(`^UVM_(ERROR|FATAL)\s+[^:\s]`)
	CoreDumpPattern = regexp.MustCompile(`Completed context dump phase`)
	TimingViolation = regexp.MustCompile(`.*Timing violation.*`)
)
