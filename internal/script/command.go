package script

import (
	"strconv"
	"strings"
)

// Phase selects the artifact set a command string runs.
type Phase string

const (
	PhaseCompile Phase = "compile"
	PhaseSim     Phase = "sim"
)

// LSF configures cluster submission.
type LSF struct {
	Enabled bool
	Options []string
}

// Command returns the shell pipeline running the pre, main and post scripts
// of a phase; the first failing step aborts it. arg is passed to the pre
// script. With LSF enabled the pipeline is wrapped in an interactive bsub.
func Command(phase Phase, arg string, lsf LSF) string {
	pre, main, post := "pre_"+string(phase)+".csh", string(phase)+".csh", "post_"+string(phase)+".csh"
	cmd := "set -e; chmod a+x " + pre + " " + main + " " + post + "; ./" + pre + " " + arg +
		"; ./" + main + "; ./" + post + ";"
	if !lsf.Enabled {
		return cmd
	}
	parts := []string{"bsub", "-Is"}
	parts = append(parts, lsf.Options...)
	parts = append(parts, `"`+cmd+`"`)
	return strings.Join(parts, " ")
}

func formatSeed(seed uint32) string {
	return strconv.FormatUint(uint64(seed), 10)
}
