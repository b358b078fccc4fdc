// Package script generates the compile and simulate shell artifacts of a run
// and the command strings that execute them.
package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact names.
const (
	PreCompileFile  = "pre_compile.csh"
	CompileFile     = "compile.csh"
	PostCompileFile = "post_compile.csh"
	VerdiFile       = "verdi.f"
	PreSimFile      = "pre_sim.csh"
	SimFile         = "sim.csh"
	PostSimFile     = "post_sim.csh"
	CompileLog      = "compile.log"
	SimLog          = "sim.log"
)

const shebang = "#!/bin/sh -fe\n"

// Artifact is a generated file. Writing it overwrites any previous version.
type Artifact struct {
	Dir     string
	Name    string
	Content string
}

// Path returns the artifact's full path.
func (a Artifact) Path() string { return filepath.Join(a.Dir, a.Name) }

// Write writes the artifact; shell scripts are made executable.
func (a Artifact) Write() error {
	mode := os.FileMode(0644)
	if strings.HasSuffix(a.Name, ".csh") {
		mode = 0755
	}
	if err := os.WriteFile(a.Path(), []byte(a.Content), mode); err != nil {
		return fmt.Errorf("write %s: %w", a.Name, err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(a.Path(), mode)
}

// WriteAll writes artifacts in order and stops at the first error.
func WriteAll(artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := a.Write(); err != nil {
			return err
		}
	}
	return nil
}

// lines renders one command per line.
func lines(items []string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item)
		b.WriteByte('\n')
	}
	return b.String()
}

// invocation renders exe followed by one tab-indented option per line.
// Every line but the last ends with a continuation marker, so the result is
// a single command. suffix is appended to the last option line.
func invocation(b *strings.Builder, exe string, options []string, suffix string) {
	b.WriteString(exe)
	for _, opt := range options {
		b.WriteString(" \\\n\t")
		b.WriteString(opt)
	}
	b.WriteString(suffix)
	b.WriteByte('\n')
}
