package simulator

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// PathEnv returns the environment variable that overrides the toolchain
// location, e.g. SIMRUN_VCS_PATH.
func (p *Profile) PathEnv() string {
	return "SIMRUN_" + strings.ToUpper(p.Name()) + "_PATH"
}

// FindPrefix returns the toolchain directory: the PathEnv variable when set,
// else the first PATH entry holding the compile executable.
func (p *Profile) FindPrefix() (string, bool) {
	if prefix := os.Getenv(p.PathEnv()); prefix != "" {
		return prefix, true
	}
	exe, err := exec.LookPath(p.CompileExe)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(exe)
	if err != nil {
		return "", false
	}
	return filepath.Dir(abs), true
}

// Available reports whether the toolchain can be found.
func (p *Profile) Available() bool {
	_, ok := p.FindPrefix()
	return ok
}
