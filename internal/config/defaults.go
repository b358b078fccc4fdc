package config

import "time"

const (
	// DefaultSimulator is used when SIMRUN_SIMULATOR is unset
	DefaultSimulator = "vcs"
	// DefaultBuild is the build used when none is given on the command line
	DefaultBuild = "default"
	// DefaultCompileTimeout bounds one compile command chain
	DefaultCompileTimeout = 1800 * time.Second
	// DefaultSimTimeout bounds one simulate command chain
	DefaultSimTimeout = 3600 * time.Second
	// DefaultRepeat is the number of seeds per test
	DefaultRepeat = 1
	// DefaultResultsFile is the run report name under the report dir
	DefaultResultsFile = "results.json"
)

// Environment variables read by Load.
const (
	EnvRoot      = "SIMRUN_ROOT"
	EnvSimulator = "SIMRUN_SIMULATOR"
	EnvWorkDir   = "WORK_DIR"
	EnvTestDir   = "TEST_DIR"
	EnvReportDir = "REPORT_DIR"
	EnvDBDSN     = "SIMRUN_DB_DSN"
)

// ConfigExtensions are tried in order when looking up build and group files.
var ConfigExtensions = []string{".cfg", ".hcl", ".yaml", ".yml"}
