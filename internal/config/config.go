package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for one invocation
type Config struct {
	// Project layout
	ProjectRoot string
	WorkDir     string
	TestDir     string
	ReportDir   string

	// Active simulator name (vcs, irun)
	Simulator string

	CompileTimeout time.Duration
	SimTimeout     time.Duration

	ResultsFile string
	DBDSN       string

	// Command flags
	Flags Flags
}

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
}

// New creates a new Config with defaults rooted at the current directory
func New() *Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return newRooted(root)
}

func newRooted(root string) *Config {
	return &Config{
		ProjectRoot:    root,
		WorkDir:        filepath.Join(root, "work"),
		TestDir:        filepath.Join(root, "testcases"),
		ReportDir:      filepath.Join(root, "report"),
		Simulator:      DefaultSimulator,
		CompileTimeout: DefaultCompileTimeout,
		SimTimeout:     DefaultSimTimeout,
		ResultsFile:    DefaultResultsFile,
		Flags:          Flags{Build: DefaultBuild, Repeat: DefaultRepeat},
	}
}

// Load reads the environment, after loading $SIMRUN_ROOT/.env. Variables
// already present in the environment win over the .env file.
func Load() (*Config, error) {
	root := os.Getenv(EnvRoot)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve project root: %w", err)
		}
		root = wd
	}
	root = os.ExpandEnv(root)

	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	cfg := newRooted(root)
	if v := os.Getenv(EnvSimulator); v != "" {
		cfg.Simulator = v
	}
	if v := os.Getenv(EnvWorkDir); v != "" {
		cfg.WorkDir = os.ExpandEnv(v)
	}
	if v := os.Getenv(EnvTestDir); v != "" {
		cfg.TestDir = os.ExpandEnv(v)
	}
	if v := os.Getenv(EnvReportDir); v != "" {
		cfg.ReportDir = os.ExpandEnv(v)
	}
	cfg.DBDSN = os.Getenv(EnvDBDSN)
	return cfg, nil
}

// Apply copies flags into the config and applies flag overrides.
func (c *Config) Apply(flags Flags) {
	c.Flags = flags
	if flags.CompileTimeout > 0 {
		c.CompileTimeout = flags.CompileTimeout
	}
	if flags.SimTimeout > 0 {
		c.SimTimeout = flags.SimTimeout
	}
	if c.Flags.Build == "" {
		c.Flags.Build = DefaultBuild
	}
	if c.Flags.Repeat < 1 {
		c.Flags.Repeat = DefaultRepeat
	}
}

// EtcPath returns a path under the project's etc directory
func (c *Config) EtcPath(name string) string {
	return filepath.Join(c.ProjectRoot, "etc", name)
}

// BuildFilePath returns the build configuration file: the --build-file flag,
// then etc/build_<simulator>.*, then etc/build.*.
func (c *Config) BuildFilePath() (string, error) {
	if c.Flags.BuildFile != "" {
		return existing(c.Flags.BuildFile)
	}
	if p, ok := c.findEtc("build_" + c.Simulator); ok {
		return p, nil
	}
	if p, ok := c.findEtc("build"); ok {
		return p, nil
	}
	return "", fmt.Errorf("no build file found under %s", c.EtcPath(""))
}

// GroupFilePath returns the group configuration file: the --group-file flag,
// then etc/group.*.
func (c *Config) GroupFilePath() (string, error) {
	if c.Flags.GroupFile != "" {
		return existing(c.Flags.GroupFile)
	}
	if p, ok := c.findEtc("group"); ok {
		return p, nil
	}
	return "", fmt.Errorf("no group file found under %s", c.EtcPath(""))
}

func (c *Config) findEtc(stem string) (string, bool) {
	for _, ext := range ConfigExtensions {
		p := c.EtcPath(stem + ext)
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

// DumpScriptPath returns the project default wave dump script for a kind
// ("shm" or "fsdb"), or "" if it does not exist.
func (c *Config) DumpScriptPath(kind string) string {
	p := c.EtcPath(kind + "_dump.tcl")
	if isFile(p) {
		return p
	}
	return ""
}

// CovFilePath returns etc/covfile.ccf or "" if it does not exist.
func (c *Config) CovFilePath() string {
	p := c.EtcPath("covfile.ccf")
	if isFile(p) {
		return p
	}
	return ""
}

// TopFileListPath returns etc/top.f or "" if it does not exist.
func (c *Config) TopFileListPath() string {
	p := c.EtcPath("top.f")
	if isFile(p) {
		return p
	}
	return ""
}

// GetResultsPath returns the absolute path of the JSON run report.
func (c *Config) GetResultsPath() string {
	p := filepath.Join(c.ReportDir, c.ResultsFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func existing(p string) (string, error) {
	if !isFile(p) {
		return "", fmt.Errorf("%s does not exist", p)
	}
	return p, nil
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
