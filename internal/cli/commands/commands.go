package commands

import (
	"errors"
	"fmt"
	"os"

	"simrun/internal/cli"
	"simrun/internal/config"
	"simrun/internal/ctxlog"
	"simrun/internal/discovery"
	"simrun/internal/domain"
	"simrun/internal/migration"
	"simrun/internal/storage"
	"simrun/internal/ui"

	"github.com/spf13/cobra"
)

// ErrFailures is returned when a run or check finished with failing
// instances, so the process exits non-zero.
var ErrFailures = errors.New("regression has failing instances")

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Check   *CheckCommand
	Migrate *MigrateCommand
	Fails   *FailsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	filter := discovery.NewFilter()
	classFinder := discovery.NewClassFinder()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter()
	dbManager := migration.NewDatabaseManager(cfg.DBDSN)
	migrator := migration.NewSchemaMigrator(dbManager)

	return &Commands{
		Run:     NewRunCommand(cfg, jsonStorage, formatter),
		List:    NewListCommand(cfg, filter, classFinder, formatter, jsonStorage),
		Check:   NewCheckCommand(cfg, jsonStorage, formatter),
		Migrate: NewMigrateCommand(cfg, migrator),
		Fails:   NewFailsCommand(cfg, jsonStorage),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flags.LogFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger := ctxlog.New(flags.LogLevel, flags.LogFormat, os.Stderr)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Compile and simulate a testcase or a test group",
		Long: "Resolve the build, generate the compile and simulate scripts and run them. " +
			"Give a testcase with -t or a test group with -g.",
		Args: cobra.NoArgs,
		RunE: c.Run.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			fs := cmd.Flags()
			flags.SeedGiven = fs.Changed("seed")
			flags.RepeatGiven = fs.Changed("repeat")
			flags.WaveGiven = fs.Changed("wave")
			flags.CoverageGiven = fs.Changed("cov")
			if flags.RepeatGiven && flags.Repeat < 1 {
				return fmt.Errorf("--repeat must be at least 1, got %d", flags.Repeat)
			}
			cfg.Apply(flags.ToConfigFlags())
			if cfg.Flags.Test == "" && cfg.Flags.Group == "" {
				return errors.New("give a testcase (-t) or a test group (-g)")
			}
			if cfg.Flags.Test != "" && cfg.Flags.Group != "" {
				return errors.New("-t and -g are mutually exclusive")
			}
			if cfg.Flags.CompileOnly && cfg.Flags.SimOnly {
				return errors.New("--compile-only and --sim-only are mutually exclusive")
			}
			return nil
		},
	}
	rf := runCmd.Flags()
	rf.StringVarP(&flags.Test, "test", "t", "", "Testcase to run")
	rf.StringVarP(&flags.Group, "group", "g", "", "Test group to run")
	rf.StringVarP(&flags.Build, "build", "b", config.DefaultBuild, "Build to compile")
	rf.Uint32Var(&flags.Seed, "seed", 0, "Random seed, 0 draws one per repeat")
	rf.IntVarP(&flags.Repeat, "repeat", "r", config.DefaultRepeat, "Number of seeds to run per testcase")
	rf.StringVarP(&flags.Wave, "wave", "w", "", "Dump waveform (default, vpd, fsdb, shm, gui, debug)")
	rf.Lookup("wave").NoOptDefVal = domain.WaveDefault
	rf.StringVar(&flags.Coverage, "cov", "", "Collect coverage (all, covfile or a metric list)")
	rf.Lookup("cov").NoOptDefVal = domain.CoverageAll
	rf.StringVar(&flags.DebugIDs, "dp", "", "Comma separated UVM ids raised to UVM_DEBUG")
	rf.StringArrayVar(&flags.CompileOptions, "co", nil, "Extra compile option (repeatable)")
	rf.StringArrayVar(&flags.SimOptions, "so", nil, "Extra simulate option (repeatable)")
	rf.BoolVarP(&flags.Unique, "unique", "u", false, "Place the build directory directly under the work directory")
	rf.StringVar(&flags.Prefix, "prefix", "", "Prefix for the testcase or group directory")
	rf.BoolVar(&flags.Clean, "clean", false, "Remove the build directory before generating scripts")
	rf.BoolVar(&flags.CompileOnly, "compile-only", false, "Only compile")
	rf.BoolVar(&flags.SimOnly, "sim-only", false, "Only simulate, reuse the existing build")
	rf.BoolVar(&flags.LSF, "lsf", false, "Submit commands with bsub -Is")
	rf.StringArrayVar(&flags.LSFOptions, "lsf-option", nil, "Extra bsub option (repeatable)")
	rf.DurationVar(&flags.CompileTimeout, "compile-timeout", 0, "Compile timeout (default 30m)")
	rf.DurationVar(&flags.SimTimeout, "sim-timeout", 0, "Simulate timeout per instance (default 1h)")
	rf.StringVar(&flags.BuildFile, "build-file", "", "Build configuration file")
	rf.StringVar(&flags.GroupFile, "group-file", "", "Test group configuration file")
	rf.BoolVar(&flags.NoProgress, "no-progress", false, "Do not show the progress bar")
	rf.BoolVar(&flags.FailFast, "fail-fast", false, "Stop on the first failing instance")
	rf.BoolVar(&flags.OpenFails, "open-fails", false, "Open the fails viewer when the run finishes with failures")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:       "list [tests|builds|groups]",
		Short:     "List testcases, builds or test groups",
		Long:      "Print the testcases found under the test root, or the builds and groups of the configuration files",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{listTests, listBuilds, listGroups},
		RunE:      c.List.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Apply(flags.ToConfigFlags())
			return nil
		},
	}
	lf := listCmd.Flags()
	lf.StringVarP(&flags.NameFilter, "filter", "f", "", "Filter by name pattern (supports wildcards, e.g. 'uart_*' or '*smoke*')")
	lf.BoolVarP(&flags.TestCases, "test-cases", "c", false, "List the UVM test classes of each testcase")
	lf.StringVarP(&flags.Build, "build", "b", config.DefaultBuild, "Build whose test root is listed")
	lf.StringVar(&flags.BuildFile, "build-file", "", "Build configuration file")
	lf.StringVar(&flags.GroupFile, "group-file", "", "Test group configuration file")
	rootCmd.AddCommand(listCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Classify existing simulation logs",
		Long:  "Walk dir (default the work directory) and classify every sim.log without running anything",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Check.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Apply(flags.ToConfigFlags())
			return nil
		},
	}
	checkCmd.Flags().StringVar(&flags.BuildFile, "build-file", "", "Build configuration file")
	checkCmd.Flags().BoolVar(&flags.OpenFails, "open-fails", false, "Open the fails viewer when failures are found")
	rootCmd.AddCommand(checkCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the MySQL results schema",
		Long:  "Create the database named in SIMRUN_DB_DSN if needed and apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE:  c.Migrate.Execute,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Apply(flags.ToConfigFlags())
			return nil
		},
	}
	migrateCmd.Flags().BoolVar(&flags.Fresh, "fresh", false, "Drop all tables before migrating")
	rootCmd.AddCommand(migrateCmd)

	// Fails command
	failsCmd := &cobra.Command{
		Use:   "fails",
		Short: "View failures interactively",
		Long:  "Display the failing instances of the last run in an interactive viewer",
		Args:  cobra.NoArgs,
		RunE:  c.Fails.Execute,
	}
	rootCmd.AddCommand(failsCmd)
}
