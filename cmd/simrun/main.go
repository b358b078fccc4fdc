package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"simrun/internal/cli"
	"simrun/internal/cli/commands"
	"simrun/internal/config"
	"simrun/internal/domain"
	"simrun/internal/ui"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "simrun",
		Short: "Regression runner for HDL simulators",
		Long: `Resolve build and test group configuration into compile and simulate scripts ` +
			`for vcs or irun, run them and classify the simulation logs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Load environment and .env defaults
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies and register them
	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	rootCmd.SetArgs(cli.NormalizeArgs(rootCmd, os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		report(err)
		return 1
	}
	return 0
}

func report(err error) {
	formatter := ui.NewFormatter()

	var unknown *domain.UnknownNameError
	if errors.As(err, &unknown) {
		formatter.PrintUnknown(unknown)
		return
	}
	var compile *domain.CompileError
	if errors.As(err, &compile) {
		formatter.PrintCompileFailure(compile)
		return
	}
	if errors.Is(err, commands.ErrFailures) {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
