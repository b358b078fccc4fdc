package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"simrun/internal/group"
)

// NormalizeArgs lets the subcommand found in args accept single-dash long
// flags ("-seed 3", "-test sanity1") and a detached value for the optional
// -w/--cov flags. Args that do not select a subcommand are returned as is.
func NormalizeArgs(root *cobra.Command, args []string) []string {
	cmd, _, err := root.Find(args)
	if err != nil || cmd == root {
		return args
	}

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.AddFlagSet(cmd.LocalFlags())
	fs.AddFlagSet(cmd.InheritedFlags())
	return group.NormalizeArgs(fs, args)
}
