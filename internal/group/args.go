package group

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"simrun/internal/domain"
)

// optionalValue lists the flags whose value may be omitted. A following
// token that is not a flag is taken as their value.
var optionalValue = map[string]bool{"wave": true, "w": true, "cov": true}

// NormalizeArgs rewrites single-dash long names ("-seed 3") into the
// double-dash form pflag expects and attaches a separate value to flags in
// fs whose value is optional ("-w fsdb" becomes "-w=fsdb").
func NormalizeArgs(fs *pflag.FlagSet, args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			out = append(out, arg)
			continue
		}

		dashes := "-"
		name := strings.TrimPrefix(arg, "-")
		if strings.HasPrefix(name, "-") {
			dashes, name = "--", name[1:]
		}
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}

		long := len(name) > 1 && fs.Lookup(name) != nil
		if long {
			dashes = "--"
		}
		if !hasValue && optionalValue[name] && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			value, hasValue = args[i+1], true
			i++
		}
		if hasValue {
			out = append(out, dashes+name+"="+value)
		} else {
			out = append(out, dashes+name)
		}
	}
	return out
}

type argFlags struct {
	seed   uint32
	repeat int
	wave   string
	cov    string
	dp     []string
	co     []string
	so     []string
}

func newArgFlagSet(f *argFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet("inline", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Uint32Var(&f.seed, "seed", 0, "random seed, 0 for a random seed per repeat")
	fs.IntVarP(&f.repeat, "repeat", "r", 1, "number of seeds to run")
	fs.StringVarP(&f.wave, "wave", "w", "", "dump waveform")
	fs.Lookup("wave").NoOptDefVal = domain.WaveDefault
	fs.StringVar(&f.cov, "cov", "", "collect coverage")
	fs.Lookup("cov").NoOptDefVal = domain.CoverageAll
	fs.StringSliceVar(&f.dp, "dp", nil, "uvm ids raised to UVM_DEBUG")
	fs.StringArrayVar(&f.co, "co", nil, "extra compile option")
	fs.StringArrayVar(&f.so, "so", nil, "extra simulate option")
	return fs
}

// ParseArgs applies the inline arguments of a group test entry on top of
// base. Only the flags present in args change the result, and scalar
// options pinned in base keep their command-line value. Compile and
// simulate options are appended.
func ParseArgs(base domain.RunOptions, args []string) (domain.RunOptions, error) {
	opts := base.Clone()
	if len(args) == 0 {
		return opts, nil
	}

	var f argFlags
	fs := newArgFlagSet(&f)
	if err := fs.Parse(NormalizeArgs(fs, args)); err != nil {
		return opts, fmt.Errorf("inline args %q: %w", strings.Join(args, " "), err)
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("inline args %q: unexpected argument %q", strings.Join(args, " "), fs.Arg(0))
	}

	if fs.Changed("repeat") && f.repeat < 1 {
		return opts, fmt.Errorf("inline args %q: repeat must be at least 1, got %d", strings.Join(args, " "), f.repeat)
	}

	if fs.Changed("seed") && !opts.Pinned.Seed {
		opts.Seed = f.seed
		opts.SeedGiven = true
	}
	if fs.Changed("repeat") && !opts.Pinned.Repeat {
		opts.Repeat = f.repeat
	}
	if fs.Changed("wave") && !opts.Pinned.Wave {
		opts.Wave = f.wave
	}
	if fs.Changed("cov") && !opts.Pinned.Coverage {
		opts.Coverage = f.cov
	}
	if fs.Changed("dp") {
		opts.DebugIDs = append(opts.DebugIDs, f.dp...)
	}
	opts.CompileOptions = append(opts.CompileOptions, f.co...)
	opts.SimOptions = append(opts.SimOptions, f.so...)
	return opts, nil
}
