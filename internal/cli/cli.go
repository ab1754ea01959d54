// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program and machine options
func ParseFlags() (options.Program, options.Machine, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	machine := options.NewMachine()
	readOptionFlags(flags, &opts)
	readMachineFlags(flags, &machine)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, machine, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, machine, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, machine, err
	}

	if err := config.ValidateMachine(machine); err != nil {
		return opts, machine, fmt.Errorf("validating machine options: %w", err)
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}

	return opts, machine, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.System = strings.ToLower(opts.System)
	if opts.System == "" {
		return nil
	}

	if _, ok := detector.SystemFromString(opts.System); !ok {
		return fmt.Errorf("unsupported system: %s. Valid options: %s",
			opts.System, strings.Join(detector.Systems(), ", "))
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Catalog, "catalog", "", "ROM catalog JSON file to read title, quirks and keymap from")
	flags.StringVar(&opts.Transcript, "input", "", "key input transcript to replay, lines of '<tick> <key> <down|up>' or '<tick> slot <n>'")
	flags.StringVar(&opts.Trace, "trace", "", "write a disassembled execution trace to the given file")
	flags.Uint64Var(&opts.TraceLimit, "trace-limit", 0, "maximum number of instruction trace lines, 0 means no limit")
	flags.StringVar(&opts.MemViz, "memviz", "", "write a graphviz dot file of the machine state after the run")
	flags.StringVar(&opts.System, "s", "", "system of the ROM (chip8) - if not auto-detected from file extension")
	flags.BoolVar(&opts.StatsView, "statsview", false, "launch a local runtime statistics server (requires statsview build tag)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readMachineFlags(flags *flag.FlagSet, opts *options.Machine) {
	flags.IntVar(&opts.Frequency, "hz", options.DefaultFrequency, "scheduler ticks per second, timers decrement once per tick")
	flags.IntVar(&opts.StepsPerTick, "steps", options.DefaultStepsPerTick, "instructions executed per tick")
	flags.Uint64Var(&opts.Ticks, "ticks", 0, "stop after the given number of ticks, 0 runs until interrupted")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed for the rnd instruction, 0 uses a random seed")
	flags.BoolVar(&opts.Quirks.LoadStore, "quirk-loadstore", false, "do not increment I on register block load and store")
	flags.BoolVar(&opts.Quirks.Shift, "quirk-shift", false, "shift instructions operate on VX instead of VY")
}
