// Package options contains the program options.
package options

import (
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/scheduler"
)

// Default machine settings.
const (
	DefaultFrequency    = scheduler.DefaultFrequency    // ticks per second
	DefaultStepsPerTick = scheduler.DefaultStepsPerTick // instructions per tick
)

// Parameters contains file path options.
type Parameters struct {
	Input      string `flag:"i" usage:"input ROM file"`
	Catalog    string `flag:"catalog" usage:"ROM catalog JSON file with per ROM quirks and keymaps"`
	Transcript string `flag:"input" usage:"key input transcript to replay"`
	Trace      string `flag:"trace" usage:"write an execution trace to this file"`
	TraceLimit uint64 `flag:"trace-limit" usage:"maximum number of trace lines, 0 means no limit"`
	MemViz     string `flag:"memviz" usage:"write a graphviz dump of the final machine state to this file"`
}

// Flags contains behavior options.
type Flags struct {
	System    string `flag:"s" usage:"target system: chip8 (default: auto-detect)"`
	StatsView bool   `flag:"statsview" usage:"launch the runtime statistics server"`
	Debug     bool   `flag:"debug" usage:"enable debug logging"`
	Quiet     bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the runner.
type Program struct {
	Parameters
	Flags
}

// Machine defines options to control the virtual machine and its scheduler.
type Machine struct {
	Frequency    int    // scheduler ticks per second
	StepsPerTick int    // instructions executed per tick
	Ticks        uint64 // stop after this many ticks, 0 runs until stopped
	Seed         int64  // random seed for the rnd instruction, 0 picks a random seed

	Quirks chip8.Quirks
}

// NewMachine returns a new machine options instance with default options.
func NewMachine() Machine {
	return Machine{
		Frequency:    DefaultFrequency,
		StepsPerTick: DefaultStepsPerTick,
	}
}
