// Package memviz writes a graphviz representation of the machine state.
package memviz

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"
	"github.com/retroenv/retrochip8/internal/catalog"
	"github.com/retroenv/retrochip8/internal/chip8"
)

// Machine is the part of the machine state that is included in the graph.
// Memory and screen are left out, they would add thousands of nodes.
type Machine struct {
	Registers *Registers
	Timers    *Timers
	Stack     []uint16
	Keys      []int
	Quirks    *chip8.Quirks
	ROM       *catalog.Entry
}

// Registers contains the CPU registers.
type Registers struct {
	V  [chip8.RegisterCount]byte
	I  uint16
	PC uint16
	SP uint16
}

// Timers contains the timers and counters.
type Timers struct {
	Delay  uint8
	Sound  uint8
	Ticks  uint64
	Steps  uint64
	Redraw bool
}

// NewMachine returns the graph view of the state. The catalog entry is optional.
func NewMachine(state *chip8.State, entry *catalog.Entry) *Machine {
	m := &Machine{
		Registers: &Registers{
			V:  state.V,
			I:  state.I,
			PC: state.PC,
			SP: state.SP,
		},
		Timers: &Timers{
			Delay:  state.DelayTimer,
			Sound:  state.SoundTimer,
			Ticks:  state.Cycles,
			Steps:  state.Steps,
			Redraw: state.Redraw,
		},
		Stack: append([]uint16(nil), state.Stack[:state.SP]...),
		ROM:   entry,
	}

	quirks := state.Quirks
	m.Quirks = &quirks

	for key, pressed := range state.Keys {
		if pressed {
			m.Keys = append(m.Keys, key)
		}
	}
	return m
}

// Write writes the graph of the state in dot format.
func Write(writer io.Writer, state *chip8.State, entry *catalog.Entry) {
	memviz.Map(writer, NewMachine(state, entry))
}

// WriteFile writes the graph of the state in dot format to the given file.
func WriteFile(path string, state *chip8.State, entry *catalog.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	Write(file, state, entry)

	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	return nil
}
