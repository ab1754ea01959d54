// Package writer implements the execution trace and machine state report output.
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const dumpBytesPerRow = 16

// Writer writes a disassembled line for every executed instruction and can
// append a report of the final machine state. It implements chip8.Tracer.
type Writer struct {
	options Options
	writer  io.Writer

	lines uint64
	err   error // first write error, tracing stops after it
}

// Options of the writer.
type Options struct {
	Limit uint64 // maximum number of trace lines, 0 means no limit
}

// New creates a new writer.
func New(writer io.Writer, options Options) *Writer {
	return &Writer{
		options: options,
		writer:  writer,
	}
}

// Trace writes a trace line for the instruction at the given address.
func (w *Writer) Trace(pc uint16, op chip8.Opcode, ins *chip8.Instruction) {
	if w.err != nil {
		return
	}
	if w.options.Limit > 0 && w.lines >= w.options.Limit {
		return
	}

	if _, err := fmt.Fprintf(w.writer, "$%04X  %s  %s\n", pc, op, ins.Disassemble(op)); err != nil {
		w.err = fmt.Errorf("writing trace line: %w", err)
		return
	}
	w.lines++
}

// Lines returns the number of trace lines written.
func (w *Writer) Lines() uint64 {
	return w.lines
}

// Err returns the first error that occurred while writing trace lines.
func (w *Writer) Err() error {
	return w.err
}

// WriteCommentHeader writes the ROM name, size and the active quirks as comments.
func (w *Writer) WriteCommentHeader(name string, size int, quirks chip8.Quirks) error {
	if _, err := fmt.Fprintf(w.writer, "; ROM: %s\n", name); err != nil {
		return fmt.Errorf("writing rom name: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Size: %d bytes\n", size); err != nil {
		return fmt.Errorf("writing rom size: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Quirks: loadstore=%t shift=%t\n\n", quirks.LoadStore, quirks.Shift); err != nil {
		return fmt.Errorf("writing quirks: %w", err)
	}
	return nil
}

// WriteState writes the registers, the call stack and the screen of the state as comments.
func (w *Writer) WriteState(state *chip8.State) error {
	if _, err := fmt.Fprintf(w.writer, "\n; PC: $%04X  I: $%04X  SP: %d  DT: %d  ST: %d\n",
		state.PC, state.I, state.SP, state.DelayTimer, state.SoundTimer); err != nil {
		return fmt.Errorf("writing registers: %w", err)
	}
	if _, err := fmt.Fprintf(w.writer, "; Ticks: %d  Steps: %d\n", state.Cycles, state.Steps); err != nil {
		return fmt.Errorf("writing counters: %w", err)
	}

	buf := &strings.Builder{}
	for i, v := range state.V {
		fmt.Fprintf(buf, "V%X=$%02X ", i, v)
	}
	if _, err := fmt.Fprintf(w.writer, "; %s\n", strings.TrimRight(buf.String(), " ")); err != nil {
		return fmt.Errorf("writing v registers: %w", err)
	}

	for i := range int(state.SP) {
		if _, err := fmt.Fprintf(w.writer, "; Stack %2d: $%04X\n", i, state.Stack[i]); err != nil {
			return fmt.Errorf("writing stack: %w", err)
		}
	}

	return w.writeScreen(state)
}

// writeScreen writes every screen row as a comment, set pixels as '#'.
func (w *Writer) writeScreen(state *chip8.State) error {
	if _, err := fmt.Fprintln(w.writer, ";"); err != nil {
		return fmt.Errorf("writing line: %w", err)
	}

	row := make([]byte, chip8.ScreenWidth)
	for y := range chip8.ScreenHeight {
		for x := range chip8.ScreenWidth {
			if state.Pixel(x, y) {
				row[x] = '#'
			} else {
				row[x] = '.'
			}
		}
		if _, err := fmt.Fprintf(w.writer, "; %s\n", row); err != nil {
			return fmt.Errorf("writing screen row: %w", err)
		}
	}
	return nil
}

// WriteMemory writes the memory range as hex dump comments, every row starts
// with the address of its first byte.
func (w *Writer) WriteMemory(state *chip8.State, start, end uint16) error {
	end = min(end, chip8.MaxAddress+1)
	if start >= end {
		return nil
	}

	if _, err := fmt.Fprintf(w.writer, ";\n; Memory $%04X-$%04X\n", start, end-1); err != nil {
		return fmt.Errorf("writing memory header: %w", err)
	}

	buf := &strings.Builder{}
	for address := start; address < end; address += dumpBytesPerRow {
		buf.Reset()
		fmt.Fprintf(buf, "; $%04X ", address)
		for _, b := range state.Memory[address:min(address+dumpBytesPerRow, end)] {
			fmt.Fprintf(buf, " %02X", b)
		}
		if _, err := fmt.Fprintln(w.writer, buf.String()); err != nil {
			return fmt.Errorf("writing memory row: %w", err)
		}
	}
	return nil
}
