package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/catalog"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// soundROM draws the glyph of 0, starts the sound timer and loops.
var soundROM = []byte{
	0xA0, 0x00, // ld i, $000
	0xD0, 0x05, // drw v0, v0, 5
	0x61, 0x03, // ld v1, $03
	0xF1, 0x18, // ld st, v1
	0x12, 0x08, // jp $208
}

func testMachine(ticks uint64) options.Machine {
	machine := options.NewMachine()
	machine.Frequency = 1000
	machine.Ticks = ticks
	machine.Seed = 1
	return machine
}

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.True(t, p != nil)
	assert.True(t, p.logger != nil)
	assert.True(t, p.detector != nil)
	assert.True(t, p.loader != nil)
}

func TestExecuteWithROM(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := options.Program{Parameters: options.Parameters{Input: "roms/test.ch8"}}
	trace := &bytes.Buffer{}

	result, err := p.ExecuteWithROM(context.Background(), soundROM, opts, testMachine(3), nil, trace)
	assert.NoError(t, err)

	assert.Equal(t, uint64(3), result.State.Cycles)
	assert.Equal(t, uint64(3*options.DefaultStepsPerTick), result.State.Steps)
	assert.Equal(t, uint64(1), result.Redraws)
	assert.Equal(t, uint64(2), result.SoundTicks)
	assert.Equal(t, uint64(30), result.TraceLines)
	assert.True(t, result.State.Pixel(0, 0))

	output := trace.String()
	assert.True(t, strings.HasPrefix(output, "; ROM: test.ch8\n; Size: 10 bytes\n"))
	assert.True(t, strings.Contains(output, "$0202  D005  drw v0, v0, 5\n"))
	assert.True(t, strings.Contains(output, "$0208  1208  jp $208\n"))
	assert.True(t, strings.Contains(output, "; Ticks: 3  Steps: 30\n"))
	assert.True(t, strings.HasSuffix(output, "; Memory $0200-$0209\n; $0200  A0 00 D0 05 61 03 F1 18 12 08\n"))
}

func TestExecuteWithROMTraceLimit(t *testing.T) {
	p := New(log.NewTestLogger(t))
	opts := options.Program{Parameters: options.Parameters{TraceLimit: 5}}
	trace := &bytes.Buffer{}

	result, err := p.ExecuteWithROM(context.Background(), soundROM, opts, testMachine(3), nil, trace)
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), result.TraceLines)
	assert.Equal(t, 1, strings.Count(trace.String(), "jp $208"))
	assert.True(t, strings.Contains(trace.String(), "; Ticks: 3  Steps: 30\n"))
}

func TestExecuteWithROMQuirks(t *testing.T) {
	p := New(log.NewTestLogger(t))
	entry := &catalog.Entry{
		Title:  "Shifter",
		Quirks: catalog.Quirks{Shift: true},
	}
	machine := testMachine(1)
	machine.Quirks.LoadStore = true

	result, err := p.ExecuteWithROM(context.Background(), []byte{0x12, 0x00}, options.Program{}, machine, entry, nil)
	assert.NoError(t, err)
	assert.Equal(t, chip8.Quirks{LoadStore: true, Shift: true}, result.Quirks)
	assert.Equal(t, result.Quirks, result.State.Quirks)
	assert.Equal(t, "Shifter", result.Entry.Title)
	assert.Equal(t, uint64(0), result.TraceLines)
}

func TestExecuteWithROMTooLarge(t *testing.T) {
	p := New(log.NewTestLogger(t))
	rom := make([]byte, chip8.MemorySize-chip8.ProgramStart+1)

	result, err := p.ExecuteWithROM(context.Background(), rom, options.Program{}, testMachine(1), nil, nil)
	assert.True(t, errors.Is(err, chip8.ErrROMTooLarge))
	assert.True(t, result == nil)
}

func TestExecuteWithROMTranscript(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "input.txt")
	assert.NoError(t, os.WriteFile(transcript, []byte("# press fire\n2 fire down\n"), 0600))

	p := New(log.NewTestLogger(t))
	opts := options.Program{Parameters: options.Parameters{Transcript: transcript}}
	entry := &catalog.Entry{Keymap: map[string]int{"fire": 5}}
	rom := []byte{
		0xF0, 0x0A, // ld v0, k
		0x12, 0x02, // jp $202
	}

	result, err := p.ExecuteWithROM(context.Background(), rom, opts, testMachine(4), entry, nil)
	assert.NoError(t, err)
	assert.Equal(t, byte(5), result.State.V[0])
	assert.Equal(t, uint16(0x202), result.State.PC)
	assert.True(t, result.State.Keys[5])

	// host key names need a catalog entry
	_, err = p.ExecuteWithROM(context.Background(), rom, opts, testMachine(4), nil, nil)
	assert.True(t, err != nil && strings.Contains(err.Error(), "unknown key 'fire'"))
}

func TestExecuteWithROMSlots(t *testing.T) {
	dir := t.TempDir()
	transcript := filepath.Join(dir, "input.txt")
	data := "# save after the first tick, load it two ticks later\n1 slot 2\n1 slot 1\n3 slot 1\n"
	assert.NoError(t, os.WriteFile(transcript, []byte(data), 0600))

	p := New(log.NewTestLogger(t))
	opts := options.Program{Parameters: options.Parameters{Transcript: transcript}}
	rom := []byte{
		0x70, 0x01, // add v0, $01
		0x12, 0x00, // jp $200
	}

	result, err := p.ExecuteWithROM(context.Background(), rom, opts, testMachine(5), nil, nil)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, result.Slots)

	// 5 ticks ran, the load at tick 3 rewound the machine to the end of tick 1
	assert.Equal(t, uint64(3), result.State.Cycles)
	assert.Equal(t, uint64(3*options.DefaultStepsPerTick), result.State.Steps)
	assert.Equal(t, byte(15), result.State.V[0])
}

func TestExecuteWithROMFatalError(t *testing.T) {
	p := New(log.NewTestLogger(t))
	trace := &bytes.Buffer{}

	result, err := p.ExecuteWithROM(context.Background(), []byte{0xFF, 0xFF}, options.Program{}, testMachine(0), nil, trace)
	assert.True(t, errors.Is(err, chip8.ErrUnknownOpcode))
	assert.True(t, result != nil)
	assert.Equal(t, uint64(0), result.State.Cycles)
	assert.True(t, strings.Contains(trace.String(), "; PC: $0200"))
}

func TestExecuteWithROMCanceled(t *testing.T) {
	p := New(log.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ExecuteWithROM(ctx, []byte{0x12, 0x00}, options.Program{}, testMachine(0), nil, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	romFile := filepath.Join(dir, "pong.ch8")
	assert.NoError(t, os.WriteFile(romFile, []byte{0x12, 0x00}, 0600))

	catalogFile := filepath.Join(dir, "roms.json")
	catalogData := `[{"title": "Pong", "filename": "PONG.ch8", "quirks": {"loadStore": true}}]`
	assert.NoError(t, os.WriteFile(catalogFile, []byte(catalogData), 0600))

	memvizFile := filepath.Join(dir, "state.dot")

	p := New(log.NewTestLogger(t))
	opts := options.Program{
		Parameters: options.Parameters{
			Input:   romFile,
			Catalog: catalogFile,
			MemViz:  memvizFile,
		},
	}

	result, err := p.Execute(context.Background(), opts, testMachine(2), nil)
	assert.NoError(t, err)
	assert.Equal(t, "Pong", result.Entry.Title)
	assert.True(t, result.Quirks.LoadStore)
	assert.Equal(t, uint64(2), result.State.Cycles)

	data, err := os.ReadFile(memvizFile)
	assert.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("digraph")))
}

func TestExecuteErrors(t *testing.T) {
	dir := t.TempDir()
	romFile := filepath.Join(dir, "game.ch8")
	assert.NoError(t, os.WriteFile(romFile, []byte{0x12, 0x00}, 0600))

	tests := []struct {
		name string
		opts options.Program
		err  string
	}{
		{
			name: "missing ROM",
			opts: options.Program{Parameters: options.Parameters{Input: filepath.Join(dir, "missing.ch8")}},
			err:  "loading ROM",
		},
		{
			name: "missing catalog",
			opts: options.Program{Parameters: options.Parameters{
				Input:   romFile,
				Catalog: filepath.Join(dir, "missing.json"),
			}},
			err: "loading catalog",
		},
		{
			name: "missing transcript",
			opts: options.Program{Parameters: options.Parameters{
				Input:      romFile,
				Transcript: filepath.Join(dir, "missing.txt"),
			}},
			err: "loading input transcript",
		},
	}

	p := New(log.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Execute(context.Background(), tt.opts, testMachine(1), nil)
			assert.True(t, err != nil && strings.Contains(err.Error(), tt.err))
		})
	}
}

func TestLogListener(t *testing.T) {
	l := newLogListener(log.NewTestLogger(t))
	l.Redraw(make([]byte, chip8.ScreenSize))
	l.PlaySound()
	l.PlaySound()
	l.StopSound()
	l.StopSound()

	assert.Equal(t, uint64(1), l.redraws)
	assert.Equal(t, uint64(2), l.soundTicks)
	assert.False(t, l.playing)
}

func TestFormatQuirks(t *testing.T) {
	assert.Equal(t, "none", formatQuirks(chip8.Quirks{}))
	assert.Equal(t, "shift", formatQuirks(chip8.Quirks{Shift: true}))
	assert.Equal(t, "loadstore", formatQuirks(chip8.Quirks{LoadStore: true}))
	assert.Equal(t, "loadstore,shift", formatQuirks(chip8.Quirks{LoadStore: true, Shift: true}))
}
