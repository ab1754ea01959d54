package fileprocessor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func testMachine() options.Machine {
	machine := options.NewMachine()
	machine.Frequency = 1000
	machine.Ticks = 2
	machine.Seed = 1
	return machine
}

func TestProcessFileTrace(t *testing.T) {
	dir := t.TempDir()
	romFile := filepath.Join(dir, "maze.ch8")
	assert.NoError(t, os.WriteFile(romFile, []byte{0x6A, 0x02, 0x12, 0x00}, 0600))
	traceFile := filepath.Join(dir, "maze.trace")

	opts := options.Program{
		Parameters: options.Parameters{
			Input: romFile,
			Trace: traceFile,
		},
	}

	result, err := ProcessFile(context.Background(), log.NewTestLogger(t), opts, testMachine())
	assert.NoError(t, err)
	assert.Equal(t, uint64(2), result.State.Cycles)
	assert.Equal(t, byte(0x02), result.State.V[0xA])

	data, err := os.ReadFile(traceFile)
	assert.NoError(t, err)
	output := string(data)
	assert.True(t, strings.HasPrefix(output, "; ROM: maze.ch8\n"))
	assert.True(t, strings.Contains(output, "$0200  6A02  ld va, $02\n"))
	assert.True(t, strings.Contains(output, "$0202  1200  jp $200\n"))
}

func TestProcessFileWithoutTrace(t *testing.T) {
	dir := t.TempDir()
	romFile := filepath.Join(dir, "loop.ch8")
	assert.NoError(t, os.WriteFile(romFile, []byte{0x12, 0x00}, 0600))

	opts := options.Program{Parameters: options.Parameters{Input: romFile}}
	result, err := ProcessFile(context.Background(), log.NewTestLogger(t), opts, testMachine())
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), result.TraceLines)
}

func TestProcessFileErrors(t *testing.T) {
	dir := t.TempDir()
	logger := log.NewTestLogger(t)

	opts := options.Program{Parameters: options.Parameters{Input: filepath.Join(dir, "missing.ch8")}}
	_, err := ProcessFile(context.Background(), logger, opts, testMachine())
	assert.True(t, err != nil && strings.Contains(err.Error(), "loading ROM"))

	opts.Trace = filepath.Join(dir, "missing", "out.trace")
	_, err = ProcessFile(context.Background(), logger, opts, testMachine())
	assert.True(t, err != nil && strings.Contains(err.Error(), "creating trace file"))
}

func TestPrintBanner(t *testing.T) {
	logger := log.NewTestLogger(t)
	PrintBanner(logger, options.Program{}, "1.0.0", "abcdef1234", "2024-01-01")
	PrintBanner(logger, options.Program{Flags: options.Flags{Quiet: true}}, "dev", "", "")
}
