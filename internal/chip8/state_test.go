package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestInitialize(t *testing.T) {
	state := New()
	state.V[3] = 0x12
	state.I = 0x345
	state.PC = 0x456
	state.SP = 2
	state.DelayTimer = 9
	state.Screen[10] = 1
	state.Redraw = true
	state.Keys[4] = true
	state.Quirks = Quirks{LoadStore: true, Shift: true}
	state.Memory[0x300] = 0xAB
	state.Steps = 100

	state.Initialize()
	state.Initialize()

	assert.Equal(t, [RegisterCount]byte{}, state.V)
	assert.Equal(t, uint16(0), state.I)
	assert.Equal(t, uint16(ProgramStart), state.PC)
	assert.Equal(t, uint16(0), state.SP)
	assert.Equal(t, uint8(0), state.DelayTimer)
	assert.Equal(t, byte(0), state.Screen[10])
	assert.False(t, state.Redraw)
	assert.False(t, state.Keys[4])
	assert.Equal(t, Quirks{}, state.Quirks)
	assert.Equal(t, byte(0), state.Memory[0x300])
	assert.Equal(t, uint64(0), state.Steps)
	assert.Equal(t, fontSet[:], state.Memory[:len(fontSet)])
}

func TestLoadROM(t *testing.T) {
	state := New()
	assert.NoError(t, state.LoadROM([]byte{0x12, 0x34, 0x56}))
	assert.Equal(t, []byte{0x12, 0x34, 0x56}, state.Memory[ProgramStart:ProgramStart+3])

	full := make([]byte, MemorySize-ProgramStart)
	full[len(full)-1] = 0xEE
	assert.NoError(t, state.LoadROM(full))
	assert.Equal(t, byte(0xEE), state.Memory[MaxAddress])
}

func TestLoadROMTooLarge(t *testing.T) {
	state := New()
	data := make([]byte, MemorySize-ProgramStart+1)
	for i := range data {
		data[i] = 0xFF
	}

	err := state.LoadROM(data)
	assert.True(t, errors.Is(err, ErrROMTooLarge))
	for _, b := range state.Memory[ProgramStart:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestSetKey(t *testing.T) {
	state := New()
	state.SetKey(0xF, true)
	state.SetKey(16, true)
	state.SetKey(-1, true)

	assert.True(t, state.Keys[0xF])
	state.SetKey(0xF, false)
	assert.False(t, state.Keys[0xF])
}

func TestPixel(t *testing.T) {
	state := New()
	state.Screen[ScreenWidth+1] = 1

	assert.True(t, state.Pixel(1, 1))
	assert.False(t, state.Pixel(0, 1))
	assert.False(t, state.Pixel(ScreenWidth, 0))
	assert.False(t, state.Pixel(-1, 0))
	assert.Equal(t, ScreenSize, len(state.ScreenBuffer()))
}
