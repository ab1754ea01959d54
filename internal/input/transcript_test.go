package input

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
)

type keymap map[string]int

func (k keymap) Key(name string) (int, bool) {
	key, ok := k[strings.ToLower(name)]
	return key, ok
}

const testTranscript = `# start the game
0 5 down

2 5 up
1 a down
10 left down
10 left up
`

func TestParse(t *testing.T) {
	transcript, err := Parse(strings.NewReader(testTranscript), keymap{"left": 4})
	assert.NoError(t, err)
	assert.Equal(t, 5, transcript.Len())
	assert.Equal(t, uint64(10), transcript.LastTick())

	events := transcript.events
	assert.Equal(t, uint64(0), events[0].Tick)
	assert.Equal(t, 5, events[0].Key)
	assert.True(t, events[0].Pressed)
	assert.Equal(t, 2, events[0].Line())

	// sorted by tick
	assert.Equal(t, 0xA, events[1].Key)
	assert.Equal(t, uint64(2), events[2].Tick)
	assert.False(t, events[2].Pressed)

	// same tick keeps file order
	assert.Equal(t, 4, events[3].Key)
	assert.True(t, events[3].Pressed)
	assert.False(t, events[4].Pressed)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{"missing field", "0 5", "line 1: expected 3 fields but found 2"},
		{"invalid tick", "# x\n-1 5 down", "line 2: invalid tick '-1'"},
		{"invalid action", "0 5 hold", "invalid action 'hold'"},
		{"unknown key", "0 left down", "unknown key 'left'"},
		{"hex key out of range", "0 g down", "unknown key 'g'"},
		{"slot zero", "0 slot 0", "invalid slot '0'"},
		{"slot name", "0 slot first", "invalid slot 'first'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), nil)
			assert.True(t, err != nil && strings.Contains(err.Error(), tt.err))
			assert.True(t, errors.Is(err, ErrInvalidTranscript))
		})
	}
}

func TestParseResolverOutOfRange(t *testing.T) {
	_, err := Parse(strings.NewReader("0 fire down"), keymap{"fire": 16})
	assert.True(t, err != nil && strings.Contains(err.Error(), "unknown key 'fire'"))
}

type listedKeymap struct {
	keymap
}

func (k listedKeymap) KeyNames() []string {
	return []string{"fire", "left"}
}

func TestParseUnknownKeyListsNames(t *testing.T) {
	_, err := Parse(strings.NewReader("0 jump down"), listedKeymap{keymap{"fire": 5, "left": 4}})
	assert.True(t, err != nil && strings.Contains(err.Error(), "unknown key 'jump', known keys: fire, left"))

	_, err = Parse(strings.NewReader("0 jump down"), keymap{"fire": 5})
	assert.True(t, err != nil && !strings.Contains(err.Error(), "known keys"))
}

func TestApplySlots(t *testing.T) {
	transcript, err := Parse(strings.NewReader("1 slot 2\n0 7 down\n3 SLOT 2\n"), nil)
	assert.NoError(t, err)
	assert.Equal(t, 3, transcript.Len())

	state := chip8.New()
	var slots []int
	var lines []int
	transcript.SetSlotHandler(func(event Event, state *chip8.State) {
		slots = append(slots, event.Slot)
		lines = append(lines, event.Line())
		state.SetKey(event.Slot, true)
	})

	transcript.Apply(1, state)
	assert.True(t, state.Keys[7])
	assert.True(t, state.Keys[2])
	assert.Equal(t, []int{2}, slots)

	transcript.Apply(3, state)
	assert.Equal(t, []int{2, 2}, slots)
	assert.Equal(t, []int{1, 3}, lines)
	assert.Equal(t, 0, transcript.Pending())

	// without a handler slot events are skipped
	transcript, err = Parse(strings.NewReader("0 slot 1\n"), nil)
	assert.NoError(t, err)
	transcript.Apply(0, state)
	assert.Equal(t, 0, transcript.Pending())
}

func TestApply(t *testing.T) {
	transcript, err := Parse(strings.NewReader(testTranscript), keymap{"left": 4})
	assert.NoError(t, err)
	state := chip8.New()

	transcript.Apply(0, state)
	assert.True(t, state.Keys[5])
	assert.False(t, state.Keys[0xA])
	assert.Equal(t, 4, transcript.Pending())

	transcript.Apply(5, state)
	assert.False(t, state.Keys[5])
	assert.True(t, state.Keys[0xA])
	assert.Equal(t, 2, transcript.Pending())

	transcript.Apply(10, state)
	assert.False(t, state.Keys[4])
	assert.Equal(t, 0, transcript.Pending())

	// applied events are not replayed
	state.SetKey(5, true)
	transcript.Apply(10, state)
	assert.True(t, state.Keys[5])
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	assert.NoError(t, os.WriteFile(path, []byte("3 f down\n"), 0600))

	transcript, err := LoadFile(path, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, transcript.Len())
	assert.Equal(t, 0xF, transcript.events[0].Key)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.txt"), nil)
	assert.True(t, err != nil)
}
