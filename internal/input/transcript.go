// Package input replays scripted keypad input. A transcript is a text file
// with one event per line:
//
//	# comment
//	<tick> <key> <down|up>
//	<tick> slot <n>
//
// The key is a hexadecimal keypad digit or a host key name that is resolved
// through a key resolver, for example a catalog entry keymap. A slot line
// presses the save/load button of the numbered snapshot slot.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

const (
	fieldTick int = iota
	fieldKey
	fieldAction
	numFields
)

const (
	actionDown  = "down"
	actionUp    = "up"
	keywordSlot = "slot"
)

// ErrInvalidTranscript is returned for malformed transcript lines.
var ErrInvalidTranscript = errors.New("invalid transcript")

// KeyResolver maps a host key name to a keypad key.
type KeyResolver interface {
	Key(name string) (int, bool)
}

// keyLister is implemented by resolvers that can list their key names.
type keyLister interface {
	KeyNames() []string
}

// Event is a single key state change or snapshot slot action that is applied
// before the tick with the given number executes.
type Event struct {
	Tick    uint64
	Key     int
	Pressed bool
	Slot    int // snapshot slot, 0 for key events

	line int
}

// SlotHandler performs the snapshot slot action of an event.
type SlotHandler func(event Event, state *chip8.State)

// Transcript is a sequence of events ordered by tick.
type Transcript struct {
	events []Event
	next   int
	onSlot SlotHandler
}

// LoadFile reads a transcript file. The resolver can be nil, in which case
// only hexadecimal keys are accepted.
func LoadFile(path string, resolver KeyResolver) (*Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return Parse(file, resolver)
}

// Parse reads a transcript from the reader.
func Parse(reader io.Reader, resolver KeyResolver) (*Transcript, error) {
	t := &Transcript{}

	scanner := bufio.NewScanner(reader)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		event, err := parseEvent(text, resolver)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidTranscript, line, err)
		}
		event.line = line
		t.events = append(t.events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	// events of the same tick keep the order of the file
	sort.SliceStable(t.events, func(i, j int) bool {
		return t.events[i].Tick < t.events[j].Tick
	})
	return t, nil
}

func parseEvent(text string, resolver KeyResolver) (Event, error) {
	fields := strings.Fields(text)
	if len(fields) != numFields {
		return Event{}, fmt.Errorf("expected %d fields but found %d", numFields, len(fields))
	}

	tick, err := strconv.ParseUint(fields[fieldTick], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("invalid tick '%s'", fields[fieldTick])
	}

	if strings.EqualFold(fields[fieldKey], keywordSlot) {
		slot, err := strconv.Atoi(fields[fieldAction])
		if err != nil || slot < 1 {
			return Event{}, fmt.Errorf("invalid slot '%s'", fields[fieldAction])
		}
		return Event{Tick: tick, Slot: slot}, nil
	}

	key, err := parseKey(fields[fieldKey], resolver)
	if err != nil {
		return Event{}, err
	}

	event := Event{
		Tick: tick,
		Key:  key,
	}
	switch strings.ToLower(fields[fieldAction]) {
	case actionDown:
		event.Pressed = true
	case actionUp:
	default:
		return Event{}, fmt.Errorf("invalid action '%s'", fields[fieldAction])
	}
	return event, nil
}

func parseKey(name string, resolver KeyResolver) (int, error) {
	if len(name) == 1 {
		if key, err := strconv.ParseUint(name, 16, 8); err == nil {
			return int(key), nil
		}
	}

	if resolver != nil {
		if key, ok := resolver.Key(name); ok && key >= 0 && key < chip8.KeyCount {
			return key, nil
		}
		if lister, ok := resolver.(keyLister); ok {
			if names := lister.KeyNames(); len(names) > 0 {
				return 0, fmt.Errorf("unknown key '%s', known keys: %s", name, strings.Join(names, ", "))
			}
		}
	}
	return 0, fmt.Errorf("unknown key '%s'", name)
}

// SetSlotHandler sets the handler for slot events. Without a handler slot
// events are skipped.
func (t *Transcript) SetSlotHandler(handler SlotHandler) {
	t.onSlot = handler
}

// Len returns the number of events.
func (t *Transcript) Len() int {
	return len(t.events)
}

// Pending returns the number of events that have not been applied yet.
func (t *Transcript) Pending() int {
	return len(t.events) - t.next
}

// LastTick returns the tick of the last event.
func (t *Transcript) LastTick() uint64 {
	if len(t.events) == 0 {
		return 0
	}
	return t.events[len(t.events)-1].Tick
}

// Apply sets the key states and runs the slot actions of all pending events
// up to and including the given tick. Every event is applied once, it is
// meant to be used as a scheduler tick hook.
func (t *Transcript) Apply(tick uint64, state *chip8.State) {
	for t.next < len(t.events) {
		event := t.events[t.next]
		if event.Tick > tick {
			return
		}
		t.next++

		switch {
		case event.Slot == 0:
			state.SetKey(event.Key, event.Pressed)
		case t.onSlot != nil:
			t.onSlot(event, state)
		}
	}
}

// Line returns the transcript line that the event was read from.
func (e Event) Line() int {
	return e.line
}
