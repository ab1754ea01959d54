// Package snapshot captures and restores complete CHIP-8 machine states.
package snapshot

import (
	"errors"
	"fmt"
	"sync"

	"github.com/retroenv/retrochip8/internal/chip8"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	// ErrInvalidSlot is returned for slot numbers that are not positive.
	ErrInvalidSlot = errors.New("invalid snapshot slot")
	// ErrSlotOccupied is returned when saving into a slot that already holds a snapshot.
	ErrSlotOccupied = errors.New("snapshot slot occupied")
	// ErrSlotEmpty is returned when loading from a slot without a snapshot.
	ErrSlotEmpty = errors.New("snapshot slot empty")
)

// Snapshot is an immutable deep copy of a machine state.
type Snapshot struct {
	state chip8.State
}

// Save returns a snapshot of the given state. Later changes to the state
// do not affect the snapshot.
func Save(state *chip8.State) *Snapshot {
	return &Snapshot{
		state: *state,
	}
}

// Restore returns a new machine state with the content of the snapshot.
// The returned state shares no buffers with the snapshot.
func (s *Snapshot) Restore() *chip8.State {
	state := s.state
	return &state
}

// PC returns the program counter at the time the snapshot was taken.
func (s *Snapshot) PC() uint16 {
	return s.state.PC
}

// Cycles returns the number of scheduler ticks executed when the snapshot was taken.
func (s *Snapshot) Cycles() uint64 {
	return s.state.Cycles
}

// Action is the operation performed by Manager.SaveOrLoad.
type Action int

const (
	// Saved means the state was stored in a previously empty slot.
	Saved Action = iota
	// Loaded means the snapshot of an occupied slot was returned.
	Loaded
)

func (a Action) String() string {
	switch a {
	case Saved:
		return "saved"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Manager holds snapshots in numbered slots. Each slot is written once.
type Manager struct {
	mu    sync.RWMutex
	slots map[int]*Snapshot
}

// NewManager returns a new snapshot manager without any snapshots.
func NewManager() *Manager {
	return &Manager{
		slots: make(map[int]*Snapshot),
	}
}

// Save stores a snapshot of the state in the given slot.
func (m *Manager) Save(slot int, state *chip8.State) (*Snapshot, error) {
	if slot < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.slots[slot]; ok {
		return nil, fmt.Errorf("%w: %d", ErrSlotOccupied, slot)
	}

	snap := Save(state)
	m.slots[slot] = snap
	return snap, nil
}

// Load returns the snapshot stored in the given slot.
func (m *Manager) Load(slot int) (*Snapshot, error) {
	if slot < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.slots[slot]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSlotEmpty, slot)
	}
	return snap, nil
}

// SaveOrLoad saves the state if the slot is empty, otherwise it returns the
// snapshot stored in the slot. This is the behavior of a single save/load
// button per slot.
func (m *Manager) SaveOrLoad(slot int, state *chip8.State) (Action, *Snapshot, error) {
	if slot < 1 {
		return Saved, nil, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if snap, ok := m.slots[slot]; ok {
		return Loaded, snap, nil
	}

	snap := Save(state)
	m.slots[slot] = snap
	return Saved, snap, nil
}

// Slots returns the numbers of all occupied slots in ascending order.
func (m *Manager) Slots() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	slots := maps.Keys(m.slots)
	slices.Sort(slots)
	return slots
}

// Apply performs SaveOrLoad for the slot on the given state. A loaded
// snapshot replaces the state in place, the key states are kept since they
// reflect the host input and not the program.
func (m *Manager) Apply(slot int, state *chip8.State) (Action, *Snapshot, error) {
	action, snap, err := m.SaveOrLoad(slot, state)
	if err != nil {
		return action, nil, err
	}
	if action == Loaded {
		keys := state.Keys
		*state = snap.state
		state.Keys = keys
	}
	return action, snap, nil
}
