// Package scheduler drives a CHIP-8 CPU at a fixed tick rate, decays the timers
// and notifies a listener about screen and sound changes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrogolib/log"
)

const (
	// DefaultFrequency is the number of ticks per second.
	DefaultFrequency = 60
	// DefaultStepsPerTick is the number of instructions executed per tick.
	DefaultStepsPerTick = 10
)

// ErrAlreadyRunning is returned by Run when the scheduler is running already.
var ErrAlreadyRunning = errors.New("scheduler is already running")

// Listener receives the output of the machine.
type Listener interface {
	// Redraw is called with the screen buffer after a step changed the screen.
	// The buffer is only valid for the duration of the call.
	Redraw(screen []byte)
	// PlaySound is called at the end of every tick while the sound timer is active.
	PlaySound()
	// StopSound is called at the end of every tick while the sound timer is zero.
	StopSound()
}

// NopListener ignores all notifications.
type NopListener struct{}

// Redraw implements Listener.
func (NopListener) Redraw([]byte) {}

// PlaySound implements Listener.
func (NopListener) PlaySound() {}

// StopSound implements Listener.
func (NopListener) StopSound() {}

// Hook is called at the start of every tick with the number of ticks executed
// so far. It runs under the scheduler lock and may modify the state.
type Hook func(tick uint64, state *chip8.State)

// Scheduler runs the CPU in ticks. All state mutation happens under the tick
// lock, host calls are serialized with ticks.
type Scheduler struct {
	logger   *log.Logger
	cpu      *chip8.CPU
	listener Listener

	frequency    int
	stepsPerTick int
	maxTicks     uint64
	hooks        []Hook

	mu sync.Mutex // held during a tick and by host operations

	runMu   sync.Mutex // guards running and stop, never held while calling out
	running bool
	stop    chan struct{}
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithListener sets the listener that receives redraw and sound notifications.
func WithListener(listener Listener) Option {
	return func(s *Scheduler) {
		s.listener = listener
	}
}

// WithFrequency sets the number of ticks per second.
func WithFrequency(frequency int) Option {
	return func(s *Scheduler) {
		s.frequency = frequency
	}
}

// WithStepsPerTick sets the number of instructions executed per tick.
func WithStepsPerTick(steps int) Option {
	return func(s *Scheduler) {
		s.stepsPerTick = steps
	}
}

// WithMaxTicks makes Run return after the given number of ticks, 0 means no limit.
func WithMaxTicks(ticks uint64) Option {
	return func(s *Scheduler) {
		s.maxTicks = ticks
	}
}

// WithHook adds a hook that is called at the start of every tick.
func WithHook(hook Hook) Option {
	return func(s *Scheduler) {
		s.hooks = append(s.hooks, hook)
	}
}

// New returns a stopped scheduler for the given CPU.
func New(logger *log.Logger, cpu *chip8.CPU, options ...Option) *Scheduler {
	s := &Scheduler{
		logger:       logger,
		cpu:          cpu,
		listener:     NopListener{},
		frequency:    DefaultFrequency,
		stepsPerTick: DefaultStepsPerTick,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.frequency <= 0 {
		s.frequency = DefaultFrequency
	}
	if s.stepsPerTick <= 0 {
		s.stepsPerTick = DefaultStepsPerTick
	}
	return s
}

// Running returns whether Run is currently executing ticks.
func (s *Scheduler) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.running
}

// Run executes ticks at the configured frequency until Stop is called, the
// context is canceled, the tick limit is reached or an instruction fails.
// It returns nil when stopped or when the tick limit was reached.
func (s *Scheduler) Run(ctx context.Context) error {
	stop, err := s.start()
	if err != nil {
		return err
	}
	defer s.finish(stop)

	ticker := time.NewTicker(time.Second / time.Duration(s.frequency))
	defer ticker.Stop()

	s.logger.Debug("Scheduler started",
		log.Int("frequency", s.frequency),
		log.Int("steps", s.stepsPerTick))

	var ticks uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if err := s.Tick(); err != nil {
			return err
		}

		ticks++
		if s.maxTicks > 0 && ticks >= s.maxTicks {
			s.logger.Debug("Tick limit reached", log.Int("ticks", int(ticks)))
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) start() (chan struct{}, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running {
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.stop = make(chan struct{})
	return s.stop, nil
}

// finish stops the run that owns the stop channel. A run that was stopped and
// replaced by a new Run call must not stop its successor.
func (s *Scheduler) finish(stop chan struct{}) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.stop != stop {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil
}

// Stop moves the scheduler to the stopped state, the current tick is
// finished first. Stopping a stopped scheduler does nothing. It is safe to
// call Stop from listener callbacks and hooks.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	close(s.stop)
	s.stop = nil
}

// Tick executes a single tick synchronously: hooks, the configured number of
// steps, timer decay and the sound notification. An instruction error aborts
// the tick, stops the scheduler and is returned.
func (s *Scheduler) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.cpu.State()
	for _, hook := range s.hooks {
		hook(state.Cycles, state)
	}

	for i := 0; i < s.stepsPerTick; i++ {
		if err := s.cpu.Step(); err != nil {
			s.Stop()
			return fmt.Errorf("tick %d: %w", state.Cycles, err)
		}

		if state.Redraw {
			s.listener.Redraw(state.ScreenBuffer())
			state.Redraw = false
		}
	}

	if state.DelayTimer > 0 {
		state.DelayTimer--
	}
	if state.SoundTimer > 0 {
		state.SoundTimer--
	}
	state.Cycles++

	if state.SoundTimer > 0 {
		s.listener.PlaySound()
	} else {
		s.listener.StopSound()
	}
	return nil
}

// Update calls the function with the machine state between ticks.
func (s *Scheduler) Update(fn func(state *chip8.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cpu.State())
}

// SetKey sets the pressed state of a keypad key.
func (s *Scheduler) SetKey(key int, pressed bool) {
	s.Update(func(state *chip8.State) {
		state.SetKey(key, pressed)
	})
}

// SetQuirks sets the compatibility switches of the machine.
func (s *Scheduler) SetQuirks(quirks chip8.Quirks) {
	s.Update(func(state *chip8.State) {
		state.Quirks = quirks
	})
}

// Load resets the machine and loads the ROM. The quirks of the machine are
// kept. The state is not modified if the ROM does not fit into memory.
func (s *Scheduler) Load(rom []byte) error {
	if len(rom) > chip8.MemorySize-chip8.ProgramStart {
		return &chip8.ROMTooLargeError{Size: len(rom)}
	}

	var err error
	s.Update(func(state *chip8.State) {
		quirks := state.Quirks
		state.Initialize()
		state.Quirks = quirks
		err = state.LoadROM(rom)
	})
	return err
}

// SaveOrLoad saves the state into an empty slot or restores the snapshot of
// an occupied slot. The live key states are kept on restore.
func (s *Scheduler) SaveOrLoad(manager *snapshot.Manager, slot int) (snapshot.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, snap, err := manager.Apply(slot, s.cpu.State())
	if err != nil {
		return action, err
	}
	s.logger.Debug("Snapshot slot used",
		log.Int("slot", slot),
		log.String("action", action.String()),
		log.String("pc", fmt.Sprintf("$%04X", snap.PC())))
	return action, nil
}
