package chip8

import (
	"fmt"
	"math/rand"
)

// Tracer is called for every instruction before it is executed.
type Tracer interface {
	Trace(pc uint16, op Opcode, ins *Instruction)
}

// CPU executes instructions against a machine state.
type CPU struct {
	state  *State
	random *rand.Rand
	tracer Tracer
}

// Option configures a CPU.
type Option func(*CPU)

// WithSeed seeds the random source used by the rnd instruction.
func WithSeed(seed int64) Option {
	return func(c *CPU) {
		c.random = rand.New(rand.NewSource(seed))
	}
}

// WithTracer sets a tracer that is called before each instruction executes.
func WithTracer(tracer Tracer) Option {
	return func(c *CPU) {
		c.tracer = tracer
	}
}

// NewCPU returns a new CPU executing on the given state.
func NewCPU(state *State, options ...Option) *CPU {
	c := &CPU{
		state: state,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.random == nil {
		c.random = rand.New(rand.NewSource(rand.Int63())) //nolint:gosec // not used for security
	}
	return c
}

// State returns the machine state that the CPU operates on.
func (c *CPU) State() *State {
	return c.state
}

// Step fetches, decodes and executes a single instruction.
// On error the state is left as it was before the instruction.
func (c *CPU) Step() error {
	s := c.state
	pc := s.PC
	op := Fetch(s)

	ins, err := Decode(op)
	if err != nil {
		return fmt.Errorf("executing at address 0x%03x: %w", pc, err)
	}

	if c.tracer != nil {
		c.tracer.Trace(pc, op, ins)
	}

	if err := ins.execute(c, op); err != nil {
		return fmt.Errorf("executing %s at address 0x%03x: %w", ins.Name, pc, err)
	}
	s.Steps++
	return nil
}

func (c *CPU) randomByte() byte {
	return byte(c.random.Intn(0x100))
}
