package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is wrapped by UnknownOpcodeError.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrROMTooLarge is wrapped by ROMTooLargeError.
	ErrROMTooLarge = errors.New("rom too large")
	// ErrStackOverflow is returned when a call is made with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned when returning from a subroutine with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
)

// UnknownOpcodeError is returned when an instruction word matches none of the known opcodes.
type UnknownOpcodeError struct {
	Opcode Opcode
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04x", uint16(e.Opcode))
}

func (e *UnknownOpcodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// ROMTooLargeError is returned when a program does not fit into memory after ProgramStart.
type ROMTooLargeError struct {
	Size int
}

func (e *ROMTooLargeError) Error() string {
	return fmt.Sprintf("rom too large: %d bytes, maximum is %d", e.Size, MemorySize-ProgramStart)
}

func (e *ROMTooLargeError) Unwrap() error {
	return ErrROMTooLarge
}
