package chip8

import "fmt"

// OpcodeSize is the size of a CHIP-8 instruction in bytes.
const OpcodeSize = 2

// Opcode is a 16-bit CHIP-8 instruction word.
type Opcode uint16

// Fetch reads the big-endian instruction word at the program counter.
func Fetch(s *State) Opcode {
	pc := s.PC & MaxAddress
	b1 := s.Memory[pc]
	b2 := s.Memory[(pc+1)&MaxAddress]
	return Opcode(uint16(b1)<<8 | uint16(b2))
}

// Family returns the high nibble of the opcode, used for the first dispatch level.
func (o Opcode) Family() int {
	return int(o&0xF000) >> 12
}

// X returns the register index in bits 8-11.
func (o Opcode) X() int {
	return int(o&0x0F00) >> 8
}

// Y returns the register index in bits 4-7.
func (o Opcode) Y() int {
	return int(o&0x00F0) >> 4
}

// N returns the lowest nibble.
func (o Opcode) N() byte {
	return byte(o & 0x000F)
}

// NN returns the lowest byte.
func (o Opcode) NN() byte {
	return byte(o & 0x00FF)
}

// NNN returns the 12-bit address.
func (o Opcode) NNN() uint16 {
	return uint16(o & 0x0FFF)
}

func (o Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(o))
}
