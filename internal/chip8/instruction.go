package chip8

import (
	"fmt"
	"strings"
)

// Instruction describes one of the 35 CHIP-8 opcodes.
// An instruction word matches when word&Mask == Value.
type Instruction struct {
	Name  string // mnemonic
	Mask  uint16
	Value uint16

	// Operands is the operand template used for disassembly, placeholders
	// {x}, {y}, {n}, {nn} and {nnn} are replaced by the opcode fields.
	Operands string

	execute func(c *CPU, op Opcode) error
}

// Matches returns whether the instruction word is encoded as this instruction.
func (ins *Instruction) Matches(op Opcode) bool {
	return uint16(op)&ins.Mask == ins.Value
}

// Disassemble returns the assembly representation of the opcode using this instruction.
func (ins *Instruction) Disassemble(op Opcode) string {
	if ins.Operands == "" {
		return ins.Name
	}

	r := strings.NewReplacer(
		"{x}", fmt.Sprintf("%x", op.X()),
		"{y}", fmt.Sprintf("%x", op.Y()),
		"{nnn}", fmt.Sprintf("$%03X", op.NNN()),
		"{nn}", fmt.Sprintf("$%02X", op.NN()),
		"{n}", fmt.Sprintf("%d", op.N()),
	)
	return ins.Name + " " + r.Replace(ins.Operands)
}

// Family masks for the second dispatch level.
const (
	maskFamily = 0xF000
	maskExact  = 0xFFFF // 0x0 family, dispatched on the full word
	maskALU    = 0xF00F // 0x8 family, dispatched on op & 0x000F
	maskByte   = 0xF0FF // 0xE and 0xF families, dispatched on op & 0x00FF
)

// CHIP-8 instructions.
var (
	Cls      = &Instruction{Name: "cls", Mask: maskExact, Value: 0x00E0, execute: cls}
	Ret      = &Instruction{Name: "ret", Mask: maskExact, Value: 0x00EE, execute: ret}
	Sys      = &Instruction{Name: "sys", Mask: maskFamily, Value: 0x0000, Operands: "{nnn}", execute: sys}
	Jp       = &Instruction{Name: "jp", Mask: maskFamily, Value: 0x1000, Operands: "{nnn}", execute: jp}
	Call     = &Instruction{Name: "call", Mask: maskFamily, Value: 0x2000, Operands: "{nnn}", execute: call}
	SeByte   = &Instruction{Name: "se", Mask: maskFamily, Value: 0x3000, Operands: "v{x}, {nn}", execute: seByte}
	SneByte  = &Instruction{Name: "sne", Mask: maskFamily, Value: 0x4000, Operands: "v{x}, {nn}", execute: sneByte}
	SeReg    = &Instruction{Name: "se", Mask: maskFamily, Value: 0x5000, Operands: "v{x}, v{y}", execute: seReg}
	LdByte   = &Instruction{Name: "ld", Mask: maskFamily, Value: 0x6000, Operands: "v{x}, {nn}", execute: ldByte}
	AddByte  = &Instruction{Name: "add", Mask: maskFamily, Value: 0x7000, Operands: "v{x}, {nn}", execute: addByte}
	LdReg    = &Instruction{Name: "ld", Mask: maskALU, Value: 0x8000, Operands: "v{x}, v{y}", execute: ldReg}
	Or       = &Instruction{Name: "or", Mask: maskALU, Value: 0x8001, Operands: "v{x}, v{y}", execute: or}
	And      = &Instruction{Name: "and", Mask: maskALU, Value: 0x8002, Operands: "v{x}, v{y}", execute: and}
	Xor      = &Instruction{Name: "xor", Mask: maskALU, Value: 0x8003, Operands: "v{x}, v{y}", execute: xor}
	AddReg   = &Instruction{Name: "add", Mask: maskALU, Value: 0x8004, Operands: "v{x}, v{y}", execute: addReg}
	Sub      = &Instruction{Name: "sub", Mask: maskALU, Value: 0x8005, Operands: "v{x}, v{y}", execute: sub}
	Shr      = &Instruction{Name: "shr", Mask: maskALU, Value: 0x8006, Operands: "v{x}, v{y}", execute: shr}
	Subn     = &Instruction{Name: "subn", Mask: maskALU, Value: 0x8007, Operands: "v{x}, v{y}", execute: subn}
	Shl      = &Instruction{Name: "shl", Mask: maskALU, Value: 0x800E, Operands: "v{x}, v{y}", execute: shl}
	SneReg   = &Instruction{Name: "sne", Mask: maskFamily, Value: 0x9000, Operands: "v{x}, v{y}", execute: sneReg}
	LdI      = &Instruction{Name: "ld", Mask: maskFamily, Value: 0xA000, Operands: "i, {nnn}", execute: ldI}
	JpV0     = &Instruction{Name: "jp", Mask: maskFamily, Value: 0xB000, Operands: "v0, {nnn}", execute: jpV0}
	Rnd      = &Instruction{Name: "rnd", Mask: maskFamily, Value: 0xC000, Operands: "v{x}, {nn}", execute: rnd}
	Drw      = &Instruction{Name: "drw", Mask: maskFamily, Value: 0xD000, Operands: "v{x}, v{y}, {n}", execute: drw}
	Skp      = &Instruction{Name: "skp", Mask: maskByte, Value: 0xE09E, Operands: "v{x}", execute: skp}
	Sknp     = &Instruction{Name: "sknp", Mask: maskByte, Value: 0xE0A1, Operands: "v{x}", execute: sknp}
	LdVxDT   = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF007, Operands: "v{x}, dt", execute: ldVxDT}
	LdVxK    = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF00A, Operands: "v{x}, k", execute: ldVxK}
	LdDTVx   = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF015, Operands: "dt, v{x}", execute: ldDTVx}
	LdSTVx   = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF018, Operands: "st, v{x}", execute: ldSTVx}
	AddI     = &Instruction{Name: "add", Mask: maskByte, Value: 0xF01E, Operands: "i, v{x}", execute: addI}
	LdF      = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF029, Operands: "f, v{x}", execute: ldF}
	LdB      = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF033, Operands: "b, v{x}", execute: ldB}
	LdStore  = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF055, Operands: "[i], v{x}", execute: ldStore}
	LdRecall = &Instruction{Name: "ld", Mask: maskByte, Value: 0xF065, Operands: "v{x}, [i]", execute: ldRecall}
)

// Opcodes maps the high nibble of an instruction word to the instructions of that family.
// Entries of a family are matched in order, the first match wins.
var Opcodes = [16][]*Instruction{
	0x0: {Cls, Ret, Sys},
	0x1: {Jp},
	0x2: {Call},
	0x3: {SeByte},
	0x4: {SneByte},
	0x5: {SeReg},
	0x6: {LdByte},
	0x7: {AddByte},
	0x8: {LdReg, Or, And, Xor, AddReg, Sub, Shr, Subn, Shl},
	0x9: {SneReg},
	0xA: {LdI},
	0xB: {JpV0},
	0xC: {Rnd},
	0xD: {Drw},
	0xE: {Skp, Sknp},
	0xF: {LdVxDT, LdVxK, LdDTVx, LdSTVx, AddI, LdF, LdB, LdStore, LdRecall},
}

// Decode returns the instruction that the opcode encodes.
func Decode(op Opcode) (*Instruction, error) {
	for _, ins := range Opcodes[op.Family()] {
		if ins.Matches(op) {
			return ins, nil
		}
	}
	return nil, &UnknownOpcodeError{Opcode: op}
}

// Disassemble returns the assembly representation of an instruction word,
// unknown opcodes are returned as a data word directive.
func Disassemble(op Opcode) string {
	ins, err := Decode(op)
	if err != nil {
		return fmt.Sprintf(".word $%04X", uint16(op))
	}
	return ins.Disassemble(op)
}
