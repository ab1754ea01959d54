// Package chip8 implements the CHIP-8 virtual machine core.
//
// # Memory Layout
//
// The machine has 4KB of memory (0x000-MaxAddress):
//   - 0x000-0x04F: built-in font, 16 glyphs of 5 bytes for the hex digits 0-F
//   - 0x050-0x1FF: reserved interpreter area
//   - ProgramStart-MaxAddress: program and work RAM
//
// # Instruction Set
//
// CHIP-8 has 35 opcodes, all 2 bytes wide and fetched big-endian:
//   - 16 general-purpose 8-bit registers (V0-VF), VF doubles as flag register
//   - I address register, program counter and a 16 entry call stack
//   - delay and sound timers that the scheduler decrements once per tick
//
// Opcodes are dispatched on their high nibble first. The 0x0, 0x8, 0xE and 0xF
// families dispatch a second time on a low-order mask.
//
// # Quirks
//
// Two compatibility switches change instruction behavior for ROMs written
// against later interpreters:
//   - LoadStore: FX55/FX65 leave I unmodified
//   - Shift: 8XY6/8XYE shift VX in place instead of VY
//
// # Usage Example
//
//	state := chip8.New()
//	if err := state.LoadROM(rom); err != nil {
//		return fmt.Errorf("loading rom: %w", err)
//	}
//	cpu := chip8.NewCPU(state)
//	if err := cpu.Step(); err != nil {
//		return fmt.Errorf("executing instruction: %w", err)
//	}
package chip8
