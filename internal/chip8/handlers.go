package chip8

// 0NNN: machine code routines of the original interpreter are not supported, ignored.
func sys(c *CPU, _ Opcode) error {
	c.state.advance()
	return nil
}

// 00E0
func cls(c *CPU, _ Opcode) error {
	s := c.state
	s.Screen = [ScreenSize]byte{}
	s.Redraw = true
	s.advance()
	return nil
}

// 00EE
func ret(c *CPU, _ Opcode) error {
	s := c.state
	if s.SP == 0 {
		return ErrStackUnderflow
	}
	s.SP--
	s.PC = s.Stack[s.SP]
	s.advance()
	return nil
}

// 1NNN
func jp(c *CPU, op Opcode) error {
	c.state.PC = op.NNN()
	return nil
}

// 2NNN: the address of the call itself is pushed, ret skips over it.
func call(c *CPU, op Opcode) error {
	s := c.state
	if s.SP >= StackSize {
		return ErrStackOverflow
	}
	s.Stack[s.SP] = s.PC
	s.SP++
	s.PC = op.NNN()
	return nil
}

// skip advances the program counter over the next instruction if cond is set.
// The current instruction is always stepped over.
func (s *State) skip(cond bool) {
	if cond {
		s.advance()
	}
	s.advance()
}

// 3XNN
func seByte(c *CPU, op Opcode) error {
	s := c.state
	s.skip(s.V[op.X()] == op.NN())
	return nil
}

// 4XNN
func sneByte(c *CPU, op Opcode) error {
	s := c.state
	s.skip(s.V[op.X()] != op.NN())
	return nil
}

// 5XY0
func seReg(c *CPU, op Opcode) error {
	s := c.state
	s.skip(s.V[op.X()] == s.V[op.Y()])
	return nil
}

// 9XY0
func sneReg(c *CPU, op Opcode) error {
	s := c.state
	s.skip(s.V[op.X()] != s.V[op.Y()])
	return nil
}

// 6XNN
func ldByte(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] = op.NN()
	s.advance()
	return nil
}

// 7XNN: no carry flag.
func addByte(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] += op.NN()
	s.advance()
	return nil
}

// 8XY0
func ldReg(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] = s.V[op.Y()]
	s.advance()
	return nil
}

// 8XY1
func or(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] |= s.V[op.Y()]
	s.advance()
	return nil
}

// 8XY2
func and(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] &= s.V[op.Y()]
	s.advance()
	return nil
}

// 8XY3
func xor(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] ^= s.V[op.Y()]
	s.advance()
	return nil
}

// setWithFlag writes the flag register first and the result second, a result
// targeting VF overwrites the flag.
func (s *State) setWithFlag(x int, result, flag byte) {
	s.V[FlagRegister] = flag
	s.V[x] = result
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// 8XY4
func addReg(c *CPU, op Opcode) error {
	s := c.state
	sum := uint16(s.V[op.X()]) + uint16(s.V[op.Y()])
	s.setWithFlag(op.X(), byte(sum), boolToByte(sum > 0xFF))
	s.advance()
	return nil
}

// 8XY5: VF is set when there is no borrow.
func sub(c *CPU, op Opcode) error {
	s := c.state
	vx, vy := s.V[op.X()], s.V[op.Y()]
	s.setWithFlag(op.X(), vx-vy, boolToByte(vx >= vy))
	s.advance()
	return nil
}

// 8XY7: VF is set when there is no borrow.
func subn(c *CPU, op Opcode) error {
	s := c.state
	vx, vy := s.V[op.X()], s.V[op.Y()]
	s.setWithFlag(op.X(), vy-vx, boolToByte(vy >= vx))
	s.advance()
	return nil
}

// shiftSource returns the register that shift instructions read from.
func (s *State) shiftSource(op Opcode) byte {
	if s.Quirks.Shift {
		return s.V[op.X()]
	}
	return s.V[op.Y()]
}

// 8XY6
func shr(c *CPU, op Opcode) error {
	s := c.state
	v := s.shiftSource(op)
	s.setWithFlag(op.X(), v>>1, v&0x01)
	s.advance()
	return nil
}

// 8XYE
func shl(c *CPU, op Opcode) error {
	s := c.state
	v := s.shiftSource(op)
	s.setWithFlag(op.X(), v<<1, (v>>7)&0x01)
	s.advance()
	return nil
}

// ANNN
func ldI(c *CPU, op Opcode) error {
	s := c.state
	s.I = op.NNN()
	s.advance()
	return nil
}

// BNNN
func jpV0(c *CPU, op Opcode) error {
	s := c.state
	s.PC = (op.NNN() + uint16(s.V[0])) & MaxAddress
	return nil
}

// CXNN
func rnd(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] = c.randomByte() & op.NN()
	s.advance()
	return nil
}

// DXYN: sprite pixels outside of the screen are clipped.
func drw(c *CPU, op Opcode) error {
	s := c.state
	// coordinates are read before VF is overwritten, VF is a valid operand
	x0, y0 := int(s.V[op.X()]), int(s.V[op.Y()])

	var collision bool
	for row := 0; row < int(op.N()); row++ {
		line := s.Memory[(s.I+uint16(row))&MaxAddress]
		y := y0 + row
		if y >= ScreenHeight {
			break
		}

		for bit := 0; bit < 8; bit++ {
			if line&(0x80>>bit) == 0 {
				continue
			}
			x := x0 + bit
			if x >= ScreenWidth {
				break
			}

			idx := y*ScreenWidth + x
			if s.Screen[idx] != 0 {
				collision = true
			}
			s.Screen[idx] ^= 1
		}
	}

	s.V[FlagRegister] = boolToByte(collision)
	s.Redraw = true
	s.advance()
	return nil
}

// keyPressed returns whether the key named by the low nibble of the register value is pressed.
func (s *State) keyPressed(x int) bool {
	return s.Keys[s.V[x]&0x0F]
}

// EX9E
func skp(c *CPU, op Opcode) error {
	s := c.state
	s.skip(s.keyPressed(op.X()))
	return nil
}

// EXA1
func sknp(c *CPU, op Opcode) error {
	s := c.state
	s.skip(!s.keyPressed(op.X()))
	return nil
}

// FX07
func ldVxDT(c *CPU, op Opcode) error {
	s := c.state
	s.V[op.X()] = s.DelayTimer
	s.advance()
	return nil
}

// FX0A: the program counter is only advanced once a key is pressed, until then
// the instruction is executed again on every step.
func ldVxK(c *CPU, op Opcode) error {
	s := c.state
	for key, pressed := range s.Keys {
		if pressed {
			s.V[op.X()] = byte(key)
			s.advance()
			return nil
		}
	}
	return nil
}

// FX15
func ldDTVx(c *CPU, op Opcode) error {
	s := c.state
	s.DelayTimer = s.V[op.X()]
	s.advance()
	return nil
}

// FX18
func ldSTVx(c *CPU, op Opcode) error {
	s := c.state
	s.SoundTimer = s.V[op.X()]
	s.advance()
	return nil
}

// FX1E: VF is not affected.
func addI(c *CPU, op Opcode) error {
	s := c.state
	s.I = (s.I + uint16(s.V[op.X()])) & MaxAddress
	s.advance()
	return nil
}

// FX29
func ldF(c *CPU, op Opcode) error {
	s := c.state
	s.I = (uint16(s.V[op.X()]) * FontGlyphSize) & MaxAddress
	s.advance()
	return nil
}

// FX33
func ldB(c *CPU, op Opcode) error {
	s := c.state
	v := s.V[op.X()]
	s.Memory[s.I&MaxAddress] = v / 100
	s.Memory[(s.I+1)&MaxAddress] = v % 100 / 10
	s.Memory[(s.I+2)&MaxAddress] = v % 10
	s.advance()
	return nil
}

// FX55
func ldStore(c *CPU, op Opcode) error {
	s := c.state
	x := op.X()
	for i := 0; i <= x; i++ {
		s.Memory[(s.I+uint16(i))&MaxAddress] = s.V[i]
	}
	s.incrementLoadStore(x)
	s.advance()
	return nil
}

// FX65
func ldRecall(c *CPU, op Opcode) error {
	s := c.state
	x := op.X()
	for i := 0; i <= x; i++ {
		s.V[i] = s.Memory[(s.I+uint16(i))&MaxAddress]
	}
	s.incrementLoadStore(x)
	s.advance()
	return nil
}

func (s *State) incrementLoadStore(x int) {
	if s.Quirks.LoadStore {
		return
	}
	s.I = (s.I + uint16(x) + 1) & MaxAddress
}
