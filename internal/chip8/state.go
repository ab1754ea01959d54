package chip8

// CHIP-8 machine layout constants.
const (
	// MemorySize is the size of the address space in bytes.
	MemorySize = 4096

	// ProgramStart is the memory address where programs are loaded and execution begins.
	ProgramStart = 0x200

	// MaxAddress is the highest valid memory address.
	MaxAddress = 0xFFF

	// RegisterCount is the number of general-purpose V registers.
	RegisterCount = 16

	// StackSize is the number of return addresses the call stack can hold.
	StackSize = 16

	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16

	// ScreenWidth is the width of the display in pixels.
	ScreenWidth = 64

	// ScreenHeight is the height of the display in pixels.
	ScreenHeight = 32

	// ScreenSize is the number of pixels of the display, one byte per pixel.
	ScreenSize = ScreenWidth * ScreenHeight

	// FlagRegister is the index of VF, which receives carry, borrow and collision flags.
	FlagRegister = 0xF
)

// Quirks contains the compatibility switches that alter instruction behavior.
type Quirks struct {
	LoadStore bool // FX55/FX65 do not increment I
	Shift     bool // 8XY6/8XYE shift VX instead of VY
}

// State is the complete mutable state of a CHIP-8 machine.
// All buffers are fixed size arrays, copying a State value copies every buffer.
type State struct {
	Memory [MemorySize]byte
	V      [RegisterCount]byte
	I      uint16
	PC     uint16

	Stack [StackSize]uint16
	SP    uint16

	DelayTimer uint8
	SoundTimer uint8

	Screen [ScreenSize]byte
	Redraw bool // screen changed since the last redraw notification

	Keys [KeyCount]bool // written by the host, read-only for instructions

	Quirks Quirks

	Cycles uint64 // scheduler ticks executed
	Steps  uint64 // instructions executed
}

// New returns a new initialized machine state.
func New() *State {
	s := &State{}
	s.Initialize()
	return s
}

// Initialize resets all buffers, quirks and counters and reloads the font.
// It can be called any number of times, for example before loading a new ROM.
func (s *State) Initialize() {
	*s = State{
		PC: ProgramStart,
	}
	copy(s.Memory[:], fontSet[:])
}

// LoadROM copies the program data into memory starting at ProgramStart.
// Memory is not modified if the program does not fit.
func (s *State) LoadROM(data []byte) error {
	if len(data) > MemorySize-ProgramStart {
		return &ROMTooLargeError{Size: len(data)}
	}
	copy(s.Memory[ProgramStart:], data)
	return nil
}

// ScreenBuffer returns the screen as a byte slice of ScreenSize pixels with values 0 or 1.
// The slice aliases the state, hosts that keep it past the current tick need to copy it.
func (s *State) ScreenBuffer() []byte {
	return s.Screen[:]
}

// Pixel returns whether the pixel at the given screen coordinates is set.
func (s *State) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	return s.Screen[y*ScreenWidth+x] != 0
}

// SetKey sets the pressed state of a keypad key. Keys outside of 0-F are ignored.
func (s *State) SetKey(key int, pressed bool) {
	if key < 0 || key >= KeyCount {
		return
	}
	s.Keys[key] = pressed
}

// advance moves the program counter to the next instruction.
func (s *State) advance() {
	s.PC = (s.PC + 2) & MaxAddress
}
