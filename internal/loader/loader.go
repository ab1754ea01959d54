// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/detector"
)

// maxROMSize is the largest program that fits into memory after the program start address.
const maxROMSize = chip8.MemorySize - chip8.ProgramStart

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the ROM file for the given system. ROMs that do not fit into
// memory are rejected before any data is passed on to the machine.
func (l *Loader) Load(path string, system detector.System) ([]byte, error) {
	if system != detector.CHIP8 {
		return nil, fmt.Errorf("unsupported system '%s'", system)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	return LoadReader(file)
}

// LoadReader reads a raw CHIP-8 ROM from the reader.
func LoadReader(reader io.Reader) ([]byte, error) {
	// read one byte more than allowed to detect oversized ROMs without reading them completely
	data, err := io.ReadAll(io.LimitReader(reader, maxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	if len(data) > maxROMSize {
		return nil, &chip8.ROMTooLargeError{Size: len(data)}
	}
	return data, nil
}
