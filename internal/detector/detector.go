// Package detector handles system detection for ROM files.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// System is a supported target system.
type System string

// CHIP8 is the original CHIP-8 interpreter.
const CHIP8 System = "chip8"

func (s System) String() string {
	return string(s)
}

var systems = map[string]System{
	"chip8":  CHIP8,
	"chip-8": CHIP8,
}

// SystemFromString returns the system matching the given name.
func SystemFromString(name string) (System, bool) {
	system, ok := systems[strings.ToLower(name)]
	return system, ok
}

// Systems returns the names of all supported systems.
func Systems() []string {
	return []string{CHIP8.String()}
}

// Detector handles system detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new system detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the system from options or file auto-detection.
// An explicitly specified system is used as is, otherwise the system is
// derived from the input filename extension.
func (d *Detector) Detect(opts options.Program) System {
	if system, ok := SystemFromString(opts.System); ok {
		return system
	}

	system, known := detectFromFile(opts.Input)
	if known {
		d.logger.Debug("Auto-detected system",
			log.String("system", system.String()),
			log.String("file", opts.Input))
	} else {
		d.logger.Warn("Unknown ROM file extension, assuming CHIP-8",
			log.String("file", opts.Input))
	}
	return system
}

// detectFromFile determines the system type based on file extension.
func detectFromFile(filename string) (System, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".ch8", ".c8", ".rom", ".bin":
		return CHIP8, true
	default:
		return CHIP8, false
	}
}
