// Package config handles application configuration and setup
package config

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// Limits for the machine timing options.
const (
	MaxFrequency    = 1000
	MaxStepsPerTick = 10000
)

// ErrInvalidMachineOption is returned for out of range machine options.
var ErrInvalidMachineOption = errors.New("invalid machine option")

// CreateLogger creates a logger with the level selected by the debug and quiet flags.
// Debug wins if both are set.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// ValidateMachine checks that the machine timing options are usable by the scheduler.
func ValidateMachine(opts options.Machine) error {
	if opts.Frequency < 1 || opts.Frequency > MaxFrequency {
		return fmt.Errorf("%w: frequency %d Hz not in range 1-%d", ErrInvalidMachineOption, opts.Frequency, MaxFrequency)
	}
	if opts.StepsPerTick < 1 || opts.StepsPerTick > MaxStepsPerTick {
		return fmt.Errorf("%w: %d steps per tick not in range 1-%d", ErrInvalidMachineOption, opts.StepsPerTick, MaxStepsPerTick)
	}
	return nil
}
