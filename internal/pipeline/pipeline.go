// Package pipeline orchestrates the ROM run workflow stages.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/catalog"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/input"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/memviz"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/scheduler"
	"github.com/retroenv/retrochip8/internal/snapshot"
	"github.com/retroenv/retrochip8/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Result contains the outcome of a run.
type Result struct {
	State  chip8.State    // machine state after the run
	Entry  *catalog.Entry // catalog entry of the ROM, nil if unknown
	Quirks chip8.Quirks   // quirks the ROM was run with

	Redraws    uint64 // number of redraw notifications
	SoundTicks uint64 // number of ticks the sound was playing
	TraceLines uint64
	Slots      []int // occupied snapshot slots
}

// Pipeline orchestrates the complete run workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// New creates a new run pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute detects the system, loads the ROM and the optional catalog and runs the ROM.
// The trace is written to traceWriter if it is not nil.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, machine options.Machine,
	traceWriter io.Writer) (*Result, error) {

	system := p.detector.Detect(opts)

	rom, err := p.loader.Load(opts.Input, system)
	if err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}

	entry, err := p.lookupCatalog(opts)
	if err != nil {
		return nil, err
	}

	return p.ExecuteWithROM(ctx, rom, opts, machine, entry, traceWriter)
}

// ExecuteWithROM runs a ROM that is already in memory.
// This is useful for testing and programmatic usage.
func (p *Pipeline) ExecuteWithROM(ctx context.Context, rom []byte, opts options.Program, machine options.Machine,
	entry *catalog.Entry, traceWriter io.Writer) (*Result, error) {

	quirks := machine.Quirks
	if entry != nil {
		entryQuirks := entry.MachineQuirks()
		quirks.LoadStore = quirks.LoadStore || entryQuirks.LoadStore
		quirks.Shift = quirks.Shift || entryQuirks.Shift
	}

	var cpuOptions []chip8.Option
	if machine.Seed != 0 {
		cpuOptions = append(cpuOptions, chip8.WithSeed(machine.Seed))
	}

	var trace *writer.Writer
	if traceWriter != nil {
		trace = writer.New(traceWriter, writer.Options{Limit: opts.TraceLimit})
		if err := trace.WriteCommentHeader(filepath.Base(opts.Input), len(rom), quirks); err != nil {
			return nil, fmt.Errorf("writing trace header: %w", err)
		}
		cpuOptions = append(cpuOptions, chip8.WithTracer(trace))
	}

	listener := newLogListener(p.logger)
	schedulerOptions := []scheduler.Option{
		scheduler.WithListener(listener),
		scheduler.WithFrequency(machine.Frequency),
		scheduler.WithStepsPerTick(machine.StepsPerTick),
		scheduler.WithMaxTicks(machine.Ticks),
	}

	slots := snapshot.NewManager()
	var transcript *input.Transcript
	if opts.Transcript != "" {
		var err error
		transcript, err = p.loadTranscript(opts.Transcript, entry)
		if err != nil {
			return nil, err
		}
		transcript.SetSlotHandler(p.slotHandler(slots))
		schedulerOptions = append(schedulerOptions, scheduler.WithHook(transcript.Apply))
	}

	state := chip8.New()
	cpu := chip8.NewCPU(state, cpuOptions...)
	sched := scheduler.New(p.logger, cpu, schedulerOptions...)
	sched.SetQuirks(quirks)
	if err := sched.Load(rom); err != nil {
		return nil, fmt.Errorf("loading ROM into memory: %w", err)
	}

	p.printInfo(opts, entry, len(rom), quirks)

	runErr := sched.Run(ctx)

	result := &Result{
		State:      *state,
		Entry:      entry,
		Quirks:     quirks,
		Redraws:    listener.redraws,
		SoundTicks: listener.soundTicks,
		Slots:      slots.Slots(),
	}

	if trace != nil {
		result.TraceLines = trace.Lines()
		programEnd := chip8.ProgramStart + uint16(len(rom))
		if err := errors.Join(trace.Err(), trace.WriteState(state),
			trace.WriteMemory(state, chip8.ProgramStart, programEnd)); err != nil {
			return result, fmt.Errorf("writing trace: %w", err)
		}
	}

	if opts.MemViz != "" {
		if err := memviz.WriteFile(opts.MemViz, state, entry); err != nil {
			return result, fmt.Errorf("writing memviz dump: %w", err)
		}
	}

	if runErr != nil {
		return result, fmt.Errorf("running ROM: %w", runErr)
	}

	if transcript != nil && transcript.Pending() > 0 {
		p.logger.Debug("Input transcript events not replayed",
			log.Int("pending", transcript.Pending()))
	}

	p.logger.Debug("Run finished",
		log.Int("ticks", int(state.Cycles)),
		log.Int("steps", int(state.Steps)),
		log.String("pc", fmt.Sprintf("$%04X", state.PC)))
	return result, nil
}

// slotHandler returns the transcript handler that presses the save/load
// button of a snapshot slot. It runs inside a scheduler tick.
func (p *Pipeline) slotHandler(slots *snapshot.Manager) input.SlotHandler {
	return func(event input.Event, state *chip8.State) {
		action, snap, err := slots.Apply(event.Slot, state)
		if err != nil {
			p.logger.Error("Snapshot slot action failed", err,
				log.Int("line", event.Line()))
			return
		}

		p.logger.Debug("Snapshot slot used",
			log.Int("line", event.Line()),
			log.Int("slot", event.Slot),
			log.String("action", action.String()),
			log.String("pc", fmt.Sprintf("$%04X", snap.PC())),
			log.String("slots", fmt.Sprint(slots.Slots())))
	}
}

// lookupCatalog returns the catalog entry of the input ROM if a catalog is set.
func (p *Pipeline) lookupCatalog(opts options.Program) (*catalog.Entry, error) {
	if opts.Catalog == "" {
		return nil, nil
	}

	cat, err := catalog.LoadFile(opts.Catalog)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	p.logger.Debug("Catalog loaded",
		log.String("file", opts.Catalog),
		log.Int("entries", len(cat.Entries())))

	entry, ok := cat.Lookup(opts.Input)
	if !ok {
		p.logger.Warn("ROM not found in catalog", log.String("file", filepath.Base(opts.Input)))
		return nil, nil
	}
	return entry, nil
}

// loadTranscript reads the key input transcript, host key names are resolved
// through the keymap of the catalog entry.
func (p *Pipeline) loadTranscript(path string, entry *catalog.Entry) (*input.Transcript, error) {
	var resolver input.KeyResolver
	if entry != nil {
		resolver = entry
	}

	transcript, err := input.LoadFile(path, resolver)
	if err != nil {
		return nil, fmt.Errorf("loading input transcript: %w", err)
	}

	p.logger.Debug("Input transcript loaded",
		log.Int("events", transcript.Len()),
		log.Int("last_tick", int(transcript.LastTick())))
	return transcript, nil
}

// printInfo prints information about the ROM being run.
func (p *Pipeline) printInfo(opts options.Program, entry *catalog.Entry, size int, quirks chip8.Quirks) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Running Chip-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", size),
		log.String("quirks", formatQuirks(quirks)),
	)

	if entry != nil {
		p.logger.Info("Catalog entry",
			log.String("title", entry.Title),
			log.String("author", entry.Author),
			log.Int("year", entry.Year),
			log.String("keys", strings.Join(entry.KeyNames(), ",")),
		)
	}
}

func formatQuirks(quirks chip8.Quirks) string {
	switch {
	case quirks.LoadStore && quirks.Shift:
		return "loadstore,shift"
	case quirks.LoadStore:
		return "loadstore"
	case quirks.Shift:
		return "shift"
	default:
		return "none"
	}
}
