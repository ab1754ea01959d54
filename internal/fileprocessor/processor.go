// Package fileprocessor handles the runner file handling around a pipeline run
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile runs the ROM file of the options and writes the optional trace file.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, machine options.Machine) (*pipeline.Result, error) {
	traceWriter, err := createTraceWriter(opts)
	if err != nil {
		return nil, fmt.Errorf("creating trace writer: %w", err)
	}

	var writer io.Writer
	if traceWriter != nil {
		writer = traceWriter
		defer func() { _ = traceWriter.Close() }()
	}

	p := pipeline.New(logger)
	result, err := p.Execute(ctx, opts, machine, writer)
	if result != nil {
		printSummary(logger, opts, result)
	}
	if err != nil {
		return result, err
	}

	if traceWriter != nil {
		if err := traceWriter.Close(); err != nil {
			return result, fmt.Errorf("closing trace file %s: %w", opts.Trace, err)
		}
	}
	return result, nil
}

// createTraceWriter creates the trace file, it returns nil if no trace is requested.
func createTraceWriter(opts options.Program) (*os.File, error) {
	if opts.Trace == "" {
		return nil, nil
	}

	file, err := os.Create(opts.Trace)
	if err != nil {
		return nil, fmt.Errorf("creating trace file %s: %w", opts.Trace, err)
	}
	return file, nil
}

func printSummary(logger *log.Logger, opts options.Program, result *pipeline.Result) {
	if opts.Quiet {
		return
	}

	logger.Info("Run summary",
		log.Int("ticks", int(result.State.Cycles)),
		log.Int("steps", int(result.State.Steps)),
		log.Int("redraws", int(result.Redraws)),
		log.Int("sound_ticks", int(result.SoundTicks)),
		log.String("pc", fmt.Sprintf("$%04X", result.State.PC)),
		log.String("slots", fmt.Sprint(result.Slots)),
	)
	if opts.Trace != "" {
		logger.Info("Trace written",
			log.String("file", opts.Trace),
			log.Int("lines", int(result.TraceLines)))
	}
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("retrochip8", log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
