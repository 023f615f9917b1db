package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"nitro-core-dx/internal/apu"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/spcfile"
)

func main() {
	spcPath := pflag.StringP("spc", "s", "", "Path to .spc snapshot file")
	logFile := pflag.StringP("out", "o", "logs.txt", "Output log file")
	seconds := pflag.Float64P("seconds", "n", 1, "Render N seconds then dump logs")
	breakAddr := pflag.String("break", "", "Break at this SMP address (hex, e.g. 0x0400) and report each hit")
	breakLimit := pflag.Int("break-limit", 5, "Stop printing breakpoint hits after this many")
	cycleLogPath := pflag.String("cycle-log", "", "Write a cycle-by-cycle SMP/DSP trace to this file")
	pflag.Parse()

	if *spcPath == "" {
		fmt.Println("Usage: dump_logs --spc <file> [--out <file>] [--seconds <N>] [--break <addr>] [--cycle-log <file>]")
		os.Exit(1)
	}

	snapshot, err := spcfile.Load(*spcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading spc file: %v\n", err)
		os.Exit(1)
	}

	logger := debug.NewLogger(50000)
	logger.SetComponentEnabled(debug.ComponentDSP, true)
	logger.SetMinLevel(debug.LogLevelDebug)

	a := apu.New(logger)
	a.LoadSPCState(&snapshot.State)

	var dbg *debug.Debugger
	if *breakAddr != "" {
		addr, perr := strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(*breakAddr, "0x"), "0X"), 16, 16)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "Invalid --break address %q: %v\n", *breakAddr, perr)
			os.Exit(1)
		}
		dbg = debug.NewDebugger()
		dbg.SetBreakpoint(uint16(addr))
		a.Smp.SetDebugger(dbg)
	}

	if *cycleLogPath != "" {
		cycleLogger, cerr := debug.NewCycleLogger(*cycleLogPath, 0, 0, a, a.Dsp)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "Error creating cycle log: %v\n", cerr)
			os.Exit(1)
		}
		defer cycleLogger.Close()
		a.Smp.SetCycleLogger(cycleLogger)
	}

	const sampleRate = 32000
	numSamples := int32(*seconds * sampleRate)
	left := make([]int16, numSamples)
	right := make([]int16, numSamples)

	fmt.Printf("Rendering %.2fs from %s...\n", *seconds, *spcPath)
	if dbg != nil {
		renderWithBreakpointReporting(a, left, right, numSamples, dbg, *breakLimit)
	} else {
		a.Render(left, right, numSamples)
	}

	entries := logger.GetEntries()
	dspEntries := make([]debug.LogEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Component == debug.ComponentDSP {
			dspEntries = append(dspEntries, entry)
		}
	}

	file, err := os.Create(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating log file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	fmt.Fprintf(file, "DSP Logs from %s (%d entries)\n", *spcPath, len(dspEntries))
	fmt.Fprintf(file, "===========================================\n\n")

	for _, entry := range dspEntries {
		fmt.Fprintf(file, "%s\n", entry.Format())
	}

	fmt.Printf("Dumped %d DSP log entries to %s\n", len(dspEntries), *logFile)
}

// renderWithBreakpointReporting drives the same render loop apu.Apu.Render
// does, but from the outside: Smp.Run returns the instant the debugger
// pauses it, so this loop can report the hit and Resume() before asking
// for more cycles. Cycle accounting for the DSP and timers is unaffected
// by where Run stops, since they advance off Smp's cycle-charging calls
// rather than off Run's return.
func renderWithBreakpointReporting(a *apu.Apu, left, right []int16, numSamples int32, dbg *debug.Debugger, limit int) {
	hits := 0
	for a.Dsp.AvailableSamples() < numSamples {
		a.Smp.Run(numSamples * 64)
		a.Dsp.Flush(a)
		if dbg.IsPaused() {
			hits++
			if hits <= limit {
				fmt.Printf("breakpoint hit #%d at PC=%04X\n", hits, a.Smp.RegPC)
			}
			dbg.Resume()
		}
	}
	a.Dsp.Render(left, right, int(numSamples))
}
