package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/pflag"

	"nitro-core-dx/internal/apu"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/spcfile"
)

const sampleRate = 32000

func main() {
	spcPath := pflag.StringP("input", "i", "", "Path to .spc snapshot file")
	outPath := pflag.StringP("output", "o", "out.wav", "Path to output WAV file")
	seconds := pflag.Float64P("seconds", "s", 10, "Number of seconds to render")
	enableLogging := pflag.Bool("log", false, "Enable component logging to stderr")
	pflag.Parse()

	if *spcPath == "" {
		fmt.Println("Usage: apuplay --input <path-to-spc> [--output out.wav] [--seconds N]")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	var logger *debug.Logger
	if *enableLogging {
		logger = debug.NewLogger(10000)
		logger.SetComponentEnabled(debug.ComponentSMP, true)
		logger.SetComponentEnabled(debug.ComponentDSP, true)
		logger.SetComponentEnabled(debug.ComponentTimer, true)
		logger.SetComponentEnabled(debug.ComponentMemory, true)
		logger.SetComponentEnabled(debug.ComponentSystem, true)
	}

	snapshot, err := spcfile.Load(*spcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading spc file: %v\n", err)
		os.Exit(1)
	}

	a := apu.New(logger)
	a.LoadSPCState(&snapshot.State)

	numSamples := int32(*seconds * sampleRate)
	left := make([]int16, numSamples)
	right := make([]int16, numSamples)
	a.Render(left, right, numSamples)

	if logger != nil {
		logger.Shutdown() // drain queued entries before reading them
		for _, entry := range logger.GetEntries() {
			fmt.Fprintln(os.Stderr, entry.Format())
		}
	}

	if err := writeWAV(*outPath, left, right); err != nil {
		fmt.Fprintf(os.Stderr, "error writing wav file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Rendered %.2fs from %s to %s\n", *seconds, *spcPath, *outPath)
}

func writeWAV(path string, left, right []int16) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	defer enc.Close()

	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		Data:   make([]int, 0, len(left)*2),
	}
	for i := range left {
		buf.Data = append(buf.Data, int(left[i]), int(right[i]))
	}
	return enc.Write(buf)
}
