// Package spcfile decodes the fixed-offset .spc snapshot format: a
// dump of the whole APU state (RAM, DSP registers, IPL ROM, and SMP
// registers) that a playback tool can hand straight to apu.Apu to
// resume a track exactly where the dumping emulator left off.
package spcfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"nitro-core-dx/internal/apu"
)

const (
	headerLen   = 33
	ramLen      = apu.RAMLen
	regLen      = 128
	iplROMLen   = apu.IPLROMLen
	ramOffset   = 0x100
	iplROMOffset = 0x101c0
)

var headerBytes = [headerLen]byte{
	'S', 'N', 'E', 'S', '-', 'S', 'P', 'C', '7', '0', '0', ' ',
	'S', 'o', 'u', 'n', 'd', ' ', 'F', 'i', 'l', 'e', ' ',
	'D', 'a', 't', 'a', ' ', 'v', '0', '.', '3', '0',
}

// File is a decoded .spc snapshot, ready to seed an apu.Apu via
// apu.SPCState. The ID666 metadata region (song/game title, dumper,
// comments, timing) is present in every tagged file but is not decoded
// here — it carries no information the DSP/SMP need to resume playback,
// and its on-disk layout is notoriously ambiguous between text and
// binary sub-formats (the original loader guesses from whether the
// date/length fields look like digits).
type File struct {
	VersionMinor uint8
	HasID666Tag  bool
	State        apu.SPCState
}

// Load reads a .spc file from path and decodes it into a File.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a .spc snapshot from r, which must support seeking
// (the format scatters its sections at fixed absolute offsets).
func Decode(r io.ReadSeeker) (*File, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	if header != headerBytes {
		return nil, fmt.Errorf("spcfile: invalid header string")
	}

	var pad uint16
	if err := binary.Read(r, binary.LittleEndian, &pad); err != nil {
		return nil, err
	}
	if pad != 0x1a1a {
		return nil, fmt.Errorf("spcfile: invalid padding bytes")
	}

	var tagFlag [1]byte
	if _, err := io.ReadFull(r, tagFlag[:]); err != nil {
		return nil, err
	}
	var hasTag bool
	switch tagFlag[0] {
	case 0x1a:
		hasTag = true
	case 0x1b:
		hasTag = false
	default:
		return nil, fmt.Errorf("spcfile: unable to determine ID666 tag presence")
	}

	var versionMinor [1]byte
	if _, err := io.ReadFull(r, versionMinor[:]); err != nil {
		return nil, err
	}

	var regs [7]byte // pc(2), a, x, y, psw, sp
	if _, err := io.ReadFull(r, regs[:]); err != nil {
		return nil, err
	}
	pc := binary.LittleEndian.Uint16(regs[0:2])
	a, x, y, psw, sp := regs[2], regs[3], regs[4], regs[5], regs[6]

	if _, err := r.Seek(ramOffset, io.SeekStart); err != nil {
		return nil, err
	}
	file := &File{
		VersionMinor: versionMinor[0],
		HasID666Tag:  hasTag,
		State: apu.SPCState{
			PC: pc, A: a, X: x, Y: y, PSW: psw, SP: sp,
		},
	}

	if _, err := io.ReadFull(r, file.State.RAM[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, file.State.DSPRegs[:]); err != nil {
		return nil, err
	}

	if _, err := r.Seek(iplROMOffset, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, file.State.IPLROM[:]); err != nil {
		return nil, err
	}

	return file, nil
}
