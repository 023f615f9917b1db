package spcfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildMinimalSPC(t *testing.T, hasTag bool) []byte {
	t.Helper()
	buf := make([]byte, iplROMOffset+iplROMLen)
	copy(buf, headerBytes[:])
	binary.LittleEndian.PutUint16(buf[33:35], 0x1a1a)
	if hasTag {
		buf[35] = 0x1a
	} else {
		buf[35] = 0x1b
	}
	buf[36] = 30 // version_minor

	binary.LittleEndian.PutUint16(buf[37:39], 0x0400) // pc
	buf[39] = 0x11                                    // a
	buf[40] = 0x22                                     // x
	buf[41] = 0x33                                     // y
	buf[42] = 0x44                                     // psw
	buf[43] = 0xef                                     // sp

	buf[ramOffset] = 0xaa
	buf[ramOffset+ramLen] = 0xbb // first DSP register byte
	buf[iplROMOffset] = 0xcd

	return buf
}

func TestDecodeMinimalFileWithoutTag(t *testing.T) {
	raw := buildMinimalSPC(t, false)
	f, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.HasID666Tag {
		t.Fatal("expected HasID666Tag to be false")
	}
	if f.State.PC != 0x0400 {
		t.Errorf("expected pc=0x0400, got 0x%04X", f.State.PC)
	}
	if f.State.A != 0x11 || f.State.X != 0x22 || f.State.Y != 0x33 || f.State.PSW != 0x44 || f.State.SP != 0xef {
		t.Errorf("register fields decoded incorrectly: %+v", f.State)
	}
	if f.State.RAM[0] != 0xaa {
		t.Errorf("expected ram[0]=0xaa, got 0x%02X", f.State.RAM[0])
	}
	if f.State.DSPRegs[0] != 0xbb {
		t.Errorf("expected dsp reg[0]=0xbb, got 0x%02X", f.State.DSPRegs[0])
	}
	if f.State.IPLROM[0] != 0xcd {
		t.Errorf("expected ipl_rom[0]=0xcd, got 0x%02X", f.State.IPLROM[0])
	}
}

func TestDecodeRejectsBadHeader(t *testing.T) {
	raw := buildMinimalSPC(t, false)
	raw[0] = 'X'
	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected an error for a corrupted header")
	}
}

func TestDecodeRejectsBadPadding(t *testing.T) {
	raw := buildMinimalSPC(t, false)
	raw[33] = 0x00
	raw[34] = 0x00
	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected an error for invalid padding bytes")
	}
}

func TestDecodeHasTagFlagSetsHasID666Tag(t *testing.T) {
	raw := buildMinimalSPC(t, true)
	f, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.HasID666Tag {
		t.Fatal("expected HasID666Tag to be true")
	}
}
