package smp

// unaryOp/binaryOp/binaryOp16 are bound method values (always closing
// over the one Smp instance calling them), which is why a plain
// func(uint8) uint8 signature is enough here despite every one of these
// being an (*Smp) method elsewhere in the package.
type unaryOp func(uint8) uint8
type binaryOp func(uint8, uint8) uint8
type binaryOp16 func(uint16, uint16) uint16

func (s *Smp) readAddr16() uint16 {
	addr := uint16(s.readPC())
	addr |= uint16(s.readPC()) << 8
	return addr
}

func (s *Smp) adjustAddr(op unaryOp) {
	addr := s.readAddr16()
	result := s.read(addr)
	result = op(result)
	s.write(addr, result)
}

func (s *Smp) adjustDP(op unaryOp) {
	addr := s.readPC()
	result := s.readDP(addr)
	result = op(result)
	s.writeDP(addr, result)
}

func (s *Smp) adjustDPX(op unaryOp) {
	addr := s.readPC()
	s.cycles(1)
	result := s.readDP(addr + s.RegX)
	result = op(result)
	s.writeDP(addr+s.RegX, result)
}

func (s *Smp) readAddrOp(op binaryOp, reg *uint8) {
	addr := s.readAddr16()
	y := s.read(addr)
	*reg = op(*reg, y)
}

func (s *Smp) readAddrI(op binaryOp, index uint8) {
	addr := s.readAddr16()
	s.cycles(1)
	y := s.read(addr + uint16(index))
	s.RegA = op(s.RegA, y)
}

func (s *Smp) readConst(op binaryOp, reg *uint8) {
	y := s.readPC()
	*reg = op(*reg, y)
}

func (s *Smp) readDPOp(op binaryOp, reg *uint8) {
	addr := s.readPC()
	y := s.readDP(addr)
	*reg = op(*reg, y)
}

func (s *Smp) readDPI(op binaryOp, reg *uint8, index uint8) {
	addr := s.readPC()
	s.cycles(1)
	z := s.readDP(addr + index)
	*reg = op(*reg, z)
}

func (s *Smp) readDPW(op binaryOp16, isCPW bool) {
	addr := s.readPC()
	x := uint16(s.readDP(addr))
	addr++
	if !isCPW {
		s.cycles(1)
	}
	x |= uint16(s.readDP(addr)) << 8
	ya := s.getRegYA()
	ya = op(ya, x)
	s.setRegYA(ya)
}

func (s *Smp) readIDPX(op binaryOp) {
	addr := s.readPC() + s.RegX
	s.cycles(1)
	addr2 := uint16(s.readDP(addr))
	addr++
	addr2 |= uint16(s.readDP(addr)) << 8
	x := s.read(addr2)
	s.RegA = op(s.RegA, x)
}

func (s *Smp) readIDPY(op binaryOp) {
	addr := s.readPC()
	s.cycles(1)
	addr2 := uint16(s.readDP(addr))
	addr++
	addr2 |= uint16(s.readDP(addr)) << 8
	x := s.read(addr2 + uint16(s.RegY))
	s.RegA = op(s.RegA, x)
}

func (s *Smp) readIX(op binaryOp) {
	s.cycles(1)
	x := s.readDP(s.RegX)
	s.RegA = op(s.RegA, x)
}

func (s *Smp) setFlag(flag *bool, value bool, isDestPSWI bool) {
	s.cycles(1)
	if isDestPSWI {
		s.cycles(1)
	}
	*flag = value
}

func (s *Smp) transfer(src uint8, dst *uint8, isDestSP bool) {
	s.cycles(1)
	*dst = src
	if !isDestSP {
		s.setPSWNZ(uint32(*dst))
	}
}

func (s *Smp) writeDPConst(op binaryOp, isCmp bool) {
	x := s.readPC()
	addr := s.readPC()
	y := s.readDP(addr)
	y = op(y, x)
	if !isCmp {
		s.writeDP(addr, y)
	} else {
		s.cycles(1)
	}
}

func (s *Smp) writeDPDP(op binaryOp, isCmp, isSt bool) {
	addr := s.readPC()
	x := s.readDP(addr)
	y := s.readPC()
	var z uint8
	if !isSt {
		z = s.readDP(y)
	}
	z = op(z, x)
	if !isCmp {
		s.writeDP(y, z)
	} else {
		s.cycles(1)
	}
}

func (s *Smp) writeIXIY(op binaryOp, isCmp bool) {
	s.cycles(1)
	x := s.readDP(s.RegY)
	y := s.readDP(s.RegX)
	y = op(y, x)
	if !isCmp {
		s.writeDP(s.RegX, y)
	} else {
		s.cycles(1)
	}
}

func (s *Smp) pull(reg *uint8) {
	s.cycles(2)
	*reg = s.readSP()
}

func (s *Smp) writeDPImm(value uint8) {
	addr := s.readPC()
	s.readDP(addr)
	s.writeDP(addr, value)
}

func (s *Smp) writeDPI(value uint8, index uint8) {
	addr := s.readPC() + index
	s.cycles(1)
	s.readDP(addr)
	s.writeDP(addr, value)
}

func (s *Smp) writeAddr(value uint8) {
	addr := s.readAddr16()
	s.read(addr)
	s.write(addr, value)
}

func (s *Smp) writeAddrI(index uint8) {
	addr := s.readAddr16()
	s.cycles(1)
	addr += uint16(index)
	s.read(addr)
	s.write(addr, s.RegA)
}

// step fetches and executes exactly one instruction.
func (s *Smp) step() {
	opcode := s.readPC()
	switch opcode {
	case 0x00:
		s.nop()
	case 0x01:
		s.jst(opcode)
	case 0x02:
		s.setBit(opcode)
	case 0x03:
		s.branchBit(opcode)
	case 0x04:
		s.readDPOp(s.or, &s.RegA)
	case 0x05:
		s.readAddrOp(s.or, &s.RegA)
	case 0x06:
		s.readIX(s.or)
	case 0x07:
		s.readIDPX(s.or)
	case 0x08:
		s.readConst(s.or, &s.RegA)
	case 0x09:
		s.writeDPDP(s.or, false, false)
	case 0x0a:
		s.setAddrBit(opcode)
	case 0x0b:
		s.adjustDP(s.asl)
	case 0x0c:
		s.adjustAddr(s.asl)
	case 0x0d:
		s.push(s.GetPSW())
	case 0x0e:
		s.testAddr(true)
	case 0x0f:
		s.brk()

	case 0x10:
		s.branch(!s.pswN)
	case 0x11:
		s.jst(opcode)
	case 0x12:
		s.setBit(opcode)
	case 0x13:
		s.branchBit(opcode)
	case 0x14:
		s.readDPI(s.or, &s.RegA, s.RegX)
	case 0x15:
		s.readAddrI(s.or, s.RegX)
	case 0x16:
		s.readAddrI(s.or, s.RegY)
	case 0x17:
		s.readIDPY(s.or)
	case 0x18:
		s.writeDPConst(s.or, false)
	case 0x19:
		s.writeIXIY(s.or, false)
	case 0x1a:
		s.adjustDPW(0xffff)
	case 0x1b:
		s.adjustDPX(s.asl)
	case 0x1c:
		s.cycles(1)
		s.RegA = s.asl(s.RegA)
	case 0x1d:
		s.cycles(1)
		s.RegX = s.dec(s.RegX)
	case 0x1e:
		s.readAddrOp(s.cmp, &s.RegX)
	case 0x1f:
		s.jmpIAddrX()

	case 0x20:
		s.setFlag(&s.pswP, false, false)
	case 0x21:
		s.jst(opcode)
	case 0x22:
		s.setBit(opcode)
	case 0x23:
		s.branchBit(opcode)
	case 0x24:
		s.readDPOp(s.and, &s.RegA)
	case 0x25:
		s.readAddrOp(s.and, &s.RegA)
	case 0x26:
		s.readIX(s.and)
	case 0x27:
		s.readIDPX(s.and)
	case 0x28:
		s.readConst(s.and, &s.RegA)
	case 0x29:
		s.writeDPDP(s.and, false, false)
	case 0x2a:
		s.setAddrBit(opcode)
	case 0x2b:
		s.adjustDP(s.rol)
	case 0x2c:
		s.adjustAddr(s.rol)
	case 0x2d:
		s.push(s.RegA)
	case 0x2e:
		s.bneDP()
	case 0x2f:
		s.branch(true)

	case 0x30:
		s.branch(s.pswN)
	case 0x31:
		s.jst(opcode)
	case 0x32:
		s.setBit(opcode)
	case 0x33:
		s.branchBit(opcode)
	case 0x34:
		s.readDPI(s.and, &s.RegA, s.RegX)
	case 0x35:
		s.readAddrI(s.and, s.RegX)
	case 0x36:
		s.readAddrI(s.and, s.RegY)
	case 0x37:
		s.readIDPY(s.and)
	case 0x38:
		s.writeDPConst(s.and, false)
	case 0x39:
		s.writeIXIY(s.and, false)
	case 0x3a:
		s.adjustDPW(1)
	case 0x3b:
		s.adjustDPX(s.rol)
	case 0x3c:
		s.cycles(1)
		s.RegA = s.rol(s.RegA)
	case 0x3d:
		s.cycles(1)
		s.RegX = s.inc(s.RegX)
	case 0x3e:
		s.readDPOp(s.cmp, &s.RegX)
	case 0x3f:
		s.jsrAddr()

	case 0x40:
		s.setFlag(&s.pswP, true, false)
	case 0x41:
		s.jst(opcode)
	case 0x42:
		s.setBit(opcode)
	case 0x43:
		s.branchBit(opcode)
	case 0x44:
		s.readDPOp(s.eor, &s.RegA)
	case 0x45:
		s.readAddrOp(s.eor, &s.RegA)
	case 0x46:
		s.readIX(s.eor)
	case 0x47:
		s.readIDPX(s.eor)
	case 0x48:
		s.readConst(s.eor, &s.RegA)
	case 0x49:
		s.writeDPDP(s.eor, false, false)
	case 0x4a:
		s.setAddrBit(opcode)
	case 0x4b:
		s.adjustDP(s.lsr)
	case 0x4c:
		s.adjustAddr(s.lsr)
	case 0x4d:
		s.push(s.RegX)
	case 0x4e:
		s.testAddr(false)
	case 0x4f:
		s.jspDP()

	case 0x50:
		s.branch(!s.pswV)
	case 0x51:
		s.jst(opcode)
	case 0x52:
		s.setBit(opcode)
	case 0x53:
		s.branchBit(opcode)
	case 0x54:
		s.readDPI(s.eor, &s.RegA, s.RegX)
	case 0x55:
		s.readAddrI(s.eor, s.RegX)
	case 0x56:
		s.readAddrI(s.eor, s.RegY)
	case 0x57:
		s.readIDPY(s.eor)
	case 0x58:
		s.writeDPConst(s.eor, false)
	case 0x59:
		s.writeIXIY(s.eor, false)
	case 0x5a:
		s.readDPW(s.cpw, true)
	case 0x5b:
		s.adjustDPX(s.lsr)
	case 0x5c:
		s.cycles(1)
		s.RegA = s.lsr(s.RegA)
	case 0x5d:
		s.transfer(s.RegA, &s.RegX, false)
	case 0x5e:
		s.readAddrOp(s.cmp, &s.RegY)
	case 0x5f:
		s.jmpAddr()

	case 0x60:
		s.setFlag(&s.pswC, false, false)
	case 0x61:
		s.jst(opcode)
	case 0x62:
		s.setBit(opcode)
	case 0x63:
		s.branchBit(opcode)
	case 0x64:
		s.readDPOp(s.cmp, &s.RegA)
	case 0x65:
		s.readAddrOp(s.cmp, &s.RegA)
	case 0x66:
		s.readIX(s.cmp)
	case 0x67:
		s.readIDPX(s.cmp)
	case 0x68:
		s.readConst(s.cmp, &s.RegA)
	case 0x69:
		s.writeDPDP(s.cmp, true, false)
	case 0x6a:
		s.setAddrBit(opcode)
	case 0x6b:
		s.adjustDP(s.ror)
	case 0x6c:
		s.adjustAddr(s.ror)
	case 0x6d:
		s.push(s.RegY)
	case 0x6e:
		s.bneDPDec()
	case 0x6f:
		s.rts()

	case 0x70:
		s.branch(s.pswV)
	case 0x71:
		s.jst(opcode)
	case 0x72:
		s.setBit(opcode)
	case 0x73:
		s.branchBit(opcode)
	case 0x74:
		s.readDPI(s.cmp, &s.RegA, s.RegX)
	case 0x75:
		s.readAddrI(s.cmp, s.RegX)
	case 0x76:
		s.readAddrI(s.cmp, s.RegY)
	case 0x77:
		s.readIDPY(s.cmp)
	case 0x78:
		s.writeDPConst(s.cmp, true)
	case 0x79:
		s.writeIXIY(s.cmp, true)
	case 0x7a:
		s.readDPW(s.adw, false)
	case 0x7b:
		s.adjustDPX(s.ror)
	case 0x7c:
		s.cycles(1)
		s.RegA = s.ror(s.RegA)
	case 0x7d:
		s.transfer(s.RegX, &s.RegA, false)
	case 0x7e:
		s.readDPOp(s.cmp, &s.RegY)
	case 0x7f:
		s.rti()

	case 0x80:
		s.setFlag(&s.pswC, true, false)
	case 0x81:
		s.jst(opcode)
	case 0x82:
		s.setBit(opcode)
	case 0x83:
		s.branchBit(opcode)
	case 0x84:
		s.readDPOp(s.adc, &s.RegA)
	case 0x85:
		s.readAddrOp(s.adc, &s.RegA)
	case 0x86:
		s.readIX(s.adc)
	case 0x87:
		s.readIDPX(s.adc)
	case 0x88:
		s.readConst(s.adc, &s.RegA)
	case 0x89:
		s.writeDPDP(s.adc, false, false)
	case 0x8a:
		s.setAddrBit(opcode)
	case 0x8b:
		s.adjustDP(s.dec)
	case 0x8c:
		s.adjustAddr(s.dec)
	case 0x8d:
		s.readConst(s.ld, &s.RegY)
	case 0x8e:
		s.plp()
	case 0x8f:
		s.writeDPConst(s.st, false)

	case 0x90:
		s.branch(!s.pswC)
	case 0x91:
		s.jst(opcode)
	case 0x92:
		s.setBit(opcode)
	case 0x93:
		s.branchBit(opcode)
	case 0x94:
		s.readDPI(s.adc, &s.RegA, s.RegX)
	case 0x95:
		s.readAddrI(s.adc, s.RegX)
	case 0x96:
		s.readAddrI(s.adc, s.RegY)
	case 0x97:
		s.readIDPY(s.adc)
	case 0x98:
		s.writeDPConst(s.adc, false)
	case 0x99:
		s.writeIXIY(s.adc, false)
	case 0x9a:
		s.readDPW(s.sbw, false)
	case 0x9b:
		s.adjustDPX(s.dec)
	case 0x9c:
		s.cycles(1)
		s.RegA = s.dec(s.RegA)
	case 0x9d:
		s.transfer(s.RegSP, &s.RegX, false)
	case 0x9e:
		s.divYA()
	case 0x9f:
		s.xcn()

	case 0xa0:
		s.setFlag(&s.pswI, true, true)
	case 0xa1:
		s.jst(opcode)
	case 0xa2:
		s.setBit(opcode)
	case 0xa3:
		s.branchBit(opcode)
	case 0xa4:
		s.readDPOp(s.sbc, &s.RegA)
	case 0xa5:
		s.readAddrOp(s.sbc, &s.RegA)
	case 0xa6:
		s.readIX(s.sbc)
	case 0xa7:
		s.readIDPX(s.sbc)
	case 0xa8:
		s.readConst(s.sbc, &s.RegA)
	case 0xa9:
		s.writeDPDP(s.sbc, false, false)
	case 0xaa:
		s.setAddrBit(opcode)
	case 0xab:
		s.adjustDP(s.inc)
	case 0xac:
		s.adjustAddr(s.inc)
	case 0xad:
		s.readConst(s.cmp, &s.RegY)
	case 0xae:
		s.pull(&s.RegA)
	case 0xaf:
		s.staIXInc()

	case 0xb0:
		s.branch(s.pswC)
	case 0xb1:
		s.jst(opcode)
	case 0xb2:
		s.setBit(opcode)
	case 0xb3:
		s.branchBit(opcode)
	case 0xb4:
		s.readDPI(s.sbc, &s.RegA, s.RegX)
	case 0xb5:
		s.readAddrI(s.sbc, s.RegX)
	case 0xb6:
		s.readAddrI(s.sbc, s.RegY)
	case 0xb7:
		s.readIDPY(s.sbc)
	case 0xb8:
		s.writeDPConst(s.sbc, false)
	case 0xb9:
		s.writeIXIY(s.sbc, false)
	case 0xba:
		s.readDPW(s.ldw, false)
	case 0xbb:
		s.adjustDPX(s.inc)
	case 0xbc:
		s.cycles(1)
		s.RegA = s.inc(s.RegA)
	case 0xbd:
		s.transfer(s.RegX, &s.RegSP, true)
	case 0xbe:
		s.das()
	case 0xbf:
		s.ldaIXInc()

	case 0xc0:
		s.setFlag(&s.pswI, false, true)
	case 0xc1:
		s.jst(opcode)
	case 0xc2:
		s.setBit(opcode)
	case 0xc3:
		s.branchBit(opcode)
	case 0xc4:
		s.writeDPImm(s.RegA)
	case 0xc5:
		s.writeAddr(s.RegA)
	case 0xc6:
		s.staIX()
	case 0xc7:
		s.staIDPX()
	case 0xc8:
		s.readConst(s.cmp, &s.RegX)
	case 0xc9:
		s.writeAddr(s.RegX)
	case 0xca:
		s.setAddrBit(opcode)
	case 0xcb:
		s.writeDPImm(s.RegY)
	case 0xcc:
		s.writeAddr(s.RegY)
	case 0xcd:
		s.readConst(s.ld, &s.RegX)
	case 0xce:
		s.pull(&s.RegX)
	case 0xcf:
		s.mulYA()

	case 0xd0:
		s.branch(!s.pswZ)
	case 0xd1:
		s.jst(opcode)
	case 0xd2:
		s.setBit(opcode)
	case 0xd3:
		s.branchBit(opcode)
	case 0xd4:
		s.writeDPI(s.RegA, s.RegX)
	case 0xd5:
		s.writeAddrI(s.RegX)
	case 0xd6:
		s.writeAddrI(s.RegY)
	case 0xd7:
		s.staIDPY()
	case 0xd8:
		s.writeDPImm(s.RegX)
	case 0xd9:
		s.writeDPI(s.RegX, s.RegY)
	case 0xda:
		s.stwDP()
	case 0xdb:
		s.writeDPI(s.RegY, s.RegX)
	case 0xdc:
		s.cycles(1)
		s.RegY = s.dec(s.RegY)
	case 0xdd:
		s.transfer(s.RegY, &s.RegA, false)
	case 0xde:
		s.bneDPX()
	case 0xdf:
		s.daa()

	case 0xe0:
		s.clv()
	case 0xe1:
		s.jst(opcode)
	case 0xe2:
		s.setBit(opcode)
	case 0xe3:
		s.branchBit(opcode)
	case 0xe4:
		s.readDPOp(s.ld, &s.RegA)
	case 0xe5:
		s.readAddrOp(s.ld, &s.RegA)
	case 0xe6:
		s.readIX(s.ld)
	case 0xe7:
		s.readIDPX(s.ld)
	case 0xe8:
		s.readConst(s.ld, &s.RegA)
	case 0xe9:
		s.readAddrOp(s.ld, &s.RegX)
	case 0xea:
		s.setAddrBit(opcode)
	case 0xeb:
		s.readDPOp(s.ld, &s.RegY)
	case 0xec:
		s.readAddrOp(s.ld, &s.RegY)
	case 0xed:
		s.cmc()
	case 0xee:
		s.pull(&s.RegY)
	case 0xef:
		s.sleepStop()

	case 0xf0:
		s.branch(s.pswZ)
	case 0xf1:
		s.jst(opcode)
	case 0xf2:
		s.setBit(opcode)
	case 0xf3:
		s.branchBit(opcode)
	case 0xf4:
		s.readDPI(s.ld, &s.RegA, s.RegX)
	case 0xf5:
		s.readAddrI(s.ld, s.RegX)
	case 0xf6:
		s.readAddrI(s.ld, s.RegY)
	case 0xf7:
		s.readIDPY(s.ld)
	case 0xf8:
		s.readDPOp(s.ld, &s.RegX)
	case 0xf9:
		s.readDPI(s.ld, &s.RegX, s.RegY)
	case 0xfa:
		s.writeDPDP(s.st, false, true)
	case 0xfb:
		s.readDPI(s.ld, &s.RegY, s.RegX)
	case 0xfc:
		s.cycles(1)
		s.RegY = s.inc(s.RegY)
	case 0xfd:
		s.transfer(s.RegA, &s.RegY, false)
	case 0xfe:
		s.bneYDec()
	case 0xff:
		s.sleepStop()
	}
}
