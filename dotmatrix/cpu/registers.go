package cpu

import "github.com/dmatteo/go-dotmatrix/dotmatrix/bit"

// Register selects one of the eight 8 bit register slots.
type Register uint8

const (
	A Register = iota
	B
	C
	D
	E
	F
	H
	L
)

func (r Register) String() string {
	switch r {
	case A:
		return "A"
	case B:
		return "B"
	case C:
		return "C"
	case D:
		return "D"
	case E:
		return "E"
	case F:
		return "F"
	case H:
		return "H"
	case L:
		return "L"
	}
	return "?"
}

// RegisterPair selects a composed 16 bit register. SP is a pseudo-pair: it is
// not backed by two 8 bit slots and is routed by the CPU to its own field.
type RegisterPair uint8

const (
	BC RegisterPair = iota
	DE
	HL
	SP
)

func (p RegisterPair) String() string {
	switch p {
	case BC:
		return "BC"
	case DE:
		return "DE"
	case HL:
		return "HL"
	case SP:
		return "SP"
	}
	return "??"
}

// RegisterFile holds the eight named 8 bit slots. It is a plain value type:
// snapshots are taken by copying it.
type RegisterFile struct {
	A, B, C, D, E, F, H, L uint8
}

func (rf *RegisterFile) Get(r Register) uint8 {
	switch r {
	case A:
		return rf.A
	case B:
		return rf.B
	case C:
		return rf.C
	case D:
		return rf.D
	case E:
		return rf.E
	case F:
		return rf.F
	case H:
		return rf.H
	case L:
		return rf.L
	}
	return 0
}

func (rf *RegisterFile) Set(r Register, value uint8) {
	switch r {
	case A:
		rf.A = value
	case B:
		rf.B = value
	case C:
		rf.C = value
	case D:
		rf.D = value
	case E:
		rf.E = value
	case F:
		rf.F = value
	case H:
		rf.H = value
	case L:
		rf.L = value
	}
}

// GetPair returns the composed value of BC, DE or HL, high byte first.
// SP is not backed by the register file and is handled by the CPU.
func (rf *RegisterFile) GetPair(p RegisterPair) uint16 {
	switch p {
	case BC:
		return bit.Combine(rf.B, rf.C)
	case DE:
		return bit.Combine(rf.D, rf.E)
	case HL:
		return bit.Combine(rf.H, rf.L)
	}
	panic("register file: " + p.String() + " is not a backed pair")
}

// SetPair splits a 16 bit value into the two slots of BC, DE or HL.
func (rf *RegisterFile) SetPair(p RegisterPair, value uint16) {
	switch p {
	case BC:
		rf.B = bit.High(value)
		rf.C = bit.Low(value)
	case DE:
		rf.D = bit.High(value)
		rf.E = bit.Low(value)
	case HL:
		rf.H = bit.High(value)
		rf.L = bit.Low(value)
	default:
		panic("register file: " + p.String() + " is not a backed pair")
	}
}
