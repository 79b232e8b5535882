package cpu

import "github.com/dmatteo/go-dotmatrix/dotmatrix/bit"

// Flag bit positions inside the packed flag byte. Bits 0-3 are always zero.
const (
	zeroFlagBit      = 7
	subFlagBit       = 6
	halfCarryFlagBit = 5
	carryFlagBit     = 4
)

// Flags holds the four status flags of the last arithmetic result.
type Flags struct {
	Zero      bool
	Subtract  bool
	HalfCarry bool
	Carry     bool
}

// Pack encodes the flags into a byte at the fixed bit positions.
// UnpackFlags is its inverse.
func (f Flags) Pack() uint8 {
	var b uint8
	if f.Zero {
		b = bit.Set(zeroFlagBit, b)
	}
	if f.Subtract {
		b = bit.Set(subFlagBit, b)
	}
	if f.HalfCarry {
		b = bit.Set(halfCarryFlagBit, b)
	}
	if f.Carry {
		b = bit.Set(carryFlagBit, b)
	}
	return b
}

// UnpackFlags decodes a packed flag byte. The low nibble is ignored.
func UnpackFlags(b uint8) Flags {
	return Flags{
		Zero:      bit.IsSet(zeroFlagBit, b),
		Subtract:  bit.IsSet(subFlagBit, b),
		HalfCarry: bit.IsSet(halfCarryFlagBit, b),
		Carry:     bit.IsSet(carryFlagBit, b),
	}
}

// String renders the flags in the usual "ZNHC" style, with '-' for clear bits.
func (f Flags) String() string {
	s := [4]byte{'-', '-', '-', '-'}
	if f.Zero {
		s[0] = 'Z'
	}
	if f.Subtract {
		s[1] = 'N'
	}
	if f.HalfCarry {
		s[2] = 'H'
	}
	if f.Carry {
		s[3] = 'C'
	}
	return string(s[:])
}
