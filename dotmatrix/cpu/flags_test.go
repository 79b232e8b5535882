package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlags_pack(t *testing.T) {
	testCases := []struct {
		desc  string
		flags Flags
		want  uint8
	}{
		{desc: "all clear", flags: Flags{}, want: 0x00},
		{desc: "zero only", flags: Flags{Zero: true}, want: 0x80},
		{desc: "subtract only", flags: Flags{Subtract: true}, want: 0x40},
		{desc: "half carry only", flags: Flags{HalfCarry: true}, want: 0x20},
		{desc: "carry only", flags: Flags{Carry: true}, want: 0x10},
		{desc: "all set", flags: Flags{Zero: true, Subtract: true, HalfCarry: true, Carry: true}, want: 0xF0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, tC.flags.Pack())
		})
	}
}

func TestFlags_packUnpackIdentity(t *testing.T) {
	for i := 0; i < 16; i++ {
		f := Flags{
			Zero:      i&1 != 0,
			Subtract:  i&2 != 0,
			HalfCarry: i&4 != 0,
			Carry:     i&8 != 0,
		}
		assert.Equal(t, f, UnpackFlags(f.Pack()))
	}
}

func TestFlags_unpackIgnoresLowNibble(t *testing.T) {
	assert.Equal(t, Flags{Zero: true}, UnpackFlags(0x8F))
	assert.Equal(t, uint8(0x80), UnpackFlags(0x8F).Pack(), "low nibble never survives a round trip")
}

func TestFlags_string(t *testing.T) {
	assert.Equal(t, "----", Flags{}.String())
	assert.Equal(t, "Z-HC", Flags{Zero: true, HalfCarry: true, Carry: true}.String())
	assert.Equal(t, "-N--", Flags{Subtract: true}.String())
}
