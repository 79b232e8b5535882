package cpu

import "github.com/dmatteo/go-dotmatrix/dotmatrix/bit"

// add sets A to A+value with wrapping and updates all four flags.
func (c *CPU) add(value uint8) {
	a := c.Registers.A
	result, carry := bit.CheckedAdd(a, value)

	c.Flags.Zero = result == 0
	c.Flags.Subtract = false
	c.Flags.HalfCarry = (a&0xF)+(value&0xF) > 0xF
	c.Flags.Carry = carry

	c.Registers.A = result
}

// sub sets A to A-value with wrapping and updates all four flags.
func (c *CPU) sub(value uint8) {
	a := c.Registers.A
	result, borrow := bit.CheckedSub(a, value)

	c.Flags.Zero = result == 0
	c.Flags.Subtract = true
	c.Flags.HalfCarry = (a & 0xF) < (value & 0xF)
	c.Flags.Carry = borrow

	c.Registers.A = result
}

// inc returns value+1 with wrapping. The carry flag is deliberately left
// untouched, matching the hardware.
func (c *CPU) inc(value uint8) uint8 {
	result := value + 1

	c.Flags.Zero = result == 0
	c.Flags.Subtract = false
	c.Flags.HalfCarry = (value & 0xF) == 0xF

	return result
}

// dec returns value-1 with wrapping. Carry is left untouched, like inc.
func (c *CPU) dec(value uint8) uint8 {
	result := value - 1

	c.Flags.Zero = result == 0
	c.Flags.Subtract = true
	c.Flags.HalfCarry = (value & 0xF) == 0

	return result
}
