package cpu

import (
	"fmt"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/bit"
)

// DecodeError reports a byte with no mapped instruction. The pc does not
// advance past it; skipping is a host-level policy.
type DecodeError struct {
	Opcode byte
	Addr   uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at 0x%04X", e.Opcode, e.Addr)
}

// Builder is the decoded form of a single opcode byte: the total size of the
// instruction and a constructor over its operand bytes (low byte first).
type Builder struct {
	size  uint16
	build func(lo, hi byte) Instruction
}

// Size returns the instruction size in bytes, opcode included.
func (b Builder) Size() uint16 { return b.size }

// Build materializes the instruction from its operand bytes. Opcodes with
// fewer than two operand bytes ignore the extra arguments.
func (b Builder) Build(lo, hi byte) Instruction { return b.build(lo, hi) }

// Decode maps a single opcode byte to its instruction builder. It is pure
// and total: every byte yields either a builder or a *DecodeError. The table
// is intentionally partial.
func Decode(opcode byte) (Builder, error) {
	b, ok := opcodes[opcode]
	if !ok {
		return Builder{}, &DecodeError{Opcode: opcode}
	}
	return b, nil
}

// Known reports whether the opcode has a mapped instruction.
func Known(opcode byte) bool {
	_, ok := opcodes[opcode]
	return ok
}

// DecodeAt decodes the full instruction stored at the given address, reading
// operand bytes through the bus. Decode faults carry the opcode byte and the
// address they were found at.
func DecodeAt(address uint16, bus Bus) (Instruction, error) {
	opcode := bus.ReadByte(address)
	b, ok := opcodes[opcode]
	if !ok {
		return nil, &DecodeError{Opcode: opcode, Addr: address}
	}

	var lo, hi byte
	if b.size > 1 {
		lo = bus.ReadByte(address + 1)
	}
	if b.size > 2 {
		hi = bus.ReadByte(address + 2)
	}
	return b.build(lo, hi), nil
}

// opcodes is the open decode table. New instructions are registered here
// without touching the dispatcher.
var opcodes = map[byte]Builder{}

func fixed(in Instruction) Builder {
	return Builder{size: in.Size(), build: func(_, _ byte) Instruction { return in }}
}

func register(opcode byte, b Builder) {
	if _, dup := opcodes[opcode]; dup {
		panic(fmt.Sprintf("decode table: duplicate opcode 0x%02X", opcode))
	}
	opcodes[opcode] = b
}

func init() {
	// Register order of the 8 bit opcode grids. Slot 6 is the (HL) memory
	// column, which this instruction set does not implement.
	grid := []Register{B, C, D, E, H, L, 0xFF, A}
	pairs := []RegisterPair{BC, DE, HL, SP}

	register(0x00, fixed(Nop{}))

	for i, dst := range grid {
		if dst == 0xFF {
			continue
		}

		// INC r / DEC r / LD r, n share a per-register row stride of 8.
		register(0x04+byte(i)*8, fixed(Inc{Reg: dst}))
		register(0x05+byte(i)*8, fixed(Dec{Reg: dst}))

		d := dst
		register(0x06+byte(i)*8, Builder{size: 2, build: func(lo, _ byte) Instruction {
			return Load{Dst: d, Src: Imm8(lo)}
		}})

		// LD dst, src block at 0x40-0x7F.
		for j, src := range grid {
			if src == 0xFF {
				continue
			}
			register(0x40+byte(i)*8+byte(j), fixed(Load{Dst: dst, Src: Reg8(src)}))
		}

		// ADD A, r at 0x80-0x87 and SUB r at 0x90-0x97.
		register(0x80+byte(i), fixed(Add{Src: dst}))
		register(0x90+byte(i), fixed(Sub{Src: dst}))
	}

	for i, p := range pairs {
		pair := p
		register(0x01+byte(i)*0x10, Builder{size: 3, build: func(lo, hi byte) Instruction {
			return Load16{Dst: pair, Src: Imm16(bit.Combine(hi, lo))}
		}})
		register(0x03+byte(i)*0x10, fixed(Inc16{Pair: p}))
		register(0x0B+byte(i)*0x10, fixed(Dec16{Pair: p}))
	}

	// LD SP, HL
	register(0xF9, fixed(Load16{Dst: SP, Src: Pair16(HL)}))

	register(0xC3, Builder{size: 3, build: func(lo, hi byte) Instruction {
		return Jump{Target: Absolute(bit.Combine(hi, lo))}
	}})
	register(0x18, Builder{size: 2, build: func(lo, _ byte) Instruction {
		return JumpRelative{Target: Relative(int8(lo))}
	}})
}
