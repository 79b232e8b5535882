package cpu

import (
	"errors"
	"fmt"
)

// Bus provides the memory interface the CPU fetches and stores through.
type Bus interface {
	ReadByte(address uint16) byte
	WriteByte(address uint16, value byte)
}

// ErrJumpTarget is an internal consistency fault: a jump instruction carried
// a target kind its handler cannot take. The decoder must never produce this
// combination, so hitting it means decoder and executor disagree.
var ErrJumpTarget = errors.New("jump target kind does not match instruction")

// Outcome is the result of executing one instruction.
type Outcome struct {
	NextPC uint16
	Cycles int
	Size   uint16
}

// startPC and startSP are the conventional power-on values: programs are
// loaded at 0x100 and the stack grows down from 0xFFFE.
const (
	startPC uint16 = 0x0100
	startSP uint16 = 0xFFFE
)

// CPU holds the register file, flags and program counters, and executes
// decoded instructions against an injected bus. It is exclusively owned by
// one machine instance and provides no internal synchronization.
type CPU struct {
	Registers RegisterFile
	Flags     Flags

	pc uint16
	sp uint16

	bus      Bus
	observer Observer
}

// New returns a CPU wired to the given bus, with pc and sp at their
// power-on values.
func New(bus Bus) *CPU {
	return &CPU{
		pc:  startPC,
		sp:  startSP,
		bus: bus,
	}
}

func (c *CPU) PC() uint16      { return c.pc }
func (c *CPU) SetPC(pc uint16) { c.pc = pc }
func (c *CPU) SP() uint16      { return c.sp }
func (c *CPU) SetSP(sp uint16) { c.sp = sp }

// SetObserver installs a per-instruction trace hook. A nil observer
// disables tracing.
func (c *CPU) SetObserver(o Observer) { c.observer = o }

// Reset restores the power-on state. The bus contents are not touched.
func (c *CPU) Reset() {
	c.Registers = RegisterFile{}
	c.Flags = Flags{}
	c.pc = startPC
	c.sp = startSP
}

// Step is the plain interpreter strategy: fetch, decode and execute the
// instruction at pc, then commit the next pc. On a decode or execution
// fault the pc is left unchanged.
func (c *CPU) Step() error {
	in, err := DecodeAt(c.pc, c.bus)
	if err != nil {
		return err
	}

	out, err := c.Execute(in)
	if err != nil {
		return err
	}

	c.pc = out.NextPC
	return nil
}

// Execute dispatches one decoded instruction against the register file and
// flags, returning the next pc and the (cycles, size) cost tuple. The pc
// itself is not committed; that is the caller's job, so the instrumented
// and plain strategies share this single body.
func (c *CPU) Execute(in Instruction) (Outcome, error) {
	next := c.pc + in.Size()

	switch in := in.(type) {
	case Nop:

	case Add:
		c.add(c.Registers.Get(in.Src))

	case Sub:
		c.sub(c.Registers.Get(in.Src))

	case Inc:
		c.Registers.Set(in.Reg, c.inc(c.Registers.Get(in.Reg)))

	case Dec:
		c.Registers.Set(in.Reg, c.dec(c.Registers.Get(in.Reg)))

	case Load:
		c.Registers.Set(in.Dst, c.operand8(in.Src))

	case Load16:
		c.writePair(in.Dst, c.operand16(in.Src))

	case Inc16:
		c.writePair(in.Pair, c.readPair(in.Pair)+1)

	case Dec16:
		c.writePair(in.Pair, c.readPair(in.Pair)-1)

	case Jump:
		target, ok := in.Target.(Absolute)
		if !ok {
			return Outcome{}, fmt.Errorf("JP with %T payload: %w", in.Target, ErrJumpTarget)
		}
		next = uint16(target)

	case JumpRelative:
		offset, ok := in.Target.(Relative)
		if !ok {
			return Outcome{}, fmt.Errorf("JR with %T payload: %w", in.Target, ErrJumpTarget)
		}
		// relative to the instruction's own address, wrapping at the top
		// of the address space
		next = c.pc + uint16(int16(offset))

	default:
		return Outcome{}, fmt.Errorf("unhandled instruction %T", in)
	}

	out := Outcome{NextPC: next, Cycles: in.Cycles(), Size: in.Size()}
	if c.observer != nil {
		c.observer.Instruction(c.pc, in, out.Cycles, out.Size)
	}
	return out, nil
}

func (c *CPU) operand8(op Operand8) uint8 {
	switch op := op.(type) {
	case Reg8:
		return c.Registers.Get(Register(op))
	case Imm8:
		return uint8(op)
	}
	return 0
}

func (c *CPU) operand16(op Operand16) uint16 {
	switch op := op.(type) {
	case Pair16:
		return c.readPair(RegisterPair(op))
	case Imm16:
		return uint16(op)
	}
	return 0
}

// readPair routes SP to the dedicated 16 bit field, everything else to the
// register file views.
func (c *CPU) readPair(p RegisterPair) uint16 {
	if p == SP {
		return c.sp
	}
	return c.Registers.GetPair(p)
}

func (c *CPU) writePair(p RegisterPair, value uint16) {
	if p == SP {
		c.sp = value
		return
	}
	c.Registers.SetPair(p, value)
}
