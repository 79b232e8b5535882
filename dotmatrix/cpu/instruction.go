package cpu

import "fmt"

// Instruction is a closed sum over the decoded instruction variants. Every
// variant is immutable once decoded and knows its own byte size and base
// cycle cost.
type Instruction interface {
	// Size is the number of bytes the instruction occupies, opcode included.
	Size() uint16
	// Cycles is the machine-cycle cost of the instruction.
	Cycles() int
	// Mnemonic renders the instruction in assembly-style text.
	Mnemonic() string

	isInstruction()
}

// Operand8 is an 8 bit load source: a register or an immediate byte.
type Operand8 interface {
	isOperand8()
	fmt.Stringer
}

// Reg8 is a register-sourced 8 bit operand.
type Reg8 Register

func (Reg8) isOperand8()      {}
func (r Reg8) String() string { return Register(r).String() }

// Imm8 is an immediate 8 bit operand.
type Imm8 uint8

func (Imm8) isOperand8()      {}
func (i Imm8) String() string { return fmt.Sprintf("$%02X", uint8(i)) }

// Operand16 is a 16 bit load source: a register pair or an immediate word.
type Operand16 interface {
	isOperand16()
	fmt.Stringer
}

// Pair16 is a pair-sourced 16 bit operand.
type Pair16 RegisterPair

func (Pair16) isOperand16()     {}
func (p Pair16) String() string { return RegisterPair(p).String() }

// Imm16 is an immediate 16 bit operand.
type Imm16 uint16

func (Imm16) isOperand16()     {}
func (i Imm16) String() string { return fmt.Sprintf("$%04X", uint16(i)) }

// Target is a jump destination: absolute address or signed relative offset.
// JP must carry an Absolute target and JR a Relative one; the executor treats
// any other combination as an internal consistency fault.
type Target interface {
	isTarget()
	fmt.Stringer
}

// Absolute is a 16 bit jump address.
type Absolute uint16

func (Absolute) isTarget()        {}
func (a Absolute) String() string { return fmt.Sprintf("$%04X", uint16(a)) }

// Relative is a signed 8 bit jump offset from the instruction's own address.
type Relative int8

func (Relative) isTarget()        {}
func (r Relative) String() string { return fmt.Sprintf("%+d", int8(r)) }

// Nop does nothing for one cycle.
type Nop struct{}

func (Nop) isInstruction()   {}
func (Nop) Size() uint16     { return 1 }
func (Nop) Cycles() int      { return 1 }
func (Nop) Mnemonic() string { return "NOP" }

// Add adds a register to A.
type Add struct{ Src Register }

func (Add) isInstruction()     {}
func (Add) Size() uint16       { return 1 }
func (Add) Cycles() int        { return 1 }
func (i Add) Mnemonic() string { return "ADD A, " + i.Src.String() }

// Sub subtracts a register from A.
type Sub struct{ Src Register }

func (Sub) isInstruction()     {}
func (Sub) Size() uint16       { return 1 }
func (Sub) Cycles() int        { return 1 }
func (i Sub) Mnemonic() string { return "SUB " + i.Src.String() }

// Inc increments a register. The carry flag is left untouched.
type Inc struct{ Reg Register }

func (Inc) isInstruction()     {}
func (Inc) Size() uint16       { return 1 }
func (Inc) Cycles() int        { return 1 }
func (i Inc) Mnemonic() string { return "INC " + i.Reg.String() }

// Dec decrements a register. The carry flag is left untouched.
type Dec struct{ Reg Register }

func (Dec) isInstruction()     {}
func (Dec) Size() uint16       { return 1 }
func (Dec) Cycles() int        { return 1 }
func (i Dec) Mnemonic() string { return "DEC " + i.Reg.String() }

// Load moves an 8 bit value into a register.
type Load struct {
	Dst Register
	Src Operand8
}

func (Load) isInstruction() {}

func (i Load) Size() uint16 {
	if _, imm := i.Src.(Imm8); imm {
		return 2
	}
	return 1
}

func (i Load) Cycles() int {
	if _, imm := i.Src.(Imm8); imm {
		return 2
	}
	return 1
}

func (i Load) Mnemonic() string { return "LD " + i.Dst.String() + ", " + i.Src.String() }

// Load16 moves a 16 bit value into a register pair (or SP).
type Load16 struct {
	Dst RegisterPair
	Src Operand16
}

func (Load16) isInstruction() {}

func (i Load16) Size() uint16 {
	if _, imm := i.Src.(Imm16); imm {
		return 3
	}
	return 1
}

func (i Load16) Cycles() int {
	if _, imm := i.Src.(Imm16); imm {
		return 3
	}
	return 2
}

func (i Load16) Mnemonic() string { return "LD " + i.Dst.String() + ", " + i.Src.String() }

// Inc16 increments a register pair, wrapping. No flag effect.
type Inc16 struct{ Pair RegisterPair }

func (Inc16) isInstruction()     {}
func (Inc16) Size() uint16       { return 1 }
func (Inc16) Cycles() int        { return 2 }
func (i Inc16) Mnemonic() string { return "INC " + i.Pair.String() }

// Dec16 decrements a register pair, wrapping. No flag effect.
type Dec16 struct{ Pair RegisterPair }

func (Dec16) isInstruction()     {}
func (Dec16) Size() uint16       { return 1 }
func (Dec16) Cycles() int        { return 2 }
func (i Dec16) Mnemonic() string { return "DEC " + i.Pair.String() }

// Jump is an absolute jump (JP).
type Jump struct{ Target Target }

func (Jump) isInstruction()     {}
func (Jump) Size() uint16       { return 3 }
func (Jump) Cycles() int        { return 4 }
func (i Jump) Mnemonic() string { return "JP " + i.Target.String() }

// JumpRelative is a relative jump (JR) from the instruction's own address.
type JumpRelative struct{ Target Target }

func (JumpRelative) isInstruction()     {}
func (JumpRelative) Size() uint16       { return 2 }
func (JumpRelative) Cycles() int        { return 3 }
func (i JumpRelative) Mnemonic() string { return "JR " + i.Target.String() }
