package debug

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
)

// Snapshot is the machine state a condition is evaluated against.
type Snapshot struct {
	Registers cpu.RegisterFile
	Flags     cpu.Flags
	PC, SP    uint16
}

type condOp int

const (
	condOpEqual condOp = iota
	condOpNotEqual
	condOpLess
	condOpGreater
	condOpLessEqual
	condOpGreaterEqual
)

type condSource int

const (
	condSourceRegister condSource = iota
	condSourceFlag
	condSourceHitCount
)

// Condition is a parsed breakpoint condition. Supported forms:
//
//	A == $05        register (A..L, pairs BC/DE/HL, PC, SP) compared to a value
//	zero            bare flag term (zero, subtract, halfcarry, carry; Z and N
//	                are accepted as shortcuts), true when the flag is set
//	carry == 0      flag compared to 0/1
//	hitcount > 3    breakpoint hit counter compared to a value
//
// Values are decimal, $-prefixed hex or 0x-prefixed hex.
type Condition struct {
	source condSource
	reg    string
	flag   string
	op     condOp
	value  uint64
	raw    string
}

func (c *Condition) String() string { return c.raw }

var condOps = []struct {
	text string
	op   condOp
}{
	// two-character operators first so "<=" is not read as "<"
	{"==", condOpEqual},
	{"!=", condOpNotEqual},
	{"<=", condOpLessEqual},
	{">=", condOpGreaterEqual},
	{"<", condOpLess},
	{">", condOpGreater},
}

// ParseCondition parses a condition string. An empty string yields a nil
// condition, meaning unconditional.
func ParseCondition(text string) (*Condition, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	opText := ""
	opIdx := -1
	op := condOpEqual
	for _, candidate := range condOps {
		if idx := strings.Index(trimmed, candidate.text); idx >= 0 {
			opText = candidate.text
			opIdx = idx
			op = candidate.op
			break
		}
	}

	// bare flag term: "carry", "zero", ...
	if opText == "" {
		flag, ok := flagName(trimmed)
		if !ok {
			return nil, fmt.Errorf("condition %q: no operator found (use ==, !=, <, >, <=, >=)", text)
		}
		return &Condition{source: condSourceFlag, flag: flag, op: condOpNotEqual, value: 0, raw: trimmed}, nil
	}

	lhs := strings.TrimSpace(trimmed[:opIdx])
	rhs := strings.TrimSpace(trimmed[opIdx+len(opText):])

	value, ok := parseValue(rhs)
	if !ok {
		return nil, fmt.Errorf("condition %q: invalid value %q", text, rhs)
	}

	cond := &Condition{op: op, value: value, raw: trimmed}

	switch {
	case strings.EqualFold(lhs, "hitcount"):
		cond.source = condSourceHitCount
	default:
		if flag, ok := flagName(lhs); ok {
			cond.source = condSourceFlag
			cond.flag = flag
			break
		}
		reg := strings.ToUpper(lhs)
		if !validRegister(reg) {
			return nil, fmt.Errorf("condition %q: unknown register or flag %q", text, lhs)
		}
		cond.source = condSourceRegister
		cond.reg = reg
	}

	return cond, nil
}

// Eval reports whether the condition holds. A nil condition always holds.
func (c *Condition) Eval(snap Snapshot, hitCount uint64) bool {
	if c == nil {
		return true
	}

	var actual uint64
	switch c.source {
	case condSourceRegister:
		actual = registerValue(c.reg, snap)
	case condSourceFlag:
		if flagValue(c.flag, snap.Flags) {
			actual = 1
		}
	case condSourceHitCount:
		actual = hitCount
	}

	switch c.op {
	case condOpEqual:
		return actual == c.value
	case condOpNotEqual:
		return actual != c.value
	case condOpLess:
		return actual < c.value
	case condOpGreater:
		return actual > c.value
	case condOpLessEqual:
		return actual <= c.value
	case condOpGreaterEqual:
		return actual >= c.value
	}
	return false
}

// flagName maps the long flag spellings (and the unambiguous Z/N shortcuts)
// to a canonical name. C and H are register names, so those flags are only
// reachable by their long spelling.
func flagName(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "zero", "z":
		return "zero", true
	case "subtract", "n":
		return "subtract", true
	case "halfcarry":
		return "halfcarry", true
	case "carry":
		return "carry", true
	}
	return "", false
}

func flagValue(name string, f cpu.Flags) bool {
	switch name {
	case "zero":
		return f.Zero
	case "subtract":
		return f.Subtract
	case "halfcarry":
		return f.HalfCarry
	case "carry":
		return f.Carry
	}
	return false
}

func validRegister(name string) bool {
	switch name {
	case "A", "B", "C", "D", "E", "F", "H", "L", "BC", "DE", "HL", "PC", "SP":
		return true
	}
	return false
}

func registerValue(name string, snap Snapshot) uint64 {
	rf := snap.Registers
	switch name {
	case "A":
		return uint64(rf.A)
	case "B":
		return uint64(rf.B)
	case "C":
		return uint64(rf.C)
	case "D":
		return uint64(rf.D)
	case "E":
		return uint64(rf.E)
	case "F":
		return uint64(rf.F)
	case "H":
		return uint64(rf.H)
	case "L":
		return uint64(rf.L)
	case "BC":
		return uint64(rf.GetPair(cpu.BC))
	case "DE":
		return uint64(rf.GetPair(cpu.DE))
	case "HL":
		return uint64(rf.GetPair(cpu.HL))
	case "PC":
		return uint64(snap.PC)
	case "SP":
		return uint64(snap.SP)
	}
	return 0
}

// parseValue accepts decimal, $-hex and 0x-hex literals.
func parseValue(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s = s[1:]
		base = 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
		base = 16
	}
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
