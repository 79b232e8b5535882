package debug

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
)

// State is the debugger's gate state. The machine consults it before every
// fetch: Paused and BreakpointHit block execution, Running and Stepping let
// it through.
type State int

const (
	Running State = iota
	Paused
	Stepping
	BreakpointHit
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stepping:
		return "stepping"
	case BreakpointHit:
		return "breakpoint-hit"
	}
	return "unknown"
}

const defaultHistorySize = 1000

// Debugger gates the execution engine: breakpoints, pause/resume, an
// optional step ceiling, and a bounded execution history. Breakpoint-hit
// and limit-reached are inspection states, not errors.
type Debugger struct {
	state       State
	breakpoints map[uint16]*Breakpoint
	history     *History

	stepCount uint64
	maxSteps  uint64
	limited   bool

	// resuming from a breakpoint hit must let the instruction at that
	// address run instead of re-triggering on the same arrival
	lastHit  uint16
	skipNext bool

	log *slog.Logger
}

// New creates a debugger in the Running state. A nil logger falls back to
// slog.Default().
func New(logger *slog.Logger) *Debugger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debugger{
		state:       Running,
		breakpoints: make(map[uint16]*Breakpoint),
		history:     NewHistory(defaultHistorySize),
		log:         logger,
	}
}

func (d *Debugger) State() State { return d.state }

// SetBreakpoint installs (or replaces) a breakpoint. The condition text is
// parsed eagerly; an empty string means unconditional.
func (d *Debugger) SetBreakpoint(address uint16, condition string) error {
	cond, err := ParseCondition(condition)
	if err != nil {
		return fmt.Errorf("set breakpoint at 0x%04X: %w", address, err)
	}

	d.breakpoints[address] = newBreakpoint(address, cond)
	d.log.Info("breakpoint set", "address", fmt.Sprintf("0x%04X", address), "condition", condition)
	return nil
}

func (d *Debugger) RemoveBreakpoint(address uint16) {
	delete(d.breakpoints, address)
	d.log.Info("breakpoint removed", "address", fmt.Sprintf("0x%04X", address))
}

func (d *Debugger) ClearBreakpoints() {
	d.breakpoints = make(map[uint16]*Breakpoint)
	d.log.Info("all breakpoints cleared")
}

// Breakpoint returns the breakpoint at the address, if any.
func (d *Debugger) Breakpoint(address uint16) (*Breakpoint, bool) {
	b, ok := d.breakpoints[address]
	return b, ok
}

// Breakpoints lists all breakpoints ordered by address.
func (d *Debugger) Breakpoints() []*Breakpoint {
	out := make([]*Breakpoint, 0, len(d.breakpoints))
	for _, b := range d.breakpoints {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Pause blocks execution until Resume.
func (d *Debugger) Pause() {
	d.state = Paused
	d.log.Info("execution paused")
}

// Resume returns to Running from any state. Resuming from a breakpoint hit
// lets the halted instruction run before breakpoints at that address are
// considered again.
func (d *Debugger) Resume() {
	if d.state == BreakpointHit {
		d.skipNext = true
	}
	d.state = Running
	d.log.Info("execution resumed")
}

// RequestStep moves to the Stepping state, which passes the execution gate.
func (d *Debugger) RequestStep() {
	d.state = Stepping
}

// CheckBreakpoint must be called with the pc about to be executed, before
// the fetch. If an enabled breakpoint fires, the state moves to
// BreakpointHit and the instruction at that address does not run until
// Resume.
func (d *Debugger) CheckBreakpoint(pc uint16, snap Snapshot) bool {
	if d.skipNext {
		d.skipNext = false
		if pc == d.lastHit {
			return false
		}
	}

	b, ok := d.breakpoints[pc]
	if !ok {
		return false
	}
	if !b.shouldTrigger(pc, snap) {
		return false
	}

	d.lastHit = pc
	d.state = BreakpointHit
	d.log.Info("breakpoint hit",
		"address", fmt.Sprintf("0x%04X", pc),
		"hits", b.HitCount)
	return true
}

// Record appends one successfully executed instruction to the history.
func (d *Debugger) Record(pc uint16, in cpu.Instruction, snap Snapshot, cycle uint64) {
	d.history.Append(Record{
		Address:     pc,
		Instruction: in,
		Registers:   snap.Registers,
		Flags:       snap.Flags,
		Cycle:       cycle,
	})
}

// History returns up to n of the most recent execution records.
func (d *Debugger) History(n int) []Record {
	return d.history.Last(n)
}

// SetMaxSteps configures the step ceiling. Reaching it is a normal terminal
// condition, not an error.
func (d *Debugger) SetMaxSteps(n uint64) {
	d.maxSteps = n
	d.limited = true
}

// ClearMaxSteps removes the step ceiling.
func (d *Debugger) ClearMaxSteps() {
	d.limited = false
}

func (d *Debugger) StepCount() uint64 { return d.stepCount }

// CountStep records one successfully executed instruction and reports
// whether the step ceiling has been reached.
func (d *Debugger) CountStep() bool {
	d.stepCount++
	return d.limited && d.stepCount >= d.maxSteps
}
