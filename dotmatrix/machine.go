// Package dotmatrix ties the CPU core, memory, decode cache and debugger
// into one host-steppable machine.
package dotmatrix

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/debug"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/disasm"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/memory"
)

var _ cpu.Bus = (*memory.Memory)(nil)

// TickSink receives one Update per successfully executed instruction with
// its cycle cost. The machine does not interpret its effect; display or
// timing collaborators hang off it.
type TickSink interface {
	Update(cycles int)
}

type nopSink struct{}

func (nopSink) Update(int) {}

const defaultCacheSize = 1024

// CPUState is a point-in-time snapshot of the processor for host inspection.
type CPUState struct {
	PC, SP     uint16
	Registers  cpu.RegisterFile
	Flags      cpu.Flags
	CycleCount uint64
}

// Machine owns one CPU, its memory, the decode cache and the debugger. All
// state is exclusively owned and unsynchronized: a host running it off the
// main thread must serialize access itself.
type Machine struct {
	cpu   *cpu.CPU
	mem   *memory.Memory
	cache *cpu.DecodeCache
	dbg   *debug.Debugger

	sink TickSink
	log  *slog.Logger

	running          bool
	cycleCount       uint64
	instructionCount uint64
}

// New creates a stopped machine with empty memory.
func New() *Machine {
	return NewWithLogger(slog.Default())
}

// NewWithLogger creates a stopped machine logging through the given logger.
func NewWithLogger(logger *slog.Logger) *Machine {
	mem := memory.New()
	return &Machine{
		cpu:   cpu.New(mem),
		mem:   mem,
		cache: cpu.NewDecodeCache(defaultCacheSize),
		dbg:   debug.New(logger),
		sink:  nopSink{},
		log:   logger,
	}
}

// SetTickSink installs the display/tick collaborator. A nil sink restores
// the no-op default.
func (m *Machine) SetTickSink(s TickSink) {
	if s == nil {
		s = nopSink{}
	}
	m.sink = s
}

// SetObserver installs a per-instruction trace hook on the CPU.
func (m *Machine) SetObserver(o cpu.Observer) {
	m.cpu.SetObserver(o)
}

// LoadProgram copies program bytes into memory and clears the decode cache,
// since cached entries may now describe stale bytes.
func (m *Machine) LoadProgram(start uint16, program []byte) {
	m.mem.LoadProgram(start, program)
	m.cache.Clear()
	m.log.Info("program loaded",
		"address", fmt.Sprintf("0x%04X", start),
		"bytes", len(program))
}

func (m *Machine) Start() {
	m.running = true
}

func (m *Machine) Stop() {
	m.running = false
}

func (m *Machine) Running() bool { return m.running }

// Reset restores the power-on state: registers, flags, counters, cache,
// debugger and memory contents. The machine is left stopped.
func (m *Machine) Reset() {
	mem := memory.New()
	m.mem = mem
	m.cpu = cpu.New(mem)
	m.cache.Clear()
	m.dbg = debug.New(m.log)
	m.running = false
	m.cycleCount = 0
	m.instructionCount = 0
	m.log.Info("machine reset")
}

// Step performs at most one fetch-decode-execute-record cycle. It is a
// no-op while the machine is stopped, paused, or halted at a breakpoint;
// after a successful step the caller distinguishes those by inspecting
// DebuggerState and Running. Decode and execution faults surface to the
// caller with the pc unchanged.
func (m *Machine) Step() error {
	if !m.running {
		return nil
	}

	switch m.dbg.State() {
	case debug.Paused, debug.BreakpointHit:
		return nil
	}

	if m.dbg.CheckBreakpoint(m.cpu.PC(), m.snapshot()) {
		return nil
	}

	return m.execute()
}

// StepOnce executes a single instruction even while paused, moving the
// debugger into the Stepping state. Breakpoints and the step ceiling are
// still honored.
func (m *Machine) StepOnce() error {
	if !m.running {
		return nil
	}

	if s := m.dbg.State(); s == debug.Paused {
		m.dbg.RequestStep()
	} else if s == debug.BreakpointHit {
		return nil
	}

	if m.dbg.CheckBreakpoint(m.cpu.PC(), m.snapshot()) {
		return nil
	}

	return m.execute()
}

// execute runs the instrumented strategy: consult the decode cache, execute,
// commit the pc, then update counters, history and the tick sink.
func (m *Machine) execute() error {
	pc := m.cpu.PC()

	entry, ok := m.cache.Lookup(pc)
	if !ok {
		in, err := cpu.DecodeAt(pc, m.mem)
		if err != nil {
			return err
		}
		entry = cpu.CacheEntry{Tag: pc, Instruction: in, Cycles: in.Cycles(), Size: in.Size()}
		m.cache.Insert(pc, in, in.Cycles(), in.Size())
	}

	out, err := m.cpu.Execute(entry.Instruction)
	if err != nil {
		return fmt.Errorf("execute at 0x%04X: %w", pc, err)
	}
	m.cpu.SetPC(out.NextPC)

	m.cycleCount += uint64(out.Cycles)
	m.instructionCount++
	m.dbg.Record(pc, entry.Instruction, m.snapshot(), m.cycleCount)
	m.sink.Update(out.Cycles)

	if m.dbg.CountStep() {
		m.Stop()
		m.log.Info("step limit reached", "steps", m.dbg.StepCount())
	}

	return nil
}

// RunSteps starts the machine and runs up to n steps, extending the step
// ceiling so the limit triggers after exactly n more executions.
func (m *Machine) RunSteps(n uint64) error {
	m.dbg.SetMaxSteps(m.dbg.StepCount() + n)
	m.Start()

	for i := uint64(0); i < n; i++ {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunToBreakpoint starts the machine and steps until a breakpoint fires,
// the step ceiling stops it, or a fault surfaces.
func (m *Machine) RunToBreakpoint() error {
	m.Start()

	for m.running && m.dbg.State() == debug.Running {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// SetBreakpoint installs a breakpoint; the condition text may be empty.
func (m *Machine) SetBreakpoint(address uint16, condition string) error {
	return m.dbg.SetBreakpoint(address, condition)
}

func (m *Machine) RemoveBreakpoint(address uint16) {
	m.dbg.RemoveBreakpoint(address)
}

// Resume returns the debugger to Running after a pause or breakpoint hit.
func (m *Machine) Resume() { m.dbg.Resume() }

// Pause blocks Step until Resume.
func (m *Machine) Pause() { m.dbg.Pause() }

func (m *Machine) DebuggerState() debug.State { return m.dbg.State() }

// Debugger exposes the underlying debugger for breakpoint listing and
// history inspection.
func (m *Machine) Debugger() *debug.Debugger { return m.dbg }

// Memory exposes the bus, e.g. for the disassembler or a monitor front-end.
func (m *Machine) Memory() *memory.Memory { return m.mem }

// PerformanceStats returns the current counter snapshot.
func (m *Machine) PerformanceStats() PerformanceStats {
	return PerformanceStats{
		CycleCount:       m.cycleCount,
		InstructionCount: m.instructionCount,
		CacheHits:        m.cache.Hits(),
		CacheMisses:      m.cache.Misses(),
		HitRate:          m.cache.HitRate(),
	}
}

// CPUState returns a snapshot of the processor state.
func (m *Machine) CPUState() CPUState {
	return CPUState{
		PC:         m.cpu.PC(),
		SP:         m.cpu.SP(),
		Registers:  m.cpu.Registers,
		Flags:      m.cpu.Flags,
		CycleCount: m.cycleCount,
	}
}

// History returns up to n of the most recent execution records.
func (m *Machine) History(n int) []debug.Record {
	return m.dbg.History(n)
}

// DisassembleInstruction formats the instruction at the given address.
func (m *Machine) DisassembleInstruction(address uint16) string {
	return disasm.At(address, m.mem).String()
}

// DisassembleRange formats the instructions in [start, end).
func (m *Machine) DisassembleRange(start, end uint16) []string {
	lines := disasm.Range(start, end, m.mem)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

// DebugInfo renders a human-readable snapshot of the whole machine.
func (m *Machine) DebugInfo() string {
	state := m.CPUState()
	stats := m.PerformanceStats()

	var b strings.Builder
	fmt.Fprintf(&b, "=== debug info ===\n")
	fmt.Fprintf(&b, "state: %s (running=%v)\n", m.dbg.State(), m.running)
	fmt.Fprintf(&b, "PC: 0x%04X  SP: 0x%04X\n", state.PC, state.SP)
	fmt.Fprintf(&b, "A=0x%02X B=0x%02X C=0x%02X D=0x%02X E=0x%02X H=0x%02X L=0x%02X\n",
		state.Registers.A, state.Registers.B, state.Registers.C,
		state.Registers.D, state.Registers.E, state.Registers.H, state.Registers.L)
	fmt.Fprintf(&b, "flags: %s\n", state.Flags)
	fmt.Fprintf(&b, "cycles: %d  instructions: %d  cpi: %.2f\n",
		stats.CycleCount, stats.InstructionCount, stats.CyclesPerInstruction())
	fmt.Fprintf(&b, "cache: %d hits, %d misses (%.1f%%)\n",
		stats.CacheHits, stats.CacheMisses, stats.HitRate*100)
	fmt.Fprintf(&b, "steps: %d\n", m.dbg.StepCount())
	fmt.Fprintf(&b, "==================")
	return b.String()
}

func (m *Machine) snapshot() debug.Snapshot {
	return debug.Snapshot{
		Registers: m.cpu.Registers,
		Flags:     m.cpu.Flags,
		PC:        m.cpu.PC(),
		SP:        m.cpu.SP(),
	}
}
