package dotmatrix

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/debug"
	"github.com/stretchr/testify/assert"
)

func newTestMachine() *Machine {
	return NewWithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestMachine_loadAndRunProgram(t *testing.T) {
	m := newTestMachine()
	// LD A, $05 / LD B, $03 / ADD A, B
	m.LoadProgram(0x100, []byte{0x3E, 0x05, 0x06, 0x03, 0x80})
	m.Start()

	for i := 0; i < 3; i++ {
		assert.NoError(t, m.Step())
	}

	state := m.CPUState()
	assert.Equal(t, uint8(0x08), state.Registers.A)
	assert.Equal(t, uint8(0x03), state.Registers.B)
	assert.False(t, state.Flags.Zero)
	assert.False(t, state.Flags.HalfCarry)
	assert.False(t, state.Flags.Carry)
	assert.Equal(t, uint16(0x105), state.PC)
}

func TestMachine_stepWhileStoppedIsNoop(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x00})

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x100), m.CPUState().PC)
}

func TestMachine_pauseGatesExecution(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x00, 0x00, 0x00})
	m.Start()
	m.Pause()

	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x100), m.CPUState().PC, "step is a no-op while paused")

	m.Resume()
	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x101), m.CPUState().PC)
}

func TestMachine_stepOnceBypassesPause(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x00, 0x00})
	m.Start()
	m.Pause()

	assert.NoError(t, m.StepOnce())
	assert.Equal(t, uint16(0x101), m.CPUState().PC)
	assert.Equal(t, debug.Stepping, m.DebuggerState())
}

func TestMachine_runToBreakpoint(t *testing.T) {
	m := newTestMachine()
	// NOPs up to 0x150, then INC A at 0x150
	program := make([]byte, 0x51)
	program[0x50] = 0x3C
	m.LoadProgram(0x100, program)

	assert.NoError(t, m.SetBreakpoint(0x150, ""))
	assert.NoError(t, m.RunToBreakpoint())

	assert.Equal(t, debug.BreakpointHit, m.DebuggerState())
	assert.Equal(t, uint16(0x150), m.CPUState().PC)
	assert.Equal(t, uint8(0x00), m.CPUState().Registers.A,
		"the instruction at the breakpoint must not have run")

	b, ok := m.Debugger().Breakpoint(0x150)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), b.HitCount)

	// further steps are no-ops until resumed
	assert.NoError(t, m.Step())
	assert.Equal(t, uint16(0x150), m.CPUState().PC)

	m.Resume()
	assert.NoError(t, m.Step())
	assert.Equal(t, uint8(0x01), m.CPUState().Registers.A)
	assert.Equal(t, uint16(0x151), m.CPUState().PC)
}

func TestMachine_conditionalBreakpoint(t *testing.T) {
	m := newTestMachine()
	// loop body: INC A / JP $0100, breakpoint fires once A reaches 3
	m.LoadProgram(0x100, []byte{0x3C, 0xC3, 0x00, 0x01})

	assert.NoError(t, m.SetBreakpoint(0x100, "A == 3"))
	assert.NoError(t, m.RunToBreakpoint())

	assert.Equal(t, debug.BreakpointHit, m.DebuggerState())
	assert.Equal(t, uint8(0x03), m.CPUState().Registers.A)
}

func TestMachine_stepLimitHalts(t *testing.T) {
	m := newTestMachine()
	// infinite loop: JP $0100
	m.LoadProgram(0x100, []byte{0xC3, 0x00, 0x01})
	assert.NoError(t, m.SetBreakpoint(0x200, "")) // never reached

	assert.NoError(t, m.RunSteps(5))

	assert.False(t, m.Running(), "running flag clears at the ceiling regardless of breakpoints")
	assert.Equal(t, uint64(5), m.Debugger().StepCount())
	assert.Equal(t, uint64(5), m.PerformanceStats().InstructionCount)

	// further steps are no-ops
	assert.NoError(t, m.Step())
	assert.Equal(t, uint64(5), m.PerformanceStats().InstructionCount)
}

func TestMachine_decodeFaultSurfacesAndKeepsPC(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0xFF})
	m.Start()

	err := m.Step()

	var decodeErr *cpu.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, byte(0xFF), decodeErr.Opcode)
	assert.Equal(t, uint16(0x100), decodeErr.Addr)
	assert.Equal(t, uint16(0x100), m.CPUState().PC)
	assert.Equal(t, uint64(0), m.PerformanceStats().InstructionCount,
		"faulted steps do not count")
}

func TestMachine_cacheCountsLoopIterations(t *testing.T) {
	m := newTestMachine()
	// INC A / JP $0100: every iteration after the first hits the cache
	m.LoadProgram(0x100, []byte{0x3C, 0xC3, 0x00, 0x01})

	assert.NoError(t, m.RunSteps(10))

	stats := m.PerformanceStats()
	assert.Equal(t, uint64(2), stats.CacheMisses, "one miss per distinct address")
	assert.Equal(t, uint64(8), stats.CacheHits)
	assert.InDelta(t, 0.8, stats.HitRate, 1e-9)
	assert.Equal(t, uint64(10), stats.InstructionCount)
	// INC A costs 1, JP costs 4: 5 per iteration
	assert.Equal(t, uint64(25), stats.CycleCount)
	assert.InDelta(t, 2.5, stats.CyclesPerInstruction(), 1e-9)
}

func TestMachine_tickSinkPerInstruction(t *testing.T) {
	m := newTestMachine()
	var ticks []int
	m.SetTickSink(tickFunc(func(cycles int) { ticks = append(ticks, cycles) }))

	m.LoadProgram(0x100, []byte{0x3E, 0x05, 0x80}) // LD A, $05 / ADD A, B
	assert.NoError(t, m.RunSteps(2))

	assert.Equal(t, []int{2, 1}, ticks, "one update per executed instruction")
}

func TestMachine_history(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x3E, 0x05, 0x06, 0x03, 0x80})
	assert.NoError(t, m.RunSteps(3))

	records := m.History(2)
	assert.Len(t, records, 2)
	assert.Equal(t, uint16(0x102), records[0].Address)
	assert.Equal(t, "LD B, $03", records[0].Instruction.Mnemonic())
	assert.Equal(t, uint16(0x104), records[1].Address)
	assert.Equal(t, uint8(0x08), records[1].Registers.A,
		"history snapshots the state after the instruction")
}

func TestMachine_disassembly(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x3E, 0x05, 0x80})

	assert.Equal(t, "0x0100: LD A, $05", m.DisassembleInstruction(0x100))
	assert.Equal(t, []string{
		"0x0100: LD A, $05",
		"0x0102: ADD A, B",
	}, m.DisassembleRange(0x100, 0x103))
	assert.Equal(t, debug.Running, m.DebuggerState(), "disassembly never alters debugger state")
}

func TestMachine_debugInfo(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x3E, 0x42})
	assert.NoError(t, m.RunSteps(1))

	info := m.DebugInfo()
	assert.Contains(t, info, "A=0x42")
	assert.Contains(t, info, "PC: 0x0102")
	assert.Contains(t, info, "instructions: 1")
}

func TestMachine_reset(t *testing.T) {
	m := newTestMachine()
	m.LoadProgram(0x100, []byte{0x3E, 0x42})
	assert.NoError(t, m.RunSteps(1))

	m.Reset()

	assert.False(t, m.Running())
	state := m.CPUState()
	assert.Equal(t, uint16(0x100), state.PC)
	assert.Equal(t, uint16(0xFFFE), state.SP)
	assert.Equal(t, uint8(0x00), state.Registers.A)
	assert.Equal(t, uint64(0), m.PerformanceStats().InstructionCount)
	assert.Equal(t, byte(0x00), m.Memory().ReadByte(0x100), "memory cleared")
}

type tickFunc func(cycles int)

func (f tickFunc) Update(cycles int) { f(cycles) }
