package debug

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
	"github.com/stretchr/testify/assert"
)

func newTestDebugger() *Debugger {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDebugger_initialState(t *testing.T) {
	d := newTestDebugger()
	assert.Equal(t, Running, d.State())
	assert.Empty(t, d.Breakpoints())
	assert.Equal(t, uint64(0), d.StepCount())
}

func TestDebugger_breakpointManagement(t *testing.T) {
	d := newTestDebugger()

	assert.NoError(t, d.SetBreakpoint(0x100, ""))
	assert.NoError(t, d.SetBreakpoint(0x200, "A == $05"))
	assert.Len(t, d.Breakpoints(), 2)

	d.RemoveBreakpoint(0x100)
	assert.Len(t, d.Breakpoints(), 1)

	d.ClearBreakpoints()
	assert.Empty(t, d.Breakpoints())
}

func TestDebugger_setBreakpointBadCondition(t *testing.T) {
	d := newTestDebugger()
	err := d.SetBreakpoint(0x100, "A == banana")
	assert.Error(t, err, "parse errors surface when the breakpoint is set")
	assert.Empty(t, d.Breakpoints())
}

func TestDebugger_breakpointFires(t *testing.T) {
	d := newTestDebugger()
	assert.NoError(t, d.SetBreakpoint(0x150, ""))

	assert.False(t, d.CheckBreakpoint(0x140, Snapshot{}), "wrong address")
	assert.Equal(t, Running, d.State())

	assert.True(t, d.CheckBreakpoint(0x150, Snapshot{}))
	assert.Equal(t, BreakpointHit, d.State())

	b, ok := d.Breakpoint(0x150)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), b.HitCount, "one increment per arrival")

	d.Resume()
	assert.Equal(t, Running, d.State())
}

func TestDebugger_disabledBreakpointDoesNotFire(t *testing.T) {
	d := newTestDebugger()
	assert.NoError(t, d.SetBreakpoint(0x150, ""))

	b, _ := d.Breakpoint(0x150)
	b.Disable()

	assert.False(t, d.CheckBreakpoint(0x150, Snapshot{}))
	assert.Equal(t, Running, d.State())
	assert.Equal(t, uint64(0), b.HitCount, "disabled breakpoints do not count arrivals")

	b.Enable()
	assert.True(t, d.CheckBreakpoint(0x150, Snapshot{}))
}

func TestDebugger_conditionalBreakpoint(t *testing.T) {
	d := newTestDebugger()
	assert.NoError(t, d.SetBreakpoint(0x150, "A == $08"))

	snap := Snapshot{}
	snap.Registers.A = 0x05
	assert.False(t, d.CheckBreakpoint(0x150, snap), "condition not met")
	assert.Equal(t, Running, d.State())

	b, _ := d.Breakpoint(0x150)
	assert.Equal(t, uint64(1), b.HitCount, "arrival counts even when the condition fails")

	snap.Registers.A = 0x08
	assert.True(t, d.CheckBreakpoint(0x150, snap))
	assert.Equal(t, BreakpointHit, d.State())
	assert.Equal(t, uint64(2), b.HitCount)
}

func TestDebugger_hitCountCondition(t *testing.T) {
	d := newTestDebugger()
	assert.NoError(t, d.SetBreakpoint(0x150, "hitcount >= 3"))

	assert.False(t, d.CheckBreakpoint(0x150, Snapshot{}))
	assert.False(t, d.CheckBreakpoint(0x150, Snapshot{}))
	assert.True(t, d.CheckBreakpoint(0x150, Snapshot{}), "fires on the third arrival")
}

func TestDebugger_resumeSkipsTheHaltedArrival(t *testing.T) {
	d := newTestDebugger()
	assert.NoError(t, d.SetBreakpoint(0x150, ""))

	assert.True(t, d.CheckBreakpoint(0x150, Snapshot{}))
	d.Resume()

	assert.False(t, d.CheckBreakpoint(0x150, Snapshot{}),
		"the halted instruction must be allowed to run after resume")

	b, _ := d.Breakpoint(0x150)
	assert.Equal(t, uint64(1), b.HitCount, "the skipped check is not a new arrival")

	// the next arrival at the same address fires again
	assert.True(t, d.CheckBreakpoint(0x150, Snapshot{}))
	assert.Equal(t, uint64(2), b.HitCount)
}

func TestDebugger_pauseResume(t *testing.T) {
	d := newTestDebugger()

	d.Pause()
	assert.Equal(t, Paused, d.State())

	d.Resume()
	assert.Equal(t, Running, d.State())

	d.RequestStep()
	assert.Equal(t, Stepping, d.State())
}

func TestDebugger_stepLimit(t *testing.T) {
	d := newTestDebugger()
	d.SetMaxSteps(3)

	assert.False(t, d.CountStep())
	assert.False(t, d.CountStep())
	assert.True(t, d.CountStep(), "limit reached after exactly max steps")
	assert.Equal(t, uint64(3), d.StepCount())

	d.ClearMaxSteps()
	assert.False(t, d.CountStep())
}

func TestDebugger_history(t *testing.T) {
	d := newTestDebugger()

	for i := 0; i < 5; i++ {
		snap := Snapshot{}
		snap.Registers.A = uint8(i)
		d.Record(uint16(0x100+i), cpu.Nop{}, snap, uint64(i))
	}

	last := d.History(2)
	assert.Len(t, last, 2)
	assert.Equal(t, uint16(0x103), last[0].Address)
	assert.Equal(t, uint16(0x104), last[1].Address)
	assert.Equal(t, uint8(4), last[1].Registers.A)
}

func TestHistory_ringEviction(t *testing.T) {
	h := NewHistory(3)

	for i := 0; i < 5; i++ {
		h.Append(Record{Address: uint16(i), Cycle: uint64(i)})
	}

	assert.Equal(t, 3, h.Len())
	records := h.Last(10)
	assert.Len(t, records, 3)
	assert.Equal(t, uint16(2), records[0].Address, "oldest entries evicted")
	assert.Equal(t, uint16(4), records[2].Address)
}
