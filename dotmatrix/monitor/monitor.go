// Package monitor is a tcell-based terminal front-end over a Machine: it
// renders registers, disassembly and performance counters, and drives
// stepping from the keyboard. It is purely an observation surface; the core
// never depends on it.
package monitor

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dmatteo/go-dotmatrix/dotmatrix"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/debug"
	"github.com/dmatteo/go-dotmatrix/dotmatrix/disasm"
)

const (
	frameTime = time.Second / 30

	// instructions executed per frame while free-running
	runBatch = 256

	disasmLines  = 12
	historyLines = 6
)

// Monitor owns the terminal screen and a machine to observe.
type Monitor struct {
	screen  tcell.Screen
	machine *dotmatrix.Machine

	freeRun bool
	lastErr error
}

// New creates a monitor over the given machine.
func New(m *dotmatrix.Machine) *Monitor {
	return &Monitor{machine: m}
}

// Run initializes the terminal and blocks until the user quits. The machine
// starts paused; space steps one instruction, 'r' toggles free-running.
func (mon *Monitor) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()
	mon.screen = screen

	mon.machine.Start()
	mon.machine.Pause()

	events := make(chan tcell.Event, 8)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if done := mon.handleEvent(ev); done {
				return nil
			}
		case <-ticker.C:
			mon.tick()
			mon.draw()
		}
	}
}

func (mon *Monitor) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		mon.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Rune() == 'q':
			return true
		case ev.Rune() == ' ':
			mon.lastErr = mon.machine.StepOnce()
		case ev.Rune() == 'r':
			mon.toggleRun()
		case ev.Rune() == 'c':
			mon.machine.Resume()
			mon.machine.Pause()
		}
	}
	return false
}

func (mon *Monitor) toggleRun() {
	mon.freeRun = !mon.freeRun
	if mon.freeRun {
		mon.machine.Resume()
	} else {
		mon.machine.Pause()
	}
}

// tick advances the machine while free-running. Stops on faults and
// breakpoint hits so the user can inspect the state.
func (mon *Monitor) tick() {
	if !mon.freeRun {
		return
	}

	for i := 0; i < runBatch; i++ {
		if err := mon.machine.Step(); err != nil {
			mon.lastErr = err
			mon.freeRun = false
			return
		}
		if !mon.machine.Running() || mon.machine.DebuggerState() == debug.BreakpointHit {
			mon.freeRun = false
			return
		}
	}
}

func (mon *Monitor) draw() {
	mon.screen.Clear()

	state := mon.machine.CPUState()
	stats := mon.machine.PerformanceStats()
	row := 0

	mode := "paused"
	if mon.freeRun {
		mode = "running"
	}
	mon.print(0, row, fmt.Sprintf("dotmatrix monitor [%s]  space: step  r: run  q: quit", mode))
	row += 2

	mon.print(0, row, fmt.Sprintf("PC 0x%04X  SP 0x%04X  flags %s  state %s",
		state.PC, state.SP, state.Flags, mon.machine.DebuggerState()))
	row++
	mon.print(0, row, fmt.Sprintf("A=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X",
		state.Registers.A, state.Registers.B, state.Registers.C,
		state.Registers.D, state.Registers.E, state.Registers.H, state.Registers.L))
	row++
	mon.print(0, row, fmt.Sprintf("cycles %d  instr %d  cache %.1f%% (%d/%d)",
		stats.CycleCount, stats.InstructionCount, stats.HitRate*100,
		stats.CacheHits, stats.CacheHits+stats.CacheMisses))
	row += 2

	mon.print(0, row, "-- disassembly --")
	row++
	lines := disasm.Range(state.PC, state.PC+uint16(disasmLines)*3, mon.machine.Memory())
	for i, line := range lines {
		if i >= disasmLines {
			break
		}
		marker := "  "
		if line.Address == state.PC {
			marker = "> "
		}
		mon.print(0, row, marker+line.String())
		row++
	}
	row++

	mon.print(0, row, "-- history --")
	row++
	for _, rec := range mon.machine.History(historyLines) {
		mon.print(0, row, fmt.Sprintf("  0x%04X: %-16s A=%02X %s",
			rec.Address, rec.Instruction.Mnemonic(), rec.Registers.A, rec.Flags))
		row++
	}

	if mon.lastErr != nil {
		row++
		mon.print(0, row, "error: "+mon.lastErr.Error())
	}

	mon.screen.Show()
}

func (mon *Monitor) print(x, y int, text string) {
	style := tcell.StyleDefault
	for i, r := range text {
		mon.screen.SetContent(x+i, y, r, nil, style)
	}
}
