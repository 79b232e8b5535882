package debug

// Breakpoint is an address at which execution must pause before the
// instruction there runs. The hit counter increments on every arrival at
// the address while enabled, whether or not the condition lets it fire.
type Breakpoint struct {
	Address   uint16
	Condition *Condition // nil means unconditional
	Enabled   bool
	HitCount  uint64
}

func newBreakpoint(address uint16, condition *Condition) *Breakpoint {
	return &Breakpoint{
		Address:   address,
		Condition: condition,
		Enabled:   true,
	}
}

// shouldTrigger records an arrival at pc and reports whether the breakpoint
// fires. The condition sees the hit count including this arrival, so
// "hitcount >= 3" fires on the third pass.
func (b *Breakpoint) shouldTrigger(pc uint16, snap Snapshot) bool {
	if !b.Enabled || pc != b.Address {
		return false
	}

	b.HitCount++
	return b.Condition.Eval(snap, b.HitCount)
}

func (b *Breakpoint) Enable()  { b.Enabled = true }
func (b *Breakpoint) Disable() { b.Enabled = false }
