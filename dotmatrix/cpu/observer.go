package cpu

import "log/slog"

// Observer receives a callback for every successfully executed instruction.
// It replaces any hardcoded diagnostic printing in the execute path: hosts
// that want tracing inject one, everyone else pays nothing.
type Observer interface {
	Instruction(pc uint16, in Instruction, cycles int, size uint16)
}

// SlogObserver traces executed instructions through a structured logger at
// debug level.
type SlogObserver struct {
	Log *slog.Logger
}

func (o SlogObserver) Instruction(pc uint16, in Instruction, cycles int, size uint16) {
	o.Log.Debug("exec",
		"pc", pc,
		"instruction", in.Mnemonic(),
		"cycles", cycles,
		"size", size)
}
