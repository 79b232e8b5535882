package debug

import "github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"

// Record is one executed instruction: where it ran, what it was, and the
// machine state right after it.
type Record struct {
	Address     uint16
	Instruction cpu.Instruction
	Registers   cpu.RegisterFile
	Flags       cpu.Flags
	Cycle       uint64
}

// History is a bounded ring of execution records. Once full, appending
// evicts the oldest record.
type History struct {
	records []Record
	start   int
	count   int
}

// NewHistory creates a history holding at most capacity records.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		panic("history: capacity must be positive")
	}
	return &History{
		records: make([]Record, capacity),
	}
}

// Append records one executed instruction, evicting the oldest entry when
// the buffer is full.
func (h *History) Append(r Record) {
	i := (h.start + h.count) % len(h.records)
	h.records[i] = r
	if h.count < len(h.records) {
		h.count++
		return
	}
	h.start = (h.start + 1) % len(h.records)
}

// Len returns the number of records currently held.
func (h *History) Len() int { return h.count }

// Last returns up to n records, oldest first, newest last.
func (h *History) Last(n int) []Record {
	if n > h.count {
		n = h.count
	}
	if n <= 0 {
		return nil
	}

	out := make([]Record, n)
	first := h.count - n
	for i := 0; i < n; i++ {
		out[i] = h.records[(h.start+first+i)%len(h.records)]
	}
	return out
}

// Clear drops all records.
func (h *History) Clear() {
	h.start = 0
	h.count = 0
}
