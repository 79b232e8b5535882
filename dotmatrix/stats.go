package dotmatrix

// PerformanceStats is a snapshot of the execution counters. Cycle and
// instruction counts grow monotonically until Reset.
type PerformanceStats struct {
	CycleCount       uint64
	InstructionCount uint64
	CacheHits        uint64
	CacheMisses      uint64
	HitRate          float64
}

// CyclesPerInstruction is the average cycle cost, or 0 when no instructions
// have executed.
func (s PerformanceStats) CyclesPerInstruction() float64 {
	if s.InstructionCount == 0 {
		return 0
	}
	return float64(s.CycleCount) / float64(s.InstructionCount)
}
