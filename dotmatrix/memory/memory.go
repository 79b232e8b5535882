package memory

import "github.com/dmatteo/go-dotmatrix/dotmatrix/bit"

// Size is the full addressable space of the 16 bit bus.
const Size = 0x10000

// Memory is a flat 64KiB address space with no banking or mapped I/O.
// It backs the CPU through the cpu.Bus interface.
type Memory struct {
	data []byte
}

// New creates a zeroed 64KiB memory.
func New() *Memory {
	return &Memory{
		data: make([]byte, Size),
	}
}

func (m *Memory) ReadByte(address uint16) byte {
	return m.data[address]
}

func (m *Memory) WriteByte(address uint16, value byte) {
	m.data[address] = value
}

// ReadWord reads a little-endian 16 bit value. The high byte address wraps
// at the top of the address space.
func (m *Memory) ReadWord(address uint16) uint16 {
	low := m.data[address]
	high := m.data[address+1]
	return bit.Combine(high, low)
}

// WriteWord writes a little-endian 16 bit value, wrapping like ReadWord.
func (m *Memory) WriteWord(address uint16, value uint16) {
	m.data[address] = bit.Low(value)
	m.data[address+1] = bit.High(value)
}

// LoadProgram copies program bytes starting at the given address. Bytes that
// would land past 0xFFFF are silently dropped.
func (m *Memory) LoadProgram(start uint16, program []byte) {
	for i, b := range program {
		address := int(start) + i
		if address >= Size {
			break
		}
		m.data[address] = b
	}
}

// Bytes returns a read-only view of the whole address space.
func (m *Memory) Bytes() []byte {
	return m.data
}
