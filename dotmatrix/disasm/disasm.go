// Package disasm formats decoded instructions into mnemonic text for
// diagnostics. It only reads through the bus and never alters CPU or
// debugger state.
package disasm

import (
	"fmt"

	"github.com/dmatteo/go-dotmatrix/dotmatrix/cpu"
)

// Line is a single disassembled instruction.
type Line struct {
	Address uint16
	Text    string
	Size    uint16
}

func (l Line) String() string {
	return fmt.Sprintf("0x%04X: %s", l.Address, l.Text)
}

// At disassembles the instruction at the given address. Unknown opcodes
// render as a placeholder carrying the raw byte, with size 1.
func At(address uint16, bus cpu.Bus) Line {
	in, err := cpu.DecodeAt(address, bus)
	if err != nil {
		return Line{
			Address: address,
			Text:    fmt.Sprintf("?? ($%02X)", bus.ReadByte(address)),
			Size:    1,
		}
	}

	return Line{
		Address: address,
		Text:    in.Mnemonic(),
		Size:    in.Size(),
	}
}

// Range disassembles [start, end). Unknown bytes advance the scan by one
// byte so it never stalls.
func Range(start, end uint16, bus cpu.Bus) []Line {
	var lines []Line

	// a wider cursor avoids wrapping forever when end is near the top of
	// the address space
	for address := uint32(start); address < uint32(end); {
		line := At(uint16(address), bus)
		lines = append(lines, line)
		address += uint32(line.Size)
	}

	return lines
}
