package cpu

import (
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo    int      // Source line number.
	Addr      int      // Address of the first byte.
	Words     []string // Source words.
	Bytes     []byte   // Generated bytes.
	Data      bool     // Set for db/dw data, clear for instructions.
	LinkLabel string   // Label to resolve into the last two bytes.
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Debug maps an address to the opcode that generated it.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the program image, suitable for loading at PROGRAM_START.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		end := op.Addr - PROGRAM_START + len(op.Bytes)
		if end > len(bin) {
			bin = append(bin, make([]byte, end-len(bin))...)
		}
		copy(bin[op.Addr-PROGRAM_START:], op.Bytes)
	}

	return
}

// Codes iterates over the instruction words of the program.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if op.Data {
				continue
			}
			for n := 0; n+1 < len(op.Bytes); n += 2 {
				code := Code(uint16(op.Bytes[n])<<8 | uint16(op.Bytes[n+1]))
				if !yield(uint16(op.Addr+n), code) {
					return
				}
			}
		}
	}
}
