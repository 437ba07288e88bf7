package cpu

const (
	MEMORY_SIZE   = 4096  // Bytes of addressable memory.
	PROGRAM_START = 0x200 // Load address of program images.
)

// Memory is the linear byte store of the machine.
type Memory struct {
	Data [MEMORY_SIZE]byte
}

// Reset zeros memory and installs the glyph font.
func (mem *Memory) Reset() {
	clear(mem.Data[:])
	copy(mem.Data[FONT_START:], Font[:])
}

// Read a byte of memory.
func (mem *Memory) Read(addr uint16) (value byte, err error) {
	if int(addr) >= len(mem.Data) {
		err = ErrAddress(addr)
		return
	}

	value = mem.Data[addr]
	return
}

// Write a byte of memory.
func (mem *Memory) Write(addr uint16, value byte) (err error) {
	if int(addr) >= len(mem.Data) {
		err = ErrAddress(addr)
		return
	}

	mem.Data[addr] = value
	return
}

// Load copies data verbatim into memory starting at addr.
func (mem *Memory) Load(addr uint16, data []byte) (err error) {
	if int(addr)+len(data) > len(mem.Data) {
		err = ErrProgramSize
		return
	}

	copy(mem.Data[addr:], data)
	return
}
