package cpu

const (
	REGISTER_COUNT = 16  // Number of general purpose registers.
	REGISTER_FLAG  = 0xf // Carry, borrow, and collision flag register.
)

// Registers is the register file: v0-vf plus the address register i.
//
// Register ids come from 4-bit instruction fields, so an id outside of
// 0-15 is an engine bug and panics.
type Registers struct {
	V [REGISTER_COUNT]byte
	I uint16
}

// Reset zeros all registers.
func (reg *Registers) Reset() {
	clear(reg.V[:])
	reg.I = 0
}

// Get the value of register id.
func (reg *Registers) Get(id uint8) byte {
	if int(id) >= len(reg.V) {
		panic(ErrRegisterRange)
	}
	return reg.V[id]
}

// Set the value of register id.
func (reg *Registers) Set(id uint8, value byte) {
	if int(id) >= len(reg.V) {
		panic(ErrRegisterRange)
	}
	reg.V[id] = value
}

// Address returns the address register.
func (reg *Registers) Address() uint16 {
	return reg.I
}

// SetAddress sets the address register.
func (reg *Registers) SetAddress(value uint16) {
	reg.I = value
}
