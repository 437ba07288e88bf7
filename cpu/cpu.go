// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand"
	"time"

	"github.com/ezrec/ceres/io"
)

// Display is the framebuffer device.
type Display io.Display

// Keypad is the key input device.
type Keypad io.Keypad

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":   fmt.Sprintf("%#x", MEMORY_SIZE),
	"PROGRAM_START": fmt.Sprintf("%#x", PROGRAM_START),
	"FONT_START":    fmt.Sprintf("%#x", FONT_START),
	"FONT_GLYPH":    fmt.Sprintf("%d", FONT_GLYPH),
	"STACK_LIMIT":   fmt.Sprintf("%d", STACK_LIMIT),
	"FLAG":          fmt.Sprintf("v%x", REGISTER_FLAG),
}

// Cpu is the simulation context for the interpreter engine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory    Memory    // Main memory.
	Registers Registers // Register file.
	Stack     Stack     // Call stack of return addresses.

	Pc    uint16 // Program counter.
	Delay uint8  // Delay timer.
	Sound uint8  // Sound timer.

	Display Display    // Framebuffer device.
	Keypad  Keypad     // Key input device.
	Rand    *rand.Rand // Random source for rnd.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU attached to a display and keypad.
func NewCpu(display Display, keypad Keypad) (cpu *Cpu) {
	cpu = &Cpu{
		Display: display,
		Keypad:  keypad,
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %03X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %03X\n", "i", cpu.Registers.I)
	for n, val := range cpu.Registers.V {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%x", n), val)
	}
	strval := "---"
	if val, ok := cpu.Stack.Peek(); ok {
		strval = fmt.Sprintf("%03X (%d)", val, len(cpu.Stack.Data))
	}
	text += fmt.Sprintf("% 5s: %v\n", "stack", strval)
	text += fmt.Sprintf("% 5s: %02X\n", "dt", cpu.Delay)
	text += fmt.Sprintf("% 5s: %02X\n", "st", cpu.Sound)

	return
}

// Reset the CPU state.
// - Clears memory and installs the font.
// - Clears the registers and stack.
// - Resets the display and keypad.
// - Zeros the timers and statistics.
// - Sets the program counter to PROGRAM_START.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	cpu.Registers.Reset()
	cpu.Stack.Reset()

	if cpu.Display != nil {
		cpu.Display.Init()
	}
	if cpu.Keypad != nil {
		cpu.Keypad.Init()
	}

	cpu.Delay = 0
	cpu.Sound = 0
	cpu.Ticks = 0
	cpu.Pc = PROGRAM_START
}

// Load a program image verbatim at PROGRAM_START.
func (cpu *Cpu) Load(image []byte) (err error) {
	err = cpu.Memory.Load(PROGRAM_START, image)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes at 0x%03x", len(image), PROGRAM_START)
	}

	return
}

// FetchCode reads the big-endian instruction word at the program counter.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	hi, err := cpu.Memory.Read(cpu.Pc)
	if err != nil {
		return
	}

	lo, err := cpu.Memory.Read(cpu.Pc + 1)
	if err != nil {
		return
	}

	code = Code(uint16(hi)<<8 | uint16(lo))
	return
}

// Tick executes a single fetch-decode-execute cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(code)
	return
}

// TickTimers performs one timer tick: the delay and sound timers count down
// towards zero. Returns true if a tone should be emitted for this tick,
// which is the case whenever the sound timer was running.
func (cpu *Cpu) TickTimers() (tone bool) {
	if cpu.Delay > 0 {
		cpu.Delay--
	}

	if cpu.Sound > 0 {
		tone = true
		cpu.Sound--
	}

	return
}

// Execute executes a single instruction. On success the program counter
// is advanced to the next instruction, or to the control flow target.
// On failure the machine state is left at the failing instruction.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Pc, code)
	}

	reg := &cpu.Registers
	x := code.X()
	y := code.Y()

	next_pc := cpu.Pc + 2

	switch code.Op() {
	case OP_CLS:
		cpu.Display.Clear()
	case OP_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		// The stack holds the address of the call.
		next_pc = addr + 2
	case OP_JP:
		next_pc = code.NNN()
	case OP_CALL:
		if !cpu.Stack.Push(cpu.Pc) {
			err = ErrStackFull
			return
		}
		next_pc = code.NNN()
	case OP_SE_BYTE:
		if reg.Get(x) == code.KK() {
			next_pc += 2
		}
	case OP_SNE_BYTE:
		if reg.Get(x) != code.KK() {
			next_pc += 2
		}
	case OP_SE_REG:
		if reg.Get(x) == reg.Get(y) {
			next_pc += 2
		}
	case OP_SNE_REG:
		if reg.Get(x) != reg.Get(y) {
			next_pc += 2
		}
	case OP_LD_BYTE:
		reg.Set(x, code.KK())
	case OP_ADD_BYTE:
		reg.Set(x, reg.Get(x)+code.KK())
	case OP_LD_REG, OP_OR, OP_AND, OP_XOR, OP_ADD_REG, OP_SUB, OP_SHR, OP_SUBN, OP_SHL:
		cpu.doAlu(code.Op(), x, y)
	case OP_LD_I:
		reg.SetAddress(code.NNN())
	case OP_JP_V0:
		next_pc = code.NNN() + uint16(reg.Get(0))
	case OP_RND:
		reg.Set(x, byte(cpu.Rand.Intn(256))&code.KK())
	case OP_DRW:
		err = cpu.draw(x, y, code.N())
		if err != nil {
			return
		}
	case OP_SKP, OP_SKNP:
		key := reg.Get(x)
		if int(key) >= io.KEY_COUNT {
			err = ErrKeyRange
			return
		}
		if cpu.Keypad.IsKeyPressed(key) == (code.Op() == OP_SKP) {
			next_pc += 2
		}
	case OP_LD_VX_DT:
		reg.Set(x, cpu.Delay)
	case OP_LD_VX_K:
		var key uint8
		key, err = cpu.Keypad.ReadKey()
		if err != nil {
			return
		}
		if int(key) >= io.KEY_COUNT {
			err = ErrKeyRange
			return
		}
		reg.Set(x, key)
	case OP_LD_DT_VX:
		cpu.Delay = reg.Get(x)
	case OP_LD_ST_VX:
		cpu.Sound = reg.Get(x)
	case OP_ADD_I:
		reg.SetAddress(reg.Address() + uint16(reg.Get(x)))
	case OP_LD_F:
		reg.SetAddress(GlyphAddress(reg.Get(x)))
	case OP_LD_B:
		value := reg.Get(x)
		addr := reg.Address()
		digits := [3]byte{value / 100, (value / 10) % 10, value % 10}
		for n, digit := range digits {
			err = cpu.Memory.Write(addr+uint16(n), digit)
			if err != nil {
				return
			}
		}
	case OP_LD_STORE:
		addr := reg.Address()
		for n := uint8(0); n <= x; n++ {
			err = cpu.Memory.Write(addr+uint16(n), reg.Get(n))
			if err != nil {
				return
			}
		}
	case OP_LD_LOAD:
		addr := reg.Address()
		for n := uint8(0); n <= x; n++ {
			var value byte
			value, err = cpu.Memory.Read(addr + uint16(n))
			if err != nil {
				return
			}
			reg.Set(n, value)
		}
	default:
		// Unrecognized instructions are no-ops.
	}

	cpu.Pc = next_pc
	cpu.Ticks += 1

	return
}

// doAlu performs a register-register operation on vx and vy. Operations
// that report a flag compute it from the operands before either is
// written, then write the flag before the result, so a result targeting
// vf replaces the flag.
//
// The shifts operate on vx in place; vy is not consulted.
func (cpu *Cpu) doAlu(op Op, x, y uint8) {
	reg := &cpu.Registers
	vx := reg.Get(x)
	vy := reg.Get(y)

	var output byte
	var flag byte

	switch op {
	case OP_LD_REG:
		reg.Set(x, vy)
		return
	case OP_OR:
		reg.Set(x, vx|vy)
		return
	case OP_AND:
		reg.Set(x, vx&vy)
		return
	case OP_XOR:
		reg.Set(x, vx^vy)
		return
	case OP_ADD_REG:
		sum := uint16(vx) + uint16(vy)
		if sum > 0xff {
			flag = 1
		}
		output = byte(sum)
	case OP_SUB:
		if vx >= vy {
			flag = 1
		}
		output = vx - vy
	case OP_SUBN:
		if vy >= vx {
			flag = 1
		}
		output = vy - vx
	case OP_SHR:
		flag = vx & 0x01
		output = vx >> 1
	case OP_SHL:
		flag = vx >> 7
		output = vx << 1
	}

	reg.Set(REGISTER_FLAG, flag)
	reg.Set(x, output)
}

// draw XORs an n row sprite from memory at i onto the display at (vx, vy).
// Every destination coordinate wraps around the display edges. The flag
// register is cleared, then raised if any set pixel is turned off.
func (cpu *Cpu) draw(x, y, n uint8) (err error) {
	reg := &cpu.Registers
	vx := int(reg.Get(x))
	vy := int(reg.Get(y))
	addr := reg.Address()

	reg.Set(REGISTER_FLAG, 0)

	for row := range int(n) {
		var sprite byte
		sprite, err = cpu.Memory.Read(addr + uint16(row))
		if err != nil {
			return
		}
		for col := range 8 {
			px := (vx + col) % io.SCREEN_WIDTH
			py := (vy + row) % io.SCREEN_HEIGHT
			if sprite&(0x80>>col) == 0 {
				continue
			}
			pos := uint16(px + py*io.SCREEN_WIDTH)
			if cpu.Display.GetPixel(pos) {
				reg.Set(REGISTER_FLAG, 1)
			}
			cpu.Display.SetPixel(pos)
		}
	}

	return
}
