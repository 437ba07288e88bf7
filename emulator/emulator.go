// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"fmt"
	goio "io"
	"iter"
	"log"
	"maps"
	"os"
	"time"

	"github.com/ezrec/ceres/cpu"
	"github.com/ezrec/ceres/internal"
	"github.com/ezrec/ceres/io"
)

const (
	CYCLE_INTERVAL = time.Millisecond      // Minimum time between instructions.
	TIMER_INTERVAL = 17 * time.Millisecond // Minimum time between timer ticks.
)

var _emulator_defines = map[string]string{
	"CYCLE_INTERVAL_US": fmt.Sprintf("%d", CYCLE_INTERVAL.Microseconds()),
	"TIMER_INTERVAL_MS": fmt.Sprintf("%d", TIMER_INTERVAL.Milliseconds()),
}

type definer interface {
	Defines() iter.Seq2[string, string]
}

// Emulator state. CPU + devices + pacing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Tone io.Tone // Tone output, pulsed on every timer tick while the sound timer runs.

	Cycle Gate // Instruction pacing.
	Timer Gate // Delay and sound timer pacing.

	Now func() time.Time // Clock source.
}

// NewEmulator creates a new emulator attached to its devices.
func NewEmulator(display io.Display, keypad io.Keypad, tone io.Tone) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(display, keypad),
		Program: &cpu.Program{},
		Tone:    tone,
		Cycle:   Gate{Interval: CYCLE_INTERVAL},
		Timer:   Gate{Interval: TIMER_INTERVAL},
		Now:     time.Now,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{
		maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	}
	if def, ok := emu.Cpu.Display.(definer); ok {
		seqs = append(seqs, def.Defines())
	}
	if def, ok := emu.Cpu.Keypad.(definer); ok {
		seqs = append(seqs, def.Defines())
	}

	return internal.IterSeq2Concat(seqs...)
}

// Close the emulator, releasing any pending key wait.
func (emu *Emulator) Close() (err error) {
	if closer, ok := emu.Cpu.Keypad.(interface{ Close() }); ok {
		closer.Close()
	}

	return
}

// Init resets the machine state and restarts the pacing gates.
func (emu *Emulator) Init() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	now := emu.Now()
	emu.Cycle.Reset(now)
	emu.Timer.Reset(now)
}

// Load resets the machine and loads a program image from a file.
func (emu *Emulator) Load(path string) (err error) {
	image, err := os.ReadFile(path)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
		return
	}

	emu.Program = &cpu.Program{}
	err = emu.LoadImage(image)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
		return
	}

	return
}

// LoadImage resets the machine and loads a program image.
func (emu *Emulator) LoadImage(image []byte) (err error) {
	emu.Init()

	err = emu.Cpu.Load(image)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d bytes", len(image))
	}

	return
}

// LoadProgram resets the machine and loads an assembled program.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.LoadImage(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Assemble a program source, then load it.
func (emu *Emulator) Assemble(input goio.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err = asm.Parse(input)
	if err != nil {
		return
	}

	err = emu.LoadProgram(prog)
	return
}

// LineNo returns the source line number for the executing instruction,
// or 0 if the program has no listing.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick advances the machine to time now. The timer and cycle gates are
// checked independently: a ready timer gate ticks the delay and sound
// timers, a ready cycle gate executes one instruction.
// Returns true if an instruction was executed.
func (emu *Emulator) Tick(now time.Time) (executed bool, err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Timer.Ready(now) {
		if emu.Cpu.TickTimers() && emu.Tone != nil {
			emu.Tone.Beep()
		}
	}

	if !emu.Cycle.Ready(now) {
		return
	}

	pc := emu.Cpu.Pc
	err = emu.Cpu.Tick()
	if err != nil {
		err = &ErrRuntime{Pc: pc, LineNo: emu.LineNo(), Err: err}
		return
	}

	executed = true
	return
}

// Run the machine until an error, or until the context is done.
// Cancelling the context also releases a pending key wait.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	stop := context.AfterFunc(ctx, func() { emu.Close() })
	defer stop()

	now := emu.Now()
	emu.Cycle.Reset(now)
	emu.Timer.Reset(now)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			err = ctx.Err()
			return
		}

		_, err = emu.Tick(emu.Now())
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return
		}

		next := emu.Cycle.Next()
		if emu.Timer.Next().Before(next) {
			next = emu.Timer.Next()
		}

		wait := next.Sub(emu.Now())
		if wait <= 0 {
			continue
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-timer.C:
		}
	}
}
