// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	goio "io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ezrec/ceres/emulator"
	"github.com/ezrec/ceres/io"
	"github.com/ezrec/ceres/translate"
)

var f = translate.From

type config struct {
	compile string
	save    string
	cycle   time.Duration
	timer   time.Duration
	hold    time.Duration
	mute    bool
	wav     string
	seed    int64
	verbose bool
}

// prompt asks for a program image path.
func prompt(output goio.Writer, input goio.Reader) (path string) {
	fmt.Fprintln(output, f("Ceres: CHIP-8 Emulator"))
	fmt.Fprintln(output)
	fmt.Fprint(output, f("File: "))

	line, _ := bufio.NewReader(input).ReadString('\n')
	path = strings.TrimSpace(line)

	return
}

// check rejects flag combinations that cannot be honoured.
func (cfg *config) check(args []string) (err error) {
	switch {
	case len(args) > 1:
		err = errors.New(f("unknown arguments: %v", args[1:]))
	case len(cfg.save) != 0 && len(cfg.compile) == 0:
		err = errors.New(f("-s requires -c"))
	case len(cfg.compile) != 0 && len(args) != 0:
		err = errors.New(f("-c does not take an image: %v", args[0]))
	}

	return
}

// tones builds the tone outputs: audio if available, else the terminal bell,
// plus an optional recording.
func tones(cfg *config, closers *[]func() error) (tone io.Tones, err error) {
	if !cfg.mute {
		sp, sp_err := io.NewSpeaker(io.TONE_PULSE)
		if sp_err != nil {
			log.Printf("ceres: %v", sp_err)
		} else {
			*closers = append(*closers, sp.Close)
			tone = append(tone, sp)
		}
	}

	if len(tone) == 0 {
		tone = append(tone, &io.Bell{Output: os.Stdout})
	}

	if len(cfg.wav) != 0 {
		var ouf *os.File
		ouf, err = os.Create(cfg.wav)
		if err != nil {
			return
		}
		rec := io.NewWavRecorder(ouf, io.TONE_PULSE)
		*closers = append(*closers, rec.Close, ouf.Close)
		tone = append(tone, rec)
	}

	return
}

func run(cfg *config, path string) (err error) {
	tt := &io.Terminal{Fd: int(os.Stdin.Fd()), Output: os.Stdout}
	screen := &io.Screen{}
	keyboard := io.NewKeyboard(os.Stdin)
	keyboard.Hold = cfg.hold
	keyboard.Verbose = cfg.verbose

	emu := emulator.NewEmulator(screen, keyboard, nil)
	emu.Verbose = cfg.verbose
	emu.Cycle.Interval = cfg.cycle
	emu.Timer.Interval = cfg.timer
	if cfg.seed != 0 {
		emu.Cpu.Rand = rand.New(rand.NewSource(cfg.seed))
	}

	if len(cfg.compile) != 0 {
		inf, err := os.Open(cfg.compile)
		if err != nil {
			return err
		}
		defer inf.Close()

		prog, err := emu.Assemble(inf)
		if err != nil {
			return fmt.Errorf("%v: %w", cfg.compile, err)
		}

		if len(cfg.save) != 0 {
			return os.WriteFile(cfg.save, prog.Binary(), 0o644)
		}
	} else {
		if len(path) == 0 {
			path = prompt(os.Stdout, os.Stdin)
		}

		err = emu.Load(path)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println(f("File not found"))
			os.Exit(1)
		}
		if err != nil {
			return
		}
	}

	var closers []func() error
	defer func() {
		for _, closer := range closers {
			err = errors.Join(err, closer())
		}
	}()

	tone, err := tones(cfg, &closers)
	if err != nil {
		return
	}

	task := io.NewToneTask(tone)
	defer task.Close()
	emu.Tone = task

	screen.PixelWidth = tt.PixelWidth()
	err = tt.Enter()
	if err != nil {
		return
	}
	defer tt.Exit()
	screen.Output = os.Stdout
	screen.Clear()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keyboard.Start()
	go func() {
		<-keyboard.Done()
		stop()
	}()

	err = emu.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.ErrKeypadClosed) {
		err = nil
	}
	if err != nil && cfg.verbose {
		err = fmt.Errorf("%w\n%v", err, emu.Cpu.String())
	}

	return
}

func main() {
	var cfg config
	var logfile string

	flag.StringVar(&cfg.compile, "c", "", ".c8s file to assemble")
	flag.StringVar(&cfg.save, "s", "", "Save assembled image to .ch8 file, do not execute")
	flag.DurationVar(&cfg.cycle, "cycle", emulator.CYCLE_INTERVAL, "Instruction interval")
	flag.DurationVar(&cfg.timer, "timer", emulator.TIMER_INTERVAL, "Timer interval")
	flag.DurationVar(&cfg.hold, "hold", io.KEY_HOLD, "Key hold window")
	flag.BoolVar(&cfg.mute, "mute", false, "Use the terminal bell instead of audio")
	flag.StringVar(&cfg.wav, "wav", "", "Record tones to .wav file")
	flag.Int64Var(&cfg.seed, "seed", 0, "Random seed, 0 for time based")
	flag.BoolVar(&cfg.verbose, "v", false, "Verbose mode")
	flag.StringVar(&logfile, "log", "", "Log file")

	flag.Parse()

	err := cfg.check(flag.Args())
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	if len(logfile) != 0 {
		ouf, err := os.Create(logfile)
		if err != nil {
			log.Fatalf("%v: %v", logfile, err)
		}
		defer ouf.Close()
		log.SetOutput(ouf)
	}

	err = run(&cfg, flag.Arg(0))
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}
