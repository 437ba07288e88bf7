package io

import (
	"io"
	"math"
	"sync"
	"time"
)

const (
	TONE_RATE   = 44100                 // Sample rate of generated pulses, in Hz.
	TONE_PITCH  = 440                   // Pitch of the pulse square wave, in Hz.
	TONE_PULSE  = 17 * time.Millisecond // Length of one pulse.
	TONE_VOLUME = 0x2000                // Peak amplitude of a 16-bit pulse.
)

// PulseSamples returns a square wave pulse of 16-bit mono samples.
func PulseSamples(rate int, pitch int, length time.Duration) (samples []int) {
	count := int(math.Round(length.Seconds() * float64(rate)))
	samples = make([]int, count)

	period := float64(rate) / float64(pitch)
	for n := range samples {
		if math.Mod(float64(n), period) < period/2 {
			samples[n] = TONE_VOLUME
		} else {
			samples[n] = -TONE_VOLUME
		}
	}

	return
}

// Tones emits each pulse on every tone in the list.
type Tones []Tone

func (tl Tones) Beep() {
	for _, tone := range tl {
		tone.Beep()
	}
}

// Bell emits pulses as the terminal bell.
type Bell struct {
	Output io.Writer
}

func (bl *Bell) Beep() {
	bl.Output.Write([]byte{'\a'})
}

// ToneTask hands pulses to a Tone on a dedicated goroutine, so that the
// caller never waits on the audio device. Pulses that arrive while one
// is still pending are dropped.
type ToneTask struct {
	mutex  sync.Mutex
	closed bool
	pulses chan struct{}
	wg     sync.WaitGroup
}

// NewToneTask starts a task emitting pulses on tone.
func NewToneTask(tone Tone) (tt *ToneTask) {
	tt = &ToneTask{
		pulses: make(chan struct{}, 1),
	}

	tt.wg.Add(1)
	go func() {
		defer tt.wg.Done()
		for range tt.pulses {
			tone.Beep()
		}
	}()

	return
}

// Beep queues a pulse without blocking.
func (tt *ToneTask) Beep() {
	tt.mutex.Lock()
	defer tt.mutex.Unlock()

	if tt.closed {
		return
	}

	select {
	case tt.pulses <- struct{}{}:
	default:
	}
}

// Close stops the task once any pending pulse has been emitted.
func (tt *ToneTask) Close() {
	tt.mutex.Lock()
	if !tt.closed {
		tt.closed = true
		close(tt.pulses)
	}
	tt.mutex.Unlock()

	tt.wg.Wait()
}
