package io

import (
	"io"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WavRecorder records pulses, with the silence between them, as a mono
// 16-bit WAV stream. The recording is buffered and written on Close.
type WavRecorder struct {
	Output io.WriteSeeker   // WAV destination.
	Rate   int              // Sample rate in Hz.
	Pulse  time.Duration    // Length of one pulse.
	Now    func() time.Time // Clock, time.Now if nil.

	mutex   sync.Mutex
	start   time.Time
	samples []int
	pulse   []int
}

// NewWavRecorder returns a recorder writing to output.
func NewWavRecorder(output io.WriteSeeker, pulse time.Duration) *WavRecorder {
	return &WavRecorder{
		Output: output,
		Rate:   TONE_RATE,
		Pulse:  pulse,
	}
}

func (wr *WavRecorder) now() time.Time {
	if wr.Now == nil {
		return time.Now()
	}
	return wr.Now()
}

// Beep records a pulse at the current time. Overlapping pulses are
// recorded back to back.
func (wr *WavRecorder) Beep() {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()

	now := wr.now()
	if wr.start.IsZero() {
		wr.start = now
	}
	if wr.pulse == nil {
		wr.pulse = PulseSamples(wr.Rate, TONE_PITCH, wr.Pulse)
	}

	offset := int(now.Sub(wr.start).Seconds() * float64(wr.Rate))
	if offset > len(wr.samples) {
		wr.samples = append(wr.samples, make([]int, offset-len(wr.samples))...)
	}

	wr.samples = append(wr.samples, wr.pulse...)
}

// Samples returns the number of samples recorded.
func (wr *WavRecorder) Samples() int {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()

	return len(wr.samples)
}

// Close writes the recording.
func (wr *WavRecorder) Close() (err error) {
	wr.mutex.Lock()
	defer wr.mutex.Unlock()

	enc := wav.NewEncoder(wr.Output, wr.Rate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  wr.Rate,
		},
		Data:           wr.samples,
		SourceBitDepth: 16,
	}

	err = enc.Write(buf)
	if err != nil {
		return
	}

	err = enc.Close()
	return
}
