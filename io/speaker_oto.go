//go:build !headless

package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays each pulse as a square wave on the host audio device.
type Speaker struct {
	ctx *oto.Context
	pcm []byte

	mutex   sync.Mutex
	players []*oto.Player
}

// NewSpeaker opens the host audio device, with pulses of the given length.
// Only one Speaker may exist per process.
func NewSpeaker(length time.Duration) (sp *Speaker, err error) {
	op := &oto.NewContextOptions{
		SampleRate:   TONE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		err = errors.Join(ErrAudioUnavailable, err)
		return
	}
	<-ready

	samples := PulseSamples(TONE_RATE, TONE_PITCH, length)
	pcm := make([]byte, 0, len(samples)*2)
	for _, sample := range samples {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(int16(sample)))
	}

	sp = &Speaker{
		ctx: ctx,
		pcm: pcm,
	}

	return
}

// Beep starts playing a pulse.
func (sp *Speaker) Beep() {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	// Retire finished pulses.
	playing := sp.players[:0]
	for _, player := range sp.players {
		if player.IsPlaying() {
			playing = append(playing, player)
		} else {
			player.Close()
		}
	}
	clear(sp.players[len(playing):])
	sp.players = playing

	player := sp.ctx.NewPlayer(bytes.NewReader(sp.pcm))
	player.Play()
	sp.players = append(sp.players, player)
}

// Close stops all playing pulses.
func (sp *Speaker) Close() (err error) {
	sp.mutex.Lock()
	defer sp.mutex.Unlock()

	for _, player := range sp.players {
		err = errors.Join(err, player.Close())
	}
	sp.players = nil

	return
}
