//go:build headless

package io

import (
	"time"
)

// Speaker is unavailable in headless builds.
type Speaker struct{}

// NewSpeaker always fails in headless builds.
func NewSpeaker(length time.Duration) (sp *Speaker, err error) {
	err = ErrAudioUnavailable
	return
}

func (sp *Speaker) Beep() {
}

func (sp *Speaker) Close() (err error) {
	return
}
