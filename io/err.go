package io

import (
	"errors"

	"github.com/ezrec/ceres/translate"
)

var f = translate.From

var (
	ErrKeypadClosed     = errors.New(f("keypad closed"))
	ErrNotTerminal      = errors.New(f("not a terminal"))
	ErrAudioUnavailable = errors.New(f("audio unavailable"))
)
