package io

import (
	"io"
	"log"
	"sync"
	"time"
)

const (
	KEY_HOLD   = 150 * time.Millisecond // Default key hold window.
	KEY_BUFFER = 16                     // Pending key presses kept for ReadKey.

	KEY_INTERRUPT = 0x03 // Ctrl-C
	KEY_ESCAPE    = 0x1b // Esc
)

// Keyboard is a Keypad fed by a raw terminal byte stream.
//
// A terminal reports key presses, not key releases, so a key counts as
// held for the Hold window after its most recent press or auto-repeat.
// Ctrl-C, or a lone Esc, closes the keyboard.
type Keyboard struct {
	Verbose bool             // If set, log key presses.
	Input   io.Reader        // Raw terminal input.
	Map     KeyMap           // Host to logical key bindings.
	Hold    time.Duration    // Key hold window.
	Now     func() time.Time // Clock, time.Now if nil.

	mutex   sync.Mutex
	pressed [KEY_COUNT]time.Time
	presses chan uint8
	done    chan struct{}
	closing sync.Once
}

// NewKeyboard returns a keyboard reading from input with the default
// key map and hold window.
func NewKeyboard(input io.Reader) (kb *Keyboard) {
	kb = &Keyboard{
		Input: input,
		Map:   DefaultKeyMap,
		Hold:  KEY_HOLD,
	}

	kb.Init()

	return
}

func (kb *Keyboard) now() time.Time {
	if kb.Now == nil {
		return time.Now()
	}
	return kb.Now()
}

// Init forgets all held and pending key presses.
func (kb *Keyboard) Init() {
	kb.mutex.Lock()
	defer kb.mutex.Unlock()

	if kb.presses == nil {
		kb.presses = make(chan uint8, KEY_BUFFER)
		kb.done = make(chan struct{})
	}

	clear(kb.pressed[:])

drain:
	for {
		select {
		case <-kb.presses:
		default:
			break drain
		}
	}
}

// Start reading the input stream in the background.
// The keyboard closes when the input ends or fails.
func (kb *Keyboard) Start() {
	kb.Init()

	go func() {
		defer kb.Close()

		var buf [64]byte
		for {
			n, err := kb.Input.Read(buf[:])
			for i := 0; i < n; i++ {
				switch buf[i] {
				case KEY_INTERRUPT:
					return
				case KEY_ESCAPE:
					skip, ok := escapeLength(buf[i+1 : n])
					if !ok {
						return
					}
					i += skip
				default:
					kb.Press(rune(buf[i]))
				}
			}
			if err != nil {
				if kb.Verbose && err != io.EOF {
					log.Printf("keyboard: %v", err)
				}
				return
			}
		}
	}()
}

// escapeLength returns the length of the CSI or SS3 sequence (cursor and
// function keys) following an Esc. Anything else is a lone Esc.
// A sequence cut short by the end of the read is skipped in full.
func escapeLength(seq []byte) (n int, ok bool) {
	if len(seq) == 0 || (seq[0] != '[' && seq[0] != 'O') {
		return
	}

	ok = true
	for n = 1; n < len(seq); n++ {
		if seq[n] >= 0x40 && seq[n] <= 0x7e {
			n++
			return
		}
	}

	return
}

// Press records a host key press. Returns false if the key is unbound.
func (kb *Keyboard) Press(key rune) (ok bool) {
	code, ok := kb.Map.Logical(key)
	if !ok {
		return
	}

	if kb.Verbose {
		log.Printf("keyboard: %q -> %X", key, code)
	}

	kb.mutex.Lock()
	kb.pressed[code] = kb.now()
	presses := kb.presses
	kb.mutex.Unlock()

	select {
	case presses <- code:
	default:
		// Buffer full, drop the press.
	}

	return
}

// IsKeyPressed polls whether the logical key is currently held.
func (kb *Keyboard) IsKeyPressed(code uint8) bool {
	if int(code) >= KEY_COUNT {
		return false
	}

	kb.mutex.Lock()
	pressed := kb.pressed[code]
	kb.mutex.Unlock()

	return !pressed.IsZero() && kb.now().Sub(pressed) < kb.Hold
}

// ReadKey blocks until the next logical key press, or until the keyboard
// is closed.
func (kb *Keyboard) ReadKey() (code uint8, err error) {
	kb.mutex.Lock()
	presses, done := kb.presses, kb.done
	kb.mutex.Unlock()

	select {
	case <-done:
		err = ErrKeypadClosed
		return
	default:
	}

	select {
	case code = <-presses:
	case <-done:
		err = ErrKeypadClosed
	}

	return
}

// Done is closed when the keyboard is closed.
func (kb *Keyboard) Done() <-chan struct{} {
	kb.mutex.Lock()
	defer kb.mutex.Unlock()

	return kb.done
}

// Close the keyboard, releasing any blocked ReadKey.
func (kb *Keyboard) Close() {
	kb.closing.Do(func() {
		kb.mutex.Lock()
		defer kb.mutex.Unlock()
		if kb.done == nil {
			kb.done = make(chan struct{})
			kb.presses = make(chan uint8, KEY_BUFFER)
		}
		close(kb.done)
	})
}
