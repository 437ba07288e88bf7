package io

import (
	"fmt"
	"io"

	tm "github.com/buger/goterm"
	"golang.org/x/term"
)

const (
	cursorHide = "\033[?25l"
	cursorShow = "\033[?25h"
	resetStyle = "\033[0m"
	clearAll   = "\033[2J"
)

// Terminal switches a text terminal into raw mode for the Screen and
// Keyboard, and restores it on Exit.
type Terminal struct {
	Fd     int       // Terminal file descriptor.
	Output io.Writer // Terminal output.

	state *term.State
}

// Size returns the terminal size in character cells.
func (tt *Terminal) Size() (width, height int, err error) {
	if !term.IsTerminal(tt.Fd) {
		err = ErrNotTerminal
		return
	}

	return term.GetSize(tt.Fd)
}

// PixelWidth returns the widest Screen pixel, in columns, that fits
// the terminal.
func (tt *Terminal) PixelWidth() (width int) {
	width = 2
	columns, _, err := tt.Size()
	if err == nil && columns < SCREEN_WIDTH*width {
		width = 1
	}

	return
}

// Enter puts the terminal in raw mode, hides the cursor, and clears it.
func (tt *Terminal) Enter() (err error) {
	if !term.IsTerminal(tt.Fd) {
		err = ErrNotTerminal
		return
	}

	tt.state, err = term.MakeRaw(tt.Fd)
	if err != nil {
		return
	}

	tt.blank()

	return
}

// blank hides the cursor and clears the terminal.
func (tt *Terminal) blank() {
	fmt.Fprint(tt.Output, cursorHide, clearAll, tm.MoveTo("", 1, 1))
}

// unblank resets the style and shows the cursor below the screen.
func (tt *Terminal) unblank() {
	fmt.Fprint(tt.Output, resetStyle, tm.MoveTo("", 1, SCREEN_HEIGHT+1), "\r\n", cursorShow)
}

// Exit restores the terminal to the state it was in before Enter.
func (tt *Terminal) Exit() (err error) {
	if tt.state == nil {
		return
	}

	tt.unblank()

	err = term.Restore(tt.Fd, tt.state)
	tt.state = nil

	return
}
