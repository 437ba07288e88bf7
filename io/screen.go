package io

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"strings"

	tm "github.com/buger/goterm"
)

// Screen is a Display rendered to a text terminal, one character cell run
// per pixel. A nil Output keeps the framebuffer without rendering it.
type Screen struct {
	Output     io.Writer // Terminal output.
	PixelWidth int       // Terminal columns per pixel; 0 selects 2.

	pixel [SCREEN_SIZE]bool
}

// Defines returns the assembler predefines for the screen geometry.
func (sc *Screen) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"SCREEN_WIDTH":  fmt.Sprintf("%d", SCREEN_WIDTH),
		"SCREEN_HEIGHT": fmt.Sprintf("%d", SCREEN_HEIGHT),
	})
}

func (sc *Screen) width() int {
	if sc.PixelWidth <= 0 {
		return 2
	}
	return sc.PixelWidth
}

func (sc *Screen) cell(set bool) string {
	color := tm.BLACK
	if set {
		color = tm.WHITE
	}

	return tm.Background(strings.Repeat(" ", sc.width()), color)
}

// draw a single pixel at its terminal position.
func (sc *Screen) draw(pos uint16) {
	if sc.Output == nil {
		return
	}

	x := int(pos%SCREEN_WIDTH)*sc.width() + 1
	y := int(pos/SCREEN_WIDTH) + 1
	fmt.Fprint(sc.Output, tm.MoveTo(sc.cell(sc.pixel[pos]), x, y))
}

// Init unsets all pixels, without redrawing.
func (sc *Screen) Init() {
	clear(sc.pixel[:])
}

// Clear unsets all pixels and redraws the whole screen.
func (sc *Screen) Clear() {
	clear(sc.pixel[:])

	if sc.Output == nil {
		return
	}

	row := strings.Repeat(sc.cell(false), SCREEN_WIDTH)
	for y := range SCREEN_HEIGHT {
		fmt.Fprint(sc.Output, tm.MoveTo(row, 1, y+1))
	}
}

// GetPixel returns true if the pixel at pos is set.
func (sc *Screen) GetPixel(pos uint16) bool {
	return sc.pixel[pos]
}

// SetPixel toggles the pixel at pos and redraws it.
func (sc *Screen) SetPixel(pos uint16) {
	sc.pixel[pos] = !sc.pixel[pos]
	sc.draw(pos)
}

// String renders the framebuffer as text, '#' for a set pixel.
func (sc *Screen) String() string {
	var text strings.Builder

	for y := range SCREEN_HEIGHT {
		for x := range SCREEN_WIDTH {
			if sc.pixel[x+y*SCREEN_WIDTH] {
				text.WriteByte('#')
			} else {
				text.WriteByte('.')
			}
		}
		text.WriteByte('\n')
	}

	return text.String()
}
