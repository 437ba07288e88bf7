// Package io provides the devices the Ceres interpreter engine drives.
// It defines the Display, Keypad, and Tone contracts used by package cpu
// and the host adapters behind them: a framebuffer rendered to a text
// terminal (Screen), a raw-mode terminal keyboard (Keyboard, KeyMap,
// Terminal), and tone outputs (ToneTask, Speaker, Bell, WavRecorder).
package io

const (
	SCREEN_WIDTH  = 64                            // Framebuffer width in pixels.
	SCREEN_HEIGHT = 32                            // Framebuffer height in pixels.
	SCREEN_SIZE   = SCREEN_WIDTH * SCREEN_HEIGHT // Framebuffer size in pixels.
	KEY_COUNT     = 16                            // Number of logical keys.
)

// Display is a monochrome SCREEN_WIDTH x SCREEN_HEIGHT framebuffer.
// Pixels are addressed linearly as x + y*SCREEN_WIDTH.
type Display interface {
	// Init resets all pixels to unset, without redrawing.
	Init()
	// Clear unsets every pixel and redraws.
	Clear()
	// GetPixel returns true if the pixel at pos is set.
	GetPixel(pos uint16) bool
	// SetPixel toggles the pixel at pos and redraws it.
	SetPixel(pos uint16)
}

// Keypad is the 16 key input device, addressed by logical key code 0x0-0xF.
type Keypad interface {
	// Init resets the keypad state.
	Init()
	// IsKeyPressed polls whether the logical key is currently held.
	IsKeyPressed(code uint8) bool
	// ReadKey blocks until the next logical key press.
	ReadKey() (code uint8, err error)
}

// Tone emits an audible pulse. Beep must not block the caller for longer
// than it takes to hand the pulse off.
type Tone interface {
	Beep()
}
