package io

import (
	"unicode"
)

// KeyMap binds each logical key code to a host key.
type KeyMap [KEY_COUNT]rune

// DefaultKeyMap lays the keypad out on the left of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  q w e r
//	7 8 9 E      a s d f
//	A 0 B F      z x c v
var DefaultKeyMap = KeyMap{
	'x', '1', '2', '3',
	'q', 'w', 'e', 'a',
	's', 'd', 'z', 'c',
	'4', 'r', 'f', 'v',
}

// Host returns the host key bound to a logical key code.
func (km *KeyMap) Host(code uint8) (key rune, ok bool) {
	if int(code) >= len(km) {
		return
	}

	key = km[code]
	ok = true
	return
}

// Logical returns the logical key code bound to a host key.
// Letters match regardless of case.
func (km *KeyMap) Logical(key rune) (code uint8, ok bool) {
	key = unicode.ToLower(key)
	for n, host := range km {
		if unicode.ToLower(host) == key {
			code = uint8(n)
			ok = true
			return
		}
	}

	return
}
