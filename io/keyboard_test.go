package io

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyMap(t *testing.T) {
	assert := assert.New(t)

	km := DefaultKeyMap

	table := [](struct {
		key  rune
		code uint8
	}){
		{'x', 0x0},
		{'1', 0x1},
		{'2', 0x2},
		{'3', 0x3},
		{'q', 0x4},
		{'w', 0x5},
		{'e', 0x6},
		{'a', 0x7},
		{'s', 0x8},
		{'d', 0x9},
		{'z', 0xa},
		{'c', 0xb},
		{'4', 0xc},
		{'r', 0xd},
		{'f', 0xe},
		{'v', 0xf},
		{'V', 0xf},
	}

	for _, entry := range table {
		code, ok := km.Logical(entry.key)
		assert.True(ok, string(entry.key))
		assert.Equal(entry.code, code, string(entry.key))

		key, ok := km.Host(entry.code)
		assert.True(ok)
		assert.Equal(entry.key|0x20, key|0x20)
	}

	_, ok := km.Logical('p')
	assert.False(ok)

	_, ok = km.Host(KEY_COUNT)
	assert.False(ok)
}

func newTestKeyboard(input io.Reader) (kb *Keyboard, now *time.Time) {
	now = &time.Time{}
	*now = time.Unix(1000, 0)

	kb = NewKeyboard(input)
	kb.Now = func() time.Time { return *now }

	return
}

func TestKeyboard_Hold(t *testing.T) {
	assert := assert.New(t)

	kb, now := newTestKeyboard(nil)

	assert.False(kb.IsKeyPressed(5))
	assert.True(kb.Press('w'))
	assert.True(kb.IsKeyPressed(5))
	assert.False(kb.IsKeyPressed(4))

	*now = now.Add(KEY_HOLD - time.Millisecond)
	assert.True(kb.IsKeyPressed(5))

	// Auto-repeat extends the hold.
	assert.True(kb.Press('W'))
	*now = now.Add(KEY_HOLD - time.Millisecond)
	assert.True(kb.IsKeyPressed(5))

	*now = now.Add(time.Millisecond)
	assert.False(kb.IsKeyPressed(5))

	assert.False(kb.Press('p'))
	assert.False(kb.IsKeyPressed(KEY_COUNT))
}

func TestKeyboard_ReadKey(t *testing.T) {
	assert := assert.New(t)

	kb, _ := newTestKeyboard(nil)

	kb.Press('z')
	kb.Press('4')
	kb.Press('o')

	code, err := kb.ReadKey()
	assert.NoError(err)
	assert.Equal(uint8(0xa), code)

	code, err = kb.ReadKey()
	assert.NoError(err)
	assert.Equal(uint8(0xc), code)

	go func() {
		time.Sleep(10 * time.Millisecond)
		kb.Press('f')
	}()

	code, err = kb.ReadKey()
	assert.NoError(err)
	assert.Equal(uint8(0xe), code)

	kb.Press('1')
	kb.Close()
	_, err = kb.ReadKey()
	assert.ErrorIs(err, ErrKeypadClosed)

	// Closing twice is harmless.
	kb.Close()
}

func TestKeyboard_Init(t *testing.T) {
	assert := assert.New(t)

	kb, _ := newTestKeyboard(nil)

	for range KEY_BUFFER * 2 {
		kb.Press('1')
	}
	assert.True(kb.IsKeyPressed(1))

	kb.Init()
	assert.False(kb.IsKeyPressed(1))

	kb.Press('2')
	code, err := kb.ReadKey()
	assert.NoError(err)
	assert.Equal(uint8(2), code)
}

func TestKeyboard_Start(t *testing.T) {
	assert := assert.New(t)

	kb, _ := newTestKeyboard(strings.NewReader("1q\x03z"))
	kb.Start()

	select {
	case <-kb.Done():
	case <-time.After(time.Second):
		assert.Fail("keyboard did not close")
		return
	}

	assert.True(kb.IsKeyPressed(0x1))
	assert.True(kb.IsKeyPressed(0x4))
	assert.False(kb.IsKeyPressed(0xa))

	_, err := kb.ReadKey()
	assert.ErrorIs(err, ErrKeypadClosed)
}

func TestKeyboard_Escape(t *testing.T) {
	assert := assert.New(t)

	// A cursor key sequence is skipped.
	kb, _ := newTestKeyboard(io.MultiReader(strings.NewReader("\x1b[A"), strings.NewReader("w")))
	kb.Start()
	<-kb.Done()
	assert.True(kb.IsKeyPressed(0x5))

	// A lone Esc closes the keyboard.
	kb, _ = newTestKeyboard(io.MultiReader(strings.NewReader("\x1b"), strings.NewReader("w")))
	kb.Start()
	<-kb.Done()
	assert.False(kb.IsKeyPressed(0x5))

	table := [](struct {
		input string
		held  []uint8
		clear []uint8
	}){
		{"w\x1b[A1", []uint8{0x5, 0x1}, nil},
		{"\x1bOP2", []uint8{0x2}, nil},
		{"\x1b[1;5C3q", []uint8{0x3, 0x4}, nil},
		{"\x1b[15~e", []uint8{0x6}, nil},
		{"1\x1bw", []uint8{0x1}, []uint8{0x5}},
		{"\x1b[", nil, []uint8{0x5}},
	}

	for _, entry := range table {
		kb, _ := newTestKeyboard(strings.NewReader(entry.input))
		kb.Start()
		<-kb.Done()

		var presses []uint8
	drain:
		for {
			select {
			case code := <-kb.presses:
				presses = append(presses, code)
			default:
				break drain
			}
		}

		for _, code := range entry.held {
			assert.True(kb.IsKeyPressed(code), "%q %X", entry.input, code)
		}
		for _, code := range entry.clear {
			assert.False(kb.IsKeyPressed(code), "%q %X", entry.input, code)
		}
		assert.Equal(len(entry.held), len(presses), "%q", entry.input)
	}
}
