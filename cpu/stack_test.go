package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack_Push(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())
	assert.False(s.Full())

	assert.True(s.Push(0x234))
	assert.False(s.Empty())
	assert.Equal(1, len(s.Data))
	assert.Equal(uint16(0x234), s.Data[0])
}

func TestStack_Pop(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)

	val, ok := s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0xabc), val)
	assert.Equal(1, len(s.Data))

	val, ok = s.Pop()
	assert.True(ok)
	assert.Equal(uint16(0x234), val)
	assert.Equal(0, len(s.Data))
}

func TestStack_Pop_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Pop()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Peek(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)

	val, ok := s.Peek()
	assert.True(ok)
	assert.Equal(uint16(0xabc), val)
	assert.Equal(2, len(s.Data))
}

func TestStack_Peek_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	val, ok := s.Peek()
	assert.False(ok)
	assert.Equal(uint16(0), val)
}

func TestStack_Full(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.False(s.Full())

	for i := range STACK_LIMIT {
		assert.True(s.Push(uint16(i)))
	}

	assert.True(s.Full())
	assert.False(s.Empty())

	// Overflow leaves the stack untouched.
	assert.False(s.Push(0xfff))
	assert.Equal(STACK_LIMIT, len(s.Data))
	val, _ := s.Peek()
	assert.Equal(uint16(STACK_LIMIT-1), val)
}

func TestStack_Reset(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Push(0x234)
	s.Push(0xabc)
	assert.Equal(2, len(s.Data))

	s.Reset()
	assert.True(s.Empty())
	assert.Equal(0, len(s.Data))
}

func TestStack_Reset_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	s.Reset()
	assert.True(s.Empty())
}

func TestStack_Empty(t *testing.T) {
	assert := assert.New(t)

	s := &Stack{}
	assert.True(s.Empty())

	s.Push(1)
	assert.False(s.Empty())

	s.Pop()
	assert.True(s.Empty())
}
