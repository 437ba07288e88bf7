package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"ld", "v0", "0x10"}, Bytes: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Words: []string{"ld", "v1", "0x20"}, Bytes: []byte{0x61, 0x20}},
			{LineNo: 3, Addr: 0x204, Words: []string{"add", "v0", "v1"}, Bytes: []byte{0x80, 0x14}},
		},
	}

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x203)
	assert.NotNil(dbg.Opcode)
	assert.Equal(2, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(0x204)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.Opcode.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Words: []string{"ld", "v0", "0x10"}, Bytes: []byte{0x60, 0x10}},
		},
	}

	dbg := prog.Debug(0x1ff)
	assert.Nil(dbg.Opcode)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(0x202)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Debug_Data(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 4, Addr: 0x200, Words: []string{"db", "1", "2", "3"}, Bytes: []byte{1, 2, 3}, Data: true},
		},
	}

	for n := range 3 {
		dbg := prog.Debug(uint16(0x200 + n))
		if assert.NotNil(dbg.Opcode) {
			assert.Equal(4, dbg.LineNo)
			assert.Equal(n, dbg.Index)
		}
	}

	dbg := prog.Debug(0x203)
	assert.Nil(dbg.Opcode)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Bytes: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Bytes: []byte{0xff}, Data: true},
			{LineNo: 3, Addr: 0x206, Bytes: []byte{0x00, 0xe0}},
		},
	}

	assert.Equal([]byte{0x60, 0x10, 0xff, 0x00, 0x00, 0x00, 0x00, 0xe0}, prog.Binary())
}

func TestProgram_Binary_Empty(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}
	assert.Empty(prog.Binary())
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Bytes: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Bytes: []byte{0x12, 0x34, 0x56}, Data: true},
			{LineNo: 3, Addr: 0x205, Bytes: []byte{0x00, 0xe0}},
		},
	}

	addrs := []uint16{}
	codes := []Code{}
	for addr, code := range prog.Codes() {
		addrs = append(addrs, addr)
		codes = append(codes, code)
	}

	assert.Equal([]uint16{0x200, 0x205}, addrs)
	assert.Equal([]Code{0x6010, 0x00e0}, codes)
}

func TestProgram_Codes_EarlyReturn(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0x200, Bytes: []byte{0x60, 0x10}},
			{LineNo: 2, Addr: 0x202, Bytes: []byte{0x61, 0x20}},
			{LineNo: 3, Addr: 0x204, Bytes: []byte{0x62, 0x30}},
		},
	}

	count := 0
	for range prog.Codes() {
		count++
		if count == 2 {
			break
		}
	}

	assert.Equal(2, count)
}

func TestProgram_Codes_Empty(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}

	count := 0
	for range prog.Codes() {
		count++
	}

	assert.Equal(0, count)
}

func TestProgram_Integration_ParseAndBinary(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := strings.Join([]string{
		"ld v0, 0x10",
		"ld v1, 0x20",
		"add v0, v1",
	}, "\n")

	prog, err := asm.Parse(strings.NewReader(program))
	assert.NoError(err)

	assert.Equal([]byte{0x60, 0x10, 0x61, 0x20, 0x80, 0x14}, prog.Binary())
}

func TestProgram_Integration_ParseAndDebug(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	program := strings.Join([]string{
		"ld v0, 0x10",
		"; nothing",
		"ld v1, 0x20",
		"add v0, v1",
	}, "\n")

	prog, err := asm.Parse(strings.NewReader(program))
	assert.NoError(err)

	dbg := prog.Debug(0x200)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Opcode.LineNo)

	dbg = prog.Debug(0x202)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.Opcode.LineNo)

	dbg = prog.Debug(0x205)
	assert.NotNil(dbg.Opcode)
	assert.Equal(4, dbg.Opcode.LineNo)
	assert.Equal(1, dbg.Index)
}
