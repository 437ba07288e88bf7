// Copyright 2026, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// Assembler is a single pass macro assembler for the Ceres machine.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for '@' local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	invert := false
	if len(word) > 1 && word[0] == '~' {
		invert = true
		word = word[1:]
	}
	value, err = strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if invert {
		value = ^value
	}

	return
}

// fitValue returns the value of a word that must fit into bits.
// Negative values down to the signed minimum are accepted as two's complement.
func (asm *Assembler) fitValue(word string, bits int) (value uint32, err error) {
	v64, err := asm.valueOf(word)
	if err != nil {
		return
	}

	limit := int64(1)<<bits - 1
	if v64 > limit || v64 < -(int64(1)<<(bits-1)) {
		err = ErrValueRange{Value: uint32(v64), Limit: uint32(limit)}
		return
	}

	value = uint32(v64) & uint32(limit)
	return
}

var labelRegexp = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)

// address returns a 12-bit address, or the label to link it against.
func (asm *Assembler) address(word string) (nnn uint16, label string, err error) {
	value, err := asm.fitValue(word, 12)
	if err == nil {
		nnn = uint16(value)
		return
	}

	if _, ok := err.(ErrParseNumber); ok && labelRegexp.MatchString(word) {
		err = nil
		label = word
	}

	return
}

// register returns the id of a vN register word.
func (asm *Assembler) register(word string) (id uint8, err error) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		err = ErrRegisterInvalid
		return
	}

	v, perr := strconv.ParseUint(word[1:], 16, 4)
	if perr != nil {
		err = ErrRegisterInvalid
		return
	}

	id = uint8(v)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v64 int64
		v64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	for key, addr := range asm.Label {
		pred[key] = starlark.MakeInt(addr)
	}
	err = nil

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// splitWords splits a line into words on blanks and commas.
func splitWords(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = splitWords(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next generated byte.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_START
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Bytes)
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.expansion = 0
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, _cpu_defines)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := splitWords(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	if asm.currentAddr() > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	// Final linking of labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}
		linked := op.Bytes[len(op.Bytes)-2:]
		word := binary.BigEndian.Uint16(linked)
		if op.Data {
			word = uint16(addr)
		} else {
			if addr > 0xfff {
				err = ErrValueRange{Value: uint32(addr), Limit: 0xfff}
				return
			}
			word |= uint16(addr)
		}
		binary.BigEndian.PutUint16(linked, word)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// aluMap maps register-register ALU mnemonics to their low nibble.
var aluMap = map[string]uint8{
	"or":   0x1,
	"and":  0x2,
	"xor":  0x3,
	"sub":  0x5,
	"shr":  0x6,
	"subn": 0x7,
	"shl":  0xe,
}

// ldMap maps the special destinations of 'ld <dst> vx' to their low byte.
var ldMap = map[string]uint8{
	"dt":  0x15,
	"st":  0x18,
	"f":   0x29,
	"b":   0x33,
	"[i]": 0x55,
}

// argCount checks that exactly count arguments are present.
func argCount(args []string, count int) (err error) {
	switch {
	case len(args) < count:
		err = ErrOpcodeValueMissing
	case len(args) > count:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var bytes []byte
	var label string
	var data bool

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(bytes) == 0 {
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: asm.currentAddr(), Words: initial_words, Bytes: bytes, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	switch mnemonic {
	case "db":
		data = true
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint32
			value, err = asm.fitValue(arg, 8)
			if err != nil {
				return
			}
			bytes = append(bytes, byte(value))
		}
	case "dw":
		data = true
		if len(args) == 0 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, arg := range args {
			var value uint32
			value, err = asm.fitValue(arg, 16)
			if _, ok := err.(ErrParseNumber); ok && len(args) == 1 && labelRegexp.MatchString(arg) {
				err = nil
				label = arg
			}
			if err != nil {
				return
			}
			bytes = binary.BigEndian.AppendUint16(bytes, uint16(value))
		}
	default:
		var code Code
		code, label, err = asm.encode(mnemonic, args)
		if err != nil {
			return
		}
		bytes = binary.BigEndian.AppendUint16(bytes, uint16(code))
	}

	return
}

// encode assembles a single instruction.
func (asm *Assembler) encode(mnemonic string, args []string) (code Code, label string, err error) {
	var nnn uint16
	var x, y uint8
	var value uint32

	switch mnemonic {
	case "cls", "ret":
		if err = argCount(args, 0); err != nil {
			return
		}
		code = 0x00e0
		if mnemonic == "ret" {
			code = 0x00ee
		}
	case "sys", "call":
		if err = argCount(args, 1); err != nil {
			return
		}
		if nnn, label, err = asm.address(args[0]); err != nil {
			return
		}
		family := uint8(0x0)
		if mnemonic == "call" {
			family = 0x2
		}
		code = MakeCodeAddr(family, nnn)
	case "jp":
		if len(args) == 2 {
			if x, err = asm.register(args[0]); err != nil {
				return
			}
			if x != 0 {
				err = ErrRegisterInvalid
				return
			}
			if nnn, label, err = asm.address(args[1]); err != nil {
				return
			}
			code = MakeCodeAddr(0xb, nnn)
			return
		}
		if err = argCount(args, 1); err != nil {
			return
		}
		if nnn, label, err = asm.address(args[0]); err != nil {
			return
		}
		code = MakeCodeAddr(0x1, nnn)
	case "se", "sne":
		if err = argCount(args, 2); err != nil {
			return
		}
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if y, err = asm.register(args[1]); err == nil {
			family := uint8(0x5)
			if mnemonic == "sne" {
				family = 0x9
			}
			code = MakeCode(family, x, y, 0)
			return
		}
		if value, err = asm.fitValue(args[1], 8); err != nil {
			return
		}
		family := uint8(0x3)
		if mnemonic == "sne" {
			family = 0x4
		}
		code = MakeCodeByte(family, x, uint8(value))
	case "ld":
		if err = argCount(args, 2); err != nil {
			return
		}
		code, label, err = asm.encodeLd(strings.ToLower(args[0]), args[1])
	case "add":
		if err = argCount(args, 2); err != nil {
			return
		}
		if strings.ToLower(args[0]) == "i" {
			if x, err = asm.register(args[1]); err != nil {
				return
			}
			code = MakeCodeByte(0xf, x, 0x1e)
			return
		}
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if y, err = asm.register(args[1]); err == nil {
			code = MakeCode(0x8, x, y, 0x4)
			return
		}
		if value, err = asm.fitValue(args[1], 8); err != nil {
			return
		}
		code = MakeCodeByte(0x7, x, uint8(value))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		shift := mnemonic == "shr" || mnemonic == "shl"
		if shift && len(args) == 1 {
			args = append(args, "v0")
		}
		if err = argCount(args, 2); err != nil {
			return
		}
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if y, err = asm.register(args[1]); err != nil {
			return
		}
		code = MakeCode(0x8, x, y, aluMap[mnemonic])
	case "rnd":
		if err = argCount(args, 2); err != nil {
			return
		}
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if value, err = asm.fitValue(args[1], 8); err != nil {
			return
		}
		code = MakeCodeByte(0xc, x, uint8(value))
	case "drw":
		if err = argCount(args, 3); err != nil {
			return
		}
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		if y, err = asm.register(args[1]); err != nil {
			return
		}
		if value, err = asm.fitValue(args[2], 4); err != nil {
			return
		}
		code = MakeCode(0xd, x, y, uint8(value))
	case "skp", "sknp":
		if err = argCount(args, 1); err != nil {
			return
		}
		if x, err = asm.register(args[0]); err != nil {
			return
		}
		kk := uint8(0x9e)
		if mnemonic == "sknp" {
			kk = 0xa1
		}
		code = MakeCodeByte(0xe, x, kk)
	default:
		err = ErrInstructionInvalid
	}

	return
}

// encodeLd assembles the many forms of 'ld <dst> <src>'.
func (asm *Assembler) encodeLd(dst string, src string) (code Code, label string, err error) {
	var x, y uint8

	if dst == "i" {
		var nnn uint16
		if nnn, label, err = asm.address(src); err != nil {
			return
		}
		code = MakeCodeAddr(0xa, nnn)
		return
	}

	if kk, ok := ldMap[dst]; ok {
		if x, err = asm.register(src); err != nil {
			return
		}
		code = MakeCodeByte(0xf, x, kk)
		return
	}

	if x, err = asm.register(dst); err != nil {
		err = ErrTargetInvalid
		return
	}

	switch strings.ToLower(src) {
	case "dt":
		code = MakeCodeByte(0xf, x, 0x07)
	case "k":
		code = MakeCodeByte(0xf, x, 0x0a)
	case "[i]":
		code = MakeCodeByte(0xf, x, 0x65)
	default:
		if y, err = asm.register(src); err == nil {
			code = MakeCode(0x8, x, y, 0x0)
			return
		}
		var value uint32
		if value, err = asm.fitValue(src, 8); err != nil {
			return
		}
		code = MakeCodeByte(0x6, x, uint8(value))
	}

	return
}
