package cpu

import (
	"fmt"
)

// Op is a decoded operation. Every instruction word decodes to exactly one Op.
type Op int

const (
	OP_UNKNOWN   = Op(iota) // ????
	OP_CLS                  // 00E0 cls
	OP_RET                  // 00EE ret
	OP_JP                   // 1nnn jp nnn
	OP_CALL                 // 2nnn call nnn
	OP_SE_BYTE              // 3xkk se vx, kk
	OP_SNE_BYTE             // 4xkk sne vx, kk
	OP_SE_REG               // 5xy0 se vx, vy
	OP_LD_BYTE              // 6xkk ld vx, kk
	OP_ADD_BYTE             // 7xkk add vx, kk
	OP_LD_REG               // 8xy0 ld vx, vy
	OP_OR                   // 8xy1 or vx, vy
	OP_AND                  // 8xy2 and vx, vy
	OP_XOR                  // 8xy3 xor vx, vy
	OP_ADD_REG              // 8xy4 add vx, vy
	OP_SUB                  // 8xy5 sub vx, vy
	OP_SHR                  // 8xy6 shr vx, vy
	OP_SUBN                 // 8xy7 subn vx, vy
	OP_SHL                  // 8xyE shl vx, vy
	OP_SNE_REG              // 9xy0 sne vx, vy
	OP_LD_I                 // Annn ld i, nnn
	OP_JP_V0                // Bnnn jp v0, nnn
	OP_RND                  // Cxkk rnd vx, kk
	OP_DRW                  // Dxyn drw vx, vy, n
	OP_SKP                  // Ex9E skp vx
	OP_SKNP                 // ExA1 sknp vx
	OP_LD_VX_DT             // Fx07 ld vx, dt
	OP_LD_VX_K              // Fx0A ld vx, k
	OP_LD_DT_VX             // Fx15 ld dt, vx
	OP_LD_ST_VX             // Fx18 ld st, vx
	OP_ADD_I                // Fx1E add i, vx
	OP_LD_F                 // Fx29 ld f, vx
	OP_LD_B                 // Fx33 ld b, vx
	OP_LD_STORE             // Fx55 ld [i], vx
	OP_LD_LOAD              // Fx65 ld vx, [i]
)

var opName = [...]string{
	OP_UNKNOWN:  "????",
	OP_CLS:      "cls",
	OP_RET:      "ret",
	OP_JP:       "jp",
	OP_CALL:     "call",
	OP_SE_BYTE:  "se",
	OP_SNE_BYTE: "sne",
	OP_SE_REG:   "se",
	OP_LD_BYTE:  "ld",
	OP_ADD_BYTE: "add",
	OP_LD_REG:   "ld",
	OP_OR:       "or",
	OP_AND:      "and",
	OP_XOR:      "xor",
	OP_ADD_REG:  "add",
	OP_SUB:      "sub",
	OP_SHR:      "shr",
	OP_SUBN:     "subn",
	OP_SHL:      "shl",
	OP_SNE_REG:  "sne",
	OP_LD_I:     "ld",
	OP_JP_V0:    "jp",
	OP_RND:      "rnd",
	OP_DRW:      "drw",
	OP_SKP:      "skp",
	OP_SKNP:     "sknp",
	OP_LD_VX_DT: "ld",
	OP_LD_VX_K:  "ld",
	OP_LD_DT_VX: "ld",
	OP_LD_ST_VX: "ld",
	OP_ADD_I:    "add",
	OP_LD_F:     "ld",
	OP_LD_B:     "ld",
	OP_LD_STORE: "ld",
	OP_LD_LOAD:  "ld",
}

// String returns the mnemonic of the operation.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opName) {
		return opName[OP_UNKNOWN]
	}
	return opName[op]
}

// Code is a single 16-bit instruction word.
type Code uint16

// MakeCode assembles an instruction word from its nibble fields.
func MakeCode(family, x, y, n uint8) Code {
	return Code(uint16(family&0xf)<<12 | uint16(x&0xf)<<8 | uint16(y&0xf)<<4 | uint16(n&0xf))
}

// MakeCodeByte assembles an instruction word with an 8-bit literal.
func MakeCodeByte(family, x, kk uint8) Code {
	return Code(uint16(family&0xf)<<12 | uint16(x&0xf)<<8 | uint16(kk))
}

// MakeCodeAddr assembles an instruction word with a 12-bit address.
func MakeCodeAddr(family uint8, nnn uint16) Code {
	return Code(uint16(family&0xf)<<12 | (nnn & 0xfff))
}

// X returns the first register field.
func (code Code) X() uint8 {
	return uint8((code >> 8) & 0xf)
}

// Y returns the second register field.
func (code Code) Y() uint8 {
	return uint8((code >> 4) & 0xf)
}

// N returns the low nibble.
func (code Code) N() uint8 {
	return uint8(code & 0xf)
}

// KK returns the low byte.
func (code Code) KK() uint8 {
	return uint8(code & 0xff)
}

// NNN returns the 12-bit address field.
func (code Code) NNN() uint16 {
	return uint16(code & 0xfff)
}

// Op decodes the instruction word. The top nibble selects the family;
// families 0x0, 0x8, 0xE, and 0xF are further selected by the whole word,
// the low nibble, and the low byte respectively. Anything unrecognized
// decodes to OP_UNKNOWN.
func (code Code) Op() Op {
	switch code & 0xf000 {
	case 0x0000:
		switch code {
		case 0x00e0:
			return OP_CLS
		case 0x00ee:
			return OP_RET
		}
	case 0x1000:
		return OP_JP
	case 0x2000:
		return OP_CALL
	case 0x3000:
		return OP_SE_BYTE
	case 0x4000:
		return OP_SNE_BYTE
	case 0x5000:
		// The low nibble is not decoded.
		return OP_SE_REG
	case 0x6000:
		return OP_LD_BYTE
	case 0x7000:
		return OP_ADD_BYTE
	case 0x8000:
		switch code & 0xf00f {
		case 0x8000:
			return OP_LD_REG
		case 0x8001:
			return OP_OR
		case 0x8002:
			return OP_AND
		case 0x8003:
			return OP_XOR
		case 0x8004:
			return OP_ADD_REG
		case 0x8005:
			return OP_SUB
		case 0x8006:
			return OP_SHR
		case 0x8007:
			return OP_SUBN
		case 0x800e:
			return OP_SHL
		}
	case 0x9000:
		return OP_SNE_REG
	case 0xa000:
		return OP_LD_I
	case 0xb000:
		return OP_JP_V0
	case 0xc000:
		return OP_RND
	case 0xd000:
		return OP_DRW
	case 0xe000:
		switch code & 0xf0ff {
		case 0xe09e:
			return OP_SKP
		case 0xe0a1:
			return OP_SKNP
		}
	case 0xf000:
		switch code & 0xf0ff {
		case 0xf007:
			return OP_LD_VX_DT
		case 0xf00a:
			return OP_LD_VX_K
		case 0xf015:
			return OP_LD_DT_VX
		case 0xf018:
			return OP_LD_ST_VX
		case 0xf01e:
			return OP_ADD_I
		case 0xf029:
			return OP_LD_F
		case 0xf033:
			return OP_LD_B
		case 0xf055:
			return OP_LD_STORE
		case 0xf065:
			return OP_LD_LOAD
		}
	}

	return OP_UNKNOWN
}

// String returns the assembly language representation of this instruction.
// Unrecognized words are rendered as data so that the text reassembles to
// the same word.
func (code Code) String() (out string) {
	op := code.Op()
	x := code.X()
	y := code.Y()

	if (op == OP_SE_REG || op == OP_SNE_REG) && code.N() != 0 {
		op = OP_UNKNOWN
	}

	switch op {
	case OP_CLS, OP_RET:
		out = op.String()
	case OP_JP, OP_CALL, OP_LD_I:
		prefix := ""
		if op == OP_LD_I {
			prefix = "i, "
		}
		out = fmt.Sprintf("%v %v0x%03x", op, prefix, code.NNN())
	case OP_JP_V0:
		out = fmt.Sprintf("%v v0, 0x%03x", op, code.NNN())
	case OP_SE_BYTE, OP_SNE_BYTE, OP_LD_BYTE, OP_ADD_BYTE, OP_RND:
		out = fmt.Sprintf("%v v%x, 0x%02x", op, x, code.KK())
	case OP_SE_REG, OP_SNE_REG, OP_LD_REG, OP_OR, OP_AND, OP_XOR,
		OP_ADD_REG, OP_SUB, OP_SHR, OP_SUBN, OP_SHL:
		out = fmt.Sprintf("%v v%x, v%x", op, x, y)
	case OP_DRW:
		out = fmt.Sprintf("%v v%x, v%x, 0x%x", op, x, y, code.N())
	case OP_SKP, OP_SKNP:
		out = fmt.Sprintf("%v v%x", op, x)
	case OP_LD_VX_DT:
		out = fmt.Sprintf("%v v%x, dt", op, x)
	case OP_LD_VX_K:
		out = fmt.Sprintf("%v v%x, k", op, x)
	case OP_LD_DT_VX:
		out = fmt.Sprintf("%v dt, v%x", op, x)
	case OP_LD_ST_VX:
		out = fmt.Sprintf("%v st, v%x", op, x)
	case OP_ADD_I:
		out = fmt.Sprintf("%v i, v%x", op, x)
	case OP_LD_F:
		out = fmt.Sprintf("%v f, v%x", op, x)
	case OP_LD_B:
		out = fmt.Sprintf("%v b, v%x", op, x)
	case OP_LD_STORE:
		out = fmt.Sprintf("%v [i], v%x", op, x)
	case OP_LD_LOAD:
		out = fmt.Sprintf("%v v%x, [i]", op, x)
	default:
		out = fmt.Sprintf("dw 0x%04x", uint16(code))
	}

	return
}
