// Package cpu implements the interpreter engine and assembler for the
// Ceres 8-bit virtual machine.
//
// The machine has 4KB of byte addressable memory with a hexadecimal glyph
// font at the bottom, sixteen 8-bit registers (v0-vf, with vf doubling as
// the carry/borrow/collision flag), a 16-bit address register (i), a 16
// entry call stack, a program counter that starts at PROGRAM_START, and
// delay and sound countdown timers. The Cpu fetches big-endian 16-bit
// instruction words, decodes them into an Op, and executes them against
// that state plus the Display and Keypad devices from package io.
//
// The assembler provides a small macro assembly language for the same
// instruction set, supporting labels, equates, macros, and compile-time
// expression evaluation.
package cpu
