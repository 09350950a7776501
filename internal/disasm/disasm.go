// Package disasm provides best-effort, consumer-side disassembly of
// captured opcode bytes. spec.md §4.2 is explicit that "disassembly is
// deliberately deferred to consumers"; this package is that deferred
// consumer, grounded on galago's own disasm() in cmd/galago/main.go which
// uses golang.org/x/arch/arm64/arm64asm the same way.
package disasm

import (
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// Arch selects the instruction set to decode opcode bytes as.
type Arch int

const (
	ArchX86 Arch = iota
	ArchARM64
)

// Text renders a best-effort disassembly of opcode for arch, falling back
// to a raw-word/raw-bytes rendering if decoding fails (ARM64 input shorter
// than four bytes renders as "???") — a Syscall or
// MemoryAccess event still has something human-readable to show even when
// the opcode capture is truncated or the architecture guess is wrong.
func Text(arch Arch, opcode []byte) string {
	switch arch {
	case ArchARM64:
		return disasmARM64(opcode)
	default:
		return disasmX86(opcode)
	}
}

func disasmARM64(opcode []byte) string {
	if len(opcode) < 4 {
		return "???"
	}
	inst, err := arm64asm.Decode(opcode)
	if err != nil {
		return fmt.Sprintf(".word %#08x", uint32(opcode[0])|uint32(opcode[1])<<8|uint32(opcode[2])<<16|uint32(opcode[3])<<24)
	}
	return inst.String()
}

func disasmX86(opcode []byte) string {
	inst, err := x86asm.Decode(opcode, 64)
	if err != nil {
		return fmt.Sprintf("(bad) % x", opcode)
	}
	return x86asm.GNUSyntax(inst, 0, nil)
}
