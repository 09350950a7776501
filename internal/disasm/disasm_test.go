package disasm

import (
	"strings"
	"testing"
)

func TestDisasmX86MovRaxRbx(t *testing.T) {
	// mov [rax], rbx -> 48 89 18
	got := Text(ArchX86, []byte{0x48, 0x89, 0x18})
	if strings.Contains(got, "(bad)") {
		t.Fatalf("Text(x86, mov) = %q, want a decoded instruction", got)
	}
}

func TestDisasmFallsBackOnTruncatedOpcode(t *testing.T) {
	got := Text(ArchARM64, []byte{0x01})
	if got != "???" {
		t.Fatalf("Text(arm64, short) = %q, want ???", got)
	}
}
