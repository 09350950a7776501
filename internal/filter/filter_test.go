package filter

import (
	"testing"

	"github.com/novafacing/catapult/internal/wire"
)

func TestFilterPredicateSelectsSyscall(t *testing.T) {
	s, err := Compile(`(function(event) { return event.kind === "syscall" && event.num === 1; })`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	pred := s.Predicate()

	if pred(wire.NewPCEvent(0x1000, false)) {
		t.Fatal("PC event should not pass the syscall-only filter")
	}
	if !pred(wire.NewSyscallEvent(1, 0, [8]uint64{})) {
		t.Fatal("syscall num=1 should pass the filter")
	}
	if pred(wire.NewSyscallEvent(2, 0, [8]uint64{})) {
		t.Fatal("syscall num=2 should not pass the filter")
	}
}

func TestFilterFailsOpenOnThrow(t *testing.T) {
	s, err := Compile(`(function(event) { throw new Error("boom"); })`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !s.Predicate()(wire.NewPCEvent(0, false)) {
		t.Fatal("a throwing filter should fail open (accept the event)")
	}
}

func TestCompileRejectsNonFunction(t *testing.T) {
	if _, err := Compile(`42`); err == nil {
		t.Fatal("Compile should reject a script that does not evaluate to a function")
	}
}
