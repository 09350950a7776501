// Package filter evaluates a small JavaScript predicate, via
// github.com/dop251/goja, against each decoded event before it reaches a
// consumer sink. This is the same embedding pattern the teacher repo
// reserves dop251/goja for (guest Lua/JS hooks), applied here to trace
// filtering rather than guest scripting (SPEC_FULL §3).
//
// The filter runs consumer-side, after decode, and is explicitly not a
// security boundary: it shapes which already-decoded events reach the
// sink, it does not parse untrusted wire bytes.
package filter

import (
	"fmt"
	"os"

	"github.com/dop251/goja"

	"github.com/novafacing/catapult/internal/wire"
)

// Script wraps a compiled goja predicate of the form:
//
//	(function(event) { return event.kind == "syscall" && event.num == 1; })
//
// evaluated once per decoded event. Script is not safe for concurrent use;
// callers needing concurrent filtering should construct one Script per
// goroutine (goja VMs are not thread-safe).
type Script struct {
	vm  *goja.Runtime
	fn  goja.Callable
}

// Load compiles the JS predicate found in path. The script must evaluate to
// a single function taking one "event" argument and returning a boolean.
func Load(path string) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("filter: read %s: %w", path, err)
	}
	return Compile(string(src))
}

// Compile compiles src directly; Load uses it, and tests call it with
// inline source.
func Compile(src string) (*Script, error) {
	vm := goja.New()
	v, err := vm.RunString(src)
	if err != nil {
		return nil, fmt.Errorf("filter: compile: %w", err)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, fmt.Errorf("filter: script must evaluate to a function")
	}
	return &Script{vm: vm, fn: fn}, nil
}

// Predicate returns a func(wire.Event) bool suitable for
// consumer.Consumer.SetFilter.
func (s *Script) Predicate() func(wire.Event) bool {
	return func(e wire.Event) bool {
		ok, err := s.Eval(e)
		if err != nil {
			// A throwing filter script must not silently swallow the
			// stream; fail open so a buggy filter degrades to "no
			// filtering" rather than dropping everything.
			return true
		}
		return ok
	}
}

// Eval runs the script against e and returns its boolean result.
func (s *Script) Eval(e wire.Event) (bool, error) {
	obj := eventToJSValue(s.vm, e)
	v, err := s.fn(goja.Undefined(), obj)
	if err != nil {
		return false, fmt.Errorf("filter: eval: %w", err)
	}
	return v.ToBoolean(), nil
}

func eventToJSValue(vm *goja.Runtime, e wire.Event) goja.Value {
	obj := vm.NewObject()
	set := func(k string, v any) { _ = obj.Set(k, v) }

	set("finished", e.IsFinished())

	switch e.Flags.Kind() {
	case wire.FlagPC:
		set("kind", "pc")
		set("pc", e.PC.PC)
		set("branch", e.PC.Branch)
	case wire.FlagInstrs:
		set("kind", "instruction")
		set("opcode_size", e.Instr.OpcodeSize)
	case wire.FlagReadsWrites:
		set("kind", "memory_access")
		set("pc", e.Mem.PC)
		set("addr", e.Mem.Addr)
		set("is_write", e.Mem.IsWrite)
	case wire.FlagSyscalls:
		set("kind", "syscall")
		set("num", e.Syscall.Num)
		set("rv", e.Syscall.RV)
		args := make([]any, len(e.Syscall.Args))
		for i, a := range e.Syscall.Args {
			args[i] = a
		}
		set("args", args)
	case wire.FlagLoad:
		set("kind", "load")
		set("min", e.Load.Min)
		set("max", e.Load.Max)
		set("entry", e.Load.Entry)
	default:
		set("kind", "unknown")
	}

	return obj
}
