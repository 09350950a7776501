// Package instrument wires internal/pluginstate, internal/producer and
// internal/wire together into the concrete PC / Instruction / MemoryAccess
// / Syscall callback bodies a host-callback descriptor ultimately points
// at. Grounded on the original Rust examples/jaivana/src/lib.rs:
// on_tb_trans, on_insn_exec, on_mem_access, on_syscall, on_syscall_ret.
package instrument

import (
	"github.com/novafacing/catapult/internal/pluginstate"
	"github.com/novafacing/catapult/internal/producer"
	"github.com/novafacing/catapult/internal/wire"
	"github.com/novafacing/catapult/internal/plugin"
)

// Instrumenter holds the references a set of dynamic callbacks close over:
// the runtime state and the producer handle events are submitted to.
type Instrumenter struct {
	State    *pluginstate.State
	Producer *producer.Handle
}

// New constructs an Instrumenter.
func New(state *pluginstate.State, prod *producer.Handle) *Instrumenter {
	return &Instrumenter{State: state, Producer: prod}
}

// OnTBTranslate implements the TB-translate host callback (spec.md §4.4's
// "Instruction-ring discipline"). For each instruction in tb where
// instrumentation is needed it builds a partial InsnEvent, stashes it in
// the ring under a fresh key, and registers an instruction-exec callback
// (and, if memory logging is enabled, a separate memory-access callback
// under a second fresh key) binding that key as the opaque user-data word.
func (in *Instrumenter) OnTBTranslate(host plugin.Host, tb *plugin.TranslationBlock) {
	opts := in.State.Opts
	if !opts.LogPC && !opts.LogOpcode && !opts.LogReads && !opts.LogWrites && !opts.LogBranches {
		return
	}

	n := len(tb.Instrs)
	for i, ins := range tb.Instrs {
		last := i == n-1

		// trace_branches without trace_pc: only the last instruction in
		// the TB gets a PC event (spec.md §6: "Emit only last-in-TB PC
		// events when trace_pc is off").
		wantsPC := opts.LogPC || (opts.LogBranches && last)
		wantsMem := opts.LogReads || opts.LogWrites
		if !wantsPC && !opts.LogOpcode && !wantsMem {
			continue
		}

		var opcode []byte
		if opts.LogOpcode {
			opcode = ins.Opcode
		}

		ev := pluginstate.InsnEvent{
			PC:      ins.PC,
			VCPUIdx: tb.VCPUIndex,
			HasVCPU: true,
			Opcode:  opcode,
			Branch:  last,
		}

		key := in.State.NextKey()
		in.State.PutInsn(key, ev)
		_ = plugin.RegisterInsnExec(host, tb, uint32(i), key)

		if opts.LogReads || opts.LogWrites {
			memKey := in.State.NextKey()
			in.State.PutInsn(memKey, ev)
			_ = plugin.RegisterMemAccess(host, tb, uint32(i), memKey)
		}
	}
}

// OnInsnExec implements the per-instruction execution callback: look up
// key, emit a PC (and optionally Instruction) event, remove the entry.
func (in *Instrumenter) OnInsnExec(key uint64) {
	ev, ok := in.State.TakeInsn(key)
	if !ok {
		return
	}

	if in.State.Opts.LogPC || (in.State.Opts.LogBranches && ev.Branch) {
		in.Producer.Submit(wire.NewPCEvent(ev.PC, ev.Branch))
	}
	if in.State.Opts.LogOpcode && len(ev.Opcode) > 0 {
		in.Producer.Submit(wire.NewInstrEvent(ev.Opcode))
	}
}

// OnMemAccess implements the per-instruction memory-access callback:
// synthesize a MemoryAccess event from the stored instruction event and the
// access metadata, emit, remove.
func (in *Instrumenter) OnMemAccess(key uint64, addr uint64, isWrite bool) {
	ev, ok := in.State.TakeInsn(key)
	if !ok {
		return
	}
	if (isWrite && !in.State.Opts.LogWrites) || (!isWrite && !in.State.Opts.LogReads) {
		return
	}
	in.Producer.Submit(wire.NewMemEvent(ev.PC, addr, isWrite))
}

// OnSyscall implements syscall-entry: record (num, args) keyed by
// (plugin-id, vcpu-idx) in the open-syscall map.
func (in *Instrumenter) OnSyscall(pluginID, vcpuIdx uint32, num int64, args [8]uint64) {
	if !in.State.Opts.LogSyscalls {
		return
	}
	key := pluginstate.SyscallKey{PluginID: pluginID, VCPUIdx: vcpuIdx}
	in.State.RecordSyscallEntry(key, num, args)
}

// OnSyscallRet implements syscall-return: pop the matching entry, fill in
// rv, emit. Per spec.md §8 ("Syscall pairing") no event is emitted if there
// is no matching entry.
func (in *Instrumenter) OnSyscallRet(pluginID, vcpuIdx uint32, rv int64) {
	if !in.State.Opts.LogSyscalls {
		return
	}
	key := pluginstate.SyscallKey{PluginID: pluginID, VCPUIdx: vcpuIdx}
	entry, ok := in.State.TakeSyscallReturn(key)
	if !ok {
		return
	}
	in.Producer.Submit(wire.NewSyscallEvent(entry.Num, rv, entry.Args))
}

// OnLoad implements a load event from the host's image-load notification
// (SPEC_FULL §4.2 supplement over the original jaivana example, which did
// not carry a Load kind).
func (in *Instrumenter) OnLoad(min, max, entry uint64, prot uint8) {
	in.Producer.Submit(wire.NewLoadEvent(min, max, entry, prot))
}
