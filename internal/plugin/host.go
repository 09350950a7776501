package plugin

import "github.com/novafacing/catapult/internal/qargs"

// Args is the parsed plugin argument map, re-exported from qargs so
// instrumentation packages need only import plugin.
type Args = qargs.Args

// Info describes the target the host is about to emulate, as passed to
// install and then to every SetupFunc.
type Info struct {
	TargetName      string
	Version         string
	SystemEmulation bool
	NumVCPUs        uint32
}

// TranslationBlock is the host-agnostic view of one translation block handed
// to a TBTranslateFunc. Concrete hosts (see internal/qemuabi) populate this
// from their own ABI representation.
type TranslationBlock struct {
	VCPUIndex  uint32
	Instrs     []TBInstr
	NumInstrs  uint32
	FirstInstr uint32
}

// TBInstr is one instruction within a TranslationBlock, as exposed by the
// host at translation time.
type TBInstr struct {
	PC     uint64
	Opcode []byte
}

// Host is the set of registration entry points a concrete host ABI adapter
// implements. install.go calls these when draining the registry; dynamic.go
// calls RegisterInsnExec/RegisterMemAccess from inside a TBTranslateFunc.
//
// internal/plugin stays host-agnostic and unit-testable without cgo per
// spec.md §4.3; internal/qemuabi is the thin adapter translating the real C
// ABI into calls against this interface.
type Host interface {
	RegisterVCPUInit(id uint32, fn VCPUInitFunc) error
	RegisterVCPUExit(id uint32, fn VCPUExitFunc) error
	RegisterVCPUIdle(id uint32, fn VCPUIdleFunc) error
	RegisterVCPUResume(id uint32, fn VCPUResumeFunc) error
	RegisterTBTranslate(id uint32, fn TBTranslateFunc) error
	RegisterSyscall(id uint32, fn SyscallFunc) error
	RegisterSyscallRet(id uint32, fn SyscallRetFunc) error
	RegisterAtExit(id uint32, fn AtExitFunc) error
	RegisterFlush(id uint32, fn FlushFunc) error

	// RegisterTBExec binds a callback to fire each time tb executes,
	// carrying the opaque userData word the host retains for the
	// translated code's lifetime.
	RegisterTBExec(tb *TranslationBlock, userData uint64) error
	// RegisterInsnExec binds a callback to fire each time the instruction
	// at the given index within tb executes.
	RegisterInsnExec(tb *TranslationBlock, insnIdx uint32, userData uint64) error
	// RegisterMemAccess binds a callback to fire on every load/store
	// performed by the instruction at insnIdx within tb.
	RegisterMemAccess(tb *TranslationBlock, insnIdx uint32, userData uint64) error
}
