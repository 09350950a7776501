// Package plugin is the host-agnostic plugin framework: a compile-time
// callback registry populated by init() functions in instrumentation
// packages, an installation entry point that drains it against a Host, and
// dynamic per-translation-block / per-instruction / per-memory-access
// registration.
//
// Mirroring galago's internal/stubs self-registering registry, catapult
// resolves spec.md §9's "compile-time, implicit collection" requirement
// with init()-time registration against a package-level DefaultRegistry
// rather than linker-section aggregation.
package plugin

import "sync"

// HookTag identifies which host registrar a HostCallback binds to. The tags
// correspond one-to-one with the host's lifecycle hooks.
type HookTag int

const (
	HookVCPUInit HookTag = iota
	HookVCPUExit
	HookVCPUIdle
	HookVCPUResume
	HookTBTranslate
	HookSyscall
	HookSyscallRet
	HookAtExit
	HookFlush
)

// SetupFunc runs once, before any instrumentation callback is bound. info is
// the host-provided target description (see Info); args is the parsed
// plugin argument map.
type SetupFunc func(info *Info, args *Args)

// HostCallback pairs a function pointer with the hook it should be bound to.
type HostCallback struct {
	Tag HookTag
	Fn  any // concrete signature depends on Tag; see the Host* function types below
}

// Host-callback function signatures, one per HookTag. install.go type-asserts
// HostCallback.Fn to the signature matching its Tag before binding.
type (
	VCPUInitFunc     func(id uint32, vcpuIdx uint32)
	VCPUExitFunc     func(id uint32, vcpuIdx uint32)
	VCPUIdleFunc     func(id uint32, vcpuIdx uint32)
	VCPUResumeFunc   func(id uint32, vcpuIdx uint32)
	TBTranslateFunc  func(id uint32, tb *TranslationBlock)
	SyscallFunc      func(id uint32, vcpuIdx uint32, num int64, args [8]uint64)
	SyscallRetFunc   func(id uint32, vcpuIdx uint32, num int64, rv int64)
	AtExitFunc       func(id uint32)
	FlushFunc        func(id uint32)
)

// Registry collects setup and host-callback descriptors declared across the
// program via init(). It is safe for concurrent registration (package
// init() order is otherwise undefined) and for concurrent iteration during
// install.
type Registry struct {
	mu      sync.Mutex
	setups  []SetupFunc
	hostCBs []HostCallback
}

// DefaultRegistry is the registry instrumentation packages register against
// from their init() functions, and the one Install drains.
var DefaultRegistry = NewRegistry()

// NewRegistry constructs an empty Registry. Production code uses
// DefaultRegistry; tests construct private instances to avoid cross-test
// interference.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterSetup adds a setup descriptor. Called from init().
func (r *Registry) RegisterSetup(f SetupFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setups = append(r.setups, f)
}

// RegisterHostCallback adds a host-callback descriptor. Called from init().
func (r *Registry) RegisterHostCallback(cb HostCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hostCBs = append(r.hostCBs, cb)
}

// Setups returns a snapshot of the registered setup descriptors.
func (r *Registry) Setups() []SetupFunc {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SetupFunc, len(r.setups))
	copy(out, r.setups)
	return out
}

// HostCallbacks returns a snapshot of the registered host-callback
// descriptors.
func (r *Registry) HostCallbacks() []HostCallback {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HostCallback, len(r.hostCBs))
	copy(out, r.hostCBs)
	return out
}

// RegisterSetup registers f on DefaultRegistry. Package-level convenience
// wrapper for init() call sites, mirroring galago's package-level Register.
func RegisterSetup(f SetupFunc) { DefaultRegistry.RegisterSetup(f) }

// RegisterHostCallback registers cb on DefaultRegistry.
func RegisterHostCallback(cb HostCallback) { DefaultRegistry.RegisterHostCallback(cb) }
