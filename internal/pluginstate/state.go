// Package pluginstate holds the single process-wide mutable state object
// described in spec.md §4.4: the parsed options, per-event-kind enable
// bits, the open-syscall map, and the instruction ring, all behind one
// mutex. Every host-callback body acquires the mutex, does bounded work,
// and releases before any enqueue to the producer.
//
// Directly grounded on the original Rust implementation's
// examples/jaivana/src/lib.rs Context struct and its lazy_static
// Mutex<Context> global.
package pluginstate

import "sync"

// Options are the per-event-kind enable bits derived from the parsed plugin
// arguments (spec.md §6).
type Options struct {
	LogPC       bool
	LogOpcode   bool
	LogReads    bool
	LogWrites   bool
	LogSyscalls bool
	LogBranches bool
}

// SyscallKey identifies one in-flight syscall: the plugin instance and the
// vCPU that entered it.
type SyscallKey struct {
	PluginID uint32
	VCPUIdx  uint32
}

// OpenSyscall is what was recorded on syscall-entry, awaiting the matching
// syscall-return.
type OpenSyscall struct {
	Num  int64
	Args [8]uint64
}

// State is the single locked runtime object. The zero value is not usable;
// construct with New.
type State struct {
	mu sync.Mutex

	Opts Options

	openSyscalls map[SyscallKey]OpenSyscall
	ring         *Ring
}

// New constructs a State with the given options and an instruction ring of
// the given window size (spec.md §3: default W = 1024).
func New(opts Options, window uint64) *State {
	return &State{
		Opts:         opts,
		openSyscalls: make(map[SyscallKey]OpenSyscall),
		ring:         NewRing(window),
	}
}

// RecordSyscallEntry stores num/args for key, to be consumed by
// TakeSyscallReturn. Called under the lock from the syscall-entry host
// callback.
func (s *State) RecordSyscallEntry(key SyscallKey, num int64, args [8]uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openSyscalls[key] = OpenSyscall{Num: num, Args: args}
}

// TakeSyscallReturn pops and returns the entry recorded for key, if any.
// Called under the lock from the syscall-return host callback; per spec.md
// §8 ("Syscall pairing") no Syscall event is ever emitted without a
// matching entry, so callers must check ok.
func (s *State) TakeSyscallReturn(key SyscallKey) (OpenSyscall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.openSyscalls[key]
	if ok {
		delete(s.openSyscalls, key)
	}
	return entry, ok
}

// NextKey issues a fresh ring key, evicting the entry W issues behind it.
// Equivalent to jaivana's Context::ikey().
func (s *State) NextKey() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.nextKey()
}

// PutInsn inserts an in-progress instruction event at key.
func (s *State) PutInsn(key uint64, e InsnEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring.put(key, e)
}

// TakeInsn looks up and removes the instruction event at key.
func (s *State) TakeInsn(key uint64) (InsnEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.take(key)
}

// RingLen reports the current number of live ring entries. Exposed for the
// "Ring bound" testable property (spec.md §8).
func (s *State) RingLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.len()
}
