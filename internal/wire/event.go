// Package wire defines the event taxonomy that flows from the plugin's
// instrumentation callbacks to the out-of-process consumer, and the codecs
// used to serialize it across the local socket boundary.
package wire

// MaxOpcodeSize is the largest opcode the Instruction event can carry.
// x86_64 instructions top out at 15 bytes; 16 leaves one byte of slack for
// any architecture the plugin might one day target.
const MaxOpcodeSize = 16

// NumSyscallArgs is the number of syscall argument registers the host
// exposes to the plugin on syscall entry.
const NumSyscallArgs = 8

// Flags is the leading word of every frame. Exactly one of the kind bits
// (PC, Instrs, ReadsWrites, Syscalls, Load) is set on any frame actually
// emitted; Branches/Executed/Finished are modifiers, not kinds.
type Flags uint32

const (
	FlagPC          Flags = 1 << 0
	FlagReadsWrites Flags = 1 << 1
	FlagInstrs      Flags = 1 << 3
	FlagSyscalls    Flags = 1 << 4
	FlagBranches    Flags = 1 << 5
	FlagExecuted    Flags = 1 << 6 // internal "has executed" marker
	FlagFinished    Flags = 1 << 7 // last frame before the consumer should drain and exit
	FlagLoad        Flags = 1 << 8
)

// kindMask isolates the bits that identify which variant a frame carries.
const kindMask = FlagPC | FlagReadsWrites | FlagInstrs | FlagSyscalls | FlagLoad

// Kind returns the single kind bit set in flags, or 0 if none (or more than
// one) is set.
func (f Flags) Kind() Flags {
	k := f & kindMask
	if k == 0 || k&(k-1) != 0 {
		return 0
	}
	return k
}

// Has reports whether f has all of the given bits set.
func (f Flags) Has(bits Flags) bool {
	return f&bits == bits
}

// PC carries the program counter of an executed instruction.
type PC struct {
	PC     uint64
	Branch bool // true if this is the last instruction in its translation block
}

// Instr carries the raw opcode bytes captured at translation time.
// Disassembly is deliberately deferred to consumers.
type Instr struct {
	Opcode     [MaxOpcodeSize]byte
	OpcodeSize uint8
}

// MemAccess carries the virtual address of an executed load or store.
type MemAccess struct {
	PC      uint64
	Addr    uint64
	IsWrite bool
}

// Syscall carries a syscall's number, arguments, and return value. It is
// emitted on syscall-return, once the return value is known.
type Syscall struct {
	Num  int64
	RV   int64
	Args [NumSyscallArgs]uint64
}

// Load describes a program or library memory region load. Entry is nonzero
// only for the main image.
type Load struct {
	Min   uint64
	Max   uint64
	Entry uint64
	Prot  uint8
}

// Event is the decoded, in-memory form of one wire frame: exactly one of
// the typed fields below is meaningful, selected by Flags.Kind().
type Event struct {
	Flags Flags

	PC      PC
	Instr   Instr
	Mem     MemAccess
	Syscall Syscall
	Load    Load
}

// NewPCEvent builds a PC-kind event.
func NewPCEvent(pc uint64, branch bool) Event {
	f := FlagPC
	if branch {
		f |= FlagBranches
	}
	return Event{Flags: f, PC: PC{PC: pc, Branch: branch}}
}

// NewInstrEvent builds an Instruction-kind event. opcode is truncated to
// MaxOpcodeSize.
func NewInstrEvent(opcode []byte) Event {
	var in Instr
	n := len(opcode)
	if n > MaxOpcodeSize {
		n = MaxOpcodeSize
	}
	copy(in.Opcode[:], opcode[:n])
	in.OpcodeSize = uint8(n)
	return Event{Flags: FlagInstrs, Instr: in}
}

// NewMemEvent builds a MemoryAccess-kind event.
func NewMemEvent(pc, addr uint64, isWrite bool) Event {
	return Event{Flags: FlagReadsWrites, Mem: MemAccess{PC: pc, Addr: addr, IsWrite: isWrite}}
}

// NewSyscallEvent builds a Syscall-kind event.
func NewSyscallEvent(num, rv int64, args [NumSyscallArgs]uint64) Event {
	return Event{Flags: FlagSyscalls, Syscall: Syscall{Num: num, RV: rv, Args: args}}
}

// NewLoadEvent builds a Load-kind event.
func NewLoadEvent(min, max, entry uint64, prot uint8) Event {
	return Event{Flags: FlagLoad, Load: Load{Min: min, Max: max, Entry: entry, Prot: prot}}
}

// Finished returns the sentinel frame the producer emits on shutdown: no
// kind bit set, FINISHED set. The consumer stops reading the connection it
// arrives on.
func Finished() Event {
	return Event{Flags: FlagFinished}
}

// IsFinished reports whether e is the FINISHED sentinel.
func (e Event) IsFinished() bool {
	return e.Flags.Has(FlagFinished)
}
