package consumer

import (
	"encoding/hex"

	"github.com/novafacing/catapult/internal/wire"
)

// jsonEvent is the human/tool-facing rendering of a decoded wire.Event.
// Only the fields relevant to e.Flags.Kind() are populated; this is the
// consumer's own concern (spec.md §1 explicitly leaves sink format out of
// core scope), not part of the wire contract itself.
type jsonEvent struct {
	Kind   string `json:"kind"`
	PC     *uint64 `json:"pc,omitempty"`
	Branch *bool   `json:"branch,omitempty"`

	Opcode     string `json:"opcode,omitempty"`
	OpcodeSize *uint8 `json:"opcode_size,omitempty"`

	Addr    *uint64 `json:"addr,omitempty"`
	IsWrite *bool   `json:"is_write,omitempty"`

	Num  *int64    `json:"num,omitempty"`
	RV   *int64    `json:"rv,omitempty"`
	Args []uint64  `json:"args,omitempty"`

	Min   *uint64 `json:"min,omitempty"`
	Max   *uint64 `json:"max,omitempty"`
	Entry *uint64 `json:"entry,omitempty"`
	Prot  *uint8  `json:"prot,omitempty"`

	Finished bool `json:"finished,omitempty"`
}

func toJSONEvent(e wire.Event) jsonEvent {
	if e.IsFinished() {
		return jsonEvent{Kind: "finished", Finished: true}
	}

	switch e.Flags.Kind() {
	case wire.FlagPC:
		return jsonEvent{Kind: "pc", PC: u64p(e.PC.PC), Branch: boolp(e.PC.Branch)}
	case wire.FlagInstrs:
		op := e.Instr.Opcode[:e.Instr.OpcodeSize]
		return jsonEvent{Kind: "instruction", Opcode: hex.EncodeToString(op), OpcodeSize: u8p(e.Instr.OpcodeSize)}
	case wire.FlagReadsWrites:
		return jsonEvent{Kind: "memory_access", PC: u64p(e.Mem.PC), Addr: u64p(e.Mem.Addr), IsWrite: boolp(e.Mem.IsWrite)}
	case wire.FlagSyscalls:
		args := make([]uint64, len(e.Syscall.Args))
		copy(args, e.Syscall.Args[:])
		return jsonEvent{Kind: "syscall", Num: i64p(e.Syscall.Num), RV: i64p(e.Syscall.RV), Args: args}
	case wire.FlagLoad:
		return jsonEvent{Kind: "load", Min: u64p(e.Load.Min), Max: u64p(e.Load.Max), Entry: u64p(e.Load.Entry), Prot: u8p(e.Load.Prot)}
	default:
		return jsonEvent{Kind: "unknown"}
	}
}

func u64p(v uint64) *uint64 { return &v }
func u8p(v uint8) *uint8    { return &v }
func i64p(v int64) *int64   { return &v }
func boolp(v bool) *bool    { return &v }
