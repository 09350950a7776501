package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrIncomplete is returned by Decode when buf holds fewer bytes than the
// frame flags declare are needed; the caller should read more and retry.
var ErrIncomplete = errors.New("wire: incomplete frame")

// ErrBadFlags is returned by Decode when the flags word carries none of the
// five event-kind bits. Per spec this is a protocol violation: the consumer
// must close the stream.
var ErrBadFlags = errors.New("wire: no event-kind bit set")

const flagsSize = 4

// frameSize returns the total encoded length of a frame carrying the given
// flags, or 0 if flags.Kind() is invalid.
func frameSize(f Flags) int {
	switch f.Kind() {
	case FlagPC:
		return flagsSize + 8 + 1 // pc:u64, branch:u8
	case FlagInstrs:
		return flagsSize + MaxOpcodeSize + 8 // opcode:[16]u8, opcode_size:u64
	case FlagReadsWrites:
		return flagsSize + 8 + 8 + 1 // pc:u64, addr:u64, is_write:u8
	case FlagSyscalls:
		return flagsSize + 8 + 8 + 8*NumSyscallArgs // num:i64, rv:i64, args:[8]u64
	case FlagLoad:
		return flagsSize + 8 + 8 + 8 + 1 // min:u64, max:u64, entry:u64, prot:u8
	default:
		if f.Has(FlagFinished) {
			return flagsSize
		}
		return 0
	}
}

// Encode appends the wire representation of e to buf and returns the result.
func Encode(buf []byte, e Event) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(e.Flags))

	switch e.Flags.Kind() {
	case FlagPC:
		buf = binary.BigEndian.AppendUint64(buf, e.PC.PC)
		buf = append(buf, boolByte(e.PC.Branch))
	case FlagInstrs:
		buf = append(buf, e.Instr.Opcode[:]...)
		buf = binary.BigEndian.AppendUint64(buf, uint64(e.Instr.OpcodeSize))
	case FlagReadsWrites:
		buf = binary.BigEndian.AppendUint64(buf, e.Mem.PC)
		buf = binary.BigEndian.AppendUint64(buf, e.Mem.Addr)
		buf = append(buf, boolByte(e.Mem.IsWrite))
	case FlagSyscalls:
		buf = binary.BigEndian.AppendUint64(buf, uint64(e.Syscall.Num))
		buf = binary.BigEndian.AppendUint64(buf, uint64(e.Syscall.RV))
		for _, a := range e.Syscall.Args {
			buf = binary.BigEndian.AppendUint64(buf, a)
		}
	case FlagLoad:
		buf = binary.BigEndian.AppendUint64(buf, e.Load.Min)
		buf = binary.BigEndian.AppendUint64(buf, e.Load.Max)
		buf = binary.BigEndian.AppendUint64(buf, e.Load.Entry)
		buf = append(buf, e.Load.Prot)
	}

	return buf
}

// Decode consumes one frame from the front of buf. On success it returns the
// decoded event and the number of bytes consumed. If buf is shorter than the
// frame the flags declare, it returns ErrIncomplete and consumes nothing.
func Decode(buf []byte) (Event, int, error) {
	if len(buf) < flagsSize {
		return Event{}, 0, ErrIncomplete
	}
	flags := Flags(binary.BigEndian.Uint32(buf))

	if flags.Has(FlagFinished) && flags.Kind() == 0 {
		return Finished(), flagsSize, nil
	}

	size := frameSize(flags)
	if size == 0 {
		return Event{}, 0, fmt.Errorf("%w: flags=%#x", ErrBadFlags, uint32(flags))
	}
	if len(buf) < size {
		return Event{}, 0, ErrIncomplete
	}

	e := Event{Flags: flags}
	body := buf[flagsSize:size]

	switch flags.Kind() {
	case FlagPC:
		e.PC.PC = binary.BigEndian.Uint64(body[0:8])
		e.PC.Branch = body[8] != 0
	case FlagInstrs:
		copy(e.Instr.Opcode[:], body[0:MaxOpcodeSize])
		e.Instr.OpcodeSize = uint8(binary.BigEndian.Uint64(body[MaxOpcodeSize : MaxOpcodeSize+8]))
	case FlagReadsWrites:
		e.Mem.PC = binary.BigEndian.Uint64(body[0:8])
		e.Mem.Addr = binary.BigEndian.Uint64(body[8:16])
		e.Mem.IsWrite = body[16] != 0
	case FlagSyscalls:
		e.Syscall.Num = int64(binary.BigEndian.Uint64(body[0:8]))
		e.Syscall.RV = int64(binary.BigEndian.Uint64(body[8:16]))
		for i := 0; i < NumSyscallArgs; i++ {
			off := 16 + i*8
			e.Syscall.Args[i] = binary.BigEndian.Uint64(body[off : off+8])
		}
	case FlagLoad:
		e.Load.Min = binary.BigEndian.Uint64(body[0:8])
		e.Load.Max = binary.BigEndian.Uint64(body[8:16])
		e.Load.Entry = binary.BigEndian.Uint64(body[16:24])
		e.Load.Prot = body[24]
	}

	return e, size, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
