package wire

import "google.golang.org/protobuf/encoding/protowire"

// Magic bytes disambiguating the two framings a consumer may see on the
// wire. A fixed-layout frame never legally starts with either byte as its
// high flags byte, since no defined kind occupies bits 24-31; TLV frames are
// prefixed explicitly so the two schemes can share a socket without
// negotiation. Encode never writes MagicFixed: a fixed-layout frame begins
// directly with its flags word.
const (
	MagicFixed byte = 0xC7
	MagicTLV   byte = 0x54
)

// protowire field numbers for the TLV encoding. One field per struct member
// across all variants; unused fields for a given kind are simply omitted.
const (
	fieldFlags   protowire.Number = 1
	fieldPC      protowire.Number = 2
	fieldBranch  protowire.Number = 3
	fieldOpcode  protowire.Number = 4
	fieldOpSize  protowire.Number = 5
	fieldAddr    protowire.Number = 6
	fieldIsWrite protowire.Number = 7
	fieldNum     protowire.Number = 8
	fieldRV      protowire.Number = 9
	fieldArgs    protowire.Number = 10
	fieldMin     protowire.Number = 11
	fieldMax     protowire.Number = 12
	fieldEntry   protowire.Number = 13
	fieldProt    protowire.Number = 14
)

// EncodeTLV appends a self-describing, length-prefixed TLV frame (magic byte
// + protowire-encoded record) for e to buf.
func EncodeTLV(buf []byte, e Event) []byte {
	var rec []byte
	rec = protowire.AppendTag(rec, fieldFlags, protowire.VarintType)
	rec = protowire.AppendVarint(rec, uint64(e.Flags))

	switch e.Flags.Kind() {
	case FlagPC:
		rec = protowire.AppendTag(rec, fieldPC, protowire.VarintType)
		rec = protowire.AppendVarint(rec, e.PC.PC)
		rec = protowire.AppendTag(rec, fieldBranch, protowire.VarintType)
		rec = protowire.AppendVarint(rec, boolVarint(e.PC.Branch))
	case FlagInstrs:
		rec = protowire.AppendTag(rec, fieldOpcode, protowire.BytesType)
		rec = protowire.AppendBytes(rec, e.Instr.Opcode[:e.Instr.OpcodeSize])
		rec = protowire.AppendTag(rec, fieldOpSize, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(e.Instr.OpcodeSize))
	case FlagReadsWrites:
		rec = protowire.AppendTag(rec, fieldPC, protowire.VarintType)
		rec = protowire.AppendVarint(rec, e.Mem.PC)
		rec = protowire.AppendTag(rec, fieldAddr, protowire.VarintType)
		rec = protowire.AppendVarint(rec, e.Mem.Addr)
		rec = protowire.AppendTag(rec, fieldIsWrite, protowire.VarintType)
		rec = protowire.AppendVarint(rec, boolVarint(e.Mem.IsWrite))
	case FlagSyscalls:
		rec = protowire.AppendTag(rec, fieldNum, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(e.Syscall.Num))
		rec = protowire.AppendTag(rec, fieldRV, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(e.Syscall.RV))
		for _, a := range e.Syscall.Args {
			rec = protowire.AppendTag(rec, fieldArgs, protowire.VarintType)
			rec = protowire.AppendVarint(rec, a)
		}
	case FlagLoad:
		rec = protowire.AppendTag(rec, fieldMin, protowire.VarintType)
		rec = protowire.AppendVarint(rec, e.Load.Min)
		rec = protowire.AppendTag(rec, fieldMax, protowire.VarintType)
		rec = protowire.AppendVarint(rec, e.Load.Max)
		rec = protowire.AppendTag(rec, fieldEntry, protowire.VarintType)
		rec = protowire.AppendVarint(rec, e.Load.Entry)
		rec = protowire.AppendTag(rec, fieldProt, protowire.VarintType)
		rec = protowire.AppendVarint(rec, uint64(e.Load.Prot))
	}

	buf = append(buf, MagicTLV)
	buf = protowire.AppendVarint(buf, uint64(len(rec)))
	buf = append(buf, rec...)
	return buf
}

// DecodeTLV consumes one TLV frame, starting with its magic byte, from the
// front of buf, returning the decoded event and bytes consumed including the
// magic byte.
func DecodeTLV(buf []byte) (Event, int, error) {
	if len(buf) < 1 || buf[0] != MagicTLV {
		return Event{}, 0, ErrIncomplete
	}
	length, n := protowire.ConsumeVarint(buf[1:])
	if n < 0 {
		return Event{}, 0, ErrIncomplete
	}
	hdr := 1 + n
	if len(buf) < hdr+int(length) {
		return Event{}, 0, ErrIncomplete
	}
	rec := buf[hdr : hdr+int(length)]

	var e Event
	var args []uint64
	for len(rec) > 0 {
		num, typ, tn := protowire.ConsumeTag(rec)
		if tn < 0 {
			return Event{}, 0, ErrBadFlags
		}
		rec = rec[tn:]

		switch num {
		case fieldFlags:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Flags = Flags(v)
			rec = rec[vn:]
		case fieldOpcode:
			v, vn := protowire.ConsumeBytes(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			copy(e.Instr.Opcode[:], v)
			rec = rec[vn:]
		case fieldOpSize:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Instr.OpcodeSize = uint8(v)
			rec = rec[vn:]
		case fieldPC:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.PC.PC = v
			e.Mem.PC = v
			rec = rec[vn:]
		case fieldBranch:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.PC.Branch = v != 0
			rec = rec[vn:]
		case fieldAddr:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Mem.Addr = v
			rec = rec[vn:]
		case fieldIsWrite:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Mem.IsWrite = v != 0
			rec = rec[vn:]
		case fieldNum:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Syscall.Num = int64(v)
			rec = rec[vn:]
		case fieldRV:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Syscall.RV = int64(v)
			rec = rec[vn:]
		case fieldArgs:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			args = append(args, v)
			rec = rec[vn:]
		case fieldMin:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Load.Min = v
			rec = rec[vn:]
		case fieldMax:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Load.Max = v
			rec = rec[vn:]
		case fieldEntry:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Load.Entry = v
			rec = rec[vn:]
		case fieldProt:
			v, vn := protowire.ConsumeVarint(rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			e.Load.Prot = uint8(v)
			rec = rec[vn:]
		default:
			vn := protowire.ConsumeFieldValue(num, typ, rec)
			if vn < 0 {
				return Event{}, 0, ErrBadFlags
			}
			rec = rec[vn:]
		}
	}

	for i := 0; i < NumSyscallArgs && i < len(args); i++ {
		e.Syscall.Args[i] = args[i]
	}

	if !e.Flags.Has(FlagFinished) && e.Flags.Kind() == 0 {
		return Event{}, 0, ErrBadFlags
	}

	return e, hdr + int(length), nil
}

func boolVarint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
