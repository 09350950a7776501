package wire

import (
	"reflect"
	"testing"
)

func sampleEvents() []Event {
	return []Event{
		NewPCEvent(0x400080, false),
		NewPCEvent(0x400084, true),
		NewInstrEvent([]byte{0x48, 0x89, 0x18}),
		NewMemEvent(0x400080, 0x7ffff000, true),
		NewSyscallEvent(1, 2, [NumSyscallArgs]uint64{1, 0, 2}),
		NewLoadEvent(0x555555554000, 0x555555558000, 0x555555554520, 5),
		Finished(),
	}
}

func TestCodecRoundTrip(t *testing.T) {
	for _, e := range sampleEvents() {
		buf := Encode(nil, e)
		got, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("decode(%+v): %v", e, err)
		}
		if n != len(buf) {
			t.Fatalf("decode consumed %d, want %d", n, len(buf))
		}
		if !reflect.DeepEqual(got, e) {
			t.Fatalf("round-trip mismatch: got %+v, want %+v", got, e)
		}
	}
}

func TestCodecFrameSizeDeterministic(t *testing.T) {
	sizes := map[Flags]int{}
	for _, e := range sampleEvents() {
		buf := Encode(nil, e)
		k := e.Flags.Kind()
		if prev, ok := sizes[k]; ok && prev != len(buf) {
			t.Fatalf("kind %#x: non-deterministic frame size %d vs %d", k, prev, len(buf))
		}
		sizes[k] = len(buf)
	}
}

func TestCodecFrameSelfSufficiency(t *testing.T) {
	events := sampleEvents()
	var buf []byte
	for _, e := range events {
		buf = Encode(buf, e)
	}

	var got []Event
	for len(buf) > 0 {
		e, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("decode at offset %d: %v", len(buf), err)
		}
		got = append(got, e)
		buf = buf[n:]
	}

	if !reflect.DeepEqual(got, events) {
		t.Fatalf("sequence mismatch: got %+v, want %+v", got, events)
	}
}

func TestCodecIncomplete(t *testing.T) {
	full := Encode(nil, NewPCEvent(0x1000, false))
	for i := 0; i < len(full); i++ {
		if _, _, err := Decode(full[:i]); err != ErrIncomplete {
			t.Fatalf("Decode(%d bytes): got %v, want ErrIncomplete", i, err)
		}
	}
}

func TestCodecBadFlags(t *testing.T) {
	buf := Encode(nil, NewPCEvent(0, false))
	// Clear the PC bit, leaving no kind bit and no FINISHED bit set.
	buf[3] &^= byte(FlagPC)
	if _, _, err := Decode(buf); err == nil {
		t.Fatal("Decode with no kind bit: want error, got nil")
	}
}

func TestCodecOpcodeTruncation(t *testing.T) {
	long := make([]byte, MaxOpcodeSize+8)
	for i := range long {
		long[i] = byte(i)
	}
	e := NewInstrEvent(long)
	if e.Instr.OpcodeSize != MaxOpcodeSize {
		t.Fatalf("OpcodeSize = %d, want %d", e.Instr.OpcodeSize, MaxOpcodeSize)
	}
}

func TestTLVRoundTrip(t *testing.T) {
	for _, e := range sampleEvents() {
		buf := EncodeTLV(nil, e)
		got, n, err := DecodeTLV(buf)
		if err != nil {
			t.Fatalf("DecodeTLV(%+v): %v", e, err)
		}
		if n != len(buf) {
			t.Fatalf("DecodeTLV consumed %d, want %d", n, len(buf))
		}
		if e.Flags.Kind() == FlagReadsWrites {
			// The TLV schema shares field 2 between PC.PC and Mem.PC; only
			// the kind-appropriate field is meaningful after decode.
			got.PC = PC{}
		} else if e.Flags.Kind() == FlagPC {
			got.Mem.PC = 0
		}
		if !reflect.DeepEqual(got, e) {
			t.Fatalf("TLV round-trip mismatch: got %+v, want %+v", got, e)
		}
	}
}

func TestTLVFrameSelfSufficiency(t *testing.T) {
	events := sampleEvents()
	var buf []byte
	for _, e := range events {
		buf = EncodeTLV(buf, e)
	}

	count := 0
	for len(buf) > 0 {
		_, n, err := DecodeTLV(buf)
		if err != nil {
			t.Fatalf("DecodeTLV at offset %d: %v", len(buf), err)
		}
		buf = buf[n:]
		count++
	}
	if count != len(events) {
		t.Fatalf("decoded %d frames, want %d", count, len(events))
	}
}
