package pluginstate

import "testing"

func TestRingBound(t *testing.T) {
	const window = 16
	r := NewRing(window)
	for i := 0; i < 10*window; i++ {
		k := r.nextKey()
		r.put(k, InsnEvent{PC: k})
		if r.len() > window {
			t.Fatalf("after %d issues, ring holds %d entries, want <= %d", i+1, r.len(), window)
		}
	}
}

func TestRingEvictsExactlyWindowBehind(t *testing.T) {
	const window = 4
	r := NewRing(window)
	var keys []uint64
	for i := 0; i < 10; i++ {
		k := r.nextKey()
		r.put(k, InsnEvent{PC: k})
		keys = append(keys, k)
	}
	// The entry issued window-1 keys ago should have survived; the one
	// issued window keys ago should have just been evicted.
	if _, ok := r.take(keys[len(keys)-1-window]); ok {
		t.Fatal("entry at exactly key-window should have been evicted")
	}
	if _, ok := r.take(keys[len(keys)-window]); !ok {
		t.Fatal("entry at key-window+1 should still be present")
	}
}

func TestSyscallPairing(t *testing.T) {
	s := New(Options{LogSyscalls: true}, 1024)
	key := SyscallKey{PluginID: 1, VCPUIdx: 0}

	if _, ok := s.TakeSyscallReturn(key); ok {
		t.Fatal("no Syscall event should be emittable without a matching entry")
	}

	args := [8]uint64{1, 0, 2}
	s.RecordSyscallEntry(key, 1, args)

	entry, ok := s.TakeSyscallReturn(key)
	if !ok {
		t.Fatal("expected a matching entry after RecordSyscallEntry")
	}
	if entry.Num != 1 || entry.Args != args {
		t.Fatalf("entry = %+v, want num=1 args=%v", entry, args)
	}

	if _, ok := s.TakeSyscallReturn(key); ok {
		t.Fatal("entry should be consumed exactly once")
	}
}

func TestInsnEventRoundTrip(t *testing.T) {
	s := New(Options{}, 1024)
	k := s.NextKey()
	s.PutInsn(k, InsnEvent{PC: 0x1000, Branch: true})

	e, ok := s.TakeInsn(k)
	if !ok || e.PC != 0x1000 || !e.Branch {
		t.Fatalf("TakeInsn = %+v, %v, want PC=0x1000 Branch=true", e, ok)
	}
	if _, ok := s.TakeInsn(k); ok {
		t.Fatal("TakeInsn should remove the entry")
	}
}
