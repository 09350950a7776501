package producer

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/novafacing/catapult/internal/wire"
)

func TestProducerBatchingAndOrdering(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "catapult.sock")

	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := Setup(ctx, sock, 4, WireFixed)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	conn := <-accepted
	defer conn.Close()

	const n = 10
	for i := 0; i < n; i++ {
		h.Submit(wire.NewPCEvent(uint64(0x1000+i), false))
	}
	h.Shutdown()

	var buf []byte
	tmp := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		k, err := conn.Read(tmp)
		if k > 0 {
			buf = append(buf, tmp[:k]...)
		}
		if err != nil {
			break
		}
		// Stop once we've consumed the FINISHED sentinel that follows the
		// n PC events.
		if decoded, ok := tryDecodeAll(buf, n+1); ok {
			checkOrdering(t, decoded)
			return
		}
	}
	t.Fatal("did not observe all events before the read loop ended")
}

func tryDecodeAll(buf []byte, want int) ([]wire.Event, bool) {
	var out []wire.Event
	rest := buf
	for len(rest) > 0 {
		e, n, err := wire.Decode(rest)
		if err != nil {
			return nil, false
		}
		out = append(out, e)
		rest = rest[n:]
	}
	return out, len(out) == want
}

func checkOrdering(t *testing.T, events []wire.Event) {
	t.Helper()
	for i := 0; i < len(events)-1; i++ {
		if events[i].PC.PC != uint64(0x1000+i) {
			t.Fatalf("event %d PC = %#x, want %#x", i, events[i].PC.PC, 0x1000+i)
		}
	}
	if !events[len(events)-1].IsFinished() {
		t.Fatal("last event should be the FINISHED sentinel")
	}
}

func TestProducerConnectRetryBounded(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "nonexistent.sock")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if _, err := Setup(ctx, sock, 4, WireFixed); err == nil {
		t.Fatal("Setup against a never-bound socket should fail once ctx is done")
	}
}

func TestProducerDropsOnWriteErrorInsteadOfAborting(t *testing.T) {
	dir := t.TempDir()
	sock := filepath.Join(dir, "catapult.sock")

	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := Setup(ctx, sock, 1, WireFixed)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	conn := <-accepted
	conn.Close() // force subsequent writes to fail
	ln.Close()

	h.Submit(wire.NewPCEvent(0x2000, false))
	h.Submit(wire.NewPCEvent(0x2001, false))
	h.Shutdown()

	if h.Dropped() == 0 {
		t.Fatal("expected dropped-event counter to be nonzero after closing the peer")
	}
}
