package instrument

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/novafacing/catapult/internal/plugin"
	"github.com/novafacing/catapult/internal/pluginstate"
	"github.com/novafacing/catapult/internal/producer"
	"github.com/novafacing/catapult/internal/wire"
)

type recordingHost struct {
	insnExecCalls []uint64
	memCalls      []uint64
}

func (h *recordingHost) RegisterVCPUInit(uint32, plugin.VCPUInitFunc) error     { return nil }
func (h *recordingHost) RegisterVCPUExit(uint32, plugin.VCPUExitFunc) error     { return nil }
func (h *recordingHost) RegisterVCPUIdle(uint32, plugin.VCPUIdleFunc) error     { return nil }
func (h *recordingHost) RegisterVCPUResume(uint32, plugin.VCPUResumeFunc) error { return nil }
func (h *recordingHost) RegisterTBTranslate(uint32, plugin.TBTranslateFunc) error {
	return nil
}
func (h *recordingHost) RegisterSyscall(uint32, plugin.SyscallFunc) error       { return nil }
func (h *recordingHost) RegisterSyscallRet(uint32, plugin.SyscallRetFunc) error { return nil }
func (h *recordingHost) RegisterAtExit(uint32, plugin.AtExitFunc) error         { return nil }
func (h *recordingHost) RegisterFlush(uint32, plugin.FlushFunc) error           { return nil }
func (h *recordingHost) RegisterTBExec(*plugin.TranslationBlock, uint64) error  { return nil }
func (h *recordingHost) RegisterInsnExec(tb *plugin.TranslationBlock, idx uint32, userData uint64) error {
	h.insnExecCalls = append(h.insnExecCalls, userData)
	return nil
}
func (h *recordingHost) RegisterMemAccess(tb *plugin.TranslationBlock, idx uint32, userData uint64) error {
	h.memCalls = append(h.memCalls, userData)
	return nil
}

func newTestProducer(t *testing.T) (*producer.Handle, net.Conn) {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "catapult.sock")

	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	h, err := producer.Setup(ctx, sock, 64, producer.WireFixed)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	conn := <-accepted
	t.Cleanup(func() { conn.Close() })
	return h, conn
}

func TestOnTBTranslateRegistersAndEmits(t *testing.T) {
	prod, conn := newTestProducer(t)
	state := pluginstate.New(pluginstate.Options{LogPC: true, LogOpcode: true}, 1024)
	in := New(state, prod)

	tb := &plugin.TranslationBlock{
		VCPUIndex: 0,
		Instrs: []plugin.TBInstr{
			{PC: 0x1000, Opcode: []byte{0x90}},
			{PC: 0x1001, Opcode: []byte{0xc3}},
		},
	}

	host := &recordingHost{}
	in.OnTBTranslate(host, tb)

	if len(host.insnExecCalls) != 2 {
		t.Fatalf("registered %d insn-exec callbacks, want 2", len(host.insnExecCalls))
	}

	in.OnInsnExec(host.insnExecCalls[0])
	in.OnInsnExec(host.insnExecCalls[1])
	prod.Shutdown()

	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _ := readAll(conn, buf)

	var events []wire.Event
	rest := buf[:n]
	for len(rest) > 0 {
		e, consumed, err := wire.Decode(rest)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		events = append(events, e)
		rest = rest[consumed:]
	}

	// Each instruction contributes a PC event and an Instruction event.
	if len(events) < 4 {
		t.Fatalf("got %d events, want at least 4 (2 PC + 2 instruction)", len(events))
	}
}

func TestOnMemAccessRespectsReadWriteGates(t *testing.T) {
	prod, conn := newTestProducer(t)
	state := pluginstate.New(pluginstate.Options{LogWrites: true}, 1024)
	in := New(state, prod)

	readKey := state.NextKey()
	state.PutInsn(readKey, pluginstate.InsnEvent{PC: 0x2000})
	in.OnMemAccess(readKey, 0x3000, false) // read, but LogWrites only: should be dropped

	writeKey := state.NextKey()
	state.PutInsn(writeKey, pluginstate.InsnEvent{PC: 0x2000})
	in.OnMemAccess(writeKey, 0x3000, true)

	prod.Shutdown()

	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _ := readAll(conn, buf)

	var events []wire.Event
	rest := buf[:n]
	for len(rest) > 0 {
		e, consumed, err := wire.Decode(rest)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		events = append(events, e)
		rest = rest[consumed:]
	}

	memCount := 0
	for _, e := range events {
		if e.Flags.Kind() == wire.FlagReadsWrites {
			memCount++
			if !e.Mem.IsWrite {
				t.Fatal("the gated read event should not have been emitted")
			}
		}
	}
	if memCount != 1 {
		t.Fatalf("got %d memory events, want exactly 1 (the write)", memCount)
	}
}

func TestSyscallEntryReturnPairing(t *testing.T) {
	prod, conn := newTestProducer(t)
	state := pluginstate.New(pluginstate.Options{LogSyscalls: true}, 1024)
	in := New(state, prod)

	in.OnSyscall(1, 0, 1, [8]uint64{1, 0, 2})
	in.OnSyscallRet(1, 0, 2)
	prod.Shutdown()

	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _ := readAll(conn, buf)

	e, _, err := wire.Decode(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Flags.Kind() != wire.FlagSyscalls || e.Syscall.Num != 1 || e.Syscall.RV != 2 {
		t.Fatalf("got %+v, want syscall num=1 rv=2", e)
	}
}

func readAll(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if total > 0 {
			// Best-effort: the test producer shuts down promptly after the
			// events under test, so one short read window is enough.
			conn.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		}
	}
}
