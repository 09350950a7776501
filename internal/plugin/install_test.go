package plugin

import (
	"errors"
	"testing"
)

type fakeHost struct {
	vcpuInitCalled bool
	atExitCalled   bool
	failFlush      bool
	tbExecCalls    []uint64
}

func (f *fakeHost) RegisterVCPUInit(id uint32, fn VCPUInitFunc) error {
	f.vcpuInitCalled = true
	return nil
}
func (f *fakeHost) RegisterVCPUExit(id uint32, fn VCPUExitFunc) error       { return nil }
func (f *fakeHost) RegisterVCPUIdle(id uint32, fn VCPUIdleFunc) error       { return nil }
func (f *fakeHost) RegisterVCPUResume(id uint32, fn VCPUResumeFunc) error   { return nil }
func (f *fakeHost) RegisterTBTranslate(id uint32, fn TBTranslateFunc) error { return nil }
func (f *fakeHost) RegisterSyscall(id uint32, fn SyscallFunc) error         { return nil }
func (f *fakeHost) RegisterSyscallRet(id uint32, fn SyscallRetFunc) error   { return nil }
func (f *fakeHost) RegisterAtExit(id uint32, fn AtExitFunc) error {
	f.atExitCalled = true
	return nil
}
func (f *fakeHost) RegisterFlush(id uint32, fn FlushFunc) error {
	if f.failFlush {
		return errors.New("flush registration refused")
	}
	return nil
}
func (f *fakeHost) RegisterTBExec(tb *TranslationBlock, userData uint64) error {
	f.tbExecCalls = append(f.tbExecCalls, userData)
	return nil
}
func (f *fakeHost) RegisterInsnExec(tb *TranslationBlock, insnIdx uint32, userData uint64) error {
	return nil
}
func (f *fakeHost) RegisterMemAccess(tb *TranslationBlock, insnIdx uint32, userData uint64) error {
	return nil
}

func TestInstallRunsSetupsThenBindsCallbacks(t *testing.T) {
	r := NewRegistry()
	var setupRan bool
	r.RegisterSetup(func(info *Info, args *Args) {
		setupRan = true
		if info.TargetName != "aarch64" {
			t.Errorf("TargetName = %q, want aarch64", info.TargetName)
		}
	})
	r.RegisterHostCallback(HostCallback{Tag: HookVCPUInit, Fn: VCPUInitFunc(func(id, idx uint32) {})})
	r.RegisterHostCallback(HostCallback{Tag: HookAtExit, Fn: AtExitFunc(func(id uint32) {})})

	host := &fakeHost{}
	info := &Info{TargetName: "aarch64"}
	if err := Install(r, host, 1, info, []string{"plugin.so", "trace_pc=on"}); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if !setupRan {
		t.Fatal("setup did not run")
	}
	if !host.vcpuInitCalled || !host.atExitCalled {
		t.Fatal("not all host callbacks were bound")
	}
}

func TestInstallPropagatesHostABIError(t *testing.T) {
	r := NewRegistry()
	r.RegisterHostCallback(HostCallback{Tag: HookFlush, Fn: FlushFunc(func(id uint32) {})})

	host := &fakeHost{failFlush: true}
	if err := Install(r, host, 1, &Info{}, []string{"plugin.so"}); err == nil {
		t.Fatal("Install: want error when host registration fails, got nil")
	}
}

func TestInstallRejectsMismatchedCallbackType(t *testing.T) {
	r := NewRegistry()
	r.RegisterHostCallback(HostCallback{Tag: HookVCPUInit, Fn: func() {}})

	host := &fakeHost{}
	if err := Install(r, host, 1, &Info{}, nil); err == nil {
		t.Fatal("Install: want error for mismatched callback type, got nil")
	}
}
