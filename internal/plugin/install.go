package plugin

import (
	"fmt"

	"github.com/novafacing/catapult/internal/qargs"
)

// Install is the body of the symbol the host loader invokes (see
// spec.md §4.3, §6: install(id, info_ptr, argc, argv) -> int). It runs every
// registered setup descriptor in registration order, then binds every
// registered host-callback descriptor to host via the registrar matching
// its tag. A registration failure is a host ABI error per spec.md §7: it is
// fatal and Install returns a non-nil error so the caller can return
// non-zero to the host.
func Install(r *Registry, host Host, id uint32, info *Info, rawArgs []string) error {
	args := qargs.New(rawArgs)

	for _, setup := range r.Setups() {
		setup(info, args)
	}

	for _, cb := range r.HostCallbacks() {
		if err := bind(host, id, cb); err != nil {
			return fmt.Errorf("plugin: install: bind %v: %w", cb.Tag, err)
		}
	}

	return nil
}

func bind(host Host, id uint32, cb HostCallback) error {
	switch cb.Tag {
	case HookVCPUInit:
		fn, ok := cb.Fn.(VCPUInitFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookVCPUInit")
		}
		return host.RegisterVCPUInit(id, fn)
	case HookVCPUExit:
		fn, ok := cb.Fn.(VCPUExitFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookVCPUExit")
		}
		return host.RegisterVCPUExit(id, fn)
	case HookVCPUIdle:
		fn, ok := cb.Fn.(VCPUIdleFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookVCPUIdle")
		}
		return host.RegisterVCPUIdle(id, fn)
	case HookVCPUResume:
		fn, ok := cb.Fn.(VCPUResumeFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookVCPUResume")
		}
		return host.RegisterVCPUResume(id, fn)
	case HookTBTranslate:
		fn, ok := cb.Fn.(TBTranslateFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookTBTranslate")
		}
		return host.RegisterTBTranslate(id, fn)
	case HookSyscall:
		fn, ok := cb.Fn.(SyscallFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookSyscall")
		}
		return host.RegisterSyscall(id, fn)
	case HookSyscallRet:
		fn, ok := cb.Fn.(SyscallRetFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookSyscallRet")
		}
		return host.RegisterSyscallRet(id, fn)
	case HookAtExit:
		fn, ok := cb.Fn.(AtExitFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookAtExit")
		}
		return host.RegisterAtExit(id, fn)
	case HookFlush:
		fn, ok := cb.Fn.(FlushFunc)
		if !ok {
			return fmt.Errorf("bad callback type for HookFlush")
		}
		return host.RegisterFlush(id, fn)
	default:
		return fmt.Errorf("unknown hook tag %v", cb.Tag)
	}
}
