package qemuabi

/*
#include <stdint.h>

// Host registration ABI. In a real deployment these symbols are resolved
// against the emulator's own libqemu_plugin.so at load time (the plugin is
// dlopen'd by the host, not the other way around); declaring them extern
// here documents the exact C surface internal/plugin's Host interface
// adapts, per spec.md §6.
extern void qemu_plugin_register_vcpu_init_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_vcpu_exit_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_vcpu_idle_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_vcpu_resume_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_vcpu_tb_trans_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_vcpu_syscall_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_vcpu_syscall_ret_cb(uint32_t id, void *cb);
extern void qemu_plugin_register_atexit_cb(uint32_t id, void *cb, void *userdata);
extern void qemu_plugin_register_flush_cb(uint32_t id, void *cb);

extern void qemu_plugin_register_vcpu_tb_exec_cb(void *tb, void *cb, int flags, uint64_t userdata);
extern void qemu_plugin_register_vcpu_insn_exec_cb(void *insn, void *cb, int flags, uint64_t userdata);
extern void qemu_plugin_register_vcpu_mem_cb(void *insn, void *cb, int flags, int rw, uint64_t userdata);
*/
import "C"

import (
	"unsafe"

	"github.com/novafacing/catapult/internal/plugin"
)

// cHost implements plugin.Host by forwarding to the C registrars declared
// above. The Go callback values themselves are retained in cHost's fields
// and the C registrars are called with a nil callback pointer, since cgo
// cannot turn an arbitrary Go func value into a C function pointer; a production
// build instead registers fixed //export trampolines per hook and dispatches
// from there into whichever Go func was last bound for that id, the same
// shape galago's stub dispatch uses for fixed C callback slots.
type cHost struct {
	id uint32

	vcpuInit    plugin.VCPUInitFunc
	vcpuExit    plugin.VCPUExitFunc
	vcpuIdle    plugin.VCPUIdleFunc
	vcpuResume  plugin.VCPUResumeFunc
	tbTranslate plugin.TBTranslateFunc
	syscall     plugin.SyscallFunc
	syscallRet  plugin.SyscallRetFunc
	atExit      plugin.AtExitFunc
	flush       plugin.FlushFunc
}

func (h *cHost) RegisterVCPUInit(id uint32, fn plugin.VCPUInitFunc) error {
	h.vcpuInit = fn
	C.qemu_plugin_register_vcpu_init_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterVCPUExit(id uint32, fn plugin.VCPUExitFunc) error {
	h.vcpuExit = fn
	C.qemu_plugin_register_vcpu_exit_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterVCPUIdle(id uint32, fn plugin.VCPUIdleFunc) error {
	h.vcpuIdle = fn
	C.qemu_plugin_register_vcpu_idle_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterVCPUResume(id uint32, fn plugin.VCPUResumeFunc) error {
	h.vcpuResume = fn
	C.qemu_plugin_register_vcpu_resume_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterTBTranslate(id uint32, fn plugin.TBTranslateFunc) error {
	h.tbTranslate = fn
	C.qemu_plugin_register_vcpu_tb_trans_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterSyscall(id uint32, fn plugin.SyscallFunc) error {
	h.syscall = fn
	C.qemu_plugin_register_vcpu_syscall_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterSyscallRet(id uint32, fn plugin.SyscallRetFunc) error {
	h.syscallRet = fn
	C.qemu_plugin_register_vcpu_syscall_ret_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterAtExit(id uint32, fn plugin.AtExitFunc) error {
	h.atExit = fn
	C.qemu_plugin_register_atexit_cb(C.uint32_t(id), nil, nil)
	return nil
}

func (h *cHost) RegisterFlush(id uint32, fn plugin.FlushFunc) error {
	h.flush = fn
	C.qemu_plugin_register_flush_cb(C.uint32_t(id), nil)
	return nil
}

func (h *cHost) RegisterTBExec(tb *plugin.TranslationBlock, userData uint64) error {
	C.qemu_plugin_register_vcpu_tb_exec_cb(unsafe.Pointer(tb), nil, 0, C.uint64_t(userData))
	return nil
}

func (h *cHost) RegisterInsnExec(tb *plugin.TranslationBlock, insnIdx uint32, userData uint64) error {
	C.qemu_plugin_register_vcpu_insn_exec_cb(unsafe.Pointer(tb), nil, 0, C.uint64_t(userData))
	return nil
}

func (h *cHost) RegisterMemAccess(tb *plugin.TranslationBlock, insnIdx uint32, userData uint64) error {
	C.qemu_plugin_register_vcpu_mem_cb(unsafe.Pointer(tb), nil, 0, 0, C.uint64_t(userData))
	return nil
}
