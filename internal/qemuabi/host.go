// Package qemuabi is the cgo adapter translating the real C plugin ABI
// (modeled on QEMU's TCG plugin interface) into calls against
// internal/plugin's host-agnostic Host interface. internal/plugin itself
// needs no cgo and is unit-testable without it (SPEC_FULL §6); this package
// is the thin, untested-by-design seam between that Go-native core and the
// C ABI the host loader actually calls into.
//
// The actual //export trampolines (install, and the plugin_version C
// symbol) live in cmd/catapult-plugin/main.go, following other_examples'
// cshared.go.go (calyptia-fluent-bit-go) and the nylon-ring Go plugin
// example: cgo's //export only attaches to symbols in the main package of a
// c-shared build, so this package exposes Go-callable entry points
// (Install, TranslateInfo, TranslateArgv) that main wraps.
package qemuabi

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct qemu_info_t {
    const char *target_name;
    int version;
    int system_emulation;
    uint32_t num_vcpus;
} qemu_info_t;
*/
import "C"

import (
	"unsafe"

	"github.com/novafacing/catapult/internal/plugin"
)

// OnInstalled, if set, is called with the concrete Host right after a
// successful Install. internal/instrument uses this to obtain the Host it
// needs for dynamic (TB-exec/insn-exec/mem-access) registration from
// inside a TBTranslateFunc, without qemuabi depending on instrument.
var OnInstalled func(plugin.Host)

// Install adapts the host's install(id, info_ptr, argc, argv) call into
// plugin.Install against a freshly constructed cHost. Returns 0 on success,
// matching the host ABI's success code (spec.md §6).
func Install(id uint32, infoPtr unsafe.Pointer, argc int, argv **C.char) int {
	info := TranslateInfo(infoPtr)
	args := TranslateArgv(argc, argv)

	host := &cHost{id: id}
	if err := plugin.Install(plugin.DefaultRegistry, host, id, info, args); err != nil {
		return 1
	}
	if OnInstalled != nil {
		OnInstalled(host)
	}
	return 0
}

// TranslateInfo converts the host's qemu_info_t pointer into a plugin.Info.
func TranslateInfo(ptr unsafe.Pointer) *plugin.Info {
	if ptr == nil {
		return &plugin.Info{}
	}
	raw := (*C.qemu_info_t)(ptr)
	return &plugin.Info{
		TargetName:      C.GoString(raw.target_name),
		SystemEmulation: raw.system_emulation != 0,
		NumVCPUs:        uint32(raw.num_vcpus),
	}
}

// TranslateArgv converts the host's argc/argv into a Go string slice.
func TranslateArgv(argc int, argv **C.char) []string {
	out := make([]string, 0, argc)
	if argv == nil {
		return out
	}
	slice := unsafe.Slice(argv, argc)
	for _, cstr := range slice {
		out = append(out, C.GoString(cstr))
	}
	return out
}
