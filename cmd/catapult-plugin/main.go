// Command catapult-plugin is the actual loadable artifact: built with
// `go build -buildmode=c-shared`, it exports the host plugin ABI symbols
// (plugin_version, install) described in spec.md §6. All real logic lives
// in internal/qemuabi and internal/plugin; this file is just the
// //export seam, since cgo only attaches exported C symbols to a main
// package in a c-shared build.
package main

/*
#include <stdint.h>

// plugin_version is read by the host as a plain data symbol, not called as
// a function (spec.md §6), which cgo's //export cannot express for a
// Go-side variable. Defining it in the preamble makes it a genuine C
// symbol in the built .so.
int plugin_version = 2;
*/
import "C"

import (
	"unsafe"

	_ "github.com/novafacing/catapult/internal/instrument"
	"github.com/novafacing/catapult/internal/qemuabi"
)

func main() {
	// Unused by the host loader: a c-shared build still requires a main
	// function, but the host never calls it. It exists so `go build
	// -buildmode=c-shared` has an entry point to attach the exported
	// symbols to.
}

//export install
func install(id C.uint32_t, infoPtr unsafe.Pointer, argc C.int, argv **C.char) C.int {
	return C.int(qemuabi.Install(uint32(id), infoPtr, int(argc), argv))
}
