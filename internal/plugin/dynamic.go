package plugin

// RegisterTBExec, RegisterInsnExec and RegisterMemAccess are thin wrappers
// over the Host dynamic registrars, called from inside a TBTranslateFunc.
// Per spec.md §4.3/§9, userData must be a machine-word index into a side
// table (see internal/pluginstate's instruction ring) rather than a
// borrowed pointer: the host retains it for the translated code's lifetime,
// which can outlive the TBTranslateFunc's stack frame.

// RegisterTBExec binds a whole-block execution callback.
func RegisterTBExec(host Host, tb *TranslationBlock, userData uint64) error {
	return host.RegisterTBExec(tb, userData)
}

// RegisterInsnExec binds a per-instruction execution callback.
func RegisterInsnExec(host Host, tb *TranslationBlock, insnIdx uint32, userData uint64) error {
	return host.RegisterInsnExec(tb, insnIdx, userData)
}

// RegisterMemAccess binds a per-instruction memory-access callback.
func RegisterMemAccess(host Host, tb *TranslationBlock, insnIdx uint32, userData uint64) error {
	return host.RegisterMemAccess(tb, insnIdx, userData)
}
