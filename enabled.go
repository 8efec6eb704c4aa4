//go:build !nomemdebug

package memdebug

// Enabled reports whether allocation tracking is compiled in. Build with
// -tags nomemdebug to turn every Debugger operation into a plain system
// allocator call.
const Enabled = true
