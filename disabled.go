//go:build nomemdebug

package memdebug

// Enabled reports whether allocation tracking is compiled in.
const Enabled = false
