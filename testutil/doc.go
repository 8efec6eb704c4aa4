// Package testutil provides testing utilities for memdebug.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	sizes := rng.Sizes(100, 4096) // 100 sizes in [0, 4096)
//
// # Fatal Paths
//
// Fatal paths normally terminate the process. Tests install an
// ExitRecorder as the exit function and catch the panic that follows:
//
//	var exits testutil.ExitRecorder
//	d := memdebug.New(memdebug.WithExitFunc(exits.Exit))
//	v := testutil.Recover(func() { d.Free(bogus) })
//	code, _ := exits.Last()
package testutil
