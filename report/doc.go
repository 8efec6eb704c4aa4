// Package report renders heap dumps of allocation records.
//
// Two dumps exist. WriteSorted groups records by call site and prints one
// summary line per site. WriteLowMem walks a registry directly and prints
// one line per record without sorting or collecting, so it stays usable
// when memory is exhausted.
package report
