// Package fs abstracts the file operations used to persist heap snapshots.
//
// LocalFS forwards to the os package. FaultyFS wraps another FileSystem and
// injects write, sync and close failures so that the atomic save path can be
// tested without a broken disk.
package fs
