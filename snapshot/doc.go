// Package snapshot persists the live allocation set of a Debugger and
// compares two points in time.
//
// # File Format
//
//	magic       [4]byte "MDSN"
//	version     uint16 (little endian)
//	compression uint8
//	codec       uint8 length + name
//	body        block: [uncompressed uint32][compressed uint32][crc32c uint32][data]
//
// A compressed length of zero means the body is stored as is. The checksum
// covers the uncompressed body, which is the codec encoding of a Snapshot.
package snapshot
