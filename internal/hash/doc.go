// Package hash provides the CRC32-Castagnoli checksum used to detect
// corrupted snapshot bodies.
//
// # Usage
//
//	sum := hash.CRC32C(body)
//	if err := hash.Verify(body, sum); err != nil {
//	    return err
//	}
package hash
