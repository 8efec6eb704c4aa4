// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides Go-heap byte buffers whose first byte sits on a requested
// power-of-two boundary, and the rounding helpers the arena uses for its
// bump cursor.
package mem
