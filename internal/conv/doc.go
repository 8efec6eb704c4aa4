// Package conv provides checked integer conversions for fixed-width file
// header fields.
package conv
