// Package hash contains the hash functions used for persistent hash map keys.
package hash

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// DJBInit is the initial accumulator of DJBCombine.
const DJBInit uint32 = 5381

// DJBCombine folds h into the accumulator with the djb2 step.
func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

// DJB combines several hashes into one.
func DJB(hs ...uint32) uint32 {
	acc := DJBInit
	for _, h := range hs {
		acc = DJBCombine(acc, h)
	}
	return acc
}

// UInt64 folds a 64-bit integer into 32 bits.
func UInt64(u uint64) uint32 {
	return mul33(uint32(u>>32)) + uint32(u&0xffffffff)
}

// Pointer hashes an address.
func Pointer(p unsafe.Pointer) uint32 {
	if unsafe.Sizeof(p) == 4 {
		return uint32(uintptr(p))
	}
	return UInt64(uint64(uintptr(p)))
}

// String hashes the bytes of a string with xxHash, folded to 32 bits.
func String(s string) uint32 {
	return UInt64(xxhash.Sum64String(s))
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
