// Package checksum computes the reversed CRC-32 used to hash editor GUIDs
// into the 32-bit keys stored in asset bundle indices.
package checksum

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

// generator is 0x04C11DB7 in reflected form.
const generator = 0xedb88320

// ErrConversion is matched by every ConversionError.
var ErrConversion = errors.New("checksum: element is not a byte")

// ConversionError reports an element that cannot be reinterpreted as a
// single byte.
type ConversionError struct {
	Index int
	Value int64
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("checksum: element %d (%d) is outside 0..255", e.Index, e.Value)
}

func (e *ConversionError) Is(target error) bool { return target == ErrConversion }

var crcTable = makeCRCTable()

func makeCRCTable() [256]uint32 {
	var t [256]uint32
	for i := 0; i < 256; i++ {
		c := uint32(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = generator ^ (c >> 1)
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}

func update(crc uint32, b byte) uint32 {
	return crcTable[byte(crc)^b] ^ (crc >> 8)
}

// Bytes returns the checksum of data as a signed 32-bit value. The bit
// pattern is the standard CRC-32 (ISO-HDLC) result.
func Bytes(data []byte) int32 {
	var crc uint32 = 0xffffffff
	for _, b := range data {
		crc = update(crc, b)
	}
	return int32(^crc)
}

// Sum checksums a sequence whose elements must each fit in a byte.
func Sum[T constraints.Integer](seq []T) (int32, error) {
	var crc uint32 = 0xffffffff
	for i, v := range seq {
		if v < 0 || uint64(v) > 0xff {
			return 0, &ConversionError{Index: i, Value: int64(v)}
		}
		crc = update(crc, byte(v))
	}
	return int32(^crc), nil
}

// String checksums s character by character. Characters above U+00FF
// cannot be narrowed to a byte and produce a ConversionError.
func String(s string) (int32, error) {
	return Sum([]rune(s))
}
