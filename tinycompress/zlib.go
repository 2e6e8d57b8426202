// Package tinycompress writes zlib streams made of stored DEFLATE blocks.
// It needs no compression tables, which keeps it small enough for the
// firmware, and any zlib reader can open the result.
package tinycompress

import "hash/adler32"

// MaxBlock is the largest stored block DEFLATE allows
const MaxBlock = 0xFFFF

// zlib header for a 32K window at the default level; 0x789C is divisible
// by 31 as the format requires
var header = [2]byte{0x78, 0x9C}

// EncodedSize returns the length Encode produces for n input bytes
func EncodedSize(n int) int {
	blocks := (n + MaxBlock - 1) / MaxBlock
	if blocks == 0 {
		blocks = 1
	}
	return len(header) + blocks*5 + n + 4
}

// Encode wraps data in a zlib stream. The output is larger than the input
// by a few bytes per 64K block; the Adler-32 trailer lets the reader check
// that every byte arrived.
func Encode(data []byte) []byte {
	out := make([]byte, 0, EncodedSize(len(data)))
	out = append(out, header[:]...)

	rest := data
	for {
		n := len(rest)
		if n > MaxBlock {
			n = MaxBlock
		}
		final := byte(0)
		if n == len(rest) {
			final = 1
		}
		out = append(out, final,
			byte(n), byte(n>>8),
			^byte(n), ^byte(n>>8))
		out = append(out, rest[:n]...)
		rest = rest[n:]
		if final == 1 {
			break
		}
	}

	sum := adler32.Checksum(data)
	return append(out, byte(sum>>24), byte(sum>>16), byte(sum>>8), byte(sum))
}
