// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

// Packed alpha buffers have no per pixel byte alignment:
//
//   - depth 8: one byte per pixel.
//   - depth 4: two pixels per byte, the first pixel in the high nibble.
//   - depth 1: eight pixels per byte, pixel i in bit (i % 8) of byte (i / 8),
//     counting from the least significant bit.
//   - depth 0: no buffer at all, every pixel is opaque.

func validAlphaDepth(depth uint32) bool {
	switch depth {
	case 0, 1, 4, 8:
		return true
	}
	return false
}

// AlphaBufferLen returns the byte length of a packed alpha buffer holding n
// samples at the given depth, or -1 if the depth is unsupported.
func AlphaBufferLen(n int, depth uint32) int {
	if !validAlphaDepth(depth) {
		return -1
	}
	return ((n * int(depth)) + 7) / 8
}

// AppendAlpha packs the 8-bit samples at the given depth and appends the
// AlphaBufferLen(len(samples), depth) resulting bytes to dst.
//
// Samples are rounded to the nearest representable value: at depth 4 a
// nibble n stands for n*17, and at depth 1 a sample of 128 or more becomes
// a set bit.
func AppendAlpha(dst []byte, samples []byte, depth uint32) ([]byte, error) {
	switch depth {
	case 0:
		return dst, nil

	case 1:
		for i := 0; i < len(samples); i += 8 {
			b := byte(0)
			for j, s := range samples[i:min(i+8, len(samples))] {
				if s >= 0x80 {
					b |= 1 << j
				}
			}
			dst = append(dst, b)
		}
		return dst, nil

	case 4:
		for i := 0; i < len(samples); i += 2 {
			b := quantize4(samples[i]) << 4
			if i+1 < len(samples) {
				b |= quantize4(samples[i+1])
			}
			dst = append(dst, b)
		}
		return dst, nil

	case 8:
		return append(dst, samples...), nil
	}
	return dst, ErrUnsupportedAlphaDepth
}

func quantize4(s byte) byte {
	return byte(((uint32(s) * 15) + 127) / 255)
}

// UnpackAlpha unpacks len(dst) samples from the packed buffer src, widening
// each to 8 bits. At depth 0 every sample is set to 0xFF and src is ignored.
//
// It returns a TruncatedDataError (with Offset relative to src) if src is
// shorter than AlphaBufferLen(len(dst), depth).
func UnpackAlpha(dst []byte, src []byte, depth uint32) error {
	if !validAlphaDepth(depth) {
		return ErrUnsupportedAlphaDepth
	}
	if n := AlphaBufferLen(len(dst), depth); len(src) < n {
		return &TruncatedDataError{Offset: 0, Length: n, Available: len(src)}
	}

	switch depth {
	case 0:
		for i := range dst {
			dst[i] = 0xFF
		}

	case 1:
		for i := range dst {
			dst[i] = 0x00 - ((src[i>>3] >> (i & 7)) & 1)
		}

	case 4:
		for i := range dst {
			n := src[i>>1]
			if (i & 1) == 0 {
				n >>= 4
			}
			dst[i] = (n & 0x0F) * 0x11
		}

	case 8:
		copy(dst, src)
	}
	return nil
}
