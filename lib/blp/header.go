// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

import (
	"encoding/binary"
	"fmt"
)

// MaxMipLevels is the number of entries in the offset and size tables.
const MaxMipLevels = 16

// HeaderSize is the byte length of the fixed header: seven 32-bit fields and
// two MaxMipLevels-entry 32-bit tables.
const HeaderSize = 4 * headerWords

// headerWords is the number of 32-bit words before the palette or the shared
// JPEG header.
const headerWords = 7 + (2 * MaxMipLevels)

// ContentType is how the pixels of every mip level are stored.
type ContentType uint32

const (
	ContentTypeJPEG   = ContentType(0)
	ContentTypeDirect = ContentType(1)
)

func (t ContentType) String() string {
	switch t {
	case ContentTypeJPEG:
		return "jpeg"
	case ContentTypeDirect:
		return "direct"
	}
	return fmt.Sprintf("ContentType(%d)", uint32(t))
}

// Header is the fixed size BLP1 header.
//
// Offsets and Sizes are indexed by mip level, 0 being the largest. Offsets
// are absolute byte positions in the file. The first zero entry of Sizes
// ends the list of valid levels.
type Header struct {
	ContentType ContentType
	AlphaDepth  uint32
	Width       uint32
	Height      uint32

	// Extra is passed through unmodified. Legacy tools use it for alpha and
	// team color hints, typically 3, 4 or 5.
	Extra uint32

	HasMips uint32
	Offsets [MaxMipLevels]uint32
	Sizes   [MaxMipLevels]uint32
}

// ParseHeader parses the HeaderSize bytes at the start of b.
func ParseHeader(b []byte) (Header, error) {
	if (len(b) >= 4) && (string(b[:4]) != Magic) {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrNotABLPFile, b[:4])
	}
	if len(b) < HeaderSize {
		return Header{}, &TruncatedDataError{Offset: 0, Length: HeaderSize, Available: len(b)}
	}

	h := Header{
		ContentType: ContentType(binary.LittleEndian.Uint32(b[4:])),
		AlphaDepth:  binary.LittleEndian.Uint32(b[8:]),
		Width:       binary.LittleEndian.Uint32(b[12:]),
		Height:      binary.LittleEndian.Uint32(b[16:]),
		Extra:       binary.LittleEndian.Uint32(b[20:]),
		HasMips:     binary.LittleEndian.Uint32(b[24:]),
	}
	switch h.ContentType {
	case ContentTypeJPEG, ContentTypeDirect:
		// No-op.
	default:
		return Header{}, UnsupportedContentTypeError(h.ContentType)
	}
	if (h.Width == 0) || (h.Height == 0) {
		return Header{}, fmt.Errorf("%w: zero width or height", ErrNotABLPFile)
	}

	o := 28
	for i := range MaxMipLevels {
		h.Offsets[i] = binary.LittleEndian.Uint32(b[o:])
		o += 4
	}
	for i := range MaxMipLevels {
		h.Sizes[i] = binary.LittleEndian.Uint32(b[o:])
		o += 4
	}
	return h, nil
}

// AppendTo appends the HeaderSize byte encoding of h to dst.
func (h *Header) AppendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = binary.LittleEndian.AppendUint32(dst, uint32(h.ContentType))
	dst = binary.LittleEndian.AppendUint32(dst, h.AlphaDepth)
	dst = binary.LittleEndian.AppendUint32(dst, h.Width)
	dst = binary.LittleEndian.AppendUint32(dst, h.Height)
	dst = binary.LittleEndian.AppendUint32(dst, h.Extra)
	dst = binary.LittleEndian.AppendUint32(dst, h.HasMips)
	for _, u := range h.Offsets {
		dst = binary.LittleEndian.AppendUint32(dst, u)
	}
	for _, u := range h.Sizes {
		dst = binary.LittleEndian.AppendUint32(dst, u)
	}
	return dst
}
