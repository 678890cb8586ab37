// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package nie implements the NIE (Naive) image file format.
//
// It is an incomplete implementation (and hence an internal package), only
// providing what's needed by the github.com/nigeltao/blp module: a lossless,
// trivially diffable dump of decoded BLP levels.
//
// NIE is specified at
// https://github.com/google/wuffs/blob/main/doc/spec/nie-spec.md
package nie

import (
	"errors"
	"image"
	"image/color"
)

var ErrBadArgument = errors.New("nie: bad argument")

// headerSize is the byte length of the magic, version, pixel format, width
// and height fields.
const headerSize = 16

// EncodeBN8 encodes m as a NIE file in BGRA order, non-premultiplied alpha, 8
// bytes per pixel (16 bits per channel).
func EncodeBN8(m image.Image) ([]byte, error) {
	if m == nil {
		return nil, ErrBadArgument
	}
	b := m.Bounds()
	if (b.Dx() < 0) || (b.Dy() < 0) || (b.Dx() > 0x7FFFFFFF) || (b.Dy() > 0x7FFFFFFF) {
		return nil, ErrBadArgument
	}

	ret := make([]byte, 0, headerSize+(8*b.Dx()*b.Dy()))
	ret = append(ret, 0x6E, 0xC3, 0xAF, 0x45, 0xFF, 'b', 'n', '8')
	ret = appendU32LE(ret, uint32(b.Dx()))
	ret = appendU32LE(ret, uint32(b.Dy()))

	// Decoded BLP levels are always *image.NRGBA, which widens exactly.
	if m, ok := m.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := m.Pix[m.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				p := row[4*x : (4*x)+4 : (4*x)+4]
				ret = append(ret,
					p[2], p[2],
					p[1], p[1],
					p[0], p[0],
					p[3], p[3],
				)
			}
		}
		return ret, nil
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			at := color.NRGBA64Model.Convert(m.At(x, y)).(color.NRGBA64)
			ret = append(ret,
				uint8(at.B>>0), uint8(at.B>>8),
				uint8(at.G>>0), uint8(at.G>>8),
				uint8(at.R>>0), uint8(at.R>>8),
				uint8(at.A>>0), uint8(at.A>>8),
			)
		}
	}
	return ret, nil
}

func appendU32LE(b []byte, u uint32) []byte {
	return append(b,
		uint8(u>>0),
		uint8(u>>8),
		uint8(u>>16),
		uint8(u>>24),
	)
}
