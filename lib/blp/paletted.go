// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// maxPaletteLen is the number of palette entries that the encoder writes and
// that an 8-bit index can address.
const maxPaletteLen = 256

// palettedContent is the ContentTypeDirect part of a container: a BGRA
// palette running from the end of the header up to Offsets[0], followed by
// per-level index bytes and packed alpha.
type palettedContent struct {
	palette    []color.NRGBA
	paletteEnd int
	alphaDepth uint32
}

func parsePaletted(data []byte, h *Header) (content, error) {
	if !validAlphaDepth(h.AlphaDepth) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedAlphaDepth, h.AlphaDepth)
	}

	// The palette length isn't stored. It fills the gap between the header
	// and the first level.
	n := int(h.Offsets[0]/4) - headerWords
	if n < 0 {
		return nil, fmt.Errorf("%w: first mip level offset %d is inside the header",
			ErrNotABLPFile, h.Offsets[0])
	}
	b, err := slice(data, HeaderSize, 4*n)
	if err != nil {
		return nil, err
	}

	palette := make([]color.NRGBA, n)
	for i := range palette {
		q := b[4*i:]
		palette[i] = color.NRGBA{R: q[2], G: q[1], B: q[0], A: q[3]}
	}
	return &palettedContent{
		palette:    palette,
		paletteEnd: HeaderSize + (4 * n),
		alphaDepth: h.AlphaDepth,
	}, nil
}

func (p *palettedContent) decodeLevel(c *Container, level int) (*image.NRGBA, error) {
	h := &c.Header
	if h.Offsets[level] < h.Offsets[0] {
		return nil, fmt.Errorf("%w: mip level %d offset %d precedes level 0 offset %d",
			ErrNotABLPFile, level, h.Offsets[level], h.Offsets[0])
	}
	w := LevelSize(int(h.Width), level)
	ht := LevelSize(int(h.Height), level)
	n := w * ht

	start := p.paletteEnd + int(h.Offsets[level]-h.Offsets[0])
	indices, err := slice(c.data, start, n)
	if err != nil {
		return nil, err
	}
	packed, err := slice(c.data, start+n, AlphaBufferLen(n, p.alphaDepth))
	if err != nil {
		return nil, err
	}
	alpha := make([]byte, n)
	if err := UnpackAlpha(alpha, packed, p.alphaDepth); err != nil {
		return nil, err
	}

	m := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for i, index := range indices {
		if int(index) >= len(p.palette) {
			return nil, fmt.Errorf("%w: palette index %d out of range (palette length %d)",
				ErrNotABLPFile, index, len(p.palette))
		}
		q := p.palette[index]
		pix := m.Pix[4*i : (4*i)+4 : (4*i)+4]
		pix[0] = q.R
		pix[1] = q.G
		pix[2] = q.B
		pix[3] = alpha[i]
	}
	return m, nil
}

// encodePaletted appends the palette and every mip level's index and alpha
// bytes to body, which starts at HeaderSize in the final file, and fills in
// hdr's AlphaDepth, Offsets and Sizes.
func encodePaletted(hdr *Header, body []byte, base *image.NRGBA, o *EncodeOptions) ([]byte, error) {
	r := base.Bounds()

	// The palette is built from color alone. Alpha is stored separately.
	opaque := image.NewNRGBA(r)
	copy(opaque.Pix, base.Pix)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xFF
	}

	palette := o.Quantizer.Quantize(make(color.Palette, 0, maxPaletteLen), opaque)
	if len(palette) == 0 {
		return nil, fmt.Errorf("%w: quantizer produced an empty palette", ErrBadArgument)
	} else if len(palette) > maxPaletteLen {
		palette = palette[:maxPaletteLen]
	}

	indices := image.NewPaletted(r, palette)
	if o.Dither {
		draw.FloydSteinberg.Draw(indices, r, opaque, r.Min)
	} else {
		draw.Draw(indices, r, opaque, r.Min, draw.Src)
	}

	depth := o.AlphaDepth
	if (depth == 0) && hasTransparency(base) {
		depth = 8
	}
	hdr.AlphaDepth = depth

	var alpha *image.Alpha
	if depth != 0 {
		alpha = image.NewAlpha(r)
		for i := range alpha.Pix {
			alpha.Pix[i] = base.Pix[(4*i)+3]
		}
	}

	for i := range maxPaletteLen {
		q := color.NRGBA{A: 0xFF}
		if i < len(palette) {
			q = color.NRGBAModel.Convert(palette[i]).(color.NRGBA)
		}
		body = append(body, q.B, q.G, q.R, 0xFF)
	}

	for level := range o.MipCount {
		offset := HeaderSize + len(body)
		li, la := indices, alpha
		if level > 0 {
			lr := image.Rect(0, 0, LevelSize(r.Dx(), level), LevelSize(r.Dy(), level))
			li = image.NewPaletted(lr, palette)
			draw.NearestNeighbor.Scale(li, lr, indices, r, draw.Src, nil)
			if alpha != nil {
				la = image.NewAlpha(lr)
				o.Scaler.Scale(la, lr, alpha, r, draw.Src, nil)
			}
		}

		body = append(body, li.Pix...)
		if la != nil {
			var err error
			if body, err = AppendAlpha(body, la.Pix, depth); err != nil {
				return nil, err
			}
		}
		hdr.Offsets[level] = uint32(offset)
		hdr.Sizes[level] = uint32(HeaderSize + len(body) - offset)
	}
	return body, nil
}

func hasTransparency(m *image.NRGBA) bool {
	for i := 3; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 0xFF {
			return true
		}
	}
	return false
}
