// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package blp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"

	"github.com/nigeltao/blp/lib/cmykjpeg"
)

// photographicContent is the ContentTypeJPEG part of a container. Each mip
// level's bytes are JPEG data that must be prefixed with the shared header to
// form a complete JPEG stream.
type photographicContent struct {
	sharedHeader []byte
}

func parsePhotographic(data []byte) (content, error) {
	b, err := slice(data, HeaderSize, 4)
	if err != nil {
		return nil, err
	}
	sharedHeader, err := slice(data, HeaderSize+4, int(binary.LittleEndian.Uint32(b)))
	if err != nil {
		return nil, err
	}
	return &photographicContent{sharedHeader: sharedHeader}, nil
}

func (p *photographicContent) decodeLevel(c *Container, level int) (*image.NRGBA, error) {
	h := &c.Header
	scan, err := slice(c.data, int(h.Offsets[level]), int(h.Sizes[level]))
	if err != nil {
		return nil, err
	}
	stream := make([]byte, 0, len(p.sharedHeader)+len(scan))
	stream = append(stream, p.sharedHeader...)
	stream = append(stream, scan...)

	// Check the frame size before allocating the decoded planes.
	cfg, err := cmykjpeg.DecodeConfig(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("blp: mip level %d: %w", level, err)
	}
	want := image.Pt(LevelSize(int(h.Width), level), LevelSize(int(h.Height), level))
	if got := image.Pt(cfg.Width, cfg.Height); got != want {
		return nil, fmt.Errorf("%w: mip level %d is %dx%d, want %dx%d",
			ErrNotABLPFile, level, got.X, got.Y, want.X, want.Y)
	}

	m, err := cmykjpeg.Decode(bytes.NewReader(stream))
	if err != nil {
		return nil, fmt.Errorf("blp: mip level %d: %w", level, err)
	}
	if got := m.Bounds().Size(); got != want {
		return nil, fmt.Errorf("%w: mip level %d is %dx%d, want %dx%d",
			ErrNotABLPFile, level, got.X, got.Y, want.X, want.Y)
	}
	return cmykToNRGBA(m), nil
}

// cmykToNRGBA maps the decoded (c, m, y, k) planes to (255-y, 255-m, 255-c,
// 255-k). The container stores blue, green, red and alpha in the JPEG's four
// components, and the JPEG decoder reports them inverted.
func cmykToNRGBA(src *image.CMYK) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		d := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := 4 * x
			d[i+0] = 0xFF - s[i+2]
			d[i+1] = 0xFF - s[i+1]
			d[i+2] = 0xFF - s[i+0]
			d[i+3] = 0xFF - s[i+3]
		}
	}
	return dst
}

// nrgbaToCMYK is the inverse of cmykToNRGBA.
func nrgbaToCMYK(src *image.NRGBA) *image.CMYK {
	b := src.Bounds()
	dst := image.NewCMYK(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		d := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			i := 4 * x
			d[i+0] = 0xFF - s[i+2]
			d[i+1] = 0xFF - s[i+1]
			d[i+2] = 0xFF - s[i+0]
			d[i+3] = 0xFF - s[i+3]
		}
	}
	return dst
}

// encodePhotographic appends an empty shared header and one self-contained
// JPEG stream per mip level to body, which starts at HeaderSize in the final
// file, and fills in hdr's AlphaDepth, Offsets and Sizes.
//
// Unlike files written by some legacy tools, the JPEG header is repeated in
// every level instead of being hoisted into the shared header. Decoders
// handle both layouts.
func encodePhotographic(hdr *Header, body []byte, base *image.NRGBA, o *EncodeOptions) ([]byte, error) {
	if hasTransparency(base) {
		hdr.AlphaDepth = 8
	}
	body = binary.LittleEndian.AppendUint32(body, 0)

	jo := &cmykjpeg.EncodeOptions{Quality: o.Quality}
	buf := &bytes.Buffer{}
	for level := range o.MipCount {
		m := levelImage(base, level, o.Scaler)
		buf.Reset()
		if err := cmykjpeg.Encode(buf, nrgbaToCMYK(m), jo); err != nil {
			return nil, fmt.Errorf("blp: mip level %d: %w", level, err)
		}
		hdr.Offsets[level] = uint32(HeaderSize + len(body))
		hdr.Sizes[level] = uint32(buf.Len())
		body = append(body, buf.Bytes()...)
	}
	return body, nil
}
