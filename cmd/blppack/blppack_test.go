// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/nigeltao/blp/lib/blp"
)

func checkerboard(w int, h int) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 0xC0, G: 0x20, B: 0x20, A: 0xFF}
			if ((x ^ y) & 1) != 0 {
				c = color.NRGBA{R: 0x20, G: 0x20, B: 0xC0, A: 0xFF}
			}
			m.SetNRGBA(x, y, c)
		}
	}
	return m
}

func TestInfo(tt *testing.T) {
	data, err := blp.Marshal(checkerboard(4, 2), &blp.EncodeOptions{ContentType: blp.ContentTypeDirect})
	if err != nil {
		tt.Fatalf("Marshal: %v", err)
	}
	c, err := blp.Parse(data)
	if err != nil {
		tt.Fatalf("Parse: %v", err)
	}

	out := &bytes.Buffer{}
	if err := info(bytes.NewReader(data), out); err != nil {
		tt.Fatalf("info: %v", err)
	}
	got := out.String()

	for _, want := range []string{
		"content_type direct\n",
		"alpha_depth  0\n",
		"size         4x2\n",
		"extra        4\n",
		"has_mips     1\n",
	} {
		if !strings.Contains(got, want) {
			tt.Errorf("output %q does not contain %q", got, want)
		}
	}

	if n := strings.Count(got, "\nlevel "); n != 3 {
		tt.Errorf("level lines: got %d, want 3", n)
	}
	o, n := c.Header.Offsets[2], c.Header.Sizes[2]
	want := fmt.Sprintf("level  2     1x1 offset=%d size=%d xxhash=%016x\n", o, n, xxhash.Sum64(data[o:o+n]))
	if !strings.Contains(got, want) {
		tt.Errorf("output %q does not contain %q", got, want)
	}
}

func TestDecodeToPNG(tt *testing.T) {
	src := checkerboard(4, 4)
	data, err := blp.Marshal(src, &blp.EncodeOptions{ContentType: blp.ContentTypeDirect})
	if err != nil {
		tt.Fatalf("Marshal: %v", err)
	}

	out := &bytes.Buffer{}
	if err := decode(bytes.NewReader(data), out); err != nil {
		tt.Fatalf("decode: %v", err)
	}
	m, err := png.Decode(out)
	if err != nil {
		tt.Fatalf("png.Decode: %v", err)
	}
	if got, want := m.Bounds(), src.Bounds(); got != want {
		tt.Errorf("bounds: got %v, want %v", got, want)
	}
}

// glyphImage returns a size×size image of the digit d, drawn black on white
// in Go Italic.
func glyphImage(tt *testing.T, d byte, size int) *image.NRGBA {
	tt.Helper()
	f, err := opentype.Parse(goitalic.TTF)
	if err != nil {
		tt.Fatalf("opentype.Parse: %v", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size) * 7 / 8,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		tt.Fatalf("opentype.NewFace: %v", err)
	}
	defer face.Close()

	m := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(m, m.Bounds(), image.White, image.Point{}, draw.Src)
	dr := font.Drawer{
		Dst:  m,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(size/8, size*7/8),
	}
	dr.DrawString(string(rune(d)))
	return m
}

func TestEncodeGlyph(tt *testing.T) {
	src := glyphImage(tt, '7', 64)
	pngData := &bytes.Buffer{}
	if err := png.Encode(pngData, src); err != nil {
		tt.Fatalf("png.Encode: %v", err)
	}

	oldFormat := *formatFlag
	defer func() { *formatFlag = oldFormat }()

	for _, format := range []string{"direct", "jpeg"} {
		*formatFlag = format
		out := &bytes.Buffer{}
		if err := encode(bytes.NewReader(pngData.Bytes()), out); err != nil {
			tt.Errorf("format=%q: encode: %v", format, err)
			continue
		}

		c, err := blp.Parse(out.Bytes())
		if err != nil {
			tt.Errorf("format=%q: Parse: %v", format, err)
			continue
		}
		if got, want := c.NumLevels(), blp.AutoMipCount(64, 64); got != want {
			tt.Errorf("format=%q: NumLevels: got %d, want %d", format, got, want)
		}
		if c.Header.AlphaDepth != 0 {
			tt.Errorf("format=%q: AlphaDepth: got %d, want 0", format, c.Header.AlphaDepth)
		}

		m, err := c.Level(0)
		if err != nil {
			tt.Errorf("format=%q: Level(0): %v", format, err)
			continue
		}
		if got, want := m.Bounds(), src.Bounds(); got != want {
			tt.Errorf("format=%q: bounds: got %v, want %v", format, got, want)
			continue
		}

		total := 0
		for i := range src.Pix {
			d := int(m.Pix[i]) - int(src.Pix[i])
			total += max(d, -d)
		}
		if mean := total / len(src.Pix); mean > 8 {
			tt.Errorf("format=%q: mean absolute difference: got %d, want <= 8", format, mean)
		}
	}
}
