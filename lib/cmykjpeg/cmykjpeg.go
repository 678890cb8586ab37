// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package cmykjpeg reads and writes four-component (CMYK) baseline JPEG
// images.
//
// The Go standard library's image/jpeg package decodes four-component JPEGs
// but only encodes one- or three-component ones. This package's encoder
// compresses each plane with image/jpeg as a grayscale image and then splices
// the four single-component scans into one multi-scan, four-component JPEG
// stream, with an Adobe APP14 marker so that decoders treat it as CMYK.
//
// Like Adobe's own files, the stored samples are inverted: 0xFF means no ink.
// Decode undoes that inversion, so Decode(Encode(m)) approximates m.
package cmykjpeg

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"

	"golang.org/x/image/draw"
)

var (
	ErrBadArgument     = errors.New("cmykjpeg: bad argument")
	ErrMalformedStream = errors.New("cmykjpeg: malformed JPEG stream")
)

// Decode reads a JPEG image from r and returns its (c, m, y, k) planes.
//
// A four-component stream without an Adobe APP14 marker is read as inverted
// CMYK, the same as one whose marker says color transform 0. Images that are
// not four-component JPEGs are converted with the standard library's
// color.CMYKModel.
func Decode(r io.Reader) (*image.CMYK, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m, err := jpeg.Decode(bytes.NewReader(withAdobeMarker(data)))
	if err != nil {
		return nil, err
	}
	if c, ok := m.(*image.CMYK); ok {
		return c, nil
	}
	b := m.Bounds()
	c := image.NewCMYK(b)
	draw.Draw(c, b, m, b.Min, draw.Src)
	return c, nil
}

// DecodeConfig returns the dimensions of the JPEG image in r without decoding
// its scans. The color model is color.CMYKModel for four-component images.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return image.Config{}, err
	}
	return jpeg.DecodeConfig(bytes.NewReader(withAdobeMarker(data)))
}

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	// Quality is in [1, 100]. If zero, the default is jpeg.DefaultQuality.
	Quality int
}

// Encode writes m to w as a four-component baseline JPEG.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, m *image.CMYK, options *EncodeOptions) error {
	if (w == nil) || (m == nil) {
		return ErrBadArgument
	}
	b := m.Bounds()
	if b.Empty() || (b.Dx() > 0xFFFF) || (b.Dy() > 0xFFFF) {
		return ErrBadArgument
	}
	quality := jpeg.DefaultQuality
	if (options != nil) && (options.Quality != 0) {
		quality = options.Quality
	}
	if (quality < 1) || (quality > 100) {
		return ErrBadArgument
	}

	plane := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	scans := [4]grayStream{}
	for c := range scans {
		for y := 0; y < b.Dy(); y++ {
			s := m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):]
			d := plane.Pix[y*plane.Stride : (y*plane.Stride)+b.Dx()]
			for x := range d {
				d[x] = 0xFF - s[(4*x)+c]
			}
		}
		buf := &bytes.Buffer{}
		if err := jpeg.Encode(buf, plane, &jpeg.Options{Quality: quality}); err != nil {
			return err
		}
		s, err := parseGrayStream(buf.Bytes())
		if err != nil {
			return err
		}
		scans[c] = s
	}

	dst, err := splice(&scans, b.Dx(), b.Dy())
	if err != nil {
		return err
	}
	_, err = w.Write(dst)
	return err
}
