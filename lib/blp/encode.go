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
	"io"

	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// DefaultQuality is the JPEG quality used when EncodeOptions.Quality is zero.
const DefaultQuality = 80

// DefaultExtra is the Header.Extra value used when EncodeOptions.Extra is
// zero.
const DefaultExtra = 4

// EncodeOptions are optional arguments to Encode. The zero value is valid and
// means to use the default configuration.
type EncodeOptions struct {
	// If zero, the default is ContentTypeJPEG.
	ContentType ContentType

	// MipCount is the number of mip levels to write. If zero, the default is
	// AutoMipCount of the source size. Values above MaxMipLevels are clamped.
	MipCount int

	// Quality is the JPEG quality, in [1, 100], for ContentTypeJPEG. If zero,
	// the default is DefaultQuality.
	Quality int

	// AlphaDepth is the number of alpha bits per pixel for ContentTypeDirect:
	// 1, 4 or 8. If zero, the default is 8 when the source has any pixel that
	// is not fully opaque, and no alpha channel otherwise.
	//
	// It must be zero for ContentTypeJPEG, whose alpha is always stored as
	// the fourth JPEG component. The header then records 8 for a source with
	// any translucent pixel and 0 otherwise.
	AlphaDepth uint32

	// If zero, the default is DefaultExtra.
	Extra uint32

	// Scaler resizes the source image (and, for ContentTypeDirect, its alpha
	// channel) to each mip level's size. If nil, the default is
	// draw.CatmullRom.
	Scaler draw.Scaler

	// Quantizer builds the palette for ContentTypeDirect. If nil, the default
	// is a median cut quantizer.
	Quantizer draw.Quantizer

	// Dither is whether to use Floyd-Steinberg error diffusion when mapping
	// ContentTypeDirect pixels to palette indices.
	Dither bool
}

// resolve returns a copy of options with every zero field replaced by its
// default.
func (options *EncodeOptions) resolve(width int, height int) (EncodeOptions, error) {
	o := EncodeOptions{}
	if options != nil {
		o = *options
	}

	switch o.ContentType {
	case ContentTypeJPEG, ContentTypeDirect:
		// No-op.
	default:
		return o, fmt.Errorf("%w: content type %d", ErrBadArgument, uint32(o.ContentType))
	}

	if o.MipCount < 0 {
		return o, fmt.Errorf("%w: mip count %d", ErrBadArgument, o.MipCount)
	} else if o.MipCount == 0 {
		o.MipCount = AutoMipCount(width, height)
	} else if o.MipCount > MaxMipLevels {
		o.MipCount = MaxMipLevels
	}

	if o.Quality == 0 {
		o.Quality = DefaultQuality
	} else if (o.Quality < 1) || (o.Quality > 100) {
		return o, fmt.Errorf("%w: quality %d", ErrBadArgument, o.Quality)
	}

	if !validAlphaDepth(o.AlphaDepth) {
		return o, fmt.Errorf("%w: %d", ErrUnsupportedAlphaDepth, o.AlphaDepth)
	} else if (o.ContentType == ContentTypeJPEG) && (o.AlphaDepth != 0) {
		return o, fmt.Errorf("%w: alpha depth %d for jpeg content", ErrBadArgument, o.AlphaDepth)
	}
	if o.Extra == 0 {
		o.Extra = DefaultExtra
	}
	if o.Scaler == nil {
		o.Scaler = draw.CatmullRom
	}
	if o.Quantizer == nil {
		o.Quantizer = quantize.MedianCutQuantizer{}
	}
	return o, nil
}

// Marshal returns src encoded in the BLP1 format.
//
// options may be nil, which means to use the default configuration.
func Marshal(src image.Image, options *EncodeOptions) ([]byte, error) {
	if src == nil {
		return nil, ErrBadArgument
	}
	b := src.Bounds()
	bW, bH := b.Dx(), b.Dy()
	if (bW <= 0) || (bH <= 0) {
		return nil, fmt.Errorf("%w: empty image", ErrBadArgument)
	} else if (bW > maxDimension) || (bH > maxDimension) {
		return nil, ErrImageIsTooLarge
	}

	o, err := options.resolve(bW, bH)
	if err != nil {
		return nil, err
	}

	hdr := Header{
		ContentType: o.ContentType,
		Width:       uint32(bW),
		Height:      uint32(bH),
		Extra:       o.Extra,
		HasMips:     1,
	}
	base := toNRGBA(src)

	var body []byte
	switch o.ContentType {
	case ContentTypeDirect:
		body, err = encodePaletted(&hdr, body, base, &o)
	default:
		body, err = encodePhotographic(&hdr, body, base, &o)
	}
	if err != nil {
		return nil, err
	}

	dst := make([]byte, 0, HeaderSize+len(body))
	dst = hdr.AppendTo(dst)
	return append(dst, body...), nil
}

// Encode writes src to w in the BLP1 format. Nothing is written unless the
// whole file was encoded successfully.
//
// options may be nil, which means to use the default configuration.
func Encode(w io.Writer, src image.Image, options *EncodeOptions) error {
	if w == nil {
		return ErrBadArgument
	}
	data, err := Marshal(src, options)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// toNRGBA returns src as an *image.NRGBA whose bounds start at (0, 0) and
// whose stride is 4 times its width, copying it if necessary.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if m, ok := src.(*image.NRGBA); ok && (b.Min == image.Point{}) && (m.Stride == 4*b.Dx()) {
		return m
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// levelImage returns base resized to the given mip level. Level 0 is base
// itself.
func levelImage(base *image.NRGBA, level int, scaler draw.Scaler) *image.NRGBA {
	if level == 0 {
		return base
	}
	b := base.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, LevelSize(b.Dx(), level), LevelSize(b.Dy(), level)))
	scaler.Scale(dst, dst.Bounds(), base, b, draw.Src, nil)
	return dst
}
