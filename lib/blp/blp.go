// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// Package blp implements the BLP1 texture container format.
//
// A BLP1 file holds a base image and up to 16 precomputed mip levels. The
// pixels are stored either as 8-bit palette indices (with an optional packed
// alpha channel) or as baseline JPEG scan data whose four channels are the
// inverted blue, green, red and alpha planes.
//
// The whole input is buffered and every position inside it is computed as an
// absolute offset, so the header, the palette and each level's payload can be
// read in any order.
package blp

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
)

// Magic is the byte string prefix of every BLP1 image file.
const Magic = "BLP1"

func init() {
	image.RegisterFormat("blp", Magic, Decode, DecodeConfig)
}

var (
	ErrBadArgument           = errors.New("blp: bad argument")
	ErrNotABLPFile           = errors.New("blp: not a BLP1 file")
	ErrImageIsTooLarge       = errors.New("blp: image is too large")
	ErrUnsupportedAlphaDepth = errors.New("blp: unsupported alpha depth")
)

// UnsupportedContentTypeError is returned for a header whose content type is
// neither ContentTypeJPEG nor ContentTypeDirect.
type UnsupportedContentTypeError uint32

func (e UnsupportedContentTypeError) Error() string {
	return fmt.Sprintf("blp: unsupported content type %d", uint32(e))
}

// TruncatedDataError is returned when the input is too short to hold a
// field, table or payload.
type TruncatedDataError struct {
	// Offset is the absolute byte offset where the missing data starts.
	Offset int
	// Length is the number of bytes that were needed at Offset.
	Length int
	// Available is the total length of the input.
	Available int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("blp: truncated data: need %d bytes at offset %d, have %d in total",
		e.Length, e.Offset, e.Available)
}

// Unwrap lets errors.Is(err, io.ErrUnexpectedEOF) match a TruncatedDataError.
func (e *TruncatedDataError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// slice returns data[offset:offset+length], or a TruncatedDataError.
func slice(data []byte, offset int, length int) ([]byte, error) {
	if (offset < 0) || (length < 0) || (offset > len(data)) || (length > (len(data) - offset)) {
		return nil, &TruncatedDataError{Offset: offset, Length: length, Available: len(data)}
	}
	return data[offset : offset+length], nil
}

// maxDimension and maxPixels bound the size of a single level.
const (
	maxDimension = 65535
	maxPixels    = 1 << 26
)

// content is the per-content-type part of a parsed container. It is chosen
// once, right after the header is parsed.
type content interface {
	decodeLevel(c *Container, level int) (*image.NRGBA, error)
}

// Container is a parsed BLP1 file. It is immutable and may be shared by
// concurrent callers of Level.
type Container struct {
	Header Header

	data    []byte
	content content
}

// Parse parses the header and the shared content-type-specific data (the
// palette or the shared JPEG header) of a BLP1 file. The per-level payloads
// are not touched until Level is called. data is retained, not copied.
func Parse(data []byte) (*Container, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	c := &Container{Header: h, data: data}
	switch h.ContentType {
	case ContentTypeDirect:
		c.content, err = parsePaletted(data, &c.Header)
	case ContentTypeJPEG:
		c.content, err = parsePhotographic(data)
	default:
		err = UnsupportedContentTypeError(h.ContentType)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NumLevels returns the number of mip levels that hold data, which is
// MaxValidLevel plus one.
func (c *Container) NumLevels() int {
	return MaxValidLevel(&c.Header.Sizes) + 1
}

// Level decodes one mip level. A level above the highest valid level is
// clamped down to it, and a negative level is treated as 0.
func (c *Container) Level(level int) (*image.NRGBA, error) {
	if c.NumLevels() == 0 {
		return nil, fmt.Errorf("%w: no mip level data", ErrNotABLPFile)
	}
	level = ClampLevel(level, &c.Header.Sizes)
	w := LevelSize(int(c.Header.Width), level)
	h := LevelSize(int(c.Header.Height), level)
	if (w > maxDimension) || (h > maxDimension) || (w*h > maxPixels) {
		return nil, ErrImageIsTooLarge
	}
	return c.content.decodeLevel(c, level)
}

// DecodeLevel decodes the given mip level of the BLP1 file held in data.
func DecodeLevel(data []byte, level int) (*image.NRGBA, error) {
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return c.Level(level)
}

// Decode reads a BLP1 image from r, returning its base (largest) level.
func Decode(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m, err := DecodeLevel(data, 0)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeConfig reads a BLP1 image configuration from r. Only the fixed size
// header is read.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buf := [HeaderSize]byte{}
	if n, err := io.ReadFull(r, buf[:]); err != nil {
		if (err == io.ErrUnexpectedEOF) || (err == io.EOF) {
			return image.Config{}, &TruncatedDataError{Offset: 0, Length: HeaderSize, Available: n}
		}
		return image.Config{}, err
	}
	h, err := ParseHeader(buf[:])
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}
