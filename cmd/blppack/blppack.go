// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// ----------------

// blppack decodes and encodes the BLP1 texture file format.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/cespare/xxhash/v2"

	"github.com/nigeltao/blp/internal/nie"
	"github.com/nigeltao/blp/lib/blp"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	decodeFlag  = flag.Bool("decode", false, "whether to decode the input")
	encodeFlag  = flag.Bool("encode", false, "whether to encode the input")
	infoFlag    = flag.Bool("info", false, "whether to print the input's header")
	outputFlag  = flag.String("output", "", "output format")
	levelFlag   = flag.Int("level", 0, "mip level to decode")
	formatFlag  = flag.String("format", "", "content type to encode: jpeg or direct")
	mipsFlag    = flag.Int("mips", 0, "number of mip levels to encode (0 means all)")
	qualityFlag = flag.Int("quality", 0, "JPEG quality, 1 to 100 (0 means the default)")
	alphaFlag   = flag.Uint("alpha", 0, "direct alpha depth: 1, 4 or 8 (0 means automatic)")
	ditherFlag  = flag.Bool("dither", false, "whether to dither direct palette indices")
	verboseFlag = flag.Bool("v", false, "whether to log details to stderr")
)

const usageStr = `blppack decodes and encodes the BLP1 texture file format.

Usage: choose one of

    blppack -decode [path]
    blppack -encode [path]
    blppack -info   [path]

The path to the input image file is optional. If omitted, stdin is read.

When decoding you can also pass these flags (before the path):

    -level=N (the mip level, default 0, clamped to the last stored level)
    -output=nie-bn8
    -output=png (this is the default)

When encoding you can also pass these flags (before the path):

    -format=direct (paletted)
    -format=jpeg (this is the default)
    -mips=N (default: down to 1x1)
    -quality=Q (jpeg only, default 80)
    -alpha=0|1|4|8 (direct only, default: 8 if there is transparency, else 0)
    -dither (direct only)

The output image (in NIE/PNG, BLP or text format) is written to stdout.

Decode inputs BLP and outputs NIE/PNG.
Encode inputs BMP, GIF, JPEG, PNG, TIFF or WEBP and outputs BLP.
Info inputs BLP and outputs its header and per-level payload digests.

Pass -v to log per-level details to stderr.
`

var (
	ErrBadFormatFlag = errors.New("main: bad -format flag")
	ErrBadOutputFlag = errors.New("main: bad -output flag")
)

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	log.SetLevel(log.WarnLevel)
	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	inFile := os.Stdin
	switch flag.NArg() {
	case 0:
		// No-op.
	case 1:
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		inFile = f
	default:
		return errors.New("too many filenames; the maximum is one")
	}

	switch {
	case *decodeFlag && !*encodeFlag && !*infoFlag:
		return decode(inFile, os.Stdout)
	case !*decodeFlag && *encodeFlag && !*infoFlag:
		return encode(inFile, os.Stdout)
	case !*decodeFlag && !*encodeFlag && *infoFlag:
		return info(inFile, os.Stdout)
	}
	return errors.New("must specify exactly one of -decode, -encode, -info or -help")
}

func decode(r io.Reader, w io.Writer) error {
	switch *outputFlag {
	case "", "nie-bn8", "png":
		// No-op.
	default:
		return ErrBadOutputFlag
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c, err := blp.Parse(data)
	if err != nil {
		return err
	}
	level := blp.ClampLevel(*levelFlag, &c.Header.Sizes)
	log.WithFields(log.Fields{
		"content_type": c.Header.ContentType,
		"requested":    *levelFlag,
		"level":        level,
		"levels":       c.NumLevels(),
	}).Debug("decoding")

	src, err := c.Level(level)
	if err != nil {
		return err
	}
	if *outputFlag == "nie-bn8" {
		dst, err := nie.EncodeBN8(src)
		if err != nil {
			return err
		}
		_, err = w.Write(dst)
		return err
	}
	return png.Encode(w, src)
}

func encode(r io.Reader, w io.Writer) error {
	o := &blp.EncodeOptions{
		MipCount:   *mipsFlag,
		Quality:    *qualityFlag,
		AlphaDepth: uint32(*alphaFlag),
		Dither:     *ditherFlag,
	}
	switch *formatFlag {
	case "", "jpeg":
		o.ContentType = blp.ContentTypeJPEG
	case "direct":
		o.ContentType = blp.ContentTypeDirect
	default:
		return ErrBadFormatFlag
	}

	src, srcFormat, err := image.Decode(r)
	if err != nil {
		return err
	}
	data, err := blp.Marshal(src, o)
	if err != nil {
		return err
	}

	if *verboseFlag {
		if c, err := blp.Parse(data); err == nil {
			log.WithFields(log.Fields{
				"source_format": srcFormat,
				"content_type":  c.Header.ContentType,
				"alpha_depth":   c.Header.AlphaDepth,
				"levels":        c.NumLevels(),
				"bytes":         len(data),
			}).Debug("encoded")
			for level := range c.NumLevels() {
				log.WithFields(log.Fields{
					"level":  level,
					"offset": c.Header.Offsets[level],
					"size":   c.Header.Sizes[level],
				}).Debug("mip level")
			}
		}
	}
	_, err = w.Write(data)
	return err
}

func info(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	c, err := blp.Parse(data)
	if err != nil {
		return err
	}
	h := &c.Header

	fmt.Fprintf(w, "content_type %v\n", h.ContentType)
	fmt.Fprintf(w, "alpha_depth  %d\n", h.AlphaDepth)
	fmt.Fprintf(w, "size         %dx%d\n", h.Width, h.Height)
	fmt.Fprintf(w, "extra        %d\n", h.Extra)
	fmt.Fprintf(w, "has_mips     %d\n", h.HasMips)
	for level := range c.NumLevels() {
		o, n := int(h.Offsets[level]), int(h.Sizes[level])
		digest := "truncated"
		if (o <= len(data)) && (n <= (len(data) - o)) {
			digest = fmt.Sprintf("%016x", xxhash.Sum64(data[o:o+n]))
		}
		fmt.Fprintf(w, "level %2d     %dx%d offset=%d size=%d xxhash=%s\n",
			level,
			blp.LevelSize(int(h.Width), level),
			blp.LevelSize(int(h.Height), level),
			o, n, digest)
	}
	return nil
}
