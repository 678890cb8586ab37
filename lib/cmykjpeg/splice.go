// Copyright 2025 The Blp Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

package cmykjpeg

import (
	"bytes"
	"fmt"
)

const (
	sof0Marker  = 0xC0
	dhtMarker   = 0xC4
	rst0Marker  = 0xD0
	rst7Marker  = 0xD7
	soiMarker   = 0xD8
	eoiMarker   = 0xD9
	sosMarker   = 0xDA
	dqtMarker   = 0xDB
	app14Marker = 0xEE
)

// adobeAPP14 is an Adobe APP14 segment with color transform 0, meaning that
// the components are stored as is (not as YCbCr or YCCK).
var adobeAPP14 = []byte{
	0xFF, app14Marker, 0x00, 0x0E,
	'A', 'd', 'o', 'b', 'e',
	0x00, 0x64, // Version.
	0x00, 0x00, // Flags0.
	0x00, 0x00, // Flags1.
	0x00, // Transform.
}

// grayStream holds the pieces of a single-component baseline JPEG, as
// written by image/jpeg, that are needed to rebuild it as one scan of a
// multi-component image.
type grayStream struct {
	dqt     []byte // Every DQT segment, concatenated.
	dht     []byte // Every DHT segment, concatenated.
	tq      byte   // The quantization table selector from the SOF0 segment.
	sos     []byte // The SOS segment.
	entropy []byte // The entropy-coded data after the SOS segment.
}

func parseGrayStream(b []byte) (s grayStream, retErr error) {
	if (len(b) < 2) || (b[0] != 0xFF) || (b[1] != soiMarker) {
		return grayStream{}, fmt.Errorf("%w: missing SOI marker", ErrMalformedStream)
	}

	for i := 2; ; {
		if ((i + 4) > len(b)) || (b[i] != 0xFF) {
			return grayStream{}, fmt.Errorf("%w: bad marker at offset %d", ErrMalformedStream, i)
		}
		marker := b[i+1]
		n := (int(b[i+2]) << 8) | int(b[i+3])
		if (n < 2) || ((i + 2 + n) > len(b)) {
			return grayStream{}, fmt.Errorf("%w: bad segment length at offset %d", ErrMalformedStream, i)
		}
		seg := b[i : i+2+n]
		i += 2 + n

		switch marker {
		case dqtMarker:
			s.dqt = append(s.dqt, seg...)

		case dhtMarker:
			s.dht = append(s.dht, seg...)

		case sof0Marker:
			// FF C0 Lh Ll P Yh Yl Xh Xl Nf C1 H1V1 Tq1
			if (len(seg) != 13) || (seg[9] != 1) {
				return grayStream{}, fmt.Errorf("%w: not a single-component SOF0", ErrMalformedStream)
			}
			s.tq = seg[12]

		case sosMarker:
			// FF DA Lh Ll Ns Cs1 Td1Ta1 Ss Se AhAl
			if (len(seg) != 10) || (seg[4] != 1) {
				return grayStream{}, fmt.Errorf("%w: not a single-component SOS", ErrMalformedStream)
			}
			end := scanEnd(b, i)
			if end < 0 {
				return grayStream{}, fmt.Errorf("%w: unterminated scan", ErrMalformedStream)
			}
			s.sos = seg
			s.entropy = b[i:end]
			return s, nil
		}
	}
}

// withAdobeMarker returns b with adobeAPP14 inserted after the SOI marker if
// b is a four-component JPEG that has no APP14 segment before its first scan.
// Otherwise, or if b is malformed, it returns b unchanged.
func withAdobeMarker(b []byte) []byte {
	if (len(b) < 2) || (b[0] != 0xFF) || (b[1] != soiMarker) {
		return b
	}
	nComponents := 0
	for i := 2; ((i + 4) <= len(b)) && (b[i] == 0xFF); {
		marker := b[i+1]
		if marker == 0xFF {
			i++
			continue
		} else if (marker == 0x01) || ((marker >= rst0Marker) && (marker <= rst7Marker)) {
			i += 2
			continue
		}
		switch {
		case marker == app14Marker:
			return b
		case marker == sosMarker:
			if nComponents != 4 {
				return b
			}
			dst := make([]byte, 0, len(b)+len(adobeAPP14))
			dst = append(dst, b[:2]...)
			dst = append(dst, adobeAPP14...)
			return append(dst, b[2:]...)
		case (marker >= sof0Marker) && (marker <= 0xCF) &&
			(marker != dhtMarker) && (marker != 0xC8) && (marker != 0xCC):
			if (i + 10) <= len(b) {
				nComponents = int(b[i+9])
			}
		}
		i += 2 + ((int(b[i+2]) << 8) | int(b[i+3]))
	}
	return b
}

// scanEnd returns the offset of the first marker at or after i that is not a
// stuffed 0xFF byte or a restart marker, or -1 if there is no such marker.
func scanEnd(b []byte, i int) int {
	for ; (i + 1) < len(b); i++ {
		if b[i] != 0xFF {
			continue
		}
		if m := b[i+1]; (m != 0x00) && ((m < rst0Marker) || (m > rst7Marker)) {
			return i
		}
	}
	return -1
}

// splice combines four single-component streams into one four-component
// baseline JPEG with one non-interleaved scan per component. The components
// are numbered 1 to 4 and all share the first stream's tables.
func splice(scans *[4]grayStream, width int, height int) ([]byte, error) {
	s0 := &scans[0]
	for i := 1; i < len(scans); i++ {
		s := &scans[i]
		if !bytes.Equal(s.dqt, s0.dqt) || !bytes.Equal(s.dht, s0.dht) || (s.tq != s0.tq) {
			return nil, fmt.Errorf("%w: component %d tables differ", ErrMalformedStream, i+1)
		}
	}

	n := 2 + len(adobeAPP14) + len(s0.dqt) + 20 + len(s0.dht) + 2
	for i := range scans {
		n += len(scans[i].sos) + len(scans[i].entropy)
	}
	dst := make([]byte, 0, n)

	dst = append(dst, 0xFF, soiMarker)
	dst = append(dst, adobeAPP14...)
	dst = append(dst, s0.dqt...)
	dst = append(dst,
		0xFF, sof0Marker,
		0x00, uint8(8+(3*len(scans))),
		0x08,
		uint8(height>>8), uint8(height>>0),
		uint8(width>>8), uint8(width>>0),
		uint8(len(scans)),
	)
	for i := range scans {
		dst = append(dst, uint8(i+1), 0x11, s0.tq)
	}
	dst = append(dst, s0.dht...)

	for i := range scans {
		s := &scans[i]
		j := len(dst)
		dst = append(dst, s.sos...)
		dst[j+5] = uint8(i + 1)
		dst = append(dst, s.entropy...)
	}
	return append(dst, 0xFF, eoiMarker), nil
}
