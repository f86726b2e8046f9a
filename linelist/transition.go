/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package linelist implements random access readers for the compressed
// VALD line list format.  A line list is a pair of files: a data file
// holding variable length LZW payloads, one per record, and a descriptor
// file holding a wavelength sorted directory of those records.  Each
// record decompresses to up to LinesPerRecord fixed width transitions.
package linelist

import (
	"encoding/binary"
	"math"
)

const (
	// LineLength is the uncompressed size of a single transition
	LineLength = 270
	// LinesPerRecord is the maximum transition count of one record
	LinesPerRecord = 1024
	// RecordLength is the uncompressed record size
	RecordLength = LineLength * LinesPerRecord

	// AncillaryLength is the size of the textual block trailing the
	// numeric fields of a transition
	AncillaryLength = 210

	// offsets of the three reference pointer words and the marker byte
	// within the 270 byte line
	multiRefMarkerOffset = 236
	refPointerOffset     = 237
)

// Transition is one spectral line as stored in a decompressed record.
// All numeric fields are little-endian in the file regardless of host.
type Transition struct {
	Wavelength float64 // vacuum wavelength
	Species    int32   // element and ionisation stage code
	LogGf      float32
	ELower     float64
	JLower     float32
	EUpper     float64
	JUpper     float32
	LandeLower float32
	LandeUpper float32
	GammaRad   float32
	GammaStark float32
	GammaVdW   float32
	Ancillary  [AncillaryLength]byte
}

// decodeLine unpacks one LineLength sized buffer into a Transition.
// The caller guarantees len(b) >= LineLength.
func decodeLine(b []byte) (t Transition) {
	t.Wavelength = math.Float64frombits(binary.LittleEndian.Uint64(b))
	t.Species = int32(binary.LittleEndian.Uint32(b[8:]))
	t.LogGf = math.Float32frombits(binary.LittleEndian.Uint32(b[12:]))
	t.ELower = math.Float64frombits(binary.LittleEndian.Uint64(b[16:]))
	t.JLower = math.Float32frombits(binary.LittleEndian.Uint32(b[24:]))
	t.EUpper = math.Float64frombits(binary.LittleEndian.Uint64(b[28:]))
	t.JUpper = math.Float32frombits(binary.LittleEndian.Uint32(b[36:]))
	t.LandeLower = math.Float32frombits(binary.LittleEndian.Uint32(b[40:]))
	t.LandeUpper = math.Float32frombits(binary.LittleEndian.Uint32(b[44:]))
	t.GammaRad = math.Float32frombits(binary.LittleEndian.Uint32(b[48:]))
	t.GammaStark = math.Float32frombits(binary.LittleEndian.Uint32(b[52:]))
	t.GammaVdW = math.Float32frombits(binary.LittleEndian.Uint32(b[56:]))
	copy(t.Ancillary[:], b[60:LineLength])
	return
}

// HasMultipleRefs reports whether the transition carries more than one
// bibliographic reference.  The marker is the byte at line offset 236:
// anything below ASCII '0' flags a multi reference entry.
func (t *Transition) HasMultipleRefs() bool {
	return t.Ancillary[multiRefMarkerOffset-60] < '0'
}

// RefPointers returns the three reference pointer words of a multi
// reference transition.  The words are stored little-endian at line
// offsets 237-242; decoding them explicitly keeps the result identical
// on any host.  The values are meaningless unless HasMultipleRefs.
func (t *Transition) RefPointers() (p [3]uint16) {
	off := refPointerOffset - 60
	for i := range p {
		p[i] = binary.LittleEndian.Uint16(t.Ancillary[off+2*i:])
	}
	return
}
