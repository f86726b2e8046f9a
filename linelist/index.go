/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package linelist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	dirEntrySize = 8 + 8 + 4 + 4 //wl1, wl2, offset, length

	// maxDirEntries bounds descriptor files, a directory larger than
	// this is rejected as garbage
	maxDirEntries = 1 << 24
)

var (
	ErrShortDescriptor = errors.New("descriptor file is truncated")
	ErrBadDirectory    = errors.New("record directory is invalid")
	ErrNoIntersection  = errors.New("no records intersect the wavelength range")
)

// dirEntry describes one compressed record in the data file
type dirEntry struct {
	wlStart float64 //starting wavelength of the record
	wlEnd   float64 //ending wavelength of the record
	offset  uint32  //record offset in the data file
	length  int32   //compressed record length
}

// wavelengthIndex is the binary searchable record directory loaded
// from a descriptor file
type wavelengthIndex struct {
	entries []dirEntry
}

// loadIndex reads and validates a descriptor file: a little-endian
// uint32 record count followed by that many packed directory entries.
func loadIndex(p string, dataSize int64) (wi wavelengthIndex, err error) {
	var b []byte
	if b, err = os.ReadFile(p); err != nil {
		return
	}
	if len(b) < 4 {
		err = ErrShortDescriptor
		return
	}
	n := binary.LittleEndian.Uint32(b)
	if n > maxDirEntries {
		err = fmt.Errorf("%w: %d entries", ErrBadDirectory, n)
		return
	}
	if len(b) < 4+int(n)*dirEntrySize {
		err = ErrShortDescriptor
		return
	}
	ents := make([]dirEntry, n)
	for i := range ents {
		off := 4 + i*dirEntrySize
		ents[i] = dirEntry{
			wlStart: math.Float64frombits(binary.LittleEndian.Uint64(b[off:])),
			wlEnd:   math.Float64frombits(binary.LittleEndian.Uint64(b[off+8:])),
			offset:  binary.LittleEndian.Uint32(b[off+16:]),
			length:  int32(binary.LittleEndian.Uint32(b[off+20:])),
		}
	}
	if err = checkDirectory(ents, dataSize); err != nil {
		return
	}
	wi.entries = ents
	return
}

// checkDirectory enforces the directory invariants: wavelength ranges
// sorted, well formed, and non overlapping, every record within the
// data file.
func checkDirectory(ents []dirEntry, dataSize int64) error {
	for i := range ents {
		e := ents[i]
		if e.wlStart > e.wlEnd {
			return fmt.Errorf("%w: record %d range inverted", ErrBadDirectory, i)
		}
		if e.length <= 0 {
			return fmt.Errorf("%w: record %d length %d", ErrBadDirectory, i, e.length)
		}
		if int64(e.offset)+int64(e.length) > dataSize {
			return fmt.Errorf("%w: record %d exceeds data file", ErrBadDirectory, i)
		}
		if i > 0 {
			if ents[i-1].wlStart >= e.wlStart {
				return fmt.Errorf("%w: record %d not sorted", ErrBadDirectory, i)
			}
			if ents[i-1].wlEnd > e.wlStart {
				return fmt.Errorf("%w: record %d overlaps predecessor", ErrBadDirectory, i)
			}
		}
	}
	return nil
}

// find bisects the directory for the record serving wave1.  It returns
// the record whose closed range contains wave1 when one exists, else
// the first record above it.  ErrNoIntersection when [wave1, wave2]
// falls entirely outside the directory.
func (wi *wavelengthIndex) find(wave1, wave2 float64) (int, error) {
	n := len(wi.entries)
	if n == 0 {
		return 0, ErrNoIntersection
	}
	if wave1 > wi.entries[n-1].wlEnd || wave2 < wi.entries[0].wlStart {
		return 0, ErrNoIntersection
	}
	if wave1 < wi.entries[0].wlStart {
		return 0, nil
	}
	i, j := 0, n-1
	for j-i > 1 {
		k := (i + j) / 2
		if wave1 < wi.entries[k].wlStart {
			j = k
		} else {
			i = k
		}
	}
	if wave1 > wi.entries[i].wlEnd {
		return j, nil
	}
	return i, nil
}
