/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package linelist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	// MaxOpenReaders caps simultaneously open readers per process
	MaxOpenReaders = 400
)

var (
	ErrReaderClosed   = errors.New("reader is closed")
	ErrTooManyReaders = errors.New("too many open readers")
	ErrPastEnd        = errors.New("no record follows the last read")
	ErrBadRange       = errors.New("wavelength range is inverted")

	openMtx   sync.Mutex
	openCount int
)

// Reader serves range queries against one data and descriptor file
// pair.  A reader owns its directory and decompression scratch state,
// it is safe to use many readers concurrently but a single reader must
// not be shared between goroutines.
type Reader struct {
	data *os.File
	idx  wavelengthIndex
	cur  int //record the next ReadNext will consume
	dec  *decompressor
	cbuf []byte //compressed record scratch
}

// Open loads and validates the descriptor index and opens the data
// file for random reads.
func Open(dataPath, descPath string) (*Reader, error) {
	openMtx.Lock()
	if openCount >= MaxOpenReaders {
		openMtx.Unlock()
		return nil, ErrTooManyReaders
	}
	openCount++
	openMtx.Unlock()

	r, err := open(dataPath, descPath)
	if err != nil {
		openMtx.Lock()
		openCount--
		openMtx.Unlock()
	}
	return r, err
}

func open(dataPath, descPath string) (*Reader, error) {
	data, err := os.Open(dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	fi, err := data.Stat()
	if err != nil {
		data.Close()
		return nil, err
	}
	idx, err := loadIndex(descPath, fi.Size())
	if err != nil {
		data.Close()
		return nil, fmt.Errorf("failed to load descriptor: %w", err)
	}
	var maxLen int32
	for i := range idx.entries {
		if l := idx.entries[i].length; l > maxLen {
			maxLen = l
		}
	}
	return &Reader{
		data: data,
		idx:  idx,
		dec:  newDecompressor(),
		cbuf: make([]byte, maxLen),
	}, nil
}

// Count returns the number of records in the directory
func (r *Reader) Count() int {
	return len(r.idx.entries)
}

// ReadRange positions the reader at the first record overlapping
// [wlMin, wlMax], decompresses it, and returns the transitions whose
// wavelength falls inside the closed range.  The cursor is left on the
// following record so ReadNext continues the sweep.
func (r *Reader) ReadRange(wlMin, wlMax float64) ([]Transition, error) {
	if r.data == nil {
		return nil, ErrReaderClosed
	}
	if wlMin > wlMax {
		return nil, ErrBadRange
	}
	k, err := r.idx.find(wlMin, wlMax)
	if err != nil {
		return nil, err
	}
	ent := r.idx.entries[k]
	if _, err = r.data.Seek(int64(ent.offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek failed: %w", err)
	}
	lines, err := r.readRecord(ent)
	if err != nil {
		return nil, err
	}
	r.cur = k + 1

	//filter in place to the requested closed range
	kept := lines[:0]
	for _, t := range lines {
		if t.Wavelength >= wlMin && t.Wavelength <= wlMax {
			kept = append(kept, t)
		}
	}
	out := make([]Transition, len(kept))
	copy(out, kept)
	return out, nil
}

// ReadNext decompresses the record following the most recently read
// one without re-positioning and returns all of its transitions.
func (r *Reader) ReadNext() ([]Transition, error) {
	if r.data == nil {
		return nil, ErrReaderClosed
	}
	if r.cur >= len(r.idx.entries) {
		return nil, ErrPastEnd
	}
	lines, err := r.readRecord(r.idx.entries[r.cur])
	if err != nil {
		return nil, err
	}
	r.cur++
	out := make([]Transition, len(lines))
	copy(out, lines)
	return out, nil
}

// readRecord reads one compressed payload from the current file
// position and decompresses it
func (r *Reader) readRecord(ent dirEntry) ([]Transition, error) {
	buf := r.cbuf[:ent.length]
	if _, err := io.ReadFull(r.data, buf); err != nil {
		return nil, fmt.Errorf("short record read: %w", err)
	}
	return r.dec.run(buf)
}

// Close releases the directory, the data handle and the scratch
// buffers.  A reader must not be used after Close.
func (r *Reader) Close() error {
	if r.data == nil {
		return ErrReaderClosed
	}
	err := r.data.Close()
	r.data = nil
	r.idx.entries = nil
	r.dec = nil
	r.cbuf = nil
	openMtx.Lock()
	openCount--
	openMtx.Unlock()
	return err
}
