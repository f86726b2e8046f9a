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
)

// The record payloads are compressed with a GIF style variable width
// LZW scheme over an 8 bit alphabet: codes are packed LSB first, the
// width starts at 9 bits and grows to 16, CLEAR resets the dictionary
// and the next code is emitted literally.

const (
	dataWidth    = 8
	clearCode    = 1 << dataWidth //256
	eopCode      = clearCode + 1  //257
	firstFree    = clearCode + 2  //258
	initCodeSize = dataWidth + 1  //9 bit codes after a clear
	maxCodeSize  = 16
	hsize        = 1 << maxCodeSize
	bitMask      = 0xFF
)

var (
	ErrCorrupt   = errors.New("compressed record is corrupt")
	ErrTruncated = errors.New("compressed record is truncated")
)

// decompressor holds the full LZW scratch state.  Each reader owns one
// so that multiple readers can decode concurrently.
type decompressor struct {
	prefix  [hsize]uint16
	suffix  [hsize]uint16
	outCode [hsize + 1]uint16 //LIFO output stack

	src       []byte
	cur       int    //next byte of src
	last      uint32 //most recently consumed byte, high bits feed the next code
	bitOffset int    //bit offset into last, -1 primes the first read
	codeSize  int
	maxCode   uint32
	readMask  uint32
	freeCode  uint32

	line   [LineLength]byte
	nbytes int
	out    []Transition
}

func newDecompressor() *decompressor {
	return &decompressor{}
}

// readCode pulls the next codeSize bits from the source stream
func (d *decompressor) readCode() (uint16, error) {
	if d.bitOffset < 0 {
		if d.cur >= len(d.src) {
			return 0, ErrTruncated
		}
		d.last = uint32(d.src[d.cur])
		d.cur++
		d.bitOffset = 0
	}
	raw := d.last & 0xFF
	if d.codeSize+d.bitOffset >= 8 {
		if d.cur >= len(d.src) {
			return 0, ErrTruncated
		}
		b := uint32(d.src[d.cur])
		d.cur++
		raw += b << 8
		d.last = b
	}
	if d.codeSize+d.bitOffset >= 16 {
		if d.cur >= len(d.src) {
			return 0, ErrTruncated
		}
		b := uint32(d.src[d.cur])
		d.cur++
		raw += b << 16
		d.last = b
	}
	raw >>= uint(d.bitOffset)
	d.bitOffset = (d.bitOffset + d.codeSize) % 8
	return uint16(raw & d.readMask), nil
}

// addByte accumulates decompressed bytes into the line buffer and
// flushes one transition every LineLength bytes
func (d *decompressor) addByte(c byte) {
	d.line[d.nbytes] = c
	d.nbytes++
	if d.nbytes == LineLength {
		d.out = append(d.out, decodeLine(d.line[:]))
		d.nbytes = 0
	}
}

func (d *decompressor) reset(src []byte) {
	d.src = src
	d.cur = 0
	d.bitOffset = -1
	d.nbytes = 0
	d.out = d.out[:0]
	d.codeSize = initCodeSize
	d.maxCode = 1 << initCodeSize
	d.readMask = d.maxCode - 1
	d.freeCode = firstFree
}

// run decodes one compressed record payload into transitions.  The
// returned slice is owned by the decompressor and valid until the next
// call.
func (d *decompressor) run(src []byte) ([]Transition, error) {
	d.reset(src)

	var oldCode, finChar uint32
	code := uint32(clearCode)
	for l := 0; l < len(src); l++ {
		if code == clearCode {
			//clear resets the dictionary and code width, then the
			//next code is emitted as a raw character
			d.codeSize = initCodeSize
			d.maxCode = 1 << initCodeSize
			d.readMask = d.maxCode - 1
			d.freeCode = firstFree
			c, err := d.readCode()
			if err != nil {
				return nil, err
			}
			code = uint32(c)
			oldCode = code
			finChar = code & bitMask
			d.addByte(byte(finChar))
		} else {
			//a full dictionary without an intervening clear means the
			//stream is corrupt
			if d.freeCode >= hsize {
				return nil, ErrCorrupt
			}
			curCode := code
			inCode := code

			outCount := 0
			if curCode >= d.freeCode {
				//KwKwK: not in the table yet, repeat the last
				//character decoded
				curCode = oldCode
				d.outCode[outCount] = uint16(finChar)
				outCount++
			}
			//walk the prefix chain, stacking suffix bytes LIFO
			for curCode > bitMask {
				if outCount > hsize {
					return nil, ErrCorrupt
				}
				d.outCode[outCount] = d.suffix[curCode]
				outCount++
				curCode = uint32(d.prefix[curCode])
			}
			finChar = curCode & bitMask
			d.outCode[outCount] = uint16(finChar)
			outCount++

			for i := outCount - 1; i >= 0; i-- {
				d.addByte(byte(d.outCode[i]))
			}

			//grow the dictionary, widening the code once the current
			//width is exhausted
			d.prefix[d.freeCode] = uint16(oldCode)
			d.suffix[d.freeCode] = uint16(finChar)
			oldCode = inCode
			d.freeCode++
			if d.freeCode >= d.maxCode && d.codeSize < maxCodeSize {
				d.codeSize++
				d.maxCode *= 2
				d.readMask = (1 << uint(d.codeSize)) - 1
			}
		}
		c, err := d.readCode()
		if err != nil {
			return nil, err
		}
		code = uint32(c)
		if code == eopCode {
			break
		}
	}
	return d.out, nil
}
