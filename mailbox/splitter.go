/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package mailbox demultiplexes a mailbox stream into individual
// request messages.  Messages are delimited by `From ` envelope lines;
// the sender address comes from the `From:` header.
package mailbox

import (
	"bufio"
	"io"
	"strings"

	"github.com/ivh/vald-ems/request"
)

const (
	envelopePrefix = `From `
	headerPrefix   = `From: `
	// continuation lines of a folded From: header are indented this far
	continuationIndent = `     `
)

// Message is one demultiplexed mail
type Message struct {
	Envelope        string   //the `From ` line, verbatim
	Address         string   //isolated sender address, empty when none found
	Lines           []string //everything after the envelope, verbatim
	HasBeginRequest bool
	HasEndRequest   bool
}

// Splitter walks a mailbox stream message by message
type Splitter struct {
	scn  *bufio.Scanner
	cur  *Message
	done bool
}

func NewSplitter(r io.Reader) *Splitter {
	scn := bufio.NewScanner(r)
	scn.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Splitter{scn: scn}
}

// Next returns the next complete message, io.EOF when the stream is
// exhausted.  Content before the first envelope line is discarded.
func (sp *Splitter) Next() (*Message, error) {
	if sp.done {
		return nil, io.EOF
	}
	for sp.scn.Scan() {
		ln := sp.scn.Text()
		if strings.HasPrefix(ln, envelopePrefix) {
			prev := sp.cur
			sp.cur = &Message{Envelope: ln}
			if prev != nil {
				return prev, nil
			}
			continue
		}
		if sp.cur == nil {
			continue //preamble junk before the first envelope
		}
		if strings.HasPrefix(ln, headerPrefix) {
			ln = sp.resolveHeader(ln)
		}
		sp.cur.addLine(ln)
	}
	if err := sp.scn.Err(); err != nil {
		return nil, err
	}
	sp.done = true
	if sp.cur != nil {
		m := sp.cur
		sp.cur = nil
		return m, nil
	}
	return nil, io.EOF
}

// resolveHeader isolates the sender address from a From: header.  A
// folded header is chased through its continuation lines until one
// carries the @ sign; the line the chase ends on replaces the header
// in the body copy.
func (sp *Splitter) resolveHeader(ln string) string {
	if !strings.Contains(ln, `@`) {
		for sp.scn.Scan() {
			ln = sp.scn.Text()
			if !strings.HasPrefix(ln, continuationIndent) {
				break
			}
			if strings.Contains(ln, `@`) {
				break
			}
		}
	}
	tail := ln
	if len(tail) > len(headerPrefix) {
		tail = tail[len(headerPrefix):]
	}
	sp.cur.Address = isolateAddress(tail)
	return ln
}

// addLine copies a body line and tracks the request markers on its
// compressed lowercased view
func (m *Message) addLine(ln string) {
	m.Lines = append(m.Lines, ln)
	s1 := strings.ToLower(request.CompressLine(ln, request.MaxLine))
	if strings.HasPrefix(s1, `beginrequest`) {
		m.HasBeginRequest = true
	}
	if strings.HasPrefix(s1, `endrequest`) {
		m.HasEndRequest = true
	}
}
