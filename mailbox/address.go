/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package mailbox

import (
	"strings"
)

// The From: header arrives in several shapes:
//
//	From: name@address
//	From: alias ... <name@address>
//	From: "alias" <name@address>
//	From: name@address (alias)
//	From: alias
//	      <name@address>
//
// isolateAddress reduces the text after the header tag to the bare
// address.  An empty result means no usable address; the registry
// check kills such requests downstream.
func isolateAddress(s string) string {
	s = swallowQuotes(s, '"', '"')
	s = swallowQuotes(s, '(', ')')
	if i := strings.IndexByte(s, '>'); i >= 0 {
		s = s[:i]
	} else if i = strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '<'); i >= 0 {
		s = s[i+1:]
	}
	//trailing mail server name, path prefixes, and UUCP bangs
	if i := strings.LastIndexByte(s, '>'); i >= 0 {
		s = s[:i]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, '!'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// swallowQuotes drops the spans enclosed by the quote pair.  A span
// left open swallows the whole string, mirroring an unbalanced alias.
func swallowQuotes(s string, open, close byte) string {
	var sb strings.Builder
	quote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == open && !quote:
			quote = true
		case c == close && quote:
			quote = false
		case !quote:
			sb.WriteByte(c)
		}
	}
	if quote {
		return ``
	}
	return sb.String()
}
