/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package request parses single line-list requests and emits the job
// scripts that drive the downstream selection programs.
package request

import (
	"strings"
)

const (
	// MaxLine is the significant length of an ordinary request line
	MaxLine = 80
	// MaxAbundLine is the significant length of an abundance line
	MaxAbundLine = 320
	// MaxSpeciesLine is the significant length of a species line
	MaxSpeciesLine = 255
)

// CompressLine strips whitespace and comments from a request line,
// retaining only the token characters [A-Za-z0-9:.,+-].  Only the
// first max bytes of the line are significant.
func CompressLine(s string, max int) string {
	if len(s) > max {
		s = s[:max]
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '#' {
			break
		}
		if isAlnum(c) || c == ':' || c == '.' || c == ',' || c == '-' || c == '+' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// CompressSpecies isolates a species token from a request line.  The
// accepted shapes are a bare name (TiO, C2, Fe), a name with a space
// separated spectrum number (Fe 2), and a name with a trailing charge
// marker (Fe+, Fe+1); the digits are appended directly to the name and
// the charge marker itself is dropped.
func CompressSpecies(s string) string {
	if len(s) > MaxSpeciesLine {
		s = s[:MaxSpeciesLine]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	i, n := 0, len(s)
	for i < n && isBlank(s[i]) {
		i++
	}
	if i == n {
		return ``
	}
	i1 := i
	for i < n && isAlnum(s[i]) {
		i++
	}
	name := s[i1:i]
	if name == `` {
		return ``
	}
	if i < n && s[i] == '+' {
		i++
	}
	for i < n && isBlank(s[i]) {
		i++
	}
	i1 = i
	for i < n && isDigit(s[i]) {
		i++
	}
	return name + s[i1:i]
}

// RemoveMeta replaces shell metacharacters in a string with spaces so
// it can be embedded in an emitted script
func RemoveMeta(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '&', '|', '>', '<', '"', '\n', '\r':
			return ' '
		}
		return r
	}, s)
}

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isBlank(c byte) bool { return c == ' ' || c == '\t' }

// numericLead reports whether a compressed token can open a numeric
// block: a digit, a dot, or an explicit sign
func numericLead(s string) bool {
	if s == `` {
		return false
	}
	return isDigit(s[0]) || s[0] == '.' || s[0] == '+' || s[0] == '-'
}
