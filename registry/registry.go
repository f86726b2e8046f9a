/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package registry resolves sender addresses against the client
// registers.  A register is a plain text file: lines opening with `#$`
// name a client, the non-comment lines that follow are lowercase
// address prefixes belonging to that client.
package registry

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

const (
	// LocalSuffix marks a client resolved through the local register
	LocalSuffix = `_local`
	// MirrorClient is the reserved client name of peer VALD sites
	MirrorClient = `VALDMirrorSite`
)

var (
	ErrNoRegisters = errors.New("no client register could be opened")
)

type entry struct {
	prefix string //lowercased address prefix
	client string
}

// Register is one loaded client register
type Register struct {
	entries []entry
}

// LoadRegister reads a register file
func LoadRegister(p string) (*Register, error) {
	fin, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer fin.Close()

	var r Register
	var client string
	scn := bufio.NewScanner(fin)
	for scn.Scan() {
		ln := scn.Text()
		if strings.HasPrefix(ln, `#`) {
			if !strings.HasPrefix(ln, `#$`) {
				continue //plain comment
			}
			client = clientName(ln[2:])
			continue
		}
		p := strings.ToLower(strings.TrimSpace(ln))
		if p == `` || client == `` {
			//a prefix with no named client cannot authenticate anyone
			continue
		}
		r.entries = append(r.entries, entry{prefix: p, client: client})
	}
	if err = scn.Err(); err != nil {
		return nil, err
	}
	return &r, nil
}

// clientName squeezes a `#$` naming line down to its alphabetic
// characters: "#$ VALD Mirror Site" becomes "VALDMirrorSite"
func clientName(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Lookup matches an address against the register using prefix
// equality over the shorter of the address and the entry
func (r *Register) Lookup(address string) (string, bool) {
	a := strings.ToLower(address)
	for i := range r.entries {
		p := r.entries[i].prefix
		n := len(a)
		if len(p) < n {
			n = len(p)
		}
		if n > 0 && a[:n] == p[:n] {
			return r.entries[i].client, true
		}
	}
	return ``, false
}

// Authenticator consults the global register, then the local one
type Authenticator struct {
	global *Register
	local  *Register
}

// NewAuthenticator loads the registers.  Either may be missing, both
// missing is an error.
func NewAuthenticator(globalPath, localPath string) (*Authenticator, error) {
	var a Authenticator
	var gerr, lerr error
	if globalPath != `` {
		a.global, gerr = LoadRegister(globalPath)
	} else {
		gerr = os.ErrNotExist
	}
	if localPath != `` {
		a.local, lerr = LoadRegister(localPath)
	} else {
		lerr = os.ErrNotExist
	}
	if gerr != nil && lerr != nil {
		return nil, ErrNoRegisters
	}
	return &a, nil
}

// Authenticate resolves an address to a client name.  A client found
// only in the local register carries the LocalSuffix marker.
func (a *Authenticator) Authenticate(address string) (string, bool) {
	if a.global != nil {
		if name, ok := a.global.Lookup(address); ok {
			return name, true
		}
	}
	if a.local != nil {
		if name, ok := a.local.Lookup(address); ok {
			return name + LocalSuffix, true
		}
	}
	return ``, false
}
