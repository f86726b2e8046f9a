/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const globalRegister = `# Global VALD clients
#$ N. Piskunov
piskunov@astro.uu.se
nik@
#$ VALD Mirror Site
daemon@vald.astro.univie.ac.at
#$ GSFC Group
@gsfc.nasa.gov
`

const localRegister = `#$ Uppsala Student
student@
`

func writeRegister(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	r, err := LoadRegister(writeRegister(t, dir, "reg", globalRegister))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		address string
		client  string
		ok      bool
	}{
		{`piskunov@astro.uu.se`, `NPiskunov`, true},
		{`PISKUNOV@ASTRO.UU.SE`, `NPiskunov`, true},
		{`nik@anywhere.example`, `NPiskunov`, true},   //short prefix entry
		{`piskunov@astro`, `NPiskunov`, true},         //query shorter than entry
		{`daemon@vald.astro.univie.ac.at`, `VALDMirrorSite`, true},
		{`stranger@example.org`, ``, false},
	}
	for i, tc := range tests {
		client, ok := r.Lookup(tc.address)
		if ok != tc.ok || client != tc.client {
			t.Fatalf("case %d: got (%q,%v), want (%q,%v)", i, client, ok, tc.client, tc.ok)
		}
	}
}

func TestAuthenticateLocal(t *testing.T) {
	dir := t.TempDir()
	gp := writeRegister(t, dir, "reg", globalRegister)
	lp := writeRegister(t, dir, "reg.local", localRegister)
	a, err := NewAuthenticator(gp, lp)
	if err != nil {
		t.Fatal(err)
	}
	if name, ok := a.Authenticate(`student@uu.se`); !ok || name != `UppsalaStudent_local` {
		t.Fatalf("local client resolved to (%q,%v)", name, ok)
	}
	if name, ok := a.Authenticate(`piskunov@astro.uu.se`); !ok || name != `NPiskunov` {
		t.Fatalf("global client resolved to (%q,%v)", name, ok)
	}
	if _, ok := a.Authenticate(`stranger@example.org`); ok {
		t.Fatal("stranger authenticated")
	}
}

func TestAuthenticatorMissingRegisters(t *testing.T) {
	dir := t.TempDir()
	gp := writeRegister(t, dir, "reg", globalRegister)
	//one register missing is tolerated
	a, err := NewAuthenticator(gp, filepath.Join(dir, "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.Authenticate(`nik@x`); !ok {
		t.Fatal("global register lost")
	}
	//both missing is fatal
	if _, err = NewAuthenticator(filepath.Join(dir, "no1"), filepath.Join(dir, "no2")); !errors.Is(err, ErrNoRegisters) {
		t.Fatalf("expected ErrNoRegisters, got %v", err)
	}
}
