/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package atmos

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRoundToGrid(t *testing.T) {
	tests := []struct {
		teff, grav float64
		it, ig     int
	}{
		{5780, 4.4, 5780, 44},
		{5779.6, 4.46, 5780, 45},
		{5779.5, 4.45, 5779, 44}, //exactly five does not carry
		{8000, 4.5, 8000, 45},
		{3500.9, 0.07, 3501, 1},
	}
	for i, tc := range tests {
		it, ig := RoundToGrid(tc.teff, tc.grav)
		if it != tc.it || ig != tc.ig {
			t.Fatalf("case %d: got (%d,%d), want (%d,%d)", i, it, ig, tc.it, tc.ig)
		}
	}
}

func TestModelName(t *testing.T) {
	if n := ModelName(5750, 45); n != `05750g45.krz` {
		t.Fatalf("name %s", n)
	}
}

func populate(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(`x`), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFindNearest(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, `05750g45.krz`, `05500g40.krz`, `README`, `junk.krz`)

	best, err := FindNearest(dir, 5780, 44)
	if err != nil {
		t.Fatal(err)
	}
	if best != `05750g45.krz` {
		t.Fatalf("nearest %s", best)
	}

	//exact hit
	best, err = FindNearest(dir, 5500, 40)
	if err != nil {
		t.Fatal(err)
	}
	if best != `05500g40.krz` {
		t.Fatalf("exact %s", best)
	}
}

func TestFindNearestGravityTieBreak(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, `06000g10.krz`, `06000g40.krz`, `06000g50.krz`)
	best, err := FindNearest(dir, 6000, 42)
	if err != nil {
		t.Fatal(err)
	}
	if best != `06000g40.krz` {
		t.Fatalf("gravity tie break chose %s", best)
	}
}

func TestFindNearestEmpty(t *testing.T) {
	dir := t.TempDir()
	populate(t, dir, `README`)
	best, err := FindNearest(dir, 5000, 40)
	if err != nil {
		t.Fatal(err)
	}
	if best != `` {
		t.Fatalf("expected empty result, got %s", best)
	}
}
