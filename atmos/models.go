/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package atmos locates model atmospheres.  The grid parameters are
// coded into the filename: 05750g45.krz is Teff 5750 K at log g 4.5.
package atmos

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/bmatcuk/doublestar/v4"
)

var modelNameRe = regexp.MustCompile(`^(\d{5})g(\d{2})\.krz$`)

// ModelName renders the grid filename for a rounded Teff and log g
// pair.  The gravity is in tenths.
func ModelName(teff, logg int) string {
	return fmt.Sprintf("%05dg%02d.krz", teff, logg)
}

// RoundToGrid rounds a requested effective temperature and gravity to
// the grid coding: whole Kelvin with the tenths carrying over, and
// tenths of log g with the hundredths carrying over.
func RoundToGrid(teff, grav float64) (int, int) {
	it := int(teff)
	if int(teff*10)%10 > 5 {
		it++
	}
	ig := int(grav * 10)
	if int(grav*100)%10 > 5 {
		ig++
	}
	return it, ig
}

// parseModelName pulls Teff and log g out of a model filename
func parseModelName(name string) (teff, logg int, ok bool) {
	m := modelNameRe.FindStringSubmatch(name)
	if m == nil {
		return
	}
	fmt.Sscanf(m[1], "%d", &teff)
	fmt.Sscanf(m[2], "%d", &logg)
	ok = true
	return
}

// FindNearest scans the model directory for the atmosphere closest to
// the requested grid point.  Temperature has more weight than gravity.
// An empty name means the directory holds no parsable model.
func FindNearest(dir string, teff, logg int) (string, error) {
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, `*.krz`))
	if err != nil {
		return ``, err
	}
	tbest, gbest := -1, -1
	for _, m := range matches {
		t, g, ok := parseModelName(filepath.Base(m))
		if !ok {
			continue
		}
		if abs(t-teff) < abs(tbest-teff) {
			tbest, gbest = t, g
		} else if abs(t-teff) == abs(tbest-teff) && abs(g-logg) < abs(gbest-logg) {
			tbest, gbest = t, g
		}
	}
	if tbest < 0 || gbest < 0 {
		return ``, nil
	}
	return ModelName(tbest, gbest), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
