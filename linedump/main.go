/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ivh/vald-ems/linelist"
)

var (
	dataFile  = flag.String("data", ``, "Compressed line list data file")
	descrFile = flag.String("descr", ``, "Line list descriptor file")
	wlMin     = flag.Float64("min", 0, "Lower wavelength bound")
	wlMax     = flag.Float64("max", 0, "Upper wavelength bound")
	long      = flag.Bool("long", false, "Print damping and Lande columns too")
)

func main() {
	flag.Parse()
	if *dataFile == `` || *descrFile == `` {
		fmt.Fprintln(os.Stderr, "data and descriptor files are required")
		os.Exit(1)
	}
	if *wlMin <= 0 || *wlMax < *wlMin {
		fmt.Fprintln(os.Stderr, "invalid wavelength range")
		os.Exit(1)
	}
	r, err := linelist.Open(*dataFile, *descrFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open line list: %v\n", err)
		os.Exit(1)
	}
	defer r.Close()

	count := 0
	lines, err := r.ReadRange(*wlMin, *wlMax)
	for {
		if err != nil {
			if errors.Is(err, linelist.ErrNoIntersection) || errors.Is(err, linelist.ErrPastEnd) {
				break
			}
			fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
			os.Exit(1)
		}
		done := false
		for i := range lines {
			t := &lines[i]
			if t.Wavelength > *wlMax {
				done = true
				break
			}
			if t.Wavelength < *wlMin {
				continue
			}
			printLine(t)
			count++
		}
		if done {
			break
		}
		lines, err = r.ReadNext()
	}
	fmt.Printf("%d transitions in [%g, %g]\n", count, *wlMin, *wlMax)
}

func printLine(t *linelist.Transition) {
	if *long {
		fmt.Printf("%12.4f %6d %7.3f %10.4f %4.1f %10.4f %4.1f %6.2f %6.2f %7.2f %7.2f %7.2f\n",
			t.Wavelength, t.Species, t.LogGf, t.ELower, t.JLower, t.EUpper, t.JUpper,
			t.LandeLower, t.LandeUpper, t.GammaRad, t.GammaStark, t.GammaVdW)
		return
	}
	ref := strings.TrimRight(string(t.Ancillary[:40]), " \x00")
	fmt.Printf("%12.4f %6d %7.3f %s\n", t.Wavelength, t.Species, t.LogGf, ref)
}
