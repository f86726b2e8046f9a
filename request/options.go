/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package request

import (
	"fmt"
	"strings"
)

// Options is the per request configuration flag set.  Keywords may
// appear on any request line and are consumed in place.
type Options struct {
	LongFormat      bool
	PersonalConfig  bool
	HaveRad         bool
	HaveStark       bool
	HaveWaals       bool
	HaveLande       bool
	HaveTerm        bool
	ExtendedWaals   bool
	ZeemanPattern   bool
	StarkBroadening bool
	FTPRetrieval    bool
	EnergyInvCm     bool
	WavelengthInVac bool
	WavelengthUnits int //0 Angstroem, 1 nm, 2 cm^-1
	IsotopicScaling bool
	HFSSplitting    bool
}

// KeywordEvent reports a keyword whose recognition needs action beyond
// flipping a flag
type KeywordEvent int

const (
	EvNone KeywordEvent = iota
	EvPersonalConfig    //the per client config file must exist
)

// NewOptions returns the default flag set; isotopic scaling of gf is
// the only option enabled by default
func NewOptions() *Options {
	return &Options{IsotopicScaling: true}
}

// keyword recognition is by minimum prefix: a token matches when its
// first minLen characters equal the keyword's.  The asymmetric lengths
// are what keeps PERSONALCONFIGURATION apart from the other P tokens,
// and they deliberately accept unexpected tails (LONGxyz still selects
// LONGFORMAT).
type keyword struct {
	word   string
	minLen int
	apply  func(*Options) KeywordEvent
}

var keywords = []keyword{
	{`LONGFORMAT`, 4, func(o *Options) KeywordEvent { o.LongFormat = true; return EvNone }},
	{`SHORTFORMAT`, 5, func(o *Options) KeywordEvent { o.LongFormat = false; return EvNone }},
	{`PERSONALCONFIGURATION`, 6, func(o *Options) KeywordEvent { o.PersonalConfig = true; return EvPersonalConfig }},
	{`DEFAULTCONFIGURATION`, 10, func(o *Options) KeywordEvent { o.PersonalConfig = false; return EvNone }},
	{`HAVERAD`, 7, func(o *Options) KeywordEvent { o.HaveRad = true; return EvNone }},
	{`HAVESTARK`, 9, func(o *Options) KeywordEvent { o.HaveStark = true; return EvNone }},
	{`HAVEWAALS`, 9, func(o *Options) KeywordEvent { o.HaveWaals = true; return EvNone }},
	{`HAVELANDE`, 9, func(o *Options) KeywordEvent { o.HaveLande = true; return EvNone }},
	{`HAVETERM`, 8, func(o *Options) KeywordEvent { o.HaveTerm = true; return EvNone }},
	{`DEFAULTWAALS`, 8, func(o *Options) KeywordEvent { o.ExtendedWaals = false; return EvNone }},
	{`EXTENDEDWAALS`, 9, func(o *Options) KeywordEvent { o.ExtendedWaals = true; return EvNone }},
	{`ZEEMANPATTERN`, 6, func(o *Options) KeywordEvent { o.ZeemanPattern = true; return EvNone }},
	{`STARKBROADENING`, 5, func(o *Options) KeywordEvent { o.StarkBroadening = true; return EvNone }},
	{`VIAFTP`, 6, func(o *Options) KeywordEvent { o.FTPRetrieval = true; return EvNone }},
	{`ENERGYUNITEV`, 11, func(o *Options) KeywordEvent { o.EnergyInvCm = false; return EvNone }},
	{`ENERGYUNIT1CM`, 12, func(o *Options) KeywordEvent { o.EnergyInvCm = true; return EvNone }},
	{`MEDIUMAIR`, 7, func(o *Options) KeywordEvent { o.WavelengthInVac = false; return EvNone }},
	{`MEDIUMVACUUM`, 7, func(o *Options) KeywordEvent { o.WavelengthInVac = true; return EvNone }},
	{`WAVEUNITANGSTROM`, 9, func(o *Options) KeywordEvent { o.WavelengthUnits = 0; return EvNone }},
	{`WAVEUNITNM`, 9, func(o *Options) KeywordEvent { o.WavelengthUnits = 1; return EvNone }},
	{`WAVEUNIT1CM`, 10, func(o *Options) KeywordEvent { o.WavelengthUnits = 2; return EvNone }},
	{`ISOTOPICSCALINGON`, 17, func(o *Options) KeywordEvent { o.IsotopicScaling = true; return EvNone }},
	{`ISOTOPICSCALINGOFF`, 18, func(o *Options) KeywordEvent { o.IsotopicScaling = false; return EvNone }},
	{`HFSSPLITTING`, 8, func(o *Options) KeywordEvent { o.HFSSplitting = true; return EvNone }},
	{`NOHFSSPLITTING`, 10, func(o *Options) KeywordEvent { o.HFSSplitting = false; return EvNone }},
}

// SetKeyword matches a compressed token against the keyword table,
// case-insensitive.  A recognised keyword is applied and consumed:
// the returned token is empty.
func (o *Options) SetKeyword(token string) (rest string, ev KeywordEvent) {
	up := strings.ToUpper(token)
	for i := range keywords {
		kw := keywords[i]
		if len(up) < kw.minLen {
			continue
		}
		if up[:kw.minLen] == kw.word[:kw.minLen] {
			ev = kw.apply(o)
			return
		}
	}
	rest = token
	return
}

// FlagVector renders the thirteen integer flags the preselect input
// files carry, in their fixed order
func (o *Options) FlagVector() string {
	b := func(v bool) int {
		if v {
			return 1
		}
		return 0
	}
	return fmt.Sprintf("%d %d %d %d %d %d %d %d %d %d %d %d %d",
		b(o.LongFormat)+3*b(o.EnergyInvCm), b(o.HaveRad), b(o.HaveStark),
		b(o.HaveWaals), b(o.HaveLande), b(o.HaveTerm), b(o.ExtendedWaals),
		b(o.ZeemanPattern), b(o.StarkBroadening), b(o.WavelengthInVac),
		o.WavelengthUnits, b(o.IsotopicScaling), b(o.HFSSplitting))
}
