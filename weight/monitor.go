// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weight

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-lpc/antdst/flavor"
	"github.com/go-lpc/antdst/internal/xtree"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
)

// Monitor accumulates control spectra of weighted events.
// Monitor is not safe for concurrent use.
type Monitor struct {
	hs map[string]*hbook.H1D
}

// NewMonitor creates the control spectra: log10(E) and cos-zenith
// distributions, with and without oscillations, for all events and
// per topology.
func NewMonitor() *Monitor {
	mon := &Monitor{hs: make(map[string]*hbook.H1D)}
	for _, sfx := range []string{"", "_track", "_shower"} {
		for _, w := range []string{"non_osc", "osc"} {
			mon.book("h_logE_"+w+sfx, 80, 0, 8)
			mon.book("h_cosz_"+w+sfx, 40, -1, 1)
		}
	}
	return mon
}

func (mon *Monitor) book(name string, n int, min, max float64) {
	h := hbook.NewH1D(n, min, max)
	h.Annotation()["name"] = name
	mon.hs[name] = h
}

// Hist returns the named control spectrum, or nil.
func (mon *Monitor) Hist(name string) *hbook.H1D {
	return mon.hs[name]
}

// Fill fills the spectra with the weighted event.
// Events with an unknown topology only enter the inclusive spectra.
func (mon *Monitor) Fill(rec Record, topo flavor.Topology) {
	sfxs := []string{""}
	switch topo {
	case flavor.Track:
		sfxs = append(sfxs, "_track")
	case flavor.Shower:
		sfxs = append(sfxs, "_shower")
	}

	loge := math.Log10(rec.Energy)
	for _, sfx := range sfxs {
		mon.hs["h_logE_non_osc"+sfx].Fill(loge, rec.WNonOsc)
		mon.hs["h_logE_osc"+sfx].Fill(loge, rec.WOsc)
		mon.hs["h_cosz_non_osc"+sfx].Fill(rec.CosZ, rec.WNonOsc)
		mon.hs["h_cosz_osc"+sfx].Fill(rec.CosZ, rec.WOsc)
	}
}

// Write stores all the spectra in the output ROOT file, as TH1D.
func (mon *Monitor) Write(o *xtree.Output) error {
	names := make([]string, 0, len(mon.hs))
	for name := range mon.hs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err := o.Put(name, rhist.NewH1DFrom(mon.hs[name]))
		if err != nil {
			return fmt.Errorf("weight: could not write control histogram: %w", err)
		}
	}
	return nil
}
