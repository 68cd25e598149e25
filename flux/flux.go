// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flux provides tabulated atmospheric neutrino fluxes, stored as
// log10(flux) in (log10(E), cos-zenith) grids, one per neutrino flavour.
package flux // import "github.com/go-lpc/antdst/flux"

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-lpc/antdst/internal/xtree"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hbook/rootcnv"
)

var (
	ErrMissingHistogram = errors.New("flux: missing histogram")
	ErrFlavor           = errors.New("flux: no flux for neutrino type")
)

// Grid indices in a Table.
const (
	NuE = iota
	ANuE
	NuMu
	ANuMu
)

// DefaultNames are the names of the nu_e, anti-nu_e, nu_mu and anti-nu_mu
// histograms in the Honda flux files.
var DefaultNames = [4]string{
	"h_nue_logElogF",
	"h_anue_logElogF",
	"h_numu_logElogF",
	"h_anumu_logElogF",
}

// Table holds the log10 flux grids of nu_e, anti-nu_e, nu_mu and anti-nu_mu.
// A Table is immutable and safe for concurrent use.
type Table struct {
	grids [4]*Grid
}

// New creates a flux table from the nu_e, anti-nu_e, nu_mu and anti-nu_mu grids.
func New(grids [4]*Grid) (*Table, error) {
	for i, g := range grids {
		if g == nil {
			return nil, fmt.Errorf("flux: nil grid at index %d", i)
		}
	}
	return &Table{grids: grids}, nil
}

// Load loads the four named TH2 histograms from the ROOT file fname,
// in the nu_e, anti-nu_e, nu_mu, anti-nu_mu order.
func Load(fname string, names [4]string) (*Table, error) {
	f, err := xtree.OpenFile(fname)
	if err != nil {
		return nil, fmt.Errorf("flux: could not open flux file: %w", err)
	}
	defer f.Close()

	var grids [4]*Grid
	for i, name := range names {
		obj, err := f.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w %q in %q: %v", ErrMissingHistogram, name, fname, err)
		}

		h2, ok := obj.(rhist.H2)
		if !ok {
			return nil, fmt.Errorf("%w %q in %q: object is a %T", ErrMissingHistogram, name, fname, obj)
		}

		grids[i], err = gridFrom(rootcnv.H2D(h2))
		if err != nil {
			return nil, fmt.Errorf("flux: could not convert histogram %q: %w", name, err)
		}
	}

	return New(grids)
}

// gridFrom extracts the bin edges and contents of a 2-dim histogram.
func gridFrom(h *hbook.H2D) (*Grid, error) {
	var (
		nx = h.Binning.Nx
		ny = h.Binning.Ny
		xs = make([]float64, 0, nx+1)
		ys = make([]float64, 0, ny+1)
		vs = make([]float64, nx*ny)
	)

	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("flux: empty histogram (nx=%d, ny=%d)", nx, ny)
	}

	for ix := 0; ix < nx; ix++ {
		xs = append(xs, h.Binning.Bins[ix].XRange.Min)
	}
	xs = append(xs, h.Binning.Bins[nx-1].XRange.Max)

	for iy := 0; iy < ny; iy++ {
		ys = append(ys, h.Binning.Bins[iy*nx].YRange.Min)
	}
	ys = append(ys, h.Binning.Bins[(ny-1)*nx].YRange.Max)

	for i := range vs {
		vs[i] = h.Binning.Bins[i].SumW()
	}

	return NewGrid(xs, ys, vs)
}

// Grid returns the log10 flux grid at index i.
func (tbl *Table) Grid(i int) *Grid { return tbl.grids[i] }

func (tbl *Table) index(code int32) (int, error) {
	switch code {
	case 12:
		return NuE, nil
	case -12:
		return ANuE, nil
	case 14:
		return NuMu, nil
	case -14:
		return ANuMu, nil
	}
	return -1, fmt.Errorf("%w %d", ErrFlavor, code)
}

// Flux returns the flux of the neutrino with the signed PDG code, at
// the energy (in GeV) and cos-zenith.
// Only nu_e and nu_mu fluxes (and their antiparticles) are tabulated.
//
// Points outside of the tabulated domain interpolate to a log10 flux
// of 0, and thus to a flux of 1, as with ROOT.
func (tbl *Table) Flux(code int32, energy, cosZ float64) (float64, error) {
	i, err := tbl.index(code)
	if err != nil {
		return 0, err
	}
	v := tbl.grids[i].Interpolate(math.Log10(energy), cosZ)
	return math.Pow(10, v), nil
}

// Contains returns whether (energy, cos-zenith) lies within the tabulated domain.
func (tbl *Table) Contains(energy, cosZ float64) bool {
	x := math.Log10(energy)
	for _, g := range tbl.grids {
		if !g.Contains(x, cosZ) {
			return false
		}
	}
	return true
}

// Save stores the grids of the table as TH2D histograms in a new ROOT
// file fname, in the nu_e, anti-nu_e, nu_mu, anti-nu_mu order.
func Save(fname string, names [4]string, tbl *Table) error {
	o, err := xtree.Create(fname)
	if err != nil {
		return fmt.Errorf("flux: could not create flux file: %w", err)
	}

	for i, g := range tbl.grids {
		h := hbook.NewH2DFromEdges(g.x.edges, g.y.edges)
		nx, ny := g.Dims()
		for iy := 1; iy <= ny; iy++ {
			for ix := 1; ix <= nx; ix++ {
				x, y := g.Center(ix, iy)
				h.Fill(x, y, g.Value(ix, iy))
			}
		}
		h.Annotation()["name"] = names[i]

		err = o.Put(names[i], rhist.NewH2DFrom(h))
		if err != nil {
			o.Abort()
			return fmt.Errorf("flux: could not store histogram %q: %w", names[i], err)
		}
	}

	return o.Close()
}
