// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package osc computes 3-flavour neutrino oscillation probabilities along
// a path of constant-density matter segments.
package osc // import "github.com/go-lpc/antdst/osc"

import (
	"math"
	"math/cmplx"

	"github.com/go-lpc/antdst/earth"
	"github.com/go-lpc/antdst/flavor"
	"gonum.org/v1/gonum/mat"
)

const (
	gevToEV = 1e9
	km2eV   = 5.067730716e9 // 1 km in eV^-1, ie: 1 km / (hbar c)

	fermi = 1.1663787e-5    // Fermi constant (GeV^-2)
	hbarc = 1.973269804e-14 // GeV.cm
	avog  = 6.02214076e23   // mol^-1

	// matter converts the density (g/cm^3) times Z/A of a medium
	// into the charged-current potential sqrt(2).G_F.N_e of electron
	// neutrinos (eV).
	matter = math.Sqrt2 * fermi * hbarc * hbarc * hbarc * avog * gevToEV
)

// Matrix holds transition probabilities, indexed as [from][to].
type Matrix [flavor.N][flavor.N]float64

// Engine computes oscillation probabilities for a fixed set of mixing
// parameters.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	p  Params
	u  [flavor.N][flavor.N]complex128 // PMNS matrix
	dm [flavor.N]float64              // squared mass splittings w.r.t. m1
}

// New returns an oscillation engine for the provided mixing parameters.
func New(p Params) *Engine {
	var (
		s12, c12 = math.Sincos(p.Theta12)
		s13, c13 = math.Sincos(p.Theta13)
		s23, c23 = math.Sincos(p.Theta23)
		eid      = cmplx.Exp(complex(0, p.Dcp))
		emid     = cmplx.Conj(eid)
		r        = func(v float64) complex128 { return complex(v, 0) }
	)

	eng := &Engine{
		p:  p,
		dm: [flavor.N]float64{0, p.Dm21, p.Dm31},
	}
	eng.u = [flavor.N][flavor.N]complex128{
		{
			r(c12 * c13),
			r(s12 * c13),
			r(s13) * emid,
		},
		{
			r(-s12*c23) - r(c12*s23*s13)*eid,
			r(c12*c23) - r(s12*s23*s13)*eid,
			r(s23 * c13),
		},
		{
			r(s12*s23) - r(c12*c23*s13)*eid,
			r(-c12*s23) - r(s12*c23*s13)*eid,
			r(c23 * c13),
		},
	}

	return eng
}

// Params returns the mixing parameters of the engine.
func (eng *Engine) Params() Params { return eng.p }

// Transitions returns the matrix of transition probabilities between
// all flavours, for a neutrino (or anti-neutrino if anti is true) of
// the provided energy (GeV) travelling along path.
func (eng *Engine) Transitions(path earth.Path, anti bool, energy float64) Matrix {
	s := eng.propagator(path, anti, energy)

	var m Matrix
	for from := 0; from < flavor.N; from++ {
		for to := 0; to < flavor.N; to++ {
			var (
				re = s.At(to, from)
				im = s.At(to+flavor.N, from)
			)
			m[from][to] = re*re + im*im
		}
	}
	return m
}

// Probabilities returns the probabilities of a neutrino of flavour from
// to be detected as a nu_e, nu_mu and nu_tau.
func (eng *Engine) Probabilities(path earth.Path, anti bool, from flavor.Index, energy float64) [flavor.N]float64 {
	return eng.Transitions(path, anti, energy)[from]
}

// Prob returns the probability of a neutrino of flavour from to be
// detected with flavour to.
func (eng *Engine) Prob(path earth.Path, anti bool, from, to flavor.Index, energy float64) float64 {
	return eng.Transitions(path, anti, energy)[from][to]
}

// propagator returns the evolution operator S=exp(-i H L) along the
// path, as the real 6x6 representation of the complex 3x3 matrix:
//
//	[Re(S) -Im(S)]
//	[Im(S)  Re(S)]
func (eng *Engine) propagator(path earth.Path, anti bool, energy float64) *mat.Dense {
	const n = 2 * flavor.N

	h0 := eng.vacuum(anti, energy)

	s := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		s.Set(i, i, 1)
	}

	var (
		k   = mat.NewDense(n, n, nil)
		ek  mat.Dense
		tmp mat.Dense
	)
	for _, seg := range path {
		if seg.Length <= 0 {
			continue
		}

		v := matter * seg.Density * seg.ZoA
		if anti {
			v = -v
		}
		l := seg.Length * km2eV

		// real representation of -i.K, with K=H.L hermitian:
		//  -i.K = Im(K) - i.Re(K)
		for i := 0; i < flavor.N; i++ {
			for j := 0; j < flavor.N; j++ {
				h := h0[i][j]
				if i == 0 && j == 0 {
					h += complex(v, 0)
				}
				var (
					kr = real(h) * l
					ki = imag(h) * l
				)
				k.Set(i, j, ki)
				k.Set(i, j+flavor.N, kr)
				k.Set(i+flavor.N, j, -kr)
				k.Set(i+flavor.N, j+flavor.N, ki)
			}
		}

		ek.Exp(k)
		tmp.Mul(&ek, s)
		s.Copy(&tmp)
	}

	return s
}

// vacuum returns the vacuum hamiltonian, in the flavour basis (eV).
func (eng *Engine) vacuum(anti bool, energy float64) [flavor.N][flavor.N]complex128 {
	u := eng.u
	if anti {
		for i := range u {
			for j := range u[i] {
				u[i][j] = cmplx.Conj(u[i][j])
			}
		}
	}

	var (
		h   [flavor.N][flavor.N]complex128
		inv = 1 / (2 * energy * gevToEV)
	)
	for i := 0; i < flavor.N; i++ {
		for j := 0; j < flavor.N; j++ {
			var sum complex128
			for k := 0; k < flavor.N; k++ {
				sum += u[i][k] * complex(eng.dm[k], 0) * cmplx.Conj(u[j][k])
			}
			h[i][j] = sum * complex(inv, 0)
		}
	}
	return h
}
