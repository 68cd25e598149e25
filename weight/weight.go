// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package weight computes oscillated weights of atmospheric neutrino events.
package weight // import "github.com/go-lpc/antdst/weight"

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/go-lpc/antdst/earth"
	"github.com/go-lpc/antdst/flavor"
	"github.com/go-lpc/antdst/osc"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxEnergy is the energy (GeV) above which events are not reweighted.
	MaxEnergy = 1e4

	cm2ToM2 = 1e4
)

var ErrMalformed = errors.New("weight: malformed event")

// Event is a simulated neutrino event, as stored in the DST ntuples.
type Event struct {
	RunID       int32
	Type        int32   // signed PDG code
	RunDuration float64 // years
	NGen        float64 // number of generated events
	W2          float64 // generation weight (GeV.cm^2.sr.s)
	W3          float64
	Energy      float64 // true energy (GeV)
	CosZ        float64 // cosine of the true zenith angle
	WNonOsc     float64 // atmospheric weight without oscillations
}

// Record is a weighted event.
type Record struct {
	Event
	WOsc     float64 // atmospheric weight with oscillations
	ProbNuE  float64 // probability of a nu_e to be detected with the event flavour
	ProbNuMu float64 // probability of a nu_mu to be detected with the event flavour
}

// Fluxer provides atmospheric neutrino fluxes.
type Fluxer interface {
	Flux(code int32, energy, cosZ float64) (float64, error)
}

// Pather provides matter profiles through the Earth.
type Pather interface {
	Path(cosZ float64) earth.Path
}

// Oscillator provides flavour transition probabilities.
type Oscillator interface {
	Transitions(path earth.Path, anti bool, energy float64) osc.Matrix
}

// Stats holds counters of the events seen by a Weighter.
type Stats struct {
	Events      int64 // number of weighted events
	Reweighted  int64 // number of events with oscillations computed
	OutOfDomain int64 // number of reweighted events outside of the flux tables
}

// Weighter computes oscillated weights.
// A Weighter is safe for concurrent use.
type Weighter struct {
	msg  *log.Logger
	freq int64

	flux  Fluxer
	earth Pather
	osc   Oscillator

	nevts atomic.Int64
	nosc  atomic.Int64
	nout  atomic.Int64
}

// Option configures a Weighter.
type Option func(*Weighter)

// WithLogger sets the logger used to report progress.
func WithLogger(msg *log.Logger) Option {
	return func(w *Weighter) {
		w.msg = msg
	}
}

// WithFreq sets the number of events between two progress reports.
func WithFreq(n int64) Option {
	return func(w *Weighter) {
		w.freq = n
	}
}

// New creates a new Weighter from flux tables, an Earth model and an
// oscillation engine.
func New(fx Fluxer, em Pather, eng Oscillator, opts ...Option) *Weighter {
	w := &Weighter{
		msg:   log.New(os.Stdout, "weight: ", 0),
		freq:  100000,
		flux:  fx,
		earth: em,
		osc:   eng,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns the counters of the events weighted so far.
func (w *Weighter) Stats() Stats {
	return Stats{
		Events:      w.nevts.Load(),
		Reweighted:  w.nosc.Load(),
		OutOfDomain: w.nout.Load(),
	}
}

// Gated returns whether the event needs its oscillated weight to be computed.
// Down-going events and events above MaxEnergy keep their non-oscillated weight.
func Gated(ev Event) bool {
	return ev.CosZ < 0 && ev.Energy < MaxEnergy
}

// Weight computes the oscillated weight of the event.
//
// The oscillated weight of a neutrino of flavour f is:
//
//	w2*1e4/ngen * (flux(nu_e)*P(nu_e->f) + flux(nu_mu)*P(nu_mu->f)) * duration
//
// with the fluxes of neutrinos (resp. anti-neutrinos) for neutrino
// (resp. anti-neutrino) events.
func (w *Weighter) Weight(ev Event) (Record, error) {
	w.nevts.Add(1)

	rec := Record{Event: ev}
	if !Gated(ev) {
		rec.WOsc = ev.WNonOsc
		return rec, nil
	}

	if !(ev.NGen > 0) {
		return rec, fmt.Errorf("%w: run=%d, ngen=%v", ErrMalformed, ev.RunID, ev.NGen)
	}
	if !(ev.Energy > 0) {
		return rec, fmt.Errorf("%w: run=%d, energy=%v", ErrMalformed, ev.RunID, ev.Energy)
	}

	final, anti, err := flavor.FromPDG(ev.Type)
	if err != nil {
		return rec, fmt.Errorf("%w: run=%d: %v", ErrMalformed, ev.RunID, err)
	}
	w.nosc.Add(1)

	var (
		norm = ev.W2 * cm2ToM2 / ev.NGen
		path = w.earth.Path(ev.CosZ)
		prob = w.osc.Transitions(path, anti, ev.Energy)
		pe   = prob[flavor.Electron][final]
		pmu  = prob[flavor.Muon][final]
		sgn  = flavor.Sign(ev.Type)
	)

	fe, err := w.flux.Flux(sgn*flavor.NuE, ev.Energy, ev.CosZ)
	if err != nil {
		return rec, fmt.Errorf("weight: could not get nu_e flux: %w", err)
	}

	fmu, err := w.flux.Flux(sgn*flavor.NuMu, ev.Energy, ev.CosZ)
	if err != nil {
		return rec, fmt.Errorf("weight: could not get nu_mu flux: %w", err)
	}

	if dom, ok := w.flux.(interface {
		Contains(energy, cosZ float64) bool
	}); ok && !dom.Contains(ev.Energy, ev.CosZ) {
		w.nout.Add(1)
	}

	rec.WOsc = norm * (fe*pe + fmu*pmu) * ev.RunDuration
	rec.ProbNuE = pe
	rec.ProbNuMu = pmu

	return rec, nil
}

const chunk = 4096

// WeightAll computes the oscillated weights of all the events, using up
// to n concurrent workers (or the number of CPUs if n <= 0).
// Records are returned in the order of the events.
func (w *Weighter) WeightAll(ctx context.Context, evts []Event, n int) ([]Record, error) {
	if n <= 0 {
		n = runtime.NumCPU()
	}

	var (
		recs     = make([]Record, len(evts))
		grp, gtx = errgroup.WithContext(ctx)
	)
	grp.SetLimit(n)

	for beg := 0; beg < len(evts); beg += chunk {
		if gtx.Err() != nil {
			break
		}
		end := beg + chunk
		if end > len(evts) {
			end = len(evts)
		}
		beg := beg
		grp.Go(func() error {
			for i := beg; i < end; i++ {
				if err := gtx.Err(); err != nil {
					return err
				}
				rec, err := w.Weight(evts[i])
				if err != nil {
					return fmt.Errorf("weight: could not weight event %d: %w", i, err)
				}
				recs[i] = rec
			}
			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}
