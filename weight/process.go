// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package weight

import (
	"context"
	"fmt"

	"github.com/go-lpc/antdst/flavor"
	"github.com/go-lpc/antdst/internal/xtree"
	"go-hep.org/x/hep/groot/rtree"
)

// Job describes the reweighting of a tree of events.
type Job struct {
	Input   string // input ROOT file
	Output  string // output ROOT file
	Tree    string // name of the tree of events
	Workers int    // number of concurrent workers (<=0: number of CPUs)
	Hists   bool   // whether to write control spectra

	WriteOptions []rtree.WriteOption
}

// Process reads all the events of the job input tree, computes their
// oscillated weights and writes out the tree, extended with the w_osc,
// prob_nue and prob_numu branches, to the job output file.
// Rows are written in the input order.
// The output file is removed if the processing fails.
func (w *Weighter) Process(ctx context.Context, job Job) error {
	tbl, err := xtree.Open(job.Input, job.Tree)
	if err != nil {
		return fmt.Errorf("weight: could not open input tree: %w", err)
	}
	defer tbl.Close()

	w.msg.Printf("reading %d events from %q...", tbl.Entries(), job.Input)
	evts, itypes, err := readEvents(tbl)
	if err != nil {
		return err
	}

	w.msg.Printf("weighting %d events...", len(evts))
	recs, err := w.WeightAll(ctx, evts, job.Workers)
	if err != nil {
		return err
	}

	o, err := xtree.Create(job.Output)
	if err != nil {
		return err
	}
	ok := false
	defer func() {
		if !ok {
			o.Abort()
		}
	}()

	var (
		mon  *Monitor
		wosc float64
		pe   float64
		pmu  float64
	)
	if job.Hists {
		mon = NewMonitor()
	}

	n, err := tbl.CopyTo(o, []rtree.WriteVar{
		{Name: "w_osc", Value: &wosc},
		{Name: "prob_nue", Value: &pe},
		{Name: "prob_numu", Value: &pmu},
	}, func(i int64) (bool, error) {
		if w.freq > 0 && i%w.freq == 0 {
			w.msg.Printf("processing evt %d/%d...", i, len(recs))
		}
		rec := recs[i]
		wosc = rec.WOsc
		pe = rec.ProbNuE
		pmu = rec.ProbNuMu

		if mon != nil {
			var topo flavor.Topology
			if itypes != nil {
				topo, _ = flavor.TopologyOf(rec.Type, itypes[i])
			}
			mon.Fill(rec, topo)
		}
		return true, nil
	}, job.WriteOptions...)
	if err != nil {
		return fmt.Errorf("weight: could not write output tree: %w", err)
	}

	if n != int64(len(recs)) {
		return fmt.Errorf("weight: invalid number of written events (got=%d, want=%d)", n, len(recs))
	}

	if mon != nil {
		err = mon.Write(o)
		if err != nil {
			return err
		}
	}

	ok = true
	err = o.Close()
	if err != nil {
		return fmt.Errorf("weight: could not close output file: %w", err)
	}

	stats := w.Stats()
	w.msg.Printf(
		"processed %d events (reweighted: %d, outside flux tables: %d)",
		n, stats.Reweighted, stats.OutOfDomain,
	)
	return nil
}

func readEvents(tbl *xtree.Table) ([]Event, []int32, error) {
	var (
		evts  = make([]Event, 0, tbl.Entries())
		ev    Event
		itype int32
		vars  = []rtree.ReadVar{
			{Name: "run_id", Value: &ev.RunID},
			{Name: "type", Value: &ev.Type},
			{Name: "RunDurationYear", Value: &ev.RunDuration},
			{Name: "ngen", Value: &ev.NGen},
			{Name: "w2", Value: &ev.W2},
			{Name: "w3", Value: &ev.W3},
			{Name: "energy_true", Value: &ev.Energy},
			{Name: "cos_zenith_true", Value: &ev.CosZ},
			{Name: "w_non_osc", Value: &ev.WNonOsc},
		}
		itypes []int32
	)

	if tbl.Has("interaction_type") {
		vars = append(vars, rtree.ReadVar{Name: "interaction_type", Value: &itype})
		itypes = make([]int32, 0, tbl.Entries())
	}

	err := tbl.Scan(vars, func(i int64) error {
		evts = append(evts, ev)
		if itypes != nil {
			itypes = append(itypes, itype)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("weight: could not read events: %w", err)
	}

	return evts, itypes, nil
}
