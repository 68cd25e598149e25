// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package correct applies the livetime and data/MC corrections to the
// weights of simulated DST events.
package correct // import "github.com/go-lpc/antdst/correct"

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/go-lpc/antdst/internal/xtree"
	"go-hep.org/x/hep/groot/rtree"
)

var ErrUnknownYear = errors.New("correct: unknown data-taking year")

const (
	// LastScaledRun is the first run not affected by the 0.8 scaling of
	// the early simulation weights.
	LastScaledRun = 30412

	earlyScale  = 0.8
	daysPerYear = 365.25
)

// Livetimes returns the ANTARES data livetime (in days) per year.
func Livetimes() map[int]float64 {
	return map[int]float64{
		2007: 205.552,
		2008: 213.276,
		2009: 228.674,
		2010: 241.034,
		2011: 281.724,
		2012: 250.137,
		2013: 281.724,
		2014: 338.085,
		2015: 352.942,
		2016: 356.574,
		2017: 355.512,
		2018: 339.637,
		2019: 351.093,
		2020: 355.093,
		2021: 350.116,
		2022: 40.824,
	}
}

// Row holds the weights of an event.
type Row struct {
	RunID       int32
	Date        int32 // YYYYMMDD
	NGen        float64
	RunDuration float64 // years
	W2          float64
	W3          float64
	WHonda      float64
	WMuon       float32
	DataMCRatio float32

	Year          int32
	WNonOsc       float64
	WeightOneYear float64
}

// Corrector corrects event weights.
type Corrector struct {
	msg  *log.Logger
	live map[int]float64
}

// New creates a corrector from a table of livetimes (days) per year.
func New(livetimes map[int]float64) *Corrector {
	live := make(map[int]float64, len(livetimes))
	for k, v := range livetimes {
		live[k] = v
	}
	return &Corrector{
		msg:  log.New(os.Stdout, "correct: ", 0),
		live: live,
	}
}

// SetLogger sets the logger used to report progress.
func (c *Corrector) SetLogger(msg *log.Logger) { c.msg = msg }

// Years returns the sorted list of years with a known livetime.
func (c *Corrector) Years() []int {
	years := make([]int, 0, len(c.live))
	for y := range c.live {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Livetime returns the livetime (days) of the provided year.
func (c *Corrector) Livetime(year int) (float64, error) {
	v, ok := c.live[year]
	if !ok || !(v > 0) {
		return 0, fmt.Errorf("%w %d", ErrUnknownYear, year)
	}
	return v, nil
}

// Apply corrects the weights of the row in place, and computes its
// data-taking year, its non-oscillated weight and its muon weight
// normalized to one year of livetime.
func (c *Corrector) Apply(row *Row) error {
	row.Year = row.Date / 10000

	live, err := c.Livetime(int(row.Year))
	if err != nil {
		return fmt.Errorf("correct: run %d: %w", row.RunID, err)
	}

	if row.RunID < LastScaledRun {
		row.W2 *= earlyScale
		row.W3 *= earlyScale
		row.WHonda *= earlyScale
		row.WMuon = float32(float64(row.WMuon) * earlyScale)
	}

	ratio := row.DataMCRatio
	row.W2 *= float64(ratio)
	row.W3 *= float64(ratio)
	row.WHonda *= float64(ratio)
	row.WMuon *= ratio

	row.WNonOsc = row.W3 / row.NGen * row.RunDuration
	row.WeightOneYear = float64(row.WMuon) * daysPerYear / live

	return nil
}

// Process corrects all the events of the tree tname from the input file
// iname, and writes them to the output file oname, with the corrected
// weights and the new Year, w_non_osc and weight_one_year branches.
// It returns the number of written events.
func (c *Corrector) Process(oname, iname, tname string, opts ...rtree.WriteOption) (int64, error) {
	tbl, err := xtree.Open(iname, tname)
	if err != nil {
		return 0, fmt.Errorf("correct: could not open input tree: %w", err)
	}
	defer tbl.Close()

	var row Row
	for _, v := range []struct {
		name string
		ptr  interface{}
	}{
		{"run_id", &row.RunID},
		{"Date", &row.Date},
		{"ngen", &row.NGen},
		{"RunDurationYear", &row.RunDuration},
		{"w2", &row.W2},
		{"w3", &row.W3},
		{"w_honda", &row.WHonda},
		{"w_muon", &row.WMuon},
		{"DataMCRatio", &row.DataMCRatio},
	} {
		err = tbl.Bind(v.name, v.ptr)
		if err != nil {
			return 0, fmt.Errorf("correct: could not bind branch: %w", err)
		}
	}

	var (
		ntot = tbl.Entries()
		freq = ntot / 20
	)
	if freq == 0 {
		freq = 1
	}

	c.msg.Printf("correcting %d events...", ntot)
	n, err := tbl.Copy(oname, []rtree.WriteVar{
		{Name: "Year", Value: &row.Year},
		{Name: "w_non_osc", Value: &row.WNonOsc},
		{Name: "weight_one_year", Value: &row.WeightOneYear},
	}, func(i int64) (bool, error) {
		if i%freq == 0 {
			c.msg.Printf("processed %d events out of %d", i, ntot)
		}
		err := c.Apply(&row)
		if err != nil {
			return false, err
		}
		return true, nil
	}, opts...)
	if err != nil {
		return n, fmt.Errorf("correct: could not correct events: %w", err)
	}

	return n, nil
}
