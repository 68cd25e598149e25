// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package correct

import (
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lpc/antdst/internal/xtree"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go-hep.org/x/hep/groot/rtree"
)

func TestApply(t *testing.T) {
	c := New(Livetimes())

	for _, tc := range []struct {
		name string
		row  Row
		want Row
	}{
		{
			name: "early-run",
			row: Row{
				RunID: 30000, Date: 20070815, NGen: 1e8, RunDuration: 0.5,
				W2: 10, W3: 20, WHonda: 30, WMuon: 4, DataMCRatio: 1.5,
			},
			want: Row{
				RunID: 30000, Date: 20070815, NGen: 1e8, RunDuration: 0.5,
				W2: 12, W3: 24, WHonda: 36, WMuon: 4.8, DataMCRatio: 1.5,
				Year:          2007,
				WNonOsc:       24 / 1e8 * 0.5,
				WeightOneYear: 4.8 * 365.25 / 205.552,
			},
		},
		{
			name: "last-scaled-run",
			row: Row{
				RunID: LastScaledRun, Date: 20220101, NGen: 2, RunDuration: 1,
				W2: 10, W3: 20, WHonda: 30, WMuon: 4, DataMCRatio: 1,
			},
			want: Row{
				RunID: LastScaledRun, Date: 20220101, NGen: 2, RunDuration: 1,
				W2: 10, W3: 20, WHonda: 30, WMuon: 4, DataMCRatio: 1,
				Year:          2022,
				WNonOsc:       10,
				WeightOneYear: 4 * 365.25 / 40.824,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			row := tc.row
			err := c.Apply(&row)
			if err != nil {
				t.Fatalf("could not apply corrections: %+v", err)
			}
			if diff := cmp.Diff(tc.want, row, cmpopts.EquateApprox(1e-6, 0)); diff != "" {
				t.Fatalf("invalid corrected row (-want +got):\n%s", diff)
			}
		})
	}

	for _, date := range []int32{20061231, 20230101, 0} {
		row := Row{RunID: 40000, Date: date, NGen: 1}
		err := c.Apply(&row)
		if !errors.Is(err, ErrUnknownYear) {
			t.Fatalf("date=%d: invalid error: got=%+v, want=%+v", date, err, ErrUnknownYear)
		}
	}
}

func TestLivetimes(t *testing.T) {
	c := New(Livetimes())
	years := c.Years()
	if got, want := len(years), 16; got != want {
		t.Fatalf("invalid number of years: got=%d, want=%d", got, want)
	}
	if years[0] != 2007 || years[len(years)-1] != 2022 {
		t.Fatalf("invalid years: %v", years)
	}

	live, err := c.Livetime(2016)
	if err != nil {
		t.Fatalf("could not get livetime: %+v", err)
	}
	if got, want := live, 356.574; got != want {
		t.Fatalf("invalid livetime: got=%v, want=%v", got, want)
	}

	// the corrector owns its table.
	tbl := map[int]float64{2010: 100}
	c = New(tbl)
	tbl[2010] = 0
	tbl[2011] = 200
	if _, err := c.Livetime(2011); !errors.Is(err, ErrUnknownYear) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, ErrUnknownYear)
	}
	if live, _ := c.Livetime(2010); live != 100 {
		t.Fatalf("invalid livetime: got=%v, want=100", live)
	}
}

func genDST(t *testing.T, fname string, n int64, year int32) {
	t.Helper()

	var (
		run   int32
		date  int32
		ngen  float64
		dur   float64
		w2    float64
		w3    float64
		honda float64
		muon  float32
		ratio float32
		ene   float64
	)
	err := xtree.WriteTree(fname, "sel", []rtree.WriteVar{
		{Name: "run_id", Value: &run},
		{Name: "Date", Value: &date},
		{Name: "ngen", Value: &ngen},
		{Name: "RunDurationYear", Value: &dur},
		{Name: "w2", Value: &w2},
		{Name: "w3", Value: &w3},
		{Name: "w_honda", Value: &honda},
		{Name: "w_muon", Value: &muon},
		{Name: "DataMCRatio", Value: &ratio},
		{Name: "energy_true", Value: &ene},
	}, n, func(i int64) error {
		run = int32(30400 + i)
		date = year*10000 + 101
		ngen = 1e6
		dur = 0.25
		w2 = float64(i + 1)
		w3 = 2 * float64(i+1)
		honda = 3 * float64(i+1)
		muon = float32(i + 1)
		ratio = 2
		ene = 10 * float64(i)
		return nil
	})
	if err != nil {
		t.Fatalf("could not create DST file: %+v", err)
	}
}

func TestProcess(t *testing.T) {
	tmp := t.TempDir()
	iname := filepath.Join(tmp, "dst.root")
	oname := filepath.Join(tmp, "dst_weighted.root")

	const nevts = 20
	genDST(t, iname, nevts, 2012)

	c := New(Livetimes())
	c.SetLogger(log.New(io.Discard, "", 0))

	n, err := c.Process(oname, iname, "sel")
	if err != nil {
		t.Fatalf("could not process DST: %+v", err)
	}
	if n != nevts {
		t.Fatalf("invalid number of events: got=%d, want=%d", n, nevts)
	}

	tbl, err := xtree.Open(oname, "sel")
	if err != nil {
		t.Fatalf("could not open output: %+v", err)
	}
	defer tbl.Close()

	var (
		row Row
		ene float64
	)
	err = tbl.Scan([]rtree.ReadVar{
		{Name: "run_id", Value: &row.RunID},
		{Name: "w2", Value: &row.W2},
		{Name: "w3", Value: &row.W3},
		{Name: "w_muon", Value: &row.WMuon},
		{Name: "Year", Value: &row.Year},
		{Name: "w_non_osc", Value: &row.WNonOsc},
		{Name: "weight_one_year", Value: &row.WeightOneYear},
		{Name: "energy_true", Value: &ene},
	}, func(i int64) error {
		scale := 2.0
		if row.RunID < LastScaledRun {
			scale *= 0.8
		}
		var (
			w2   = float64(i+1) * scale
			w3   = 2 * float64(i+1) * scale
			muon = float64(i+1) * scale
		)
		if got := float64(row.WMuon); math.Abs(got-muon) > 1e-6*muon {
			t.Errorf("entry %d: invalid w_muon: got=%v, want=%v", i, got, muon)
		}
		if row.Year != 2012 {
			t.Errorf("entry %d: invalid year: got=%d", i, row.Year)
		}
		if math.Abs(row.W2-w2) > 1e-12 || math.Abs(row.W3-w3) > 1e-12 {
			t.Errorf("entry %d: invalid weights: got=(%v, %v), want=(%v, %v)", i, row.W2, row.W3, w2, w3)
		}
		if got, want := row.WNonOsc, w3/1e6*0.25; math.Abs(got-want) > 1e-15 {
			t.Errorf("entry %d: invalid w_non_osc: got=%v, want=%v", i, got, want)
		}
		if got, want := row.WeightOneYear, float64(row.WMuon)*365.25/250.137; math.Abs(got-want) > 1e-12*want {
			t.Errorf("entry %d: invalid weight_one_year: got=%v, want=%v", i, got, want)
		}
		if ene != 10*float64(i) {
			t.Errorf("entry %d: invalid energy: got=%v", i, ene)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not read output: %+v", err)
	}
}

func TestProcessErrors(t *testing.T) {
	tmp := t.TempDir()
	iname := filepath.Join(tmp, "dst.root")
	oname := filepath.Join(tmp, "out.root")
	genDST(t, iname, 5, 2031)

	c := New(Livetimes())
	c.SetLogger(log.New(io.Discard, "", 0))

	_, err := c.Process(oname, iname, "sel")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if _, err := os.Stat(oname); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output file should have been removed: %+v", err)
	}

	_, err = c.Process(oname, iname, "evts")
	if !errors.Is(err, xtree.ErrMissingTree) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, xtree.ErrMissingTree)
	}
}
