// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lpc/antdst/correct"
	"github.com/go-lpc/antdst/internal/xtree"
	"go-hep.org/x/hep/groot/rtree"
)

func init() {
	msg.SetOutput(io.Discard)
}

func genDST(t *testing.T, fname string, n int64, date int32) {
	t.Helper()

	var (
		run   int32
		ngen  = 1e6
		dur   = 0.5
		w2    float64
		w3    float64
		honda float64
		muon  float32
		ratio = float32(1)
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
	}, n, func(i int64) error {
		run = 50000 + int32(i)
		w2 = float64(i)
		w3 = 2 * float64(i)
		honda = 3 * float64(i)
		muon = float32(i)
		return nil
	})
	if err != nil {
		t.Fatalf("could not create DST: %+v", err)
	}
}

func TestProcess(t *testing.T) {
	var (
		tmp   = t.TempDir()
		iname = filepath.Join(tmp, "dst.root")
		oname = filepath.Join(tmp, "dst_w.root")
	)
	genDST(t, iname, 10, 20150612)

	err := process(oname, iname, "sel", correct.Livetimes())
	if err != nil {
		t.Fatalf("could not process DST: %+v", err)
	}

	tbl, err := xtree.Open(oname, "sel")
	if err != nil {
		t.Fatalf("could not open output: %+v", err)
	}
	defer tbl.Close()

	var (
		year int32
		wnon float64
		wone float64
	)
	err = tbl.Scan([]rtree.ReadVar{
		{Name: "Year", Value: &year},
		{Name: "w_non_osc", Value: &wnon},
		{Name: "weight_one_year", Value: &wone},
	}, func(i int64) error {
		if year != 2015 {
			t.Errorf("evt %d: invalid year: got=%d, want=2015", i, year)
		}
		if got, want := wnon, 2*float64(i)/1e6*0.5; got != want {
			t.Errorf("evt %d: invalid w_non_osc: got=%v, want=%v", i, got, want)
		}
		if got, want := wone, float64(i)*365.25/352.942; got != want {
			t.Errorf("evt %d: invalid weight_one_year: got=%v, want=%v", i, got, want)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not read output: %+v", err)
	}
}

func TestProcessErrors(t *testing.T) {
	var (
		tmp   = t.TempDir()
		iname = filepath.Join(tmp, "dst.root")
		oname = filepath.Join(tmp, "dst_w.root")
	)
	genDST(t, iname, 3, 20150612)

	err := process(oname, iname, "sel", nil)
	if err == nil {
		t.Fatalf("expected an error")
	}

	err = process(oname, iname, "sel", map[int]float64{2014: 338.085})
	if err == nil {
		t.Fatalf("expected an error for year 2015")
	}
	if _, err := os.Stat(oname); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output file should not exist: %+v", err)
	}
}

type livetimes struct {
	live map[int]float64
	err  error
}

func (db livetimes) Livetimes(ctx context.Context) (map[int]float64, error) {
	return db.live, db.err
}

func TestFetchLivetimes(t *testing.T) {
	ctx := context.Background()
	errDB := errors.New("db down")

	for _, tc := range []struct {
		name string
		db   livetimes
		fail bool
	}{
		{"ok", livetimes{live: map[int]float64{2012: 250.137}}, false},
		{"db-error", livetimes{err: errDB}, true},
		{"empty", livetimes{live: map[int]float64{}}, true},
		{"zero", livetimes{live: map[int]float64{2012: 0}}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			live, err := fetchLivetimes(ctx, tc.db)
			switch {
			case tc.fail:
				if err == nil {
					t.Fatalf("expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("could not fetch livetimes: %+v", err)
				}
				if got, want := live[2012], 250.137; got != want {
					t.Fatalf("invalid livetime: got=%v, want=%v", got, want)
				}
			}
		})
	}
}
