// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command nu-oscw computes the oscillated weights of simulated
// atmospheric neutrino events.
//
// The input tree is copied to the output file, extended with the w_osc,
// prob_nue and prob_numu branches.
//
// Usage: nu-oscw [OPTIONS] <input> <output> <site>
//
// Example:
//
//	$> nu-oscw -j 8 -hist ./mc_numu_CC.root ./mc_numu_CC_osc.root woody
package main // import "github.com/go-lpc/antdst/cmd/nu-oscw"

import (
	"compress/flate"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-lpc/antdst"
	"github.com/go-lpc/antdst/config"
	"github.com/go-lpc/antdst/flux"
	"github.com/go-lpc/antdst/osc"
	"github.com/go-lpc/antdst/weight"
	"go-hep.org/x/hep/groot/rtree"
)

var (
	msg = log.New(os.Stdout, "nu-oscw: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("nu-oscw", flag.ExitOnError)

		cfgName = fset.String("cfg", "", "path to a YAML configuration file")
		tname   = fset.String("tree", "sel", "name of the tree of events")
		nwrk    = fset.Int("j", 0, "number of concurrent workers (0: number of CPUs)")
		compr   = fset.String("compr", "zlib", "output compression algorithm (zlib, lz4, lzma, zstd, none)")
		lvl     = fset.Int("lvl", flate.DefaultCompression, "output compression level")
		hists   = fset.Bool("hist", false, "write control spectra to the output file")
		freq    = fset.Int64("freq", 100000, "number of events between two progress reports")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: nu-oscw [OPTIONS] <input> <output> <site>

ex:
 $> nu-oscw ./mc_numu_CC.root ./mc_numu_CC_osc.root woody
 $> nu-oscw -cfg ./orca.yaml -j 8 -hist ./mc.root ./mc_osc.root in2p3

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		msg.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 3 {
		fset.Usage()
		msg.Fatalf("invalid number of arguments (got=%d, want=3)", fset.NArg())
	}

	if v, _ := antdst.Version(); v != "" {
		msg.Printf("antdst %s", v)
	}

	cfg := config.Default()
	if *cfgName != "" {
		cfg, err = config.Load(*cfgName)
		if err != nil {
			msg.Fatalf("could not load configuration: %+v", err)
		}
	}

	wopt, err := compression(*compr, *lvl)
	if err != nil {
		msg.Fatalf("invalid compression: %+v", err)
	}

	var (
		iname = fset.Arg(0)
		oname = fset.Arg(1)
		site  = fset.Arg(2)
	)

	err = process(context.Background(), cfg, site, iname, oname, weight.Job{
		Tree:         *tname,
		Workers:      *nwrk,
		Hists:        *hists,
		WriteOptions: []rtree.WriteOption{wopt},
	}, weight.WithLogger(msg), weight.WithFreq(*freq))
	if err != nil {
		msg.Fatalf("could not compute oscillated weights: %+v", err)
	}
}

func process(ctx context.Context, cfg config.Config, site, iname, oname string, job weight.Job, opts ...weight.Option) error {
	fname, err := cfg.FluxFile(site)
	if err != nil {
		return err
	}

	msg.Printf("site:  %s", site)
	msg.Printf("flux:  %s", fname)
	msg.Printf("input: %s", iname)

	tbl, err := flux.Load(fname, cfg.FluxNames())
	if err != nil {
		return fmt.Errorf("could not load flux tables: %w", err)
	}

	job.Input = iname
	job.Output = oname

	wgt := weight.New(tbl, cfg.Model(), osc.New(cfg.Params()), opts...)
	err = wgt.Process(ctx, job)
	if err != nil {
		return err
	}

	msg.Printf("output: %s", oname)
	return nil
}

// default compression levels, as recommended by ROOT.
var defaultLevels = map[string]int{
	"zlib": flate.DefaultCompression,
	"lz4":  4,
	"lzma": 8,
	"zstd": 5,
}

func compression(name string, lvl int) (rtree.WriteOption, error) {
	name = strings.ToLower(name)
	if lvl == flate.DefaultCompression {
		lvl = defaultLevels[name]
	}
	switch name {
	case "zlib":
		return rtree.WithZlib(lvl), nil
	case "lz4":
		return rtree.WithLZ4(lvl), nil
	case "lzma":
		return rtree.WithLZMA(lvl), nil
	case "zstd":
		return rtree.WithZstd(lvl), nil
	case "none", "":
		return rtree.WithoutCompression(), nil
	default:
		return nil, fmt.Errorf("unknown compression algorithm %q", name)
	}
}
