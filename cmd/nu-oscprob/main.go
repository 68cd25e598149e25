// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command nu-oscprob prints the oscillation probabilities of a neutrino
// crossing the Earth, from a given flavour to all flavours.
package main // import "github.com/go-lpc/antdst/cmd/nu-oscprob"

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/antdst/config"
	"github.com/go-lpc/antdst/flavor"
	"github.com/go-lpc/antdst/osc"
)

func main() {
	log.SetPrefix("nu-oscprob: ")
	log.SetFlags(0)

	var (
		cfgName = flag.String("cfg", "", "path to a YAML configuration file")
		code    = flag.Int("type", 14, "signed PDG code of the initial neutrino")
		ene     = flag.Float64("e", 25, "neutrino energy (GeV)")
		cosz    = flag.Float64("cosz", -1, "cosine of the zenith angle")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: nu-oscprob [OPTIONS]

ex:
 $> nu-oscprob -type=14 -e=25 -cosz=-1
 $> nu-oscprob -type=-12 -e=5 -cosz=-0.8 -cfg=./orca.yaml

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg := config.Default()
	if *cfgName != "" {
		var err error
		cfg, err = config.Load(*cfgName)
		if err != nil {
			log.Fatalf("could not load configuration: %+v", err)
		}
	}

	err := process(os.Stdout, cfg, int32(*code), *ene, *cosz)
	if err != nil {
		log.Fatalf("could not compute probabilities: %+v", err)
	}
}

func process(w io.Writer, cfg config.Config, code int32, ene, cosz float64) error {
	from, anti, err := flavor.FromPDG(code)
	if err != nil {
		return err
	}

	if !(ene > 0) {
		return fmt.Errorf("invalid energy %v GeV", ene)
	}

	if cosz < -1 || cosz > 1 {
		return fmt.Errorf("invalid cos(zenith) %v", cosz)
	}

	var (
		eng  = osc.New(cfg.Params())
		path = cfg.Model().Path(cosz)
		prob = eng.Probabilities(path, anti, from, ene)
		sum  = 0.0
	)

	fmt.Fprintf(w, "E=%g GeV, cos(zenith)=%g, L=%.1f km (%d segments)\n", ene, cosz, path.Length(), len(path))
	for to, p := range prob {
		sum += p
		fmt.Fprintf(w, "P(%v -> %v) = %.6f\n",
			flavor.PDG(from, anti), flavor.PDG(flavor.Index(to), anti), p,
		)
	}
	fmt.Fprintf(w, "sum = %.6f\n", sum)

	return nil
}
