// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dst-reweight applies the livetime and data/MC corrections to
// the weights of simulated DST events.
//
// The corrected tree gains the Year, w_non_osc and weight_one_year
// branches. w_non_osc is then used by nu-oscw.
package main // import "github.com/go-lpc/antdst/cmd/dst-reweight"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-lpc/antdst/conddb"
	"github.com/go-lpc/antdst/correct"
)

var (
	msg = log.New(os.Stdout, "dst-reweight: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("dst-reweight", flag.ExitOnError)

		tname  = fset.String("tree", "sel", "name of the tree of events")
		dbname = fset.String("db", "", "name of the conditions DB holding the livetimes (default: built-in table)")
		dbaddr = fset.String("db-addr", "", "[ip]:port of the conditions DB server")
		dbuser = fset.String("db-user", "", "user name for the conditions DB")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: dst-reweight [OPTIONS] <input> <output>

ex:
 $> dst-reweight ./mc_numu_CC.root ./mc_numu_CC_w.root
 $> ANTDST_DB_PWD=xxx dst-reweight -db=antares -db-addr=ccdb:3306 ./mc.root ./mc_w.root

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		msg.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 2 {
		fset.Usage()
		msg.Fatalf("invalid number of arguments (got=%d, want=2)", fset.NArg())
	}

	live := correct.Livetimes()
	if *dbname != "" {
		conddb.SetCredentials(*dbaddr, *dbuser, os.Getenv("ANTDST_DB_PWD"))
		db, err := conddb.Open(*dbname)
		if err != nil {
			msg.Fatalf("could not open conditions DB: %+v", err)
		}
		defer db.Close()

		live, err = fetchLivetimes(context.Background(), db)
		if err != nil {
			msg.Fatalf("could not retrieve livetimes: %+v", err)
		}
	}

	err = process(fset.Arg(1), fset.Arg(0), *tname, live)
	if err != nil {
		msg.Fatalf("could not correct weights: %+v", err)
	}
}

type livetimer interface {
	Livetimes(ctx context.Context) (map[int]float64, error)
}

func fetchLivetimes(ctx context.Context, db livetimer) (map[int]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	live, err := db.Livetimes(ctx)
	if err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return nil, fmt.Errorf("empty livetime table")
	}
	for year, days := range live {
		if !(days > 0) {
			return nil, fmt.Errorf("invalid livetime for year %d: %v days", year, days)
		}
	}
	return live, nil
}

func process(oname, iname, tname string, live map[int]float64) error {
	c := correct.New(live)
	c.SetLogger(msg)

	years := c.Years()
	if len(years) == 0 {
		return fmt.Errorf("no livetime available")
	}
	msg.Printf("livetimes: %d years [%d, %d]", len(years), years[0], years[len(years)-1])

	n, err := c.Process(oname, iname, tname)
	if err != nil {
		return err
	}
	msg.Printf("corrected %d events into %q", n, oname)

	return nil
}
