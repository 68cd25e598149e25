// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the run configuration of the oscillation weighter:
// deployment sites, flux tables, mixing parameters and Earth model.
package config // import "github.com/go-lpc/antdst/config"

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-lpc/antdst/earth"
	"github.com/go-lpc/antdst/flux"
	"github.com/go-lpc/antdst/osc"
	"gopkg.in/yaml.v3"
)

var ErrUnknownSite = errors.New("config: unknown deployment site")

// Config is the run configuration.
type Config struct {
	Sites  map[string]string `yaml:"sites"` // deployment site -> flux tables directory
	Flux   Flux              `yaml:"flux"`
	Mixing Mixing            `yaml:"mixing"`
	Earth  Earth             `yaml:"earth"`
}

// Flux describes the flux tables file.
type Flux struct {
	File  string `yaml:"file"`
	NuE   string `yaml:"nue"`
	ANuE  string `yaml:"anue"`
	NuMu  string `yaml:"numu"`
	ANuMu string `yaml:"anumu"`
}

// Mixing holds the neutrino mixing parameters.
type Mixing struct {
	Dm21    float64 `yaml:"dm21"` // eV^2
	Dm31    float64 `yaml:"dm31"` // eV^2
	Theta12 float64 `yaml:"theta12"`
	Theta13 float64 `yaml:"theta13"`
	Theta23 float64 `yaml:"theta23"`
	Dcp     float64 `yaml:"dcp_deg"` // degrees
}

// Earth describes the Earth model.
type Earth struct {
	DetRadius  float64 `yaml:"det_radius"` // km
	Atmosphere float64 `yaml:"atmosphere"` // km
	Layers     []Layer `yaml:"layers"`
}

// Layer is a shell of the Earth model.
type Layer struct {
	Radius  float64 `yaml:"radius"`  // km
	Density float64 `yaml:"density"` // g/cm^3
	ZoA     float64 `yaml:"zoa"`
}

// Default returns the reference configuration: Honda 2014 flux tables
// for ORCA, NuFit 4.2 normal ordering and the PREM Earth model.
func Default() Config {
	var (
		p = osc.NuFit42NO()
		m = earth.PREM()
	)

	cfg := Config{
		Sites: map[string]string{
			"woody": "/home/saturn/capn/mppi133h/master_thesis/antares_dst/oscillation_weights/models/",
			"in2p3": "/sps/km3net/users/mchadoli/masters_thesis/antares_dst/oscillation_weights/models/",
		},
		Flux: Flux{
			File:  "Honda2014_frj-solmin-aa_ORCA6_hist.root",
			NuE:   flux.DefaultNames[flux.NuE],
			ANuE:  flux.DefaultNames[flux.ANuE],
			NuMu:  flux.DefaultNames[flux.NuMu],
			ANuMu: flux.DefaultNames[flux.ANuMu],
		},
		Mixing: Mixing{
			Dm21:    p.Dm21,
			Dm31:    p.Dm31,
			Theta12: p.Theta12,
			Theta13: p.Theta13,
			Theta23: p.Theta23,
			Dcp:     195,
		},
		Earth: Earth{
			DetRadius:  m.DetRadius,
			Atmosphere: m.Atmosphere,
			Layers:     make([]Layer, len(m.Layers)),
		},
	}
	for i, l := range m.Layers {
		cfg.Earth.Layers[i] = Layer(l)
	}

	return cfg
}

// Load reads the YAML configuration file fname.
// Values missing from the file keep their default value.
// Unknown keys are rejected.
func Load(fname string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(fname)
	if err != nil {
		return cfg, fmt.Errorf("config: could not read configuration file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	err = dec.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: could not decode configuration file %q: %w", fname, err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, fmt.Errorf("config: invalid configuration file %q: %w", fname, err)
	}

	return cfg, nil
}

// Validate checks the configuration is complete and physical.
func (cfg Config) Validate() error {
	if len(cfg.Sites) == 0 {
		return fmt.Errorf("config: no deployment site")
	}
	if cfg.Flux.File == "" {
		return fmt.Errorf("config: no flux file")
	}
	for i, name := range cfg.FluxNames() {
		if name == "" {
			return fmt.Errorf("config: no name for flux histogram %d", i)
		}
	}

	err := cfg.Params().Validate()
	if err != nil {
		return err
	}

	return cfg.Model().Validate()
}

// SiteNames returns the sorted list of deployment sites.
func (cfg Config) SiteNames() []string {
	names := make([]string, 0, len(cfg.Sites))
	for name := range cfg.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FluxFile returns the path to the flux tables file at the provided
// deployment site.
func (cfg Config) FluxFile(site string) (string, error) {
	dir, ok := cfg.Sites[site]
	if !ok {
		return "", fmt.Errorf("%w %q (known sites: %q)", ErrUnknownSite, site, cfg.SiteNames())
	}
	return filepath.Join(dir, cfg.Flux.File), nil
}

// FluxNames returns the names of the nu_e, anti-nu_e, nu_mu and anti-nu_mu
// flux histograms.
func (cfg Config) FluxNames() [4]string {
	return [4]string{cfg.Flux.NuE, cfg.Flux.ANuE, cfg.Flux.NuMu, cfg.Flux.ANuMu}
}

// Params returns the oscillation parameters.
func (cfg Config) Params() osc.Params {
	return osc.Params{
		Dm21:    cfg.Mixing.Dm21,
		Dm31:    cfg.Mixing.Dm31,
		Theta12: cfg.Mixing.Theta12,
		Theta13: cfg.Mixing.Theta13,
		Theta23: cfg.Mixing.Theta23,
		Dcp:     cfg.Mixing.Dcp * math.Pi / 180,
	}
}

// Model returns the Earth model.
func (cfg Config) Model() earth.Model {
	m := earth.Model{
		DetRadius:  cfg.Earth.DetRadius,
		Atmosphere: cfg.Earth.Atmosphere,
		Layers:     make([]earth.Layer, len(cfg.Earth.Layers)),
	}
	for i, l := range cfg.Earth.Layers {
		m.Layers[i] = earth.Layer(l)
	}
	return m
}
