// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package osc

import (
	"fmt"
	"math"
)

// Params are the 3-flavour neutrino mixing parameters.
type Params struct {
	Dm21    float64 // solar mass splitting (eV^2)
	Dm31    float64 // atmospheric mass splitting (eV^2)
	Theta12 float64 // rad
	Theta13 float64 // rad
	Theta23 float64 // rad
	Dcp     float64 // CP-violating phase (rad)
}

// NuFit42NO returns the best-fit values of the NuFit 4.2 global fit,
// normal ordering without the Super-Kamiokande atmospheric data
// (JHEP 09 (2020) 178).
func NuFit42NO() Params {
	return Params{
		Dm21:    7.42e-5,
		Dm31:    2.514e-3,
		Theta12: 0.5836,
		Theta13: 0.1496,
		Theta23: 0.8552,
		Dcp:     195 * math.Pi / 180,
	}
}

// Validate checks the mixing angles are in [0, pi/2] and all the
// parameters are finite.
func (p Params) Validate() error {
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"dm21", p.Dm21},
		{"dm31", p.Dm31},
		{"theta12", p.Theta12},
		{"theta13", p.Theta13},
		{"theta23", p.Theta23},
		{"dcp", p.Dcp},
	} {
		if math.IsNaN(v.val) || math.IsInf(v.val, 0) {
			return fmt.Errorf("osc: invalid %s value %v", v.name, v.val)
		}
	}

	for _, v := range []struct {
		name string
		val  float64
	}{
		{"theta12", p.Theta12},
		{"theta13", p.Theta13},
		{"theta23", p.Theta23},
	} {
		if v.val < 0 || v.val > 0.5*math.Pi {
			return fmt.Errorf("osc: mixing angle %s=%v outside [0, pi/2]", v.name, v.val)
		}
	}

	return nil
}
