// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package earth models the Earth as concentric shells of constant density
// and computes the matter profile along the line of sight of a neutrino
// reaching a detector.
package earth // import "github.com/go-lpc/antdst/earth"

import (
	"fmt"
	"math"
	"sort"
)

// Layer is a spherical shell of constant density, extending from the
// radius of the layer beneath it up to Radius.
type Layer struct {
	Radius  float64 // outer radius (km)
	Density float64 // density (g/cm^3)
	ZoA     float64 // effective Z/A
}

// Model is a layered Earth model, seen from a detector at DetRadius from
// the center of the Earth. Neutrinos are produced at a height Atmosphere
// above the outermost layer; the atmosphere has no density.
type Model struct {
	Layers     []Layer // from the center outwards
	DetRadius  float64 // radius of the detector (km)
	Atmosphere float64 // production height above the surface (km)
}

// PREM returns a 12-shell model derived from the Preliminary Reference
// Earth Model, with a detector sitting 3 km below the sea surface and
// neutrinos produced 15 km above it.
func PREM() Model {
	return Model{
		Layers: []Layer{
			{Radius: 1221.5, Density: 13.09, ZoA: 0.468}, // inner core
			{Radius: 3480.0, Density: 11.00, ZoA: 0.468}, // outer core
			{Radius: 3630.0, Density: 5.50, ZoA: 0.497},
			{Radius: 5600.0, Density: 5.00, ZoA: 0.497},
			{Radius: 5701.0, Density: 4.40, ZoA: 0.497},
			{Radius: 5771.0, Density: 4.00, ZoA: 0.497},
			{Radius: 5971.0, Density: 3.80, ZoA: 0.497},
			{Radius: 6151.0, Density: 3.50, ZoA: 0.497},
			{Radius: 6346.6, Density: 3.37, ZoA: 0.497},
			{Radius: 6356.0, Density: 2.90, ZoA: 0.497}, // lower crust
			{Radius: 6368.0, Density: 2.60, ZoA: 0.497}, // upper crust
			{Radius: 6371.0, Density: 1.02, ZoA: 0.555}, // sea water
		},
		DetRadius:  6368,
		Atmosphere: 15,
	}
}

// Radius returns the radius of the Earth, ie: the outer radius of the last layer.
func (m Model) Radius() float64 {
	if len(m.Layers) == 0 {
		return 0
	}
	return m.Layers[len(m.Layers)-1].Radius
}

// Validate checks the layers are ordered and physical, and the detector
// lies between the center of the Earth and the production height.
func (m Model) Validate() error {
	if len(m.Layers) == 0 {
		return fmt.Errorf("earth: model with no layer")
	}
	prev := 0.0
	for i, l := range m.Layers {
		if !(l.Radius > prev) {
			return fmt.Errorf("earth: layer %d: radius %v not above %v", i, l.Radius, prev)
		}
		if l.Density < 0 {
			return fmt.Errorf("earth: layer %d: negative density %v", i, l.Density)
		}
		if !(l.ZoA > 0 && l.ZoA <= 1) {
			return fmt.Errorf("earth: layer %d: invalid Z/A %v", i, l.ZoA)
		}
		prev = l.Radius
	}
	if m.Atmosphere < 0 {
		return fmt.Errorf("earth: negative production height %v", m.Atmosphere)
	}
	if !(m.DetRadius > 0 && m.DetRadius <= m.Radius()+m.Atmosphere) {
		return fmt.Errorf("earth: detector radius %v outside (0, %v]", m.DetRadius, m.Radius()+m.Atmosphere)
	}
	return nil
}

// Segment is a piece of a neutrino path with constant matter density.
type Segment struct {
	Length  float64 // km
	Density float64 // g/cm^3
	ZoA     float64
}

// Path is a neutrino path, from its production point to the detector.
type Path []Segment

// Length returns the total length of the path, in km.
func (p Path) Length() float64 {
	var sum float64
	for _, seg := range p {
		sum += seg.Length
	}
	return sum
}

// Path returns the path of a neutrino arriving at the detector with the
// provided cosine of its zenith angle.
// Negative values of cosZ denote up-going neutrinos that crossed the Earth.
// The segments are ordered from the production point to the detector.
func (m Model) Path(cosZ float64) Path {
	cosZ = math.Max(-1, math.Min(1, cosZ))

	var (
		rd   = m.DetRadius
		rp   = m.Radius() + m.Atmosphere
		rdc  = rd * cosZ
		sEnd = chord(rd, rdc, rp)
	)

	// distances from the detector, along the line of sight, at which
	// the neutrino crosses a layer boundary.
	xs := []float64{0, sEnd}
	for _, l := range m.Layers {
		d := rdc*rdc - rd*rd + l.Radius*l.Radius
		if d <= 0 {
			continue
		}
		sq := math.Sqrt(d)
		for _, s := range []float64{-rdc - sq, -rdc + sq} {
			if 0 < s && s < sEnd {
				xs = append(xs, s)
			}
		}
	}
	sort.Float64s(xs)

	const eps = 1e-9
	path := make(Path, 0, len(xs)-1)
	for i := len(xs) - 1; i > 0; i-- {
		var (
			beg = xs[i-1]
			end = xs[i]
			dl  = end - beg
		)
		if dl < eps {
			continue
		}
		mid := 0.5 * (beg + end)
		r := math.Sqrt(math.Max(0, rd*rd+mid*mid+2*mid*rdc))
		path = append(path, m.segment(r, dl))
	}

	return path
}

// chord returns the distance from the detector to the sphere of radius r,
// along the line of sight.
func chord(rd, rdc, r float64) float64 {
	d := rdc*rdc - rd*rd + r*r
	if d < 0 {
		return 0
	}
	return -rdc + math.Sqrt(d)
}

func (m Model) segment(r, dl float64) Segment {
	i := sort.Search(len(m.Layers), func(i int) bool {
		return m.Layers[i].Radius >= r
	})
	if i == len(m.Layers) {
		// atmosphere.
		return Segment{Length: dl, Density: 0, ZoA: m.Layers[len(m.Layers)-1].ZoA}
	}
	l := m.Layers[i]
	return Segment{Length: dl, Density: l.Density, ZoA: l.ZoA}
}
