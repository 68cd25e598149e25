// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flux

import (
	"fmt"
	"sort"
)

// axis is a binned axis, with ROOT TAxis numbering:
// bin 0 is the underflow, bins [1, n] are in range, bin n+1 is the overflow.
type axis struct {
	edges []float64 // n+1 bin edges
}

func newAxis(edges []float64) (axis, error) {
	if len(edges) < 2 {
		return axis{}, fmt.Errorf("flux: axis needs at least 2 edges (got=%d)", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if !(edges[i] > edges[i-1]) {
			return axis{}, fmt.Errorf("flux: axis edges not strictly increasing at index %d", i)
		}
	}
	ax := axis{edges: make([]float64, len(edges))}
	copy(ax.edges, edges)
	return ax, nil
}

func (ax axis) nbins() int    { return len(ax.edges) - 1 }
func (ax axis) min() float64  { return ax.edges[0] }
func (ax axis) max() float64  { return ax.edges[len(ax.edges)-1] }
func (ax axis) avgw() float64 { return (ax.max() - ax.min()) / float64(ax.nbins()) }

// find returns the bin holding x.
func (ax axis) find(x float64) int {
	switch {
	case x < ax.min():
		return 0
	case !(x < ax.max()):
		return ax.nbins() + 1
	}
	return sort.Search(len(ax.edges), func(i int) bool { return ax.edges[i] > x })
}

func (ax axis) center(bin int) float64 {
	if bin < 1 || bin > ax.nbins() {
		w := ax.avgw()
		return ax.min() + float64(bin-1)*w + 0.5*w
	}
	return 0.5 * (ax.edges[bin-1] + ax.edges[bin])
}

func (ax axis) width(bin int) float64 {
	if bin < 1 || bin > ax.nbins() {
		return ax.avgw()
	}
	return ax.edges[bin] - ax.edges[bin-1]
}

func (ax axis) upEdge(bin int) float64 {
	if bin < 1 || bin > ax.nbins() {
		return ax.center(bin) + 0.5*ax.width(bin)
	}
	return ax.edges[bin]
}

// neighbours returns the centers of the two bins surrounding x,
// together with their indices clamped to the axis range.
func (ax axis) neighbours(x float64, bin int) (x1, x2 float64, b1, b2 int) {
	lo, hi := bin-1, bin
	if ax.upEdge(bin)-x <= 0.5*ax.width(bin) {
		lo, hi = bin, bin+1
	}
	x1 = ax.center(lo)
	x2 = ax.center(hi)

	b1 = ax.find(x1)
	if b1 < 1 {
		b1 = 1
	}
	b2 = ax.find(x2)
	if b2 > ax.nbins() {
		b2 = ax.nbins()
	}
	return x1, x2, b1, b2
}

// Grid is a 2-dim binned table of values.
type Grid struct {
	x, y axis
	vs   []float64 // values, row-major in x: vs[(iy-1)*nx + (ix-1)]
}

// NewGrid creates a grid from its bin edges along x and y, and its
// bin contents, stored with x running fastest.
func NewGrid(xedges, yedges []float64, values []float64) (*Grid, error) {
	x, err := newAxis(xedges)
	if err != nil {
		return nil, fmt.Errorf("flux: invalid x-axis: %w", err)
	}
	y, err := newAxis(yedges)
	if err != nil {
		return nil, fmt.Errorf("flux: invalid y-axis: %w", err)
	}

	if got, want := len(values), x.nbins()*y.nbins(); got != want {
		return nil, fmt.Errorf("flux: invalid number of grid values (got=%d, want=%d)", got, want)
	}

	g := &Grid{x: x, y: y, vs: make([]float64, len(values))}
	copy(g.vs, values)
	return g, nil
}

// Dims returns the number of bins along x and y.
func (g *Grid) Dims() (nx, ny int) { return g.x.nbins(), g.y.nbins() }

// Value returns the content of bin (ix, iy), with ix in [1, nx] and iy in [1, ny].
func (g *Grid) Value(ix, iy int) float64 {
	return g.vs[(iy-1)*g.x.nbins()+(ix-1)]
}

// Center returns the coordinates of the center of bin (ix, iy).
func (g *Grid) Center(ix, iy int) (x, y float64) {
	return g.x.center(ix), g.y.center(iy)
}

// Contains returns whether (x, y) lies within the grid domain,
// [xmin, xmax) x [ymin, ymax).
func (g *Grid) Contains(x, y float64) bool {
	ix := g.x.find(x)
	iy := g.y.find(y)
	return 1 <= ix && ix <= g.x.nbins() && 1 <= iy && iy <= g.y.nbins()
}

// Interpolate bilinearly interpolates the grid at (x, y), between the
// centers of the four nearest bins.
//
// Interpolate follows the TH2::Interpolate convention of ROOT:
// points outside the grid domain yield 0, and points in the outer half
// of a boundary bin take the value of that bin along the clamped direction.
func (g *Grid) Interpolate(x, y float64) float64 {
	ix := g.x.find(x)
	iy := g.y.find(y)
	if ix < 1 || ix > g.x.nbins() || iy < 1 || iy > g.y.nbins() {
		return 0
	}

	x1, x2, ix1, ix2 := g.x.neighbours(x, ix)
	y1, y2, iy1, iy2 := g.y.neighbours(y, iy)

	var (
		q11 = g.Value(ix1, iy1)
		q12 = g.Value(ix1, iy2)
		q21 = g.Value(ix2, iy1)
		q22 = g.Value(ix2, iy2)
		d   = (x2 - x1) * (y2 - y1)
	)

	return q11/d*(x2-x)*(y2-y) +
		q21/d*(x-x1)*(y2-y) +
		q12/d*(x2-x)*(y-y1) +
		q22/d*(x-x1)*(y-y1)
}
