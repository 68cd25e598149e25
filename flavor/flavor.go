// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flavor maps signed PDG neutrino codes to oscillation flavour
// indices and classifies event topologies.
package flavor // import "github.com/go-lpc/antdst/flavor"

import (
	"errors"
	"fmt"
)

// Index is a neutrino flavour index, as used by the PMNS matrix rows.
type Index int

const (
	Electron Index = 0
	Muon     Index = 1
	Tau      Index = 2
)

// N is the number of neutrino flavours.
const N = 3

// PDG codes of the neutrinos (and of the muon, for topologies).
const (
	NuE   int32 = 12
	Mu    int32 = 13
	NuMu  int32 = 14
	NuTau int32 = 16
)

var ErrUnknown = errors.New("flavor: unknown neutrino type")

func (i Index) String() string {
	switch i {
	case Electron:
		return "e"
	case Muon:
		return "mu"
	case Tau:
		return "tau"
	}
	return fmt.Sprintf("Index(%d)", int(i))
}

// FromPDG returns the flavour index of the provided signed PDG code,
// and whether it describes an antineutrino.
func FromPDG(code int32) (idx Index, anti bool, err error) {
	switch abs(code) {
	case NuE:
		idx = Electron
	case NuMu:
		idx = Muon
	case NuTau:
		idx = Tau
	default:
		return 0, false, fmt.Errorf("%w (type=%d)", ErrUnknown, code)
	}
	return idx, code < 0, nil
}

// PDG returns the PDG code of the (anti)neutrino with flavour idx.
func PDG(idx Index, anti bool) int32 {
	var code int32
	switch idx {
	case Electron:
		code = NuE
	case Muon:
		code = NuMu
	case Tau:
		code = NuTau
	default:
		panic(fmt.Errorf("flavor: invalid index %d", idx))
	}
	if anti {
		code = -code
	}
	return code
}

// Sign returns -1 for negative codes, +1 for positive ones and 0 otherwise.
func Sign(code int32) int32 {
	switch {
	case code > 0:
		return +1
	case code < 0:
		return -1
	}
	return 0
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
