// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flavor

import "fmt"

// Topology is the event signature seen in the detector.
type Topology int

const (
	Track Topology = iota + 1
	Shower
)

// Interaction types as stored in the DST ntuples.
const (
	NC        int32 = 0
	CC        int32 = 1
	TauToMuon int32 = 2
)

func (t Topology) String() string {
	switch t {
	case Track:
		return "track"
	case Shower:
		return "shower"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// TopologyOf classifies an event from its PDG code and interaction type.
//
// numu CC, nutau CC with a muonic tau decay and atmospheric muons are
// tracks. nue, numu NC and the remaining nutau events are showers.
func TopologyOf(code, itype int32) (Topology, error) {
	switch a := abs(code); {
	case a == NuMu && itype == CC,
		a == NuTau && itype == TauToMuon,
		a == Mu:
		return Track, nil
	case a == NuE,
		a == NuMu && itype == NC,
		a == NuTau && itype != TauToMuon:
		return Shower, nil
	}
	return 0, fmt.Errorf("flavor: no topology for type=%d, interaction=%d", code, itype)
}
