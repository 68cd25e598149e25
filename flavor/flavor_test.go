// Copyright 2024 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package flavor

import (
	"errors"
	"strconv"
	"testing"
)

func TestFromPDG(t *testing.T) {
	for _, tc := range []struct {
		code int32
		idx  Index
		anti bool
		err  error
	}{
		{code: +12, idx: Electron},
		{code: -12, idx: Electron, anti: true},
		{code: +14, idx: Muon},
		{code: -14, idx: Muon, anti: true},
		{code: +16, idx: Tau},
		{code: -16, idx: Tau, anti: true},
		{code: 0, err: ErrUnknown},
		{code: 13, err: ErrUnknown},
		{code: -11, err: ErrUnknown},
	} {
		t.Run(strconv.Itoa(int(tc.code)), func(t *testing.T) {
			idx, anti, err := FromPDG(tc.code)
			switch {
			case tc.err != nil:
				if !errors.Is(err, tc.err) {
					t.Fatalf("invalid error: got=%v, want=%v", err, tc.err)
				}
				return
			case err != nil:
				t.Fatalf("could not map type=%d: %+v", tc.code, err)
			}
			if idx != tc.idx {
				t.Fatalf("invalid index: got=%v, want=%v", idx, tc.idx)
			}
			if anti != tc.anti {
				t.Fatalf("invalid anti flag: got=%v, want=%v", anti, tc.anti)
			}
			if got := PDG(idx, anti); got != tc.code {
				t.Fatalf("invalid round-trip: got=%d, want=%d", got, tc.code)
			}
		})
	}
}

func TestSign(t *testing.T) {
	for _, tc := range []struct {
		code int32
		want int32
	}{
		{14, +1}, {-14, -1}, {-12, -1}, {16, +1}, {0, 0},
	} {
		if got := Sign(tc.code); got != tc.want {
			t.Fatalf("invalid sign(%d): got=%d, want=%d", tc.code, got, tc.want)
		}
	}
}

func TestTopology(t *testing.T) {
	for _, tc := range []struct {
		code  int32
		itype int32
		want  Topology
		err   bool
	}{
		{code: 14, itype: CC, want: Track},
		{code: -14, itype: CC, want: Track},
		{code: 14, itype: NC, want: Shower},
		{code: 12, itype: CC, want: Shower},
		{code: -12, itype: NC, want: Shower},
		{code: 16, itype: TauToMuon, want: Track},
		{code: 16, itype: CC, want: Shower},
		{code: -16, itype: NC, want: Shower},
		{code: 13, itype: 0, want: Track},
		{code: -13, itype: 5, want: Track},
		{code: 14, itype: 3, err: true},
		{code: 11, itype: CC, err: true},
	} {
		got, err := TopologyOf(tc.code, tc.itype)
		switch {
		case tc.err:
			if err == nil {
				t.Fatalf("expected an error for type=%d, itype=%d", tc.code, tc.itype)
			}
			continue
		case err != nil:
			t.Fatalf("could not classify type=%d, itype=%d: %+v", tc.code, tc.itype, err)
		}
		if got != tc.want {
			t.Fatalf("invalid topology for type=%d, itype=%d: got=%v, want=%v", tc.code, tc.itype, got, tc.want)
		}
	}
}
