// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package interp

import (
	"math"
	"testing"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/geom"
)

func newTestImage2D(t *testing.T) *doseimage.ImageData {
	t.Helper()
	img, err := doseimage.New2D(
		[][]float32{{0, 1}, {2, 3}},
		geom.DataOffset{Rows: 0, Columns: 0},
		geom.DataSpacing{Rows: 1, Columns: 1},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return img
}

func TestBilinearAtPointExactVoxels(t *testing.T) {
	img := newTestImage2D(t)
	cases := []struct {
		y, x float64
		want float32
	}{
		{0, 0, 0},
		{0, 1, 1},
		{1, 0, 2},
		{1, 1, 3},
	}
	for _, c := range cases {
		v, ok := BilinearAtPoint(img, 0, c.y, c.x)
		if !ok {
			t.Fatalf("(%v,%v): expected ok", c.y, c.x)
		}
		if v != c.want {
			t.Errorf("(%v,%v) = %v, want %v", c.y, c.x, v, c.want)
		}
	}
}

func TestBilinearAtPointCenterIsAverage(t *testing.T) {
	img := newTestImage2D(t)
	v, ok := BilinearAtPoint(img, 0, 0.5, 0.5)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := float32(1.5) // average of 0,1,2,3
	if math.Abs(float64(v-want)) > 1e-6 {
		t.Errorf("center = %v, want %v", v, want)
	}
}

func TestBilinearAtPointOutOfRange(t *testing.T) {
	img := newTestImage2D(t)
	if _, ok := BilinearAtPoint(img, 0, -1, 0); ok {
		t.Errorf("expected out-of-range sample to report ok=false")
	}
	if _, ok := BilinearAtPoint(img, 1, 0, 0); ok {
		t.Errorf("expected out-of-range frame to report ok=false")
	}
}

func TestTrilinearAtPointDegenerateFrameAxis(t *testing.T) {
	img := newTestImage2D(t)
	v, ok := TrilinearAtPoint(img, 12345, 0, 1)
	if !ok {
		t.Fatalf("expected degenerate frame axis to always be in range")
	}
	if v != 1 {
		t.Errorf("got %v, want 1", v)
	}
}

func TestTrilinearOntoIdentityIsIdempotent(t *testing.T) {
	img := newTestImage2D(t)
	resampled, err := TrilinearOnto(img, img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range img.Data() {
		got := resampled.Data()[i]
		if math.Abs(float64(got-v)) > 1e-5 {
			t.Errorf("voxel %d: got %v, want %v", i, got, v)
		}
	}
}

func TestLinearAlongAxisHalvesRowCount(t *testing.T) {
	img := newTestImage2D(t)
	newSpacing := 2.0
	resampled, err := LinearAlongAxis(img, nil, newSpacing, geom.AxisY)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resampled.Size().Rows != 1 {
		t.Errorf("Rows = %d, want 1", resampled.Size().Rows)
	}
}
