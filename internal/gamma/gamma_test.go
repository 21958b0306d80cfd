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

package gamma

import (
	"math"
	"testing"

	"github.com/valyala/fastrand"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/geom"
)

func mustImage2D(t *testing.T, rows [][]float32, offset geom.DataOffset, spacing geom.DataSpacing) *doseimage.ImageData {
	t.Helper()
	img, err := doseimage.New2D(rows, offset, spacing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return img
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// Scenario 1: tiny 2-D Classic, Global 3%/3mm, cutoff 0.
func TestClassic2DTinyGrid(t *testing.T) {
	ref := mustImage2D(t, [][]float32{{0.93, 0.95}, {0.97, 1.00}},
		geom.DataOffset{Rows: 0, Columns: -1}, geom.DataSpacing{Rows: 1, Columns: 1})
	eval := mustImage2D(t, [][]float32{{0.95, 0.97}, {1.00, 1.03}},
		geom.DataOffset{Rows: -1, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})

	params := GammaParameters{
		DDThreshold: 3, DTAThreshold: 3,
		Normalization: Global, GlobalNormDose: 1.00,
		DoseCutoff: 0,
	}
	result, err := GammaIndex2DClassic(ref, eval, params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.816496, 0.333333, 0.942809, 0.333333}
	got := result.Data()
	for i, w := range want {
		if !approxEqual(float64(got[i]), w, 2e-3) {
			t.Errorf("voxel %d: got %v, want %v", i, got[i], w)
		}
	}

	size := result.Size()
	if size != ref.Size() {
		t.Errorf("result size %+v, want reference size %+v", size, ref.Size())
	}
	if result.Offset() != ref.Offset() {
		t.Errorf("result offset %+v, want reference offset %+v", result.Offset(), ref.Offset())
	}
}

// Scenario 2: tiny 2-D Classic, Global 3%/3mm, spacing 2, cutoff 0.
func TestClassic2DTinyGridSpacing2(t *testing.T) {
	ref := mustImage2D(t, [][]float32{{0.93, 0.95}, {0.97, 1.00}},
		geom.DataOffset{Rows: 0, Columns: -1}, geom.DataSpacing{Rows: 2, Columns: 2})
	eval := mustImage2D(t, [][]float32{{0.93, 0.96}, {0.90, 1.02}},
		geom.DataOffset{Rows: 1, Columns: 0}, geom.DataSpacing{Rows: 2, Columns: 2})

	params := GammaParameters{
		DDThreshold: 3, DTAThreshold: 3,
		Normalization: Global, GlobalNormDose: 1.00,
		DoseCutoff: 0,
	}
	result, err := GammaIndex2DClassic(ref, eval, params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{0.471, 0.577, 1.106, 0.816}
	got := result.Data()
	for i, w := range want {
		if !approxEqual(float64(got[i]), w, 5e-3) {
			t.Errorf("voxel %d: got %v, want %v", i, got[i], w)
		}
	}
}

// Scenario 3: identity self-comparison is exactly 0 everywhere.
func TestClassicIdentitySelfComparisonIsZero(t *testing.T) {
	rng := fastrand.RNG{}
	rows := make([][]float32, 6)
	for r := range rows {
		row := make([]float32, 6)
		for c := range row {
			row[c] = float32(rng.Uint32n(1000)) / 100.0
		}
		rows[r] = row
	}
	img := mustImage2D(t, rows, geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})

	params := GammaParameters{
		DDThreshold: 3, DTAThreshold: 3,
		Normalization: Global, GlobalNormDose: 10,
		DoseCutoff: 0,
	}
	result, err := GammaIndex2DClassic(img, img, params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range result.Data() {
		if v != 0 {
			t.Errorf("voxel %d: got %v, want 0", i, v)
		}
	}
}

// Scenario 4: Local normalization, a zero reference voxel below cutoff is NaN.
func TestLocalNormalizationCutoff(t *testing.T) {
	ref := mustImage2D(t, [][]float32{{0, 1}, {2, 4}},
		geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})
	eval := mustImage2D(t, [][]float32{{0, 1}, {2, 4}},
		geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})

	params := GammaParameters{
		DDThreshold: 3, DTAThreshold: 3,
		Normalization: Local,
		DoseCutoff:    0.01 * 4,
	}
	result, err := GammaIndex2DClassic(ref, eval, params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(float64(result.Data()[0])) {
		t.Errorf("zero-dose voxel below cutoff: got %v, want NaN", result.Data()[0])
	}
	for i := 1; i < len(result.Data()); i++ {
		if v := result.Data()[i]; v != 0 {
			t.Errorf("voxel %d: got %v, want 0 (identical, above cutoff)", i, v)
		}
	}
}

// Monotonicity in tolerance: widening ddThreshold and dtaThreshold never
// lowers the passing rate.
func TestMonotonicityInTolerance(t *testing.T) {
	ref := mustImage2D(t, [][]float32{{0.9, 1.0}, {1.1, 0.95}},
		geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})
	eval := mustImage2D(t, [][]float32{{0.95, 1.05}, {1.0, 0.9}},
		geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})

	narrow := GammaParameters{DDThreshold: 2, DTAThreshold: 2, Normalization: Global, GlobalNormDose: 1, DoseCutoff: 0}
	wide := GammaParameters{DDThreshold: 5, DTAThreshold: 5, Normalization: Global, GlobalNormDose: 1, DoseCutoff: 0}

	narrowResult, err := GammaIndex2DClassic(ref, eval, narrow, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wideResult, err := GammaIndex2DClassic(ref, eval, wide, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wideResult.PassingRate() < narrowResult.PassingRate() {
		t.Errorf("wider tolerance passing rate %v < narrower %v", wideResult.PassingRate(), narrowResult.PassingRate())
	}
}

// Wendling with a small step size and a generous search radius should
// approach Classic's result at voxels where the true minimum lies
// inside the search disk.
func TestWendlingApproachesClassic(t *testing.T) {
	ref := mustImage2D(t, [][]float32{{0.9, 1.0, 1.05}, {1.1, 0.95, 1.0}, {0.98, 1.02, 1.0}},
		geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})
	eval := mustImage2D(t, [][]float32{{0.95, 1.05, 1.0}, {1.0, 0.9, 1.05}, {1.0, 1.0, 0.98}},
		geom.DataOffset{Rows: 0, Columns: 0}, geom.DataSpacing{Rows: 1, Columns: 1})

	dta := 2.0
	params := GammaParameters{
		DDThreshold: 3, DTAThreshold: dta,
		Normalization: Global, GlobalNormDose: 1, DoseCutoff: 0,
		StepSize: dta / 10, MaxSearchDistance: 10 * dta,
	}

	classic, err := GammaIndex2DClassic(ref, eval, params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wendling, err := GammaIndex2DWendling(ref, eval, params, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range classic.Data() {
		c, w := float64(classic.Data()[i]), float64(wendling.Data()[i])
		if math.Abs(c-w) > 1e-2 {
			t.Errorf("voxel %d: classic %v, wendling %v, diff exceeds tolerance", i, c, w)
		}
	}
}

func TestParameterValidation(t *testing.T) {
	bad := GammaParameters{DDThreshold: 0, DTAThreshold: 3, Normalization: Global, GlobalNormDose: 1}
	if err := bad.Validate(Classic); err == nil {
		t.Errorf("expected ParameterError for non-positive ddThreshold")
	}

	bad = GammaParameters{DDThreshold: 3, DTAThreshold: 3, Normalization: Global, GlobalNormDose: 0}
	if err := bad.Validate(Classic); err == nil {
		t.Errorf("expected ParameterError for Global without globalNormDose")
	}

	bad = GammaParameters{DDThreshold: 3, DTAThreshold: 3, Normalization: Local, StepSize: 0, MaxSearchDistance: 1}
	if err := bad.Validate(Wendling); err == nil {
		t.Errorf("expected ParameterError for Wendling without stepSize")
	}

	ok := GammaParameters{DDThreshold: 3, DTAThreshold: 3, Normalization: Local, DoseCutoff: 0}
	if err := ok.Validate(Classic); err != nil {
		t.Errorf("unexpected error for legal Local/cutoff-0 parameters: %v", err)
	}
}

func TestGeometryErrorOnDimensionMismatch(t *testing.T) {
	ref3D, err := doseimage.New3D([][][]float32{{{1, 2}, {3, 4}}, {{5, 6}, {7, 8}}},
		geom.DataOffset{}, geom.DataSpacing{Frames: 1, Rows: 1, Columns: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	params := GammaParameters{DDThreshold: 3, DTAThreshold: 3, Normalization: Global, GlobalNormDose: 1}
	if _, err := GammaIndex2D(ref3D, ref3D, params, Classic, nil); err == nil {
		t.Errorf("expected GeometryError for a multi-frame image passed to gammaIndex2D")
	}
}
