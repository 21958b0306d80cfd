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

package doseimage

import (
	"math"
	"testing"

	"github.com/qadose/gammago/internal/geom"
)

func nearlyEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestNanAwareStatistics(t *testing.T) {
	nan := float32(math.NaN())
	data := []float32{nan, 0.5, 0.2, 0.0, 1.0, 0.2, nan, 1.1, 3.0, 0.1, nan, nan}
	size := geom.DataSize{Frames: 1, Rows: 1, Columns: uint32(len(data))}
	offset := geom.DataOffset{}
	spacing := geom.DataSpacing{Frames: 0, Rows: 1, Columns: 1}

	img, err := New(data, size, offset, spacing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !nearlyEqual(float64(img.NanMin()), 0.0, 1e-9) {
		t.Errorf("NanMin = %v, want 0.0", img.NanMin())
	}
	if !nearlyEqual(float64(img.NanMax()), 3.0, 1e-9) {
		t.Errorf("NanMax = %v, want 3.0", img.NanMax())
	}
	if !nearlyEqual(img.NanSum(), 6.1, 1e-6) {
		t.Errorf("NanSum = %v, want 6.1", img.NanSum())
	}
	if !nearlyEqual(img.NanMean(), 0.7625, 1e-6) {
		t.Errorf("NanMean = %v, want 0.7625", img.NanMean())
	}
	if !nearlyEqual(img.NanVar(), 0.86234375, 1e-6) {
		t.Errorf("NanVar = %v, want 0.86234375", img.NanVar())
	}
	if img.NanSize() != 8 {
		t.Errorf("NanSize = %d, want 8", img.NanSize())
	}
	if !img.ContainsNaN() {
		t.Errorf("ContainsNaN = false, want true")
	}
}

func TestNaNPropagatingStatistics(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	size := geom.DataSize{Frames: 1, Rows: 1, Columns: 4}
	img, err := New(data, size, geom.DataOffset{}, geom.DataSpacing{Rows: 1, Columns: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Min() != 1 {
		t.Errorf("Min = %v, want 1", img.Min())
	}
	if img.Max() != 4 {
		t.Errorf("Max = %v, want 4", img.Max())
	}
	if !nearlyEqual(img.Mean(), 2.5, 1e-9) {
		t.Errorf("Mean = %v, want 2.5", img.Mean())
	}
	if !nearlyEqual(img.Var(), 1.25, 1e-9) {
		t.Errorf("Var = %v, want 1.25", img.Var())
	}

	withNaN, err := New([]float32{1, float32(math.NaN()), 3}, geom.DataSize{Frames: 1, Rows: 1, Columns: 3}, geom.DataOffset{}, geom.DataSpacing{Rows: 1, Columns: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(float64(withNaN.Min())) {
		t.Errorf("Min with NaN present should be NaN, got %v", withNaN.Min())
	}
	if !math.IsNaN(withNaN.Mean()) {
		t.Errorf("Mean with NaN present should be NaN, got %v", withNaN.Mean())
	}
}

func TestShapeAndSpacingValidation(t *testing.T) {
	size := geom.DataSize{Frames: 1, Rows: 2, Columns: 2}
	if _, err := New([]float32{1, 2, 3}, size, geom.DataOffset{}, geom.DataSpacing{Rows: 1, Columns: 1}); err == nil {
		t.Errorf("expected ShapeError for mismatched buffer length")
	}
	if _, err := New([]float32{1, 2, 3, 4}, size, geom.DataOffset{}, geom.DataSpacing{Rows: 0, Columns: 1}); err == nil {
		t.Errorf("expected SpacingError for zero row spacing")
	}
}

func TestZeroFrameSpacingRejectedForGenuine3D(t *testing.T) {
	size := geom.DataSize{Frames: 2, Rows: 2, Columns: 2}
	data := make([]float32, size.Total())
	if _, err := New(data, size, geom.DataOffset{}, geom.DataSpacing{Frames: 0, Rows: 1, Columns: 1}); err == nil {
		t.Errorf("expected SpacingError for zero frame spacing on a multi-frame image")
	}
	if _, err := New(data, size, geom.DataOffset{}, geom.DataSpacing{Frames: 2, Rows: 1, Columns: 1}); err != nil {
		t.Errorf("unexpected error with a valid frame spacing: %v", err)
	}

	singleFrame := geom.DataSize{Frames: 1, Rows: 2, Columns: 2}
	if _, err := New(make([]float32, singleFrame.Total()), singleFrame, geom.DataOffset{}, geom.DataSpacing{Frames: 0, Rows: 1, Columns: 1}); err != nil {
		t.Errorf("unexpected error for the single-frame, zero-frame-spacing convention: %v", err)
	}
}
