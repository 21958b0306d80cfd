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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Min returns the minimum voxel value. If any voxel is NaN, the result
// is NaN, following IEEE comparison semantics (NaN is neither less nor
// greater than anything).
func (img *ImageData) Min() float32 {
	if containsNaN(img.data) {
		return float32(math.NaN())
	}
	return minFloat32(img.data)
}

// Max returns the maximum voxel value, NaN-propagating like Min.
func (img *ImageData) Max() float32 {
	if containsNaN(img.data) {
		return float32(math.NaN())
	}
	return maxFloat32(img.data)
}

// Sum returns the sum of voxel values as float64, NaN-propagating.
func (img *ImageData) Sum() float64 {
	return floats.Sum(toFloat64(img.data))
}

// Mean returns the mean of voxel values as float64, NaN-propagating.
func (img *ImageData) Mean() float64 {
	if len(img.data) == 0 {
		return math.NaN()
	}
	return img.Sum() / float64(len(img.data))
}

// Var returns the population variance (divide by N, not N-1) of voxel
// values as float64, NaN-propagating. Uses the mean-squared-deviation
// form rather than the raw second moment for numerical stability.
func (img *ImageData) Var() float64 {
	return populationVariance(toFloat64(img.data))
}

// NanMin returns the minimum non-NaN voxel value, or NaN if all voxels
// are NaN (or the image is empty).
func (img *ImageData) NanMin() float32 {
	found := false
	m := float32(math.Inf(1))
	for _, v := range img.data {
		if math.IsNaN(float64(v)) {
			continue
		}
		found = true
		if v < m {
			m = v
		}
	}
	if !found {
		return float32(math.NaN())
	}
	return m
}

// NanMax returns the maximum non-NaN voxel value, or NaN if all voxels
// are NaN (or the image is empty).
func (img *ImageData) NanMax() float32 {
	found := false
	m := float32(math.Inf(-1))
	for _, v := range img.data {
		if math.IsNaN(float64(v)) {
			continue
		}
		found = true
		if v > m {
			m = v
		}
	}
	if !found {
		return float32(math.NaN())
	}
	return m
}

// NanSum returns the sum of non-NaN voxel values.
func (img *ImageData) NanSum() float64 {
	return floats.Sum(img.nonNaN64())
}

// NanMean returns the mean of non-NaN voxel values, or NaN if all are NaN.
func (img *ImageData) NanMean() float64 {
	vals := img.nonNaN64()
	if len(vals) == 0 {
		return math.NaN()
	}
	return floats.Sum(vals) / float64(len(vals))
}

// NanVar returns the population variance of non-NaN voxel values, or NaN
// if all are NaN.
func (img *ImageData) NanVar() float64 {
	vals := img.nonNaN64()
	if len(vals) == 0 {
		return math.NaN()
	}
	return populationVariance(vals)
}

// NanSize returns the count of non-NaN voxels.
func (img *ImageData) NanSize() int {
	n := 0
	for _, v := range img.data {
		if !math.IsNaN(float64(v)) {
			n++
		}
	}
	return n
}

// ContainsNaN reports whether any voxel is NaN.
func (img *ImageData) ContainsNaN() bool { return containsNaN(img.data) }

// ContainsInf reports whether any voxel is +-Inf.
func (img *ImageData) ContainsInf() bool {
	for _, v := range img.data {
		if math.IsInf(float64(v), 0) {
			return true
		}
	}
	return false
}

func (img *ImageData) nonNaN64() []float64 {
	vals := make([]float64, 0, len(img.data))
	for _, v := range img.data {
		if !math.IsNaN(float64(v)) {
			vals = append(vals, float64(v))
		}
	}
	return vals
}

func containsNaN(data []float32) bool {
	for _, v := range data {
		if math.IsNaN(float64(v)) {
			return true
		}
	}
	return false
}

func minFloat32(data []float32) float32 {
	m := data[0]
	for _, v := range data[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat32(data []float32) float32 {
	m := data[0]
	for _, v := range data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func toFloat64(data []float32) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

// populationVariance computes the divide-by-N variance of vals using
// gonum's sample (N-1) variance and rescaling, rather than hand-rolling
// the reduction: stat.MeanVariance already implements the numerically
// stable mean-squared-deviation form spec'd for this package.
func populationVariance(vals []float64) float64 {
	n := len(vals)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		if math.IsNaN(vals[0]) {
			return math.NaN()
		}
		return 0
	}
	_, sampleVar := stat.MeanVariance(vals, nil)
	return sampleVar * float64(n-1) / float64(n)
}
