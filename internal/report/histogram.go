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

// Package report builds the human-readable summary cmd/gammacli prints
// under --report: a NaN-aware histogram of gamma values plus the bin
// holding the most voxels.
package report

import "math"

// Histogram buckets the non-NaN values of data into len(bins) equal-width
// bins spanning [min,max], overwriting bins in place. NaN voxels (excluded
// by the dose cutoff) are skipped rather than counted.
func Histogram(data []float32, min, max float32, bins []int32) {
	for i := range bins {
		bins[i] = 0
	}
	if max <= min || len(bins) == 0 {
		return
	}
	scale := float32(len(bins)) / (max - min)
	for _, d := range data {
		if math.IsNaN(float64(d)) {
			continue
		}
		index := int((d - min) * scale)
		if index < 0 {
			index = 0
		}
		if index >= len(bins) {
			index = len(bins) - 1
		}
		bins[index]++
	}
}

// Peak returns the center and count of the most populated bin.
func Peak(bins []int32, min, max float32) (center float32, count int32) {
	maxIndex, maxValue := 0, int32(-1)
	for i, v := range bins {
		if v > maxValue {
			maxIndex, maxValue = i, v
		}
	}
	center = min + (float32(maxIndex)+0.5)*(max-min)/float32(len(bins))
	return center, maxValue
}
