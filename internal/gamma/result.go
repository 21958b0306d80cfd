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

	"github.com/qadose/gammago/internal/doseimage"
)

// GammaResult is an ImageData whose voxels hold the per-voxel gamma
// value, or NaN where the voxel was excluded by cutoff, by the
// reference being NaN, or (Wendling only) by no evaluation sample
// falling within range. It carries the reference image's geometry.
type GammaResult struct {
	*doseimage.ImageData
}

// PassingRate returns |{v : v <= 1, v != NaN}| / NanSize(), or 0 if
// every voxel is NaN.
func (r *GammaResult) PassingRate() float64 {
	n := r.NanSize()
	if n == 0 {
		return 0
	}
	passing := 0
	for _, v := range r.Data() {
		if math.IsNaN(float64(v)) {
			continue
		}
		if v <= 1 {
			passing++
		}
	}
	return float64(passing) / float64(n)
}
