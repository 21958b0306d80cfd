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

// classicVoxel runs the exhaustive Classic scan for one reference
// voxel at physical position (refZ, refY, refX) with dose refDose,
// against every voxel of evalImg. When includeZ is false the Z
// coordinate is dropped from the distance term (2-D mode); when true,
// every evaluation frame is scanned and the Z difference contributes
// to distTerm (2.5-D and 3-D mode, per spec section 4.E's resolution
// of the ambiguous 2.5-D wording: all evaluation frames, Z included).
// Returns gamma, already minimized and square-rooted.
func classicVoxel(refZ, refY, refX, refDose float64, evalImg *doseimage.ImageData, p *GammaParameters, includeZ bool) float64 {
	best := classicScanAVX2OrPureGo(refZ, refY, refX, refDose, evalImg, p, includeZ)
	return math.Sqrt(best)
}

// classicScanPureGo is the portable reference scan: nested loops over
// every evaluation voxel, tracking the running minimum and stopping as
// soon as it is already a pass (gamma^2 <= 1), per spec section 4.E.
func classicScanPureGo(refZ, refY, refX, refDose float64, evalImg *doseimage.ImageData, p *GammaParameters, includeZ bool) float64 {
	size := evalImg.Size()
	offset, spacing := evalImg.Offset(), evalImg.Spacing()

	best := math.Inf(1)
	for f := uint32(0); f < size.Frames; f++ {
		var dz2 float64
		if includeZ {
			z := offset.Frames + float64(f)*spacing.Frames
			dz := z - refZ
			dz2 = dz * dz
		}
		for r := uint32(0); r < size.Rows; r++ {
			y := offset.Rows + float64(r)*spacing.Rows
			dy := y - refY
			dy2 := dy * dy
			rowBase := (uint64(f)*uint64(size.Rows) + uint64(r)) * uint64(size.Columns)
			for c := uint32(0); c < size.Columns; c++ {
				evalDose := float64(evalImg.Data()[rowBase+uint64(c)])
				if math.IsNaN(evalDose) {
					continue
				}
				x := offset.Columns + float64(c)*spacing.Columns
				dx := x - refX
				dist2 := dz2 + dy2 + dx*dx

				s := gammaSquaredTerm(refDose, evalDose, p, dist2)
				if s < best {
					best = s
					if best <= 1 {
						return best
					}
				}
			}
		}
	}
	return best
}
