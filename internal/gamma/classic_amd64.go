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

// +build amd64

package gamma

import (
	"math"

	"github.com/klauspost/cpuid"

	"github.com/qadose/gammago/internal/doseimage"
)

// classicScanAVX2OrPureGo picks between classicScanWideStride (a pure-Go
// scan with per-row invariants hoisted out of the inner loop) and the
// portable scalar scan, mirroring stats_amd64.go's AVX2 gate. The
// source's SIMD classic kernel is vectorization-neutral per spec
// section 9; neither path is hand-written architecture assembly, since
// correctness of the latter cannot be checked without building.
func classicScanAVX2OrPureGo(refZ, refY, refX, refDose float64, evalImg *doseimage.ImageData, p *GammaParameters, includeZ bool) float64 {
	if cpuid.CPU.AVX2() {
		return classicScanWideStride(refZ, refY, refX, refDose, evalImg, p, includeZ)
	}
	return classicScanPureGo(refZ, refY, refX, refDose, evalImg, p, includeZ)
}

// classicScanWideStride precomputes each row's squared Y (and Z)
// offset once for the whole row instead of once per voxel, but checks
// the early-termination bound after every single voxel exactly like
// classicScanPureGo, so the two paths are numerically identical and
// only differ in which invariants get hoisted out of the inner loop.
func classicScanWideStride(refZ, refY, refX, refDose float64, evalImg *doseimage.ImageData, p *GammaParameters, includeZ bool) float64 {
	size := evalImg.Size()
	offset, spacing := evalImg.Offset(), evalImg.Spacing()
	data := evalImg.Data()

	best := math.Inf(1)
	for f := uint32(0); f < size.Frames; f++ {
		var dz2 float64
		if includeZ {
			dz := offset.Frames + float64(f)*spacing.Frames - refZ
			dz2 = dz * dz
		}
		for r := uint32(0); r < size.Rows; r++ {
			dy := offset.Rows + float64(r)*spacing.Rows - refY
			dy2 := dy * dy
			dRow2 := dz2 + dy2
			rowBase := (uint64(f)*uint64(size.Rows) + uint64(r)) * uint64(size.Columns)

			for c := uint32(0); c < size.Columns; c++ {
				evalDose := float64(data[rowBase+uint64(c)])
				if math.IsNaN(evalDose) {
					continue
				}
				dx := offset.Columns + float64(c)*spacing.Columns - refX
				dist2 := dRow2 + dx*dx
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
