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
	"sort"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/geom"
	"github.com/qadose/gammago/internal/interp"
)

// offsetEntry is one precomputed search step: a physical displacement
// from the reference voxel, and its squared Euclidean length.
type offsetEntry struct {
	dz, dy, dx float64
	dist2      float64
}

// buildOffsets2D enumerates (dy,dx) multiples of step within the
// closed disk of radius maxDist, in the Y,X plane only (dz is always
// 0), sorted by squared distance ascending. The disk boundary is
// edge-inclusive: points at exactly maxDist are kept.
func buildOffsets2D(step, maxDist float64) []offsetEntry {
	n := int(math.Floor(maxDist/step + 1e-9))
	maxDist2 := maxDist * maxDist
	var offsets []offsetEntry
	for iy := -n; iy <= n; iy++ {
		dy := float64(iy) * step
		for ix := -n; ix <= n; ix++ {
			dx := float64(ix) * step
			d2 := dy*dy + dx*dx
			if d2 <= maxDist2+1e-9 {
				offsets = append(offsets, offsetEntry{dy: dy, dx: dx, dist2: d2})
			}
		}
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i].dist2 < offsets[j].dist2 })
	return offsets
}

// buildOffsets3D is the 3-D analog of buildOffsets2D: a sphere of
// (dz,dy,dx) triples.
func buildOffsets3D(step, maxDist float64) []offsetEntry {
	n := int(math.Floor(maxDist/step + 1e-9))
	maxDist2 := maxDist * maxDist
	var offsets []offsetEntry
	for iz := -n; iz <= n; iz++ {
		dz := float64(iz) * step
		for iy := -n; iy <= n; iy++ {
			dy := float64(iy) * step
			for ix := -n; ix <= n; ix++ {
				dx := float64(ix) * step
				d2 := dz*dz + dy*dy + dx*dx
				if d2 <= maxDist2+1e-9 {
					offsets = append(offsets, offsetEntry{dz: dz, dy: dy, dx: dx, dist2: d2})
				}
			}
		}
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i].dist2 < offsets[j].dist2 })
	return offsets
}

// wendlingVoxel2D runs the bounded search for one reference voxel
// against a single frame of evalImg, sampling by bilinear
// interpolation at each offset.
func wendlingVoxel2D(refY, refX, refDose float64, evalImg *doseimage.ImageData, frame uint32, p *GammaParameters, offsets []offsetEntry) float64 {
	dtaSq := p.DTAThreshold * p.DTAThreshold
	best := math.Inf(1)
	for _, o := range offsets {
		if o.dist2/dtaSq >= best {
			break
		}
		v, ok := interp.BilinearAtPoint(evalImg, frame, refY+o.dy, refX+o.dx)
		if !ok || math.IsNaN(float64(v)) {
			continue
		}
		s := gammaSquaredTerm(refDose, float64(v), p, o.dist2)
		if s < best {
			best = s
		}
	}
	if math.IsInf(best, 1) {
		return math.NaN()
	}
	return math.Sqrt(best)
}

// wendlingVoxel3D is the 3-D analog, sampling by trilinear
// interpolation at each offset.
func wendlingVoxel3D(refZ, refY, refX, refDose float64, evalImg *doseimage.ImageData, p *GammaParameters, offsets []offsetEntry) float64 {
	dtaSq := p.DTAThreshold * p.DTAThreshold
	best := math.Inf(1)
	for _, o := range offsets {
		if o.dist2/dtaSq >= best {
			break
		}
		v, ok := interp.TrilinearAtPoint(evalImg, refZ+o.dz, refY+o.dy, refX+o.dx)
		if !ok || math.IsNaN(float64(v)) {
			continue
		}
		s := gammaSquaredTerm(refDose, float64(v), p, o.dist2)
		if s < best {
			best = s
		}
	}
	if math.IsInf(best, 1) {
		return math.NaN()
	}
	return math.Sqrt(best)
}

// resampleEvalZSlice builds a one-frame image holding evalImg
// trilinearly resampled onto the single Z plane at physical position
// z, keeping evalImg's Y/X grid. This is the 2.5-D Wendling
// preprocessing step of spec section 4.F: each reference frame gets
// its own Z-matched evaluation slice before a 2-D Wendling search.
func resampleEvalZSlice(evalImg *doseimage.ImageData, z float64) (*doseimage.ImageData, error) {
	size := evalImg.Size()
	offset, spacing := evalImg.Offset(), evalImg.Spacing()
	data := make([]float32, uint64(size.Rows)*uint64(size.Columns))
	for r := uint32(0); r < size.Rows; r++ {
		y := geom.Position(offset.Rows, spacing.Rows, r)
		rowBase := uint64(r) * uint64(size.Columns)
		for c := uint32(0); c < size.Columns; c++ {
			x := geom.Position(offset.Columns, spacing.Columns, c)
			v, ok := interp.TrilinearAtPoint(evalImg, z, y, x)
			if !ok {
				v = float32(math.NaN())
			}
			data[rowBase+uint64(c)] = v
		}
	}
	newOffset := geom.DataOffset{Frames: z, Rows: offset.Rows, Columns: offset.Columns}
	newSpacing := geom.DataSpacing{Frames: 0, Rows: spacing.Rows, Columns: spacing.Columns}
	return doseimage.New(data, geom.DataSize{Frames: 1, Rows: size.Rows, Columns: size.Columns}, newOffset, newSpacing)
}
