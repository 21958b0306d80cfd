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

// Package interp implements the 1D/2D/3D linear interpolation used both
// as an independent resampling preprocessing step and, on the fly, inside
// the Wendling gamma kernel's polar/spherical search.
package interp

import (
	"math"

	"github.com/qadose/gammago/internal/doseimage"
)

// axisSample locates the interpolation bracket for a physical position
// along one axis. For a degenerate axis (size 1) any position is treated
// as in-range at that single sample, since there is nothing to bracket.
// Otherwise positions outside [offset, offset+(size-1)*spacing] are out
// of range; the final grid line is edge-inclusive.
func axisSample(offset, spacing float64, size uint32, pos float64) (idx0 int, frac float64, ok bool) {
	if size <= 1 {
		return 0, 0, true
	}
	c := (pos - offset) / spacing
	if c < 0 || c > float64(size-1) {
		return 0, 0, false
	}
	idx0 = int(math.Floor(c))
	if idx0 >= int(size)-1 {
		idx0 = int(size) - 2
		frac = 1
	} else {
		frac = c - float64(idx0)
	}
	return idx0, frac, true
}

// neighborIdx returns the index adjacent to idx0 along an axis of the
// given size, clamped to idx0 itself when the axis is degenerate (size 1)
// so callers never index out of bounds.
func neighborIdx(idx0 int, size uint32) int {
	if size <= 1 {
		return idx0
	}
	return idx0 + 1
}

// BilinearAtPoint samples img at physical position (y, x) within the
// given frame using bilinear interpolation. It reports false if the
// point lies outside the image's Y/X extent or frame is out of range.
func BilinearAtPoint(img *doseimage.ImageData, frame uint32, y, x float64) (float32, bool) {
	size := img.Size()
	if frame >= size.Frames {
		return 0, false
	}
	offset, spacing := img.Offset(), img.Spacing()

	ry0, fracY, ok := axisSample(offset.Rows, spacing.Rows, size.Rows, y)
	if !ok {
		return 0, false
	}
	rx0, fracX, ok := axisSample(offset.Columns, spacing.Columns, size.Columns, x)
	if !ok {
		return 0, false
	}
	ry1 := neighborIdx(ry0, size.Rows)
	rx1 := neighborIdx(rx0, size.Columns)

	v00 := img.Get(frame, uint32(ry0), uint32(rx0))
	v01 := img.Get(frame, uint32(ry0), uint32(rx1))
	v10 := img.Get(frame, uint32(ry1), uint32(rx0))
	v11 := img.Get(frame, uint32(ry1), uint32(rx1))

	v0 := float64(v00)*(1-fracX) + float64(v01)*fracX
	v1 := float64(v10)*(1-fracX) + float64(v11)*fracX
	v := v0*(1-fracY) + v1*fracY
	return float32(v), true
}

// TrilinearAtPoint samples img at physical position (z, y, x) using
// trilinear interpolation. It reports false if the point lies outside
// the image's extent along any axis.
func TrilinearAtPoint(img *doseimage.ImageData, z, y, x float64) (float32, bool) {
	size := img.Size()
	offset, spacing := img.Offset(), img.Spacing()

	fz0, fracZ, ok := axisSample(offset.Frames, spacing.Frames, size.Frames, z)
	if !ok {
		return 0, false
	}
	ry0, fracY, ok := axisSample(offset.Rows, spacing.Rows, size.Rows, y)
	if !ok {
		return 0, false
	}
	rx0, fracX, ok := axisSample(offset.Columns, spacing.Columns, size.Columns, x)
	if !ok {
		return 0, false
	}
	fz1 := neighborIdx(fz0, size.Frames)
	ry1 := neighborIdx(ry0, size.Rows)
	rx1 := neighborIdx(rx0, size.Columns)

	c000 := float64(img.Get(uint32(fz0), uint32(ry0), uint32(rx0)))
	c001 := float64(img.Get(uint32(fz0), uint32(ry0), uint32(rx1)))
	c010 := float64(img.Get(uint32(fz0), uint32(ry1), uint32(rx0)))
	c011 := float64(img.Get(uint32(fz0), uint32(ry1), uint32(rx1)))
	c100 := float64(img.Get(uint32(fz1), uint32(ry0), uint32(rx0)))
	c101 := float64(img.Get(uint32(fz1), uint32(ry0), uint32(rx1)))
	c110 := float64(img.Get(uint32(fz1), uint32(ry1), uint32(rx0)))
	c111 := float64(img.Get(uint32(fz1), uint32(ry1), uint32(rx1)))

	c00 := c000*(1-fracX) + c001*fracX
	c01 := c010*(1-fracX) + c011*fracX
	c10 := c100*(1-fracX) + c101*fracX
	c11 := c110*(1-fracX) + c111*fracX

	c0 := c00*(1-fracY) + c01*fracY
	c1 := c10*(1-fracY) + c11*fracY

	v := c0*(1-fracZ) + c1*fracZ
	return float32(v), true
}
