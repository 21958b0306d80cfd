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

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/geom"
)

// newAxisExtent computes the number of samples of a resampled axis: the
// new grid starts at newOffset and steps by newSpacing, covering as much
// of the source's closed extent [offset, offset+(size-1)*spacing] as
// fits; the final sample may land just inside that upper bound.
func newAxisExtent(offset, spacing float64, size uint32, newOffset, newSpacing float64) uint32 {
	upper := offset + float64(size-1)*spacing
	span := upper - newOffset
	if span < 0 {
		return 1
	}
	n := int(math.Floor(span/newSpacing)) + 1
	if n < 1 {
		n = 1
	}
	return uint32(n)
}

// axisTarget is the geometry of one resampled axis: offset/spacing nil
// means "inherit from source, unchanged". size, if non-nil, forces the
// axis extent exactly instead of deriving it from the source's physical
// extent via newAxisExtent.
type axisTarget struct {
	offset  *float64
	spacing *float64
	size    *uint32
}

func resampleCore(img *doseimage.ImageData, targets map[geom.Axis]axisTarget) (*doseimage.ImageData, error) {
	srcSize, srcOffset, srcSpacing := img.Size(), img.Offset(), img.Spacing()

	newSize := srcSize
	newOffset := srcOffset
	newSpacing := srcSpacing

	for axis, t := range targets {
		oldOffset := srcOffset.AxisValue(axis)
		oldSpacing := srcSpacing.AxisValue(axis)
		oldSize := srcSize.AxisValue(axis)

		o := oldOffset
		if t.offset != nil {
			o = *t.offset
		}
		s := oldSpacing
		if t.spacing != nil {
			s = *t.spacing
		}

		n := newAxisExtent(oldOffset, oldSpacing, oldSize, o, s)
		if t.size != nil {
			n = *t.size
		}
		newOffset = newOffset.WithAxisValue(axis, o)
		newSpacing = newSpacing.WithAxisValue(axis, s)
		switch axis {
		case geom.AxisZ:
			newSize.Frames = n
		case geom.AxisY:
			newSize.Rows = n
		default:
			newSize.Columns = n
		}
	}

	data := make([]float32, newSize.Total())
	for f := uint32(0); f < newSize.Frames; f++ {
		z := geom.Position(newOffset.Frames, newSpacing.Frames, f)
		for r := uint32(0); r < newSize.Rows; r++ {
			y := geom.Position(newOffset.Rows, newSpacing.Rows, r)
			rowBase := (uint64(f)*uint64(newSize.Rows) + uint64(r)) * uint64(newSize.Columns)
			for c := uint32(0); c < newSize.Columns; c++ {
				x := geom.Position(newOffset.Columns, newSpacing.Columns, c)
				v, ok := TrilinearAtPoint(img, z, y, x)
				if !ok {
					v = float32(math.NaN())
				}
				data[rowBase+uint64(c)] = v
			}
		}
	}
	return doseimage.New(data, newSize, newOffset, newSpacing)
}

// LinearAlongAxis resamples img to a new spacing (and, optionally, a new
// offset) along a single axis, keeping the other two axes' geometry
// unchanged. newOffset nil means the offset along axis is unchanged.
func LinearAlongAxis(img *doseimage.ImageData, newOffset *float64, newSpacing float64, axis geom.Axis) (*doseimage.ImageData, error) {
	return resampleCore(img, map[geom.Axis]axisTarget{
		axis: {offset: newOffset, spacing: &newSpacing},
	})
}

// BilinearOnPlane resamples img to new spacings (and, optionally, new
// offsets) along the two in-plane axes of plane, keeping the third axis
// unchanged. Axial resamples Y,X; Coronal resamples Z,X; Sagittal
// resamples Z,Y.
func BilinearOnPlane(img *doseimage.ImageData, newOffsetA, newOffsetB *float64, newSpacingA, newSpacingB float64, plane geom.Plane) (*doseimage.ImageData, error) {
	axisA, axisB := planeAxes(plane)
	return resampleCore(img, map[geom.Axis]axisTarget{
		axisA: {offset: newOffsetA, spacing: &newSpacingA},
		axisB: {offset: newOffsetB, spacing: &newSpacingB},
	})
}

// Trilinear resamples img to a new spacing (and, optionally, a new
// offset) along all three axes.
func Trilinear(img *doseimage.ImageData, newOffset *geom.DataOffset, newSpacing geom.DataSpacing) (*doseimage.ImageData, error) {
	targets := map[geom.Axis]axisTarget{}
	axes := []geom.Axis{geom.AxisZ, geom.AxisY, geom.AxisX}
	for _, a := range axes {
		s := newSpacing.AxisValue(a)
		t := axisTarget{spacing: &s}
		if newOffset != nil {
			o := newOffset.AxisValue(a)
			t.offset = &o
		}
		targets[a] = t
	}
	return resampleCore(img, targets)
}

// TrilinearOnto resamples evalImg onto refImg's exact geometry (size,
// offset and spacing), the form used to align an evaluated dose onto a
// reference dose's grid before a direct voxel-to-voxel comparison. The
// result always has refImg's exact Size(), regardless of how far
// evalImg's physical extent falls short of or overshoots it; voxels
// outside evalImg's extent come back NaN like any other out-of-bounds
// sample.
func TrilinearOnto(evalImg, refImg *doseimage.ImageData) (*doseimage.ImageData, error) {
	offset := refImg.Offset()
	spacing := refImg.Spacing()
	size := refImg.Size()

	targets := map[geom.Axis]axisTarget{}
	for _, a := range []geom.Axis{geom.AxisZ, geom.AxisY, geom.AxisX} {
		o := offset.AxisValue(a)
		s := spacing.AxisValue(a)
		n := size.AxisValue(a)
		targets[a] = axisTarget{offset: &o, spacing: &s, size: &n}
	}
	return resampleCore(evalImg, targets)
}

func planeAxes(plane geom.Plane) (geom.Axis, geom.Axis) {
	switch plane {
	case geom.Coronal:
		return geom.AxisZ, geom.AxisX
	case geom.Sagittal:
		return geom.AxisZ, geom.AxisY
	default:
		return geom.AxisY, geom.AxisX
	}
}
