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

// Package geom holds the pure geometry value types shared by every dose
// image: grid sizes, physical offsets, voxel spacings, axes and planes.
package geom

import "fmt"

// Axis identifies one of the three grid axes. Z=frames, Y=rows, X=columns,
// following the LPS (left-posterior-superior) convention.
type Axis int

const (
	AxisZ Axis = iota // frames
	AxisY             // rows
	AxisX             // columns
)

func (a Axis) String() string {
	switch a {
	case AxisZ:
		return "Z"
	case AxisY:
		return "Y"
	case AxisX:
		return "X"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Plane identifies a 2D slicing/rotation plane through a 3D volume.
type Plane int

const (
	Axial    Plane = iota // YX plane, identity rotation
	Coronal              // ZX plane
	Sagittal             // ZY plane
)

func (p Plane) String() string {
	switch p {
	case Axial:
		return "Axial"
	case Coronal:
		return "Coronal"
	case Sagittal:
		return "Sagittal"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// DataSize is the voxel-count extent of a grid along frames (Z), rows (Y)
// and columns (X). All three must be nonzero for a valid image.
type DataSize struct {
	Frames  uint32
	Rows    uint32
	Columns uint32
}

// Total returns the number of voxels frames*rows*columns.
func (s DataSize) Total() uint64 {
	return uint64(s.Frames) * uint64(s.Rows) * uint64(s.Columns)
}

// DataOffset is the millimeter position of voxel (0,0,0) along each axis.
type DataOffset struct {
	Frames  float64
	Rows    float64
	Columns float64
}

// DataSpacing is the millimeter distance between adjacent voxel centers
// along each axis. Every component must be strictly positive for a valid
// 3D image; 2D images conventionally carry Frames=0.
type DataSpacing struct {
	Frames  float64
	Rows    float64
	Columns float64
}

// BoundsError reports an out-of-range voxel index. Flattening an
// out-of-bounds index is a programming error, not a data condition.
type BoundsError struct {
	Frame, Row, Column uint32
	Size               DataSize
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("index (%d,%d,%d) out of bounds for size (%d,%d,%d)",
		e.Frame, e.Row, e.Column, e.Size.Frames, e.Size.Rows, e.Size.Columns)
}

// Flatten converts a (frame, row, column) index into a row-major offset
// into a flat buffer of the given size: (f*rows+r)*columns+c.
func Flatten(size DataSize, frame, row, column uint32) (uint64, error) {
	if frame >= size.Frames || row >= size.Rows || column >= size.Columns {
		return 0, &BoundsError{Frame: frame, Row: row, Column: column, Size: size}
	}
	return (uint64(frame)*uint64(size.Rows)+uint64(row))*uint64(size.Columns) + uint64(column), nil
}

// Position returns the physical position of voxel index along axis, given
// the image's offset and spacing: offset + index*spacing.
func Position(offset, spacing float64, index uint32) float64 {
	return offset + float64(index)*spacing
}

// AxisValue extracts the component of a DataSize/DataOffset/DataSpacing-like
// triple that corresponds to axis. Used by generic dispatch code that needs
// to address frames/rows/columns by Axis rather than by field name.
func (s DataSize) AxisValue(a Axis) uint32 {
	switch a {
	case AxisZ:
		return s.Frames
	case AxisY:
		return s.Rows
	default:
		return s.Columns
	}
}

func (o DataOffset) AxisValue(a Axis) float64 {
	switch a {
	case AxisZ:
		return o.Frames
	case AxisY:
		return o.Rows
	default:
		return o.Columns
	}
}

func (s DataSpacing) AxisValue(a Axis) float64 {
	switch a {
	case AxisZ:
		return s.Frames
	case AxisY:
		return s.Rows
	default:
		return s.Columns
	}
}

// WithAxisValue returns a copy of o with axis a set to v.
func (o DataOffset) WithAxisValue(a Axis, v float64) DataOffset {
	switch a {
	case AxisZ:
		o.Frames = v
	case AxisY:
		o.Rows = v
	default:
		o.Columns = v
	}
	return o
}

// WithAxisValue returns a copy of s with axis a set to v.
func (s DataSpacing) WithAxisValue(a Axis, v float64) DataSpacing {
	switch a {
	case AxisZ:
		s.Frames = v
	case AxisY:
		s.Rows = v
	default:
		s.Columns = v
	}
	return s
}
