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

// Package doseimage holds ImageData, the positioned float32 voxel grid
// shared by reference doses, evaluated doses and gamma results.
package doseimage

import (
	"fmt"

	"github.com/qadose/gammago/internal/geom"
)

// ShapeError reports a ragged nested input or a buffer/geometry mismatch.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string { return "shape error: " + e.Msg }

// SpacingError reports a non-positive spacing value.
type SpacingError struct {
	Spacing geom.DataSpacing
}

func (e *SpacingError) Error() string {
	return fmt.Sprintf("spacing error: spacing %+v must be strictly positive on every axis with nonzero size", e.Spacing)
}

// ImageData is a flat, row-major (frame,row,column) float32 voxel grid with
// physical geometry. NaN voxels mean "missing/below cutoff"; +-Inf is
// permitted but pathological. ImageData exclusively owns its buffer:
// slices and plane rotations produce independent copies.
type ImageData struct {
	size    geom.DataSize
	offset  geom.DataOffset
	spacing geom.DataSpacing
	data    []float32
}

// New builds an ImageData from a flat row-major buffer and geometry.
// Fails with ShapeError if the buffer length disagrees with size, and
// with SpacingError if a row or column spacing is <= 0, or the frame
// spacing is <= 0 on a multi-frame image.
func New(data []float32, size geom.DataSize, offset geom.DataOffset, spacing geom.DataSpacing) (*ImageData, error) {
	if uint64(len(data)) != size.Total() {
		return nil, &ShapeError{Msg: fmt.Sprintf("buffer length %d disagrees with size %+v (%d voxels)", len(data), size, size.Total())}
	}
	if err := validateSpacing(spacing, size); err != nil {
		return nil, err
	}
	return &ImageData{size: size, offset: offset, spacing: spacing, data: data}, nil
}

// validateSpacing requires every in-use axis to have a positive
// spacing: Rows and Columns always, and Frames too once size.Frames>1
// makes it a genuine third dimension rather than the 0-spacing
// single-frame convention of spec section 3.
func validateSpacing(spacing geom.DataSpacing, size geom.DataSize) error {
	if spacing.Rows <= 0 || spacing.Columns <= 0 {
		return &SpacingError{Spacing: spacing}
	}
	if size.Frames > 1 && spacing.Frames <= 0 {
		return &SpacingError{Spacing: spacing}
	}
	return nil
}

// New2D builds a one-frame ImageData from a ragged-checked 2D nested slice
// in (row, column) order. Frames size is 1 and frame spacing is 0, per the
// 2D convention of spec section 3.
func New2D(rows [][]float32, offset geom.DataOffset, spacing geom.DataSpacing) (*ImageData, error) {
	if len(rows) == 0 {
		return nil, &ShapeError{Msg: "2D input has zero rows"}
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, &ShapeError{Msg: "2D input has zero columns"}
	}
	data := make([]float32, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, &ShapeError{Msg: fmt.Sprintf("ragged 2D input: row 0 has %d columns, row %d has %d", cols, i, len(r))}
		}
		data = append(data, r...)
	}
	size := geom.DataSize{Frames: 1, Rows: uint32(len(rows)), Columns: uint32(cols)}
	if spacing.Frames != 0 {
		spacing.Frames = 0
	}
	return New(data, size, offset, spacing)
}

// New3D builds an ImageData from a ragged-checked 3D nested slice in
// (frame, row, column) order.
func New3D(frames [][][]float32, offset geom.DataOffset, spacing geom.DataSpacing) (*ImageData, error) {
	if len(frames) == 0 {
		return nil, &ShapeError{Msg: "3D input has zero frames"}
	}
	rows := len(frames[0])
	if rows == 0 {
		return nil, &ShapeError{Msg: "3D input has zero rows"}
	}
	cols := len(frames[0][0])
	if cols == 0 {
		return nil, &ShapeError{Msg: "3D input has zero columns"}
	}
	data := make([]float32, 0, len(frames)*rows*cols)
	for fi, frame := range frames {
		if len(frame) != rows {
			return nil, &ShapeError{Msg: fmt.Sprintf("ragged 3D input: frame 0 has %d rows, frame %d has %d", rows, fi, len(frame))}
		}
		for ri, r := range frame {
			if len(r) != cols {
				return nil, &ShapeError{Msg: fmt.Sprintf("ragged 3D input: frame %d row 0 has %d columns, row %d has %d", fi, cols, ri, len(r))}
			}
			data = append(data, r...)
		}
	}
	size := geom.DataSize{Frames: uint32(len(frames)), Rows: uint32(rows), Columns: uint32(cols)}
	return New(data, size, offset, spacing)
}

// Size returns the image's voxel-count geometry.
func (img *ImageData) Size() geom.DataSize { return img.size }

// Offset returns the image's physical offset.
func (img *ImageData) Offset() geom.DataOffset { return img.offset }

// Spacing returns the image's voxel spacing.
func (img *ImageData) Spacing() geom.DataSpacing { return img.spacing }

// Len returns the number of voxels (frames*rows*columns).
func (img *ImageData) Len() int { return len(img.data) }

// Data returns the underlying flat buffer. Callers must not mutate it
// unless they own the ImageData exclusively.
func (img *ImageData) Data() []float32 { return img.data }

// SetSize changes the declared geometry without touching the buffer.
// Fails with ShapeError if the new size's voxel count differs from the
// current buffer length.
func (img *ImageData) SetSize(size geom.DataSize) error {
	if size.Total() != uint64(len(img.data)) {
		return &ShapeError{Msg: fmt.Sprintf("setSize: new size %+v has %d voxels, buffer has %d", size, size.Total(), len(img.data))}
	}
	img.size = size
	return nil
}

// SetOffset changes the image's physical offset.
func (img *ImageData) SetOffset(offset geom.DataOffset) {
	img.offset = offset
}

// SetSpacing changes the image's voxel spacing. Fails with SpacingError
// under the same rule as New: row or column spacing <= 0, or frame
// spacing <= 0 on a multi-frame image.
func (img *ImageData) SetSpacing(spacing geom.DataSpacing) error {
	if err := validateSpacing(spacing, img.size); err != nil {
		return err
	}
	img.spacing = spacing
	return nil
}

// At returns the voxel at (frame, row, column), bounds-checked.
func (img *ImageData) At(frame, row, column uint32) (float32, error) {
	idx, err := geom.Flatten(img.size, frame, row, column)
	if err != nil {
		return 0, err
	}
	return img.data[idx], nil
}

// Get returns the voxel at (frame, row, column) without bounds checking,
// for hot loops that have already established the index is valid.
func (img *ImageData) Get(frame, row, column uint32) float32 {
	idx := (uint64(frame)*uint64(img.size.Rows) + uint64(row)) * uint64(img.size.Columns) + uint64(column)
	return img.data[idx]
}

// Position returns the physical position (z, y, x) of voxel (frame, row, column).
func (img *ImageData) Position(frame, row, column uint32) (z, y, x float64) {
	z = geom.Position(img.offset.Frames, img.spacing.Frames, frame)
	y = geom.Position(img.offset.Rows, img.spacing.Rows, row)
	x = geom.Position(img.offset.Columns, img.spacing.Columns, column)
	return
}

// Clone returns an independent deep copy of img.
func (img *ImageData) Clone() *ImageData {
	data := make([]float32, len(img.data))
	copy(data, img.data)
	return &ImageData{size: img.size, offset: img.offset, spacing: img.spacing, data: data}
}
