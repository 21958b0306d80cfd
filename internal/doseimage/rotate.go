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
	"fmt"

	"github.com/qadose/gammago/internal/geom"
)

// GetImageData2D returns a single-frame image extracted along plane at the
// given source frame index (Axial) or in-plane index (Coronal/Sagittal).
// This is a read-only rotation, not a mutation: the result owns an
// independent buffer.
func (img *ImageData) GetImageData2D(frame uint32, plane geom.Plane) (*ImageData, error) {
	switch plane {
	case geom.Axial:
		return img.sliceAxial(frame)
	case geom.Coronal:
		return img.sliceCoronal(frame)
	case geom.Sagittal:
		return img.sliceSagittal(frame)
	default:
		return nil, fmt.Errorf("doseimage: unknown plane %v", plane)
	}
}

// sliceAxial extracts source frame `frame` unchanged: rows/columns stay Y/X.
func (img *ImageData) sliceAxial(frame uint32) (*ImageData, error) {
	if frame >= img.size.Frames {
		return nil, &geom.BoundsError{Frame: frame, Size: img.size}
	}
	rows, cols := img.size.Rows, img.size.Columns
	data := make([]float32, rows*cols)
	start := uint64(frame) * uint64(rows) * uint64(cols)
	copy(data, img.data[start:start+uint64(rows)*uint64(cols)])
	offset := geom.DataOffset{
		Frames:  geom.Position(img.offset.Frames, img.spacing.Frames, frame),
		Rows:    img.offset.Rows,
		Columns: img.offset.Columns,
	}
	spacing := geom.DataSpacing{Frames: 0, Rows: img.spacing.Rows, Columns: img.spacing.Columns}
	return New(data, geom.DataSize{Frames: 1, Rows: rows, Columns: cols}, offset, spacing)
}

// sliceCoronal extracts the ZX plane at in-plane row index `row`: output
// rows iterate source frames, output columns stay source columns.
func (img *ImageData) sliceCoronal(row uint32) (*ImageData, error) {
	if row >= img.size.Rows {
		return nil, &geom.BoundsError{Row: row, Size: img.size}
	}
	frames, cols := img.size.Frames, img.size.Columns
	data := make([]float32, uint64(frames)*uint64(cols))
	for f := uint32(0); f < frames; f++ {
		srcStart := (uint64(f)*uint64(img.size.Rows) + uint64(row)) * uint64(cols)
		dstStart := uint64(f) * uint64(cols)
		copy(data[dstStart:dstStart+uint64(cols)], img.data[srcStart:srcStart+uint64(cols)])
	}
	offset := geom.DataOffset{
		Frames:  geom.Position(img.offset.Rows, img.spacing.Rows, row),
		Rows:    img.offset.Frames,
		Columns: img.offset.Columns,
	}
	spacing := geom.DataSpacing{Frames: 0, Rows: img.spacing.Frames, Columns: img.spacing.Columns}
	return New(data, geom.DataSize{Frames: 1, Rows: frames, Columns: cols}, offset, spacing)
}

// sliceSagittal extracts the ZY plane at in-plane column index `column`:
// output rows iterate source rows, output columns iterate source frames.
func (img *ImageData) sliceSagittal(column uint32) (*ImageData, error) {
	if column >= img.size.Columns {
		return nil, &geom.BoundsError{Column: column, Size: img.size}
	}
	frames, rows := img.size.Frames, img.size.Rows
	data := make([]float32, uint64(rows)*uint64(frames))
	for r := uint32(0); r < rows; r++ {
		for f := uint32(0); f < frames; f++ {
			srcIdx := (uint64(f)*uint64(rows) + uint64(r)) * uint64(img.size.Columns) + uint64(column)
			dstIdx := uint64(r)*uint64(frames) + uint64(f)
			data[dstIdx] = img.data[srcIdx]
		}
	}
	offset := geom.DataOffset{
		Frames:  geom.Position(img.offset.Columns, img.spacing.Columns, column),
		Rows:    img.offset.Rows,
		Columns: img.offset.Frames,
	}
	spacing := geom.DataSpacing{Frames: 0, Rows: img.spacing.Rows, Columns: img.spacing.Frames}
	return New(data, geom.DataSize{Frames: 1, Rows: rows, Columns: frames}, offset, spacing)
}

// GetImageData3D rotates the whole volume so that plane becomes axial.
// Coronal and Sagittal are each their own inverse under this convention:
// applying the same rotation twice returns the original image.
func (img *ImageData) GetImageData3D(plane geom.Plane) (*ImageData, error) {
	switch plane {
	case geom.Axial:
		return img.Clone(), nil
	case geom.Coronal:
		return img.rotateCoronal()
	case geom.Sagittal:
		return img.rotateSagittal()
	default:
		return nil, fmt.Errorf("doseimage: unknown plane %v", plane)
	}
}

// rotateCoronal maps output voxel (f',r',c') to source voxel (r',f',c'),
// swapping the Z/Y axes of the geometry.
func (img *ImageData) rotateCoronal() (*ImageData, error) {
	newSize := geom.DataSize{Frames: img.size.Rows, Rows: img.size.Frames, Columns: img.size.Columns}
	data := make([]float32, img.Len())
	for fp := uint32(0); fp < newSize.Frames; fp++ {
		for rp := uint32(0); rp < newSize.Rows; rp++ {
			srcRowStart := (uint64(rp)*uint64(img.size.Rows) + uint64(fp)) * uint64(img.size.Columns)
			dstRowStart := (uint64(fp)*uint64(newSize.Rows) + uint64(rp)) * uint64(newSize.Columns)
			copy(data[dstRowStart:dstRowStart+uint64(newSize.Columns)], img.data[srcRowStart:srcRowStart+uint64(newSize.Columns)])
		}
	}
	newOffset := geom.DataOffset{Frames: img.offset.Rows, Rows: img.offset.Frames, Columns: img.offset.Columns}
	newSpacing := geom.DataSpacing{Frames: img.spacing.Rows, Rows: img.spacing.Frames, Columns: img.spacing.Columns}
	return New(data, newSize, newOffset, newSpacing)
}

// rotateSagittal maps output voxel (f',r',c') to source voxel (c',r',f'),
// swapping the Z/X axes of the geometry.
func (img *ImageData) rotateSagittal() (*ImageData, error) {
	newSize := geom.DataSize{Frames: img.size.Columns, Rows: img.size.Rows, Columns: img.size.Frames}
	data := make([]float32, img.Len())
	for fp := uint32(0); fp < newSize.Frames; fp++ {
		for rp := uint32(0); rp < newSize.Rows; rp++ {
			for cp := uint32(0); cp < newSize.Columns; cp++ {
				srcIdx := (uint64(cp)*uint64(img.size.Rows) + uint64(rp)) * uint64(img.size.Columns) + uint64(fp)
				dstIdx := (uint64(fp)*uint64(newSize.Rows) + uint64(rp)) * uint64(newSize.Columns) + uint64(cp)
				data[dstIdx] = img.data[srcIdx]
			}
		}
	}
	newOffset := geom.DataOffset{Frames: img.offset.Columns, Rows: img.offset.Rows, Columns: img.offset.Frames}
	newSpacing := geom.DataSpacing{Frames: img.spacing.Columns, Rows: img.spacing.Rows, Columns: img.spacing.Frames}
	return New(data, newSize, newOffset, newSpacing)
}
