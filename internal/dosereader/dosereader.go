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

// Package dosereader implements the DICOM RT-Dose reader contract of
// spec section 4.H: it populates an ImageData with size, offset,
// spacing and dose-scaled data read from an RT-Dose file.
package dosereader

import (
	"fmt"
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/geom"
)

// FormatError reports an RT-Dose file missing a required element, or
// one whose element values could not be parsed into the expected shape.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "dosereader: " + e.Msg }

// ReadRTDose parses the DICOM file at path and returns its dose grid
// as an ImageData, scaled into physical dose units
// (DoseGridScaling * raw) and laid out row-major in (frame, row, column)
// order, per spec section 4.H and 6.
func ReadRTDose(path string) (*doseimage.ImageData, error) {
	dataset, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("dosereader: parsing %s: %w", path, err)
	}
	return fromDataset(dataset)
}

func fromDataset(ds dicom.Dataset) (*doseimage.ImageData, error) {
	rows, err := findUint(ds, tag.Rows)
	if err != nil {
		return nil, err
	}
	cols, err := findUint(ds, tag.Columns)
	if err != nil {
		return nil, err
	}
	numberOfFrames, err := findUint(ds, tag.NumberOfFrames)
	if err != nil {
		numberOfFrames = 1 // some RT-Dose exports omit this for single-frame doses
	}

	pixelSpacing, err := findFloats(ds, tag.PixelSpacing)
	if err != nil || len(pixelSpacing) < 2 {
		return nil, &FormatError{Msg: "missing or malformed PixelSpacing"}
	}
	position, err := findFloats(ds, tag.ImagePositionPatient)
	if err != nil || len(position) < 3 {
		return nil, &FormatError{Msg: "missing or malformed ImagePositionPatient"}
	}
	scaling, err := findFloat(ds, tag.DoseGridScaling)
	if err != nil {
		return nil, &FormatError{Msg: "missing or malformed DoseGridScaling"}
	}

	frameSpacing := 0.0
	if numberOfFrames > 1 {
		frameOffsets, err := findFloats(ds, tag.GridFrameOffsetVector)
		if err != nil || len(frameOffsets) < 2 {
			return nil, &FormatError{Msg: "missing or malformed GridFrameOffsetVector for a multi-frame dose"}
		}
		frameSpacing = frameOffsets[1] - frameOffsets[0]
	}

	size := geom.DataSize{Frames: uint32(numberOfFrames), Rows: uint32(rows), Columns: uint32(cols)}
	offset := geom.DataOffset{Frames: position[2], Rows: position[1], Columns: position[0]}
	spacing := geom.DataSpacing{Frames: frameSpacing, Rows: pixelSpacing[0], Columns: pixelSpacing[1]}

	raw, err := findPixelData(ds, size)
	if err != nil {
		return nil, err
	}
	data := make([]float32, len(raw))
	for i, v := range raw {
		data[i] = float32(float64(v) * scaling)
	}

	return doseimage.New(data, size, offset, spacing)
}

func findElement(ds dicom.Dataset, t tag.Tag) (*dicom.Element, error) {
	elem, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, &FormatError{Msg: fmt.Sprintf("missing element %v: %v", t, err)}
	}
	return elem, nil
}

func findFloats(ds dicom.Dataset, t tag.Tag) ([]float64, error) {
	elem, err := findElement(ds, t)
	if err != nil {
		return nil, err
	}
	strs, ok := elem.Value.GetValue().([]string)
	if !ok {
		return nil, &FormatError{Msg: fmt.Sprintf("element %v is not a decimal-string list", t)}
	}
	out := make([]float64, len(strs))
	for i, s := range strs {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, &FormatError{Msg: fmt.Sprintf("element %v value %q is not a number", t, s)}
		}
		out[i] = v
	}
	return out, nil
}

func findFloat(ds dicom.Dataset, t tag.Tag) (float64, error) {
	vals, err := findFloats(ds, t)
	if err != nil || len(vals) == 0 {
		return 0, &FormatError{Msg: fmt.Sprintf("element %v missing a value", t)}
	}
	return vals[0], nil
}

func findUint(ds dicom.Dataset, t tag.Tag) (uint64, error) {
	elem, err := findElement(ds, t)
	if err != nil {
		return 0, err
	}
	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) == 0 {
			return 0, &FormatError{Msg: fmt.Sprintf("element %v has no value", t)}
		}
		return uint64(v[0]), nil
	case []string:
		if len(v) == 0 {
			return 0, &FormatError{Msg: fmt.Sprintf("element %v has no value", t)}
		}
		n, err := strconv.ParseUint(v[0], 10, 64)
		if err != nil {
			return 0, &FormatError{Msg: fmt.Sprintf("element %v value %q is not an integer", t, v[0])}
		}
		return n, nil
	default:
		return 0, &FormatError{Msg: fmt.Sprintf("element %v has unexpected value type", t)}
	}
}

// findPixelData extracts the raw integer samples of PixelData in
// row-major (frame, row, column) order, one sample per voxel as
// required for a grayscale RT-Dose grid.
func findPixelData(ds dicom.Dataset, size geom.DataSize) ([]int, error) {
	elem, err := findElement(ds, tag.PixelData)
	if err != nil {
		return nil, err
	}
	pixelInfo, ok := elem.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, &FormatError{Msg: "PixelData element does not hold native pixel data"}
	}
	total := int(size.Total())
	out := make([]int, 0, total)
	for _, f := range pixelInfo.Frames {
		if f.Encapsulated {
			return nil, &FormatError{Msg: "PixelData frame is encapsulated, expected native"}
		}
		native := f.NativeData
		if native == nil {
			return nil, &FormatError{Msg: "PixelData frame has no native data"}
		}
		for _, sample := range native.RawData {
			out = append(out, int(sample))
		}
	}
	if len(out) != total {
		return nil, &FormatError{Msg: fmt.Sprintf("PixelData has %d samples, expected %d for size %+v", len(out), total, size)}
	}
	return out, nil
}
