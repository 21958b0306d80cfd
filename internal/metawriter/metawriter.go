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

// Package metawriter writes ImageData to the MetaImage (.mha) format:
// an ASCII header followed by a raw float32 voxel payload in host byte
// order, per spec section 6's bit-exact contract.
package metawriter

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/qadose/gammago/internal/doseimage"
)

// WriteToFile writes img as a MetaImage file at fileName.
func WriteToFile(img *doseimage.ImageData, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := Write(img, writer); err != nil {
		return err
	}
	return writer.Flush()
}

// Write writes img as a MetaImage stream to writer: an ASCII header with
// LF-terminated lines, then DimSize voxels of raw float32 data in host
// byte order.
func Write(img *doseimage.ImageData, writer io.Writer) error {
	size := img.Size()
	offset := img.Offset()
	spacing := img.Spacing()

	frameSpacing := spacing.Frames
	if frameSpacing == 0 {
		frameSpacing = 1 // 2D image occupying a 3D slot
	}

	byteOrder := hostByteOrder()
	msb := "False"
	if byteOrder == binary.BigEndian {
		msb = "True"
	}

	header := fmt.Sprintf(
		"ObjectType = Image\n"+
			"NDims = 3\n"+
			"DimSize = %d %d %d\n"+
			"Offset = %s %s %s\n"+
			"ElementSpacing = %s %s %s\n"+
			"Orientation = 1 0 0 0 1 0 0 0 1\n"+
			"BinaryData = True\n"+
			"BinaryDataByteOrderMSB = %s\n"+
			"CompressedData = False\n"+
			"ElementType = MET_FLOAT\n"+
			"ElementDataFile = LOCAL\n",
		size.Columns, size.Rows, size.Frames,
		formatFloat(offset.Columns), formatFloat(offset.Rows), formatFloat(offset.Frames),
		formatFloat(spacing.Columns), formatFloat(spacing.Rows), formatFloat(frameSpacing),
		msb,
	)
	if _, err := io.WriteString(writer, header); err != nil {
		return err
	}

	return binary.Write(writer, byteOrder, img.Data())
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%v", v)
}

// hostByteOrder reports the machine's native byte order, needed because
// MetaImage embeds raw binary voxels rather than a portable encoding.
func hostByteOrder() binary.ByteOrder {
	var probe uint16 = 1
	bytes := *(*[2]byte)(unsafe.Pointer(&probe))
	if bytes[0] == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}
