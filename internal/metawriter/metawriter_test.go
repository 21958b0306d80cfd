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

package metawriter

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/geom"
)

func TestWriteHeaderFields(t *testing.T) {
	img, err := doseimage.New2D([][]float32{{1, 2}, {3, 4}},
		geom.DataOffset{Rows: -5, Columns: -10}, geom.DataSpacing{Rows: 2, Columns: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(img, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	want := []string{
		"ObjectType = Image",
		"NDims = 3",
		"DimSize = 2 2 1",
		"Offset = -10 -5 0",
		"ElementSpacing = 3 2 1",
		"Orientation = 1 0 0 0 1 0 0 0 1",
		"BinaryData = True",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("header line %d = %q, want %q", i, lines[i], w)
		}
	}
	if !strings.HasPrefix(lines[7], "BinaryDataByteOrderMSB = ") {
		t.Errorf("header line 7 = %q, want BinaryDataByteOrderMSB prefix", lines[7])
	}
	if lines[8] != "CompressedData = False" {
		t.Errorf("header line 8 = %q", lines[8])
	}
	if lines[9] != "ElementType = MET_FLOAT" {
		t.Errorf("header line 9 = %q", lines[9])
	}
	if lines[10] != "ElementDataFile = LOCAL" {
		t.Errorf("header line 10 = %q", lines[10])
	}
}

func TestWritePayloadIsRawFloat32(t *testing.T) {
	img, err := doseimage.New2D([][]float32{{1.5, 2.5}},
		geom.DataOffset{}, geom.DataSpacing{Rows: 1, Columns: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(img, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payload := buf.Bytes()[bytes.Index(buf.Bytes(), []byte("ElementDataFile = LOCAL\n"))+len("ElementDataFile = LOCAL\n"):]
	if len(payload) != 2*4 {
		t.Fatalf("payload length = %d, want 8", len(payload))
	}
	order := hostByteOrder()
	v0 := order.Uint32(payload[0:4])
	got := math.Float32frombits(v0)
	if got != 1.5 {
		t.Errorf("first voxel = %v, want 1.5", got)
	}
}
