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

// Package visualize renders a single frame of a gamma result as a
// colorized TIFF preview, for headless QA pipelines that have no Qt
// viewer to look at the NaN-aware pass/fail map directly.
package visualize

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/tiff"

	"github.com/qadose/gammago/internal/doseimage"
)

// gammaClip is the gamma value at which the failing-color ramp
// saturates to pure red; values beyond it are indistinguishable in the
// preview from gammaClip itself.
const gammaClip = 2.0

// excludedColor is used for NaN voxels (excluded by the dose cutoff).
var excludedColor = colorful.Hcl(0, 0, 0.08) // near-black

// WritePreviewToFile renders frame of img and writes it as a TIFF to
// fileName.
func WritePreviewToFile(img *doseimage.ImageData, frame uint32, fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WritePreview(img, frame, writer); err != nil {
		return err
	}
	return writer.Flush()
}

// WritePreview renders frame of img and writes it as a TIFF to writer.
// Voxels with gamma<=1 shade from blue (0) to green (1); voxels with
// gamma>1 shade from green (1) to red (gammaClip or beyond); NaN
// voxels (excluded by the dose cutoff) render near-black.
func WritePreview(img *doseimage.ImageData, frame uint32, writer io.Writer) error {
	size := img.Size()
	if frame >= size.Frames {
		return fmt.Errorf("visualize: frame %d out of range for %d frames", frame, size.Frames)
	}

	width, height := int(size.Columns), int(size.Rows)
	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			v := img.Get(frame, uint32(r), uint32(c))
			rgba.Set(c, r, gammaColor(float64(v)))
		}
	}

	return tiff.Encode(writer, rgba, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
}

func gammaColor(gamma float64) colorful.Color {
	if math.IsNaN(gamma) {
		return excludedColor
	}
	if gamma < 0 {
		gamma = 0
	}

	const passHue, failHue = 200.0, 10.0 // blue-ish pass ramp, red-ish fail ramp
	const midHue = 120.0                 // green at gamma==1
	const chroma, lightness = 0.7, 0.55

	if gamma <= 1 {
		hue := passHue + (midHue-passHue)*gamma
		return colorful.Hcl(hue, chroma, lightness).Clamped()
	}
	t := (gamma - 1) / (gammaClip - 1)
	if t > 1 {
		t = 1
	}
	hue := midHue + (failHue-midHue)*t
	return colorful.Hcl(hue, chroma, lightness).Clamped()
}
