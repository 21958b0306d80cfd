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

// +build !amd64

package gamma

import "github.com/qadose/gammago/internal/doseimage"

// classicScanAVX2OrPureGo has nothing to gate on non-amd64 targets.
func classicScanAVX2OrPureGo(refZ, refY, refX, refDose float64, evalImg *doseimage.ImageData, p *GammaParameters, includeZ bool) float64 {
	return classicScanPureGo(refZ, refY, refX, refDose, evalImg, p, includeZ)
}
