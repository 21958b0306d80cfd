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

package gamma

import "math"

// gammaSquaredTerm computes doseTerm+distTerm for one (reference,
// candidate) pair, given the squared physical distance between them.
// When normalization is Local and refDose is 0, deltaD is 0: the term
// is 0 only if evalDose also equals refDose exactly, +Inf otherwise —
// the singularity described in spec section 4.E, which the dose cutoff
// is expected to screen out before this function is ever called for a
// zero-dose voxel that should not pass.
func gammaSquaredTerm(refDose, evalDose float64, p *GammaParameters, dist2 float64) float64 {
	normDose := p.GlobalNormDose
	if p.Normalization == Local {
		normDose = refDose
	}
	deltaD := p.DDThreshold / 100 * normDose
	diff := refDose - evalDose

	var doseTerm float64
	if deltaD == 0 {
		if diff == 0 {
			doseTerm = 0
		} else {
			doseTerm = math.Inf(1)
		}
	} else {
		doseTerm = (diff * diff) / (deltaD * deltaD)
	}

	distTerm := dist2 / (p.DTAThreshold * p.DTAThreshold)
	return doseTerm + distTerm
}

// cutoff reports whether a reference dose excludes its voxel from the
// search entirely: below doseCutoff, or NaN.
func cutoff(refDose float64, p *GammaParameters) bool {
	return math.IsNaN(refDose) || refDose < p.DoseCutoff
}
