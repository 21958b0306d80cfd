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

// Package gamma implements the gamma index comparison between a
// reference and an evaluated dose distribution: the Classic exhaustive
// kernel, the Wendling bounded polar/spherical search kernel, and the
// 2-D/2.5-D/3-D dispatch shells over both.
package gamma

import "fmt"

// Normalization selects how the dose-difference term is normalized.
type Normalization int

const (
	// Global normalizes by a single fixed dose for every voxel.
	Global Normalization = iota
	// Local normalizes by each reference voxel's own dose.
	Local
)

func (n Normalization) String() string {
	if n == Local {
		return "Local"
	}
	return "Global"
}

// GammaMethod selects the search strategy. Wendling is the default: it
// is the faster, recommended method for production use; Classic remains
// available as the exhaustive reference implementation.
type GammaMethod int

const (
	Wendling GammaMethod = iota
	Classic
)

func (m GammaMethod) String() string {
	if m == Classic {
		return "Classic"
	}
	return "Wendling"
}

// ParameterError reports an invalid GammaParameters value for the
// method it is about to be used with.
type ParameterError struct {
	Msg string
}

func (e *ParameterError) Error() string { return "parameter error: " + e.Msg }

// GeometryError reports that a dispatch entry point received inputs
// whose dimensionality does not match what that entry point requires.
type GeometryError struct {
	Msg string
}

func (e *GeometryError) Error() string { return "geometry error: " + e.Msg }

// GammaParameters configures a gamma index computation.
type GammaParameters struct {
	DDThreshold       float64 // percent
	DTAThreshold      float64 // millimeters
	Normalization     Normalization
	GlobalNormDose    float64 // required, and must be >0, when Normalization==Global
	DoseCutoff        float64 // reference dose floor; below this, output is NaN
	MaxSearchDistance float64 // millimeters; Wendling only
	StepSize          float64 // millimeters; Wendling only
}

// Validate checks that p is self-consistent for method. Local
// normalization with a zero DoseCutoff is legal (§4.E's singularity
// handling covers the D_r=0 case); Global without a positive
// GlobalNormDose is not.
func (p GammaParameters) Validate(method GammaMethod) error {
	if p.DDThreshold <= 0 {
		return &ParameterError{Msg: fmt.Sprintf("ddThreshold must be > 0, got %g", p.DDThreshold)}
	}
	if p.DTAThreshold <= 0 {
		return &ParameterError{Msg: fmt.Sprintf("dtaThreshold must be > 0, got %g", p.DTAThreshold)}
	}
	if p.Normalization == Global && p.GlobalNormDose <= 0 {
		return &ParameterError{Msg: fmt.Sprintf("globalNormDose must be > 0 for Global normalization, got %g", p.GlobalNormDose)}
	}
	if method == Wendling {
		if p.MaxSearchDistance < 0 {
			return &ParameterError{Msg: fmt.Sprintf("maxSearchDistance must be >= 0, got %g", p.MaxSearchDistance)}
		}
		if p.StepSize <= 0 {
			return &ParameterError{Msg: fmt.Sprintf("stepSize must be > 0 for Wendling, got %g", p.StepSize)}
		}
	}
	return nil
}
