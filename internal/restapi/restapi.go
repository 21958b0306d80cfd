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

// Package restapi exposes gamma index computation over HTTP, as a
// driver outside the core engine.
package restapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/gamma"
	"github.com/qadose/gammago/internal/geom"
)

// Serve starts the HTTP API on 0.0.0.0:port and blocks until it exits.
func Serve(port int) {
	r := gin.Default()
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/gamma", postGamma)
		}
	}
	r.Run(fmt.Sprintf(":%d", port))
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// imagePayload is the wire representation of a dose grid: a flat
// row-major buffer plus its geometry.
type imagePayload struct {
	Data    []float32       `json:"data" binding:"required"`
	Size    geom.DataSize   `json:"size" binding:"required"`
	Offset  geom.DataOffset `json:"offset"`
	Spacing geom.DataSpacing `json:"spacing" binding:"required"`
}

func (p imagePayload) toImageData() (*doseimage.ImageData, error) {
	return doseimage.New(p.Data, p.Size, p.Offset, p.Spacing)
}

// parametersPayload is the wire representation of GammaParameters;
// Normalization is spelled out as a string for a readable JSON API.
type parametersPayload struct {
	DDThreshold       float64 `json:"ddThreshold" binding:"required"`
	DTAThreshold      float64 `json:"dtaThreshold" binding:"required"`
	Normalization     string  `json:"normalization"` // "global" or "local"
	GlobalNormDose    float64 `json:"globalNormDose"`
	DoseCutoff        float64 `json:"doseCutoff"`
	MaxSearchDistance float64 `json:"maxSearchDistance"`
	StepSize          float64 `json:"stepSize"`
}

func (p parametersPayload) toGammaParameters() (gamma.GammaParameters, error) {
	norm := gamma.Global
	switch p.Normalization {
	case "", "global":
		norm = gamma.Global
	case "local":
		norm = gamma.Local
	default:
		return gamma.GammaParameters{}, fmt.Errorf("unknown normalization %q", p.Normalization)
	}
	return gamma.GammaParameters{
		DDThreshold:       p.DDThreshold,
		DTAThreshold:      p.DTAThreshold,
		Normalization:     norm,
		GlobalNormDose:    p.GlobalNormDose,
		DoseCutoff:        p.DoseCutoff,
		MaxSearchDistance: p.MaxSearchDistance,
		StepSize:          p.StepSize,
	}, nil
}

type gammaRequest struct {
	Reference      imagePayload      `json:"reference" binding:"required"`
	Evaluation     imagePayload      `json:"evaluation" binding:"required"`
	Parameters     parametersPayload `json:"parameters" binding:"required"`
	Method         string            `json:"method"`         // "classic" or "wendling", default "wendling"
	Dimensionality string            `json:"dimensionality"` // "2d", "2.5d" or "3d"
}

type gammaResponse struct {
	Data        []float32     `json:"data"`
	Size        geom.DataSize `json:"size"`
	PassingRate float64       `json:"passingRate"`
}

func postGamma(c *gin.Context) {
	var req gammaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refImg, err := req.Reference.toImageData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	evalImg, err := req.Evaluation.toImageData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params, err := req.Parameters.toGammaParameters()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	method, err := parseMethod(req.Method)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispatch, err := dispatchFor(req.Dimensionality)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := dispatch(refImg, evalImg, params, method, nil)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gammaResponse{
		Data:        result.Data(),
		Size:        result.Size(),
		PassingRate: result.PassingRate(),
	})
}

func parseMethod(s string) (gamma.GammaMethod, error) {
	switch s {
	case "", "wendling":
		return gamma.Wendling, nil
	case "classic":
		return gamma.Classic, nil
	default:
		return 0, fmt.Errorf("unknown method %q", s)
	}
}

type dispatchFunc func(refImg, evalImg *doseimage.ImageData, params gamma.GammaParameters, method gamma.GammaMethod, logWriter io.Writer) (*gamma.GammaResult, error)

func dispatchFor(dim string) (dispatchFunc, error) {
	switch dim {
	case "", "2d":
		return gamma.GammaIndex2D, nil
	case "2.5d":
		return gamma.GammaIndex2_5D, nil
	case "3d":
		return gamma.GammaIndex3D, nil
	default:
		return nil, fmt.Errorf("unknown dimensionality %q", dim)
	}
}
