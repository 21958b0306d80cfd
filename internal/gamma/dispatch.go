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

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"

	"github.com/pbnjay/memory"

	"github.com/qadose/gammago/internal/doseimage"
)

// GammaIndex2D compares two single-frame images, ignoring Z entirely.
func GammaIndex2D(refImg, evalImg *doseimage.ImageData, params GammaParameters, method GammaMethod, logWriter io.Writer) (*GammaResult, error) {
	if refImg.Size().Frames != 1 || evalImg.Size().Frames != 1 {
		return nil, &GeometryError{Msg: "gammaIndex2D requires single-frame reference and evaluation images"}
	}
	return dispatch(refImg, evalImg, params, method, dimTwoD, logWriter)
}

// GammaIndex2_5D compares 3-D images frame-by-frame. Classic scans
// every evaluation frame for each reference voxel, with Z included in
// the distance term. Wendling resamples the evaluation volume onto the
// reference frame's Z plane and runs a 2-D search on that slice.
func GammaIndex2_5D(refImg, evalImg *doseimage.ImageData, params GammaParameters, method GammaMethod, logWriter io.Writer) (*GammaResult, error) {
	if refImg.Size().Frames < 1 || evalImg.Size().Frames < 1 {
		return nil, &GeometryError{Msg: "gammaIndex2_5D requires non-empty 3-D reference and evaluation images"}
	}
	return dispatch(refImg, evalImg, params, method, dimTwoAndHalfD, logWriter)
}

// GammaIndex3D compares two full 3-D volumes.
func GammaIndex3D(refImg, evalImg *doseimage.ImageData, params GammaParameters, method GammaMethod, logWriter io.Writer) (*GammaResult, error) {
	if refImg.Size().Frames < 1 || evalImg.Size().Frames < 1 {
		return nil, &GeometryError{Msg: "gammaIndex3D requires non-empty 3-D reference and evaluation images"}
	}
	return dispatch(refImg, evalImg, params, method, dimThreeD, logWriter)
}

// The six concrete method-specific entry points mirror Gamma.hpp's
// exposed surface: thin wrappers fixing the method argument.
func GammaIndex2DClassic(refImg, evalImg *doseimage.ImageData, params GammaParameters, logWriter io.Writer) (*GammaResult, error) {
	return GammaIndex2D(refImg, evalImg, params, Classic, logWriter)
}
func GammaIndex2DWendling(refImg, evalImg *doseimage.ImageData, params GammaParameters, logWriter io.Writer) (*GammaResult, error) {
	return GammaIndex2D(refImg, evalImg, params, Wendling, logWriter)
}
func GammaIndex2_5DClassic(refImg, evalImg *doseimage.ImageData, params GammaParameters, logWriter io.Writer) (*GammaResult, error) {
	return GammaIndex2_5D(refImg, evalImg, params, Classic, logWriter)
}
func GammaIndex2_5DWendling(refImg, evalImg *doseimage.ImageData, params GammaParameters, logWriter io.Writer) (*GammaResult, error) {
	return GammaIndex2_5D(refImg, evalImg, params, Wendling, logWriter)
}
func GammaIndex3DClassic(refImg, evalImg *doseimage.ImageData, params GammaParameters, logWriter io.Writer) (*GammaResult, error) {
	return GammaIndex3D(refImg, evalImg, params, Classic, logWriter)
}
func GammaIndex3DWendling(refImg, evalImg *doseimage.ImageData, params GammaParameters, logWriter io.Writer) (*GammaResult, error) {
	return GammaIndex3D(refImg, evalImg, params, Wendling, logWriter)
}

type dimensionality int

const (
	dimTwoD dimensionality = iota
	dimTwoAndHalfD
	dimThreeD
)

// dispatch validates parameters, precomputes the Wendling offset table
// once (shared read-only across workers), then partitions the
// reference voxels across a worker pool, mirroring
// internal/ops/stack/stack.go's Apply: a semaphore bounds parallelism
// to NumCPU, batches are sized against available memory and reported
// progress, and each worker writes only its own disjoint output range.
func dispatch(refImg, evalImg *doseimage.ImageData, params GammaParameters, method GammaMethod, dim dimensionality, logWriter io.Writer) (*GammaResult, error) {
	if err := params.Validate(method); err != nil {
		return nil, err
	}

	var offsets2D, offsets3D []offsetEntry
	if method == Wendling {
		offsets3D = buildOffsets3D(params.StepSize, params.MaxSearchDistance)
		offsets2D = buildOffsets2D(params.StepSize, params.MaxSearchDistance)
	}

	size := refImg.Size()
	offset, spacing := refImg.Offset(), refImg.Spacing()
	n := len(refImg.Data())
	data := make([]float32, n)

	zSlices := newZSliceCache(evalImg)

	voxel := func(idx int) float32 {
		f := uint32(idx) / (size.Rows * size.Columns)
		rem := uint32(idx) % (size.Rows * size.Columns)
		r := rem / size.Columns
		c := rem % size.Columns

		refDose := float64(refImg.Get(f, r, c))
		if cutoff(refDose, &params) {
			return float32(math.NaN())
		}
		z, y, x := refImg.Position(f, r, c)

		switch dim {
		case dimTwoD:
			if method == Classic {
				return float32(classicVoxel(z, y, x, refDose, evalImg, &params, false))
			}
			return float32(wendlingVoxel2D(y, x, refDose, evalImg, 0, &params, offsets2D))

		case dimTwoAndHalfD:
			if method == Classic {
				return float32(classicVoxel(z, y, x, refDose, evalImg, &params, true))
			}
			slice, err := zSlices.get(f, z)
			if err != nil {
				return float32(math.NaN())
			}
			return float32(wendlingVoxel2D(y, x, refDose, slice, 0, &params, offsets2D))

		default: // dimThreeD
			if method == Classic {
				return float32(classicVoxel(z, y, x, refDose, evalImg, &params, true))
			}
			return float32(wendlingVoxel3D(z, y, x, refDose, evalImg, &params, offsets3D))
		}
	}

	runWorkers(n, data, voxel, logWriter)

	result, err := doseimage.New(data, size, offset, spacing)
	if err != nil {
		return nil, err
	}
	return &GammaResult{ImageData: result}, nil
}

// zSliceCache memoizes resampleEvalZSlice by reference frame index, so
// 2.5-D Wendling resamples the whole evaluation volume once per
// reference frame instead of once per reference voxel: every voxel in
// a given frame shares the same Z and therefore the same slice.
type zSliceCache struct {
	evalImg *doseimage.ImageData
	mu      sync.Mutex
	slices  map[uint32]*doseimage.ImageData
	errs    map[uint32]error
}

func newZSliceCache(evalImg *doseimage.ImageData) *zSliceCache {
	return &zSliceCache{
		evalImg: evalImg,
		slices:  make(map[uint32]*doseimage.ImageData),
		errs:    make(map[uint32]error),
	}
}

func (zc *zSliceCache) get(f uint32, z float64) (*doseimage.ImageData, error) {
	zc.mu.Lock()
	if slice, ok := zc.slices[f]; ok {
		zc.mu.Unlock()
		return slice, zc.errs[f]
	}
	zc.mu.Unlock()

	slice, err := resampleEvalZSlice(zc.evalImg, z)

	zc.mu.Lock()
	defer zc.mu.Unlock()
	if existing, ok := zc.slices[f]; ok {
		return existing, zc.errs[f]
	}
	zc.slices[f] = slice
	zc.errs[f] = err
	return slice, err
}

// runWorkers partitions [0,n) into memory-bounded batches and runs
// them across a NumCPU()-wide worker pool, printing a percentage
// progress line to logWriter if non-nil. Grounded on stack.go's Apply:
// same semaphore-gated goroutine pattern, same \r%d%% progress style.
func runWorkers(n int, data []float32, voxel func(int) float32, logWriter io.Writer) {
	if n == 0 {
		return
	}
	numBatches := batchCount(n)
	batchSize := (n + numBatches - 1) / numBatches
	sem := make(chan bool, runtime.NumCPU())

	progressLock, progress := sync.Mutex{}, float32(0)
	for lower := 0; lower < n; lower += batchSize {
		upper := lower + batchSize
		if upper > n {
			upper = n
		}

		sem <- true
		go func(lower, upper int) {
			defer func() { <-sem }()
			for i := lower; i < upper; i++ {
				data[i] = voxel(i)
			}
			if logWriter != nil {
				progressLock.Lock()
				progress += float32(upper-lower) / float32(n)
				fmt.Fprintf(logWriter, "\r%d%%", int(progress*100))
				progressLock.Unlock()
			}
		}(lower, upper)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
	if logWriter != nil {
		fmt.Fprintf(logWriter, "\r")
	}
}

// batchCount picks a number of batches that keeps each worker's share
// of the output comfortably within available memory, with a floor of
// 8*NumCPU() batches, mirroring internal/batch.go's memory-aware
// sizing and stack.go's 8 MB work-package heuristic.
func batchCount(n int) int {
	minBatches := 8 * runtime.NumCPU()
	bytesPerVoxel := int64(4)
	totalBytes := int64(n) * bytesPerVoxel
	avail := int64(memory.TotalMemory())
	if avail <= 0 {
		avail = 1 << 30
	}
	budget := avail / 16 // never let one batch claim more than 1/16th of RAM
	byMemory := 1
	if budget > 0 {
		byMemory = int(totalBytes/budget) + 1
	}
	if byMemory < minBatches {
		return minBatches
	}
	return byMemory
}
