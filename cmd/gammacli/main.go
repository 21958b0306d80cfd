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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qadose/gammago/internal/doseimage"
	"github.com/qadose/gammago/internal/dosereader"
	"github.com/qadose/gammago/internal/gamma"
	"github.com/qadose/gammago/internal/metawriter"
	"github.com/qadose/gammago/internal/report"
	"github.com/qadose/gammago/internal/visualize"
)

const version = "0.1.0"

var refPath = flag.String("ref", "", "reference RT-Dose DICOM `file`")
var evalPath = flag.String("eval", "", "evaluated RT-Dose DICOM `file`")

var out = flag.String("out", "gamma.mha", "save gamma volume to `file`, in MetaImage format")
var log = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")
var preview = flag.String("preview", "%auto", "save a colorized TIFF preview to `file`. `%auto` replaces suffix of output file with .tiff, blank disables")
var previewFrame = flag.Uint("previewFrame", 0, "frame index to render into the preview")

var method = flag.String("method", "wendling", "search method: wendling (default, faster) or classic (exhaustive)")
var dim = flag.String("dim", "3d", "comparison dimensionality: 2d, 2.5d or 3d")

var ddThreshold = flag.Float64("ddThreshold", 3, "dose difference threshold in percent")
var dtaThreshold = flag.Float64("dtaThreshold", 3, "distance-to-agreement threshold in millimeters")
var normalization = flag.String("normalization", "global", "dose difference normalization: global or local")
var globalNormDose = flag.Float64("globalNormDose", 0, "normalization dose in Gy, required when normalization=global")
var doseCutoff = flag.Float64("doseCutoff", 0, "reference dose floor below which output is NaN")
var stepSize = flag.Float64("stepSize", 0.1, "wendling search step size in millimeters")
var maxSearchDistance = flag.Float64("maxSearchDistance", 10, "wendling maximum search radius in millimeters")

var reportFlag = flag.Bool("report", true, "print passing rate and descriptive statistics to the log")

func main() {
	var logWriter io.Writer = os.Stdout
	start := time.Now()

	flag.Usage = func() {
		fmt.Fprintf(logWriter, `gammacli Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s -ref dose_ref.dcm -eval dose_eval.dcm [-flag value...]

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log == "%auto" {
		if *out != "" {
			*log = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".log"
		} else {
			*log = ""
		}
	}
	if *log != "" {
		logFile, err := os.Create(*log)
		if err != nil {
			panic(fmt.Sprintf("unable to open log file %s\n", *log))
		}
		logWriter = io.MultiWriter(logWriter, logFile)
	}

	if *preview == "%auto" {
		if *out != "" {
			*preview = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".tiff"
		} else {
			*preview = ""
		}
	}

	if *refPath == "" || *evalPath == "" {
		fmt.Fprintf(logWriter, "gammacli %s: -ref and -eval are required\n\n", version)
		flag.Usage()
		os.Exit(1)
	}

	refImg, err := dosereader.ReadRTDose(*refPath)
	if err != nil {
		fmt.Fprintf(logWriter, "error reading reference dose: %s\n", err)
		os.Exit(1)
	}
	evalImg, err := dosereader.ReadRTDose(*evalPath)
	if err != nil {
		fmt.Fprintf(logWriter, "error reading evaluated dose: %s\n", err)
		os.Exit(1)
	}

	params, err := buildParameters()
	if err != nil {
		fmt.Fprintf(logWriter, "error parsing parameters: %s\n", err)
		os.Exit(1)
	}

	gammaMethod, err := parseMethod(*method)
	if err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err)
		os.Exit(1)
	}

	result, err := runGamma(refImg, evalImg, params, gammaMethod, *dim, logWriter)
	if err != nil {
		fmt.Fprintf(logWriter, "error computing gamma index: %s\n", err)
		os.Exit(1)
	}

	if err := metawriter.WriteToFile(result.ImageData, *out); err != nil {
		fmt.Fprintf(logWriter, "error writing %s: %s\n", *out, err)
		os.Exit(1)
	}
	fmt.Fprintf(logWriter, "Wrote gamma volume to %s\n", *out)

	if *preview != "" {
		if err := visualize.WritePreviewToFile(result.ImageData, uint32(*previewFrame), *preview); err != nil {
			fmt.Fprintf(logWriter, "error writing preview %s: %s\n", *preview, err)
		} else {
			fmt.Fprintf(logWriter, "Wrote preview to %s\n", *preview)
		}
	}

	if *reportFlag {
		printReport(logWriter, result)
	}

	elapsed := time.Now().Sub(start).Round(time.Millisecond * 10)
	fmt.Fprintf(logWriter, "Done after %s\n", elapsed)
}

func buildParameters() (gamma.GammaParameters, error) {
	norm := gamma.Global
	switch *normalization {
	case "global":
		norm = gamma.Global
	case "local":
		norm = gamma.Local
	default:
		return gamma.GammaParameters{}, fmt.Errorf("unknown normalization %q", *normalization)
	}
	return gamma.GammaParameters{
		DDThreshold:       *ddThreshold,
		DTAThreshold:      *dtaThreshold,
		Normalization:     norm,
		GlobalNormDose:    *globalNormDose,
		DoseCutoff:        *doseCutoff,
		MaxSearchDistance: *maxSearchDistance,
		StepSize:          *stepSize,
	}, nil
}

func parseMethod(s string) (gamma.GammaMethod, error) {
	switch s {
	case "wendling":
		return gamma.Wendling, nil
	case "classic":
		return gamma.Classic, nil
	default:
		return 0, fmt.Errorf("unknown method %q, want wendling or classic", s)
	}
}

func runGamma(refImg, evalImg *doseimage.ImageData, params gamma.GammaParameters, method gamma.GammaMethod, dim string, logWriter io.Writer) (*gamma.GammaResult, error) {
	switch dim {
	case "2d":
		return gamma.GammaIndex2D(refImg, evalImg, params, method, logWriter)
	case "2.5d":
		return gamma.GammaIndex2_5D(refImg, evalImg, params, method, logWriter)
	case "3d":
		return gamma.GammaIndex3D(refImg, evalImg, params, method, logWriter)
	default:
		return nil, fmt.Errorf("unknown dimensionality %q, want 2d, 2.5d or 3d", dim)
	}
}

const reportHistogramMin, reportHistogramMax = 0, 2
const reportHistogramBins = 20

func printReport(logWriter io.Writer, result *gamma.GammaResult) {
	fmt.Fprintf(logWriter, "\nGamma index report\n")
	fmt.Fprintf(logWriter, "  Passing rate:  %.2f%%\n", result.PassingRate()*100)
	fmt.Fprintf(logWriter, "  Voxels scored: %d of %d\n", result.NanSize(), result.Len())
	fmt.Fprintf(logWriter, "  Mean gamma:    %.4f\n", result.NanMean())
	fmt.Fprintf(logWriter, "  Max gamma:     %.4f\n", result.NanMax())

	bins := make([]int32, reportHistogramBins)
	report.Histogram(result.Data(), reportHistogramMin, reportHistogramMax, bins)
	center, count := report.Peak(bins, reportHistogramMin, reportHistogramMax)
	fmt.Fprintf(logWriter, "  Histogram peak: %d voxels near gamma=%.3f\n", count, center)

	fmt.Fprintf(logWriter, "  Distribution (gamma 0..%.0f):\n", float32(reportHistogramMax))
	var maxCount int32 = 1
	for _, c := range bins {
		if c > maxCount {
			maxCount = c
		}
	}
	const barWidth = 40
	for i, c := range bins {
		lo := reportHistogramMin + float32(i)*(reportHistogramMax-reportHistogramMin)/reportHistogramBins
		barLen := int(int64(c) * barWidth / int64(maxCount))
		fmt.Fprintf(logWriter, "    %5.2f | %s %d\n", lo, strings.Repeat("#", barLen), c)
	}
}
