// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command vidger plots differential gene expression results.
//
// It reads the result tables written by Cuffdiff, DESeq2, or edgeR
// (tab-separated text or .xlsx workbooks) and renders a volcano
// plot, MA plot, scatterplot, box plot, or one of the faceted
// all-pairs matrix variants as SVG.
//
// Cuffdiff needs only its gene_exp.diff table:
//
//	vidger -type cuffdiff -diff gene_exp.diff -x hESC -y Fibroblasts -plot volcano -o volcano.svg
//
// DESeq2 and edgeR need an expression matrix and a YAML sample sheet
// mapping each matrix column to its factor levels:
//
//	vidger -type deseq -counts norm_counts.tsv -results results.tsv \
//	    -samples samples.yaml -factor condition -x untreated -y treated
//
// where samples.yaml looks like:
//
//	sample1: {condition: untreated}
//	sample2: {condition: treated}
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/table"
	"gopkg.in/yaml.v2"

	"github.com/inambioinfo/vidger"
	"github.com/inambioinfo/vidger/deg"
)

var (
	flagPlot    = flag.String("plot", "volcano", "plot `kind`: volcano, ma, scatter, box, volcano-matrix, ma-matrix")
	flagType    = flag.String("type", "", "result table `type`: cuffdiff, deseq, or edger")
	flagX       = flag.String("x", "", "first compared `condition`")
	flagY       = flag.String("y", "", "second compared `condition` (fold changes read y vs x)")
	flagFactor  = flag.String("factor", "", "grouping `factor` (required for deseq; sample sheet key for edger, default group)")
	flagAlpha   = flag.Float64("alpha", 0, "adjusted p-value `cutoff` (default 0.05)")
	flagLFC     = flag.Float64("lfc", 0, "|log2 fold change| `cutoff` (default 1)")
	flagXLim    = flag.String("xlim", "", "fold-change axis limits as `lo,hi` (default data-driven)")
	flagDiff    = flag.String("diff", "", "cuffdiff gene_exp.diff `file`")
	flagCounts  = flag.String("counts", "", "normalized counts or CPM matrix `file` (deseq, edger)")
	flagResults = flag.String("results", "", "deseq results table `file`")
	flagTags    = flag.String("tags", "", "edger topTags table `file`")
	flagSamples = flag.String("samples", "", "YAML sample sheet `file` (deseq, edger)")
	flagSheet   = flag.String("sheet", "", "named `worksheet` to read from .xlsx inputs (default first)")
	flagOut     = flag.String("o", "", "write output to `file` (default stdout)")
	flagTable   = flag.Bool("table", false, "print the processed table instead of rendering SVG")
	flagWidth   = flag.Int("w", 600, "SVG `width` in pixels")
	flagHeight  = flag.Int("h", 500, "SVG `height` in pixels")

	flagNoTitle  = flag.Bool("no-title", false, "omit the title")
	flagNoLegend = flag.Bool("no-legend", false, "omit the classification counts caption")
	flagNoGrid   = flag.Bool("no-grid", false, "omit the background grid")
)

func main() {
	log.SetPrefix("vidger: ")
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -type tool -x cond -y cond [flags]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 {
		flag.Usage()
		os.Exit(2)
	}

	tool, err := deg.ParseTool(*flagType)
	if err != nil {
		log.Fatal(err)
	}
	data, err := loadData(tool)
	if err != nil {
		log.Fatal(err)
	}
	limits, err := parseLimits(*flagXLim)
	if err != nil {
		log.Fatal(err)
	}

	chart, err := buildChart(tool, data, limits)
	if err != nil {
		log.Fatal(err)
	}

	f := os.Stdout
	if *flagOut != "" {
		var err error
		f, err = os.Create(*flagOut)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	}

	if *flagTable {
		table.Fprint(f, chart.Data())
		return
	}
	if err := chart.WriteSVG(f, *flagWidth, *flagHeight); err != nil {
		log.Fatal(err)
	}
}

func buildChart(tool vidger.Tool, data interface{}, limits *[2]float64) (*vidger.Chart, error) {
	factor := *flagFactor

	switch *flagPlot {
	case "volcano-matrix", "ma-matrix":
		cfg := vidger.MatrixConfig{
			Data:       data,
			Tool:       tool,
			Factor:     factor,
			SigCutoff:  *flagAlpha,
			FoldCutoff: *flagLFC,
			Limits:     limits,
			HideTitle:  *flagNoTitle,
			HideLegend: *flagNoLegend,
			HideGrid:   *flagNoGrid,
			ReturnData: *flagTable,
		}
		if *flagPlot == "volcano-matrix" {
			return vidger.VolcanoMatrix(cfg)
		}
		return vidger.MAMatrix(cfg)
	}

	cfg := vidger.Config{
		X:          *flagX,
		Y:          *flagY,
		Data:       data,
		Tool:       tool,
		Factor:     factor,
		SigCutoff:  *flagAlpha,
		FoldCutoff: *flagLFC,
		Limits:     limits,
		HideTitle:  *flagNoTitle,
		HideLegend: *flagNoLegend,
		HideGrid:   *flagNoGrid,
		ReturnData: *flagTable,
	}
	switch *flagPlot {
	case "volcano":
		return vidger.Volcano(cfg)
	case "ma":
		return vidger.MAPlot(cfg)
	case "scatter":
		return vidger.Scatter(cfg)
	case "box":
		return vidger.BoxPlot(cfg)
	}
	return nil, fmt.Errorf("unknown plot kind %q", *flagPlot)
}

// loadData assembles the tool's input object from the file flags.
func loadData(tool vidger.Tool) (interface{}, error) {
	switch tool {
	case vidger.Cuffdiff:
		rows, err := need(*flagDiff, "-diff")
		if err != nil {
			return nil, err
		}
		return deg.CuffdiffFromRows(rows)

	case vidger.DESeq2:
		counts, samples, err := loadMatrix()
		if err != nil {
			return nil, err
		}
		rows, err := need(*flagResults, "-results")
		if err != nil {
			return nil, err
		}
		results, err := deg.DESeqResultsFromRows(rows)
		if err != nil {
			return nil, err
		}
		sheet, err := loadSampleSheet()
		if err != nil {
			return nil, err
		}
		ds := &deg.DESeqDataSet{Counts: counts, Results: results}
		for _, s := range samples {
			factors, ok := sheet[s]
			if !ok {
				return nil, fmt.Errorf("sample %q is not in the sample sheet", s)
			}
			ds.Samples = append(ds.Samples, deg.Sample{Name: s, Factors: factors})
		}
		return ds, nil

	case vidger.EdgeR:
		cpm, samples, err := loadMatrix()
		if err != nil {
			return nil, err
		}
		rows, err := need(*flagTags, "-tags")
		if err != nil {
			return nil, err
		}
		tags, err := deg.EdgeRTagsFromRows(rows)
		if err != nil {
			return nil, err
		}
		sheet, err := loadSampleSheet()
		if err != nil {
			return nil, err
		}
		factor := *flagFactor
		if factor == "" {
			factor = "group"
		}
		groups := make([]string, len(samples))
		for i, s := range samples {
			g, ok := sheet[s][factor]
			if !ok {
				return nil, fmt.Errorf("sample %q has no %q level in the sample sheet", s, factor)
			}
			groups[i] = g
		}
		return &deg.DGEList{CPM: cpm, Groups: groups, Tags: tags}, nil
	}
	return nil, fmt.Errorf("unknown tool %v", tool)
}

func loadMatrix() (map[string][]float64, []string, error) {
	rows, err := need(*flagCounts, "-counts")
	if err != nil {
		return nil, nil, err
	}
	return deg.MatrixFromRows(rows)
}

func loadSampleSheet() (map[string]map[string]string, error) {
	if *flagSamples == "" {
		return nil, fmt.Errorf("missing required flag -samples")
	}
	raw, err := os.ReadFile(*flagSamples)
	if err != nil {
		return nil, err
	}
	sheet := make(map[string]map[string]string)
	if err := yaml.Unmarshal(raw, &sheet); err != nil {
		return nil, fmt.Errorf("sample sheet %s: %w", *flagSamples, err)
	}
	return sheet, nil
}

// need reads a required table file.
func need(path, flagName string) ([][]string, error) {
	if path == "" {
		return nil, fmt.Errorf("missing required flag %s", flagName)
	}
	return deg.ReadRows(path, *flagSheet)
}

func parseLimits(s string) (*[2]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("-xlim wants lo,hi; got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("-xlim: %v", err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("-xlim: %v", err)
	}
	return &[2]float64{lo, hi}, nil
}
