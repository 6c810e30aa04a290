// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vidger draws exploratory plots of differential gene
// expression results.
//
// It takes the result tables produced by Cuffdiff, DESeq2, or edgeR,
// normalizes them through package deg, classifies each feature as
// up-regulated, down-regulated, or unchanged against configurable
// significance and fold-change cutoffs, and composes volcano plots,
// MA plots, scatterplots, and box plots with the go-gg plotting
// grammar. Every call is a stateless transformation from a result
// table to a Chart; nothing is cached between calls.
package vidger

import (
	"github.com/aclements/go-gg/table"
	"github.com/inambioinfo/vidger/deg"
)

// Tool identifies the program that produced the input data. It is
// deg.Tool re-exported for convenience.
type Tool = deg.Tool

const (
	Cuffdiff = deg.Cuffdiff
	DESeq2   = deg.DESeq2
	EdgeR    = deg.EdgeR
)

// InvalidArgumentError is the error type for caller mistakes. Match
// it with errors.As.
type InvalidArgumentError = deg.InvalidArgumentError

// Default cutoffs. A feature is significant when its adjusted
// p-value is strictly below the significance cutoff, and called up-
// or down-regulated when additionally its log2 fold change is
// strictly beyond the fold-change cutoff.
const (
	DefaultSigCutoff  = 0.05
	DefaultFoldCutoff = 1.0
)

// Config is the shared configuration for all plot constructors.
type Config struct {
	// X and Y name the two compared conditions. The fold change
	// axis reads as Y relative to X. Both are required.
	X, Y string

	// Data is the tool's result data: deg.CuffdiffTable,
	// *deg.DESeqDataSet, or *deg.DGEList, matching Tool.
	Data interface{}

	// Tool selects the adapter for Data. Required.
	Tool Tool

	// Factor names the grouping column of the experimental
	// design. Required for DESeq2, ignored by the other tools.
	Factor string

	// SigCutoff is the adjusted p-value threshold. The zero
	// value selects DefaultSigCutoff.
	SigCutoff float64

	// FoldCutoff is the |log2 fold change| threshold. The zero
	// value selects DefaultFoldCutoff.
	FoldCutoff float64

	// Limits fixes the fold-change axis to [Limits[0],
	// Limits[1]]. When nil the limits are ±(99th percentile of
	// the finite |log2 fold change| values). Points beyond the
	// limits are drawn clamped at the boundary as triangles.
	Limits *[2]float64

	// HideTitle, HideLegend, and HideGrid suppress the default
	// title, the classification-count caption, and the plot
	// background grid. The zero value shows all three.
	HideTitle  bool
	HideLegend bool
	HideGrid   bool

	// ReturnData makes the constructor attach the processed
	// (classified and encoded) table to the Chart for
	// inspection. When false, Chart.Data returns nil and the
	// chart is the only product.
	ReturnData bool
}

// fill validates cfg and applies defaults, without touching the
// data. All validation errors are InvalidArgumentError and are
// reported before any data processing happens.
func (c Config) fill() (Config, error) {
	if _, err := deg.ForTool(c.Tool); err != nil {
		return c, err
	}
	if c.Data == nil {
		return c, invalidArgf("missing result data")
	}
	if c.X == "" || c.Y == "" {
		return c, invalidArgf("both condition labels (x and y) are required")
	}
	if c.X == c.Y {
		return c, invalidArgf("condition labels must differ; got %q twice", c.X)
	}
	if c.SigCutoff == 0 {
		c.SigCutoff = DefaultSigCutoff
	}
	if c.SigCutoff < 0 || c.SigCutoff > 1 {
		return c, invalidArgf("significance cutoff %v outside [0, 1]", c.SigCutoff)
	}
	if c.FoldCutoff == 0 {
		c.FoldCutoff = DefaultFoldCutoff
	}
	if c.FoldCutoff < 0 {
		return c, invalidArgf("fold-change cutoff %v is negative", c.FoldCutoff)
	}
	if c.Limits != nil && !(c.Limits[0] < c.Limits[1]) {
		return c, invalidArgf("axis limits [%v, %v] are not increasing", c.Limits[0], c.Limits[1])
	}
	return c, nil
}

// normalize runs the tool adapter and returns the canonical table.
func (c Config) normalize() (*table.Table, error) {
	ad, err := deg.ForTool(c.Tool)
	if err != nil {
		return nil, err
	}
	return ad.Normalize(c.Data, c.X, c.Y, c.Factor)
}

func invalidArgf(format string, args ...interface{}) error {
	return deg.Errorf(format, args...)
}
