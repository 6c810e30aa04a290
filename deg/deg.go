// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package deg normalizes differential-gene-expression result tables.
//
// Cuffdiff, DESeq2, and edgeR all report the outcome of comparing
// expression between two conditions, but each with its own table
// schema. This package maps all three onto one canonical columnar
// table (a go-gg *table.Table) with one row per feature and the
// columns named by the Col* constants. The fold change direction is
// the same for every tool: log2 of condition y's mean over condition
// x's mean, so positive values mean higher expression under y.
package deg

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/table"
)

// Canonical table columns produced by every Adapter.
const (
	// ColID is the feature (gene or transcript) identifier.
	ColID = "id"

	// ColXMean and ColYMean are the mean expression levels under
	// the two compared conditions, in the tool's expression unit
	// (FPKM for Cuffdiff, normalized counts for DESeq2, CPM for
	// edgeR).
	ColXMean = "x mean"
	ColYMean = "y mean"

	// ColLFC is log2(y mean / x mean). It is recomputed from the
	// means rather than copied from the tool's reported column so
	// that the sign convention cannot vary by tool.
	ColLFC = "log2 fold change"

	// ColPAdj is the tool's multiple-testing-adjusted p-value.
	// NaN marks features the tool could not test; it is never
	// coerced to 0 or 1.
	ColPAdj = "adjusted p"
)

// Tool identifies which program produced a result table.
type Tool int

const (
	ToolUnknown Tool = iota
	Cuffdiff
	DESeq2
	EdgeR
)

var toolNames = map[Tool]string{
	Cuffdiff: "cuffdiff",
	DESeq2:   "deseq",
	EdgeR:    "edger",
}

func (t Tool) String() string {
	if n, ok := toolNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool maps a tool tag ("cuffdiff", "deseq", or "edger") to its
// Tool value.
func ParseTool(s string) (Tool, error) {
	for t, n := range toolNames {
		if s == n {
			return t, nil
		}
	}
	return ToolUnknown, &InvalidArgumentError{Msg: fmt.Sprintf("unknown tool type %q (want cuffdiff, deseq, or edger)", s)}
}

// InvalidArgumentError reports a caller mistake: an unknown tool tag,
// data of the wrong type for the tool, a missing grouping factor, or
// a condition label that is not present in the data. It is never
// produced by data-level conditions such as untestable features.
type InvalidArgumentError struct {
	Msg string
}

func (e *InvalidArgumentError) Error() string { return e.Msg }

// Errorf builds an InvalidArgumentError the way fmt.Errorf builds a
// plain error.
func Errorf(format string, args ...interface{}) error {
	return &InvalidArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// An Adapter converts one tool's raw result data into the canonical
// table. Implementations are stateless.
type Adapter interface {
	// Normalize extracts the comparison of condition y against
	// condition x from data and returns the canonical table. The
	// concrete type of data is fixed per tool (CuffdiffTable,
	// *DESeqDataSet, or *DGEList). factor names the grouping
	// column for tools that need an explicit contrast (DESeq2)
	// and is ignored otherwise.
	Normalize(data interface{}, x, y, factor string) (*table.Table, error)
}

// A ConditionLister reports the condition labels available in a
// tool's data. Every Adapter in this package also implements it.
type ConditionLister interface {
	Conditions(data interface{}, factor string) ([]string, error)
}

// ForTool returns the adapter for t.
func ForTool(t Tool) (Adapter, error) {
	switch t {
	case Cuffdiff:
		return cuffdiffAdapter{}, nil
	case DESeq2:
		return deseqAdapter{}, nil
	case EdgeR:
		return edgerAdapter{}, nil
	}
	return nil, Errorf("unknown tool type %v", t)
}

// foldChange is the one canonical fold change direction: positive
// when expression is higher under the y condition.
func foldChange(xMean, yMean float64) float64 {
	return math.Log2(yMean / xMean)
}

func mean(xs []float64, idx []int) float64 {
	sum := 0.0
	for _, i := range idx {
		sum += xs[i]
	}
	return sum / float64(len(idx))
}

// canonical assembles the canonical table from parallel column
// slices.
func canonical(ids []string, xm, ym, lfc, padj []float64) *table.Table {
	return new(table.Builder).
		Add(ColID, ids).
		Add(ColXMean, xm).
		Add(ColYMean, ym).
		Add(ColLFC, lfc).
		Add(ColPAdj, padj).
		Done()
}
