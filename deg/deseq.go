// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deg

import (
	"github.com/aclements/go-gg/table"
)

// Sample describes one sequenced library: its name (the column label
// in the counts matrix) and its design factors, e.g.
// {"condition": "treated", "batch": "2"}.
type Sample struct {
	Name    string
	Factors map[string]string
}

// DESeqResult is one row of a DESeq2 results table.
type DESeqResult struct {
	ID             string
	BaseMean       float64
	Log2FoldChange float64
	LfcSE          float64
	Stat           float64
	PValue         float64
	PAdj           float64
}

// DESeqDataSet carries the pieces of a DESeq2 analysis the plots
// need: the size-factor normalized counts matrix, the sample design
// table, and the results table. Counts rows are parallel to Samples.
type DESeqDataSet struct {
	Counts  map[string][]float64
	Samples []Sample
	Results []DESeqResult
}

type deseqAdapter struct{}

// Normalize computes per-condition mean normalized counts by
// averaging over the samples whose level of the named design factor
// is x or y, and joins the adjusted p-value from the results table by
// feature id. DESeq2 is the one tool that needs the explicit factor
// argument: its design can hold several grouping columns.
//
// Results rows without counts are dropped; a row keeps a NaN
// adjusted p-value when DESeq2 reported NA.
func (deseqAdapter) Normalize(data interface{}, x, y, factor string) (*table.Table, error) {
	ds, ok := data.(*DESeqDataSet)
	if !ok {
		return nil, Errorf("deseq plots need a *deg.DESeqDataSet, not %T", data)
	}
	if factor == "" {
		return nil, Errorf("deseq plots need a grouping factor")
	}

	xIdx, yIdx, err := groupIndexes(ds.Samples, factor, x, y)
	if err != nil {
		return nil, err
	}

	var ids []string
	var xm, ym, lfc, padj []float64
	for _, r := range ds.Results {
		counts, ok := ds.Counts[r.ID]
		if !ok {
			continue
		}
		vx, vy := mean(counts, xIdx), mean(counts, yIdx)
		ids = append(ids, r.ID)
		xm = append(xm, vx)
		ym = append(ym, vy)
		lfc = append(lfc, foldChange(vx, vy))
		padj = append(padj, r.PAdj)
	}
	return canonical(ids, xm, ym, lfc, padj), nil
}

// Conditions returns the levels of the named design factor in sample
// order.
func (deseqAdapter) Conditions(data interface{}, factor string) ([]string, error) {
	ds, ok := data.(*DESeqDataSet)
	if !ok {
		return nil, Errorf("deseq plots need a *deg.DESeqDataSet, not %T", data)
	}
	if factor == "" {
		return nil, Errorf("deseq plots need a grouping factor")
	}
	var conds []string
	seen := make(map[string]bool)
	known := false
	for _, s := range ds.Samples {
		level, ok := s.Factors[factor]
		if !ok {
			continue
		}
		known = true
		if !seen[level] {
			seen[level] = true
			conds = append(conds, level)
		}
	}
	if !known {
		return nil, Errorf("grouping factor %q not present in sample data", factor)
	}
	return conds, nil
}

// groupIndexes finds the sample columns at levels x and y of factor.
func groupIndexes(samples []Sample, factor, x, y string) (xIdx, yIdx []int, err error) {
	known := false
	for i, s := range samples {
		level, ok := s.Factors[factor]
		if !ok {
			continue
		}
		known = true
		switch level {
		case x:
			xIdx = append(xIdx, i)
		case y:
			yIdx = append(yIdx, i)
		}
	}
	if !known {
		return nil, nil, Errorf("grouping factor %q not present in sample data", factor)
	}
	if xIdx == nil {
		return nil, nil, Errorf("condition %q is not a level of factor %q", x, factor)
	}
	if yIdx == nil {
		return nil, nil, Errorf("condition %q is not a level of factor %q", y, factor)
	}
	return xIdx, yIdx, nil
}
