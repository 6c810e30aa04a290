// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deg

import (
	"math"

	"github.com/aclements/go-gg/table"
)

// CuffdiffRow is one line of a Cuffdiff gene_exp.diff file. Value1
// and Value2 are the mean FPKM under Sample1 and Sample2. QValue is
// the FDR-adjusted p-value. Status is "OK" for tested rows; any
// other status ("NOTEST", "LOWDATA", "FAIL", ...) means the test did
// not run or did not converge.
type CuffdiffRow struct {
	TestID         string
	GeneID         string
	Gene           string
	Locus          string
	Sample1        string
	Sample2        string
	Status         string
	Value1         float64
	Value2         float64
	Log2FoldChange float64
	TestStat       float64
	PValue         float64
	QValue         float64
	Significant    bool
}

// CuffdiffTable is a parsed gene_exp.diff file. One file can hold
// several pairwise comparisons; the adapter selects one.
type CuffdiffTable []CuffdiffRow

type cuffdiffAdapter struct{}

// Normalize selects the rows comparing conditions x and y. Cuffdiff
// encodes the contrast per row, so the factor argument is ignored.
// Rows whose Status is not "OK" keep an undefined adjusted p-value.
func (cuffdiffAdapter) Normalize(data interface{}, x, y, factor string) (*table.Table, error) {
	rows, ok := data.(CuffdiffTable)
	if !ok {
		return nil, Errorf("cuffdiff plots need a deg.CuffdiffTable, not %T", data)
	}

	var ids []string
	var xm, ym, lfc, padj []float64
	for _, r := range rows {
		var vx, vy float64
		switch {
		case r.Sample1 == x && r.Sample2 == y:
			vx, vy = r.Value1, r.Value2
		case r.Sample1 == y && r.Sample2 == x:
			vx, vy = r.Value2, r.Value1
		default:
			continue
		}
		p := r.QValue
		if r.Status != "OK" {
			p = math.NaN()
		}
		ids = append(ids, r.TestID)
		xm = append(xm, vx)
		ym = append(ym, vy)
		lfc = append(lfc, foldChange(vx, vy))
		padj = append(padj, p)
	}
	if ids == nil {
		return nil, Errorf("no cuffdiff rows compare conditions %q and %q", x, y)
	}
	return canonical(ids, xm, ym, lfc, padj), nil
}

// Conditions returns the sample labels in first-appearance order.
func (cuffdiffAdapter) Conditions(data interface{}, factor string) ([]string, error) {
	rows, ok := data.(CuffdiffTable)
	if !ok {
		return nil, Errorf("cuffdiff plots need a deg.CuffdiffTable, not %T", data)
	}
	var conds []string
	seen := make(map[string]bool)
	for _, r := range rows {
		for _, s := range []string{r.Sample1, r.Sample2} {
			if !seen[s] {
				seen[s] = true
				conds = append(conds, s)
			}
		}
	}
	return conds, nil
}
