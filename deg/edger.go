// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deg

import (
	"github.com/aclements/go-gg/table"
)

// EdgeRTag is one row of an edgeR topTags table. FDR is the
// Benjamini-Hochberg adjusted p-value.
type EdgeRTag struct {
	ID     string
	LogFC  float64
	LogCPM float64
	PValue float64
	FDR    float64
}

// DGEList mirrors the parts of an edgeR DGEList the plots need: the
// counts-per-million matrix, one group label per sample column, and
// the exact-test tag table. CPM rows are parallel to Groups.
type DGEList struct {
	CPM    map[string][]float64
	Groups []string
	Tags   []EdgeRTag
}

type edgerAdapter struct{}

// Normalize computes per-condition mean CPM over the samples in
// groups x and y and takes the adjusted p-value from the FDR column.
// edgeR groups are a flat labeling, so the factor argument is
// ignored. Tags without a CPM row are dropped.
func (edgerAdapter) Normalize(data interface{}, x, y, factor string) (*table.Table, error) {
	dl, ok := data.(*DGEList)
	if !ok {
		return nil, Errorf("edger plots need a *deg.DGEList, not %T", data)
	}

	var xIdx, yIdx []int
	for i, g := range dl.Groups {
		switch g {
		case x:
			xIdx = append(xIdx, i)
		case y:
			yIdx = append(yIdx, i)
		}
	}
	if xIdx == nil {
		return nil, Errorf("condition %q is not an edger group label", x)
	}
	if yIdx == nil {
		return nil, Errorf("condition %q is not an edger group label", y)
	}

	var ids []string
	var xm, ym, lfc, padj []float64
	for _, t := range dl.Tags {
		cpm, ok := dl.CPM[t.ID]
		if !ok {
			continue
		}
		vx, vy := mean(cpm, xIdx), mean(cpm, yIdx)
		ids = append(ids, t.ID)
		xm = append(xm, vx)
		ym = append(ym, vy)
		lfc = append(lfc, foldChange(vx, vy))
		padj = append(padj, t.FDR)
	}
	return canonical(ids, xm, ym, lfc, padj), nil
}

// Conditions returns the group labels in sample order.
func (edgerAdapter) Conditions(data interface{}, factor string) ([]string, error) {
	dl, ok := data.(*DGEList)
	if !ok {
		return nil, Errorf("edger plots need a *deg.DGEList, not %T", data)
	}
	var conds []string
	seen := make(map[string]bool)
	for _, g := range dl.Groups {
		if !seen[g] {
			seen[g] = true
			conds = append(conds, g)
		}
	}
	return conds, nil
}
