// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"math"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"

	"github.com/inambioinfo/vidger/deg"
)

// Volcano builds a volcano plot of condition cfg.Y against cfg.X:
// log2 fold change on the x axis, -log10 adjusted p-value on the y
// axis. Guide lines mark the fold-change cutoffs and the
// significance cutoff. Features with an undefined adjusted p-value
// or fold change have no position and are dropped.
func Volcano(cfg Config) (*Chart, error) {
	cfg, err := cfg.fill()
	if err != nil {
		return nil, err
	}
	tab, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	g := table.Filter(table.Grouping(tab), func(p, l float64) bool {
		return !math.IsNaN(p) && !math.IsNaN(l)
	}, deg.ColPAdj, deg.ColLFC)

	limits := autoLimits(rootTable(g))
	if cfg.Limits != nil {
		limits = *cfg.Limits
	}

	plot := gg.NewPlot(g)
	plot.Stat(classify{cfg.SigCutoff, cfg.FoldCutoff})
	plot.Stat(negLogP{})
	plot.Stat(clamp{limits[0], limits[1]})
	plot.Stat(aesthetics{})
	processed := rootTable(plot.Data())

	plot.SetScale("x", gg.NewLinearScaler().SetMin(limits[0]).SetMax(limits[1]))
	plot.SetScale("y", gg.NewLinearScaler().Include(0))
	plot.SetScale("size", sizeScale())

	yTop := maxFinite(processed, ColNegLogP, -math.Log10(cfg.SigCutoff))
	addGuides(plot,
		vGuide(-cfg.FoldCutoff, 0, yTop),
		vGuide(cfg.FoldCutoff, 0, yTop),
		hGuide(-math.Log10(cfg.SigCutoff), limits[0], limits[1]))

	addPointMarks(plot,
		gg.LayerPoints{X: ColPosition, Y: ColNegLogP, Color: ColColor, Size: ColSize},
		true, limits[1]-limits[0], yTop)
	plot.Add(gg.AxisLabel("x", "log2 fold change"), gg.AxisLabel("y", "-log10 adjusted p"))

	return finishChart(plot, processed, cfg, "volcano"), nil
}

// negLogP adds the volcano y axis. Zero p-values would map to
// infinity, so they borrow a floor one decade below the smallest
// positive adjusted p-value in the table.
type negLogP struct{}

func (negLogP) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		padj := t.MustColumn(deg.ColPAdj).([]float64)

		floor := math.Inf(1)
		for _, p := range padj {
			if p > 0 && p < floor {
				floor = p
			}
		}
		if math.IsInf(floor, 1) {
			floor = 1e-300
		}

		ys := make([]float64, len(padj))
		for i, p := range padj {
			if p == 0 {
				p = floor / 10
			}
			ys[i] = -math.Log10(p)
		}
		return table.NewBuilder(t).Add(ColNegLogP, ys).Done()
	})
}

// maxFinite returns the largest finite value of a column, or least
// if the column has none.
func maxFinite(t *table.Table, col string, least float64) float64 {
	max := least
	for _, v := range t.MustColumn(col).([]float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > max {
			max = v
		}
	}
	return max
}
