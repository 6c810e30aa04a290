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

// MAPlot builds an MA plot of condition cfg.Y against cfg.X: average
// log2 expression (A) on the x axis, log2 fold change (M) on the y
// axis. Config.Limits applies to the fold-change axis, which is the
// y axis here. Features with zero, infinite, or undefined expression
// under either condition have no finite A and are dropped.
func MAPlot(cfg Config) (*Chart, error) {
	cfg, err := cfg.fill()
	if err != nil {
		return nil, err
	}
	tab, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	g := table.Filter(table.Grouping(tab), func(xm, ym float64) bool {
		return xm > 0 && ym > 0 && !math.IsInf(xm, 0) && !math.IsInf(ym, 0)
	}, deg.ColXMean, deg.ColYMean)

	limits := autoLimits(rootTable(g))
	if cfg.Limits != nil {
		limits = *cfg.Limits
	}

	plot := gg.NewPlot(g)
	plot.Stat(classify{cfg.SigCutoff, cfg.FoldCutoff})
	plot.Stat(meanAverage{})
	plot.Stat(clamp{limits[0], limits[1]})
	plot.Stat(aesthetics{})
	processed := rootTable(plot.Data())

	plot.SetScale("y", gg.NewLinearScaler().SetMin(limits[0]).SetMax(limits[1]))
	plot.SetScale("size", sizeScale())

	a0, a1 := columnSpan(processed, ColA)
	addGuides(plot,
		hGuide(cfg.FoldCutoff, a0, a1),
		hGuide(-cfg.FoldCutoff, a0, a1))

	addPointMarks(plot,
		gg.LayerPoints{X: ColA, Y: ColPosition, Color: ColColor, Size: ColSize},
		false, a1-a0, limits[1]-limits[0])
	plot.Add(gg.AxisLabel("x", "mean log2 expression"), gg.AxisLabel("y", "log2 fold change"))

	return finishChart(plot, processed, cfg, "MA plot"), nil
}

// meanAverage adds the MA plot x axis: A = (log2 x + log2 y)/2.
// Rows reaching this stat have positive finite means, so A is finite.
type meanAverage struct{}

func (meanAverage) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		xm := t.MustColumn(deg.ColXMean).([]float64)
		ym := t.MustColumn(deg.ColYMean).([]float64)
		as := make([]float64, len(xm))
		for i := range as {
			as[i] = (math.Log2(xm[i]) + math.Log2(ym[i])) / 2
		}
		return table.NewBuilder(t).Add(ColA, as).Done()
	})
}

// columnSpan returns the finite extent of a column, or [0, 1] for an
// empty one.
func columnSpan(t *table.Table, col string) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range t.MustColumn(col).([]float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		return 0, 1
	}
	return lo, hi
}
