// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"fmt"
	"math"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"

	"github.com/inambioinfo/vidger/deg"
)

// Columns added by the scatterplot.
const (
	ColLogXMean = "log10 x mean"
	ColLogYMean = "log10 y mean"
)

// Scatter builds a scatterplot of log10 mean expression under
// condition cfg.Y against condition cfg.X, with an identity guide
// line. Points are colored by the same classification as the other
// plots; fold-change axis limits do not apply, so nothing is
// clamped. Features with zero, infinite, or undefined expression
// under either condition are dropped.
func Scatter(cfg Config) (*Chart, error) {
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

	plot := gg.NewPlot(g)
	plot.Stat(classify{cfg.SigCutoff, cfg.FoldCutoff})
	plot.Stat(logMeans{})
	plot.Stat(aesthetics{})
	processed := rootTable(plot.Data())

	plot.SetScale("size", sizeScale())

	// Identity line spanning both axes.
	x0, x1 := columnSpan(processed, ColLogXMean)
	y0, y1 := columnSpan(processed, ColLogYMean)
	lo, hi := math.Min(x0, y0), math.Max(x1, y1)
	addGuides(plot, guide{[]float64{lo, hi}, []float64{lo, hi}})

	plot.Add(gg.LayerPoints{X: ColLogXMean, Y: ColLogYMean, Color: ColColor, Size: ColSize})
	plot.Add(
		gg.AxisLabel("x", fmt.Sprintf("log10 expression (%s)", cfg.X)),
		gg.AxisLabel("y", fmt.Sprintf("log10 expression (%s)", cfg.Y)))

	return finishChart(plot, processed, cfg, "scatterplot"), nil
}

// logMeans adds the scatterplot axes. Rows reaching this stat have
// positive finite means, so both columns are finite.
type logMeans struct{}

func (logMeans) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		xm := t.MustColumn(deg.ColXMean).([]float64)
		ym := t.MustColumn(deg.ColYMean).([]float64)
		lx := make([]float64, len(xm))
		ly := make([]float64, len(ym))
		for i := range lx {
			lx[i] = math.Log10(xm[i])
			ly[i] = math.Log10(ym[i])
		}
		return table.NewBuilder(t).
			Add(ColLogXMean, lx).
			Add(ColLogYMean, ly).
			Done()
	})
}
