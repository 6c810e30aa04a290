// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"

	"github.com/inambioinfo/vidger/deg"
)

// Box geometry columns.
const (
	colBoxX = "bx"
	colBoxY = "by"
	colBoxC = "bc"
)

// BoxPlot summarizes the distribution of log10 mean expression
// across all features under the two conditions as Tukey
// box-and-whisker glyphs: quartile box, median line, and whiskers at
// the last values within 1.5 IQR of the box. The grammar has no box
// geometry, so the glyphs are composed from path layers. Features
// with zero expression under a condition are left out of that
// condition's box. Classification cutoffs play no role here;
// ReturnData exposes the canonical (unclassified) table.
func BoxPlot(cfg Config) (*Chart, error) {
	cfg, err := cfg.fill()
	if err != nil {
		return nil, err
	}
	tab, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	xs := logColumn(tab, deg.ColXMean)
	ys := logColumn(tab, deg.ColYMean)
	if len(xs) == 0 || len(ys) == 0 {
		return nil, fmt.Errorf("box plot of %q vs %q: no positive expression values", cfg.Y, cfg.X)
	}

	var gb table.GroupingBuilder
	for i, cond := range []struct {
		vals []float64
		c    color.RGBA
	}{
		{xs, downColor},
		{ys, upColor},
	} {
		addBoxGlyph(&gb, i, float64(i), computeBox(cond.vals), cond.c)
	}

	plot := gg.NewPlot(gb.Done())

	labels := [2]string{cfg.X, cfg.Y}
	xscale := gg.NewLinearScaler().SetMin(-0.6).SetMax(1.6)
	xscale.SetFormatter(func(v float64) string {
		if v == 0 {
			return labels[0]
		}
		if v == 1 {
			return labels[1]
		}
		return ""
	})
	plot.SetScale("x", xscale)

	plot.Add(gg.LayerPaths{X: colBoxX, Y: colBoxY, Color: colBoxC})
	plot.Add(gg.AxisLabel("x", "condition"), gg.AxisLabel("y", "log10 expression"))

	c := &Chart{plot: plot, rows: tab.Len(), hideGrid: cfg.HideGrid}
	if cfg.ReturnData {
		c.data = tab
	}
	// No classification happens here, so there is no caption.
	capCfg := cfg
	capCfg.HideLegend = true
	setTitle(plot, capCfg, Summary{}, "box plot")
	return c, nil
}

// boxStats are the five numbers of one box glyph.
type boxStats struct {
	q1, med, q3 float64
	lo, hi      float64
}

func computeBox(vals []float64) boxStats {
	sort.Float64s(vals)
	s := stats.Sample{Xs: vals, Sorted: true}

	var b boxStats
	b.q1 = s.Quantile(0.25)
	b.med = s.Quantile(0.5)
	b.q3 = s.Quantile(0.75)

	iqr := b.q3 - b.q1
	loFence, hiFence := b.q1-1.5*iqr, b.q3+1.5*iqr
	b.lo, b.hi = b.q1, b.q3
	for _, v := range vals {
		if v >= loFence {
			b.lo = v
			break
		}
	}
	for i := len(vals) - 1; i >= 0; i-- {
		if vals[i] <= hiFence {
			b.hi = vals[i]
			break
		}
	}
	return b
}

// addBoxGlyph appends the path groups of one box glyph centered at
// x=center.
func addBoxGlyph(gb *table.GroupingBuilder, id int, center float64, b boxStats, c color.RGBA) {
	const halfW, capW = 0.35, 0.175

	parts := []struct {
		name   string
		xs, ys []float64
	}{
		{"outline",
			[]float64{center - halfW, center + halfW, center + halfW, center - halfW, center - halfW},
			[]float64{b.q1, b.q1, b.q3, b.q3, b.q1}},
		{"median",
			[]float64{center - halfW, center + halfW},
			[]float64{b.med, b.med}},
		{"stem lo", []float64{center, center}, []float64{b.lo, b.q1}},
		{"stem hi", []float64{center, center}, []float64{b.q3, b.hi}},
		{"cap lo",
			[]float64{center - capW, center + capW},
			[]float64{b.lo, b.lo}},
		{"cap hi",
			[]float64{center - capW, center + capW},
			[]float64{b.hi, b.hi}},
	}
	for _, p := range parts {
		t := new(table.Builder).
			Add(colBoxX, p.xs).
			Add(colBoxY, p.ys).
			AddConst(colBoxC, c).
			Done()
		gb.Add(table.RootGroupID.Extend(fmt.Sprintf("box %d %s", id, p.name)), t)
	}
}

// logColumn returns log10 of the column's positive values.
func logColumn(t *table.Table, col string) []float64 {
	var out []float64
	for _, v := range t.MustColumn(col).([]float64) {
		if v > 0 && !math.IsInf(v, 0) {
			out = append(out, math.Log10(v))
		}
	}
	return out
}
