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

// ColComparison labels which pairwise comparison a row of a matrix
// plot belongs to, as "<y> vs <x>".
const ColComparison = "comparison"

// MatrixConfig configures the faceted all-pairs plot variants. It is
// Config without the X and Y labels: the comparisons are every pair
// of conditions found in the data.
type MatrixConfig struct {
	Data       interface{}
	Tool       Tool
	Factor     string
	SigCutoff  float64
	FoldCutoff float64
	Limits     *[2]float64
	HideTitle  bool
	HideLegend bool
	HideGrid   bool
	ReturnData bool
}

func (c MatrixConfig) fill() (MatrixConfig, error) {
	if _, err := deg.ForTool(c.Tool); err != nil {
		return c, err
	}
	if c.Data == nil {
		return c, invalidArgf("missing result data")
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

// VolcanoMatrix builds one volcano panel per pair of conditions,
// sharing axes, cutoffs, and color encoding across panels. Threshold
// guide lines and triangle outlier marks are not drawn in the faceted
// variants: the glyph groups carry no facet label, so they cannot be
// routed to their panels. Clipped points sit at the axis boundary as
// ordinary points.
func VolcanoMatrix(cfg MatrixConfig) (*Chart, error) {
	cfg, err := cfg.fill()
	if err != nil {
		return nil, err
	}
	tab, err := pairwise(cfg)
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

	plot.Add(gg.FacetWrap{Col: ColComparison})
	plot.Add(gg.LayerPoints{X: ColPosition, Y: ColNegLogP, Color: ColColor, Size: ColSize})
	plot.Add(gg.AxisLabel("x", "log2 fold change"), gg.AxisLabel("y", "-log10 adjusted p"))

	return finishMatrix(plot, processed, cfg, "volcano matrix"), nil
}

// MAMatrix builds one MA panel per pair of conditions. Like
// VolcanoMatrix, the panels share axes, cutoffs, and encoding.
func MAMatrix(cfg MatrixConfig) (*Chart, error) {
	cfg, err := cfg.fill()
	if err != nil {
		return nil, err
	}
	tab, err := pairwise(cfg)
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

	plot.Add(gg.FacetWrap{Col: ColComparison})
	plot.Add(gg.LayerPoints{X: ColA, Y: ColPosition, Color: ColColor, Size: ColSize})
	plot.Add(gg.AxisLabel("x", "mean log2 expression"), gg.AxisLabel("y", "log2 fold change"))

	return finishMatrix(plot, processed, cfg, "MA matrix"), nil
}

// pairwise concatenates the canonical tables of every pairwise
// comparison, labeled by the ColComparison column. Pairs keep the
// canonical direction: later condition versus earlier, in the order
// the conditions appear in the data.
func pairwise(cfg MatrixConfig) (*table.Table, error) {
	ad, err := deg.ForTool(cfg.Tool)
	if err != nil {
		return nil, err
	}
	conds, err := ad.(deg.ConditionLister).Conditions(cfg.Data, cfg.Factor)
	if err != nil {
		return nil, err
	}
	if len(conds) < 2 {
		return nil, invalidArgf("matrix plots need at least two conditions; found %d", len(conds))
	}

	var ids, comp []string
	var xm, ym, lfc, padj []float64
	for i := 0; i < len(conds); i++ {
		for j := i + 1; j < len(conds); j++ {
			t, err := ad.Normalize(cfg.Data, conds[i], conds[j], cfg.Factor)
			if err != nil {
				return nil, err
			}
			label := fmt.Sprintf("%s vs %s", conds[j], conds[i])
			ids = append(ids, t.MustColumn(deg.ColID).([]string)...)
			xm = append(xm, t.MustColumn(deg.ColXMean).([]float64)...)
			ym = append(ym, t.MustColumn(deg.ColYMean).([]float64)...)
			lfc = append(lfc, t.MustColumn(deg.ColLFC).([]float64)...)
			padj = append(padj, t.MustColumn(deg.ColPAdj).([]float64)...)
			for n := t.Len(); n > 0; n-- {
				comp = append(comp, label)
			}
		}
	}

	return new(table.Builder).
		Add(deg.ColID, ids).
		Add(deg.ColXMean, xm).
		Add(deg.ColYMean, ym).
		Add(deg.ColLFC, lfc).
		Add(deg.ColPAdj, padj).
		Add(ColComparison, comp).
		Done(), nil
}

func finishMatrix(p *gg.Plot, processed *table.Table, cfg MatrixConfig, what string) *Chart {
	c := &Chart{
		plot:     p,
		summary:  summarize(processed),
		rows:     processed.Len(),
		hideGrid: cfg.HideGrid,
	}
	if cfg.ReturnData {
		c.data = processed
	}

	var title string
	switch {
	case !cfg.HideTitle && !cfg.HideLegend:
		title = fmt.Sprintf("%s %s (%s)", cfg.Tool, what, c.summary)
	case !cfg.HideTitle:
		title = fmt.Sprintf("%s %s", cfg.Tool, what)
	case !cfg.HideLegend:
		title = c.summary.String()
	default:
		return c
	}
	p.Add(gg.Title(title))
	return c
}
