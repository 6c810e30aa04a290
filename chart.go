// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
)

// Chart is a composed plot together with the processed table it was
// built from.
type Chart struct {
	plot     *gg.Plot
	data     *table.Table
	summary  Summary
	rows     int
	hideGrid bool
}

// Plot returns the underlying go-gg plot for further customization.
func (c *Chart) Plot() *gg.Plot { return c.plot }

// Data returns the classified and encoded table the chart draws, or
// nil unless the chart was built with Config.ReturnData.
func (c *Chart) Data() *table.Table { return c.data }

// Summary returns the up/down/not-significant counts of the plotted
// features.
func (c *Chart) Summary() Summary { return c.summary }

// Rows returns the number of plotted rows: the input rows minus any
// dropped for missing required fields.
func (c *Chart) Rows() int { return c.rows }

// WriteSVG renders the chart as an SVG image of the given pixel
// size.
func (c *Chart) WriteSVG(w io.Writer, width, height int) error {
	if !c.hideGrid {
		return c.plot.WriteSVG(w, width, height)
	}
	// go-gg has no theme hooks, but it writes the background and
	// grid with fixed styles, so hiding the grid is a textual
	// substitution on the rendered output.
	var buf bytes.Buffer
	if err := c.plot.WriteSVG(&buf, width, height); err != nil {
		return err
	}
	s := strings.ReplaceAll(buf.String(), `style="fill:#eee"`, `style="fill:none"`)
	s = strings.ReplaceAll(s, `style="stroke: #fff; stroke-width:2"`, `style="stroke:none"`)
	_, err := io.WriteString(w, s)
	return err
}

// finishChart wraps a composed plot, applying the title and caption
// flags.
func finishChart(p *gg.Plot, processed *table.Table, cfg Config, what string) *Chart {
	c := &Chart{
		plot:     p,
		summary:  summarize(processed),
		rows:     processed.Len(),
		hideGrid: cfg.HideGrid,
	}
	if cfg.ReturnData {
		c.data = processed
	}
	setTitle(p, cfg, c.summary, what)
	return c
}

// setTitle builds the plot title from the Title and Legend flags.
// go-gg renders no legend box, so the caption carries the
// classification counts instead.
func setTitle(p *gg.Plot, cfg Config, s Summary, what string) {
	var title string
	switch {
	case !cfg.HideTitle && !cfg.HideLegend:
		title = fmt.Sprintf("%s %s: %s vs %s (%s)", cfg.Tool, what, cfg.Y, cfg.X, s)
	case !cfg.HideTitle:
		title = fmt.Sprintf("%s %s: %s vs %s", cfg.Tool, what, cfg.Y, cfg.X)
	case !cfg.HideLegend:
		title = s.String()
	default:
		return
	}
	p.Add(gg.Title(title))
}

// Guide line columns. Guides are drawn from their own little tables
// so they neither join nor regroup the data layers.
const (
	colGuideX = "gx"
	colGuideY = "gy"
	colGuideC = "gc"
)

// guide is one straight reference line.
type guide struct {
	xs, ys []float64
}

func vGuide(x, y0, y1 float64) guide {
	return guide{[]float64{x, x}, []float64{y0, y1}}
}

func hGuide(y, x0, x1 float64) guide {
	return guide{[]float64{x0, x1}, []float64{y, y}}
}

// addGuides layers reference lines under the data marks. Each guide
// gets its own group so separate lines are not connected.
func addGuides(p *gg.Plot, guides ...guide) {
	if len(guides) == 0 {
		return
	}
	var gb table.GroupingBuilder
	for i, g := range guides {
		t := new(table.Builder).
			Add(colGuideX, g.xs).
			Add(colGuideY, g.ys).
			AddConst(colGuideC, guideColor).
			Done()
		gb.Add(table.RootGroupID.Extend(i), t)
	}
	defer p.Save().Restore()
	p.SetData(gb.Done())
	p.Add(gg.LayerLines{X: colGuideX, Y: colGuideY, Color: colGuideC})
}

// Outlier mark columns. The point layer has no shape aesthetic, so
// clipped points are drawn as little triangle paths, the same
// technique as the box glyphs.
const (
	colMarkX = "mx"
	colMarkY = "my"
	colMarkC = "mc"
)

// addPointMarks draws the plot's data: unclipped rows as the usual
// point marks, clipped rows as triangles pointing off the clamped
// axis. alongX says whether the fold-change axis is the x axis; the
// spans size the triangles relative to the axis extents.
func addPointMarks(p *gg.Plot, layer gg.LayerPoints, alongX bool, xSpan, ySpan float64) {
	t := rootTable(p.Data())

	func() {
		defer p.Save().Restore()
		p.SetData(table.Filter(p.Data(), func(out bool) bool { return !out }, ColOutlier))
		p.Add(layer)
	}()

	marks := outlierMarks(t, layer.X, layer.Y, alongX, xSpan, ySpan)
	if marks == nil {
		return
	}
	defer p.Save().Restore()
	p.SetData(marks)
	p.Add(gg.LayerPaths{X: colMarkX, Y: colMarkY, Color: colMarkC, Fill: colMarkC})
}

// outlierMarks builds one closed triangle per clipped row: apex at
// the clamped position, base just inside the axis range, colored like
// the point it stands for. Each triangle is its own group so the
// paths are not connected.
func outlierMarks(t *table.Table, xCol, yCol string, alongX bool, xSpan, ySpan float64) table.Grouping {
	outs := t.MustColumn(ColOutlier).([]bool)
	shapes := t.MustColumn(ColShape).([]string)
	colors := t.MustColumn(ColColor).([]color.RGBA)
	xs := t.MustColumn(xCol).([]float64)
	ys := t.MustColumn(yCol).([]float64)

	var gb table.GroupingBuilder
	n := 0
	for i, out := range outs {
		if !out {
			continue
		}
		dir := 1.0
		if shapes[i] == ShapeDown {
			dir = -1
		}
		var tx, ty []float64
		if alongX {
			h, w := 0.02*xSpan*dir, 0.012*ySpan
			tx = []float64{xs[i], xs[i] - h, xs[i] - h, xs[i]}
			ty = []float64{ys[i], ys[i] - w, ys[i] + w, ys[i]}
		} else {
			h, w := 0.02*ySpan*dir, 0.012*xSpan
			tx = []float64{xs[i], xs[i] - w, xs[i] + w, xs[i]}
			ty = []float64{ys[i], ys[i] - h, ys[i] - h, ys[i]}
		}
		tt := new(table.Builder).
			Add(colMarkX, tx).
			Add(colMarkY, ty).
			AddConst(colMarkC, colors[i]).
			Done()
		gb.Add(table.RootGroupID.Extend(n), tt)
		n++
	}
	if n == 0 {
		return nil
	}
	return gb.Done()
}

// rootTable extracts the single table of an ungrouped Grouping.
func rootTable(g table.Grouping) *table.Table {
	if t := g.Table(table.RootGroupID); t != nil {
		return t
	}
	return new(table.Table)
}
