// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"github.com/aclements/go-gg/table"

	"github.com/inambioinfo/vidger/deg"
)

// Columns added to the canonical table during processing. They show
// up in the table returned by Chart.Data when Config.ReturnData is
// set.
const (
	// ColSignificant is true where the adjusted p-value is
	// defined and strictly below the significance cutoff.
	ColSignificant = "significant"

	// ColRegulation is the classification bucket: RegUp,
	// RegDown, or RegNone.
	ColRegulation = "regulation"

	// ColPosition is the log2 fold change clamped into the axis
	// limits. Only the plotted position is clamped; the bucket
	// and outlier status always reflect the true fold change.
	ColPosition = "position"

	// ColOutlier is true where the fold change lies outside the
	// axis limits (including infinite fold changes).
	ColOutlier = "outlier"

	// ColShape is the point glyph: ShapeCircle for points inside
	// the limits, ShapeUp/ShapeDown for points clamped at the
	// upper/lower boundary.
	ColShape = "shape"

	// ColColor and ColSize carry the point aesthetics: a
	// categorical color per bucket and a larger size for
	// significant points.
	ColColor = "color"
	ColSize  = "size"

	// ColNegLogP is -log10 of the adjusted p-value (volcano y
	// axis). ColA is the mean average expression (MA plot x
	// axis).
	ColNegLogP = "-log10 adjusted p"
	ColA       = "A"
)

// Classification buckets.
const (
	RegUp   = "up"
	RegDown = "down"
	RegNone = "none"
)

// Point shapes.
const (
	ShapeCircle = "circle"
	ShapeUp     = "triangle up"
	ShapeDown   = "triangle down"
)

// classify labels each feature by significance and direction. Both
// comparisons are strict: a p-value or fold change exactly at its
// cutoff stays unclassified. NaN p-values compare false and so are
// never significant, whatever their fold change.
type classify struct {
	SigCutoff  float64
	FoldCutoff float64
}

func (c classify) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		lfc := t.MustColumn(deg.ColLFC).([]float64)
		padj := t.MustColumn(deg.ColPAdj).([]float64)

		sig := make([]bool, t.Len())
		reg := make([]string, t.Len())
		for i := range sig {
			sig[i] = padj[i] < c.SigCutoff
			switch {
			case sig[i] && lfc[i] > c.FoldCutoff:
				reg[i] = RegUp
			case sig[i] && lfc[i] < -c.FoldCutoff:
				reg[i] = RegDown
			default:
				reg[i] = RegNone
			}
		}
		return table.NewBuilder(t).
			Add(ColSignificant, sig).
			Add(ColRegulation, reg).
			Done()
	})
}
