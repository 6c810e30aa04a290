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

// Categorical point colors per bucket, and the color of threshold
// guide lines.
var (
	upColor    = color.RGBA{0x55, 0xa8, 0x68, 0xff}
	downColor  = color.RGBA{0x4c, 0x72, 0xb0, 0xff}
	noneColor  = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
	guideColor = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

// Point sizes, as unscaled positions in the size ranger set by
// sizeScale.
const (
	sizeNotSig = gg.Unscaled(0.25)
	sizeSig    = gg.Unscaled(1.0)
)

// autoLimits computes the default fold-change axis limits: symmetric
// at the 99th percentile of the finite |log2 fold change| values.
// The computation only reads the data, so repeating it on the same
// table gives the same pair.
func autoLimits(t *table.Table) [2]float64 {
	var s stats.Sample
	for _, v := range t.MustColumn(deg.ColLFC).([]float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			s.Xs = append(s.Xs, math.Abs(v))
		}
	}
	if len(s.Xs) == 0 {
		return [2]float64{-1, 1}
	}
	sort.Float64s(s.Xs)
	s.Sorted = true
	q := s.Quantile(0.99)
	if q == 0 {
		// Every fold change is zero; any symmetric range works.
		q = 1
	}
	return [2]float64{-q, q}
}

// clamp computes the plotted fold-change position and the outlier
// encoding. Points outside [Lo, Hi] (infinities included) are moved
// to the boundary and marked with a triangle pointing off the axis;
// their classification is left alone.
type clamp struct {
	Lo, Hi float64
}

func (c clamp) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		lfc := t.MustColumn(deg.ColLFC).([]float64)

		pos := make([]float64, t.Len())
		out := make([]bool, t.Len())
		shape := make([]string, t.Len())
		for i, v := range lfc {
			switch {
			case v < c.Lo:
				pos[i], out[i], shape[i] = c.Lo, true, ShapeDown
			case v > c.Hi:
				pos[i], out[i], shape[i] = c.Hi, true, ShapeUp
			default:
				// NaN lands here and stays NaN; the plot
				// constructors drop such rows up front.
				pos[i], shape[i] = v, ShapeCircle
			}
		}
		return table.NewBuilder(t).
			Add(ColPosition, pos).
			Add(ColOutlier, out).
			Add(ColShape, shape).
			Done()
	})
}

// aesthetics maps the classification onto point color and size.
// Colors are concrete color values so that go-gg applies them
// through its identity scale, keeping the bucket-to-color mapping
// stable even when a bucket is empty.
type aesthetics struct{}

func (aesthetics) F(g table.Grouping) table.Grouping {
	return table.MapTables(g, func(_ table.GroupID, t *table.Table) *table.Table {
		sig := t.MustColumn(ColSignificant).([]bool)
		reg := t.MustColumn(ColRegulation).([]string)

		colors := make([]color.RGBA, t.Len())
		sizes := make([]gg.Unscaled, t.Len())
		for i := range colors {
			switch reg[i] {
			case RegUp:
				colors[i] = upColor
			case RegDown:
				colors[i] = downColor
			default:
				colors[i] = noneColor
			}
			if sig[i] {
				sizes[i] = sizeSig
			} else {
				sizes[i] = sizeNotSig
			}
		}
		return table.NewBuilder(t).
			Add(ColColor, colors).
			Add(ColSize, sizes).
			Done()
	})
}

// sizeScale returns the scale that turns the unscaled size column
// into point radii between 0.6% and 1.2% of the plot dimension.
func sizeScale() gg.Scaler {
	s := gg.NewLinearScaler()
	s.Ranger(gg.NewFloatRanger(0.006, 0.012))
	return s
}

// Summary counts the classification buckets of a processed table.
type Summary struct {
	Up     int
	Down   int
	NotSig int
}

func (s Summary) String() string {
	return fmt.Sprintf("up: %d, down: %d, n.s.: %d", s.Up, s.Down, s.NotSig)
}

func summarize(t *table.Table) Summary {
	var s Summary
	for _, r := range t.MustColumn(ColRegulation).([]string) {
		switch r {
		case RegUp:
			s.Up++
		case RegDown:
			s.Down++
		default:
			s.NotSig++
		}
	}
	return s
}
