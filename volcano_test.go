// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/inambioinfo/vidger/deg"
)

// testData builds a small Cuffdiff comparison with one clear
// up-regulated feature, one down, several unchanged, one untested,
// and one with zero expression under both conditions.
func testData() deg.CuffdiffTable {
	rows := deg.CuffdiffTable{
		{TestID: "up", Status: "OK", Value1: 10, Value2: 100, QValue: 1e-5},
		{TestID: "down", Status: "OK", Value1: 80, Value2: 10, QValue: 1e-4},
		{TestID: "flat1", Status: "OK", Value1: 50, Value2: 55, QValue: 0.9},
		{TestID: "flat2", Status: "OK", Value1: 20, Value2: 21, QValue: 0.8},
		{TestID: "untested", Status: "NOTEST", Value1: 0.1, Value2: 0.2, QValue: 1},
		{TestID: "silent", Status: "OK", Value1: 0, Value2: 0, QValue: 0.9},
	}
	for i := range rows {
		rows[i].Sample1 = "ctl"
		rows[i].Sample2 = "trt"
	}
	return rows
}

func testConfig() Config {
	return Config{
		X:          "ctl",
		Y:          "trt",
		Data:       testData(),
		Tool:       Cuffdiff,
		ReturnData: true,
	}
}

func TestConfigValidation(t *testing.T) {
	base := testConfig()
	for _, test := range []struct {
		name string
		mod  func(*Config)
	}{
		{"unknown tool", func(c *Config) { c.Tool = 0 }},
		{"nil data", func(c *Config) { c.Data = nil }},
		{"missing x", func(c *Config) { c.X = "" }},
		{"missing y", func(c *Config) { c.Y = "" }},
		{"equal conditions", func(c *Config) { c.Y = c.X }},
		{"sig cutoff too large", func(c *Config) { c.SigCutoff = 1.5 }},
		{"sig cutoff negative", func(c *Config) { c.SigCutoff = -0.1 }},
		{"fold cutoff negative", func(c *Config) { c.FoldCutoff = -1 }},
		{"limits reversed", func(c *Config) { c.Limits = &[2]float64{2, -2} }},
		{"unknown condition", func(c *Config) { c.Y = "liver" }},
		{"wrong data type", func(c *Config) { c.Data = &deg.DGEList{} }},
	} {
		cfg := base
		test.mod(&cfg)
		_, err := Volcano(cfg)
		var ie *InvalidArgumentError
		if !errors.As(err, &ie) {
			t.Errorf("%s: error = %v, want *InvalidArgumentError", test.name, err)
		}
	}
}

func TestConfigValidatesBeforeData(t *testing.T) {
	// An invalid tool is reported even when the data is bogus too,
	// so argument checks run before any data processing.
	_, err := Volcano(Config{X: "a", Y: "b", Data: "bogus", Tool: Tool(99)})
	var ie *InvalidArgumentError
	if !errors.As(err, &ie) {
		t.Fatalf("error = %v, want *InvalidArgumentError", err)
	}
	if !strings.Contains(err.Error(), "tool") {
		t.Errorf("error = %v, want a tool error", err)
	}
}

func TestVolcano(t *testing.T) {
	chart, err := Volcano(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// "untested" has an undefined p-value and "silent" an
	// undefined fold change; both are dropped.
	if chart.Rows() != 4 {
		t.Errorf("Rows() = %d, want 4", chart.Rows())
	}
	if s := chart.Summary(); s.Up != 1 || s.Down != 1 || s.NotSig != 2 {
		t.Errorf("Summary() = %+v, want {Up:1 Down:1 NotSig:2}", s)
	}

	tab := chart.Data()
	if tab == nil {
		t.Fatal("Data() = nil despite ReturnData")
	}
	reg := map[string]string{}
	ids := tab.MustColumn(deg.ColID).([]string)
	for i, r := range tab.MustColumn(ColRegulation).([]string) {
		reg[ids[i]] = r
	}
	want := map[string]string{"up": RegUp, "down": RegDown, "flat1": RegNone, "flat2": RegNone}
	for id, w := range want {
		if reg[id] != w {
			t.Errorf("%s: regulation = %q, want %q", id, reg[id], w)
		}
	}

	// The volcano y axis is -log10 of the adjusted p-value.
	ys := tab.MustColumn(ColNegLogP).([]float64)
	for i, id := range ids {
		if id == "up" && math.Abs(ys[i]-5) > 1e-12 {
			t.Errorf("up: -log10 p = %v, want 5", ys[i])
		}
	}
}

func TestVolcanoWithoutReturnData(t *testing.T) {
	cfg := testConfig()
	cfg.ReturnData = false
	chart, err := Volcano(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if chart.Data() != nil {
		t.Error("Data() should be nil without ReturnData")
	}
	if chart.Rows() != 4 {
		t.Errorf("Rows() = %d, want 4", chart.Rows())
	}
}

func TestVolcanoExplicitLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Limits = &[2]float64{-1, 1}
	chart, err := Volcano(cfg)
	if err != nil {
		t.Fatal(err)
	}

	tab := chart.Data()
	pos := tab.MustColumn(ColPosition).([]float64)
	outl := tab.MustColumn(ColOutlier).([]bool)
	lfc := tab.MustColumn(deg.ColLFC).([]float64)
	for i := range pos {
		if pos[i] < -1 || pos[i] > 1 {
			t.Errorf("row %d: position %v escaped limits [-1, 1]", i, pos[i])
		}
		if outl[i] != (lfc[i] < -1 || lfc[i] > 1) {
			t.Errorf("row %d: outlier = %v for lfc %v", i, outl[i], lfc[i])
		}
	}
	// "up" is clamped but keeps its classification.
	ids := tab.MustColumn(deg.ColID).([]string)
	reg := tab.MustColumn(ColRegulation).([]string)
	for i, id := range ids {
		if id == "up" && reg[i] != RegUp {
			t.Errorf("clamping changed up's bucket to %q", reg[i])
		}
	}
}

func TestVolcanoSVG(t *testing.T) {
	chart, err := Volcano(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := chart.WriteSVG(&buf, 600, 500); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") {
		t.Error("output is not SVG")
	}
	if !strings.Contains(out, `fill:#eee`) {
		t.Error("default output should draw the background grid")
	}
}

func TestVolcanoClippedMarks(t *testing.T) {
	render := func(limits [2]float64) string {
		cfg := testConfig()
		cfg.Limits = &limits
		chart, err := Volcano(cfg)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := chart.WriteSVG(&buf, 600, 500); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	// Wide limits clip nothing: every plotted row is a point mark.
	if got := strings.Count(render([2]float64{-10, 10}), "<circle"); got != 4 {
		t.Errorf("wide limits: %d point marks, want 4", got)
	}
	// Narrow limits clip "up" and "down"; those rows are drawn as
	// triangle paths instead of points.
	if got := strings.Count(render([2]float64{-1, 1}), "<circle"); got != 2 {
		t.Errorf("narrow limits: %d point marks, want 2", got)
	}
}

func TestVolcanoHideGrid(t *testing.T) {
	cfg := testConfig()
	cfg.HideGrid = true
	chart, err := Volcano(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := chart.WriteSVG(&buf, 600, 500); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `fill:#eee`) {
		t.Error("HideGrid left the background grid in place")
	}
}

func TestMAPlot(t *testing.T) {
	chart, err := MAPlot(testConfig())
	if err != nil {
		t.Fatal(err)
	}

	// "silent" has zero expression and is dropped; "untested"
	// stays since the MA plot needs no p-value.
	if chart.Rows() != 5 {
		t.Errorf("Rows() = %d, want 5", chart.Rows())
	}

	tab := chart.Data()
	ids := tab.MustColumn(deg.ColID).([]string)
	as := tab.MustColumn(ColA).([]float64)
	for i, id := range ids {
		if id == "up" {
			// A = (log2 10 + log2 100) / 2.
			want := (math.Log2(10) + math.Log2(100)) / 2
			if math.Abs(as[i]-want) > 1e-12 {
				t.Errorf("up: A = %v, want %v", as[i], want)
			}
		}
	}
}

func TestMAPlotClippedMarks(t *testing.T) {
	render := func(limits [2]float64) string {
		cfg := testConfig()
		cfg.Limits = &limits
		chart, err := MAPlot(cfg)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := chart.WriteSVG(&buf, 600, 500); err != nil {
			t.Fatal(err)
		}
		return buf.String()
	}

	if got := strings.Count(render([2]float64{-10, 10}), "<circle"); got != 5 {
		t.Errorf("wide limits: %d point marks, want 5", got)
	}
	// Limits [-2, 2] clip "up" and "down" on the fold-change (y)
	// axis; they become triangle paths.
	if got := strings.Count(render([2]float64{-2, 2}), "<circle"); got != 3 {
		t.Errorf("narrow limits: %d point marks, want 3", got)
	}
}

func TestInfiniteMeanDropped(t *testing.T) {
	// A zero-expression reference condition gives an infinite mean
	// ratio; such features have no finite A or log position and stay
	// off the MA plot and scatterplot.
	rows := testData()
	rows = append(rows, deg.CuffdiffRow{
		TestID: "blown", Status: "OK", Sample1: "ctl", Sample2: "trt",
		Value1: math.Inf(1), Value2: 30, QValue: 0.5,
	})
	cfg := testConfig()
	cfg.Data = rows

	ma, err := MAPlot(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if ma.Rows() != 5 {
		t.Errorf("MAPlot Rows() = %d, want 5", ma.Rows())
	}
	for _, a := range ma.Data().MustColumn(ColA).([]float64) {
		if math.IsInf(a, 0) || math.IsNaN(a) {
			t.Errorf("MA plot kept a non-finite A value %v", a)
		}
	}

	sc, err := Scatter(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Rows() != 5 {
		t.Errorf("Scatter Rows() = %d, want 5", sc.Rows())
	}
}

func TestScatter(t *testing.T) {
	chart, err := Scatter(testConfig())
	if err != nil {
		t.Fatal(err)
	}
	if chart.Rows() != 5 {
		t.Errorf("Rows() = %d, want 5", chart.Rows())
	}

	tab := chart.Data()
	ids := tab.MustColumn(deg.ColID).([]string)
	lx := tab.MustColumn(ColLogXMean).([]float64)
	ly := tab.MustColumn(ColLogYMean).([]float64)
	for i, id := range ids {
		if id == "up" {
			if lx[i] != 1 || ly[i] != 2 {
				t.Errorf("up: log means = (%v, %v), want (1, 2)", lx[i], ly[i])
			}
		}
	}
}
