// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vidger

import (
	"strings"
	"testing"

	"github.com/inambioinfo/vidger/deg"
)

func TestComputeBox(t *testing.T) {
	b := computeBox([]float64{1, 2, 3, 4, 5})
	if b.med != 3 {
		t.Errorf("median = %v, want 3", b.med)
	}
	if !(b.q1 <= b.med && b.med <= b.q3) {
		t.Errorf("quartiles out of order: (%v, %v, %v)", b.q1, b.med, b.q3)
	}
	// No value is beyond 1.5 IQR, so the whiskers reach the
	// extremes.
	if b.lo != 1 || b.hi != 5 {
		t.Errorf("whiskers = (%v, %v), want (1, 5)", b.lo, b.hi)
	}
}

func TestComputeBoxOutlier(t *testing.T) {
	b := computeBox([]float64{1, 2, 3, 4, 100})
	if b.med != 3 {
		t.Errorf("median = %v, want 3", b.med)
	}
	// 100 is past the upper fence; the whisker stops at the last
	// value inside it.
	if b.hi != 4 {
		t.Errorf("upper whisker = %v, want 4", b.hi)
	}
	if b.lo != 1 {
		t.Errorf("lower whisker = %v, want 1", b.lo)
	}
}

func TestBoxPlot(t *testing.T) {
	cfg := testConfig()
	chart, err := BoxPlot(cfg)
	if err != nil {
		t.Fatal(err)
	}

	// ReturnData exposes the canonical table, before any
	// per-condition filtering.
	tab := chart.Data()
	if tab == nil {
		t.Fatal("Data() = nil despite ReturnData")
	}
	if tab.Len() != len(testData()) {
		t.Errorf("Data() has %d rows, want %d", tab.Len(), len(testData()))
	}
}

func TestBoxPlotNoPositiveValues(t *testing.T) {
	cfg := testConfig()
	cfg.Data = deg.CuffdiffTable{
		{TestID: "g", Sample1: "ctl", Sample2: "trt", Status: "OK", Value1: 0, Value2: 0, QValue: 1},
	}
	_, err := BoxPlot(cfg)
	if err == nil || !strings.Contains(err.Error(), "no positive expression") {
		t.Errorf("error = %v, want no positive expression values", err)
	}
}

func TestLogColumn(t *testing.T) {
	tab := degTable([]float64{0, 0, 0, 0}, []float64{1, 1, 1, 1})
	// degTable sets both mean columns to 1, so every log is 0.
	got := logColumn(tab, deg.ColXMean)
	if len(got) != 4 {
		t.Fatalf("got %d values, want 4", len(got))
	}
	for i, v := range got {
		if v != 0 {
			t.Errorf("value %d = %v, want 0", i, v)
		}
	}
}
