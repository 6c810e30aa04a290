// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deg

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// This file reads the tab-separated tables the three tools write:
// Cuffdiff's gene_exp.diff, DESeq2 results saved with write.table,
// edgeR topTags output, and plain numeric matrices (normalized counts
// or CPM) with a header row of sample names. Columns are located by
// header name, not position, since R's writers disagree about
// leading row-name columns. Numeric fields accept "NA" and "" as
// undefined and become NaN.

// ParseCuffdiff reads a Cuffdiff gene_exp.diff table.
func ParseCuffdiff(r io.Reader) (CuffdiffTable, error) {
	rows, err := splitRows(r)
	if err != nil {
		return nil, err
	}
	return CuffdiffFromRows(rows)
}

// CuffdiffFromRows converts an already-split cell grid (first row is
// the header) into a CuffdiffTable.
func CuffdiffFromRows(rows [][]string) (CuffdiffTable, error) {
	cols, rows, err := header(rows, "test_id", "sample_1", "sample_2", "status", "value_1", "value_2", "q_value")
	if err != nil {
		return nil, fmt.Errorf("cuffdiff table: %w", err)
	}

	tab := make(CuffdiffTable, 0, len(rows))
	for i, row := range rows {
		cr := CuffdiffRow{
			TestID:  cell(row, col(cols, "test_id")),
			GeneID:  cell(row, col(cols, "gene_id")),
			Gene:    cell(row, col(cols, "gene")),
			Locus:   cell(row, col(cols, "locus")),
			Sample1: cell(row, col(cols, "sample_1")),
			Sample2: cell(row, col(cols, "sample_2")),
			Status:  cell(row, col(cols, "status")),
		}
		var err error
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"value_1", &cr.Value1},
			{"value_2", &cr.Value2},
			{"log2(fold_change)", &cr.Log2FoldChange},
			{"test_stat", &cr.TestStat},
			{"p_value", &cr.PValue},
			{"q_value", &cr.QValue},
		} {
			c, ok := cols[f.name]
			if !ok {
				continue
			}
			*f.dst, err = parseNum(cell(row, c))
			if err != nil {
				return nil, fmt.Errorf("cuffdiff table row %d: %s: %w", i+2, f.name, err)
			}
		}
		cr.Significant = cell(row, col(cols, "significant")) == "yes"
		tab = append(tab, cr)
	}
	return tab, nil
}

// ParseDESeqResults reads a DESeq2 results table. The feature id is
// taken from the first column, which R writes with an empty or
// arbitrary header.
func ParseDESeqResults(r io.Reader) ([]DESeqResult, error) {
	rows, err := splitRows(r)
	if err != nil {
		return nil, err
	}
	return DESeqResultsFromRows(rows)
}

// DESeqResultsFromRows converts an already-split cell grid into
// DESeq2 results rows.
func DESeqResultsFromRows(rows [][]string) ([]DESeqResult, error) {
	cols, rows, err := header(rows, "basemean", "log2foldchange", "padj")
	if err != nil {
		return nil, fmt.Errorf("deseq results: %w", err)
	}

	res := make([]DESeqResult, 0, len(rows))
	for i, row := range rows {
		dr := DESeqResult{ID: cell(row, 0)}
		var err error
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"basemean", &dr.BaseMean},
			{"log2foldchange", &dr.Log2FoldChange},
			{"lfcse", &dr.LfcSE},
			{"stat", &dr.Stat},
			{"pvalue", &dr.PValue},
			{"padj", &dr.PAdj},
		} {
			c, ok := cols[f.name]
			if !ok {
				continue
			}
			*f.dst, err = parseNum(cell(row, c))
			if err != nil {
				return nil, fmt.Errorf("deseq results row %d: %s: %w", i+2, f.name, err)
			}
		}
		res = append(res, dr)
	}
	return res, nil
}

// ParseEdgeRTags reads an edgeR topTags table.
func ParseEdgeRTags(r io.Reader) ([]EdgeRTag, error) {
	rows, err := splitRows(r)
	if err != nil {
		return nil, err
	}
	return EdgeRTagsFromRows(rows)
}

// EdgeRTagsFromRows converts an already-split cell grid into edgeR
// tag rows.
func EdgeRTagsFromRows(rows [][]string) ([]EdgeRTag, error) {
	cols, rows, err := header(rows, "logfc", "fdr")
	if err != nil {
		return nil, fmt.Errorf("edger tags: %w", err)
	}

	tags := make([]EdgeRTag, 0, len(rows))
	for i, row := range rows {
		t := EdgeRTag{ID: cell(row, 0)}
		var err error
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"logfc", &t.LogFC},
			{"logcpm", &t.LogCPM},
			{"pvalue", &t.PValue},
			{"fdr", &t.FDR},
		} {
			c, ok := cols[f.name]
			if !ok {
				continue
			}
			*f.dst, err = parseNum(cell(row, c))
			if err != nil {
				return nil, fmt.Errorf("edger tags row %d: %s: %w", i+2, f.name, err)
			}
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// ParseMatrix reads a numeric expression matrix: a header row of
// sample names followed by one row per feature (id then one value per
// sample).
func ParseMatrix(r io.Reader) (map[string][]float64, []string, error) {
	rows, err := splitRows(r)
	if err != nil {
		return nil, nil, err
	}
	return MatrixFromRows(rows)
}

// MatrixFromRows converts an already-split cell grid into an
// expression matrix and its sample names. The header may or may not
// carry a label for the id column; which it is follows from the
// whole grid. A labeled header is exactly as wide as every data row,
// an unlabeled one is one cell narrower than every data row, and
// anything else is malformed.
func MatrixFromRows(rows [][]string) (map[string][]float64, []string, error) {
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("expression matrix: need a header row and at least one feature row")
	}
	w := len(rows[0])
	labeled, unlabeled := true, true
	for _, row := range rows[1:] {
		if len(row) != w {
			labeled = false
		}
		if len(row) != w+1 {
			unlabeled = false
		}
	}
	samples := rows[0]
	switch {
	case labeled:
		samples = samples[1:]
	case unlabeled:
	default:
		return nil, nil, fmt.Errorf("expression matrix: rows disagree with the header about the number of samples")
	}

	m := make(map[string][]float64, len(rows)-1)
	for i, row := range rows[1:] {
		vals := make([]float64, len(samples))
		for j, s := range row[1:] {
			v, err := parseNum(s)
			if err != nil {
				return nil, nil, fmt.Errorf("expression matrix row %d, sample %q: %w", i+2, samples[j], err)
			}
			vals[j] = v
		}
		m[row[0]] = vals
	}
	return m, samples, nil
}

// splitRows splits r into lines and tab-separated cells, dropping
// blank lines.
func splitRows(r io.Reader) ([][]string, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(line, "\t"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// header maps lower-cased header names to column indexes and checks
// that the named columns are present. It returns the data rows.
func header(rows [][]string, required ...string) (map[string]int, [][]string, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty table")
	}
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.ToLower(strings.Trim(name, `" `))
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, rows[1:], nil
}

// col returns the index of a header name, or -1 when the table does
// not have that column.
func col(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.Trim(row[i], `"`)
}

// parseNum parses a numeric field. "NA" and "" are undefined values,
// not errors; "inf" and "-inf" parse to infinities (Cuffdiff writes
// both for fold changes against zero expression).
func parseNum(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "na", "nan":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
