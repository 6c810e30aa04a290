// Copyright 2024 The vidger Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package deg

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadRows reads a table file as a cell grid, picking the reader by
// extension: .xlsx goes through the workbook loader, anything else
// is treated as tab-separated text. sheet only applies to workbooks.
func ReadRows(path, sheet string) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return ExcelRows(path, sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return splitRows(f)
}

// ExcelRows returns the cell grid of one sheet of an .xlsx workbook,
// in the same shape the *FromRows converters take. sheet may be ""
// to read the first sheet. Result tables exported from spreadsheets
// are a common hand-off format between collaborators, so every
// parser in this package has an Excel path.
func ExcelRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}
