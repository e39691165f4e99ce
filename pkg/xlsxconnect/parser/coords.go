// Package parser provides streaming readers for the parts of an xlsx package.
package parser

import (
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ColumnIndex returns the 1-based column index encoded by the leading
// letters of a cell reference ("A1" -> 1, "AB12" -> 28).
// It returns 0 when ref is empty, does not start with a letter or names
// a column past excelize.MaxColumns.
func ColumnIndex(ref string) int {
	index := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		if c < 'A' || c > 'Z' {
			break
		}
		index = index*26 + int(c-'A') + 1
		if index > excelize.MaxColumns {
			return 0
		}
	}
	return index
}

// ColumnName returns the column letters for a 1-based index, or "" when
// the index is out of the spreadsheet range.
func ColumnName(index int) string {
	name, err := excelize.ColumnNumberToName(index)
	if err != nil {
		return ""
	}
	return name
}

// DefaultColumnName is the placeholder name of a column without header text.
func DefaultColumnName(index int) string {
	return "C" + strconv.Itoa(index)
}
