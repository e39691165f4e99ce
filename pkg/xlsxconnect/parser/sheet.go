package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"io"
	"strconv"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
	"go.uber.org/zap"
)

// headerRowIndex is the row literal that holds column headers.
const headerRowIndex = "1"

// errStopScan ends a worksheet scan early without error.
var errStopScan = errors.New("stop scan")

// sheetScan is the result of scanning a worksheet for its column layout.
type sheetScan struct {
	first  int
	last   int
	header []rawCell
}

func (s *sheetScan) width() int {
	return s.last - s.first + 1
}

// scanSheet determines the column range of a worksheet and, with
// withHeader, captures the cells of the header row.
//
// The range comes from the first of: the dimension element, row spans,
// explicit cell references. A sheet with none of them has one column.
func scanSheet(r *zip.Reader, partPath string, withHeader bool, logger *zap.Logger) (*sheetScan, error) {
	rc, err := openPart(r, partPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		scan          sheetScan
		spans         SpanAccumulator
		haveDimension bool
		inHeader      bool
		rowHasSpans   bool
		current       *rawCell
		inText        bool
	)

	decoder := xml.NewDecoder(rc)
	err = func() error {
		for {
			token, err := decoder.Token()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return malformed(partPath, err)
			}
			switch t := token.(type) {
			case xml.StartElement:
				switch t.Name.Local {
				case "dimension":
					if haveDimension {
						continue
					}
					ref := attr(t, "ref")
					if first, last, ok := parseDimensionRef(ref); ok {
						scan.first, scan.last = first, last
						haveDimension = true
					} else {
						logger.Debug("ignoring malformed dimension", zap.String("part", partPath), zap.String("ref", ref))
					}
					if haveDimension && !withHeader {
						return errStopScan
					}
				case "row":
					inHeader = withHeader && attr(t, "r") == headerRowIndex
					rowHasSpans = false
					if !haveDimension {
						rowHasSpans = spans.AddSpanList(attr(t, "spans"))
					}
				case "c":
					ref := attr(t, "r")
					if !haveDimension && !rowHasSpans {
						spans.AddCellRef(ref)
					}
					if inHeader {
						current = &rawCell{ref: ref, typ: attr(t, "t")}
					}
				case "v", "t":
					inText = current != nil
				case "f", "rPh":
					if err := decoder.Skip(); err != nil {
						return malformed(partPath, err)
					}
				}
			case xml.CharData:
				if inText {
					current.text += string(t)
				}
			case xml.EndElement:
				switch t.Name.Local {
				case "v", "t":
					inText = false
				case "c":
					if current != nil {
						scan.header = append(scan.header, *current)
						current = nil
					}
				case "row":
					if inHeader && haveDimension {
						return errStopScan
					}
					inHeader = false
				}
			}
		}
	}()
	if err != nil && err != errStopScan {
		return nil, err
	}

	if !haveDimension {
		if spans.IsEmpty() {
			scan.first, scan.last = 1, 1
		} else {
			scan.first, scan.last = spans.Range()
		}
		logger.Debug("inferred column range without dimension",
			zap.String("part", partPath),
			zap.String("first", ColumnName(scan.first)),
			zap.String("last", ColumnName(scan.last)),
			zap.Bool("empty", spans.IsEmpty()))
	}
	return &scan, nil
}

// ReadColumnNames returns one name per column of the sheet's range.
// Columns default to C<index>; with hasHeaderRow, string cells of row 1
// replace the default of their column.
func ReadColumnNames(r *zip.Reader, partPath string, ctx SheetContext, hasHeaderRow bool) ([]string, error) {
	scan, err := scanSheet(r, partPath, hasHeaderRow, ctx.logger())
	if err != nil {
		return nil, err
	}

	names := make([]string, scan.width())
	for i := range names {
		names[i] = DefaultColumnName(scan.first + i)
	}
	if !hasHeaderRow {
		return names, nil
	}

	for _, c := range scan.header {
		text, ok := ctx.headerText(c)
		if !ok || text == "" {
			continue
		}
		offset := ColumnIndex(c.ref) - scan.first
		if offset < 0 || offset >= len(names) {
			continue
		}
		names[offset] = text
	}
	return names, nil
}

// ReadRows returns the rows with 1-based indexes in [firstRow, lastRow],
// each aligned to the sheet's column range. Rows missing from the part
// but followed by a present row inside the range are returned empty.
// Streaming stops once lastRow has been read.
func ReadRows(r *zip.Reader, partPath string, ctx SheetContext, firstRow, lastRow int) ([]models.Row, error) {
	scan, err := scanSheet(r, partPath, false, ctx.logger())
	if err != nil {
		return nil, err
	}

	rc, err := openPart(r, partPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		rows     []models.Row
		current  *models.Row
		cell     rawCell
		inText   bool
		rowIndex int
		colIndex int
	)
	nextRow := firstRow
	width := scan.width()
	logger := ctx.logger()

	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(partPath, err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "row":
				rowIndex = nextRowIndex(t, rowIndex, logger)
				if rowIndex > lastRow {
					return rows, nil
				}
				if rowIndex < firstRow {
					if err := decoder.Skip(); err != nil {
						return nil, malformed(partPath, err)
					}
					continue
				}
				for ; nextRow < rowIndex; nextRow++ {
					rows = append(rows, models.Row{R: nextRow, Values: make([]interface{}, width)})
				}
				current = &models.Row{R: rowIndex, Values: make([]interface{}, width)}
				colIndex = scan.first - 1
			case "c":
				cell = rawCell{
					ref:   attr(t, "r"),
					typ:   attr(t, "t"),
					style: atoiOr(attr(t, "s"), 0),
				}
				if col := ColumnIndex(cell.ref); col > 0 {
					colIndex = col
				} else {
					colIndex++
				}
			case "v", "t":
				inText = current != nil
			case "f", "rPh":
				if err := decoder.Skip(); err != nil {
					return nil, malformed(partPath, err)
				}
			}
		case xml.CharData:
			if inText {
				cell.text += string(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "v", "t":
				inText = false
			case "c":
				if current == nil {
					continue
				}
				offset := colIndex - scan.first
				if offset >= 0 && offset < width {
					current.Values[offset] = ctx.cellValue(cell)
				}
			case "row":
				if current == nil {
					continue
				}
				rows = append(rows, *current)
				current = nil
				nextRow = rowIndex + 1
				if rowIndex >= lastRow {
					return rows, nil
				}
			}
		}
	}
	return rows, nil
}

// CountRows returns the highest row index present in the worksheet.
func CountRows(r *zip.Reader, partPath string, logger *zap.Logger) (int, error) {
	rc, err := openPart(r, partPath)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	count, rowIndex := 0, 0
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, malformed(partPath, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		rowIndex = nextRowIndex(se, rowIndex, logger)
		if rowIndex > count {
			count = rowIndex
		}
		if err := decoder.Skip(); err != nil {
			return 0, malformed(partPath, err)
		}
	}
	return count, nil
}

// nextRowIndex reads the r attribute of a row, falling back to the
// position after the previous row.
func nextRowIndex(se xml.StartElement, previous int, logger *zap.Logger) int {
	r := attr(se, "r")
	if r == "" {
		return previous + 1
	}
	n, err := strconv.Atoi(r)
	if err != nil || n < 1 {
		logger.Debug("ignoring malformed row index", zap.String("r", r))
		return previous + 1
	}
	return n
}
