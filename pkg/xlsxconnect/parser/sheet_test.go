package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

const sheetPath = "xl/worksheets/sheet1.xml"

func columnNames(t *testing.T, sheetXML string, sst []string, hasHeaderRow bool) []string {
	t.Helper()
	r := buildZip(t, singleSheetParts(sheetXML, sst))
	names, err := ReadColumnNames(r, sheetPath, loadContext(t, r), hasHeaderRow)
	if err != nil {
		t.Fatalf("ReadColumnNames failed: %v", err)
	}
	return names
}

func TestReadColumnNamesHeaderOverlay(t *testing.T) {
	sheet := worksheetXML(`<dimension ref="B2:D2"/><sheetData>` +
		`<row r="1" spans="2:4">` +
		`<c r="B1" t="s"><v>0</v></c>` +
		`<c r="C1" t="s"><v>1</v></c>` +
		`<c r="D1" t="s"><v>0</v></c>` +
		`</row></sheetData>`)

	names := columnNames(t, sheet, []string{"", "Chocolate"}, true)
	if expected := []string{"C2", "Chocolate", "C4"}; !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}

	names = columnNames(t, sheet, []string{"", "Chocolate"}, false)
	if expected := []string{"C2", "C3", "C4"}; !equalStrings(names, expected) {
		t.Errorf("names without header = %v, expected %v", names, expected)
	}
}

func TestReadColumnNamesFromCellRefs(t *testing.T) {
	sheet := worksheetXML(`<sheetData>` +
		`<row r="5"><c r="C5"><v>1</v></c></row>` +
		`<row r="9"><c r="H9"><v>2</v></c></row>` +
		`</sheetData>`)

	names := columnNames(t, sheet, nil, false)
	expected := []string{"C3", "C4", "C5", "C6", "C7", "C8"}
	if !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}
}

func TestReadColumnNamesFromSpans(t *testing.T) {
	// Spans win over cell references; the stray ref in Z1 is ignored
	// because its row carries a span hint.
	sheet := worksheetXML(`<sheetData>` +
		`<row r="1" spans="2:3"><c r="Z1"><v>1</v></c></row>` +
		`<row r="2" spans="1:4"><c r="A2"><v>2</v></c></row>` +
		`</sheetData>`)

	names := columnNames(t, sheet, nil, false)
	if expected := []string{"C1", "C2", "C3", "C4"}; !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}
}

func TestReadColumnNamesMalformedDimension(t *testing.T) {
	sheet := worksheetXML(`<dimension ref="??"/><sheetData>` +
		`<row r="1"><c r="B1" t="inlineStr"><is><t>Name</t></is></c><c r="D1"><v>3</v></c></row>` +
		`</sheetData>`)

	names := columnNames(t, sheet, nil, true)
	if expected := []string{"Name", "C3", "C4"}; !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}
}

func TestReadColumnNamesOutOfRangeHints(t *testing.T) {
	sheet := worksheetXML(`<dimension ref="A1:ZZZZZZ1"/><sheetData>` +
		`<row r="1" spans="1:99999"><c r="B1" t="inlineStr"><is><t>Name</t></is></c><c r="D1"><v>3</v></c>` +
		`<c r="ZZZZZZZZZZZZZZZ1"><v>4</v></c></row>` +
		`</sheetData>`)

	names := columnNames(t, sheet, nil, true)
	if expected := []string{"Name", "C3", "C4"}; !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}

	r := buildZip(t, singleSheetParts(sheet, nil))
	rows, err := ReadRows(r, sheetPath, loadContext(t, r), 1, 1)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 1 || len(rows[0].Values) != 3 || rows[0].Values[2] != int64(3) {
		t.Errorf("rows = %+v, expected one row of 3 values ending in 3", rows)
	}
}

func TestReadColumnNamesEmptySheet(t *testing.T) {
	for _, sheet := range []string{
		worksheetXML(`<sheetData/>`),
		worksheetXML(``),
	} {
		for _, hasHeaderRow := range []bool{false, true} {
			names := columnNames(t, sheet, nil, hasHeaderRow)
			if !equalStrings(names, []string{"C1"}) {
				t.Errorf("hasHeaderRow=%v: names = %v, expected [C1]", hasHeaderRow, names)
			}
		}
	}
}

func TestReadColumnNamesHeaderFallbacks(t *testing.T) {
	sheet := worksheetXML(`<dimension ref="A1:F3"/><sheetData>` +
		`<row r="1">` +
		`<c r="A1" t="s"><v>7</v></c>` + // index past the table
		`<c r="B1"><v>42</v></c>` + // numeric header
		`<c r="C1" t="str"><f>"x"&amp;"y"</f><v>xy</v></c>` +
		`<c r="D1" t="s"><v>oops</v></c>` + // non-numeric index
		`<c r="Z1" t="s"><v>0</v></c>` + // outside the range
		`<c t="s"><v>0</v></c>` + // no reference
		`<c r="F1" t="b"><v>1</v></c>` +
		`</row>` +
		`<row r="2"><c r="E2" t="s"><v>0</v></c></row>` +
		`</sheetData>`)

	names := columnNames(t, sheet, []string{"Flavour"}, true)
	expected := []string{"C1", "C2", "xy", "C4", "C5", "C6"}
	if !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}
}

func TestReadColumnNamesMissingSharedStrings(t *testing.T) {
	sheet := worksheetXML(`<dimension ref="A1:B1"/><sheetData>` +
		`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>` +
		`</sheetData>`)

	names := columnNames(t, sheet, nil, true)
	if expected := []string{"C1", "C2"}; !equalStrings(names, expected) {
		t.Errorf("names = %v, expected %v", names, expected)
	}
}

func TestReadColumnNamesLengthMatchesRange(t *testing.T) {
	for _, ref := range []string{"A1", "A1:A1", "C1:C9", "B2:K20", "AA1:AZ1"} {
		first, last, ok := parseDimensionRef(ref)
		if !ok {
			t.Fatalf("parseDimensionRef(%q) failed", ref)
		}
		names := columnNames(t, worksheetXML(`<dimension ref="`+ref+`"/><sheetData/>`), nil, false)
		if len(names) != last-first+1 {
			t.Errorf("%s: len(names) = %d, expected %d", ref, len(names), last-first+1)
		}
		for i, name := range names {
			if expected := fmt.Sprintf("C%d", first+i); name != expected {
				t.Errorf("%s: names[%d] = %q, expected %q", ref, i, name, expected)
			}
		}
	}
}

func TestReadColumnNamesUnknownPart(t *testing.T) {
	r := buildZip(t, singleSheetParts(worksheetXML(`<sheetData/>`), nil))
	_, err := ReadColumnNames(r, "xl/worksheets/missing.xml", SheetContext{Logger: zap.NewNop()}, false)
	if err == nil {
		t.Fatal("expected an error for a missing part")
	}
}

// numberedSheet returns a worksheet with n rows whose A cell holds the row
// index and whose B cell holds "row<index>".
func numberedSheet(n int) string {
	var b strings.Builder
	b.WriteString(`<dimension ref="A1:B` + fmt.Sprint(n) + `"/><sheetData>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<row r="%d"><c r="A%d"><v>%d</v></c><c r="B%d" t="inlineStr"><is><t>row%d</t></is></c></row>`, i, i, i, i, i)
	}
	b.WriteString(`</sheetData>`)
	return worksheetXML(b.String())
}

func TestReadRowsRange(t *testing.T) {
	tests := []struct {
		rows     int
		first    int
		last     int
		expected []int
	}{
		{10, 5, 7, []int{5, 6, 7}},
		{6, 5, 7, []int{5, 6}},
		{4, 5, 7, nil},
		{10, 1, 1, []int{1}},
		{3, 1, 100, []int{1, 2, 3}},
	}

	for _, tt := range tests {
		r := buildZip(t, singleSheetParts(numberedSheet(tt.rows), nil))
		rows, err := ReadRows(r, sheetPath, loadContext(t, r), tt.first, tt.last)
		if err != nil {
			t.Fatalf("ReadRows failed: %v", err)
		}
		if len(rows) != len(tt.expected) {
			t.Errorf("%d rows, [%d, %d]: got %d rows, expected %d", tt.rows, tt.first, tt.last, len(rows), len(tt.expected))
			continue
		}
		for i, row := range rows {
			if row.R != tt.expected[i] {
				t.Errorf("rows[%d].R = %d, expected %d", i, row.R, tt.expected[i])
			}
			if row.Values[0] != int64(row.R) {
				t.Errorf("rows[%d].Values[0] = %v, expected %d", i, row.Values[0], row.R)
			}
			if row.Values[1] != fmt.Sprintf("row%d", row.R) {
				t.Errorf("rows[%d].Values[1] = %v", i, row.Values[1])
			}
		}
	}
}

func TestReadRowsAlignment(t *testing.T) {
	sheet := worksheetXML(`<dimension ref="B1:E4"/><sheetData>` +
		`<row r="1"><c r="B1" t="s"><v>0</v></c><c r="E1" t="s"><v>9</v></c></row>` +
		`<row r="3"><c r="C3"><v>2.5</v></c><c r="G3"><v>1</v></c></row>` +
		`<row r="4"><c><v>1</v></c><c t="b"><v>0</v></c><c r="E4" t="e"><v>#DIV/0!</v></c></row>` +
		`</sheetData>`)

	r := buildZip(t, singleSheetParts(sheet, []string{"Cocoa"}))
	rows, err := ReadRows(r, sheetPath, loadContext(t, r), 1, 4)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, expected 4", len(rows))
	}

	expected := [][]interface{}{
		{"Cocoa", nil, nil, nil},
		{nil, nil, nil, nil},
		{nil, 2.5, nil, nil},
		{int64(1), false, nil, "#DIV/0!"},
	}
	for i, row := range rows {
		if row.R != i+1 {
			t.Errorf("rows[%d].R = %d, expected %d", i, row.R, i+1)
		}
		if len(row.Values) != 4 {
			t.Fatalf("rows[%d] has %d values, expected 4", i, len(row.Values))
		}
		for j, v := range row.Values {
			if v != expected[i][j] {
				t.Errorf("rows[%d].Values[%d] = %v (%T), expected %v (%T)", i, j, v, v, expected[i][j], expected[i][j])
			}
		}
	}
}

func TestReadRowsDates(t *testing.T) {
	parts := singleSheetParts(worksheetXML(`<dimension ref="A1:E1"/><sheetData>`+
		`<row r="1"><c r="A1" s="1"><v>45000</v></c><c r="B1"><v>45000</v></c>`+
		`<c r="C1" t="d"><v>2024-02-29T10:30:00</v></c>`+
		`<c r="D1" s="2"><v>1234</v></c><c r="E1" s="3"><v>19.5</v></c></row>`+
		`</sheetData>`), nil)
	parts["xl/styles.xml"] = xmlHdr + `<styleSheet ` + nsMain + `><numFmts count="2">` +
		`<numFmt numFmtId="164" formatCode="#,##0;[Red]-#,##0"/>` +
		`<numFmt numFmtId="165" formatCode="[$USD-409]#,##0.00"/>` +
		`</numFmts><cellXfs count="4">` +
		`<xf numFmtId="0"/><xf numFmtId="14" applyNumberFormat="1"/>` +
		`<xf numFmtId="164" applyNumberFormat="1"/><xf numFmtId="165" applyNumberFormat="1"/>` +
		`</cellXfs></styleSheet>`

	r := buildZip(t, parts)
	rows, err := ReadRows(r, sheetPath, loadContext(t, r), 1, 1)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, expected 1", len(rows))
	}

	date, ok := rows[0].Values[0].(time.Time)
	if !ok {
		t.Fatalf("Values[0] = %v (%T), expected time.Time", rows[0].Values[0], rows[0].Values[0])
	}
	if got := date.Format("2006-01-02"); got != "2023-03-15" {
		t.Errorf("date = %s, expected 2023-03-15", got)
	}
	if rows[0].Values[1] != int64(45000) {
		t.Errorf("unstyled serial = %v, expected 45000", rows[0].Values[1])
	}
	iso, ok := rows[0].Values[2].(time.Time)
	if !ok || iso.Hour() != 10 || iso.Minute() != 30 {
		t.Errorf("ISO cell = %v, expected 2024-02-29 10:30", rows[0].Values[2])
	}
	if rows[0].Values[3] != int64(1234) {
		t.Errorf("colored number = %v (%T), expected 1234", rows[0].Values[3], rows[0].Values[3])
	}
	if rows[0].Values[4] != 19.5 {
		t.Errorf("currency number = %v (%T), expected 19.5", rows[0].Values[4], rows[0].Values[4])
	}
}

func TestReadRowsWithoutRowIndexes(t *testing.T) {
	sheet := worksheetXML(`<sheetData>` +
		`<row><c r="A1"><v>1</v></c></row>` +
		`<row><c r="A2"><v>2</v></c></row>` +
		`<row><c r="A3"><v>3</v></c></row>` +
		`</sheetData>`)

	r := buildZip(t, singleSheetParts(sheet, nil))
	rows, err := ReadRows(r, sheetPath, loadContext(t, r), 2, 3)
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Values[0] != int64(2) || rows[1].Values[0] != int64(3) {
		t.Errorf("rows = %v, expected rows 2 and 3", rows)
	}
}

func TestCountRows(t *testing.T) {
	tests := []struct {
		sheet    string
		expected int
	}{
		{numberedSheet(12), 12},
		{worksheetXML(`<sheetData/>`), 0},
		{worksheetXML(`<sheetData><row r="3"/><row r="8"/></sheetData>`), 8},
		{worksheetXML(`<sheetData><row/><row/><row/></sheetData>`), 3},
	}

	for _, tt := range tests {
		r := buildZip(t, singleSheetParts(tt.sheet, nil))
		count, err := CountRows(r, sheetPath, zap.NewNop())
		if err != nil {
			t.Fatalf("CountRows failed: %v", err)
		}
		if count != tt.expected {
			t.Errorf("CountRows() = %d, expected %d", count, tt.expected)
		}
	}
}
