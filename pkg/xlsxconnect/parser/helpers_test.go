package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const (
	nsMain = `xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"`
	nsRel  = `xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`
	xmlHdr = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`

	relTypeSheet   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	relTypeStrings = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/sharedStrings"
	relTypeStyles  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
)

// buildZip writes parts into an in-memory archive.
func buildZip(t *testing.T, parts map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range parts {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create part %s: %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write part %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("Failed to open archive: %v", err)
	}
	return r
}

func worksheetXML(body string) string {
	return xmlHdr + `<worksheet ` + nsMain + `>` + body + `</worksheet>`
}

func sharedStringsXML(values ...string) string {
	var b strings.Builder
	b.WriteString(xmlHdr + `<sst ` + nsMain + `>`)
	for _, v := range values {
		b.WriteString("<si><t>")
		xml.EscapeText(&b, []byte(v))
		b.WriteString("</t></si>")
	}
	b.WriteString("</sst>")
	return b.String()
}

// singleSheetParts returns the parts of a package with one sheet named
// "Sheet1" stored at xl/worksheets/sheet1.xml. A nil sst omits the shared
// strings part.
func singleSheetParts(sheetXML string, sst []string) map[string]string {
	rels := `<Relationship Id="rId1" Type="` + relTypeSheet + `" Target="worksheets/sheet1.xml"/>`
	parts := map[string]string{
		"xl/workbook.xml": xmlHdr + `<workbook ` + nsMain + ` ` + nsRel + `><sheets>` +
			`<sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/worksheets/sheet1.xml": sheetXML,
	}
	if sst != nil {
		rels += `<Relationship Id="rId2" Type="` + relTypeStrings + `" Target="sharedStrings.xml"/>`
		parts["xl/sharedStrings.xml"] = sharedStringsXML(sst...)
	}
	parts["xl/_rels/workbook.xml.rels"] = relsXML(rels)
	return parts
}

func relsXML(body string) string {
	return xmlHdr + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		body + `</Relationships>`
}

// loadContext builds the decoding context for an archive the way the
// package reader does.
func loadContext(t *testing.T, r *zip.Reader) SheetContext {
	t.Helper()
	idx, err := LoadWorkbookIndex(r)
	if err != nil {
		t.Fatalf("LoadWorkbookIndex failed: %v", err)
	}
	sst, err := LoadSharedStrings(r, idx.SharedStringsPath)
	if err != nil {
		t.Fatalf("LoadSharedStrings failed: %v", err)
	}
	styles, err := LoadStyles(r, idx.StylesPath)
	if err != nil {
		t.Fatalf("LoadStyles failed: %v", err)
	}
	return SheetContext{
		Strings:  sst,
		Styles:   styles,
		Date1904: idx.Date1904,
		Logger:   zap.NewNop(),
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
