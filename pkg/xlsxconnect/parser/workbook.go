package parser

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
)

const (
	defaultWorkbookPath      = "xl/workbook.xml"
	defaultSharedStringsPath = "xl/sharedStrings.xml"
	defaultStylesPath        = "xl/styles.xml"
	rootRelsPath             = "_rels/.rels"
)

// WorkbookIndex maps sheet display names to worksheet part paths.
type WorkbookIndex struct {
	// WorkbookPath is the path of the workbook part.
	WorkbookPath string
	// SharedStringsPath is the path of the shared strings part (may not exist).
	SharedStringsPath string
	// StylesPath is the path of the styles part (may not exist).
	StylesPath string
	// Date1904 reports whether date serials use the 1904 epoch.
	Date1904 bool

	sheets []models.Sheet
	paths  map[string]string
}

type sheetDecl struct {
	rID  string
	name string
}

// LoadWorkbookIndex reads the workbook part and its relationships part.
func LoadWorkbookIndex(r *zip.Reader) (*WorkbookIndex, error) {
	idx := &WorkbookIndex{
		WorkbookPath:      findOfficeDocument(r),
		SharedStringsPath: defaultSharedStringsPath,
		StylesPath:        defaultStylesPath,
		paths:             make(map[string]string),
	}

	decls, err := idx.readWorkbook(r)
	if err != nil {
		return nil, err
	}
	if err := idx.readWorkbookRels(r, decls); err != nil {
		return nil, err
	}
	return idx, nil
}

// findOfficeDocument returns the workbook part named by the package
// relationships, falling back to the conventional location.
func findOfficeDocument(r *zip.Reader) string {
	rc, err := openPart(r, rootRelsPath)
	if err != nil {
		return defaultWorkbookPath
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			if strings.HasSuffix(attr(se, "Type"), "/officeDocument") && attr(se, "Target") != "" {
				return resolveTarget("", attr(se, "Target"))
			}
		}
	}
	return defaultWorkbookPath
}

// readWorkbook collects sheet declarations in declaration order.
func (idx *WorkbookIndex) readWorkbook(r *zip.Reader) ([]sheetDecl, error) {
	rc, err := openPart(r, idx.WorkbookPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var decls []sheetDecl
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(idx.WorkbookPath, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "workbookPr":
			v := attr(se, "date1904")
			idx.Date1904 = v == "1" || v == "true"
		case "sheet":
			name, rID := attr(se, "name"), attr(se, "id")
			if name != "" && rID != "" {
				decls = append(decls, sheetDecl{rID: rID, name: name})
			}
		}
	}
	return decls, nil
}

// readWorkbookRels resolves the target of every declared sheet.
func (idx *WorkbookIndex) readWorkbookRels(r *zip.Reader, decls []sheetDecl) error {
	relsPath := relsPathFor(idx.WorkbookPath)
	rc, err := openPart(r, relsPath)
	if err != nil {
		return err
	}
	defer rc.Close()

	names := make(map[string]string, len(decls)) // rId -> sheet name
	for _, d := range decls {
		names[d.rID] = d.name
	}

	baseDir := path.Dir(idx.WorkbookPath)
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return malformed(relsPath, err)
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		rID, relType := attr(se, "Id"), attr(se, "Type")
		switch {
		case strings.HasSuffix(relType, "/sharedStrings") && attr(se, "Target") != "":
			idx.SharedStringsPath = resolveTarget(baseDir, attr(se, "Target"))
		case strings.HasSuffix(relType, "/styles") && attr(se, "Target") != "":
			idx.StylesPath = resolveTarget(baseDir, attr(se, "Target"))
		}
		name, ok := names[rID]
		if !ok {
			continue
		}
		if !hasAttr(se, "Target") {
			return fmt.Errorf("%w: %s: relationship %s has no Target", ErrMalformedPart, relsPath, rID)
		}
		idx.paths[name] = resolveTarget(baseDir, attr(se, "Target"))
	}

	for _, d := range decls {
		if p, ok := idx.paths[d.name]; ok {
			idx.sheets = append(idx.sheets, models.Sheet{Name: d.name, Path: p})
		}
	}
	return nil
}

// Sheets returns the resolved sheets in workbook declaration order.
func (idx *WorkbookIndex) Sheets() []models.Sheet {
	return append([]models.Sheet(nil), idx.sheets...)
}

// SheetNames returns the sheet display names in the requested order.
func (idx *WorkbookIndex) SheetNames(order models.SheetOrder) []string {
	sheets := idx.Sheets()
	if order == models.SheetOrderPath {
		sort.SliceStable(sheets, func(i, j int) bool {
			return sheets[i].Path < sheets[j].Path
		})
	}
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}

// PathFor returns the worksheet part path of a sheet.
func (idx *WorkbookIndex) PathFor(sheetName string) (string, bool) {
	p, ok := idx.paths[sheetName]
	return p, ok
}
