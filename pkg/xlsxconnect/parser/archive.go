package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrPartNotFound indicates a mandatory part is missing from the package.
var ErrPartNotFound = errors.New("part not found")

// ErrMalformedPart indicates a part could not be parsed.
var ErrMalformedPart = errors.New("malformed part")

// openPart opens a part by name for streaming. The caller closes it.
func openPart(r *zip.Reader, name string) (io.ReadCloser, error) {
	f := findPart(r, name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrPartNotFound, name)
	}
	return f.Open()
}

func findPart(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	// Some producers store part names with a different case.
	for _, f := range r.File {
		if strings.EqualFold(f.Name, name) {
			return f
		}
	}
	return nil
}

func malformed(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
}

// resolveTarget resolves a relationship target against the directory of
// the part owning the relationship. Absolute targets start at the package root.
func resolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Join(baseDir, target)
}

// relsPathFor returns the relationships part belonging to a part,
// e.g. "xl/workbook.xml" -> "xl/_rels/workbook.xml.rels".
func relsPathFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func hasAttr(se xml.StartElement, local string) bool {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return true
		}
	}
	return false
}
