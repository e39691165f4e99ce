package parser

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// maxPreallocStrings caps the capacity taken from sst@uniqueCount.
const maxPreallocStrings = 1 << 16

// SharedStrings is the package's table of de-duplicated cell text.
type SharedStrings struct {
	values []string
}

// LoadSharedStrings streams the shared strings part. A missing part yields
// an empty table.
func LoadSharedStrings(r *zip.Reader, name string) (*SharedStrings, error) {
	sst := &SharedStrings{}
	if findPart(r, name) == nil {
		return sst, nil
	}
	rc, err := openPart(r, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		text strings.Builder
		inSI bool
		inT  bool
	)
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(name, err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sst":
				if n := atoiOr(attr(t, "uniqueCount"), 0); n > 0 {
					sst.values = make([]string, 0, min(n, maxPreallocStrings))
				}
			case "si":
				inSI = true
				text.Reset()
			case "t":
				inT = inSI
			case "rPh":
				// phonetic guide text is not part of the value
				if err := decoder.Skip(); err != nil {
					return nil, malformed(name, err)
				}
			}
		case xml.CharData:
			if inT {
				text.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inT = false
			case "si":
				sst.values = append(sst.values, text.String())
				inSI = false
			}
		}
	}
	return sst, nil
}

// Get returns the string at a 0-based index.
func (s *SharedStrings) Get(index int) (string, bool) {
	if s == nil || index < 0 || index >= len(s.values) {
		return "", false
	}
	return s.values[index], true
}

// Len returns the number of entries.
func (s *SharedStrings) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}
