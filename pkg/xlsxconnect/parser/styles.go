package parser

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
)

// builtinFormats holds the implicit codes of the built-in date and time
// number formats. Other built-in ids are numeric or text.
var builtinFormats = map[int]string{
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mm:ss.0",
}

// StyleTable maps cell style indexes to the value type of their number format.
type StyleTable struct {
	types []models.ValueType
}

// LoadStyles streams the styles part. A missing part yields a table in
// which every style is VARCHAR.
func LoadStyles(r *zip.Reader, name string) (*StyleTable, error) {
	st := &StyleTable{}
	if findPart(r, name) == nil {
		return st, nil
	}
	rc, err := openPart(r, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	custom := make(map[int]string)
	var (
		fmtIDs    []int
		inCellXfs bool
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
			case "numFmt":
				if id, err := strconv.Atoi(attr(t, "numFmtId")); err == nil {
					custom[id] = attr(t, "formatCode")
				}
			case "cellXfs":
				inCellXfs = true
			case "xf":
				if inCellXfs {
					fmtIDs = append(fmtIDs, atoiOr(attr(t, "numFmtId"), 0))
				}
			}
		case xml.EndElement:
			if t.Name.Local == "cellXfs" {
				inCellXfs = false
			}
		}
	}

	st.types = make([]models.ValueType, len(fmtIDs))
	for i, id := range fmtIDs {
		code, ok := custom[id]
		if !ok {
			code = builtinFormats[id]
		}
		st.types[i] = ClassifyFormat(stripFormatBrackets(code))
	}
	return st, nil
}

// TypeOf returns the value type of a style index. Unknown styles are VARCHAR.
func (s *StyleTable) TypeOf(style int) models.ValueType {
	if s == nil || style < 0 || style >= len(s.types) {
		return models.TypeVarchar
	}
	return s.types[style]
}

// stripFormatBrackets removes bracketed color, condition and locale
// sections such as [Red], [>=100] or [$USD-409] from a format code.
// Elapsed time sections ([h], [mm], [ss]) and quoted text are kept.
func stripFormatBrackets(code string) string {
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == '\\' && !inQuote && i+1 < len(code):
			b.WriteByte(c)
			i++
			c = code[i]
		case c == '[' && !inQuote:
			if end := strings.IndexByte(code[i:], ']'); end > 0 {
				if section := code[i+1 : i+end]; isElapsedSection(section) {
					b.WriteString(code[i : i+end+1])
				}
				i += end
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isElapsedSection(section string) bool {
	section = strings.ToLower(section)
	if section == "" {
		return false
	}
	return strings.Trim(section, section[:1]) == "" && strings.ContainsAny(section[:1], "hms")
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
