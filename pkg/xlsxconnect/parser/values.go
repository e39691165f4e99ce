package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SheetContext carries the package-level tables used to decode cells.
type SheetContext struct {
	Strings  *SharedStrings
	Styles   *StyleTable
	Date1904 bool
	Logger   *zap.Logger
}

func (ctx SheetContext) logger() *zap.Logger {
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}

// rawCell is a <c> element as read from the worksheet.
type rawCell struct {
	ref   string
	typ   string
	style int
	text  string
}

// isoLayouts are accepted for cells of type "d".
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"15:04:05",
}

// cellValue decodes a cell into a Go value. Missing values decode to nil.
func (ctx SheetContext) cellValue(c rawCell) interface{} {
	switch c.typ {
	case "s":
		if s, ok := ctx.sharedString(c); ok {
			return s
		}
		return nil
	case "inlineStr", "str", "e":
		return c.text
	case "b":
		if c.text == "" {
			return nil
		}
		return c.text == "1" || c.text == "true"
	case "d":
		for _, layout := range isoLayouts {
			if t, err := time.Parse(layout, c.text); err == nil {
				return t
			}
		}
		if c.text == "" {
			return nil
		}
		return c.text
	}

	if c.text == "" {
		return nil
	}
	if ctx.Styles.TypeOf(c.style).IsTemporal() {
		if serial, err := strconv.ParseFloat(c.text, 64); err == nil {
			if t, err := excelize.ExcelDateToTime(serial, ctx.Date1904); err == nil {
				return t
			}
		}
	}
	return parseValue(c.text)
}

// sharedString resolves a shared string cell; unresolved indexes report false.
func (ctx SheetContext) sharedString(c rawCell) (string, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(c.text))
	if err == nil {
		if s, ok := ctx.Strings.Get(index); ok {
			return s, true
		}
	}
	ctx.logger().Debug("unresolved shared string",
		zap.String("cell", c.ref),
		zap.String("index", c.text),
		zap.Int("table_size", ctx.Strings.Len()))
	return "", false
}

// headerText returns the text a header cell contributes as a column name.
// Only string typed cells qualify.
func (ctx SheetContext) headerText(c rawCell) (string, bool) {
	switch c.typ {
	case "s":
		return ctx.sharedString(c)
	case "str", "inlineStr":
		return c.text, true
	}
	return "", false
}

// parseValue attempts to parse a string value as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
