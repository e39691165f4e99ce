package parser

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SpanAccumulator widens a column range from row span hints or cell
// references. The zero value is empty.
type SpanAccumulator struct {
	first int
	last  int
}

// AddSpanRange folds a "start:end" span into the range. Malformed spans,
// non-positive or out-of-range bounds and reversed spans are ignored.
// It reports whether the span was accepted.
func (a *SpanAccumulator) AddSpanRange(span string) bool {
	first, last, ok := parseSpan(span)
	if !ok {
		return false
	}
	a.add(first, last)
	return true
}

// AddSpanList folds a whitespace separated list of spans, as found in the
// row spans attribute, and reports whether any of them was accepted.
func (a *SpanAccumulator) AddSpanList(spans string) bool {
	accepted := false
	for _, span := range strings.Fields(spans) {
		if a.AddSpanRange(span) {
			accepted = true
		}
	}
	return accepted
}

// AddCellRef folds the column of a cell reference into the range.
func (a *SpanAccumulator) AddCellRef(ref string) {
	index := ColumnIndex(ref)
	if index == 0 {
		return
	}
	a.add(index, index)
}

// IsEmpty reports whether no span or reference has been accepted yet.
func (a *SpanAccumulator) IsEmpty() bool {
	return a.first == 0 || a.last == 0
}

// Range returns the accumulated inclusive column range.
func (a *SpanAccumulator) Range() (first, last int) {
	return a.first, a.last
}

func (a *SpanAccumulator) add(first, last int) {
	if a.IsEmpty() {
		a.first, a.last = first, last
		return
	}
	if first < a.first {
		a.first = first
	}
	if last > a.last {
		a.last = last
	}
}

// parseSpan converts "1:3" into its bounds.
func parseSpan(span string) (first, last int, ok bool) {
	parts := strings.SplitN(span, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	first, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	last, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	if first < 1 || first > last || last > excelize.MaxColumns {
		return 0, 0, false
	}
	return first, last, true
}

// parseDimensionRef returns the column bounds of a dimension reference
// such as "B2:D9" or "A1". Absolute markers ($) are ignored; columns past
// excelize.MaxColumns make the reference malformed.
func parseDimensionRef(ref string) (first, last int, ok bool) {
	ref = strings.ReplaceAll(ref, "$", "")
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return 0, 0, false
	}
	first = ColumnIndex(parts[0])
	last = first
	if len(parts) == 2 {
		last = ColumnIndex(parts[1])
	}
	if first == 0 || last == 0 || first > last {
		return 0, 0, false
	}
	return first, last, true
}
