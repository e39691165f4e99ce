package parser

import (
	"strings"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
)

var (
	timeTokens = []string{"h", "h:m", "m:s", "s"}
	dateTokens = []string{"y", "d"}
	// minuteTokens use "m" as minutes; they are removed before looking for a month "m".
	minuteTokens = []string{"h:mm", "h:m", "mm:s", "m:s", "am/pm"}
)

// ClassifyFormat maps a number format code to the value type it renders.
// Quoted literals and backslash-escaped characters are not format symbols.
// Blank or malformed codes are VARCHAR.
func ClassifyFormat(code string) models.ValueType {
	if strings.TrimSpace(code) == "" {
		return models.TypeVarchar
	}
	code = strings.ToLower(code)
	if countUnescapedQuotes(code)%2 != 0 {
		return models.TypeVarchar
	}

	hasTime := containsAnyUnescaped(code, timeTokens)
	hasDate := containsAnyUnescaped(code, dateTokens)
	if !hasDate {
		reduced := code
		for _, token := range minuteTokens {
			reduced = strings.ReplaceAll(reduced, token, "")
		}
		hasDate = containsUnescaped(reduced, "m")
	}

	switch {
	case hasTime && hasDate:
		return models.TypeTimestamp
	case hasTime:
		return models.TypeTime
	case hasDate:
		return models.TypeDate
	default:
		return models.TypeVarchar
	}
}

func containsAnyUnescaped(code string, tokens []string) bool {
	for _, token := range tokens {
		if containsUnescaped(code, token) {
			return true
		}
	}
	return false
}

// containsUnescaped reports whether token occurs at a position that is
// neither inside a quoted literal nor escaped by a backslash.
func containsUnescaped(code, token string) bool {
	from := 0
	for from < len(code) {
		i := strings.Index(code[from:], token)
		if i < 0 {
			return false
		}
		pos := from + i
		if !isEscaped(code, pos) {
			return true
		}
		from = pos + 1
	}
	return false
}

func isEscaped(code string, pos int) bool {
	if countUnescapedQuotes(code[:pos])%2 != 0 {
		return true
	}
	return precedingBackslashes(code, pos)%2 != 0
}

func countUnescapedQuotes(code string) int {
	count := 0
	for i := 0; i < len(code); i++ {
		if code[i] == '"' && precedingBackslashes(code, i)%2 == 0 {
			count++
		}
	}
	return count
}

// precedingBackslashes counts the run of backslashes directly before pos.
func precedingBackslashes(code string, pos int) int {
	n := 0
	for i := pos - 1; i >= 0 && code[i] == '\\'; i-- {
		n++
	}
	return n
}
