// Package output renders reader results as JSON.
package output

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/i-net-software/xlsxconnect-go/pkg/xlsxconnect/models"
)

// ToJSON serializes v, indented when pretty is set.
func ToJSON(v interface{}, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// RowsToJSON serializes rows as objects keyed by column name.
func RowsToJSON(columns []string, rows []models.Row, pretty bool) ([]byte, error) {
	return ToJSON(RowObjects(columns, rows), pretty)
}

// RowObjects converts rows to maps keyed by column name. Repeated names
// get a numeric suffix ("Name", "Name_2"). Times are rendered in RFC 3339.
func RowObjects(columns []string, rows []models.Row) []map[string]interface{} {
	columns = UniqueColumns(columns)
	result := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		obj := make(map[string]interface{}, len(columns))
		for i, name := range columns {
			var v interface{}
			if i < len(row.Values) {
				v = row.Values[i]
			}
			if t, ok := v.(time.Time); ok {
				v = t.Format(time.RFC3339)
			}
			obj[name] = v
		}
		result = append(result, obj)
	}
	return result
}

// WriteLines writes each row as one JSON object per line.
func WriteLines(w io.Writer, columns []string, rows []models.Row) error {
	enc := json.NewEncoder(w)
	for _, obj := range RowObjects(columns, rows) {
		if err := enc.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

// UniqueColumns returns columns with every repeated name suffixed by
// "_<n>", n counting occurrences from 2, skipping names already taken.
func UniqueColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	for _, name := range columns {
		seen[name] = false
	}
	unique := make([]string, len(columns))
	counts := make(map[string]int, len(columns))
	for i, name := range columns {
		if taken := seen[name]; !taken {
			seen[name] = true
			unique[i] = name
			continue
		}
		candidate := name
		for n := counts[name] + 2; ; n++ {
			candidate = name + "_" + strconv.Itoa(n)
			if _, exists := seen[candidate]; !exists {
				counts[name] = n - 1
				break
			}
		}
		seen[candidate] = true
		unique[i] = candidate
	}
	return unique
}
