// Package models defines data structures returned by the spreadsheet package reader.
package models

// Row represents one worksheet row aligned to the sheet's column range.
type Row struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// Values holds one entry per column; nil marks a missing or empty cell.
	Values []interface{} `json:"values"`
}
