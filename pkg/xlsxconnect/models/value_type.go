package models

// ValueType is the semantic type a number format assigns to a cell value.
type ValueType string

const (
	// TypeVarchar is plain text or a number without date/time meaning.
	TypeVarchar ValueType = "VARCHAR"
	// TypeDate is a calendar date.
	TypeDate ValueType = "DATE"
	// TypeTime is a time of day.
	TypeTime ValueType = "TIME"
	// TypeTimestamp is a date combined with a time of day.
	TypeTimestamp ValueType = "TIMESTAMP"
)

// IsTemporal reports whether values of this type are date serials.
func (t ValueType) IsTemporal() bool {
	return t == TypeDate || t == TypeTime || t == TypeTimestamp
}
