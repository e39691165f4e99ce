package models

// SheetOrder selects how sheet names are ordered when listed.
type SheetOrder string

const (
	// SheetOrderDeclared keeps the order of <sheet> elements in the workbook part.
	SheetOrderDeclared SheetOrder = "declared"
	// SheetOrderPath sorts sheets by their resolved worksheet part path.
	SheetOrderPath SheetOrder = "path"
)

// Sheet describes a worksheet declared in the workbook part.
type Sheet struct {
	// Name is the display name.
	Name string `json:"name"`
	// Path is the worksheet part path inside the package.
	Path string `json:"path"`
}
