package calc

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Address is a zero-based cell coordinate.
type Address struct {
	Col int
	Row int
	Tab int
}

// CellName returns the A1-style name within the tab, e.g. (1,0,0) -> "B1".
func (a Address) CellName() (string, error) {
	if a.Col < 0 || a.Row < 0 {
		return "", fmt.Errorf("invalid address %s", a)
	}
	return excelize.CoordinatesToCellName(a.Col+1, a.Row+1)
}

func (a Address) String() string {
	return fmt.Sprintf("(%d,%d,%d)", a.Col, a.Row, a.Tab)
}

// less orders addresses by tab, row, then column.
func (a Address) less(b Address) bool {
	if a.Tab != b.Tab {
		return a.Tab < b.Tab
	}
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Col < b.Col
}
