package calc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type formulaCell struct {
	text    string // English dialect, without leading '='
	grammar Grammar
	value   float64
	result  string
}

// Document is a grid of cells over an excelize workbook.
type Document struct {
	file   *excelize.File
	locale language.Tag

	// spare is the workbook's built-in first sheet until the first tab
	// claims it.
	spare string

	tabs     []string
	formulas map[Address]*formulaCell
	dirty    bool
	closed   bool
}

func newDocument(locale language.Tag) *Document {
	f := excelize.NewFile()
	return &Document{
		file:     f,
		locale:   locale,
		spare:    f.GetSheetName(0),
		formulas: make(map[Address]*formulaCell),
	}
}

// TabCount returns the number of sheets.
func (d *Document) TabCount() int {
	return len(d.tabs)
}

// TabName returns the name of the sheet at idx.
func (d *Document) TabName(idx int) (string, error) {
	if idx < 0 || idx >= len(d.tabs) {
		return "", fmt.Errorf("tab %d: %w", idx, ErrTabIndex)
	}
	return d.tabs[idx], nil
}

// InsertTab creates a sheet named name at idx. Only idx == TabCount() is
// free; any lower index is occupied.
func (d *Document) InsertTab(idx int, name string) error {
	if d.closed {
		return ErrClosed
	}
	name = norm.NFC.String(name)
	if name == "" {
		return fmt.Errorf("insert tab %d: empty name", idx)
	}
	if idx < 0 || idx > len(d.tabs) {
		return fmt.Errorf("insert tab %d: %w", idx, ErrTabIndex)
	}
	if idx < len(d.tabs) {
		return fmt.Errorf("insert tab %d %q: %w (holds %q)", idx, name, ErrTabOccupied, d.tabs[idx])
	}
	for _, existing := range d.tabs {
		if strings.EqualFold(existing, name) {
			return fmt.Errorf("insert tab %q: %w", name, ErrDuplicateTabName)
		}
	}

	if d.spare != "" {
		if name != d.spare {
			if err := d.file.SetSheetName(d.spare, name); err != nil {
				return fmt.Errorf("insert tab %q: %w", name, err)
			}
		}
		d.spare = ""
	} else if _, err := d.file.NewSheet(name); err != nil {
		return fmt.Errorf("insert tab %q: %w", name, err)
	}

	d.tabs = append(d.tabs, name)
	d.dirty = true
	return nil
}

func (d *Document) locate(addr Address) (sheet, cell string, err error) {
	if d.closed {
		return "", "", ErrClosed
	}
	if addr.Tab < 0 || addr.Tab >= len(d.tabs) {
		return "", "", fmt.Errorf("cell %s: %w", addr, ErrTabIndex)
	}
	cell, err = addr.CellName()
	if err != nil {
		return "", "", err
	}
	return d.tabs[addr.Tab], cell, nil
}

// SetValue stores a numeric literal, replacing any formula at addr.
func (d *Document) SetValue(addr Address, v float64) error {
	sheet, cell, err := d.locate(addr)
	if err != nil {
		return err
	}
	if _, ok := d.formulas[addr]; ok {
		if err := d.file.SetCellFormula(sheet, cell, ""); err != nil {
			return fmt.Errorf("set value %s: %w", addr, err)
		}
		delete(d.formulas, addr)
	}
	if err := d.file.SetCellFloat(sheet, cell, v, -1, 64); err != nil {
		return fmt.Errorf("set value %s: %w", addr, err)
	}
	d.dirty = true
	return nil
}

// SetFormula stores formula text written in grammar g. The text must
// start with '='. The formula is compiled now and evaluated by CalcAll.
func (d *Document) SetFormula(addr Address, formula string, g Grammar) error {
	sheet, cell, err := d.locate(addr)
	if err != nil {
		return err
	}

	text := norm.NFC.String(strings.TrimSpace(formula))
	if !strings.HasPrefix(text, "=") || len(text) == 1 {
		return &FormulaError{Cell: addr, Formula: formula, Reason: "formula must start with '=' and have a body"}
	}
	english, err := toEnglish(text, g, d.locale)
	if err != nil {
		return &FormulaError{Cell: addr, Formula: formula, Reason: err.Error()}
	}
	if reason := checkFormula(english); reason != "" {
		return &FormulaError{Cell: addr, Formula: formula, Reason: reason}
	}

	body := strings.TrimPrefix(english, "=")
	if err := d.file.SetCellFormula(sheet, cell, body); err != nil {
		return fmt.Errorf("set formula %s: %w", addr, err)
	}
	d.formulas[addr] = &formulaCell{text: body, grammar: g}
	d.dirty = true
	return nil
}

// checkFormula tokenizes English formula text and reports the first
// structural problem, or "" if none.
func checkFormula(formula string) string {
	depth := 0
	parser := efp.ExcelParser()
	for _, tok := range parser.Parse(formula) {
		switch {
		case tok.TType == efp.TokenTypeUnknown:
			return fmt.Sprintf("unexpected token %q", tok.TValue)
		case tok.TSubType == efp.TokenSubTypeStart &&
			(tok.TType == efp.TokenTypeFunction || tok.TType == efp.TokenTypeSubexpression):
			depth++
		case tok.TSubType == efp.TokenSubTypeStop &&
			(tok.TType == efp.TokenTypeFunction || tok.TType == efp.TokenTypeSubexpression):
			depth--
			if depth < 0 {
				return "unbalanced parentheses"
			}
		}
	}
	if depth != 0 {
		return "unbalanced parentheses"
	}
	return ""
}

// Formula returns the English text of the formula at addr, with '='.
func (d *Document) Formula(addr Address) (string, bool) {
	fc, ok := d.formulas[addr]
	if !ok {
		return "", false
	}
	return "=" + fc.text, true
}

// CalcAll recalculates every formula cell in the document, not only the
// dirty ones. Cells are evaluated in address order on the calling
// goroutine. The first evaluation failure stops the pass and is returned
// as a *CalcError; the document stays dirty.
func (d *Document) CalcAll() error {
	if d.closed {
		return ErrClosed
	}

	addrs := make([]Address, 0, len(d.formulas))
	for addr := range d.formulas {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].less(addrs[j]) })

	for _, addr := range addrs {
		sheet, cell, err := d.locate(addr)
		if err != nil {
			return err
		}
		raw, err := d.file.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return &CalcError{Cell: addr, Err: err}
		}
		fc := d.formulas[addr]
		fc.result = raw
		fc.value = numericValue(raw)
	}

	d.dirty = false
	return nil
}

// GetValue returns the numeric value at addr. Empty and text cells read
// as 0. Formula cells require a CalcAll after the last mutation.
func (d *Document) GetValue(addr Address) (float64, error) {
	sheet, cell, err := d.locate(addr)
	if err != nil {
		return 0, err
	}
	if fc, ok := d.formulas[addr]; ok {
		if d.dirty {
			return 0, fmt.Errorf("read %s: %w", addr, ErrStaleValue)
		}
		return fc.value, nil
	}
	raw, err := d.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", addr, err)
	}
	return numericValue(raw), nil
}

// IsDirty reports whether formula values are out of date.
func (d *Document) IsDirty() bool {
	return d.dirty
}

func numericValue(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

func (d *Document) close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	d.formulas = nil
	return d.file.Close()
}
