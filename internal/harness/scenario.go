package harness

import (
	"fmt"
	"io"

	"github.com/roach88/calcharness/internal/calc"
)

// The fixed scenario: A1..A3 hold 1, 2, 3 and B1 sums them.
const (
	ScenarioTab     = "Sheet1"
	ScenarioFormula = "=SUM(A1:A3)"
	ExpectedValue   = 6.0
)

// ScenarioInputs are the literal values written to column A, top down.
var ScenarioInputs = []float64{1, 2, 3}

// FormulaCell is B1.
var FormulaCell = calc.Address{Col: 1, Row: 0, Tab: 0}

// RunScenario populates doc, recalculates it in full and returns B1.
// It does not judge the value.
func RunScenario(doc Document) (float64, error) {
	return runScenario(doc, nil)
}

func runScenario(doc Document, lc *Lifecycle) (float64, error) {
	if err := doc.InsertTab(0, ScenarioTab); err != nil {
		return 0, fmt.Errorf("insert tab: %w", err)
	}
	for row, v := range ScenarioInputs {
		addr := calc.Address{Col: 0, Row: row, Tab: 0}
		if err := doc.SetValue(addr, v); err != nil {
			return 0, fmt.Errorf("set value %s: %w", addr, err)
		}
	}
	// The grammar tag keeps parsing independent of the process locale.
	if err := doc.SetFormula(FormulaCell, ScenarioFormula, calc.GrammarEnglish); err != nil {
		return 0, fmt.Errorf("set formula: %w", err)
	}
	_ = lc.Advance(StatePopulatedUninitializedFormulas, fmt.Sprintf("A1:A%d + B1", len(ScenarioInputs)))

	if err := doc.CalcAll(); err != nil {
		return 0, fmt.Errorf("calc all: %w", err)
	}
	_ = lc.Advance(StateRecalculated, "")

	v, err := doc.GetValue(FormulaCell)
	if err != nil {
		return 0, fmt.Errorf("get value: %w", err)
	}
	return v, nil
}

// Report writes the single result line.
func Report(w io.Writer, v float64) error {
	_, err := fmt.Fprintf(w, "Result: %.2f\n", v)
	return err
}
