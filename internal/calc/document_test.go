package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

// newTestDocument returns an initialized, empty unit-test document.
func newTestDocument(t *testing.T, env map[string]string) *Document {
	t.Helper()
	shell := NewEngine(WithGetenv(envOf(env))).NewDocShell(TestFlags)
	require.NoError(t, shell.InitUnitTest())
	t.Cleanup(func() { _ = shell.Close() })
	return shell.Document()
}

func populateColumnA(t *testing.T, d *Document) {
	t.Helper()
	require.NoError(t, d.InsertTab(0, "Sheet1"))
	for row, v := range []float64{1, 2, 3} {
		require.NoError(t, d.SetValue(Address{Col: 0, Row: row, Tab: 0}, v))
	}
}

var b1 = Address{Col: 1, Row: 0, Tab: 0}

func TestDocument_SumScenario(t *testing.T) {
	d := newTestDocument(t, nil)
	populateColumnA(t, d)

	require.NoError(t, d.SetFormula(b1, "=SUM(A1:A3)", GrammarEnglish))
	require.NoError(t, d.CalcAll())

	v, err := d.GetValue(b1)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)

	f, ok := d.Formula(b1)
	assert.True(t, ok)
	assert.Equal(t, "=SUM(A1:A3)", f)
}

func TestDocument_StaleReads(t *testing.T) {
	d := newTestDocument(t, nil)
	populateColumnA(t, d)
	require.NoError(t, d.SetFormula(b1, "=SUM(A1:A3)", GrammarEnglish))

	_, err := d.GetValue(b1)
	assert.ErrorIs(t, err, ErrStaleValue, "no CalcAll yet")
	assert.True(t, d.IsDirty())

	require.NoError(t, d.CalcAll())
	assert.False(t, d.IsDirty())

	require.NoError(t, d.SetValue(Address{Col: 0, Row: 0, Tab: 0}, 10))
	_, err = d.GetValue(b1)
	assert.ErrorIs(t, err, ErrStaleValue, "mutated since CalcAll")

	require.NoError(t, d.CalcAll())
	v, err := d.GetValue(b1)
	require.NoError(t, err)
	assert.Equal(t, 15.0, v)
}

func TestDocument_ValueCellsReadWhileDirty(t *testing.T) {
	d := newTestDocument(t, nil)
	populateColumnA(t, d)

	v, err := d.GetValue(Address{Col: 0, Row: 1, Tab: 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = d.GetValue(Address{Col: 5, Row: 5, Tab: 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v, "empty cells read as zero")
}

func TestDocument_SetValueReplacesFormula(t *testing.T) {
	d := newTestDocument(t, nil)
	populateColumnA(t, d)
	require.NoError(t, d.SetFormula(b1, "=SUM(A1:A3)", GrammarEnglish))
	require.NoError(t, d.SetValue(b1, 42))

	_, ok := d.Formula(b1)
	assert.False(t, ok)

	v, err := d.GetValue(b1)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)
}

func TestDocument_InsertTab(t *testing.T) {
	d := newTestDocument(t, nil)
	assert.Equal(t, 0, d.TabCount())

	require.NoError(t, d.InsertTab(0, "Sheet1"))
	assert.ErrorIs(t, d.InsertTab(0, "Other"), ErrTabOccupied)
	assert.ErrorIs(t, d.InsertTab(5, "Other"), ErrTabIndex)
	assert.ErrorIs(t, d.InsertTab(-1, "Other"), ErrTabIndex)
	assert.ErrorIs(t, d.InsertTab(1, "sheet1"), ErrDuplicateTabName)
	assert.Error(t, d.InsertTab(1, ""))

	require.NoError(t, d.InsertTab(1, "Data"))
	assert.Equal(t, 2, d.TabCount())

	name, err := d.TabName(1)
	require.NoError(t, err)
	assert.Equal(t, "Data", name)

	_, err = d.TabName(2)
	assert.ErrorIs(t, err, ErrTabIndex)
}

func TestDocument_FirstTabMayUseAnyName(t *testing.T) {
	d := newTestDocument(t, nil)
	require.NoError(t, d.InsertTab(0, "Inputs"))
	require.NoError(t, d.SetValue(Address{Col: 0, Row: 0, Tab: 0}, 4))
	require.NoError(t, d.SetFormula(b1, "=A1*2", GrammarEnglish))
	require.NoError(t, d.CalcAll())

	v, err := d.GetValue(b1)
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
}

func TestDocument_CellOnMissingTab(t *testing.T) {
	d := newTestDocument(t, nil)
	assert.ErrorIs(t, d.SetValue(Address{Col: 0, Row: 0, Tab: 0}, 1), ErrTabIndex)
	assert.ErrorIs(t, d.SetFormula(b1, "=1", GrammarEnglish), ErrTabIndex)
}

func TestDocument_MalformedFormulas(t *testing.T) {
	d := newTestDocument(t, nil)
	require.NoError(t, d.InsertTab(0, "Sheet1"))

	for _, formula := range []string{"SUM(A1:A3)", "=", "  ", "=SUM(A1:A3"} {
		t.Run(formula, func(t *testing.T) {
			err := d.SetFormula(b1, formula, GrammarEnglish)
			var fe *FormulaError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, b1, fe.Cell)
		})
	}
	_, ok := d.Formula(b1)
	assert.False(t, ok)
}

func TestDocument_UnknownGrammar(t *testing.T) {
	d := newTestDocument(t, nil)
	require.NoError(t, d.InsertTab(0, "Sheet1"))

	var fe *FormulaError
	assert.ErrorAs(t, d.SetFormula(b1, "=1", Grammar(9)), &fe)
}

func TestDocument_EnglishGrammarIgnoresLocale(t *testing.T) {
	for _, locale := range []string{"de_DE.UTF-8", "fr_FR.UTF-8", "C", "en_US.UTF-8"} {
		t.Run(locale, func(t *testing.T) {
			d := newTestDocument(t, map[string]string{"LC_ALL": locale})
			populateColumnA(t, d)
			require.NoError(t, d.SetFormula(b1, "=SUM(A1:A3)", GrammarEnglish))
			require.NoError(t, d.CalcAll())

			v, err := d.GetValue(b1)
			require.NoError(t, err)
			assert.Equal(t, 6.0, v)
		})
	}
}

func TestDocument_NativeGrammarFollowsLocale(t *testing.T) {
	d := newTestDocument(t, map[string]string{"LANG": "de_DE.UTF-8"})
	populateColumnA(t, d)

	require.NoError(t, d.SetFormula(b1, "=SUM(A1;A2;0,5)", GrammarNative))
	f, _ := d.Formula(b1)
	assert.Equal(t, "=SUM(A1,A2,0.5)", f)

	require.NoError(t, d.CalcAll())
	v, err := d.GetValue(b1)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestDocument_NativeGrammarUnderEnglishLocale(t *testing.T) {
	d := newTestDocument(t, map[string]string{"LANG": "en_GB.UTF-8"})
	populateColumnA(t, d)

	require.NoError(t, d.SetFormula(b1, "=SUM(A1,A2,0.5)", GrammarNative))
	require.NoError(t, d.CalcAll())
	v, err := d.GetValue(b1)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestDocument_ClosedDocumentRejectsOperations(t *testing.T) {
	shell := NewEngine().NewDocShell(TestFlags)
	require.NoError(t, shell.InitUnitTest())
	d := shell.Document()
	populateColumnA(t, d)
	require.NoError(t, shell.Close())

	assert.ErrorIs(t, d.InsertTab(1, "Late"), ErrClosed)
	assert.ErrorIs(t, d.SetValue(b1, 1), ErrClosed)
	assert.ErrorIs(t, d.SetFormula(b1, "=1", GrammarEnglish), ErrClosed)
	assert.ErrorIs(t, d.CalcAll(), ErrClosed)
	_, err := d.GetValue(b1)
	assert.ErrorIs(t, err, ErrClosed)
}
