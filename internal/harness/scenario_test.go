package harness

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calcharness/internal/calc"
	"github.com/roach88/calcharness/internal/testutil"
)

func TestRunScenario_CallOrder(t *testing.T) {
	doc := &mockDocument{result: 6}

	v, err := RunScenario(doc)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
	assert.Equal(t, []string{
		"InsertTab",
		"SetValue", "SetValue", "SetValue",
		"SetFormula",
		"CalcAll",
		"GetValue",
	}, doc.calls)
}

func TestRunScenario_StopsAtFirstFailure(t *testing.T) {
	doc := &mockDocument{failOn: "SetFormula"}

	_, err := RunScenario(doc)
	require.ErrorIs(t, err, errInjected)
	assert.Contains(t, err.Error(), "set formula")
	assert.NotContains(t, doc.calls, "CalcAll")
}

func TestRunScenario_RealDocument(t *testing.T) {
	locales := map[string]map[string]string{
		"C":          nil,
		"de_DE":      {"LC_ALL": "de_DE.UTF-8"},
		"fr_FR LANG": {"LANG": "fr_FR.UTF-8"},
	}
	for name, vars := range locales {
		t.Run(name, func(t *testing.T) {
			e := calc.NewEngine(calc.WithGetenv(testutil.NewEnv(vars).Getenv))
			shell := e.NewDocShell(calc.TestFlags)
			require.NoError(t, shell.InitUnitTest())
			t.Cleanup(func() { _ = shell.Close() })

			v, err := RunScenario(shell.Document())
			require.NoError(t, err)
			assert.Equal(t, ExpectedValue, v)

			tab, err := shell.Document().TabName(0)
			require.NoError(t, err)
			assert.Equal(t, ScenarioTab, tab)
		})
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, 6))
	assert.Equal(t, "Result: 6.00\n", buf.String())

	buf.Reset()
	require.NoError(t, Report(&buf, 1.0/3))
	assert.Equal(t, "Result: 0.33\n", buf.String())
}
