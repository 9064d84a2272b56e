package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestInitGraphics_HeadlessBackend(t *testing.T) {
	g := NewGraphics(envMap(map[string]string{
		"SAL_USE_VCLPLUGIN":          "svp",
		"SAL_DISABLE_PRINTERLIST":    "1",
		"SAL_DISABLE_DEFAULTPRINTER": "1",
		"SAL_NO_FONT_LOOKUP":         "1",
	}), nil)

	require.NoError(t, g.InitGraphics())
	assert.True(t, g.Initialized())
	assert.Equal(t, GraphicsSettings{Backend: "svp"}, g.Settings())
}

func TestInitGraphics_HeadlessModeForcesSVP(t *testing.T) {
	g := NewGraphics(envMap(map[string]string{"SAL_USE_VCLPLUGIN": "gtk3"}), nil)
	g.EnableHeadlessMode(false)

	require.NoError(t, g.InitGraphics())
	s := g.Settings()
	assert.Equal(t, "svp", s.Backend)
	assert.True(t, s.Headless)
	assert.True(t, s.PrinterList, "printer queries stay enabled unless disabled by env")
	assert.True(t, s.FontLookup)
}

func TestInitGraphics_ConsoleOnlyDisablesDevices(t *testing.T) {
	g := NewGraphics(envMap(nil), nil)
	g.EnableHeadlessMode(true)

	require.NoError(t, g.InitGraphics())
	s := g.Settings()
	assert.True(t, s.ConsoleOnly)
	assert.False(t, s.PrinterList)
	assert.False(t, s.DefaultPrinter)
	assert.False(t, s.FontLookup)
}

func TestInitGraphics_DisplayBackends(t *testing.T) {
	g := NewGraphics(envMap(map[string]string{"SAL_USE_VCLPLUGIN": "gen"}), nil)
	assert.ErrorIs(t, g.InitGraphics(), ErrNoDisplay)
	assert.False(t, g.Initialized())

	g = NewGraphics(envMap(map[string]string{"SAL_USE_VCLPLUGIN": "qt6", "WAYLAND_DISPLAY": "wayland-0"}), nil)
	assert.NoError(t, g.InitGraphics())

	g = NewGraphics(envMap(map[string]string{"DISPLAY": ":0"}), nil)
	require.NoError(t, g.InitGraphics())
	assert.Equal(t, DefaultBackend, g.Settings().Backend)
}

func TestInitGraphics_UnknownBackend(t *testing.T) {
	g := NewGraphics(envMap(map[string]string{"SAL_USE_VCLPLUGIN": "win"}), nil)
	assert.ErrorIs(t, g.InitGraphics(), ErrUnknownBackend)
}

func TestInitGraphics_Idempotent(t *testing.T) {
	env := map[string]string{"SAL_USE_VCLPLUGIN": "svp"}
	g := NewGraphics(envMap(env), nil)
	require.NoError(t, g.InitGraphics())

	env["SAL_USE_VCLPLUGIN"] = "win"
	assert.NoError(t, g.InitGraphics())
	assert.Equal(t, "svp", g.Settings().Backend)
}
