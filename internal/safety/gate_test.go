package safety

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desk-assistant/internal/common/config"
	"desk-assistant/internal/common/logger"
)

var descriptions = []string{"", "shutdown", "delete C:/ (approx 900 items)", "send WhatsApp message preview: hi", "ünïcode ✓"}

func TestRequireConfirmation_SimulationAlwaysRefuses(t *testing.T) {
	for _, confirmed := range []bool{false, true} {
		g := New(true, confirmed, logger.NewTestLogger(t))
		for _, d := range descriptions {
			assert.False(t, g.RequireConfirmation(d), "confirmed=%v desc=%q", confirmed, d)
		}
	}
}

func TestRequireConfirmation_LiveNeedsConfirm(t *testing.T) {
	g := New(false, false, logger.NewTestLogger(t))
	for _, d := range descriptions {
		assert.False(t, g.RequireConfirmation(d))
	}

	g.SetConfirmed(true)
	for _, d := range descriptions {
		assert.True(t, g.RequireConfirmation(d))
	}

	g.SetSimulation(true)
	assert.False(t, g.RequireConfirmation("shutdown"))
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name          string
		simulation    *string
		confirm       *string
		expectSim     bool
		expectConfirm bool
	}{
		{name: "defaults are fail-safe", expectSim: true, expectConfirm: false},
		{name: "simulation off", simulation: strPtr("false"), expectSim: false},
		{name: "simulation yes", simulation: strPtr(" YES "), expectSim: true},
		{name: "simulation garbage is false", simulation: strPtr("maybe"), expectSim: false},
		{name: "confirm ok", simulation: strPtr("0"), confirm: strPtr("ok"), expectConfirm: true},
		{name: "confirm y", confirm: strPtr("y"), expectSim: true, expectConfirm: true},
		{name: "confirm no", confirm: strPtr("no"), expectSim: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setOrUnset(t, EnvSimulationMode, tt.simulation)
			setOrUnset(t, EnvConfirm, tt.confirm)

			g := FromEnv(logger.NewNoOpLogger())
			assert.Equal(t, tt.expectSim, g.SimulationMode())
			assert.Equal(t, tt.expectConfirm, g.Confirmed())
		})
	}
}

func TestFromEnv_SimulationTrueIgnoresConfirm(t *testing.T) {
	t.Setenv(EnvSimulationMode, "true")
	t.Setenv(EnvConfirm, "yes")

	g := FromEnv(logger.NewNoOpLogger())
	assert.False(t, g.RequireConfirmation("restart"))
}

func TestFromSettings_LegacySimulateKey(t *testing.T) {
	setOrUnset(t, EnvSimulationMode, nil)
	off := false

	g := FromSettings(&config.Settings{Simulate: &off}, logger.NewNoOpLogger())
	assert.False(t, g.SimulationMode())

	t.Setenv(EnvSimulationMode, "1")
	g = FromSettings(&config.Settings{Simulate: &off}, logger.NewNoOpLogger())
	assert.True(t, g.SimulationMode())
}

func strPtr(s string) *string { return &s }

func setOrUnset(t *testing.T, key string, val *string) {
	t.Helper()
	if val != nil {
		t.Setenv(key, *val)
		return
	}
	// t.Setenv registers the restore; then clear for this test
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
