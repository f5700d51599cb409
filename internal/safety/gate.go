// Package safety is the single chokepoint deciding whether a destructive
// action may really run.
package safety

import (
	"sync/atomic"

	"desk-assistant/internal/common/config"
	"desk-assistant/internal/common/logger"
	"desk-assistant/internal/common/metrics"
)

const (
	EnvSimulationMode = config.EnvSimulationMode
	EnvConfirm        = config.EnvConfirm
)

// Checker is what handlers depend on.
type Checker interface {
	SimulationMode() bool
	Confirmed() bool
	RequireConfirmation(description string) bool
}

// Gate holds the simulation and confirmation flags. Both are safe for
// concurrent use; the zero value is NOT fail-safe, use New or FromEnv.
type Gate struct {
	simulation atomic.Bool
	confirmed  atomic.Bool
	logger     logger.Logger
}

func New(simulation, confirmed bool, log logger.Logger) *Gate {
	g := &Gate{logger: logger.Component(log, "safety")}
	g.simulation.Store(simulation)
	g.confirmed.Store(confirmed)
	return g
}

// FromEnv reads SIMULATION_MODE (default true) and CONFIRM (default false).
func FromEnv(log logger.Logger) *Gate {
	return New(config.EnvFlag(EnvSimulationMode, true), config.ConfirmFlag(), log)
}

// FromSettings honours the legacy "simulate" settings key when
// SIMULATION_MODE is unset.
func FromSettings(s *config.Settings, log logger.Logger) *Gate {
	return New(s.SimulationMode(), s.Confirmed(), log)
}

func (g *Gate) SimulationMode() bool { return g.simulation.Load() }

func (g *Gate) Confirmed() bool { return g.confirmed.Load() }

func (g *Gate) SetSimulation(on bool) { g.simulation.Store(on) }

func (g *Gate) SetConfirmed(on bool) { g.confirmed.Store(on) }

// RequireConfirmation returns true only when simulation is off and the
// action was explicitly confirmed. Simulation wins over confirmation.
func (g *Gate) RequireConfirmation(description string) bool {
	fields := map[string]interface{}{"action": description}
	if g.SimulationMode() {
		g.logger.Info("[SIMULATION] would perform action", fields)
		metrics.SafetyDecisions.WithLabelValues("simulated").Inc()
		return false
	}
	if !g.Confirmed() {
		g.logger.Warn("confirmation required, set CONFIRM=yes to proceed", fields)
		metrics.SafetyDecisions.WithLabelValues("unconfirmed").Inc()
		return false
	}
	g.logger.Info("confirmed destructive action", fields)
	metrics.SafetyDecisions.WithLabelValues("allowed").Inc()
	return true
}
