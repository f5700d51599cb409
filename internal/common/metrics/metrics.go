// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_commands_total",
			Help: "Total number of commands executed, by handler and outcome",
		},
		[]string{"handler", "ok"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_command_duration_seconds",
			Help: "Duration of command execution in seconds",
		},
		[]string{"handler"},
	)

	RemindersFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_reminders_fired_total",
			Help: "Total number of reminders promoted from pending to done",
		},
	)

	SafetyDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_safety_decisions_total",
			Help: "Safety gate decisions by outcome (simulated, unconfirmed, allowed)",
		},
		[]string{"decision"},
	)
)
