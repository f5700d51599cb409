package system

import "desk-assistant/internal/models"

const (
	ActionShutdown  = models.ActionShutdown
	ActionRestart   = models.ActionRestart
	ActionSleep     = models.ActionSleep
	ActionLock      = models.ActionLock
	ActionLogoff    = "logoff"
	ActionHibernate = "hibernate"
)

// Status is a point-in-time resource snapshot.
type Status struct {
	OS          string  `json:"os"`
	Hostname    string  `json:"hostname"`
	CPUPercent  float64 `json:"cpu_percent"`
	RAMPercent  float64 `json:"ram_percent"`
	DiskPercent float64 `json:"disk_percent"`
	Uptime      uint64  `json:"uptime_seconds"`
}
