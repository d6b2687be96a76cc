// Package diagnostics implements the ambient telemetry/history/fault-email
// sinks of §4.9: a goroutine independent of the scheduler samples each
// RxGroup's health, stamps it with a stable device identifier, and
// publishes it over MQTT (with optional MySQL history and a one-shot
// emailed fault report). It never touches scheduler state beyond the
// read-only Snapshot() accessor every group already exposes.
package diagnostics

import (
	"github.com/archangelsys/afc004-iop/internal/arinc/group"
)

// GroupHealth is the per-group slice of a HealthSnapshot.
type GroupHealth struct {
	Name           string
	HasBusFailed   bool
	CurrentCounts  uint32
	ParityDiscards uint64
	StaleLabels    []uint8
}

// HealthSnapshot is the compact, publishable view of the whole processor's
// health at one instant (§4.9, §6 Port: Telemetry sink).
type HealthSnapshot struct {
	DeviceID  string
	TimeMs    uint32
	Groups    []GroupHealth
	BootFault bool
}

// fromGroup converts a group.Health accessor result into GroupHealth.
func fromGroup(h group.Health) GroupHealth {
	return GroupHealth{
		Name:           h.Name,
		HasBusFailed:   h.HasBusFailed,
		CurrentCounts:  h.CurrentCounts,
		ParityDiscards: h.ParityDiscards,
		StaleLabels:    h.StaleLabels,
	}
}

// Sample builds a HealthSnapshot from the live groups, guarded by the same
// per-group mutex the scheduler's Drain/ProcessReceived use (Snapshot is
// safe to call from any goroutine).
func Sample(deviceID string, nowMs uint32, bootFault bool, groups ...*group.Group) HealthSnapshot {
	snap := HealthSnapshot{DeviceID: deviceID, TimeMs: nowMs, BootFault: bootFault}
	for _, g := range groups {
		snap.Groups = append(snap.Groups, fromGroup(g.Snapshot()))
	}
	return snap
}
