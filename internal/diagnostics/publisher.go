package diagnostics

import (
	"context"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/archangelsys/afc004-iop/internal/arinc/clock"
	"github.com/archangelsys/afc004-iop/internal/arinc/group"
)

// DeviceID returns a stable per-unit identifier: the configured override
// when one is set, otherwise the platform machine id, or "unknown-device"
// when the machine-id call fails (e.g. running in a container without
// /etc/machine-id), grounded on the reference pack's
// pkg/l1/env/machineid.go wrapper.
func DeviceID(configured string) string {
	if configured != "" {
		return configured
	}
	id, err := machineid.ID()
	if err != nil {
		glog.Warningf("diagnostics: machine id unavailable, using fallback: %v", err)
		return "unknown-device"
	}
	return id
}

// Publisher runs the sampling goroutine of §4.9: on a fixed interval it
// takes a read-only Snapshot() of each configured group, publishes it, and
// optionally records it to history. It never mutates group or scheduler
// state.
type Publisher struct {
	deviceID string
	clk      clock.Source
	groups   []*group.Group
	interval time.Duration

	telemetry TelemetrySink
	history   HistorySink

	bootFault func() bool
}

// NewPublisher builds a Publisher. history may be nil to disable history
// recording.
func NewPublisher(deviceID string, clk clock.Source, interval time.Duration, telemetry TelemetrySink, history HistorySink, bootFault func() bool, groups ...*group.Group) *Publisher {
	if telemetry == nil {
		telemetry = NoopSink{}
	}
	return &Publisher{
		deviceID:  deviceID,
		clk:       clk,
		groups:    groups,
		interval:  interval,
		telemetry: telemetry,
		history:   history,
		bootFault: bootFault,
	}
}

// Run blocks until ctx is cancelled, sampling and publishing on Publisher's
// interval. A publish or history-record failure is logged and dropped,
// never retried synchronously (§7 ambient error policy).
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.publishOnce()
		}
	}
}

func (p *Publisher) publishOnce() {
	fault := false
	if p.bootFault != nil {
		fault = p.bootFault()
	}
	snap := Sample(p.deviceID, p.clk.NowMs(), fault, p.groups...)

	if err := p.telemetry.Publish(snap); err != nil {
		glog.Warningf("diagnostics: publish failed: %v", err)
	}
	if p.history != nil {
		if err := p.history.Record(snap); err != nil {
			glog.Warningf("diagnostics: history record failed: %v", err)
		}
	}
}
