package bootreport

import (
	"fmt"

	"github.com/archangelsys/afc004-iop/internal/arinc/clock"
	"github.com/archangelsys/afc004-iop/internal/bootstrap"
	"github.com/archangelsys/afc004-iop/internal/diagnostics"
)

// Trigger implements maintenance.ReportTrigger: it renders a fresh boot
// report to outPath and, on a latched fault, forwards the same data to the
// fault reporter. It is the single place that owns the "regenerate on
// demand" path shared by cmd/iop's startup sequence and the maintenance
// shell's "report" command.
type Trigger struct {
	Core       *bootstrap.Core
	Clock      clock.Source
	DeviceID   string
	ProgramCRC uint32
	OutPath    string
	FaultSink  diagnostics.FaultReporter
}

// TriggerBootReport renders the report and, if the core has a latched boot
// fault, emails it via FaultSink (which may be diagnostics.NoopFaultReporter).
func (t *Trigger) TriggerBootReport(reason string) error {
	rep := Report{
		DeviceID:   t.DeviceID,
		ProgramCRC: t.ProgramCRC,
		BootSteps:  t.Core.BootSteps,
		Versions:   t.Core.SWTable.Snapshot(),
		Reason:     reason,
	}
	if err := Generate(rep, t.OutPath); err != nil {
		return fmt.Errorf("bootreport: trigger: %w", err)
	}
	if t.Core.NoBootFault || t.FaultSink == nil {
		return nil
	}
	snap := diagnostics.Sample(t.DeviceID, t.Clock.NowMs(), !t.Core.NoBootFault, t.Core.AHR, t.Core.PFD, t.Core.ADC)
	if err := t.FaultSink.SendFaultReport(reason, snap, rep.Versions); err != nil {
		return fmt.Errorf("bootreport: trigger: send fault report: %w", err)
	}
	return nil
}
