// Package maintenance implements the Level-D interactive operator shell of
// §4.10: entered instead of (or alongside) the normal scheduler when the
// strap-pin word selects maintenance mode. It exposes read-only inspection
// of group state and the software-version gather state, plus a manual trigger for
// the boot report and fault email, grounded on the reference pack's
// ishell-backed shell (pkg/cli/sh/shell.go) and command-registration style
// (pkg/cli/cmds/joystick, pkg/cli/cmds/nav2d/commands.go).
package maintenance

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"github.com/archangelsys/afc004-iop/internal/arinc/group"
	"github.com/archangelsys/afc004-iop/internal/arinc/swver"
	"github.com/archangelsys/afc004-iop/internal/bootstrap"
	"github.com/archangelsys/afc004-iop/internal/diagnostics"
)

const shellKey = "$core"

// ReportTrigger generates the boot report and, on a latched fault, sends
// the fault email; wired to the "report" command.
type ReportTrigger interface {
	TriggerBootReport(reason string) error
}

// Shell is the ishell-backed maintenance console. It never mutates Core
// state; every command reads through the same Snapshot()/GetLatest()
// accessors the scheduler and diagnostics publisher use.
type Shell struct {
	sh      *ishell.Shell
	core    *bootstrap.Core
	swTable *swver.Table
	trigger ReportTrigger
}

// New builds a Shell bound to core. trigger may be nil to disable the
// "report" command.
func New(core *bootstrap.Core, trigger ReportTrigger) *Shell {
	s := &Shell{sh: ishell.New(), core: core, swTable: core.SWTable, trigger: trigger}
	s.sh.Set(shellKey, s)
	s.sh.SetPrompt("afc004-iop (maint) > ")
	for _, cmd := range shellCommands() {
		s.sh.AddCmd(cmd)
	}
	return s
}

func shellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

func shellCommands() []*ishell.Cmd {
	return []*ishell.Cmd{
		&bootStatusCmd,
		&groupsCmd,
		&labelCmd,
		&versionsCmd,
		&reportCmd,
	}
}

// Run blocks running the interactive REPL until the operator exits.
func (s *Shell) Run() {
	s.sh.Run()
}

// Close stops the shell's readline loop.
func (s *Shell) Close() {
	s.sh.Close()
}

var bootStatusCmd = ishell.Cmd{
	Name: "boot-status",
	Help: "show pass/fail for every boot self-test and bring-up step",
	Func: func(c *ishell.Context) {
		s := shellFrom(c)
		c.Printf("no_boot_fault: %v\n", s.core.NoBootFault)
		for _, step := range s.core.BootSteps {
			status := "PASS"
			if !step.Passed {
				status = "FAIL"
			}
			c.Printf("  %-28s %s\n", step.Name, status)
		}
	},
}

var groupsCmd = ishell.Cmd{
	Name: "groups",
	Help: "show bus-failure and staleness health for each receive group",
	Func: func(c *ishell.Context) {
		s := shellFrom(c)
		for _, g := range []*group.Group{s.core.AHR, s.core.PFD, s.core.ADC} {
			if g == nil {
				continue
			}
			h := g.Snapshot()
			c.Printf("%-8s bus_failed=%-5v current_counts=%-4d parity_discards=%-6d stale=%v\n",
				h.Name, h.HasBusFailed, h.CurrentCounts, h.ParityDiscards, h.StaleLabels)
		}
	},
}

var labelCmd = ishell.Cmd{
	Name: "label",
	Help: "GROUP OCTAL - show the latest slot for one label (group: ahr|pfd|adc)",
	Func: func(c *ishell.Context) {
		s := shellFrom(c)
		if len(c.Args) != 2 {
			c.Err(fmt.Errorf("usage: label GROUP OCTAL"))
			return
		}
		g := s.groupByName(c.Args[0])
		if g == nil {
			c.Err(fmt.Errorf("unknown group %q", c.Args[0]))
			return
		}
		var octal int
		if _, err := fmt.Sscanf(c.Args[1], "%d", &octal); err != nil {
			c.Err(fmt.Errorf("bad octal label %q: %w", c.Args[1], err))
			return
		}
		slot, err := g.GetLatestByOctal(octal)
		if err != nil {
			c.Err(err)
			return
		}
		c.Printf("raw=%#08x sm=%v sdi=%d eng_float=%.4f eng_int=%d fresh=%v not_babbling=%v\n",
			slot.RawWord, slot.SM, slot.SDI, slot.EngFloat, slot.EngInt, slot.IsFresh, slot.IsNotBabbling)
	},
}

func (s *Shell) groupByName(name string) *group.Group {
	switch name {
	case "ahr", "ahr75":
		return s.core.AHR
	case "pfd":
		return s.core.PFD
	case "adc":
		return s.core.ADC
	}
	return nil
}

var versionsCmd = ishell.Cmd{
	Name: "versions",
	Help: "show the ADC and Pitot/AOA software-version gather state",
	Func: func(c *ishell.Context) {
		s := shellFrom(c)
		c.Printf("adc gather state:  %v\n", gatherStateName(s.core.ADCGatherer.State()))
		c.Printf("paoa gather state: %v\n", gatherStateName(s.core.PAOAGatherer.State()))
	},
}

func gatherStateName(st swver.GatherState) string {
	switch st {
	case swver.GatherPending:
		return "pending"
	case swver.GatherAwaitingReply:
		return "awaiting_reply"
	case swver.GatherDone:
		return "done"
	case swver.GatherFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var reportCmd = ishell.Cmd{
	Name: "report",
	Help: "REASON - regenerate the boot report and send the fault email",
	Func: func(c *ishell.Context) {
		s := shellFrom(c)
		if s.trigger == nil {
			c.Err(fmt.Errorf("no report trigger configured"))
			return
		}
		reason := "manual operator request"
		if len(c.Args) > 0 {
			reason = c.Args[0]
		}
		if err := s.trigger.TriggerBootReport(reason); err != nil {
			c.Err(err)
			return
		}
		c.Println("boot report generated")
	},
}

// HealthSnapshotNow builds a diagnostics.HealthSnapshot for the given groups
// by delegating to diagnostics.Sample, the same sampling call the
// diagnostics.Publisher makes.
func HealthSnapshotNow(deviceID string, nowMs uint32, bootFault bool, groups ...*group.Group) diagnostics.HealthSnapshot {
	return diagnostics.Sample(deviceID, nowMs, bootFault, groups...)
}
