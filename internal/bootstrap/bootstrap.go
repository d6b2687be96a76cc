package bootstrap

import (
	"fmt"

	"github.com/archangelsys/afc004-iop/internal/arinc/clock"
	"github.com/archangelsys/afc004-iop/internal/arinc/derive"
	"github.com/archangelsys/afc004-iop/internal/arinc/filter"
	"github.com/archangelsys/afc004-iop/internal/arinc/group"
	"github.com/archangelsys/afc004-iop/internal/arinc/rs422"
	"github.com/archangelsys/afc004-iop/internal/arinc/swver"
	"github.com/archangelsys/afc004-iop/internal/arinc/label"
	"github.com/archangelsys/afc004-iop/internal/config"
	"github.com/archangelsys/afc004-iop/internal/transceiver"
)

// SelfTest is one pluggable boot-time check (RAM pattern, CRC-over-flash,
// or any other opaque pass/fail probe); the core never inspects how it
// decides.
type SelfTest struct {
	Name string
	Run  func() bool
}

// BootStep records the pass/fail outcome of one boot-sequence action, for
// the boot report (§4.11) and the NoBootFault gate (§4.10).
type BootStep struct {
	Name   string
	Passed bool
}

// versionLink drives one request/reply round trip over the ADC RS-422 link
// without blocking the caller: send() writes the request and starts a
// single reader goroutine (never more than one in flight), pollReply()
// drains it non-blockingly. This is the concrete transport behind
// swver.Gatherer's send/pollReply hooks (§4.7).
type versionLink struct {
	framer  *rs422.Framer
	replies chan []byte
	reading bool
}

func newVersionLink(framer *rs422.Framer) *versionLink {
	return &versionLink{framer: framer, replies: make(chan []byte, 1)}
}

func (l *versionLink) sendFunc(reqFrame []byte, replyLen int) func() error {
	return func() error {
		if err := l.framer.WriteFrame(reqFrame); err != nil {
			return err
		}
		if !l.reading {
			l.reading = true
			go func() {
				b, err := l.framer.ReadFrame(replyLen)
				if err == nil {
					l.replies <- b
				}
			}()
		}
		return nil
	}
}

func (l *versionLink) pollReply() ([]byte, bool) {
	select {
	case b := <-l.replies:
		l.reading = false
		return b, true
	default:
		return nil, false
	}
}

// versionRequestFrame builds the 7-byte version request the AFC004 sends
// down the ADC link for the given subsystem code; the exact byte layout is
// a bridge-protocol detail owned by this adapter, not part of the ARINC-429
// wire format.
func versionRequestFrame(subsystemCode uint8) []byte {
	return []byte{0xAA, subsystemCode, 0, 0, 0, 0, 0}
}

// Core is everything the scheduler needs, assembled once at startup and
// never reallocated (§5 memory discipline).
type Core struct {
	Clock clock.Source

	ChannelA transceiver.Channel
	ChannelB transceiver.Channel

	AHR *group.Group
	PFD *group.Group
	ADC *group.Group

	ADCFramer            *rs422.Framer
	ADCComputedFrameLen  int

	Engine *derive.Engine
	TxCfg  derive.TxLabels

	SWTable         *swver.Table
	adcVersionLink  *versionLink
	paoaVersionLink *versionLink
	ADCGatherer     *swver.Gatherer
	PAOAGatherer    *swver.Gatherer

	BootSteps   []BootStep
	NoBootFault bool
}

// Build runs the boot sequence (§4.10) and assembles a Core. selfTests is
// the pluggable opaque self-test set; chA/chB are the two ARINC-429
// transceiver channels; adcPort is the RS-422 link to the air data
// computer.
func Build(cfg *config.Config, clk clock.Source, chA, chB transceiver.Channel, adcPort rs422.Port, selfTests []SelfTest) (*Core, error) {
	c := &Core{Clock: clk, ChannelA: chA, ChannelB: chB}

	for _, st := range selfTests {
		c.BootSteps = append(c.BootSteps, BootStep{Name: st.Name, Passed: st.Run()})
	}

	c.BootSteps = append(c.BootSteps, BootStep{Name: "channel_a_loopback", Passed: chA.LoopbackTest()})
	c.BootSteps = append(c.BootSteps, BootStep{Name: "channel_b_loopback", Passed: chB.LoopbackTest()})

	ahrLabels := ahrsRxLabels()
	pfdLabels := pfdRxLabels()
	adcLabels := adcRxLabels()

	c.BootSteps = append(c.BootSteps, BootStep{Name: "channel_a_label_filter", Passed: chA.SetupLabelFilter(wireLabels(ahrLabels))})
	c.BootSteps = append(c.BootSteps, BootStep{Name: "channel_b_label_filter", Passed: chB.SetupLabelFilter(wireLabels(pfdLabels))})

	var err error
	c.AHR, err = group.New("ahr75", clk, groupThreshold(cfg, "ahr75", 200), ahrLabels)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: build ahr75 group: %w", err)
	}
	c.PFD, err = group.New("pfd", clk, groupThreshold(cfg, "pfd", 200), pfdLabels)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: build pfd group: %w", err)
	}
	c.ADC, err = group.New("adc", clk, groupThreshold(cfg, "adc", 500), adcLabels)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: build adc group: %w", err)
	}

	c.TxCfg = txLabels()

	diff := filter.NewDifferentiator(
		cfg.IOP.Differentiator.K1,
		cfg.IOP.Differentiator.SampleRateHz,
		cfg.IOP.Differentiator.UpperLimit,
		cfg.IOP.Differentiator.LowerLimit,
		cfg.IOP.Differentiator.UpperDelta,
		cfg.IOP.Differentiator.LowerDelta,
	)
	lp := filter.NewLowPass(cfg.IOP.Filter.K1, cfg.IOP.Filter.K2)
	c.Engine = derive.New(c.AHR, c.PFD, c.TxCfg, diff, lp)

	c.ADCFramer = rs422.New(adcPort)
	c.ADCComputedFrameLen = cfg.IOP.ADCLink.ComputedDataFrameLen
	if c.ADCComputedFrameLen == 0 {
		c.ADCComputedFrameLen = 20
	}
	c.SWTable = &swver.Table{}
	c.SWTable.SeedLocalCRC(cfg.IOP.CRCKey)

	c.adcVersionLink = newVersionLink(c.ADCFramer)
	c.paoaVersionLink = newVersionLink(c.ADCFramer)
	c.ADCGatherer = swver.NewGatherer(
		c.adcVersionLink.sendFunc(versionRequestFrame(0x16), rs422.SWVersionReplyLen),
		c.adcVersionLink.pollReply,
	)
	c.PAOAGatherer = swver.NewGatherer(
		c.paoaVersionLink.sendFunc(versionRequestFrame(0x17), rs422.SWVersionReplyLen),
		c.paoaVersionLink.pollReply,
	)

	c.NoBootFault = true
	for _, s := range c.BootSteps {
		if !s.Passed {
			c.NoBootFault = false
			break
		}
	}

	return c, nil
}

func groupThreshold(cfg *config.Config, name string, fallback uint32) uint32 {
	if v, ok := cfg.GroupOverride(name); ok {
		return v
	}
	return fallback
}

func wireLabels(cfgs []label.Config) []uint8 {
	out := make([]uint8, len(cfgs))
	for i, c := range cfgs {
		out[i] = c.Label
	}
	return out
}
