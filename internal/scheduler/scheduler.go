// Package scheduler implements the 100Hz cooperative super-loop (§4.6):
// receive drains, bus-failure ticking, and modulo-gated sub-rate transmit
// tasks, driven by a ticker goroutine in the ambient poller-runner style
// (internal/poller/runner.go's one-goroutine-per-loop Run method) rather
// than a bare-metal busy-wait on a hardware tick flag.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/archangelsys/afc004-iop/internal/arinc/codec"
	"github.com/archangelsys/afc004-iop/internal/arinc/rs422"
	"github.com/archangelsys/afc004-iop/internal/arinc/swver"
	"github.com/archangelsys/afc004-iop/internal/bootstrap"
	"github.com/archangelsys/afc004-iop/internal/gpio"
	"github.com/archangelsys/afc004-iop/internal/transceiver"
)

const tickInterval = 10 * time.Millisecond

// sub-rate divisors/offsets against the free-running 100Hz tick counter.
// The ~17Hz task's offset is fixed by §4.6 ("mod 12 == 2"); the others are
// reduced modulo their own divisor from the source phase offsets 0/7/2/3.
// The offsets do not keep the tasks apart: on tick 2, for instance, the
// 50Hz, 20Hz and ~17Hz tasks all run, in the order step lists them.
const (
	rate50Divisor = 2
	rate50Offset  = 0

	rate20Divisor = 5
	rate20Offset  = 2

	rate17Divisor = 12
	rate17Offset  = 2

	rate10Divisor = 10
	rate10Offset  = 3
)

// Scheduler owns the tick counter and drives one Core (§9: "process-wide
// statics -> owned state").
type Scheduler struct {
	core     *bootstrap.Core
	fault    gpio.FaultPin
	tick     uint64
}

// New builds a Scheduler bound to an already-assembled Core. It refuses to
// run if the core latched a boot fault (§4.10). fault may be nil, in which
// case the pin pulse is skipped (e.g. a target with no fault-output line
// wired).
func New(core *bootstrap.Core, fault gpio.FaultPin) *Scheduler {
	return &Scheduler{core: core, fault: fault}
}

// Run blocks until ctx is cancelled, advancing one tick every 10ms. If the
// core has a latched boot fault it idles instead of scheduling (matching
// the original firmware's fault-latch spin).
func (s *Scheduler) Run(ctx context.Context) {
	if !s.core.NoBootFault {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step()
		}
	}
}

// step runs exactly one 100Hz cycle (§4.6), pulsing the fault-output pin
// high for the duration of the cycle and low at the end (§6 boot contract).
func (s *Scheduler) step() {
	if s.fault != nil {
		_ = s.fault.High()
		defer func() { _ = s.fault.Low() }()
	}

	s.drainReceive()
	s.pollADCFrame()

	s.core.AHR.TickBusFailure()
	s.core.PFD.TickBusFailure()
	s.core.ADC.TickBusFailure()

	if s.tick%rate50Divisor == rate50Offset {
		s.task50Hz()
		s.drainReceive()
	}
	if s.tick%rate20Divisor == rate20Offset {
		s.task20Hz()
		s.drainReceive()
	}
	if s.tick%rate17Divisor == rate17Offset {
		s.task17Hz()
		s.drainReceive()
	}
	if s.tick%rate10Divisor == rate10Offset {
		s.task10Hz()
		s.drainReceive()
	}

	s.tick++
}

func (s *Scheduler) drainReceive() {
	s.core.AHR.Drain(transceiver.Rx1Reader{Ch: s.core.ChannelA})
	s.core.PFD.Drain(transceiver.Rx1Reader{Ch: s.core.ChannelB})
}

// pollADCFrame checks for a buffered ADC computed-data/status frame and, if
// one is ready, unpacks it into the ADC group the same way process_received
// treats a transceiver-sourced word (§4.8).
func (s *Scheduler) pollADCFrame() {
	if !s.core.ADCFramer.DataReady() {
		return
	}
	frame, err := s.core.ADCFramer.ReadFrame(s.core.ADCComputedFrameLen)
	if err != nil {
		return
	}
	words, err := rs422.ExtractARINCWords(frame)
	if err != nil {
		return
	}
	for _, w := range words {
		_ = s.core.ADC.ProcessReceived(w)
	}
}

// transmit encodes and sends a derived word. A clipped-but-valid encode
// (codec.ErrSentDataClipped) still carries a usable word and is sent; any
// other encode error drops the word for this cycle.
func transmit(ch transceiver.Channel, msg codec.TxMsg) {
	res, err := codec.Encode(msg)
	if err != nil && !errors.Is(err, codec.ErrSentDataClipped) {
		return
	}
	_ = ch.Transmit(res.Word)
}

// task50Hz transmits the AHRS derived words plus the AHR/ADC pass-through
// sets, per §4.6's 50Hz row.
func (s *Scheduler) task50Hz() {
	transmit(s.core.ChannelB, s.core.Engine.TurnRate())
	transmit(s.core.ChannelB, s.core.Engine.SlipAngle())
	transmit(s.core.ChannelB, s.core.Engine.NewMagHeading())
	transmit(s.core.ChannelB, s.core.Engine.NewPitch())
	transmit(s.core.ChannelB, s.core.Engine.NewRoll())
	transmit(s.core.ChannelB, s.core.Engine.BodyLatAccel())
	transmit(s.core.ChannelB, s.core.Engine.NormalAccel())

	for _, octal := range []int{326, 327, 330, 331} {
		if word, ok := s.core.AHR.GetLatestWord(octal); ok {
			_ = s.core.ChannelB.Transmit(word)
		}
	}
	for _, octal := range bootstrap.ADC50HzOctals() {
		if word, ok := s.core.ADC.GetLatestWord(octal); ok {
			_ = s.core.ChannelA.Transmit(word)
		}
	}
}

// task20Hz transmits the AHRS status words and the ADC reply frame, per
// §4.6's 20Hz row and §4.8's reply construction.
func (s *Scheduler) task20Hz() {
	adcTimeout := s.core.ADC.Snapshot().HasBusFailed

	transmit(s.core.ChannelB, s.core.Engine.AhrsStatus272(adcTimeout))
	transmit(s.core.ChannelB, s.core.Engine.AhrsStatus274(adcTimeout))
	transmit(s.core.ChannelB, s.core.Engine.AhrsStatus275())

	s.sendADCReply()
}

func (s *Scheduler) sendADCReply() {
	status271 := rs422.Status271Failure
	if word, ok := s.core.PFD.GetLatestWord(271); ok {
		status271 = word
	}
	baro := s.core.Engine.BaroCorrection()
	baroRes, err := codec.Encode(baro)
	baroRaw := uint32(0)
	if err == nil || errors.Is(err, codec.ErrSentDataClipped) {
		baroRaw = baroRes.Word
	}

	reply := rs422.PackARINCWords([]uint32{
		rs422.GNSSAltNCD,
		rs422.VDOPNCD,
		rs422.VFOMNCD,
		baroRaw,
		status271,
	})
	_ = s.core.ADCFramer.WriteFrame(reply)
}

// task17Hz relays the ADC pass-through label set to channel B, gated on
// baro-correction validity per §4.8.
func (s *Scheduler) task17Hz() {
	if !s.core.Engine.IsBaroCorrectionValid() {
		return
	}
	for _, octal := range bootstrap.ADCPassThroughOctals() {
		if word, ok := s.core.ADC.GetLatestWord(octal); ok {
			_ = s.core.ChannelB.Transmit(word)
		}
	}
}

// task10Hz emits the next software-version ARINC word to channel B, and
// during bring-up drives the two RS-422 version gatherers (§4.7).
func (s *Scheduler) task10Hz() {
	now := s.core.Clock.NowMs()

	if state, reply := s.core.ADCGatherer.Poll(now); state == swver.GatherDone && reply != nil {
		for i, b := range reply {
			if i >= 16 {
				break
			}
			_ = s.core.SWTable.SetSubsystemByte(1, i, b)
		}
	}
	if state, reply := s.core.PAOAGatherer.Poll(now); state == swver.GatherDone && reply != nil {
		for i, b := range reply {
			if i >= 16 {
				break
			}
			_ = s.core.SWTable.SetSubsystemByte(2, i, b)
		}
	}

	word := s.core.SWTable.NextWord(0)
	_ = s.core.ChannelB.Transmit(word)
}
