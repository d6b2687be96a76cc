// Package derive is the derived-word engine (§4.5): it reads received
// labels from the AHR and PFD groups, runs the filters and spool protocol,
// and composes outgoing ARINC-429 words. Grounded on
// calculateNewARINCLabels.c function-by-function; bit masks and base words
// for the AHRS status words are copied exactly.
package derive

import (
	"math"

	"github.com/archangelsys/afc004-iop/internal/arinc/codec"
	"github.com/archangelsys/afc004-iop/internal/arinc/filter"
	"github.com/archangelsys/afc004-iop/internal/arinc/group"
	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

const (
	ahrsStatusSDISSMMask uint32 = 0x60000300
	ahrsBit25Set         uint32 = 0x2000000
	label271MSUFailMask  uint32 = 0x400
	label270CalMask      uint32 = 0x400
	discSSMFailMask      uint32 = 0x60000000

	base272 uint32 = 0x0000005D
	base274 uint32 = 0x0000003D
	base275 uint32 = 0x000040BD
)

// TxLabels holds the Eclipse-specific label configs used to encode outgoing
// derived words, distinct from the (Archangel) configs used to receive the
// source labels.
type TxLabels struct {
	TurnRate      label.Config // 340
	SlipAngle     label.Config // 250
	MagHeading    label.Config // 320 (12-bit Eclipse form)
	Pitch         label.Config // 324 (13-bit Eclipse form)
	Roll          label.Config // 325 (12-bit Eclipse form)
	BodyLatAccel  label.Config // 332 (same width as RX)
	NormalAccel   label.Config // 333, valid range -3..+5
	BaroCorr      label.Config // 235 BCD
	Status272     label.Config // 272 discrete, unused fields
	Status274     label.Config // 274 discrete
	Status275     label.Config // 275 discrete
}

// Engine holds the filter/spool state that persists across scheduler ticks
// for the rate-based calculators (data model: "Process-wide statics ->
// owned state").
type Engine struct {
	ahr *group.Group
	pfd *group.Group
	tx  TxLabels

	turnRateDiff  *filter.Differentiator
	turnRateSpool filter.Spool

	normAccelFilt  *filter.LowPass
	slipAngleSpool filter.Spool
}

// New builds an Engine bound to the given AHR/PFD groups.
func New(ahr, pfd *group.Group, tx TxLabels, diff *filter.Differentiator, lp *filter.LowPass) *Engine {
	return &Engine{
		ahr:           ahr,
		pfd:           pfd,
		tx:            tx,
		turnRateDiff:  diff,
		normAccelFilt: lp,
	}
}

func degrees(rad float64) float64 { return rad * 180.0 / math.Pi }

// TurnRate implements turn_rate(): differentiate magnetic heading (label
// 320) with the spool protocol, per calculateNewARINCLabels.c
// CalculateTurnRate.
func (e *Engine) TurnRate() codec.TxMsg {
	hdg, err := e.ahr.GetLatestByOctal(320)
	valid := err == nil && hdg.IsFresh && hdg.IsNotBabbling && hdg.SM == codec.BnrNormalOperation

	msg := codec.TxMsg{Config: e.tx.TurnRate, SDI: hdg.SDI}

	if !valid {
		e.turnRateSpool.Invalidate()
		e.turnRateDiff.Reset()
		msg.EngValue = e.turnRateDiff.LastOutput()
		msg.SM = codec.BnrFailureWarning
		return msg
	}

	first := e.turnRateSpool.Advance()
	if first {
		e.turnRateDiff.Preload(hdg.EngFloat)
		msg.EngValue = 0
		msg.SM = codec.BnrFailureWarning
		return msg
	}

	out := e.turnRateDiff.Step(hdg.EngFloat)
	msg.EngValue = out
	if e.turnRateSpool.Good {
		msg.SM = codec.CheckBNRValidity(out, e.tx.TurnRate)
	} else {
		msg.SM = codec.BnrFailureWarning
	}
	return msg
}

// SlipAngle implements slip_angle(): arctan2(-aY, filt(aZ)+1) with the
// spool protocol driven by aZ, per CalculateSlipAngle. aY (label 332) must
// be independently valid regardless of the filter's spool state.
func (e *Engine) SlipAngle() codec.TxMsg {
	ay, ayErr := e.ahr.GetLatestByOctal(332)
	az, azErr := e.ahr.GetLatestByOctal(333)

	ayValid := ayErr == nil && ay.IsFresh && ay.IsNotBabbling && ay.SM == codec.BnrNormalOperation
	azValid := azErr == nil && az.IsFresh && az.IsNotBabbling && az.SM == codec.BnrNormalOperation

	msg := codec.TxMsg{Config: e.tx.SlipAngle, SDI: az.SDI}

	if !azValid {
		e.slipAngleSpool.Invalidate()
		e.normAccelFilt.Reset()
		msg.SM = codec.BnrFailureWarning
		return msg
	}

	first := e.slipAngleSpool.Advance()
	if first {
		e.normAccelFilt.Preload(az.EngFloat)
		msg.EngValue = 0
		msg.SM = codec.BnrFailureWarning
		return msg
	}

	filteredAZ := e.normAccelFilt.Step(az.EngFloat)
	msg.EngValue = degrees(math.Atan2(-ay.EngFloat, filteredAZ+1.0))

	switch {
	case !ayValid:
		msg.SM = codec.BnrFailureWarning
	case !e.slipAngleSpool.Good:
		msg.SM = codec.BnrFailureWarning
	default:
		msg.SM = codec.CheckBNRValidity(msg.EngValue, e.tx.SlipAngle)
	}
	return msg
}

// NewMagHeading implements new_mag_heading(): copy label 320's value,
// forcing FailureWarning if 271's MSU-fail bit is set.
func (e *Engine) NewMagHeading() codec.TxMsg {
	hdg, hdgErr := e.ahr.GetLatestByOctal(320)
	st271, st271Err := e.ahr.GetLatestByOctal(271)

	msg := codec.TxMsg{Config: e.tx.MagHeading, SDI: hdg.SDI, EngValue: hdg.EngFloat}
	if hdgErr != nil || !hdg.IsFresh || !hdg.IsNotBabbling {
		msg.SM = codec.BnrFailureWarning
		return msg
	}
	msg.SM = hdg.SM
	if st271Err == nil && st271.RawWord&label271MSUFailMask != 0 {
		msg.SM = codec.BnrFailureWarning
	}
	return msg
}

// copyThrough is the shared shape of new_pitch/new_roll: pass through
// engineering value and SM if fresh and not babbling, else FailureWarning.
func copyThrough(g *group.Group, octal int, cfg label.Config) codec.TxMsg {
	s, err := g.GetLatestByOctal(octal)
	msg := codec.TxMsg{Config: cfg, SDI: s.SDI, EngValue: s.EngFloat}
	if err != nil || !s.IsFresh || !s.IsNotBabbling {
		msg.SM = codec.BnrFailureWarning
		return msg
	}
	msg.SM = s.SM
	return msg
}

// NewPitch implements new_pitch().
func (e *Engine) NewPitch() codec.TxMsg { return copyThrough(e.ahr, 324, e.tx.Pitch) }

// NewRoll implements new_roll().
func (e *Engine) NewRoll() codec.TxMsg { return copyThrough(e.ahr, 325, e.tx.Roll) }

// BodyLatAccel implements body_lat_accel(): negate the sign of label 332's
// value.
func (e *Engine) BodyLatAccel() codec.TxMsg {
	s, err := e.ahr.GetLatestByOctal(332)
	msg := codec.TxMsg{Config: e.tx.BodyLatAccel, SDI: s.SDI, EngValue: -s.EngFloat}
	if err != nil || !s.IsFresh || !s.IsNotBabbling {
		msg.SM = codec.BnrFailureWarning
		return msg
	}
	msg.SM = s.SM
	return msg
}

// NormalAccel implements normal_accel(): offset by +1.0 and re-validate
// through the Eclipse -3..+5 range, per CalculateNewNormalAccelerationARINCWord.
func (e *Engine) NormalAccel() codec.TxMsg {
	s, err := e.ahr.GetLatestByOctal(333)
	offset := s.EngFloat + 1.0
	msg := codec.TxMsg{Config: e.tx.NormalAccel, SDI: s.SDI, EngValue: offset}

	if err != nil || !s.IsFresh || !s.IsNotBabbling {
		msg.SM = codec.BnrFailureWarning
		return msg
	}
	if s.SM == codec.BnrNormalOperation {
		msg.SM = codec.CheckBNRValidity(offset, e.tx.NormalAccel)
	} else {
		msg.SM = s.SM
	}
	return msg
}

// BaroCorrection implements baro_correction(): pass through label 235 if
// its sign is Plus, else emit NoComputedData with zeroed data.
func (e *Engine) BaroCorrection() codec.TxMsg {
	s, err := e.pfd.GetLatestByOctal(235)
	msg := codec.TxMsg{Config: e.tx.BaroCorr}

	if err != nil || !s.IsFresh || !s.IsNotBabbling || s.SM != codec.BcdPlus {
		msg.EngValue = 0
		msg.SDI = 0
		msg.SM = codec.BcdNoComputedData
		return msg
	}
	msg.EngValue = s.EngFloat
	msg.SDI = s.SDI
	msg.SM = codec.BcdPlus
	return msg
}

// IsBaroCorrectionValid reports whether the last baro-correction read would
// pass through cleanly, used by the scheduler to gate the ~17Hz ADC
// pass-through block.
func (e *Engine) IsBaroCorrectionValid() bool {
	s, err := e.pfd.GetLatestByOctal(235)
	return err == nil && s.IsFresh && s.IsNotBabbling && s.SM == codec.BcdPlus
}

// AhrsStatus272 implements ahrs_status_272(adc_timeout), per
// CalculateARINCLabel272.
func (e *Engine) AhrsStatus272(adcTimeout bool) codec.TxMsg {
	word := base272
	s271, err := e.ahr.GetLatestByOctal(271)
	valid271 := err == nil && s271.IsFresh && s271.IsNotBabbling && s271.SM == codec.DiscVerifiedNormal

	if valid271 {
		word |= s271.RawWord & ahrsStatusSDISSMMask
		if adcTimeout {
			word |= ahrsBit25Set
		}
		if s271.RawWord&label271MSUFailMask != 0 {
			word |= 0xC00
		}
	} else {
		word |= discSSMFailMask
	}
	return rawDiscreteWord(word)
}

// AhrsStatus274 implements ahrs_status_274(adc_timeout), per
// CalculateARINCLabel274.
func (e *Engine) AhrsStatus274(adcTimeout bool) codec.TxMsg {
	word := base274
	s271, err271 := e.ahr.GetLatestByOctal(271)
	s270, err270 := e.ahr.GetLatestByOctal(270)

	valid271 := err271 == nil && s271.IsFresh && s271.IsNotBabbling && s271.SM == codec.DiscVerifiedNormal
	valid270 := err270 == nil && s270.IsFresh && s270.IsNotBabbling && s270.SM == codec.DiscVerifiedNormal

	if valid271 && valid270 {
		word |= s271.RawWord & ahrsStatusSDISSMMask
		if s271.RawWord&label271MSUFailMask != 0 {
			word |= 0x10000000
		}
		if s270.RawWord&label270CalMask != 0 {
			word |= 0x800
		}
		if adcTimeout {
			word |= 0x1000
		}
	} else {
		word |= discSSMFailMask
	}
	return rawDiscreteWord(word)
}

// AhrsStatus275 implements ahrs_status_275(), per CalculateARINCLabel275.
func (e *Engine) AhrsStatus275() codec.TxMsg {
	word := base275
	s271, err271 := e.ahr.GetLatestByOctal(271)
	s323, err323 := e.ahr.GetLatestByOctal(323)

	valid271 := err271 == nil && s271.IsFresh && s271.IsNotBabbling && s271.SM == codec.DiscVerifiedNormal
	valid323 := err323 == nil && s323.IsFresh && s323.IsNotBabbling

	if valid271 && valid323 {
		word |= s271.RawWord & ahrsStatusSDISSMMask
		if s271.RawWord&label271MSUFailMask != 0 {
			word |= 0x400000
		}
		if s323.SM != codec.BnrNormalOperation {
			word |= 0x3000000
		} else {
			word |= 0x2000000
		}
	} else {
		word |= discSSMFailMask
	}
	return rawDiscreteWord(word)
}

// rawDiscreteWord wraps a fully-composed raw word (label/SDI/SSM already
// embedded, as in the original status-word calculators) into a TxMsg the
// caller can hand straight to the transceiver without a further encode
// pass.
func rawDiscreteWord(word uint32) codec.TxMsg {
	return codec.TxMsg{RawPreEncoded: true, PreEncodedWord: word}
}
