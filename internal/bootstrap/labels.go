// Package bootstrap wires the leaf packages (label, group, filter, derive,
// swver, rs422, transceiver) into a running Core, per §4.10: it runs the
// self-test set, brings up both transceivers and the ADC link, and
// constructs the fixed AHR75/PFD/ADC label tables the original firmware's
// AFC004MessageConfig.c hardcodes.
package bootstrap

import (
	"fmt"
	"strconv"

	"github.com/archangelsys/afc004-iop/internal/arinc/derive"
	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

// octalSeq expands a printed-octal range (e.g. 200..246) into the list of
// printed-octal label numbers it denotes, honoring octal digit rollover
// (…207 is followed by 210, not 208). Used to build the ADC pass-through
// label set from §4.6/§4.8 without hand-listing every value.
func octalSeq(startOctal, endOctal int) []int {
	start, err := strconv.ParseInt(strconv.Itoa(startOctal), 8, 32)
	if err != nil {
		panic(fmt.Sprintf("bootstrap: bad octal literal %d: %v", startOctal, err))
	}
	end, err := strconv.ParseInt(strconv.Itoa(endOctal), 8, 32)
	if err != nil {
		panic(fmt.Sprintf("bootstrap: bad octal literal %d: %v", endOctal, err))
	}
	out := make([]int, 0, end-start+1)
	for v := start; v <= end; v++ {
		printed, _ := strconv.ParseInt(strconv.FormatInt(v, 8), 10, 32)
		out = append(out, int(printed))
	}
	return out
}

func must(cfg label.Config, err error) label.Config {
	if err != nil {
		panic(err)
	}
	return cfg
}

// ahrsRxLabels builds the AHR75 group's receive-side label table (§4.5).
func ahrsRxLabels() []label.Config {
	return []label.Config{
		must(label.Build(label.Params{OctalLabel: 270, MsgType: label.Discrete, NumDiscreteBits: 4, MinTransmitIntervalMs: 450, MaxTransmitIntervalMs: 550})),
		must(label.Build(label.Params{OctalLabel: 271, MsgType: label.Discrete, NumDiscreteBits: 1, MinTransmitIntervalMs: 450, MaxTransmitIntervalMs: 550})),
		must(label.Build(label.Params{OctalLabel: 320, MsgType: label.BNR, NumSigBits: 15, Resolution: 0.0055, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 324, MsgType: label.BNR, NumSigBits: 14, Resolution: 0.010986, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 325, MsgType: label.BNR, NumSigBits: 14, Resolution: 0.010986, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 326, MsgType: label.BNR, NumSigBits: 13, Resolution: 0.015625, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 327, MsgType: label.BNR, NumSigBits: 13, Resolution: 0.015625, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 330, MsgType: label.BNR, NumSigBits: 13, Resolution: 0.015625, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 331, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.000976563, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 332, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.000976563, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 333, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.000976563, HasValidRange: true, MinValidValue: -3, MaxValidValue: 5, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
		must(label.Build(label.Params{OctalLabel: 323, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.001, MinTransmitIntervalMs: 15, MaxTransmitIntervalMs: 25})),
	}
}

// pfdRxLabels builds the PFD group's receive-side label table (§4.5).
func pfdRxLabels() []label.Config {
	return []label.Config{
		must(label.Build(label.Params{OctalLabel: 235, MsgType: label.BCD, NumSigDigits: 5, Resolution: 0.001, MinTransmitIntervalMs: 40, MaxTransmitIntervalMs: 60})),
		must(label.Build(label.Params{OctalLabel: 124, MsgType: label.Discrete, NumDiscreteBits: 3, MinTransmitIntervalMs: 180, MaxTransmitIntervalMs: 220})),
		must(label.Build(label.Params{OctalLabel: 270, MsgType: label.Discrete, NumDiscreteBits: 1, MinTransmitIntervalMs: 45, MaxTransmitIntervalMs: 55})),
		must(label.Build(label.Params{OctalLabel: 271, MsgType: label.Discrete, NumDiscreteBits: 1, MinTransmitIntervalMs: 45, MaxTransmitIntervalMs: 55})),
	}
}

// adcPassThroughOctals lists the label numbers §4.6/§4.8 relay from the ADC
// RS-422 link straight through to channel B (200..246, plus 271 and 377)
// and the 50Hz subset relayed to channel A (206/210/221).
var adcPassThroughOctals = append(octalSeq(200, 246), 271, 377)

var adc50HzOctals = []int{206, 210, 221}

// ADCPassThroughOctals exposes the ~17Hz relay set to the scheduler.
func ADCPassThroughOctals() []int {
	return adcPassThroughOctals
}

// ADC50HzOctals exposes the 50Hz ADC-to-channel-A relay set to the
// scheduler.
func ADC50HzOctals() []int {
	return adc50HzOctals
}

// adcRxLabels builds the ADC group's receive-side table. The ADC bus mixes
// message types the AFC004 core never interprets — it only relays the raw
// word — so every entry is decoded as a generic 19-bit Discrete just to
// populate RawWord/freshness/babble bookkeeping (§4.8's "wire-format
// decomposition" note); no engineering value is ever read back out.
func adcRxLabels() []label.Config {
	cfgs := make([]label.Config, 0, len(adcPassThroughOctals))
	for _, octal := range adcPassThroughOctals {
		cfgs = append(cfgs, must(label.Build(label.Params{
			OctalLabel:            octal,
			MsgType:               label.Discrete,
			NumDiscreteBits:       19,
			MinTransmitIntervalMs: 15,
			MaxTransmitIntervalMs: 100,
		})))
	}
	return cfgs
}

// txLabels builds the Eclipse-specific outgoing label configs the
// derived-word engine encodes into (§4.5 table, right-hand "Writes"
// column).
func txLabels() derive.TxLabels {
	return derive.TxLabels{
		TurnRate:     must(label.Build(label.Params{OctalLabel: 340, MsgType: label.BNR, NumSigBits: 13, Resolution: 0.015625, HasValidRange: true, MinValidValue: -128, MaxValidValue: 128})),
		SlipAngle:    must(label.Build(label.Params{OctalLabel: 250, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.04395, HasValidRange: true, MinValidValue: -90, MaxValidValue: 90})),
		MagHeading:   must(label.Build(label.Params{OctalLabel: 320, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.0879})),
		Pitch:        must(label.Build(label.Params{OctalLabel: 324, MsgType: label.BNR, NumSigBits: 13, Resolution: 0.021973})),
		Roll:         must(label.Build(label.Params{OctalLabel: 325, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.043945})),
		BodyLatAccel: must(label.Build(label.Params{OctalLabel: 332, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.000976563})),
		NormalAccel:  must(label.Build(label.Params{OctalLabel: 333, MsgType: label.BNR, NumSigBits: 12, Resolution: 0.000976563, HasValidRange: true, MinValidValue: -3, MaxValidValue: 5})),
		BaroCorr:     must(label.Build(label.Params{OctalLabel: 235, MsgType: label.BCD, NumSigDigits: 5, Resolution: 0.001})),
		Status272:    must(label.Build(label.Params{OctalLabel: 272, MsgType: label.Discrete, NumDiscreteBits: 19})),
		Status274:    must(label.Build(label.Params{OctalLabel: 274, MsgType: label.Discrete, NumDiscreteBits: 19})),
		Status275:    must(label.Build(label.Params{OctalLabel: 275, MsgType: label.Discrete, NumDiscreteBits: 19})),
	}
}
