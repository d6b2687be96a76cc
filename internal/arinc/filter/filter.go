// Package filter implements the first-order IIR low-pass filter and the
// rate-limited IIR differentiator used by the derived-word engine, along
// with the shared spool/warm-up protocol. Grounded on the usage patterns in
// calculateNewARINCLabels.c (SetupTurnRateIIRDiff / SetupNormAccelIIRFilter
// and their call sites) since the filter/differentiator implementation
// files themselves were not part of the retrieved reference sources.
package filter

// LowPass is a first-order IIR filter: y[n] = k1*y[n-1] + k2*x[n].
type LowPass struct {
	K1, K2     float64
	prevOutput float64
	preloaded  bool
}

// NewLowPass constructs a LowPass with the given recurrence coefficients.
func NewLowPass(k1, k2 float64) *LowPass {
	return &LowPass{K1: k1, K2: k2}
}

// Reset zeros prev_output and clears the preloaded flag.
func (f *LowPass) Reset() {
	f.prevOutput = 0
	f.preloaded = false
}

// Preload sets prev_output = x, matching the spool protocol's first-sample
// behavior.
func (f *LowPass) Preload(x float64) {
	f.prevOutput = x
	f.preloaded = true
}

// Step runs one cycle of the recurrence and returns the new output.
func (f *LowPass) Step(x float64) float64 {
	y := f.K1*f.prevOutput + f.K2*x
	f.prevOutput = y
	return y
}

// Differentiator is a rate-limited IIR differentiator with wrap-guard delta
// clamps, matching §4.4's rate-limited differentiator.
type Differentiator struct {
	K1            float64
	SampleRateHz  float64
	UpperLimit    float64
	LowerLimit    float64
	UpperDelta    float64
	LowerDelta    float64

	prevInput  float64
	prevOutput float64
	hasPrev    bool
}

// NewDifferentiator constructs a Differentiator with the given parameters.
func NewDifferentiator(k1, sampleRateHz, upperLimit, lowerLimit, upperDelta, lowerDelta float64) *Differentiator {
	return &Differentiator{
		K1:           k1,
		SampleRateHz: sampleRateHz,
		UpperLimit:   upperLimit,
		LowerLimit:   lowerLimit,
		UpperDelta:   upperDelta,
		LowerDelta:   lowerDelta,
	}
}

// Reset clears history so the next Step behaves like the first sample.
func (d *Differentiator) Reset() {
	d.prevInput = 0
	d.prevOutput = 0
	d.hasPrev = false
}

// Preload sets prev_input without producing an output, matching the spool
// protocol's first-sample behavior (the caller reports 0 for that cycle).
func (d *Differentiator) Preload(x float64) {
	d.prevInput = x
	d.prevOutput = 0
	d.hasPrev = true
}

// Step computes one rate-limited derivative sample.
func (d *Differentiator) Step(x float64) float64 {
	if !d.hasPrev {
		d.prevInput = x
		d.hasPrev = true
		return 0
	}

	delta := x - d.prevInput
	var out float64
	if delta > d.UpperDelta || delta < d.LowerDelta {
		// Wrap discontinuity (e.g. heading crossing +/-180): suppress it by
		// repeating the last good output instead of differentiating through it.
		out = d.prevOutput
	} else {
		raw := delta * d.SampleRateHz
		out = clamp(raw, d.LowerLimit, d.UpperLimit)
	}

	d.prevInput = x
	d.prevOutput = out
	return out
}

// LastOutput returns the most recent output without advancing state,
// mirroring the original firmware's fallback to pastOutputOfDiff on invalid
// input.
func (d *Differentiator) LastOutput() float64 {
	return d.prevOutput
}

func clamp(v, lo, hi float64) float64 {
	if v > hi {
		return hi
	}
	if v < lo {
		return lo
	}
	return v
}

// SpoolThreshold is the number of consecutive valid samples required before
// a filter's output is trusted (data model SpoolState).
const SpoolThreshold = 10

// Spool tracks warm-up state for one filter, per §4.4's spool protocol.
type Spool struct {
	Good  bool
	Count int
}

// Invalidate resets the spool on an invalid input cycle.
func (s *Spool) Invalidate() {
	s.Good = false
	s.Count = 0
}

// Advance records one valid cycle and flips Good once Count exceeds
// SpoolThreshold (testable property 7: flips on the 11th valid sample).
// It returns true for the very first valid sample of a spool-up run, which
// callers use to decide whether to reset+preload instead of stepping the
// filter.
func (s *Spool) Advance() (isFirstSample bool) {
	isFirstSample = s.Count == 0 && !s.Good
	s.Count++
	if s.Count > SpoolThreshold {
		s.Good = true
	}
	return isFirstSample
}
