// Package group implements the receive-side label dispatch: per-label
// RxSlot state, freshness/babbling timekeeping, and bus-failure counting.
// It is grounded on ARINC.c's ARINC429_ProcessReceivedMessage /
// ARINC429_GetLatestLabelData / ARINC429_GetLatestARINC429Word and on
// ArincDownload.c's drain/bus-failure loop.
package group

import (
	"errors"
	"fmt"

	"github.com/sasha-s/go-deadlock"

	"github.com/archangelsys/afc004-iop/internal/arinc/clock"
	"github.com/archangelsys/afc004-iop/internal/arinc/codec"
	"github.com/archangelsys/afc004-iop/internal/arinc/label"
)

// ErrNoMatchingLabel is returned by ProcessReceived when no configured
// label matches the received word.
var ErrNoMatchingLabel = errors.New("group: no matching label")

// ErrUnknownLabel is returned by lookups against a label not in the group.
var ErrUnknownLabel = errors.New("group: unknown label")

// Slot is the live state for one configured label (data model §3 RxSlot).
// It is a plain value; callers get a copy from GetLatest so they can never
// observe a partial update.
type Slot struct {
	RawWord       uint32
	SM            codec.SSM
	SDI           uint8
	EngFloat      float64
	EngInt        int32
	DiscreteBits  uint32
	LastGoodMs    uint32
	HasEverReceived bool
	IsNotBabbling bool

	// IsFresh is only meaningful on a value returned by GetLatest/GetLatestWord,
	// which stamp it against the clock at read time (invariant 4: never
	// cached across a `now` change).
	IsFresh bool
}

// entry pairs one label's immutable config with its mutable slot.
type entry struct {
	cfg  label.Config
	slot Slot
}

// Group is one receive source's ordered label table plus bus-failure
// bookkeeping (data model §3 RxGroup).
type Group struct {
	Name string

	mu               deadlock.Mutex
	entries          []entry
	clk              clock.Source
	maxBusFailure    uint32
	currentCounts    uint32
	hasBusFailed     bool
	parityDiscards   uint64
}

// New builds a Group from a set of label configs. Duplicate wire labels are
// a configuration error (§4.2: caught at construction).
func New(name string, clk clock.Source, maxBusFailureCounts uint32, cfgs []label.Config) (*Group, error) {
	if clk == nil {
		return nil, fmt.Errorf("group %s: nil clock", name)
	}
	seen := make(map[uint8]bool, len(cfgs))
	entries := make([]entry, 0, len(cfgs))
	for _, c := range cfgs {
		if seen[c.Label] {
			return nil, fmt.Errorf("group %s: duplicate wire label %#02x", name, c.Label)
		}
		seen[c.Label] = true
		entries = append(entries, entry{cfg: c})
	}
	return &Group{
		Name:          name,
		entries:       entries,
		clk:           clk,
		maxBusFailure: maxBusFailureCounts,
	}, nil
}

func (g *Group) find(wireLabel uint8) int {
	// Linear search bounded by 64 configured labels per §4.2/§5.
	n := len(g.entries)
	if n > 64 {
		n = 64
	}
	for i := 0; i < n; i++ {
		if g.entries[i].cfg.Label == wireLabel {
			return i
		}
	}
	return -1
}

// ProcessReceived implements §4.3 process_received.
func (g *Group) ProcessReceived(word uint32) error {
	wireLabel := uint8(word & 0xFF)

	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.find(wireLabel)
	if idx < 0 {
		return ErrNoMatchingLabel
	}

	fields, err := codec.Decode(g.entries[idx].cfg, word)
	if err != nil {
		return err
	}

	now := g.clk.NowMs()
	prev := g.entries[idx].slot
	isNotBabbling := true
	if prev.HasEverReceived {
		isNotBabbling = clock.Elapsed(now, prev.LastGoodMs) >= g.entries[idx].cfg.MinTransmitIntervalMs
	}

	g.entries[idx].slot = Slot{
		RawWord:         fields.RawWord,
		SM:              fields.SM,
		SDI:             fields.SDI,
		EngFloat:        fields.EngFloat,
		EngInt:          fields.EngInt,
		DiscreteBits:    fields.DiscreteBits,
		LastGoodMs:      now,
		HasEverReceived: true,
		IsNotBabbling:   isNotBabbling,
	}
	return nil
}

// GetLatest implements §4.3 get_latest_label_data: looks up by wire label,
// returns a copy with IsFresh stamped against the current clock reading.
func (g *Group) GetLatest(wireLabel uint8) (Slot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.find(wireLabel)
	if idx < 0 {
		return Slot{}, ErrUnknownLabel
	}
	s := g.entries[idx].slot
	if s.HasEverReceived {
		s.IsFresh = clock.Elapsed(g.clk.NowMs(), s.LastGoodMs) <= g.entries[idx].cfg.MaxTransmitIntervalMs
	}
	return s, nil
}

// GetLatestByOctal is a convenience wrapper taking a printed octal label.
func (g *Group) GetLatestByOctal(octalLabel int) (Slot, error) {
	return g.GetLatest(label.FormatLabelNumber(octalLabel))
}

// GetLatestWord implements §4.3 get_latest_word: true iff fresh, not
// babbling, and known.
func (g *Group) GetLatestWord(octalLabel int) (uint32, bool) {
	s, err := g.GetLatestByOctal(octalLabel)
	if err != nil || !s.IsFresh || !s.IsNotBabbling {
		return 0, false
	}
	return s.RawWord, true
}

// Reader is the narrow port the drain loop needs from a Transceiver Port
// channel: FIFO-drain semantics bounded at 32 words per call.
type Reader interface {
	DataReady() bool
	ReadWord() uint32
}

// Drain implements §4.3 drain_from_txvr: reads up to 32 words while data is
// ready, discarding parity-error words (counted, answering design note (a))
// and feeding the rest to ProcessReceived. A successful decode resets the
// bus-failure counter.
func (g *Group) Drain(r Reader) {
	const maxFIFODepth = 32
	for i := 0; i < maxFIFODepth && r.DataReady(); i++ {
		word := r.ReadWord()
		if codec.HasParityError(word) {
			g.mu.Lock()
			g.parityDiscards++
			g.mu.Unlock()
			continue
		}
		if err := g.ProcessReceived(word); err == nil {
			g.mu.Lock()
			g.currentCounts = 0
			g.mu.Unlock()
		}
	}
}

// TickBusFailure implements §4.3 tick_bus_failure: called once per 10ms
// tick by the scheduler.
func (g *Group) TickBusFailure() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentCounts++
	g.hasBusFailed = g.currentCounts >= g.maxBusFailure
	return g.hasBusFailed
}

// Health is a read-only snapshot used by the diagnostics component; it never
// mutates group state and is safe to call from any goroutine.
type Health struct {
	Name           string
	HasBusFailed   bool
	CurrentCounts  uint32
	ParityDiscards uint64
	StaleLabels    []uint8
}

// Snapshot produces a Health view of the group for §4.9 diagnostics.
func (g *Group) Snapshot() Health {
	g.mu.Lock()
	defer g.mu.Unlock()

	h := Health{
		Name:           g.Name,
		HasBusFailed:   g.hasBusFailed,
		CurrentCounts:  g.currentCounts,
		ParityDiscards: g.parityDiscards,
	}
	now := g.clk.NowMs()
	for _, e := range g.entries {
		if !e.slot.HasEverReceived {
			h.StaleLabels = append(h.StaleLabels, e.cfg.Label)
			continue
		}
		if clock.Elapsed(now, e.slot.LastGoodMs) > e.cfg.MaxTransmitIntervalMs {
			h.StaleLabels = append(h.StaleLabels, e.cfg.Label)
		}
	}
	return h
}
