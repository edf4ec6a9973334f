package ledger

import (
	"time"

	"exchangeclient/pkg/exception"

	"github.com/yanun0323/errors"
)

// Snapshot captures positions at a point in time, sorted by instrument.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Positions []PositionEntry `json:"positions"`
}

type PositionEntry struct {
	InstrumentID string  `json:"instrumentId"`
	Volume       int64   `json:"volume"`
	Cash         float64 `json:"cash"`
}

func (l *Ledger) Snapshot() Snapshot {
	ids := l.instruments()
	entries := make([]PositionEntry, 0, len(ids))
	for _, id := range ids {
		e := l.positions[id]
		entries = append(entries, PositionEntry{
			InstrumentID: id,
			Volume:       e.volume,
			Cash:         e.cash.InexactFloat64(),
		})
	}
	return Snapshot{Timestamp: time.Now().UTC(), Positions: entries}
}

// SnapshotFromSeeds turns a server report into a Snapshot for comparison.
func SnapshotFromSeeds(seeds []Seed) Snapshot {
	l := New()
	l.Seed(seeds)
	return l.Snapshot()
}

// CompareSnapshots checks that both snapshots hold the same volumes. Cash is
// compared within tolerance; a negative tolerance skips the cash check.
func CompareSnapshots(expected, actual Snapshot, cashTolerance float64) error {
	if len(expected.Positions) != len(actual.Positions) {
		return errors.Wrapf(exception.ErrPositionMismatch, "length expected=%d actual=%d", len(expected.Positions), len(actual.Positions))
	}
	want := make(map[string]PositionEntry, len(expected.Positions))
	for _, e := range expected.Positions {
		want[e.InstrumentID] = e
	}
	for _, got := range actual.Positions {
		exp, ok := want[got.InstrumentID]
		if !ok {
			return errors.Wrapf(exception.ErrPositionMismatch, "unexpected instrument %s", got.InstrumentID)
		}
		if exp.Volume != got.Volume {
			return errors.Wrapf(exception.ErrPositionMismatch, "instrument %s volume expected=%d actual=%d", got.InstrumentID, exp.Volume, got.Volume)
		}
		if cashTolerance >= 0 && abs(exp.Cash-got.Cash) > cashTolerance {
			return errors.Wrapf(exception.ErrPositionMismatch, "instrument %s cash expected=%f actual=%f", got.InstrumentID, exp.Cash, got.Cash)
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
