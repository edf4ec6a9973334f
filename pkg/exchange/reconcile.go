package exchange

import (
	"context"

	"exchangeclient/internal/bridge"
	"exchangeclient/internal/ledger"
	"exchangeclient/pkg/model"
)

// PositionSnapshot lists positions sorted by instrument.
type PositionSnapshot = ledger.Snapshot

type PositionEntry = ledger.PositionEntry

// SnapshotFromPositions builds a snapshot from positions reported elsewhere,
// typically the exchange's own view, so it can be compared with the client's.
func SnapshotFromPositions(positions map[string]model.Position) PositionSnapshot {
	seeds := make([]ledger.Seed, 0, len(positions))
	for id, p := range positions {
		seeds = append(seeds, ledger.Seed{InstrumentID: id, Volume: p.Volume, Cash: p.Cash})
	}
	return ledger.SnapshotFromSeeds(seeds)
}

// CompareSnapshots fails with ErrPositionMismatch when the volumes differ or
// cash differs by more than cashTolerance. A negative tolerance skips cash.
func CompareSnapshots(expected, actual PositionSnapshot, cashTolerance float64) error {
	return ledger.CompareSnapshots(expected, actual, cashTolerance)
}

func (e *Exchange) PositionSnapshot(ctx context.Context) (PositionSnapshot, error) {
	return bridge.Call(ctx, e.bridge, e.trading.PositionSnapshot)
}

// Reconcile compares the tracked positions with reported.
func (e *Exchange) Reconcile(ctx context.Context, reported map[string]model.Position, cashTolerance float64) error {
	local, err := e.PositionSnapshot(ctx)
	if err != nil {
		return err
	}
	return CompareSnapshots(SnapshotFromPositions(reported), local, cashTolerance)
}
