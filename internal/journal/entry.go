package journal

import (
	"context"
	"time"
)

type Kind string

const (
	KindTrade   Kind = "trade"
	KindBooking Kind = "single_sided_booking"
)

// Entry is one audited ledger event. Side holds bid/ask for trades and
// buy/sell for bookings.
type Entry struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID    string    `gorm:"size:36;index"`
	Kind         Kind      `gorm:"size:32"`
	OrderID      uint64    `gorm:"index"`
	InstrumentID string    `gorm:"size:64;index"`
	Price        float64   `gorm:"not null"`
	Volume       int64     `gorm:"not null"`
	Side         string    `gorm:"size:8"`
	Username     string    `gorm:"size:64"`
	RecordedAt   time.Time `gorm:"not null"`
}

func (Entry) TableName() string {
	return "exchange_journal"
}

// Store persists batches of entries.
type Store interface {
	Save(ctx context.Context, entries []Entry) error
}
