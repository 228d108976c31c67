// Package api defines the core types and interfaces shared across the
// expenses pipeline.
package api

import (
	"context"
	"time"
)

// Kind is one of the fixed transaction categories recognized in
// Bancolombia notification emails.
type Kind int

const (
	// KindUnknown marks text the classifier could not categorize.
	KindUnknown Kind = iota
	// KindPurchase is a card purchase ("Compra").
	KindPurchase
	// KindWithdrawal is a cash withdrawal ("Retiro").
	KindWithdrawal
	// KindPayment is a bill or merchant payment ("Pago").
	KindPayment
	// KindIncomingTransfer is money received ("recepcion transferencia").
	KindIncomingTransfer
	// KindQRTransfer is a transfer initiated by QR code.
	KindQRTransfer
	// KindOutgoingTransfer is money sent to another account ("Transferencia").
	KindOutgoingTransfer
)

// Kinds lists every recognized kind in a stable order.
var Kinds = []Kind{
	KindPurchase,
	KindWithdrawal,
	KindPayment,
	KindIncomingTransfer,
	KindQRTransfer,
	KindOutgoingTransfer,
}

// String returns the display name of the kind, matching the names used by
// the reporting API.
func (k Kind) String() string {
	switch k {
	case KindPurchase:
		return "Compra"
	case KindWithdrawal:
		return "Retiro"
	case KindPayment:
		return "Pago"
	case KindIncomingTransfer:
		return "Recepcion Transferencia"
	case KindQRTransfer:
		return "QR"
	case KindOutgoingTransfer:
		return "Transferencia"
	default:
		return "unknown"
	}
}

// IsIncome reports whether the kind represents money flowing into the
// account. Every other kind is an outflow.
func (k Kind) IsIncome() bool {
	return k == KindIncomingTransfer
}

// UnknownField is the sentinel stored when a counterparty or instrument
// could not be extracted from the message text.
const UnknownField = "unknown"

// TransactionRecord is the canonical normalized output of the pipeline.
// The amount sign is fixed by the kind: outflow kinds are <= 0, inflow
// kinds >= 0, regardless of how the amount appears in the source text.
// Records are write-once; nothing mutates them after construction.
type TransactionRecord struct {
	Kind         Kind      `json:"kind"`
	Amount       float64   `json:"amount"`
	Counterparty string    `json:"counterparty"`
	OccurredAt   time.Time `json:"occurred_at"`
	Instrument   string    `json:"instrument"`

	// RawText holds the original message text when the extraction pattern
	// failed to bind its groups. It exists for offline audit only and is
	// never used in aggregation.
	RawText string `json:"raw_text,omitempty"`
}

// Bucket is one per-kind slot of a summary.
type Bucket struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// Summary aggregates records per kind over a period. Every kind has a
// bucket even when no transaction of that kind occurred, so the schema
// is always complete.
type Summary struct {
	Buckets map[Kind]Bucket
}

// Summarize folds records into a per-kind summary. The fold is pure and
// order-independent: summarizing the same list twice yields identical
// buckets.
func Summarize(records []TransactionRecord) Summary {
	s := Summary{Buckets: make(map[Kind]Bucket, len(Kinds))}
	for _, k := range Kinds {
		s.Buckets[k] = Bucket{Name: k.String()}
	}

	for _, r := range records {
		b, ok := s.Buckets[r.Kind]
		if !ok {
			continue
		}
		b.Amount += r.Amount
		b.Count++
		s.Buckets[r.Kind] = b
	}

	return s
}

// Period selects the time window a collection run covers.
type Period string

const (
	PeriodDaily         Period = "daily"
	PeriodWeekly        Period = "weekly"
	PeriodPartialWeekly Period = "partial_weekly"
	PeriodMonthly       Period = "monthly"
	PeriodFromOrigin    Period = "from_origin"
)

// Mail is one raw message as handed over by a mail source: the full
// RFC-822 payload plus the source's message identifier for logging.
type Mail struct {
	ID  string
	Raw []byte
}

// MailSource retrieves candidate notification emails. Implementations
// return messages most recent first.
type MailSource interface {
	// FetchSince returns the messages received from the given sender
	// address since the given instant. A limit of 0 means no limit.
	FetchSince(ctx context.Context, from string, since time.Time, limit int) ([]Mail, error)
}

// Store persists normalized records and serves them back for a period,
// letting the collector skip mail retrieval when the window is already
// covered.
type Store interface {
	// UpsertRecords writes records idempotently; a record whose
	// non-audit fields match an existing row is skipped.
	UpsertRecords(ctx context.Context, records []TransactionRecord) error
	// RecordsSince returns the persisted records with OccurredAt at or
	// after the given instant.
	RecordsSince(ctx context.Context, since time.Time) ([]TransactionRecord, error)
}
