// Package transaction turns Bancolombia notification text into
// normalized transaction records: a validity gate, a keyword classifier,
// an amount normalizer and one pattern-driven extractor per kind.
package transaction

import (
	"errors"
	"log/slog"
	"time"

	"github.com/caaosorio/expenses/pkg/api"
)

var (
	// ErrNotTransaction means the text failed the validity gate. This is
	// the common case for unrelated mail and is not logged as an error.
	ErrNotTransaction = errors.New("not a transaction notification")
	// ErrUnknownKind means the text passed the gate but matched no kind
	// keyword.
	ErrUnknownKind = errors.New("no transaction kind matched")
)

// Processor runs the full text pipeline for one message.
type Processor struct {
	amounts AmountNormalizer
	logger  *slog.Logger
}

// NewProcessor creates a processor. A foreignRate of 0 selects the
// default conversion rate.
func NewProcessor(foreignRate float64, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		amounts: AmountNormalizer{ForeignRate: foreignRate},
		logger:  logger,
	}
}

// Process gates, classifies and extracts one announcement text. The
// receipt timestamp becomes the record's transaction time.
func (p *Processor) Process(text string, receivedAt time.Time) (api.TransactionRecord, error) {
	if !IsValid(text) {
		return api.TransactionRecord{}, ErrNotTransaction
	}

	kind := Classify(text)
	if kind == api.KindUnknown {
		return api.TransactionRecord{}, ErrUnknownKind
	}

	extractor, err := ExtractorFor(kind)
	if err != nil {
		return api.TransactionRecord{}, err
	}

	record := extractor.Extract(text, receivedAt, p.amounts)
	if record.RawText != "" {
		p.logger.Warn("extraction pattern did not bind, keeping audit record",
			"kind", kind.String(),
			"text", record.RawText,
		)
	}

	return record, nil
}
