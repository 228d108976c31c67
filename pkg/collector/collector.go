// Package collector sequences the expense pipeline: mail retrieval,
// envelope extraction, classification, per-kind extraction and
// aggregation into per-period summaries.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caaosorio/expenses/pkg/api"
	"github.com/caaosorio/expenses/pkg/envelope"
	"github.com/caaosorio/expenses/pkg/transaction"
)

// Config holds collector settings.
type Config struct {
	// Senders are the bank addresses to fetch from.
	Senders []string
	// FetchLimit caps emails fetched per sender. Zero means unlimited
	// within the period window.
	FetchLimit int
	// ForeignRate converts decimal-comma amounts; zero selects the
	// default rate.
	ForeignRate float64
}

// Collector runs self-contained collection batches. Each Collect call
// is sequential and synchronous; the only external resource held is the
// mail source, and only for the duration of the call.
type Collector struct {
	source    api.MailSource
	store     api.Store
	processor *transaction.Processor
	cfg       Config
	logger    *slog.Logger

	// now is swapped in tests.
	now func() time.Time
}

// New creates a collector. The store may be nil, which disables both
// persistence and the short-circuit read path.
func New(source api.MailSource, store api.Store, cfg Config, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{
		source:    source,
		store:     store,
		processor: transaction.NewProcessor(cfg.ForeignRate, logger.With("component", "processor")),
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(envelope.CivilZone) },
	}
}

// Collect returns the normalized records for the period. The parsing of
// any single email failing skips that email and continues; a retrieval
// failure aborts the whole batch with no partial result.
func (c *Collector) Collect(ctx context.Context, period api.Period) ([]api.TransactionRecord, error) {
	since, err := PeriodStart(period, c.now())
	if err != nil {
		return nil, err
	}
	logger := c.logger.With("period", string(period), "since", since)

	// Persisted records covering the window make mail retrieval
	// unnecessary. This is an optimization only: the parsing contract
	// does not depend on where the emails come from.
	if cached := c.fromStore(ctx, since); len(cached) > 0 {
		logger.Info("serving period from store", "count", len(cached))
		return cached, nil
	}

	var records []api.TransactionRecord
	for _, sender := range c.cfg.Senders {
		mails, err := c.source.FetchSince(ctx, sender, since, c.cfg.FetchLimit)
		if err != nil {
			return nil, fmt.Errorf("fetching from %s: %w", sender, err)
		}

		for _, m := range mails {
			record, ok := c.processMail(m)
			if ok {
				records = append(records, record)
			}
		}
	}

	logger.Info("collection finished", "records", len(records))

	if c.store != nil && len(records) > 0 {
		if err := c.store.UpsertRecords(ctx, records); err != nil {
			// Persistence is a sink, not a gate: the batch result stands.
			logger.Error("failed to persist records", "error", err)
		}
	}

	return records, nil
}

// Summary collects the period and folds the records per kind.
func (c *Collector) Summary(ctx context.Context, period api.Period) (api.Summary, error) {
	records, err := c.Collect(ctx, period)
	if err != nil {
		return api.Summary{}, err
	}
	return api.Summarize(records), nil
}

// processMail runs the per-email path. Every failure mode here is an
// expected outcome that skips the email without touching the batch.
func (c *Collector) processMail(m api.Mail) (api.TransactionRecord, bool) {
	msg := envelope.Extract(m.Raw, c.logger)

	record, err := c.processor.Process(msg.BodyText, msg.ReceivedAt)
	switch {
	case errors.Is(err, transaction.ErrNotTransaction):
		c.logger.Debug("skipping non-transaction mail", "mail_id", m.ID)
		return api.TransactionRecord{}, false
	case errors.Is(err, transaction.ErrUnknownKind):
		c.logger.Debug("skipping unclassified mail", "mail_id", m.ID)
		return api.TransactionRecord{}, false
	case err != nil:
		c.logger.Warn("skipping mail", "mail_id", m.ID, "error", err)
		return api.TransactionRecord{}, false
	}

	return record, true
}

func (c *Collector) fromStore(ctx context.Context, since time.Time) []api.TransactionRecord {
	if c.store == nil {
		return nil
	}

	records, err := c.store.RecordsSince(ctx, since)
	if err != nil {
		// A broken store falls back to mail retrieval.
		c.logger.Warn("store lookup failed", "error", err)
		return nil
	}
	return records
}
