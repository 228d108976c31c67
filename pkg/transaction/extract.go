package transaction

import (
	"fmt"
	"regexp"
	"time"

	"github.com/caaosorio/expenses/pkg/api"
)

// Extractor pulls the amount, counterparty and payment instrument for a
// single transaction kind out of the announcement text. The six kinds
// differ only in data (pattern and flow direction), never in control
// flow, so one Extractor type serves them all.
type Extractor struct {
	kind    api.Kind
	income  bool
	pattern *regexp.Regexp

	amountIdx     int
	merchantIdx   int
	instrumentIdx int
}

func newExtractor(kind api.Kind, pattern string) *Extractor {
	re := regexp.MustCompile(pattern)

	e := &Extractor{
		kind:          kind,
		income:        kind.IsIncome(),
		pattern:       re,
		amountIdx:     -1,
		merchantIdx:   -1,
		instrumentIdx: -1,
	}

	for i, name := range re.SubexpNames() {
		switch name {
		case "amount":
			e.amountIdx = i
		case "merchant":
			e.merchantIdx = i
		case "instrument":
			e.instrumentIdx = i
		}
	}

	return e
}

// Extract builds a record from the announcement text. The receipt
// timestamp of the email is the transaction time; date and time groups
// inside the text are captured by some patterns but deliberately not
// used, and their absence never suppresses a record.
//
// When the pattern does not bind, the record carries sentinel fields and
// keeps the raw text for audit: the text already passed the gate and the
// classifier, so the count is accounted for even without a reliable
// amount.
func (e *Extractor) Extract(text string, receivedAt time.Time, amounts AmountNormalizer) api.TransactionRecord {
	record := api.TransactionRecord{
		Kind:         e.kind,
		Counterparty: api.UnknownField,
		Instrument:   api.UnknownField,
		OccurredAt:   receivedAt,
	}

	match := e.pattern.FindStringSubmatch(text)
	if match == nil {
		record.RawText = text
		return record
	}

	if e.amountIdx >= 0 && match[e.amountIdx] != "" {
		amount := amounts.Normalize(match[e.amountIdx])
		if !e.income {
			amount = -amount
		}
		record.Amount = amount
	}
	if e.merchantIdx >= 0 && match[e.merchantIdx] != "" {
		record.Counterparty = match[e.merchantIdx]
	}
	if e.instrumentIdx >= 0 && match[e.instrumentIdx] != "" {
		record.Instrument = match[e.instrumentIdx]
	}

	return record
}

// Kind returns the kind this extractor is bound to.
func (e *Extractor) Kind() api.Kind {
	return e.kind
}

// extractors is the closed registry mapping each kind to its pattern.
// Resolved once at init; there is no runtime registration.
var extractors = map[api.Kind]*Extractor{
	api.KindPurchase: newExtractor(api.KindPurchase,
		`(?i)compra por (?P<amount>\$[0-9.,]+) en (?P<merchant>[\w ./*,-]+?)`+
			`(?: (?P<time>\d{2}:\d{2})\.? (?P<date>\d{2}/\d{2}/\d{4}))?`+
			`(?: (?P<instrument>(?:compra afiliada a )?T\.(?:Cred|Deb) \*\d+))?\.`),

	api.KindWithdrawal: newExtractor(api.KindWithdrawal,
		`(?i)retiro por (?P<amount>\$[0-9.,]+) en (?P<merchant>[\w ./*-]+?)\.?`+
			`(?: ?hora (?P<time>\d{2}:\d{2}) (?P<date>\d{2}/\d{2}/\d{4}))?`+
			`(?: (?P<instrument>T\.(?:Cred|Deb) \*\d+))?\.`),

	api.KindPayment: newExtractor(api.KindPayment,
		`(?i)pago por (?P<amount>\$[0-9.,]+) a (?P<merchant>[\w ./*-]+?)`+
			` desde producto (?:\*(?P<instrument>\d+))?`),

	api.KindIncomingTransfer: newExtractor(api.KindIncomingTransfer,
		`(?i)recepcion transferencia de (?P<merchant>[\w ./*-]+?)`+
			` por (?P<amount>\$[0-9.,]+) en la cuenta \*(?P<instrument>\d+)\.`),

	api.KindQRTransfer: newExtractor(api.KindQRTransfer,
		`(?i)transferencia con qr por (?P<amount>\$[0-9.,]+),`+
			` desde cta (?P<instrument>\d+) a cta (?P<merchant>\d+)\.`+
			`(?: (?P<date>\d{2}/\d{2}/\d{4}) (?P<time>\d{2}:\d{2})\.)?`),

	api.KindOutgoingTransfer: newExtractor(api.KindOutgoingTransfer,
		`(?i)transferencia por (?P<amount>\$[0-9.,]+)`+
			` desde cta (?:\*(?P<instrument>\d+))? a cta (?P<merchant>\d+)`),
}

// ExtractorFor returns the extractor registered for the kind.
func ExtractorFor(kind api.Kind) (*Extractor, error) {
	e, ok := extractors[kind]
	if !ok {
		return nil, fmt.Errorf("no extractor registered for kind %q", kind)
	}
	return e, nil
}
