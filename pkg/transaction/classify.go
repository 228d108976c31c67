package transaction

import (
	"strings"

	"github.com/caaosorio/expenses/pkg/api"
)

// announcementPhrases are the sender sentences that open every genuine
// transaction notification.
var announcementPhrases = []string{
	"bancolombia le informa",
	"bancolombia te informa",
	"bancolombia informa",
	"realizaste una transferencia",
}

// kindKeywords maps the bank's vocabulary to kinds. The order is policy:
// "recepcion transferencia" must be tested before the bare
// "transferencia", and "qr" before it as well, because the later keywords
// are substrings of the more specific contexts.
var kindKeywords = []struct {
	keyword string
	kind    api.Kind
}{
	{"compra", api.KindPurchase},
	{"retiro", api.KindWithdrawal},
	{"pago", api.KindPayment},
	{"recepcion transferencia", api.KindIncomingTransfer},
	{"qr", api.KindQRTransfer},
	{"transferencia", api.KindOutgoingTransfer},
}

// IsValid is the cheap three-signal gate run before any pattern
// extraction: an announcement phrase, a kind keyword, and a peso amount
// must all be present. Anything else (newsletters, OTP codes) is
// rejected here without touching the extractors.
func IsValid(text string) bool {
	lower := strings.ToLower(text)

	return containsAny(lower, announcementPhrases) &&
		containsKindKeyword(lower) &&
		strings.Contains(text, "$")
}

// Classify returns the kind of the first keyword found in the text, or
// api.KindUnknown when nothing matches.
func Classify(text string) api.Kind {
	lower := strings.ToLower(text)
	for _, kk := range kindKeywords {
		if strings.Contains(lower, kk.keyword) {
			return kk.kind
		}
	}
	return api.KindUnknown
}

func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func containsKindKeyword(lower string) bool {
	for _, kk := range kindKeywords {
		if strings.Contains(lower, kk.keyword) {
			return true
		}
	}
	return false
}
