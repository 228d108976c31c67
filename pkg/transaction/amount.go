package transaction

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultForeignRate is the COP conversion applied to amounts written
// with a decimal comma, which the bank uses for foreign-currency
// notifications.
const DefaultForeignRate = 4000

// foreignAmount matches a comma used as a decimal point with exactly two
// decimals, e.g. "25,90".
var foreignAmount = regexp.MustCompile(`^\d+,\d{2}$`)

// AmountNormalizer converts the locale-ambiguous amount strings found in
// notification text into non-negative base-currency values. The sign is
// applied later by the transaction kind, never here.
type AmountNormalizer struct {
	// ForeignRate is the multiplier applied to decimal-comma amounts.
	// Zero means DefaultForeignRate.
	ForeignRate float64
}

// Normalize parses an amount string such as "$57.000,00", "57,000.00",
// "25,90" or "$999.999".
//
// When both separators appear, the string is truncated at the first one
// and the leading group is kept as-is. This mirrors the accounting
// convention the downstream aggregates were built on; it is not a full
// decimal parser.
func (n AmountNormalizer) Normalize(text string) float64 {
	s := strings.TrimSpace(strings.ReplaceAll(text, "$", ""))
	comma := strings.Index(s, ",")
	dot := strings.Index(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma < dot {
			s = s[:comma]
		} else {
			s = s[:dot]
		}

	case foreignAmount.MatchString(s):
		v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0
		}
		return v * n.rate()
	}

	s = strings.NewReplacer(",", "", ".", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (n AmountNormalizer) rate() float64 {
	if n.ForeignRate > 0 {
		return n.ForeignRate
	}
	return DefaultForeignRate
}
