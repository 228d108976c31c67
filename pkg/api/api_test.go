package api

import (
	"testing"
	"time"
)

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	if len(s.Buckets) != len(Kinds) {
		t.Fatalf("got %d buckets, want %d", len(s.Buckets), len(Kinds))
	}
	for _, k := range Kinds {
		b, ok := s.Buckets[k]
		if !ok {
			t.Errorf("missing bucket for %v", k)
			continue
		}
		if b.Name != k.String() || b.Amount != 0 || b.Count != 0 {
			t.Errorf("bucket %v = %+v, want zeroed %q bucket", k, b, k.String())
		}
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	records := []TransactionRecord{
		{Kind: KindPurchase, Amount: -57, Counterparty: "TIENDA XYZ", OccurredAt: now},
		{Kind: KindPurchase, Amount: -10000, Counterparty: "TIENDA", OccurredAt: now},
		{Kind: KindIncomingTransfer, Amount: 999999, Counterparty: "PEDRO PEREZ", OccurredAt: now},
		{Kind: KindWithdrawal, Amount: -200000, Counterparty: "CAJERO", OccurredAt: now},
	}

	s := Summarize(records)

	want := map[Kind]Bucket{
		KindPurchase:         {Name: "Compra", Amount: -10057, Count: 2},
		KindWithdrawal:       {Name: "Retiro", Amount: -200000, Count: 1},
		KindPayment:          {Name: "Pago"},
		KindIncomingTransfer: {Name: "Recepcion Transferencia", Amount: 999999, Count: 1},
		KindQRTransfer:       {Name: "QR"},
		KindOutgoingTransfer: {Name: "Transferencia"},
	}
	for k, wb := range want {
		if gb := s.Buckets[k]; gb != wb {
			t.Errorf("bucket %v = %+v, want %+v", k, gb, wb)
		}
	}
}

// Summarize is a pure fold: the same input always yields the same
// buckets, and records of an unrecognized kind are ignored.
func TestSummarizeStable(t *testing.T) {
	records := []TransactionRecord{
		{Kind: KindPurchase, Amount: -100},
		{Kind: KindUnknown, Amount: -999},
	}

	a := Summarize(records)
	b := Summarize(records)

	for _, k := range Kinds {
		if a.Buckets[k] != b.Buckets[k] {
			t.Errorf("bucket %v differs across runs: %+v vs %+v", k, a.Buckets[k], b.Buckets[k])
		}
	}
	if _, ok := a.Buckets[KindUnknown]; ok {
		t.Error("summary has a bucket for KindUnknown")
	}
	if got := a.Buckets[KindPurchase]; got.Count != 1 || got.Amount != -100 {
		t.Errorf("purchase bucket = %+v, want count 1 amount -100", got)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindPurchase, "Compra"},
		{KindWithdrawal, "Retiro"},
		{KindPayment, "Pago"},
		{KindIncomingTransfer, "Recepcion Transferencia"},
		{KindQRTransfer, "QR"},
		{KindOutgoingTransfer, "Transferencia"},
		{KindUnknown, "unknown"},
		{Kind(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}

func TestIsIncome(t *testing.T) {
	for _, k := range Kinds {
		want := k == KindIncomingTransfer
		if got := k.IsIncome(); got != want {
			t.Errorf("%v.IsIncome() = %v, want %v", k, got, want)
		}
	}
}
