package transaction

import (
	"errors"
	"testing"

	"github.com/caaosorio/expenses/pkg/api"
)

func TestProcess(t *testing.T) {
	p := NewProcessor(0, nil)

	text := "Bancolombia le informa Compra por $57.000,00 en TIENDA XYZ 19:45. 31/07/2023 T.Cred *1234. Inquietudes al 018000931987."
	got, err := p.Process(text, receivedAt)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := api.TransactionRecord{
		Kind:         api.KindPurchase,
		Amount:       -57,
		Counterparty: "TIENDA XYZ",
		Instrument:   "T.Cred *1234",
		OccurredAt:   receivedAt,
	}
	if got != want {
		t.Errorf("Process\n got  %+v\n want %+v", got, want)
	}
}

func TestProcessRejectsNonTransactions(t *testing.T) {
	p := NewProcessor(0, nil)

	texts := []string{
		"Conoce los beneficios de tu tarjeta Bancolombia.",
		"Su clave dinamica es 123456.",
		"Bancolombia le informa Compra por 57.000 en TIENDA.",
		"",
	}
	for _, text := range texts {
		if _, err := p.Process(text, receivedAt); !errors.Is(err, ErrNotTransaction) {
			t.Errorf("Process(%q) error = %v, want ErrNotTransaction", text, err)
		}
	}
}

func TestProcessForeignCurrency(t *testing.T) {
	rate := 3950.0
	p := NewProcessor(rate, nil)

	text := "Bancolombia le informa Compra por $25,90 en PAYU*NETFLIX. Inquietudes al 018000931987."
	got, err := p.Process(text, receivedAt)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if want := -25.90 * rate; got.Amount != want {
		t.Errorf("Amount = %v, want %v", got.Amount, want)
	}
	if got.Counterparty != "PAYU*NETFLIX" {
		t.Errorf("Counterparty = %q, want %q", got.Counterparty, "PAYU*NETFLIX")
	}
}
