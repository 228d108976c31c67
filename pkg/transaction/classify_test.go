package transaction

import (
	"testing"

	"github.com/caaosorio/expenses/pkg/api"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			"purchase notification",
			"Bancolombia le informa Compra por $57.000,00 en TIENDA XYZ 19:45. 31/07/2023 T.Cred *1234.",
			true,
		},
		{
			"qr transfer notification",
			"Realizaste una transferencia con QR por $150.000,00, desde cta 9999 a cta 0000.",
			true,
		},
		{
			"missing amount symbol",
			"Bancolombia le informa Compra por 57.000 en TIENDA XYZ.",
			false,
		},
		{
			"missing announcement phrase",
			"Compra por $57.000,00 en TIENDA XYZ.",
			false,
		},
		{
			"missing kind keyword",
			"Bancolombia le informa que su extracto por $0 esta disponible.",
			false,
		},
		{
			"newsletter",
			"Conoce los beneficios de tu tarjeta Bancolombia.",
			false,
		},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValid(tc.text); got != tc.want {
				t.Errorf("IsValid(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want api.Kind
	}{
		{"purchase", "Bancolombia le informa Compra por $57.000 en TIENDA.", api.KindPurchase},
		{"withdrawal", "Bancolombia le informa Retiro por $200.000 en CAJERO.", api.KindWithdrawal},
		{"payment", "Bancolombia te informa Pago por $99,999.00 a ESTABLECIMIENTO COM desde producto *9999.", api.KindPayment},
		{
			"incoming transfer",
			"Bancolombia te informa recepcion transferencia de PEDRO PEREZ por $999,999 en la cuenta *9999.",
			api.KindIncomingTransfer,
		},
		{
			"qr transfer",
			"Realizaste una transferencia con QR por $150.000,00, desde cta 9999 a cta 0000.",
			api.KindQRTransfer,
		},
		{
			"outgoing transfer",
			"Bancolombia le informa Transferencia por $500,000 desde cta *1234 a cta 987654321.",
			api.KindOutgoingTransfer,
		},
		{"case insensitive", "BANCOLOMBIA LE INFORMA COMPRA POR $1.000 EN X.", api.KindPurchase},
		{"no keyword", "Su clave dinamica es 123456.", api.KindUnknown},
		{"empty", "", api.KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.text); got != tc.want {
				t.Errorf("Classify(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

// The bare "transferencia" keyword must never shadow the more specific
// reception and QR contexts that contain it as a substring.
func TestClassifyKeywordPrecedence(t *testing.T) {
	incoming := "recepcion transferencia de ALGUIEN por $10.000 en la cuenta *0001."
	if got := Classify(incoming); got != api.KindIncomingTransfer {
		t.Errorf("Classify(reception) = %v, want %v", got, api.KindIncomingTransfer)
	}

	qr := "transferencia con QR por $10.000, desde cta 0001 a cta 0002."
	if got := Classify(qr); got != api.KindQRTransfer {
		t.Errorf("Classify(qr) = %v, want %v", got, api.KindQRTransfer)
	}
}
