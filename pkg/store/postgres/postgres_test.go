package postgres

import (
	"testing"

	"github.com/caaosorio/expenses/pkg/api"
)

func TestKindFromName(t *testing.T) {
	// Round trip for every stored kind name.
	for _, k := range api.Kinds {
		if got := kindFromName(k.String()); got != k {
			t.Errorf("kindFromName(%q) = %v, want %v", k.String(), got, k)
		}
	}

	if got := kindFromName("no such kind"); got != api.KindUnknown {
		t.Errorf("kindFromName(unmatched) = %v, want KindUnknown", got)
	}
}
