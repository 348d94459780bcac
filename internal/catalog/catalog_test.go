package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		wantName string
		wantKey  string
	}{
		{name: "known category", key: "food", wantName: "Alimentação", wantKey: "food"},
		{name: "housing", key: "housing", wantName: "Casa", wantKey: "housing"},
		{name: "unmatched key", key: "crypto", wantName: Unknown.Name, wantKey: UnknownKey},
		{name: "empty key", key: "", wantName: Unknown.Name, wantKey: UnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lookup(tt.key)
			assert.Equal(t, tt.wantKey, got.Key)
			assert.Equal(t, tt.wantName, got.Name)
		})
	}
}

func TestAll_ReturnsCopyInOrder(t *testing.T) {
	all := All()
	assert.Equal(t, Keys(), func() []string {
		keys := make([]string, len(all))
		for i, c := range all {
			keys[i] = c.Key
		}
		return keys
	}())

	all[0].Name = "mutated"
	assert.NotEqual(t, "mutated", All()[0].Name)
}

func TestHas(t *testing.T) {
	assert.True(t, Has("salary"))
	assert.False(t, Has(UnknownKey))
	assert.False(t, Has("category"))
}
