package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUnmarshal_QuantityDefaultsToOne(t *testing.T) {
	cases := map[string]string{
		"missing": `{"name":"tea","unitPrice":3}`,
		"zero":    `{"name":"tea","unitPrice":3,"quantity":0}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var it Item
			require.NoError(t, json.Unmarshal([]byte(body), &it))
			assert.Equal(t, 1, it.Quantity)
			assert.True(t, it.LineTotal().Equal(decimal.NewFromInt(3)), it.LineTotal().String())
		})
	}
}

func TestItemUnmarshal_AssigneeForms(t *testing.T) {
	var it Item
	body := `{"name":"wine","price":12.5,"quantity":2,"assignees":["a",{"user":"b"}]}`
	require.NoError(t, json.Unmarshal([]byte(body), &it))

	assert.Equal(t, 2, it.Quantity)
	assert.Equal(t, []string{"a", "b"}, it.AssigneeIDs)
	assert.True(t, it.LineTotal().Equal(decimal.RequireFromString("25")), it.LineTotal().String())
}

func TestItemLineTotal_ZeroQuantity(t *testing.T) {
	it := Item{UnitPrice: decimal.RequireFromString("4.50")}
	assert.True(t, it.LineTotal().Equal(decimal.RequireFromString("4.5")))
}
