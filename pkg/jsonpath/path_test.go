package jsonpath

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sample() map[string]interface{} {
	var data map[string]interface{}
	_ = json.Unmarshal([]byte(`{
		"name": "PO-10",
		"vendor": {"name": "Acme", "accountNumber": "AW001"},
		"purchaseOrderDetails": [
			{"orderQty": 3},
			{"orderQty": 7, "tags": ["a", "b"]}
		]
	}`), &data)
	return data
}

func TestLookup(t *testing.T) {
	data := sample()

	cases := []struct {
		path string
		want interface{}
		ok   bool
	}{
		{"name", "PO-10", true},
		{"vendor.accountNumber", "AW001", true},
		{"purchaseOrderDetails[1].orderQty", float64(7), true},
		{"purchaseOrderDetails[1].tags[0]", "a", true},
		{"purchaseOrderDetails[5].orderQty", nil, false},
		{"vendor.missing", nil, false},
		{"name.deeper", nil, false},
	}

	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			got, ok := Lookup(data, c.path)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestLookup_EmptyPathReturnsRoot(t *testing.T) {
	data := sample()
	got, ok := Lookup(data, "  ")
	assert.True(t, ok)
	assert.Equal(t, data, got)
}

func TestToFloat(t *testing.T) {
	f, ok := ToFloat(json.Number("12.5"))
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)

	f, ok = ToFloat("42")
	assert.True(t, ok)
	assert.Equal(t, float64(42), f)

	_, ok = ToFloat("abc")
	assert.False(t, ok)

	_, ok = ToFloat(true)
	assert.False(t, ok)
}
