// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderItemsScanFromBytesAndString(t *testing.T) {
	payload := `[{"id":"euro-0","name":"Zyn Cool Mint","strength":"6mg","quantity":10}]`
	expected := OrderItems{{ProductID: "euro-0", Name: "Zyn Cool Mint", Strength: "6mg", Quantity: 10}}

	var fromBytes OrderItems
	require.NoError(t, fromBytes.Scan([]byte(payload)))
	assert.Equal(t, expected, fromBytes)

	// The sqlite driver hands the column back as a string.
	var fromString OrderItems
	require.NoError(t, fromString.Scan(payload))
	assert.Equal(t, expected, fromString)

	var fromNil OrderItems
	require.NoError(t, fromNil.Scan(nil))
	assert.Nil(t, fromNil)
}

func TestOrderItemsScanRejectsUnknownType(t *testing.T) {
	var items OrderItems
	assert.Error(t, items.Scan(42))
}

func TestOrderItemsValue(t *testing.T) {
	items := OrderItems{{ProductID: "euro-0", Name: "Zyn Cool Mint", Strength: "6mg", Quantity: 10}}

	value, err := items.Value()
	require.NoError(t, err)
	assert.JSONEq(t,
		`[{"id":"euro-0","name":"Zyn Cool Mint","strength":"6mg","quantity":10}]`,
		string(value.([]byte)))

	var empty OrderItems
	nilValue, err := empty.Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)
}
