package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleItems_ScanRoundTrip(t *testing.T) {
	items := SaleItems{
		{ProductID: "p1", Name: "Mango", Price: 3.5, Quantity: 2, Subtotal: 7},
		{ProductID: "p2", Name: "Papaya", Price: 5, Quantity: 1, Subtotal: 5},
	}

	v, err := items.Value()
	require.NoError(t, err)

	var scanned SaleItems
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, items, scanned)
	assert.Equal(t, 12.0, scanned.Total())
}

func TestSaleItems_ScanNil(t *testing.T) {
	var s SaleItems
	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
}

func TestSaleItems_NilValueIsEmptyArray(t *testing.T) {
	var s SaleItems
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}
