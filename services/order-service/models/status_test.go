package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPlaced, StatusConfirmed},
		{StatusPlaced, StatusShipped},
		{StatusPlaced, StatusCancelled},
		{StatusConfirmed, StatusShipped},
		{StatusConfirmed, StatusCancelled},
		{StatusShipped, StatusDelivered},
		{StatusDelivered, StatusReturned},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPlaced, StatusDelivered},
		{StatusPlaced, StatusReturned},
		{StatusConfirmed, StatusDelivered},
		{StatusShipped, StatusCancelled},
		{StatusShipped, StatusReturned},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPlaced},
		{StatusReturned, StatusPlaced},
		{StatusConfirmed, StatusPlaced},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusReturned.IsTerminal())
	assert.False(t, StatusPlaced.IsTerminal())
	assert.False(t, StatusDelivered.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("SHIPPED")
	assert.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)
	_, err = ParseStatus("UNKNOWN")
	assert.Error(t, err)
}
