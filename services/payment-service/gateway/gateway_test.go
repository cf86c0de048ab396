package gateway

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeterministicGateway(t *testing.T) {
	accept := &DeterministicGateway{Accept: true}
	res, err := accept.Charge(context.Background(), decimal.NewFromInt(100), "UPI")
	assert.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.NotEmpty(t, res.Ref)

	decline := &DeterministicGateway{Accept: false}
	res, err = decline.Charge(context.Background(), decimal.NewFromInt(100), "UPI")
	assert.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.NotEmpty(t, res.Reason)
	assert.Empty(t, res.Ref)
}

func TestProbabilisticGateway_Extremes(t *testing.T) {
	always := NewProbabilisticGateway(1.0, 1)
	never := NewProbabilisticGateway(0.0, 1)

	for i := 0; i < 50; i++ {
		res, err := always.Charge(context.Background(), decimal.NewFromInt(10), "CARD")
		assert.NoError(t, err)
		assert.True(t, res.Accepted)

		res, err = never.Charge(context.Background(), decimal.NewFromInt(10), "CARD")
		assert.NoError(t, err)
		assert.False(t, res.Accepted)
	}
}
