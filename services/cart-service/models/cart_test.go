package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(sellerID uuid.UUID, qty int, price string) CartItem {
	return CartItem{
		ProductID:  uuid.New(),
		SellerID:   sellerID,
		Quantity:   qty,
		PriceAtAdd: dec(price),
	}
}

func TestUpsert_MergesSameProduct(t *testing.T) {
	cart := &Cart{UserID: uuid.New()}
	line := item(uuid.New(), 2, "10.00")
	cart.Upsert(line)

	// Same product again, even at a different price, bumps quantity and
	// keeps the original price.
	line2 := line
	line2.Quantity = 3
	line2.PriceAtAdd = dec("12.00")
	cart.Upsert(line2)

	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, dec("10.00").Equal(cart.Items[0].PriceAtAdd))
}

func TestSetQuantity_ZeroRemovesLine(t *testing.T) {
	cart := &Cart{UserID: uuid.New()}
	line := item(uuid.New(), 2, "10.00")
	cart.Upsert(line)

	assert.True(t, cart.SetQuantity(line.ProductID, 0))
	assert.True(t, cart.IsEmpty())
	assert.False(t, cart.SetQuantity(line.ProductID, 1))
}

func TestSubtotal(t *testing.T) {
	seller := uuid.New()
	cart := &Cart{UserID: uuid.New()}
	cart.Upsert(item(seller, 2, "10.50"))
	cart.Upsert(item(seller, 1, "4.99"))

	assert.True(t, dec("25.99").Equal(cart.Subtotal()))
}

func TestItemsBySeller_StableOrder(t *testing.T) {
	sellerA := uuid.New()
	sellerB := uuid.New()
	cart := &Cart{UserID: uuid.New()}
	cart.Upsert(item(sellerA, 1, "10.00"))
	cart.Upsert(item(sellerB, 2, "5.00"))
	cart.Upsert(item(sellerA, 3, "1.00"))

	groups := cart.ItemsBySeller()
	assert.Len(t, groups, 2)
	assert.True(t, groups[0].SellerID.String() < groups[1].SellerID.String())

	for _, g := range groups {
		switch g.SellerID {
		case sellerA:
			assert.Len(t, g.Items, 2)
			assert.True(t, dec("13.00").Equal(g.Subtotal))
		case sellerB:
			assert.Len(t, g.Items, 1)
			assert.True(t, dec("10.00").Equal(g.Subtotal))
		default:
			t.Fatalf("unexpected seller %s", g.SellerID)
		}
	}

	// Same contents in a different insertion order yields the same grouping.
	other := &Cart{UserID: cart.UserID}
	other.Upsert(cart.Items[1])
	other.Upsert(cart.Items[0])
	other.Upsert(cart.Items[2])
	regrouped := other.ItemsBySeller()
	assert.Equal(t, groups[0].SellerID, regrouped[0].SellerID)
	assert.Equal(t, groups[1].SellerID, regrouped[1].SellerID)
}
