package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a single product line in a user's cart. PriceAtAdd is the unit
// price captured when the item entered the cart and is what checkout charges.
type CartItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	SellerID   uuid.UUID       `json:"seller_id"`
	Quantity   int             `json:"quantity"`
	PriceAtAdd decimal.Decimal `json:"price_at_add"`
}

// LineTotal is PriceAtAdd multiplied by Quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.PriceAtAdd.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Cart struct {
	UserID    uuid.UUID  `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal sums all line totals in the cart.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].LineTotal())
	}
	return total
}

// Upsert adds the item, or bumps the quantity if the product is already in
// the cart. An existing line keeps its original PriceAtAdd.
func (c *Cart) Upsert(item CartItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// SetQuantity replaces the quantity of a product line. Setting zero removes
// the line. It reports whether the product was present.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity == 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
			} else {
				c.Items[i].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// Remove deletes a product line. It reports whether the product was present.
func (c *Cart) Remove(productID uuid.UUID) bool {
	return c.SetQuantity(productID, 0)
}

// SellerGroup is the slice of cart items belonging to one seller, with their
// combined subtotal.
type SellerGroup struct {
	SellerID uuid.UUID
	Items    []CartItem
	Subtotal decimal.Decimal
}

// ItemsBySeller partitions the cart by seller. Groups are ordered by seller
// ID string so the result is stable for the same cart contents.
func (c *Cart) ItemsBySeller() []SellerGroup {
	bySeller := make(map[uuid.UUID][]CartItem)
	for _, item := range c.Items {
		bySeller[item.SellerID] = append(bySeller[item.SellerID], item)
	}

	sellerIDs := make([]uuid.UUID, 0, len(bySeller))
	for id := range bySeller {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Slice(sellerIDs, func(i, j int) bool {
		return sellerIDs[i].String() < sellerIDs[j].String()
	})

	groups := make([]SellerGroup, 0, len(sellerIDs))
	for _, id := range sellerIDs {
		items := bySeller[id]
		subtotal := decimal.Zero
		for i := range items {
			subtotal = subtotal.Add(items[i].LineTotal())
		}
		groups = append(groups, SellerGroup{SellerID: id, Items: items, Subtotal: subtotal})
	}
	return groups
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID  uuid.UUID       `json:"product_id" binding:"required"`
	SellerID   uuid.UUID       `json:"seller_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	PriceAtAdd decimal.Decimal `json:"price_at_add" binding:"required"`
}

// UpdateItemRequest is the payload for changing a line's quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}
