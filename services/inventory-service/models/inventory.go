package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory is the per-product stock ledger row.
//
// Quantity is the total owned stock; Reserved is the portion earmarked for
// in-flight checkouts. Invariant: 0 <= Reserved <= Quantity at all times,
// enforced by the repository's conditional updates.
type Inventory struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	Reserved  int       `gorm:"not null;default:0" json:"reserved"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventory"
}

// Available is the stock a new checkout may still reserve.
func (i *Inventory) Available() int {
	return i.Quantity - i.Reserved
}

// InventoryResponse is the HTTP view of a ledger row.
type InventoryResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Reserved  int       `json:"reserved"`
	Available int       `json:"available"`
}

// AdjustStockRequest carries a quantity for init/add/decrease/reserve/release/consume calls.
type AdjustStockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}
