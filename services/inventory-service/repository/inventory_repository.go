package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketfold/marketplace-backend/services/inventory-service/models"
)

var (
	ErrNotFound          = errors.New("inventory record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("reserved stock underflow")
)

// InventoryRepository defines atomic, oversell-safe access to stock counters.
// Every conditional operation is a single check-and-update statement; callers
// never read-then-write across two calls.
type InventoryRepository interface {
	Get(ctx context.Context, productID uuid.UUID) (*models.Inventory, error)
	// InitOrReset creates the row if absent, else resets quantity and zeroes reserved.
	InitOrReset(ctx context.Context, productID uuid.UUID, quantity int) error
	// Reserve earmarks stock for a checkout. Fails with ErrInsufficientStock
	// unless quantity - reserved >= qty.
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
	// Release returns earmarked stock. Fails with ErrInvalidState unless
	// reserved >= qty; an underflow is a logic bug upstream, never clamped.
	Release(ctx context.Context, productID uuid.UUID, qty int) error
	// Consume turns a reservation into a permanent decrement: both quantity
	// and reserved drop by qty. Requires reserved >= qty and quantity >= qty.
	Consume(ctx context.Context, productID uuid.UUID, qty int) error
	// AddStock restocks; also used to undo a consumed sale on cancellation/return.
	AddStock(ctx context.Context, productID uuid.UUID, qty int) error
	// DecreaseStock removes owned stock independent of reservations. Requires
	// quantity >= qty.
	DecreaseStock(ctx context.Context, productID uuid.UUID, qty int) error
}

// GormInventoryRepository implements InventoryRepository on Postgres. Each
// guarded mutation is one conditional UPDATE; RowsAffected == 0 means the
// guard lost, so concurrent checkouts for the same product race fairly at the
// database row.
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) Get(ctx context.Context, productID uuid.UUID) (*models.Inventory, error) {
	var inv models.Inventory
	if err := r.db.WithContext(ctx).First(&inv, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *GormInventoryRepository) InitOrReset(ctx context.Context, productID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Inventory{}).
			Where("product_id = ?", productID).
			Updates(map[string]interface{}{"quantity": quantity, "reserved": 0})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.Inventory{ProductID: productID, Quantity: quantity}).Error
	})
}

func (r *GormInventoryRepository) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("product_id = ? AND quantity - reserved >= ?", productID, qty).
		UpdateColumn("reserved", gorm.Expr("reserved + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (r *GormInventoryRepository) Release(ctx context.Context, productID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("product_id = ? AND reserved >= ?", productID, qty).
		UpdateColumn("reserved", gorm.Expr("reserved - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidState
	}
	return nil
}

func (r *GormInventoryRepository) Consume(ctx context.Context, productID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("product_id = ? AND reserved >= ? AND quantity >= ?", productID, qty, qty).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - ?", qty),
			"reserved": gorm.Expr("reserved - ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidState
	}
	return nil
}

func (r *GormInventoryRepository) AddStock(ctx context.Context, productID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("product_id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormInventoryRepository) DecreaseStock(ctx context.Context, productID uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&models.Inventory{}).
		Where("product_id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}
