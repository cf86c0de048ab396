package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketfold/marketplace-backend/services/inventory-service/models"
)

// MemoryInventoryRepository is a mutex-per-product implementation of
// InventoryRepository. It backs tests and single-node deployments without a
// database; the conditional-update contract is identical to the Postgres
// implementation.
type MemoryInventoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*memoryRecord
}

type memoryRecord struct {
	mu       sync.Mutex
	quantity int
	reserved int
}

func NewMemoryInventoryRepository() *MemoryInventoryRepository {
	return &MemoryInventoryRepository{records: make(map[uuid.UUID]*memoryRecord)}
}

func (r *MemoryInventoryRepository) record(productID uuid.UUID) (*memoryRecord, bool) {
	r.mu.RLock()
	rec, ok := r.records[productID]
	r.mu.RUnlock()
	return rec, ok
}

func (r *MemoryInventoryRepository) Get(_ context.Context, productID uuid.UUID) (*models.Inventory, error) {
	rec, ok := r.record(productID)
	if !ok {
		return nil, ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return &models.Inventory{
		ProductID: productID,
		Quantity:  rec.quantity,
		Reserved:  rec.reserved,
		UpdatedAt: time.Now(),
	}, nil
}

func (r *MemoryInventoryRepository) InitOrReset(_ context.Context, productID uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[productID]; ok {
		rec.mu.Lock()
		rec.quantity = quantity
		rec.reserved = 0
		rec.mu.Unlock()
		return nil
	}
	r.records[productID] = &memoryRecord{quantity: quantity}
	return nil
}

func (r *MemoryInventoryRepository) Reserve(_ context.Context, productID uuid.UUID, qty int) error {
	rec, ok := r.record(productID)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.quantity-rec.reserved < qty {
		return ErrInsufficientStock
	}
	rec.reserved += qty
	return nil
}

func (r *MemoryInventoryRepository) Release(_ context.Context, productID uuid.UUID, qty int) error {
	rec, ok := r.record(productID)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.reserved < qty {
		return ErrInvalidState
	}
	rec.reserved -= qty
	return nil
}

func (r *MemoryInventoryRepository) Consume(_ context.Context, productID uuid.UUID, qty int) error {
	rec, ok := r.record(productID)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.reserved < qty || rec.quantity < qty {
		return ErrInvalidState
	}
	rec.reserved -= qty
	rec.quantity -= qty
	return nil
}

func (r *MemoryInventoryRepository) AddStock(_ context.Context, productID uuid.UUID, qty int) error {
	rec, ok := r.record(productID)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.quantity += qty
	return nil
}

func (r *MemoryInventoryRepository) DecreaseStock(_ context.Context, productID uuid.UUID, qty int) error {
	rec, ok := r.record(productID)
	if !ok {
		return ErrNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.quantity < qty {
		return ErrInsufficientStock
	}
	rec.quantity -= qty
	return nil
}
