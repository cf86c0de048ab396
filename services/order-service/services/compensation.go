package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reservedLine records one successful stock reservation made during
// checkout, so it can be undone if a later step fails.
type reservedLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// compensationLog accumulates reservations in the order they were made and
// releases them in reverse on rollback.
type compensationLog struct {
	lines    []reservedLine
	releaser StockReleaser
	logger   *zap.Logger
}

func newCompensationLog(releaser StockReleaser, logger *zap.Logger) *compensationLog {
	return &compensationLog{releaser: releaser, logger: logger}
}

func (l *compensationLog) record(productID uuid.UUID, quantity int) {
	l.lines = append(l.lines, reservedLine{ProductID: productID, Quantity: quantity})
}

// rollback releases every recorded reservation in reverse order. A failed
// release is logged and the sweep continues, so one bad line cannot strand
// the others.
func (l *compensationLog) rollback(ctx context.Context) {
	for i := len(l.lines) - 1; i >= 0; i-- {
		line := l.lines[i]
		if err := l.releaser.Release(ctx, line.ProductID, line.Quantity); err != nil {
			l.logger.Error("compensation release failed",
				zap.String("product_id", line.ProductID.String()),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
		}
	}
	l.lines = nil
}
