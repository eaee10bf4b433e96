package repository

import (
	"context"
	"time"

	"github.com/bloodbridge/procurement/internal/domain/model"
)

// OrderRepository describes persistence operations with purchase orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, filter model.Filter) ([]model.Order, error)

	// UpdateStatus sets the new status and appends the history entry in a
	// single conditional update keyed on the expected current status.
	// Returns ErrConflict when the row exists but the status moved.
	UpdateStatus(ctx context.Context, id string, current, next model.Status, entry model.HistoryEntry, extra model.TransitionExtra) (*model.Order, error)

	// SelectExpiredBatch claims non-terminal orders past their expiry date.
	SelectExpiredBatch(ctx context.Context, now time.Time, limit int) ([]model.Order, error)

	Stats(ctx context.Context, filter model.Filter, dayStart, weekStart, monthStart time.Time) (*model.StatsSummary, error)
}
