package usecase

import (
	"context"
	"time"

	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/domain/repository"
)

// StatsUseCase computes dashboard aggregates over the caller's scope. It
// shares BuildFilter with the listing path, so a tenant's totals can never
// include another tenant's orders.
type StatsUseCase struct {
	orders repository.OrderRepository
	now    func() time.Time
}

// NewStatsUseCase constructs StatsUseCase.
func NewStatsUseCase(orders repository.OrderRepository) *StatsUseCase {
	return &StatsUseCase{orders: orders, now: time.Now}
}

// Summary aggregates counts, revenue and distributions for the principal.
func (u *StatsUseCase) Summary(ctx context.Context, requested model.RequestedFilters, principal model.Principal) (*model.StatsSummary, error) {
	day, week, month := windowBoundaries(u.now())
	return u.orders.Stats(ctx, BuildFilter(principal, requested), day, week, month)
}

// windowBoundaries derives rolling window starts from the server clock:
// start of today, of the ISO week (Monday) and of the calendar month.
func windowBoundaries(now time.Time) (day, week, month time.Time) {
	day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	week = day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	month = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return day, week, month
}
