package test

import (
	"context"
	"time"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
)

// UserRepositoryStub backs the account repository with function fields.
type UserRepositoryStub struct {
	CreateFn     func(ctx context.Context, login, passwordHash string, role model.Role, scopeID string) (*model.User, error)
	GetByLoginFn func(ctx context.Context, login string) (*model.User, error)
	GetByIDFn    func(ctx context.Context, id int64) (*model.User, error)
}

// Create delegates to provided function or echoes a fresh account.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role, scopeID string) (*model.User, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, login, passwordHash, role, scopeID)
	}
	return &model.User{ID: 1, Login: login, PasswordHash: passwordHash, Role: role, ScopeID: scopeID}, nil
}

// GetByLogin delegates to provided function or reports not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.GetByLoginFn != nil {
		return s.GetByLoginFn(ctx, login)
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID delegates to provided function or reports not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub backs the order repository with function fields.
type OrderRepositoryStub struct {
	CreateFn             func(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByIDFn            func(ctx context.Context, id string) (*model.Order, error)
	ListFn               func(ctx context.Context, filter model.Filter) ([]model.Order, error)
	UpdateStatusFn       func(ctx context.Context, id string, current, next model.Status, entry model.HistoryEntry, extra model.TransitionExtra) (*model.Order, error)
	SelectExpiredBatchFn func(ctx context.Context, now time.Time, limit int) ([]model.Order, error)
	StatsFn              func(ctx context.Context, filter model.Filter, dayStart, weekStart, monthStart time.Time) (*model.StatsSummary, error)
}

// Create delegates to provided function or echoes the order.
func (s *OrderRepositoryStub) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, order)
	}
	stored := *order
	return &stored, nil
}

// GetByID delegates to provided function or reports not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	return nil, domainErrors.ErrNotFound
}

// List delegates to provided function or returns nothing.
func (s *OrderRepositoryStub) List(ctx context.Context, filter model.Filter) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, filter)
	}
	return nil, nil
}

// UpdateStatus delegates to provided function or reports not found.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id string, current, next model.Status, entry model.HistoryEntry, extra model.TransitionExtra) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, id, current, next, entry, extra)
	}
	return nil, domainErrors.ErrNotFound
}

// SelectExpiredBatch delegates to provided function or returns nothing.
func (s *OrderRepositoryStub) SelectExpiredBatch(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	if s.SelectExpiredBatchFn != nil {
		return s.SelectExpiredBatchFn(ctx, now, limit)
	}
	return nil, nil
}

// Stats delegates to provided function or returns empty figures.
func (s *OrderRepositoryStub) Stats(ctx context.Context, filter model.Filter, dayStart, weekStart, monthStart time.Time) (*model.StatsSummary, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, filter, dayStart, weekStart, monthStart)
	}
	return &model.StatsSummary{}, nil
}
