package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bloodbridge/procurement/internal/adapter/directory"
	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/usecase"
)

// ProcurementFacade aggregates the public operation set consumed by the HTTP
// layer and the expiry sweeper.
type ProcurementFacade struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderUseCase
	stats     *usecase.StatsUseCase
	directory directory.Client
	logger    *slog.Logger
}

func NewProcurementFacade(auth *usecase.AuthUseCase, orders *usecase.OrderUseCase, stats *usecase.StatsUseCase, dir directory.Client, logger *slog.Logger) *ProcurementFacade {
	return &ProcurementFacade{auth: auth, orders: orders, stats: stats, directory: dir, logger: logger}
}

func (f *ProcurementFacade) Register(ctx context.Context, login, password string, role model.Role, scopeID string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password, role, scopeID)
	return token, err
}

func (f *ProcurementFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *ProcurementFacade) ResolvePrincipal(token string) (model.Principal, error) {
	return f.auth.ResolvePrincipal(token)
}

// CreateOrder denormalizes the source display name from the directory when it
// is known there, then delegates to the order lifecycle.
func (f *ProcurementFacade) CreateOrder(ctx context.Context, draft model.Draft, principal model.Principal) (*model.Order, error) {
	name, err := f.directory.ResolveName(ctx, draft.Source.Type, draft.Source.ID)
	switch {
	case err == nil:
		draft.Source.Name = name
	case errors.Is(err, directory.ErrSourceUnknown):
		// Keep the caller-supplied name.
	default:
		f.logger.Warn("directory lookup failed, keeping submitted source name",
			slog.String("source_id", draft.Source.ID), slog.String("error", err.Error()))
	}
	return f.orders.Create(ctx, draft, principal)
}

func (f *ProcurementFacade) Order(ctx context.Context, id string, principal model.Principal) (*model.Order, error) {
	return f.orders.Get(ctx, id, principal)
}

func (f *ProcurementFacade) Orders(ctx context.Context, filters model.RequestedFilters, principal model.Principal) ([]model.Order, error) {
	return f.orders.List(ctx, filters, principal)
}

func (f *ProcurementFacade) TransitionOrder(ctx context.Context, id string, next model.Status, principal model.Principal, note string, extra model.TransitionExtra) (*model.Order, error) {
	return f.orders.Transition(ctx, id, next, principal, note, extra)
}

func (f *ProcurementFacade) CancelOrder(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error) {
	return f.orders.Cancel(ctx, id, principal, note)
}

func (f *ProcurementFacade) Stats(ctx context.Context, filters model.RequestedFilters, principal model.Principal) (*model.StatsSummary, error) {
	return f.stats.Summary(ctx, filters, principal)
}

func (f *ProcurementFacade) ExpiredOrders(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.Expired(ctx, limit)
}
