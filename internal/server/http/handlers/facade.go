package handlers

import (
	"context"

	"github.com/bloodbridge/procurement/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string, role model.Role, scopeID string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ResolvePrincipal(token string) (model.Principal, error)
}

// OrderFacade encapsulates order lifecycle operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, draft model.Draft, principal model.Principal) (*model.Order, error)
	Order(ctx context.Context, id string, principal model.Principal) (*model.Order, error)
	Orders(ctx context.Context, filters model.RequestedFilters, principal model.Principal) ([]model.Order, error)
	TransitionOrder(ctx context.Context, id string, next model.Status, principal model.Principal, note string, extra model.TransitionExtra) (*model.Order, error)
	CancelOrder(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error)
}

// StatsFacade provides scoped dashboard aggregates.
type StatsFacade interface {
	Stats(ctx context.Context, filters model.RequestedFilters, principal model.Principal) (*model.StatsSummary, error)
}

// ProcurementFacade aggregates the full set of operations used across handlers.
type ProcurementFacade interface {
	AuthFacade
	OrderFacade
	StatsFacade
}
