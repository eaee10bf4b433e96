package test

import (
	"context"
	"sync"
	"time"

	"github.com/bloodbridge/procurement/internal/domain/model"
)

// AuthFacadeStub provides controllable behaviour for auth endpoints.
type AuthFacadeStub struct {
	RegisterFn         func(context.Context, string, string, model.Role, string) (string, error)
	AuthenticateFn     func(context.Context, string, string) (string, error)
	ResolvePrincipalFn func(string) (model.Principal, error)
}

// Register delegates to provided function or returns a default token.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string, role model.Role, scopeID string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password, role, scopeID)
	}
	return "stub-token", nil
}

// Authenticate delegates to provided function or returns a default token.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "stub-token", nil
}

// ResolvePrincipal delegates to provided function or returns a plain user.
func (s AuthFacadeStub) ResolvePrincipal(token string) (model.Principal, error) {
	if s.ResolvePrincipalFn != nil {
		return s.ResolvePrincipalFn(token)
	}
	return model.Principal{Kind: model.KindUser, UserID: 1}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn     func(context.Context, model.Draft, model.Principal) (*model.Order, error)
	OrderFn      func(context.Context, string, model.Principal) (*model.Order, error)
	OrdersFn     func(context.Context, model.RequestedFilters, model.Principal) ([]model.Order, error)
	TransitionFn func(context.Context, string, model.Status, model.Principal, string, model.TransitionExtra) (*model.Order, error)
	CancelFn     func(context.Context, string, model.Principal, string) (*model.Order, error)
}

// CreateOrder delegates to provided function or returns a pending order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, draft model.Draft, principal model.Principal) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, draft, principal)
	}
	return SampleOrder(principal.UserID), nil
}

// Order delegates to provided function or returns a pending order.
func (s OrderFacadeStub) Order(ctx context.Context, id string, principal model.Principal) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id, principal)
	}
	return SampleOrder(principal.UserID), nil
}

// Orders delegates to provided function or returns one order.
func (s OrderFacadeStub) Orders(ctx context.Context, filters model.RequestedFilters, principal model.Principal) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, filters, principal)
	}
	return []model.Order{*SampleOrder(principal.UserID)}, nil
}

// TransitionOrder delegates to provided function or echoes the new status.
func (s OrderFacadeStub) TransitionOrder(ctx context.Context, id string, next model.Status, principal model.Principal, note string, extra model.TransitionExtra) (*model.Order, error) {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, id, next, principal, note, extra)
	}
	order := SampleOrder(principal.UserID)
	order.Status = next
	return order, nil
}

// CancelOrder delegates to provided function or returns a cancelled order.
func (s OrderFacadeStub) CancelOrder(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, id, principal, note)
	}
	order := SampleOrder(principal.UserID)
	order.Status = model.StatusCancelled
	return order, nil
}

// StatsFacadeStub simulates the aggregation engine.
type StatsFacadeStub struct {
	StatsFn func(context.Context, model.RequestedFilters, model.Principal) (*model.StatsSummary, error)
}

// Stats delegates to provided function or returns fixed figures.
func (s StatsFacadeStub) Stats(ctx context.Context, filters model.RequestedFilters, principal model.Principal) (*model.StatsSummary, error) {
	if s.StatsFn != nil {
		return s.StatsFn(ctx, filters, principal)
	}
	return &model.StatsSummary{
		Total:       2,
		ByStatus:    map[model.Status]int64{model.StatusPending: 1, model.StatusCompleted: 1},
		ByBloodType: map[model.BloodType]int64{model.BloodOPos: 2},
		ByUrgency:   map[model.Urgency]int64{model.UrgencyNormal: 2},
		Revenue:     2500,
	}, nil
}

// ProcurementFacadeStub aggregates all facade stubs for router level tests.
type ProcurementFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	StatsFacadeStub
}

// SweeperFacadeStub feeds expired order batches to the sweeper and records
// cancellations. Batches are consumed one per poll; afterwards it reports none.
type SweeperFacadeStub struct {
	sync.Mutex
	Batches   [][]model.Order
	Cancelled []string
	CancelFn  func(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error)
}

// ExpiredOrders pops the next prepared batch.
func (s *SweeperFacadeStub) ExpiredOrders(context.Context, int) ([]model.Order, error) {
	s.Lock()
	defer s.Unlock()
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

// CancelOrder records the cancellation or delegates to CancelFn.
func (s *SweeperFacadeStub) CancelOrder(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error) {
	s.Lock()
	s.Cancelled = append(s.Cancelled, id)
	fn := s.CancelFn
	s.Unlock()
	if fn != nil {
		return fn(ctx, id, principal, note)
	}
	order := SampleOrder(1)
	order.ID = id
	order.Status = model.StatusCancelled
	return order, nil
}

// SampleOrder builds a minimal consistent pending order owned by userID.
func SampleOrder(userID int64) *model.Order {
	now := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	return &model.Order{
		ID:             "0f1e9a36-41c8-4f36-9d0b-6a5a86c0a001",
		TrackingNumber: "BB123456-654321",
		PurchasedBy:    userID,
		Source:         model.Source{Type: model.SourceOrganization, ID: "org-1", Name: "Central Blood Bank"},
		BloodType:      model.BloodOPos,
		Units:          2,
		Urgency:        model.UrgencyNormal,
		PatientName:    "Test Patient",
		ContactPhone:   "+8801700000000",
		RequiredDate:   now.AddDate(0, 0, 3),
		ExpiryDate:     now.Add(model.ShelfLife),
		Pricing: model.Pricing{
			BloodPrice:    2000,
			ProcessingFee: 200,
			ScreeningFee:  150,
			ServiceCharge: 150,
			TotalCost:     2500,
		},
		Status: model.StatusPending,
		History: []model.HistoryEntry{{
			Status:    model.StatusPending,
			Timestamp: now,
			Actor:     "user:1",
			Note:      "order placed",
		}},
		PaymentStatus: "pending",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
