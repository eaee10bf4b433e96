package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/domain/repository"
)

const createAttempts = 3

// OrderUseCase owns the purchase order lifecycle: creation with a frozen
// pricing snapshot, status transitions along the legal chain, and
// cancellation.
type OrderUseCase struct {
	orders   repository.OrderRepository
	tracking *TrackingGenerator
	now      func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, tracking *TrackingGenerator) *OrderUseCase {
	return &OrderUseCase{orders: orders, tracking: tracking, now: time.Now}
}

// Create validates the draft, freezes the pricing snapshot, assigns a
// tracking number and persists the order in pending state with its first
// history entry.
func (u *OrderUseCase) Create(ctx context.Context, draft model.Draft, principal model.Principal) (*model.Order, error) {
	if verr := validateDraft(draft); verr != nil {
		return nil, verr
	}

	now := u.now()
	order := &model.Order{
		ID:            uuid.NewString(),
		PurchasedBy:   principal.UserID,
		Source:        draft.Source,
		BloodType:     draft.BloodType,
		Units:         draft.Units,
		Urgency:       draft.Urgency,
		PatientName:   draft.PatientName,
		ContactPhone:  draft.ContactPhone,
		RequiredDate:  draft.RequiredDate,
		ExpiryDate:    now.Add(model.ShelfLife),
		Pricing:       draft.Pricing,
		Status:        model.StatusPending,
		PickupDetails: draft.PickupDetails,
		PaymentStatus: "pending",
		PaymentMethod: draft.PaymentMethod,
		Notes:         draft.Notes,
		History: []model.HistoryEntry{{
			Status:    model.StatusPending,
			Timestamp: now,
			Actor:     actorLabel(principal),
			Note:      "order placed",
		}},
	}

	// The unique constraint on tracking_number is the collision backstop;
	// regenerate and re-attempt instead of failing the caller.
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		order.TrackingNumber = u.tracking.Generate()
		var created *model.Order
		created, err = u.orders.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, err
		}
	}
	return nil, err
}

// Get returns a single order if the principal may see it. Orders outside the
// principal's scope are reported as not found so their existence never leaks.
func (u *OrderUseCase) Get(ctx context.Context, id string, principal model.Principal) (*model.Order, error) {
	order, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Visible(principal, order) {
		return nil, domainErrors.ErrNotFound
	}
	return order, nil
}

// List returns orders within the principal's scope, newest first.
func (u *OrderUseCase) List(ctx context.Context, requested model.RequestedFilters, principal model.Principal) ([]model.Order, error) {
	return u.orders.List(ctx, BuildFilter(principal, requested))
}

// Transition advances the order to next, appending a history entry stamped
// with the acting principal. Plain users cannot drive fulfillment.
func (u *OrderUseCase) Transition(ctx context.Context, id string, next model.Status, principal model.Principal, note string, extra model.TransitionExtra) (*model.Order, error) {
	if !next.IsValid() {
		return nil, domainErrors.ErrInvalidTransition
	}

	order, err := u.Get(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	if principal.Kind == model.KindUser {
		return nil, domainErrors.ErrForbidden
	}

	if !order.Status.CanTransition(next) {
		return nil, domainErrors.ErrInvalidTransition
	}

	entry := model.HistoryEntry{
		Status:    next,
		Timestamp: u.now(),
		Actor:     actorLabel(principal),
		Note:      note,
	}
	return u.orders.UpdateStatus(ctx, id, order.Status, next, entry, extra)
}

// Cancel moves the order to cancelled. Only the original purchaser, the
// supplying tenant's admin or a super admin may cancel; terminal orders
// conflict.
func (u *OrderUseCase) Cancel(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error) {
	order, err := u.Get(ctx, id, principal)
	if err != nil {
		return nil, err
	}

	if principal.Kind == model.KindUser && order.PurchasedBy != principal.UserID {
		return nil, domainErrors.ErrForbidden
	}

	if order.Status.IsTerminal() {
		return nil, domainErrors.ErrConflict
	}

	if note == "" {
		note = "order cancelled"
	}
	entry := model.HistoryEntry{
		Status:    model.StatusCancelled,
		Timestamp: u.now(),
		Actor:     actorLabel(principal),
		Note:      note,
	}
	return u.orders.UpdateStatus(ctx, id, order.Status, model.StatusCancelled, entry, model.TransitionExtra{})
}

// Expired returns non-terminal orders whose shelf life has lapsed.
func (u *OrderUseCase) Expired(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectExpiredBatch(ctx, u.now(), limit)
}

func actorLabel(p model.Principal) string {
	switch p.Kind {
	case model.KindSuperAdmin:
		return "super_admin"
	case model.KindOrgAdmin, model.KindHospitalAdmin:
		return fmt.Sprintf("%s:%s", p.Kind, p.ScopeID)
	default:
		return fmt.Sprintf("user:%d", p.UserID)
	}
}

func validateDraft(draft model.Draft) *domainErrors.ValidationError {
	verr := &domainErrors.ValidationError{}

	if !draft.Source.Type.IsValid() {
		verr.Add("source.type", "must be organization or hospital")
	}
	if strings.TrimSpace(draft.Source.ID) == "" {
		verr.Add("source.id", "is required")
	}
	if strings.TrimSpace(draft.Source.Name) == "" {
		verr.Add("source.name", "is required")
	}
	if !draft.BloodType.IsValid() {
		verr.Add("blood_type", "must be a valid blood group")
	}
	if draft.Units < 1 {
		verr.Add("units", "must be at least 1")
	}
	if !draft.Urgency.IsValid() {
		verr.Add("urgency", "must be emergency, urgent or normal")
	}
	if strings.TrimSpace(draft.PatientName) == "" {
		verr.Add("patient_name", "is required")
	}
	if strings.TrimSpace(draft.ContactPhone) == "" {
		verr.Add("contact_phone", "is required")
	}
	if draft.RequiredDate.IsZero() {
		verr.Add("required_date", "is required")
	}

	if pricingErr := ValidatePricing(draft.Pricing); pricingErr != nil {
		verr.Fields = append(verr.Fields, pricingErr.Fields...)
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
