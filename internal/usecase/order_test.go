package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
)

// memOrderRepo is an in-memory OrderRepository honouring the conditional
// update contract, so lifecycle sequences can be exercised end to end.
type memOrderRepo struct {
	byID       map[string]*model.Order
	byTracking map[string]bool
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{byID: make(map[string]*model.Order), byTracking: make(map[string]bool)}
}

func (r *memOrderRepo) Create(_ context.Context, order *model.Order) (*model.Order, error) {
	if r.byTracking[order.TrackingNumber] {
		return nil, domainErrors.ErrAlreadyExists
	}
	stored := *order
	stored.History = append([]model.HistoryEntry(nil), order.History...)
	r.byID[stored.ID] = &stored
	r.byTracking[stored.TrackingNumber] = true
	result := stored
	return &result, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	result := *order
	result.History = append([]model.HistoryEntry(nil), order.History...)
	return &result, nil
}

func (r *memOrderRepo) List(_ context.Context, filter model.Filter) ([]model.Order, error) {
	var result []model.Order
	for _, order := range r.byID {
		if filter.PurchasedBy != nil && order.PurchasedBy != *filter.PurchasedBy {
			continue
		}
		if filter.SourceType != nil && order.Source.Type != *filter.SourceType {
			continue
		}
		if filter.SourceID != nil && order.Source.ID != *filter.SourceID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id string, current, next model.Status, entry model.HistoryEntry, extra model.TransitionExtra) (*model.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	if order.Status != current {
		return nil, domainErrors.ErrConflict
	}
	order.Status = next
	order.History = append(order.History, entry)
	if extra.AdminNotes != nil {
		order.AdminNotes = *extra.AdminNotes
	}
	if extra.PickupDetails != nil {
		order.PickupDetails = *extra.PickupDetails
	}
	result := *order
	result.History = append([]model.HistoryEntry(nil), order.History...)
	return &result, nil
}

func (r *memOrderRepo) SelectExpiredBatch(_ context.Context, now time.Time, limit int) ([]model.Order, error) {
	var result []model.Order
	for _, order := range r.byID {
		if order.Status.IsTerminal() || order.ExpiryDate.After(now) {
			continue
		}
		result = append(result, *order)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *memOrderRepo) Stats(context.Context, model.Filter, time.Time, time.Time, time.Time) (*model.StatsSummary, error) {
	return &model.StatsSummary{}, nil
}

func validDraft() model.Draft {
	return model.Draft{
		Source:       model.Source{Type: model.SourceOrganization, ID: "org-1", Name: "Central Blood Bank"},
		BloodType:    model.BloodOPos,
		Units:        2,
		Urgency:      model.UrgencyNormal,
		PatientName:  "Test Patient",
		ContactPhone: "+8801700000000",
		RequiredDate: time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC),
		Pricing:      validPricing(),
	}
}

func newTestOrderUseCase(repo *memOrderRepo) *OrderUseCase {
	uc := NewOrderUseCase(repo, NewTrackingGenerator("BB"))
	uc.now = func() time.Time { return time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC) }
	return uc
}

var (
	buyer      = model.Principal{Kind: model.KindUser, UserID: 1}
	otherUser  = model.Principal{Kind: model.KindUser, UserID: 2}
	orgAdmin   = model.Principal{Kind: model.KindOrgAdmin, UserID: 3, ScopeID: "org-1"}
	otherAdmin = model.Principal{Kind: model.KindOrgAdmin, UserID: 4, ScopeID: "org-2"}
	superAdmin = model.Principal{Kind: model.KindSuperAdmin}
)

func TestCreateAssignsIdentityAndPendingState(t *testing.T) {
	uc := newTestOrderUseCase(newMemOrderRepo())

	order, err := uc.Create(context.Background(), validDraft(), buyer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if order.TrackingNumber == "" || order.ID == "" {
		t.Fatal("expected identifiers to be assigned")
	}
	if order.PurchasedBy != 1 {
		t.Fatalf("expected purchaser 1, got %d", order.PurchasedBy)
	}
	if order.Status != model.StatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if len(order.History) != 1 || order.History[0].Status != model.StatusPending {
		t.Fatalf("expected single pending history entry, got %+v", order.History)
	}
	if order.History[0].Actor != "user:1" {
		t.Fatalf("unexpected actor %q", order.History[0].Actor)
	}

	wantExpiry := uc.now().Add(model.ShelfLife)
	if !order.ExpiryDate.Equal(wantExpiry) {
		t.Fatalf("expected expiry %v, got %v", wantExpiry, order.ExpiryDate)
	}
}

func TestCreateValidatesDraft(t *testing.T) {
	uc := newTestOrderUseCase(newMemOrderRepo())

	draft := validDraft()
	draft.Source.Type = "pharmacy"
	draft.Units = 0
	draft.BloodType = "Q+"
	draft.PatientName = " "

	_, err := uc.Create(context.Background(), draft, buyer)
	var verr *domainErrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	got := make(map[string]bool)
	for _, f := range verr.Fields {
		got[f.Field] = true
	}
	for _, field := range []string{"source.type", "units", "blood_type", "patient_name"} {
		if !got[field] {
			t.Fatalf("expected error on %s, got %+v", field, verr.Fields)
		}
	}
}

func TestCreateFreezesPricingSnapshot(t *testing.T) {
	uc := newTestOrderUseCase(newMemOrderRepo())

	draft := validDraft()
	draft.Pricing.TotalCost = 2500

	order, err := uc.Create(context.Background(), draft, buyer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Pricing != draft.Pricing {
		t.Fatalf("pricing snapshot changed: %+v", order.Pricing)
	}
}

type collidingRepo struct {
	*memOrderRepo
	failures int
	attempts int
}

func (r *collidingRepo) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	r.attempts++
	if r.attempts <= r.failures {
		return nil, domainErrors.ErrAlreadyExists
	}
	return r.memOrderRepo.Create(ctx, order)
}

func TestCreateRetriesTrackingCollision(t *testing.T) {
	repo := &collidingRepo{memOrderRepo: newMemOrderRepo(), failures: 2}
	uc := NewOrderUseCase(repo, NewTrackingGenerator("BB"))

	order, err := uc.Create(context.Background(), validDraft(), buyer)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if repo.attempts != 3 {
		t.Fatalf("expected 3 insert attempts, got %d", repo.attempts)
	}
	if order.TrackingNumber == "" {
		t.Fatal("expected tracking number on retried order")
	}
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := &collidingRepo{memOrderRepo: newMemOrderRepo(), failures: 10}
	uc := NewOrderUseCase(repo, NewTrackingGenerator("BB"))

	if _, err := uc.Create(context.Background(), validDraft(), buyer); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected collision error after exhausted retries, got %v", err)
	}
	if repo.attempts != createAttempts {
		t.Fatalf("expected %d attempts, got %d", createAttempts, repo.attempts)
	}
}

func TestTrackingNumbersUniqueAcrossManyOrders(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	seen := make(map[string]bool, 2500)
	for i := 0; i < 2500; i++ {
		order, err := uc.Create(context.Background(), validDraft(), buyer)
		if err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
		if seen[order.TrackingNumber] {
			t.Fatalf("duplicate tracking number %s", order.TrackingNumber)
		}
		seen[order.TrackingNumber] = true
	}
}

func TestTransitionFullChain(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, err := uc.Create(context.Background(), validDraft(), buyer)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	chain := []model.Status{model.StatusVerified, model.StatusConfirmed, model.StatusReady, model.StatusCompleted}
	for _, next := range chain {
		order, err = uc.Transition(context.Background(), order.ID, next, orgAdmin, "", model.TransitionExtra{})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
	}

	if order.Status != model.StatusCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
	if len(order.History) != 5 {
		t.Fatalf("expected 5 history entries, got %d", len(order.History))
	}
	want := []model.Status{model.StatusPending, model.StatusVerified, model.StatusConfirmed, model.StatusReady, model.StatusCompleted}
	for i, entry := range order.History {
		if entry.Status != want[i] {
			t.Fatalf("history[%d] = %s, want %s", i, entry.Status, want[i])
		}
	}
	if last := order.History[len(order.History)-1]; last.Status != order.Status {
		t.Fatalf("last history entry %s diverges from status %s", last.Status, order.Status)
	}
}

func TestTransitionHistoryGrowsByOne(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)
	before := len(order.History)

	order, err := uc.Transition(context.Background(), order.ID, model.StatusVerified, orgAdmin, "checked", model.TransitionExtra{})
	if err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if len(order.History) != before+1 {
		t.Fatalf("expected history to grow by one, got %d -> %d", before, len(order.History))
	}
	if order.History[len(order.History)-1].Note != "checked" {
		t.Fatal("expected note to be recorded on the history entry")
	}
}

func TestTransitionRejectsSkippingChain(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)

	if _, err := uc.Transition(context.Background(), order.ID, model.StatusConfirmed, orgAdmin, "", model.TransitionExtra{}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for pending->confirmed, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), order.ID)
	if stored.Status != model.StatusPending || len(stored.History) != 1 {
		t.Fatal("rejected transition must leave the order unchanged")
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	uc := newTestOrderUseCase(newMemOrderRepo())
	if _, err := uc.Transition(context.Background(), "any", "shipped", superAdmin, "", model.TransitionExtra{}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestTransitionForbiddenForPlainUser(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)
	if _, err := uc.Transition(context.Background(), order.ID, model.StatusVerified, buyer, "", model.TransitionExtra{}); !errors.Is(err, domainErrors.ErrForbidden) {
		t.Fatalf("expected forbidden for purchaser-driven fulfillment, got %v", err)
	}
}

func TestTransitionOutOfScopeReportsNotFound(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)
	if _, err := uc.Transition(context.Background(), order.ID, model.StatusVerified, otherAdmin, "", model.TransitionExtra{}); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for out-of-scope admin, got %v", err)
	}
}

func TestTerminalOrdersRejectFurtherTransitions(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)
	order, err := uc.Cancel(context.Background(), order.ID, buyer, "")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if order.Status != model.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}

	if _, err := uc.Transition(context.Background(), order.ID, model.StatusVerified, superAdmin, "", model.TransitionExtra{}); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition out of terminal state, got %v", err)
	}
	if _, err := uc.Cancel(context.Background(), order.ID, superAdmin, ""); !errors.Is(err, domainErrors.ErrConflict) {
		t.Fatalf("expected conflict on double cancel, got %v", err)
	}

	stored, _ := repo.GetByID(context.Background(), order.ID)
	if stored.Status != model.StatusCancelled || len(stored.History) != 2 {
		t.Fatal("terminal order must be left unchanged")
	}
}

func TestCancelOnlyByPurchaserOrPrivileged(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)

	if _, err := uc.Cancel(context.Background(), order.ID, otherUser, ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("foreign user must not even see the order, got %v", err)
	}

	cancelled, err := uc.Cancel(context.Background(), order.ID, orgAdmin, "stock shortage")
	if err != nil {
		t.Fatalf("tenant admin cancel failed: %v", err)
	}
	if cancelled.History[len(cancelled.History)-1].Note != "stock shortage" {
		t.Fatal("expected cancel note in history")
	}
}

func TestGetVisibility(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)

	if _, err := uc.Get(context.Background(), order.ID, otherUser); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	if _, err := uc.Get(context.Background(), order.ID, orgAdmin); err != nil {
		t.Fatalf("matching org admin must see the order, got %v", err)
	}
	if _, err := uc.Get(context.Background(), order.ID, superAdmin); err != nil {
		t.Fatalf("super admin must see the order, got %v", err)
	}
}

func TestListScopingIsolation(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	for i := 0; i < 3; i++ {
		draft := validDraft()
		if i == 2 {
			draft.Source.ID = "org-2"
		}
		principal := buyer
		if i == 1 {
			principal = otherUser
		}
		if _, err := uc.Create(context.Background(), draft, principal); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	orders, err := uc.List(context.Background(), model.RequestedFilters{}, orgAdmin)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 org-1 orders, got %d", len(orders))
	}
	for _, o := range orders {
		if o.Source.ID != "org-1" {
			t.Fatalf("org admin leaked foreign order %s", o.Source.ID)
		}
	}

	mine, err := uc.List(context.Background(), model.RequestedFilters{}, buyer)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, o := range mine {
		if o.PurchasedBy != buyer.UserID {
			t.Fatal("user list leaked a foreign purchase")
		}
	}
}

func TestActorLabel(t *testing.T) {
	cases := []struct {
		principal model.Principal
		want      string
	}{
		{buyer, "user:1"},
		{orgAdmin, "org_admin:org-1"},
		{model.Principal{Kind: model.KindHospitalAdmin, ScopeID: "hosp-2"}, "hospital_admin:hosp-2"},
		{superAdmin, "super_admin"},
	}
	for _, tc := range cases {
		if got := actorLabel(tc.principal); got != tc.want {
			t.Fatalf("actorLabel(%+v) = %q, want %q", tc.principal, got, tc.want)
		}
	}
}

func TestExpiredUsesClock(t *testing.T) {
	repo := newMemOrderRepo()
	uc := newTestOrderUseCase(repo)

	order, _ := uc.Create(context.Background(), validDraft(), buyer)

	uc.now = func() time.Time { return order.ExpiryDate.Add(time.Hour) }
	expired, err := uc.Expired(context.Background(), 10)
	if err != nil {
		t.Fatalf("expired failed: %v", err)
	}
	if len(expired) != 1 || expired[0].ID != order.ID {
		t.Fatalf("expected the lapsed order, got %+v", expired)
	}
}
