package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
	testhelpers "github.com/bloodbridge/procurement/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewExpirySweeperDefaults(t *testing.T) {
	sweeper := NewExpirySweeper(&testhelpers.SweeperFacadeStub{}, time.Second, 0, 0, discardLogger())
	if sweeper.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", sweeper.batchSize)
	}
	if sweeper.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", sweeper.workers)
	}
}

func TestExpirySweeperCancelsLapsedOrders(t *testing.T) {
	facade := &testhelpers.SweeperFacadeStub{Batches: [][]model.Order{{
		{ID: "order-1", TrackingNumber: "BB000001-000001", Status: model.StatusPending},
		{ID: "order-2", TrackingNumber: "BB000002-000002", Status: model.StatusVerified},
	}}}

	var principals []model.Principal
	var notes []string
	facade.CancelFn = func(_ context.Context, id string, principal model.Principal, note string) (*model.Order, error) {
		facade.Lock()
		principals = append(principals, principal)
		notes = append(notes, note)
		facade.Unlock()
		order := testhelpers.SampleOrder(1)
		order.ID = id
		order.Status = model.StatusCancelled
		return order, nil
	}

	sweeper := NewExpirySweeper(facade, 10*time.Millisecond, 5, 2, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		done := len(facade.Cancelled) >= 2
		facade.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweep")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sweeper.Stop()

	facade.Lock()
	defer facade.Unlock()
	if len(facade.Cancelled) != 2 {
		t.Fatalf("expected 2 cancellations, got %v", facade.Cancelled)
	}
	for _, p := range principals {
		if p.Kind != model.KindSuperAdmin {
			t.Fatalf("sweeper must act as super admin, got %+v", p)
		}
	}
	for _, note := range notes {
		if note != "blood shelf life expired" {
			t.Fatalf("unexpected note %q", note)
		}
	}
}

func TestExpirySweeperToleratesRaces(t *testing.T) {
	// Orders completed or already cancelled between selection and sweep must
	// not be treated as failures.
	facade := &testhelpers.SweeperFacadeStub{
		Batches: [][]model.Order{{
			{ID: "won", Status: model.StatusPending},
			{ID: "gone", Status: model.StatusPending},
		}},
		CancelFn: func(_ context.Context, id string, _ model.Principal, _ string) (*model.Order, error) {
			if id == "gone" {
				return nil, domainErrors.ErrNotFound
			}
			return nil, domainErrors.ErrConflict
		},
	}

	sweeper := NewExpirySweeper(facade, 10*time.Millisecond, 5, 1, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		done := len(facade.Cancelled) >= 2
		facade.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweep")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sweeper.Stop()
}

func TestExpirySweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewExpirySweeper(&testhelpers.SweeperFacadeStub{}, 10*time.Millisecond, 1, 1, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	sweeper.Stop()
	sweeper.Stop()
}
