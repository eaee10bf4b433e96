package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
)

// ProcurementFacade exposes the subset of application functionality required by the sweeper.
type ProcurementFacade interface {
	ExpiredOrders(ctx context.Context, limit int) ([]model.Order, error)
	CancelOrder(ctx context.Context, id string, principal model.Principal, note string) (*model.Order, error)
}

// sweepPrincipal acts on behalf of the platform when cancelling lapsed orders.
var sweepPrincipal = model.Principal{Kind: model.KindSuperAdmin}

// ExpirySweeper cancels non-terminal orders whose shelf life has lapsed,
// spreading the cancellations over a small worker pool.
type ExpirySweeper struct {
	facade       ProcurementFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpirySweeper constructs the sweeper worker pool.
func NewExpirySweeper(facade ProcurementFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ExpirySweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ExpirySweeper{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background sweeping.
func (s *ExpirySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *ExpirySweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.jobs)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchAndDispatch(ctx)
		}
	}
}

func (s *ExpirySweeper) fetchAndDispatch(ctx context.Context) {
	orders, err := s.facade.ExpiredOrders(ctx, s.batchSize)
	if err != nil {
		s.logger.Error("fetch expired orders failed", slog.String("error", err.Error()))
		return
	}

	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- order:
		}
	}
}

func (s *ExpirySweeper) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-s.jobs:
			if !ok {
				return
			}
			s.sweep(ctx, order)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context, order model.Order) {
	_, err := s.facade.CancelOrder(ctx, order.ID, sweepPrincipal, "blood shelf life expired")
	switch {
	case err == nil:
		s.logger.Info("expired order cancelled",
			slog.String("order_id", order.ID),
			slog.String("tracking_number", order.TrackingNumber),
		)
	case errors.Is(err, domainErrors.ErrConflict), errors.Is(err, domainErrors.ErrNotFound):
		// Someone completed or cancelled it between selection and sweep.
	default:
		s.logger.Error("cancel expired order failed",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
