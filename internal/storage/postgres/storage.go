package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/bloodbridge/procurement/internal/domain/errors"
	"github.com/bloodbridge/procurement/internal/domain/model"
	"github.com/bloodbridge/procurement/internal/domain/repository"
)

// DBPool is the subset of pgxpool.Pool used by the storage. Declared as an
// interface so tests can substitute a pgxmock pool.
type DBPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// newPgxPool is swapped in tests to inject a mock pool.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (DBPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   DBPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            scope_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            tracking_number TEXT UNIQUE NOT NULL,
            purchased_by BIGINT NOT NULL REFERENCES users(id),
            source_type TEXT NOT NULL,
            source_id TEXT NOT NULL,
            source_name TEXT NOT NULL,
            blood_type TEXT NOT NULL,
            units INT NOT NULL,
            urgency TEXT NOT NULL,
            patient_name TEXT NOT NULL,
            contact_phone TEXT NOT NULL,
            required_date TIMESTAMPTZ NOT NULL,
            expiry_date TIMESTAMPTZ NOT NULL,
            blood_price DOUBLE PRECISION NOT NULL,
            processing_fee DOUBLE PRECISION NOT NULL,
            screening_fee DOUBLE PRECISION NOT NULL,
            service_charge DOUBLE PRECISION NOT NULL,
            additional_fees DOUBLE PRECISION NOT NULL DEFAULT 0,
            total_cost DOUBLE PRECISION NOT NULL,
            status TEXT NOT NULL,
            status_history JSONB NOT NULL DEFAULT '[]',
            pickup_details TEXT NOT NULL DEFAULT '',
            payment_status TEXT NOT NULL DEFAULT 'pending',
            payment_method TEXT NOT NULL DEFAULT '',
            notes TEXT NOT NULL DEFAULT '',
            admin_notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_purchaser ON orders(purchased_by, status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_source ON orders(source_type, source_id)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_required ON orders(status, required_date)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_expiry ON orders(status, expiry_date)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string, role model.Role, scopeID string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash, role, scope_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash, role, scopeID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	u.Role = role
	u.ScopeID = scopeID
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, scope_id, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.ScopeID, &u.CreatedAt)
	if err != nil {
		return nil, mapReadError(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, role, scope_id, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.Role, &u.ScopeID, &u.CreatedAt)
	if err != nil {
		return nil, mapReadError(err)
	}
	return &u, nil
}

// --- OrderRepository implementation ---

const orderColumns = `id, tracking_number, purchased_by, source_type, source_id, source_name,
       blood_type, units, urgency, patient_name, contact_phone, required_date, expiry_date,
       blood_price, processing_fee, screening_fee, service_charge, additional_fees, total_cost,
       status, status_history, pickup_details, payment_status, payment_method, notes, admin_notes,
       created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var history []byte
	err := row.Scan(
		&o.ID, &o.TrackingNumber, &o.PurchasedBy, &o.Source.Type, &o.Source.ID, &o.Source.Name,
		&o.BloodType, &o.Units, &o.Urgency, &o.PatientName, &o.ContactPhone, &o.RequiredDate, &o.ExpiryDate,
		&o.Pricing.BloodPrice, &o.Pricing.ProcessingFee, &o.Pricing.ScreeningFee, &o.Pricing.ServiceCharge,
		&o.Pricing.AdditionalFees, &o.Pricing.TotalCost,
		&o.Status, &history, &o.PickupDetails, &o.PaymentStatus, &o.PaymentMethod, &o.Notes, &o.AdminNotes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &o.History); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (*model.Order, error) {
	history, err := json.Marshal(order.History)
	if err != nil {
		return nil, fmt.Errorf("encode status history: %w", err)
	}

	const query = `INSERT INTO orders (
            id, tracking_number, purchased_by, source_type, source_id, source_name,
            blood_type, units, urgency, patient_name, contact_phone, required_date, expiry_date,
            blood_price, processing_fee, screening_fee, service_charge, additional_fees, total_cost,
            status, status_history, pickup_details, payment_status, payment_method, notes
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
        RETURNING created_at, updated_at`

	created := *order
	err = r.storage.pool.QueryRow(ctx, query,
		order.ID, order.TrackingNumber, order.PurchasedBy,
		order.Source.Type, order.Source.ID, order.Source.Name,
		order.BloodType, order.Units, order.Urgency, order.PatientName, order.ContactPhone,
		order.RequiredDate, order.ExpiryDate,
		order.Pricing.BloodPrice, order.Pricing.ProcessingFee, order.Pricing.ScreeningFee,
		order.Pricing.ServiceCharge, order.Pricing.AdditionalFees, order.Pricing.TotalCost,
		order.Status, history, order.PickupDetails, order.PaymentStatus, order.PaymentMethod, order.Notes,
	).Scan(&created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domainErrors.ErrNotFound
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id=$1`, orderColumns)
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapReadError(err)
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, filter model.Filter) ([]model.Order, error) {
	where, args := buildWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC`, orderColumns, where)

	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapReadError(err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadError(err)
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, current, next model.Status, entry model.HistoryEntry, extra model.TransitionExtra) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domainErrors.ErrNotFound
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode history entry: %w", err)
	}

	// Status field and history append go through one conditional UPDATE so a
	// concurrent transition can never split the ledger from the status.
	query := fmt.Sprintf(`UPDATE orders
           SET status=$1,
               status_history = status_history || $2::jsonb,
               admin_notes = COALESCE($3, admin_notes),
               pickup_details = COALESCE($4, pickup_details),
               updated_at = NOW()
           WHERE id=$5 AND status=$6
           RETURNING %s`, orderColumns)

	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, next, encoded, extra.AdminNotes, extra.PickupDetails, id, current))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row gone or status moved underneath us. Re-read to tell which.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domainErrors.ErrConflict
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) SelectExpiredBatch(ctx context.Context, now time.Time, limit int) ([]model.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders
           WHERE status NOT IN ('completed', 'cancelled') AND expiry_date <= $1
           ORDER BY expiry_date
           LIMIT $2`, orderColumns)

	rows, err := r.storage.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, mapReadError(err)
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadError(err)
	}
	return result, nil
}

func (r *orderRepository) Stats(ctx context.Context, filter model.Filter, dayStart, weekStart, monthStart time.Time) (*model.StatsSummary, error) {
	summary := &model.StatsSummary{
		ByStatus:    make(map[model.Status]int64),
		ByBloodType: make(map[model.BloodType]int64),
		ByUrgency:   make(map[model.Urgency]int64),
	}

	where, args := buildWhere(filter)

	statusQuery := fmt.Sprintf(`SELECT status, COUNT(*) FROM orders%s GROUP BY status`, where)
	if err := r.groupCount(ctx, statusQuery, args, func(key string, count int64) {
		summary.ByStatus[model.Status(key)] = count
		summary.Total += count
	}); err != nil {
		return nil, err
	}

	bloodQuery := fmt.Sprintf(`SELECT blood_type, COUNT(*) FROM orders%s GROUP BY blood_type`, where)
	if err := r.groupCount(ctx, bloodQuery, args, func(key string, count int64) {
		summary.ByBloodType[model.BloodType(key)] = count
	}); err != nil {
		return nil, err
	}

	urgencyQuery := fmt.Sprintf(`SELECT urgency, COUNT(*) FROM orders%s GROUP BY urgency`, where)
	if err := r.groupCount(ctx, urgencyQuery, args, func(key string, count int64) {
		summary.ByUrgency[model.Urgency(key)] = count
	}); err != nil {
		return nil, err
	}

	revenueFilter := filter
	completed := model.StatusCompleted
	revenueFilter.Status = &completed
	revenueWhere, revenueArgs := buildWhere(revenueFilter)
	revenueQuery := fmt.Sprintf(`SELECT COALESCE(SUM(total_cost), 0) FROM orders%s`, revenueWhere)
	if err := r.storage.pool.QueryRow(ctx, revenueQuery, revenueArgs...).Scan(&summary.Revenue); err != nil {
		return nil, mapReadError(err)
	}

	windowArgs := append(append([]any{}, args...), dayStart, weekStart, monthStart)
	n := len(args)
	windowQuery := fmt.Sprintf(`SELECT
            COUNT(*) FILTER (WHERE created_at >= $%d),
            COUNT(*) FILTER (WHERE created_at >= $%d),
            COUNT(*) FILTER (WHERE created_at >= $%d)
        FROM orders%s`, n+1, n+2, n+3, where)
	if err := r.storage.pool.QueryRow(ctx, windowQuery, windowArgs...).Scan(&summary.Today, &summary.ThisWeek, &summary.ThisMonth); err != nil {
		return nil, mapReadError(err)
	}

	return summary, nil
}

func (r *orderRepository) groupCount(ctx context.Context, query string, args []any, apply func(key string, count int64)) error {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return mapReadError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		apply(key, count)
	}
	return rows.Err()
}

// buildWhere renders a Filter into a WHERE clause with positional args.
func buildWhere(filter model.Filter) (string, []any) {
	var conditions []string
	var args []any

	add := func(expr string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.PurchasedBy != nil {
		add("purchased_by=$%d", *filter.PurchasedBy)
	}
	if filter.SourceType != nil {
		add("source_type=$%d", *filter.SourceType)
	}
	if filter.SourceID != nil {
		add("source_id=$%d", *filter.SourceID)
	}
	if filter.Status != nil {
		add("status=$%d", *filter.Status)
	}
	if filter.BloodType != nil {
		add("blood_type=$%d", *filter.BloodType)
	}
	if filter.Urgency != nil {
		add("urgency=$%d", *filter.Urgency)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// mapReadError converts datastore read failures into domain errors.
// Anything that is not a definitive row-level answer is reported as
// unavailable; the retry policy belongs to the datastore client.
func mapReadError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	return fmt.Errorf("%w: %v", domainErrors.ErrUnavailable, err)
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
