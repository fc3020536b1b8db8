// Package store provides SQLite-backed persistence for subscriptions, the
// savings ledger, reminders, spend history and import tracking.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a subscription lookup matches nothing.
	ErrNotFound = errors.New("subscription not found")
	// ErrAmbiguous is returned when a lookup reference matches more than one subscription.
	ErrAmbiguous = errors.New("ambiguous subscription reference")
)

const timeLayout = time.RFC3339Nano

// Store wraps the subtrackr database.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at the given path and applies migrations.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening db: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type subscriptionRow struct {
	ID            string `db:"id"`
	Name          string `db:"name"`
	Amount        string `db:"amount"`
	Category      string `db:"category"`
	NextBilling   string `db:"next_billing"`
	Status        string `db:"status"`
	PaymentMethod string `db:"payment_method"`
	Logo          string `db:"logo"`
	CreatedAt     string `db:"created_at"`
}

func rowFromModel(sub model.Subscription) subscriptionRow {
	created := sub.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return subscriptionRow{
		ID:            sub.ID,
		Name:          sub.Name,
		Amount:        sub.Amount.StringFixed(2),
		Category:      sub.Category,
		NextBilling:   sub.NextBillingDate.Format(pipeline.DateLayout),
		Status:        string(sub.Status),
		PaymentMethod: sub.PaymentMethod,
		Logo:          sub.Logo,
		CreatedAt:     created.UTC().Format(timeLayout),
	}
}

func (r subscriptionRow) toModel() (model.Subscription, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("subscription %s: amount: %w", r.ID, err)
	}
	next, err := time.Parse(pipeline.DateLayout, r.NextBilling)
	if err != nil {
		return model.Subscription{}, fmt.Errorf("subscription %s: next_billing: %w", r.ID, err)
	}
	created, _ := time.Parse(timeLayout, r.CreatedAt)
	return model.Subscription{
		ID:              r.ID,
		Name:            r.Name,
		Amount:          amount,
		Category:        r.Category,
		NextBillingDate: next,
		Status:          model.Status(r.Status),
		PaymentMethod:   r.PaymentMethod,
		Logo:            r.Logo,
		CreatedAt:       created,
	}, nil
}

const selectSubscriptions = `SELECT id, name, amount, category, next_billing, status,
	payment_method, logo, created_at FROM subscriptions`

// ListSubscriptions returns every subscription in insertion order.
func (s *Store) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	var rows []subscriptionRow
	if err := s.db.SelectContext(ctx, &rows, selectSubscriptions+" ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	subs := make([]model.Subscription, 0, len(rows))
	for _, r := range rows {
		sub, err := r.toModel()
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// GetSubscription returns the subscription with the exact ID.
func (s *Store) GetSubscription(ctx context.Context, id string) (model.Subscription, error) {
	return getSubscription(ctx, s.db, id)
}

func getSubscription(ctx context.Context, q sqlx.QueryerContext, id string) (model.Subscription, error) {
	var row subscriptionRow
	err := sqlx.GetContext(ctx, q, &row, selectSubscriptions+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subscription{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Subscription{}, fmt.Errorf("loading subscription %s: %w", id, err)
	}
	return row.toModel()
}

// FindSubscription resolves a user-supplied reference: an exact ID, an ID
// prefix of at least four characters, or a case-insensitive name.
func (s *Store) FindSubscription(ctx context.Context, ref string) (model.Subscription, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Subscription{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if sub, err := s.GetSubscription(ctx, ref); err == nil {
		return sub, nil
	} else if !errors.Is(err, ErrNotFound) {
		return model.Subscription{}, err
	}

	var rows []subscriptionRow
	query := selectSubscriptions + " WHERE lower(name) = lower(?)"
	args := []any{ref}
	if len(ref) >= 4 {
		query += " OR id LIKE ? || '%'"
		args = append(args, ref)
	}
	if err := s.db.SelectContext(ctx, &rows, query+" ORDER BY rowid", args...); err != nil {
		return model.Subscription{}, fmt.Errorf("finding subscription %q: %w", ref, err)
	}

	switch len(rows) {
	case 0:
		return model.Subscription{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return rows[0].toModel()
	default:
		return model.Subscription{}, fmt.Errorf("%w: %q matches %d subscriptions", ErrAmbiguous, ref, len(rows))
	}
}

const upsertSubscription = `INSERT INTO subscriptions
	(id, name, amount, category, next_billing, status, payment_method, logo, created_at)
	VALUES (:id, :name, :amount, :category, :next_billing, :status, :payment_method, :logo, :created_at)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		amount = excluded.amount,
		category = excluded.category,
		next_billing = excluded.next_billing,
		status = excluded.status,
		payment_method = excluded.payment_method,
		logo = excluded.logo`

// importSubscription is upsertSubscription without the status column on
// conflict. Status only changes through ApplyTransition, so a re-imported
// file cannot revive a cancelled subscription or cancel one without a
// savings event.
const importSubscription = `INSERT INTO subscriptions
	(id, name, amount, category, next_billing, status, payment_method, logo, created_at)
	VALUES (:id, :name, :amount, :category, :next_billing, :status, :payment_method, :logo, :created_at)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		amount = excluded.amount,
		category = excluded.category,
		next_billing = excluded.next_billing,
		payment_method = excluded.payment_method,
		logo = excluded.logo`

// UpsertSubscription validates and stores a subscription, replacing any
// existing row with the same ID.
func (s *Store) UpsertSubscription(ctx context.Context, sub model.Subscription) error {
	if err := pipeline.Validate(sub); err != nil {
		return err
	}
	if _, err := s.db.NamedExecContext(ctx, upsertSubscription, rowFromModel(sub)); err != nil {
		return fmt.Errorf("saving subscription %s: %w", sub.ID, err)
	}
	return nil
}

// DeleteSubscription removes a subscription from the working set. Savings
// events it produced stay in the ledger.
func (s *Store) DeleteSubscription(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting subscription %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// ApplyTransition moves a subscription to a new status. The status change and
// the savings event a cancellation emits commit together.
func (s *Store) ApplyTransition(ctx context.Context, id string, to model.Status, now time.Time) (model.Subscription, *model.SavingsEvent, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Subscription{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	sub, err := getSubscription(ctx, tx, id)
	if err != nil {
		return model.Subscription{}, nil, err
	}

	next, ev, err := pipeline.Transition(sub, to, now)
	if err != nil {
		return sub, nil, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE subscriptions SET status = ? WHERE id = ?", string(next.Status), id); err != nil {
		return sub, nil, fmt.Errorf("updating status: %w", err)
	}
	if ev != nil {
		ev.ID = uuid.NewString()
		if err := insertSavingsEvent(ctx, tx, *ev); err != nil {
			return sub, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return sub, nil, err
	}
	return next, ev, nil
}

// SaveImport upserts imported subscriptions and marks their source files as
// imported in a single transaction. New records take the file's status;
// existing ones keep the status they have in the store.
func (s *Store) SaveImport(ctx context.Context, subs []model.Subscription, files []model.TrackedFile, now time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, sub := range subs {
		if _, err := tx.NamedExecContext(ctx, importSubscription, rowFromModel(sub)); err != nil {
			return fmt.Errorf("saving subscription %s: %w", sub.ID, err)
		}
	}
	for _, f := range files {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO import_tracker
			(file_path, mtime_ns, size_bytes, imported_at) VALUES (?, ?, ?, ?)`,
			f.Path, f.MtimeNs, f.SizeBytes, now.UTC().Format(timeLayout))
		if err != nil {
			return fmt.Errorf("tracking %s: %w", f.Path, err)
		}
	}
	return tx.Commit()
}

// TrackedFiles returns the import tracker keyed by file path.
func (s *Store) TrackedFiles(ctx context.Context) (map[string]model.TrackedFile, error) {
	var rows []struct {
		Path      string `db:"file_path"`
		MtimeNs   int64  `db:"mtime_ns"`
		SizeBytes int64  `db:"size_bytes"`
	}
	if err := s.db.SelectContext(ctx, &rows, "SELECT file_path, mtime_ns, size_bytes FROM import_tracker"); err != nil {
		return nil, err
	}
	result := make(map[string]model.TrackedFile, len(rows))
	for _, r := range rows {
		result[r.Path] = model.TrackedFile{Path: r.Path, MtimeNs: r.MtimeNs, SizeBytes: r.SizeBytes}
	}
	return result, nil
}

// LastImport returns when the most recent import was recorded.
func (s *Store) LastImport(ctx context.Context) (time.Time, bool, error) {
	var ts sql.NullString
	if err := s.db.GetContext(ctx, &ts, "SELECT MAX(imported_at) FROM import_tracker"); err != nil {
		return time.Time{}, false, err
	}
	if !ts.Valid || ts.String == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(timeLayout, ts.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Refresh rolls every lapsed billing date forward to its next occurrence and
// returns how many subscriptions moved.
func (s *Store) Refresh(ctx context.Context, now time.Time) (int, error) {
	subs, err := s.ListSubscriptions(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	moved := 0
	for _, sub := range subs {
		if sub.Status == model.StatusCancelled {
			continue
		}
		next := pipeline.RollForward(sub.NextBillingDate, now)
		if next.Equal(sub.NextBillingDate) {
			continue
		}
		if _, err := tx.ExecContext(ctx, "UPDATE subscriptions SET next_billing = ? WHERE id = ?",
			next.Format(pipeline.DateLayout), sub.ID); err != nil {
			return 0, fmt.Errorf("refreshing %s: %w", sub.ID, err)
		}
		moved++
	}
	return moved, tx.Commit()
}
