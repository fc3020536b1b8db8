package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/model"
	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

type savingsRow struct {
	ID             string `db:"id"`
	SubscriptionID string `db:"subscription_id"`
	Name           string `db:"name"`
	AmountSaved    string `db:"amount_saved"`
	OccurredAt     string `db:"occurred_at"`
}

func insertSavingsEvent(ctx context.Context, e sqlx.ExtContext, ev model.SavingsEvent) error {
	_, err := sqlx.NamedExecContext(ctx, e, `INSERT INTO savings_events
		(id, subscription_id, name, amount_saved, occurred_at)
		VALUES (:id, :subscription_id, :name, :amount_saved, :occurred_at)`,
		savingsRow{
			ID:             ev.ID,
			SubscriptionID: ev.SubscriptionID,
			Name:           ev.Name,
			AmountSaved:    ev.AmountSaved.StringFixed(2),
			OccurredAt:     ev.Timestamp.UTC().Format(timeLayout),
		})
	if err != nil {
		return fmt.Errorf("recording savings event: %w", err)
	}
	return nil
}

// AppendSavingsEvent validates ev against the ledger rules and stores it.
// Events are never updated or deleted; the schema enforces this too.
func (s *Store) AppendSavingsEvent(ctx context.Context, ev model.SavingsEvent) (model.SavingsEvent, error) {
	ledger, err := pipeline.RecordCancellation(pipeline.Ledger{}, ev)
	if err != nil {
		return ev, err
	}
	recorded := ledger.Events()[0]
	return recorded, insertSavingsEvent(ctx, s.db, recorded)
}

// LoadLedger returns every savings event in the order it was recorded.
func (s *Store) LoadLedger(ctx context.Context) (pipeline.Ledger, error) {
	var rows []savingsRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, subscription_id, name, amount_saved, occurred_at
		FROM savings_events ORDER BY rowid`); err != nil {
		return pipeline.Ledger{}, fmt.Errorf("loading ledger: %w", err)
	}

	events := make([]model.SavingsEvent, 0, len(rows))
	for _, r := range rows {
		amount, err := decimal.NewFromString(r.AmountSaved)
		if err != nil {
			return pipeline.Ledger{}, fmt.Errorf("savings event %s: %w", r.ID, err)
		}
		ts, err := time.Parse(timeLayout, r.OccurredAt)
		if err != nil {
			return pipeline.Ledger{}, fmt.Errorf("savings event %s: %w", r.ID, err)
		}
		events = append(events, model.SavingsEvent{
			ID:             r.ID,
			SubscriptionID: r.SubscriptionID,
			Name:           r.Name,
			AmountSaved:    amount,
			Timestamp:      ts,
		})
	}
	return pipeline.NewLedger(events...), nil
}

// SetReminder records or replaces the reminder for a subscription.
func (s *Store) SetReminder(ctx context.Context, r model.Reminder) error {
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO reminders
		(subscription_id, remind_on, created_at) VALUES (?, ?, ?)`,
		r.SubscriptionID, r.RemindOn.Format(pipeline.DateLayout), created.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("setting reminder: %w", err)
	}
	return nil
}

// ListReminders returns reminders keyed by subscription ID.
func (s *Store) ListReminders(ctx context.Context) (map[string]model.Reminder, error) {
	var rows []struct {
		SubscriptionID string `db:"subscription_id"`
		RemindOn       string `db:"remind_on"`
		CreatedAt      string `db:"created_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, "SELECT subscription_id, remind_on, created_at FROM reminders"); err != nil {
		return nil, fmt.Errorf("listing reminders: %w", err)
	}
	out := make(map[string]model.Reminder, len(rows))
	for _, r := range rows {
		on, err := time.Parse(pipeline.DateLayout, r.RemindOn)
		if err != nil {
			return nil, fmt.Errorf("reminder %s: %w", r.SubscriptionID, err)
		}
		created, _ := time.Parse(timeLayout, r.CreatedAt)
		out[r.SubscriptionID] = model.Reminder{SubscriptionID: r.SubscriptionID, RemindOn: on, CreatedAt: created}
	}
	return out, nil
}

// RecordSpend stores the active monthly total observed for month, replacing
// any earlier observation for the same month.
func (s *Store) RecordSpend(ctx context.Context, month time.Time, total decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO spend_history (month, total, recorded_at)
		VALUES (?, ?, ?)`, month.Format("2006-01"), total.StringFixed(2), time.Now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording spend: %w", err)
	}
	return nil
}

// SpendHistory returns up to n most recent monthly totals, oldest first.
func (s *Store) SpendHistory(ctx context.Context, n int) ([]model.SpendPoint, error) {
	var rows []struct {
		Month string `db:"month"`
		Total string `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT month, total FROM
		(SELECT month, total FROM spend_history ORDER BY month DESC LIMIT ?) ORDER BY month`, n); err != nil {
		return nil, fmt.Errorf("loading spend history: %w", err)
	}
	points := make([]model.SpendPoint, 0, len(rows))
	for _, r := range rows {
		month, err := time.ParseInLocation("2006-01", r.Month, time.Local)
		if err != nil {
			return nil, fmt.Errorf("spend month %q: %w", r.Month, err)
		}
		total, err := decimal.NewFromString(r.Total)
		if err != nil {
			return nil, fmt.Errorf("spend month %q: %w", r.Month, err)
		}
		points = append(points, model.SpendPoint{Month: month, Total: total})
	}
	return points, nil
}
