package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/subtrackr/internal/model"
)

var (
	// ErrInvalidRecord marks a subscription or savings event that fails validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrUnknownSortKey is returned for a sort key outside the closed set.
	ErrUnknownSortKey = errors.New("unknown sort key")
	// ErrUnknownCategory is returned when filtering on a category no subscription carries.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// RecordError describes why one input record was rejected.
type RecordError struct {
	Index int
	ID    string
	Name  string
	Err   error
}

func (e RecordError) Error() string {
	label := e.Name
	if label == "" {
		label = e.ID
	}
	return fmt.Sprintf("record %d (%s): %v", e.Index, label, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Validate checks the field invariants of a single subscription.
func Validate(sub model.Subscription) error {
	var problems []string
	if strings.TrimSpace(sub.ID) == "" {
		problems = append(problems, "empty id")
	}
	if strings.TrimSpace(sub.Name) == "" {
		problems = append(problems, "empty name")
	}
	if strings.TrimSpace(sub.Category) == "" {
		problems = append(problems, "empty category")
	}
	if sub.Amount.IsNegative() {
		problems = append(problems, "negative amount "+sub.Amount.StringFixed(2))
	}
	if sub.NextBillingDate.IsZero() {
		problems = append(problems, "missing billing date")
	}
	if !sub.Status.Valid() {
		problems = append(problems, fmt.Sprintf("unknown status %q", sub.Status))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, ", "))
	}
	return nil
}

// ValidateAll checks every record plus ID uniqueness across the set.
// All problems are reported together; a single bad record rejects the batch.
func ValidateAll(subs []model.Subscription) error {
	var errs []error
	seen := make(map[string]int, len(subs))
	for i, s := range subs {
		if err := Validate(s); err != nil {
			errs = append(errs, RecordError{Index: i, ID: s.ID, Name: s.Name, Err: err})
			continue
		}
		if first, dup := seen[s.ID]; dup {
			errs = append(errs, RecordError{
				Index: i, ID: s.ID, Name: s.Name,
				Err: fmt.Errorf("%w: duplicate id (first seen at %d)", ErrInvalidRecord, first),
			})
			continue
		}
		seen[s.ID] = i
	}
	return errors.Join(errs...)
}

// Partition splits subs into valid records and rejected ones instead of
// failing the whole batch. Besides the field checks it rejects duplicate IDs
// (the first occurrence wins). A billing date that already lapsed at now is
// rolled forward with RollForward, the same as stored rows on refresh.
func Partition(subs []model.Subscription, now time.Time) ([]model.Subscription, []RecordError) {
	valid := make([]model.Subscription, 0, len(subs))
	var rejected []RecordError
	seen := make(map[string]struct{}, len(subs))

	for i, s := range subs {
		err := Validate(s)
		if err == nil {
			if _, dup := seen[s.ID]; dup {
				err = fmt.Errorf("%w: duplicate id", ErrInvalidRecord)
			}
		}
		if err != nil {
			rejected = append(rejected, RecordError{Index: i, ID: s.ID, Name: s.Name, Err: err})
			continue
		}
		seen[s.ID] = struct{}{}
		s.NextBillingDate = RollForward(s.NextBillingDate, now)
		valid = append(valid, s)
	}
	return valid, rejected
}
