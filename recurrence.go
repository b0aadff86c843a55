package budgeteer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tvillard/budgeteer/date"
)

// GeneratedSuffix marks the description of transactions materialized by the
// recurrence projector.
const GeneratedSuffix = " (recurring)"

// NextDue advances a due date by one period. It returns ok=false for an
// unrecognized frequency: the template becomes dormant and never fires again.
func NextDue(d date.Date, f Frequency) (date.Date, bool) {
	switch f {
	case Monthly:
		return d.AddMonths(1), true
	case Yearly:
		return d.AddYears(1), true
	default:
		return date.Date{}, false
	}
}

// RunRecurrencePass fires every recurring template whose next-due date is on
// or before now, and returns the number of transactions materialized.
//
// Each firing inserts a transaction dated now — chained onto the account's
// current tail using the template's stored amount, with no sign re-inversion
// since the template is itself a transaction — and advances the template's
// next-due date in the same atomic step. A pass that finds the date already
// advanced past now does nothing, so re-running a pass with the same now is
// a no-op. Callers must not overlap passes; the engine only guards between
// passes, not within one.
func (l *Ledger) RunRecurrencePass(ctx context.Context, now date.Date) (int, error) {
	templates, err := l.store.DueTemplates(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("recurrence pass: %w", err)
	}

	fired := 0
	for _, tmpl := range templates {
		a, err := l.store.Account(ctx, tmpl.AccountID)
		if errors.Is(err, ErrNotFound) {
			l.log.Warn().Int64("template", tmpl.ID).Str("account", tmpl.AccountID).
				Msg("recurring template points at a missing account, skipping")
			continue
		}
		if err != nil {
			return fired, fmt.Errorf("recurrence pass: %w", err)
		}

		next, ok := NextDue(*tmpl.NextDue, tmpl.Frequency)
		tail, err := l.TailBalance(ctx, a)
		if err != nil {
			return fired, fmt.Errorf("recurrence pass: %w", err)
		}

		occurrence := &Transaction{
			AccountID:   a.ID,
			Date:        now,
			Description: tmpl.Description + GeneratedSuffix,
			Amount:      tmpl.Amount,
			Balance:     NextBalance(tail, tmpl.Amount),
			Category:    tmpl.Category,
			Recurring:   true,
			Frequency:   tmpl.Frequency,
		}
		if ok {
			occDue, tmplDue := next, next
			occurrence.NextDue = &occDue
			tmpl.NextDue = &tmplDue
		} else {
			// Unrecognized frequency: one last fire, then the template stops
			// matching any pass. Graceful self-dormancy, no error surfaced.
			tmpl.NextDue = nil
		}

		err = l.store.Atomically(ctx, func(s Store) error {
			if err := s.Insert(ctx, occurrence); err != nil {
				return err
			}
			return s.Update(ctx, tmpl)
		})
		if err != nil {
			return fired, fmt.Errorf("recurrence pass: firing template %d: %w", tmpl.ID, err)
		}
		fired++
		l.log.Info().Int64("template", tmpl.ID).Str("account", a.Name).
			Stringer("date", now).Str("next_due", dueString(tmpl.NextDue)).
			Msg("recurring transaction fired")
	}
	return fired, nil
}

func dueString(d *date.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
