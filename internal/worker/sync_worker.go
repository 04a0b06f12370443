package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"garagetracker/internal/amqp"
	"garagetracker/internal/core"
	"garagetracker/internal/gateway"
	"garagetracker/internal/sheets"
)

// SyncWorker mirrors ledger events into the spreadsheet export.
type SyncWorker struct {
	sheets sheets.LedgerWriter
	gw     gateway.Gateway
}

// NewSyncWorker builds a worker writing to w. gw is only needed by Backfill
// and may be nil.
func NewSyncWorker(w sheets.LedgerWriter, gw gateway.Gateway) *SyncWorker {
	return &SyncWorker{sheets: w, gw: gw}
}

// HandleLedgerEvent applies one consumed event. A returned error makes the
// consumer requeue the message.
func (w *SyncWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"id", ev.ID,
		"kind", ev.Kind,
		"action", ev.Action)

	switch ev.Action {
	case amqp.ActionCreated:
		ref, err := w.sheets.AppendEntry(ctx, ev.Entry())
		if err != nil {
			return fmt.Errorf("append to sheets: %w", err)
		}
		slog.InfoContext(ctx, "Successfully synced ledger entry",
			"id", ev.ID,
			"sheets_ref", ref,
			"amount_cents", ev.AmountCents)
		return nil

	case amqp.ActionDeleted:
		err := w.sheets.DeleteEntry(ctx, ev.ID)
		if errors.Is(err, sheets.ErrEntryNotFound) {
			slog.WarnContext(ctx, "Ledger entry not in sheet, nothing to delete", "id", ev.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("delete from sheets: %w", err)
		}
		slog.InfoContext(ctx, "Successfully deleted ledger entry", "id", ev.ID)
		return nil
	}
	return fmt.Errorf("unknown ledger event action %q", ev.Action)
}

// Backfill exports every ledger row dated inside r. Rows already in the
// sheet are left alone, so it is safe to run at every startup to recover
// from events lost while the worker was down.
func (w *SyncWorker) Backfill(ctx context.Context, sess gateway.Session, r core.DateRange) (int, error) {
	if w.gw == nil {
		return 0, errors.New("backfill needs a gateway")
	}
	if err := r.Validate(); err != nil {
		return 0, err
	}

	var entries []core.LedgerEntry
	records, err := w.gw.ServiceRecords().List(ctx, sess, gateway.All().InRange(gateway.FieldServiceDate, r))
	if err != nil {
		return 0, fmt.Errorf("list service records: %w", err)
	}
	for _, rec := range records {
		entries = append(entries, core.IncomeEntry(rec))
	}
	payments, err := w.gw.SalaryPayments().List(ctx, sess, gateway.All().InRange(gateway.FieldPaymentDate, r))
	if err != nil {
		return 0, fmt.Errorf("list salary payments: %w", err)
	}
	for _, p := range payments {
		entries = append(entries, core.SalaryEntry(p))
	}
	ads, err := w.gw.MarketingExpenses().List(ctx, sess, gateway.All().InRange(gateway.FieldExpenseDate, r))
	if err != nil {
		return 0, fmt.Errorf("list marketing expenses: %w", err)
	}
	for _, e := range ads {
		entries = append(entries, core.MarketingEntry(e))
	}

	synced, failed := 0, 0
	for _, e := range entries {
		if _, err := w.sheets.AppendEntry(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to backfill ledger entry", "id", e.ID, "kind", e.Kind, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Backfill completed",
		"start", r.Start,
		"end", r.End,
		"total", len(entries),
		"synced", synced,
		"errors", failed)
	return synced, nil
}
