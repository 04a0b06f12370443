package sheets

import (
	"context"
	"errors"

	"garagetracker/internal/core"
)

// ErrEntryNotFound is returned by DeleteEntry when no row carries the ID.
var ErrEntryNotFound = errors.New("ledger entry not found in sheet")

// Ports for outbound adapters.
type (
	// LedgerWriter mirrors ledger rows into an external spreadsheet.
	// AppendEntry is idempotent on entry.ID so redelivered events do not
	// duplicate rows.
	LedgerWriter interface {
		AppendEntry(ctx context.Context, entry core.LedgerEntry) (rowRef string, err error)
		DeleteEntry(ctx context.Context, id string) error
	}
)
