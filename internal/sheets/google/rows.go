package google

import (
	"strings"

	"garagetracker/internal/core"
)

var ledgerHeader = []string{"ID", "Date", "Kind", "Label", "Amount"}

func headerRow() []any {
	out := make([]any, len(ledgerHeader))
	for i, h := range ledgerHeader {
		out[i] = h
	}
	return out
}

// entryRow lays out one ledger entry as A:E. Amounts are written in rupees
// so the sheet can format and sum them.
func entryRow(e core.LedgerEntry) []any {
	return []any{e.ID, e.Date.String(), string(e.Kind), e.Label, e.Amount.Rupees()}
}

// rowIndex returns the zero-based row holding id, skipping the header.
func rowIndex(ids []string, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, v := range ids {
		if i == 0 && strings.EqualFold(v, ledgerHeader[0]) {
			continue
		}
		if v == id {
			return i
		}
	}
	return -1
}
