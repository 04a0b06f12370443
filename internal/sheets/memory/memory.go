package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"garagetracker/internal/core"
	"garagetracker/internal/sheets"
)

var _ sheets.LedgerWriter = (*Store)(nil)

// Store keeps ledger rows in process, in append order.
type Store struct {
	mu    sync.Mutex
	items []core.LedgerEntry
}

func New() *Store {
	return &Store{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (s *Store) AppendEntry(_ context.Context, e core.LedgerEntry) (string, error) {
	if strings.TrimSpace(e.ID) == "" {
		return "", errors.New("ledger entry id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(e.ID); i >= 0 {
		return fmt.Sprintf("mem:%d", i+1), nil
	}
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return sheets.ErrEntryNotFound
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Entries returns a copy of the stored rows.
func (s *Store) Entries() []core.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.LedgerEntry(nil), s.items...)
}

func (s *Store) indexOf(id string) int {
	for i, e := range s.items {
		if e.ID == id {
			return i
		}
	}
	return -1
}
