package memory

import (
	"context"
	"errors"
	"sync"

	ports "github.com/davidsheshee-hash/shop-ledger/internal/sheets"
)

var _ ports.ReportWriter = (*Store)(nil)

// Store keeps written reports in memory, keyed by sheet name.
type Store struct {
	mu      sync.Mutex
	reports map[string]ports.Report
	writes  int
}

func New() *Store {
	return &Store{reports: make(map[string]ports.Report)}
}

// WriteReport replaces the stored report for r.Sheet.
func (s *Store) WriteReport(_ context.Context, r ports.Report) error {
	if r.Sheet == "" {
		return errors.New("report without sheet name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([][]any, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = append([]any(nil), row...)
	}
	r.Rows = rows
	r.Header = append([]string(nil), r.Header...)
	s.reports[r.Sheet] = r
	s.writes++
	return nil
}

// Report returns the last report written to sheet.
func (s *Store) Report(sheet string) (ports.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[sheet]
	return r, ok
}

// Writes returns the number of WriteReport calls that succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
