// Package memory is an in-process SummaryWriter for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/export"
	"bilancio/internal/report"
)

type entry struct {
	OwnerID string
	Summary report.Summary
}

type Store struct {
	mu   sync.Mutex
	rows []entry
}

var _ export.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the summary and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, ownerID string, sum report.Summary) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, entry{OwnerID: ownerID, Summary: sum})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []report.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]report.Summary, len(s.rows))
	for i, e := range s.rows {
		out[i] = e.Summary
	}
	return out
}
