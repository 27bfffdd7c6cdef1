// Package memory is an in-memory backup target. It stands in for the Google
// Sheets client in tests and local development.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/wdkapps/fillup/internal/core"
	"github.com/wdkapps/fillup/internal/sheets"
)

var _ sheets.RefuelAppender = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	rows []Row
}

// Row is one appended backup row.
type Row struct {
	VehicleName string
	Record      core.RefuelRecord
}

func New() *Store {
	return &Store{}
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, vehicle core.Vehicle, rec *core.RefuelRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, Row{VehicleName: vehicle.Name, Record: *rec})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of every appended row, in append order.
func (s *Store) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Row(nil), s.rows...)
}
