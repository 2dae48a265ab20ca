package service

import (
	"context"
	"fmt"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// ExportService assembles the flat reservation report: one row per
// reservation, joined with its room's number and type.
type ExportService struct {
	store Store
}

// NewExportService constructs an ExportService backed by the provided Store.
func NewExportService(store Store) *ExportService {
	return &ExportService{store: store}
}

// Export returns every reservation as an ExportRow, ordered by check-in.
// Cancelled reservations are included; the report doubles as an audit
// trail. Always returns a non-nil slice.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	rows, err := s.store.Repos().Reservations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	return rows, nil
}
