package store

import (
	"context"
	"sync"

	"github.com/shandysiswandi/goaging/internal/aging/entity"
	"github.com/shandysiswandi/goaging/internal/pkg/pkgerror"
)

// InMemoryStore keeps reports for the lifetime of the process.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*reportRecord
}

type reportRecord struct {
	mu     sync.RWMutex
	meta   entity.ReportMeta
	report *entity.Report
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		reports: make(map[string]*reportRecord),
	}
}

func (s *InMemoryStore) CreateReport(ctx context.Context, meta entity.ReportMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reports[meta.ID]; exists {
		return pkgerror.NewBusiness("report already exists", pkgerror.CodeConflict)
	}

	s.reports[meta.ID] = &reportRecord{
		meta: meta,
	}

	return nil
}

func (s *InMemoryStore) UpdateMeta(ctx context.Context, reportID string, fn func(meta *entity.ReportMeta)) error {
	rec, err := s.get(reportID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	fn(&rec.meta)

	return nil
}

// SaveReport stores the finished report in one step so readers never see a
// partial result.
func (s *InMemoryStore) SaveReport(ctx context.Context, reportID string, report *entity.Report) error {
	rec, err := s.get(reportID)
	if err != nil {
		return err
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.report = report
	if report != nil {
		rec.meta.Rows = int64(report.Rows)
	}

	return nil
}

// GetReport returns the report metadata and, once saved, the report itself.
func (s *InMemoryStore) GetReport(ctx context.Context, reportID string) (*entity.Report, entity.ReportMeta, error) {
	rec, err := s.get(reportID)
	if err != nil {
		return nil, entity.ReportMeta{}, err
	}

	rec.mu.RLock()
	defer rec.mu.RUnlock()

	return rec.report, rec.meta, nil
}

func (s *InMemoryStore) get(reportID string) (*reportRecord, error) {
	s.mu.RLock()
	rec, ok := s.reports[reportID]
	s.mu.RUnlock()
	if !ok {
		return nil, pkgerror.ErrNotFound
	}

	return rec, nil
}
