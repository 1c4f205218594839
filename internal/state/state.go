package state

import (
	"sync"

	"genre-schedule/internal/models"
	"genre-schedule/internal/service"
)

// AppState holds the HTTP API's shared state
type AppState struct {
	mu sync.RWMutex

	// Latest analysis result
	Report *models.ScheduleReport

	// Active database connection
	DB service.DataSource
}

// New returns empty state
func New() *AppState {
	return &AppState{}
}

// SetReport stores the latest report
func (s *AppState) SetReport(r models.ScheduleReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Report = &r
}

// GetReport returns a copy of the latest report, or nil
func (s *AppState) GetReport() *models.ScheduleReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Report == nil {
		return nil
	}
	r := *s.Report
	return &r
}

// SetDataSource replaces the active connection, closing the previous one
func (s *AppState) SetDataSource(ds service.DataSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.DB != nil {
		err = s.DB.Close()
	}
	s.DB = ds
	return err
}

// GetDataSource returns the active connection, or nil
func (s *AppState) GetDataSource() service.DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.DB
}

// Close releases the active connection
func (s *AppState) Close() error {
	return s.SetDataSource(nil)
}
