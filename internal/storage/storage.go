// Package storage persists run reports for the fails viewer and for
// history.
package storage

import (
	"simrun/internal/config"
	"simrun/internal/domain"
)

// Storage persists and loads run reports (e.g. for the fails viewer).
type Storage interface {
	// Save writes a report; saving the same run again replaces it.
	Save(report *domain.RunReport) error
	// Load returns the most recent report.
	Load() (*domain.RunReport, error)
}

// JSONStorage stores the last report in a JSON file under the report
// directory.
type JSONStorage struct {
	path string
}

// NewJSONStorage returns a Storage that reads/writes the config's results path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{path: cfg.GetResultsPath()}
}

// Path returns the report file.
func (s *JSONStorage) Path() string { return s.path }

// Multi saves to every store and loads from the first.
type Multi []Storage

// Save writes to every store and returns the first error.
func (m Multi) Save(report *domain.RunReport) error {
	for _, s := range m {
		if err := s.Save(report); err != nil {
			return err
		}
	}
	return nil
}

// Load reads from the first store.
func (m Multi) Load() (*domain.RunReport, error) {
	if len(m) == 0 {
		return nil, errNoStore
	}
	return m[0].Load()
}
