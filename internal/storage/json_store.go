package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emmanuelcabrera1/stint/internal/models"
)

type Store struct {
	Version     int                          `json:"version"`
	Settings    Settings                     `json:"settings"`
	Experiments map[string]models.Experiment `json:"experiments"`
}

type JSONStore struct {
	path  string
	store *Store
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.store = &Store{
		Version:     1,
		Settings:    DefaultSettings(),
		Experiments: make(map[string]models.Experiment),
	}

	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'stint init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.store = &Store{}
	if err := json.Unmarshal(data, s.store); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}

	if s.store.Experiments == nil {
		s.store.Experiments = make(map[string]models.Experiment)
	}

	// Normalize defaults and legacy entry shapes once at load, then reject
	// anything still malformed. The engine never sees legacy or invalid data.
	for id, exp := range s.store.Experiments {
		exp = exp.Normalize()
		for _, entry := range exp.Entries {
			if err := entry.Validate(); err != nil {
				return fmt.Errorf("experiment %s: %w", id, err)
			}
		}
		s.store.Experiments[id] = exp
	}

	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) GetSettings() (Settings, error) {
	if s.store == nil {
		return Settings{}, fmt.Errorf("storage not loaded")
	}
	return s.store.Settings, nil
}

func (s *JSONStore) SaveSettings(settings Settings) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}
	s.store.Settings = settings
	return s.save()
}

func (s *JSONStore) AddExperiment(exp models.Experiment) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	s.store.Experiments[exp.ID] = exp
	return s.save()
}

func (s *JSONStore) GetExperiment(id string) (models.Experiment, error) {
	if s.store == nil {
		return models.Experiment{}, fmt.Errorf("storage not loaded")
	}

	exp, ok := s.store.Experiments[id]
	if !ok || exp.DeletedAt != nil {
		return models.Experiment{}, fmt.Errorf("experiment not found: %s", id)
	}

	return exp, nil
}

func (s *JSONStore) GetAllExperiments() ([]models.Experiment, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	experiments := make([]models.Experiment, 0, len(s.store.Experiments))
	for _, exp := range s.store.Experiments {
		if exp.DeletedAt != nil {
			continue
		}
		experiments = append(experiments, exp)
	}

	return experiments, nil
}

func (s *JSONStore) GetAllExperimentsIncludingDeleted() ([]models.Experiment, error) {
	if s.store == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	experiments := make([]models.Experiment, 0, len(s.store.Experiments))
	for _, exp := range s.store.Experiments {
		experiments = append(experiments, exp)
	}

	return experiments, nil
}

func (s *JSONStore) UpdateExperiment(exp models.Experiment) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	if _, ok := s.store.Experiments[exp.ID]; !ok {
		return fmt.Errorf("experiment not found: %s", exp.ID)
	}

	s.store.Experiments[exp.ID] = exp
	return s.save()
}

func (s *JSONStore) DeleteExperiment(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	exp, ok := s.store.Experiments[id]
	if !ok {
		return fmt.Errorf("experiment not found: %s", id)
	}
	if exp.DeletedAt != nil {
		return fmt.Errorf("experiment %s is already deleted", id)
	}

	now := time.Now().UTC()
	exp.DeletedAt = &now
	s.store.Experiments[id] = exp
	return s.save()
}

func (s *JSONStore) RestoreExperiment(id string) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	exp, ok := s.store.Experiments[id]
	if !ok {
		return fmt.Errorf("experiment not found: %s", id)
	}
	if exp.DeletedAt == nil {
		return fmt.Errorf("experiment %s is not deleted", id)
	}

	exp.DeletedAt = nil
	s.store.Experiments[id] = exp
	return s.save()
}

func (s *JSONStore) SaveEntry(experimentID string, entry models.Entry) error {
	if s.store == nil {
		return fmt.Errorf("storage not loaded")
	}

	// Malformed entries are a data-integrity failure, not something to
	// coerce into a default.
	if err := entry.Validate(); err != nil {
		return err
	}

	exp, ok := s.store.Experiments[experimentID]
	if !ok || exp.DeletedAt != nil {
		return fmt.Errorf("experiment not found: %s", experimentID)
	}

	now := time.Now().UTC()
	entry.UpdatedAt = now
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	exp.UpsertEntry(entry)
	exp.UpdatedAt = now
	s.store.Experiments[experimentID] = exp
	return s.save()
}

// GetConfigPath returns the path to the underlying storage file.
//
// Concurrency note:
//   - JSONStore is not safe for concurrent use by multiple goroutines without
//     external synchronization.
//   - Running multiple stint processes against the same storage path at the
//     same time is not supported and may lead to data loss.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
