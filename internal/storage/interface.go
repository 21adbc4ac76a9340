package storage

import "github.com/emmanuelcabrera1/stint/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Experiments
	AddExperiment(models.Experiment) error
	GetExperiment(id string) (models.Experiment, error)
	GetAllExperiments() ([]models.Experiment, error)
	GetAllExperimentsIncludingDeleted() ([]models.Experiment, error)
	UpdateExperiment(models.Experiment) error
	DeleteExperiment(id string) error
	RestoreExperiment(id string) error

	// Entries; check-ins upsert by (experiment, day)
	SaveEntry(experimentID string, entry models.Entry) error

	// Utils
	GetConfigPath() string
}

type Settings struct {
	DefaultTargetDays int    `json:"default_target_days"`
	DefaultFrequency  string `json:"default_frequency"`
	AutoBackup        bool   `json:"auto_backup"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultTargetDays: models.DefaultTargetDays,
		DefaultFrequency:  string(models.FrequencyDaily),
		AutoBackup:        true,
	}
}
