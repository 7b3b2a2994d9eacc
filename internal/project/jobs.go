package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/sheetfit/internal/model"
)

// jobFormatVersion is written into every saved job file.
const jobFormatVersion = "1.0.0"

// JobFile is the on-disk envelope of a saved job.
type JobFile struct {
	Version string    `json:"version"`
	SavedAt string    `json:"saved_at"`
	Job     model.Job `json:"job"`
}

// SaveJob writes a job, including its result when present, as JSON.
func SaveJob(path string, job model.Job) error {
	envelope := JobFile{
		Version: jobFormatVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Job:     job,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write job file: %w", err)
	}
	return nil
}

// LoadJob reads a job file written by SaveJob and checks that its contents
// are usable for packing.
func LoadJob(path string) (model.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Job{}, fmt.Errorf("failed to read job file: %w", err)
	}
	var envelope JobFile
	if err := json.Unmarshal(data, &envelope); err != nil {
		return model.Job{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	if envelope.Version == "" {
		return model.Job{}, fmt.Errorf("invalid job file: missing version field")
	}

	job := envelope.Job
	if err := model.ValidateSheet(job.SheetWidth, job.SheetHeight); err != nil {
		return model.Job{}, fmt.Errorf("invalid job file: %w", err)
	}
	if err := model.ValidateRectangles(job.Rectangles); err != nil {
		return model.Job{}, fmt.Errorf("invalid job file: %w", err)
	}
	if job.Rectangles == nil {
		job.Rectangles = []model.Rectangle{}
	}
	return job, nil
}
