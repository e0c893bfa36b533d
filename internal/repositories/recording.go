package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/interview-coach/internal/models"
)

var ErrRecordingNotFound = fmt.Errorf("recording not found")

type RecordingRepository interface {
	Create(recording *models.Recording) error
	FindByID(id uuid.UUID) (*models.Recording, error)
	FindByJobRole(jobRole string, limit int) ([]models.Recording, error)
}

type recordingRepository struct {
	db *gorm.DB
}

// Create implements RecordingRepository.
func (d *recordingRepository) Create(recording *models.Recording) error {
	if err := d.db.Create(recording).Error; err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}

	return nil
}

// FindByID implements RecordingRepository.
func (d *recordingRepository) FindByID(id uuid.UUID) (*models.Recording, error) {
	var rec models.Recording
	if err := d.db.Where("id = ?", id).First(&rec).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordingNotFound
		}

		return nil, fmt.Errorf("failed to find recording: %w", err)
	}

	return &rec, nil
}

// FindByJobRole implements RecordingRepository.
func (d *recordingRepository) FindByJobRole(jobRole string, limit int) ([]models.Recording, error) {
	var recs []models.Recording
	if err := d.db.Where("job_role = ?", jobRole).Order("created_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to find recordings: %w", err)
	}

	return recs, nil
}

func NewRecordingRepository(db *gorm.DB) RecordingRepository {
	return &recordingRepository{db: db}
}
