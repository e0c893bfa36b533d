package repositories

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/interview-coach/internal/models"
)

var ErrReportNotFound = fmt.Errorf("report not found")

type ReportRepository interface {
	Create(report *models.InterviewReport) error
	FindByID(id uuid.UUID) (*models.InterviewReport, error)
	Claim(id uuid.UUID) (bool, error)
	UpdateResult(id uuid.UUID, result *ReportUpdateData) error
	UpdateError(id uuid.UUID, errorMsg string) error
	FindPendingJobs(limit int) ([]models.InterviewReport, error)
}

type ReportUpdateData struct {
	Narrative *string
	Metrics   *models.SessionMetrics
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.InterviewReport) error {
	if err := r.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *reportRepository) FindByID(id uuid.UUID) (*models.InterviewReport, error) {
	var report models.InterviewReport
	if err := r.db.Where("id = ?", id).First(&report).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to find report: %w", err)
	}
	return &report, nil
}

// Claim moves a queued report to processing. It reports false when another
// worker already took it.
func (r *reportRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.InterviewReport{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim report: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (r *reportRepository) UpdateResult(id uuid.UUID, data *ReportUpdateData) error {
	updates := map[string]interface{}{
		"status":     models.StatusCompleted,
		"updated_at": time.Now(),
	}

	if data.Narrative != nil {
		updates["narrative"] = *data.Narrative
	}
	if m := data.Metrics; m != nil {
		updates["average_wpm"] = m.AverageWPM
		updates["total_pauses"] = m.TotalPauses
		updates["total_filler_words"] = m.TotalFillerWords
		updates["average_content_score"] = m.AverageContentScore
		updates["average_confidence_percent"] = m.AverageConfidencePercent
		updates["questions_answered"] = m.QuestionsAnswered
	}

	result := r.db.Model(&models.InterviewReport{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}

	return nil
}

func (r *reportRepository) UpdateError(id uuid.UUID, errorMsg string) error {
	result := r.db.Model(&models.InterviewReport{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.StatusFailed,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReportNotFound
	}

	return nil
}

// FindPendingJobs returns queued reports, oldest first.
func (r *reportRepository) FindPendingJobs(limit int) ([]models.InterviewReport, error) {
	var reports []models.InterviewReport
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&reports).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return reports, nil
}
