package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/repositories"
)

// ReportService runs the final analysis of a persisted interview session.
type ReportService interface {
	CreateReport(jobRole string, history []models.AnswerEvaluation) (*models.InterviewReport, error)
	ProcessReport(ctx context.Context, reportID uuid.UUID) error
}

type reportService struct {
	repo       repositories.ReportRepository
	aggregator SessionAggregator
}

func NewReportService(repo repositories.ReportRepository, aggregator SessionAggregator) ReportService {
	return &reportService{
		repo:       repo,
		aggregator: aggregator,
	}
}

// CreateReport validates the history and stores a queued report.
func (s *reportService) CreateReport(jobRole string, history []models.AnswerEvaluation) (*models.InterviewReport, error) {
	if err := ValidateHistory(history); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(history)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode history")
	}

	report := &models.InterviewReport{
		ID:                uuid.New(),
		JobRole:           jobRole,
		Status:            models.StatusQueued,
		History:           string(raw),
		QuestionsAnswered: len(history),
	}
	if err := s.repo.Create(report); err != nil {
		return nil, err
	}
	return report, nil
}

// ProcessReport implements ReportService.
func (s *reportService) ProcessReport(ctx context.Context, reportID uuid.UUID) error {
	logger := log.WithField("report_id", reportID)

	claimed, err := s.repo.Claim(reportID)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if !claimed {
		logger.Debug("⏭️ Report already taken by another worker")
		return nil
	}

	logger.Info("🔄 Starting final analysis")

	report, err := s.repo.FindByID(reportID)
	if err != nil {
		s.fail(reportID, err.Error())
		return fmt.Errorf("failed to get report: %w", err)
	}

	var history []models.AnswerEvaluation
	if err := json.Unmarshal([]byte(report.History), &history); err != nil {
		s.fail(reportID, fmt.Sprintf("Invalid interview history: %v", err))
		return fmt.Errorf("failed to decode history: %w", err)
	}

	result, err := s.aggregator.Aggregate(ctx, history, report.JobRole)
	if err != nil {
		s.fail(reportID, fmt.Sprintf("Failed to generate final analysis: %v", err))
		return fmt.Errorf("failed to aggregate session: %w", err)
	}

	logger.Info("💾 Saving final analysis...")
	if err := s.repo.UpdateResult(reportID, &repositories.ReportUpdateData{
		Narrative: &result.Narrative,
		Metrics:   &result.Metrics,
	}); err != nil {
		s.fail(reportID, fmt.Sprintf("Failed to save final analysis: %v", err))
		return fmt.Errorf("failed to save results: %w", err)
	}

	logger.Info("✅ Final analysis completed")
	return nil
}

func (s *reportService) fail(reportID uuid.UUID, msg string) {
	if err := s.repo.UpdateError(reportID, msg); err != nil {
		log.WithError(err).WithField("report_id", reportID).Error("❌ Failed to record report error")
	}
}

// ReportResult converts a stored report into its API shape.
func ReportResult(report *models.InterviewReport) *models.SessionReport {
	if report.Status != models.StatusCompleted || report.Narrative == nil {
		return nil
	}
	return &models.SessionReport{
		Narrative: *report.Narrative,
		Metrics: models.SessionMetrics{
			AverageWPM:               deref(report.AverageWPM),
			TotalPauses:              deref(report.TotalPauses),
			TotalFillerWords:         deref(report.TotalFillerWords),
			AverageContentScore:      deref(report.AverageContentScore),
			AverageConfidencePercent: deref(report.AverageConfidencePercent),
			QuestionsAnswered:        report.QuestionsAnswered,
		},
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
