package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/repositories"
	"alfredoptarigan/interview-coach/internal/services"
)

type ReportHandler struct {
	aggregator    services.SessionAggregator
	reportService services.ReportService
	reportRepo    repositories.ReportRepository
	worker        services.Worker
}

func NewReportHandler(
	aggregator services.SessionAggregator,
	reportService services.ReportService,
	reportRepo repositories.ReportRepository,
	worker services.Worker,
) *ReportHandler {
	return &ReportHandler{
		aggregator:    aggregator,
		reportService: reportService,
		reportRepo:    reportRepo,
		worker:        worker,
	}
}

// HandleFinalAnalysis handles POST /mock-interview/final-analysis
func (h *ReportHandler) HandleFinalAnalysis(c *fiber.Ctx) error {
	req, err := parseFinalAnalysisRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	report, err := h.aggregator.Aggregate(c.UserContext(), req.History, req.JobRole)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(report)
}

// HandleCreateReport handles POST /mock-interview/reports
func (h *ReportHandler) HandleCreateReport(c *fiber.Ctx) error {
	req, err := parseFinalAnalysisRequest(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	report, err := h.reportService.CreateReport(req.JobRole, req.History)
	if err != nil {
		return respondError(c, err)
	}

	h.worker.EnqueueJob(report.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.CreateReportResponse{
		ID:     report.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleGetReport handles GET /mock-interview/reports/:id
func (h *ReportHandler) HandleGetReport(c *fiber.Ctx) error {
	reportID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid report ID format")
	}

	report, err := h.reportRepo.FindByID(reportID)
	if err != nil {
		if errors.Is(err, repositories.ErrReportNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Report not found"})
		}
		return respondError(c, err)
	}

	response := models.ReportResultResponse{
		ID:      report.ID.String(),
		Status:  string(report.Status),
		JobRole: report.JobRole,
		Result:  services.ReportResult(report),
	}
	if report.Status == models.StatusFailed && report.ErrorMessage != nil {
		response.ErrorMessage = report.ErrorMessage
	}

	return c.JSON(response)
}

func parseFinalAnalysisRequest(c *fiber.Ctx) (*models.FinalAnalysisRequest, error) {
	var req models.FinalAnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errors.New("Invalid request payload")
	}

	req.JobRole = strings.TrimSpace(req.JobRole)
	if req.JobRole == "" {
		return nil, errors.New("Job role is required")
	}
	if len(req.History) == 0 {
		return nil, errors.New("Interview history is required")
	}
	if err := services.ValidateHistory(req.History); err != nil {
		return nil, err
	}

	return &req, nil
}
