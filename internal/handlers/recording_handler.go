package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/repositories"
	"alfredoptarigan/interview-coach/internal/services"
)

type RecordingHandler struct {
	archiver services.RecordingArchiver
}

func NewRecordingHandler(archiver services.RecordingArchiver) *RecordingHandler {
	return &RecordingHandler{
		archiver: archiver,
	}
}

// HandleListRecordings handles GET /mock-interview/recordings?jobRole=&limit=
func (h *RecordingHandler) HandleListRecordings(c *fiber.Ctx) error {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return badRequest(c, "Invalid limit")
		}
		limit = n
	}

	jobRole := c.Query("jobRole")
	recordings, err := h.archiver.List(jobRole, limit)
	if err != nil {
		return respondError(c, err)
	}
	if recordings == nil {
		recordings = []models.Recording{}
	}

	return c.JSON(models.RecordingListResponse{
		JobRole:    jobRole,
		Recordings: recordings,
	})
}

// HandleGetRecording handles GET /mock-interview/recordings/:id
func (h *RecordingHandler) HandleGetRecording(c *fiber.Ctx) error {
	recordingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid recording ID format")
	}

	rec, err := h.archiver.Find(recordingID)
	if err != nil {
		return h.lookupError(c, err)
	}

	return c.JSON(rec)
}

// HandleGetRecordingAudio handles GET /mock-interview/recordings/:id/audio
func (h *RecordingHandler) HandleGetRecordingAudio(c *fiber.Ctx) error {
	recordingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid recording ID format")
	}

	rec, data, err := h.archiver.Audio(c.UserContext(), recordingID)
	if err != nil {
		return h.lookupError(c, err)
	}

	c.Attachment(rec.ObjectName)
	c.Set(fiber.HeaderContentType, rec.ContentType)
	return c.Send(data)
}

func (h *RecordingHandler) lookupError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repositories.ErrRecordingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Error: "Recording not found"})
	}
	return respondError(c, err)
}
