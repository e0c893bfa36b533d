package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/services"
)

type AnswerHandler struct {
	extractor   services.SpeechMetricsExtractor
	evaluator   services.AnswerEvaluator
	archiver    services.RecordingArchiver
	maxFileSize int64
}

// NewAnswerHandler accepts a nil archiver when recordings are not kept.
func NewAnswerHandler(
	extractor services.SpeechMetricsExtractor,
	evaluator services.AnswerEvaluator,
	archiver services.RecordingArchiver,
	maxFileSize int64,
) *AnswerHandler {
	return &AnswerHandler{
		extractor:   extractor,
		evaluator:   evaluator,
		archiver:    archiver,
		maxFileSize: maxFileSize,
	}
}

// HandleTranscribe handles POST /mock-interview/transcribe
func (h *AnswerHandler) HandleTranscribe(c *fiber.Ctx) error {
	audio, _, err := h.readAudio(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	metrics := h.extractor.Extract(c.UserContext(), audio, c.FormValue("transcript"))
	return c.JSON(metrics)
}

// HandleAnalyzeAnswer handles POST /mock-interview/analyze-answer
func (h *AnswerHandler) HandleAnalyzeAnswer(c *fiber.Ctx) error {
	audio, file, err := h.readAudio(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	question := strings.TrimSpace(c.FormValue("question"))
	jobRole := strings.TrimSpace(c.FormValue("jobRole"))
	if question == "" || jobRole == "" {
		return badRequest(c, "Missing required fields: question and jobRole")
	}

	ctx := c.UserContext()
	metrics := h.extractor.Extract(ctx, audio, c.FormValue("transcript"))
	evaluation := h.evaluator.Evaluate(ctx, question, metrics, jobRole)

	if h.archiver != nil {
		if _, err := h.archiver.Archive(ctx, file.Filename, audio, jobRole, evaluation, question); err != nil {
			log.WithError(err).Warn("⚠️ Failed to archive recording")
		}
	}

	return c.JSON(evaluation)
}

func (h *AnswerHandler) readAudio(c *fiber.Ctx) ([]byte, *multipart.FileHeader, error) {
	file, err := c.FormFile("audio")
	if err != nil {
		return nil, nil, fmt.Errorf("No audio file provided")
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return nil, nil, fmt.Errorf("Audio file too large. Max size: %d bytes", h.maxFileSize)
	}
	if _, _, err := services.AudioExtension(file.Filename); err != nil {
		return nil, nil, fmt.Errorf("Unsupported audio format: %s", file.Filename)
	}

	src, err := file.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to open uploaded file")
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to read uploaded file")
	}
	if len(audio) == 0 {
		return nil, nil, fmt.Errorf("Audio file is empty")
	}

	return audio, file, nil
}
