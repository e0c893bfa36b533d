package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/services"
)

type QuestionHandler struct {
	generator services.QuestionGenerator
}

func NewQuestionHandler(generator services.QuestionGenerator) *QuestionHandler {
	return &QuestionHandler{
		generator: generator,
	}
}

// HandleGenerateQuestions handles POST /mock-interview/generate-questions
func (h *QuestionHandler) HandleGenerateQuestions(c *fiber.Ctx) error {
	var req models.GenerateQuestionsRequest

	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	jobRole := strings.TrimSpace(req.JobRole)
	if jobRole == "" {
		return badRequest(c, "Job role is required")
	}

	set, err := h.generator.PrepareInterview(c.UserContext(), jobRole)
	if err != nil {
		return respondError(c, err)
	}

	response := models.GenerateQuestionsResponse{
		Questions: set.Questions,
		JobRole:   jobRole,
		IsValid:   true,
		Fallback:  set.IsFallback(),
	}
	if set.IsFallback() {
		response.Message = "Using fallback questions due to AI service issues"
	}

	return c.JSON(response)
}
