package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
)

const (
	roleCheckMaxOutputTokens = 100
	roleCheckTemperature     = float32(0.3)
	questionsMaxOutputTokens = 1024
	questionsTemperature     = float32(0.7)

	QuestionsPerInterview = 5
)

type RoleVerdict string

const (
	RoleValid   RoleVerdict = "VALID"
	RoleInvalid RoleVerdict = "INVALID"
)

type QuestionSource string

const (
	QuestionSourceParsed   QuestionSource = "parsed"
	QuestionSourceFallback QuestionSource = "fallback"
)

// QuestionSet carries the generated questions and whether they came from the
// model or from the built-in question bank.
type QuestionSet struct {
	Questions []models.Question `json:"questions"`
	Source    QuestionSource    `json:"source"`
	Reason    string            `json:"reason,omitempty"`
}

func (s QuestionSet) IsFallback() bool {
	return s.Source == QuestionSourceFallback
}

var (
	questionCategories = [QuestionsPerInterview]models.QuestionCategory{
		models.CategoryIntroduction,
		models.CategoryTechnical,
		models.CategoryBehavioral,
		models.CategoryProblemSolving,
		models.CategoryLeadership,
	}
	questionDifficulties = [QuestionsPerInterview]models.Difficulty{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyMedium,
		models.DifficultyHard,
		models.DifficultyHard,
	}
	questionTimeLimits = [QuestionsPerInterview]int{120, 180, 150, 240, 200}

	fallbackQuestionTemplates = [QuestionsPerInterview]string{
		"Tell me about yourself and why you're interested in the %s position.",
		"What are the key skills and technologies required for a %s?",
		"Describe a challenging situation you faced at work and how you handled it.",
		"How would you approach a complex problem in your role as a %s?",
		"Tell me about a time when you had to work with a difficult team member.",
	}

	numberedLine = regexp.MustCompile(`^\d+\.\s*`)
)

type QuestionGenerator interface {
	ClassifyRole(ctx context.Context, jobRole string) (RoleVerdict, error)
	GenerateQuestions(ctx context.Context, jobRole string) (QuestionSet, error)
	// PrepareInterview classifies the role and only generates questions for a valid one.
	PrepareInterview(ctx context.Context, jobRole string) (QuestionSet, error)
}

type questionGenerator struct {
	invoker       InvocationClient
	promptBuilder *PromptBuilder
	logger        *log.Entry
}

func NewQuestionGenerator(invoker InvocationClient) QuestionGenerator {
	return &questionGenerator{
		invoker:       invoker,
		promptBuilder: NewPromptBuilder(),
		logger:        log.WithField("component", "questions"),
	}
}

// ClassifyRole implements QuestionGenerator. Anything other than an explicit
// INVALID answer counts as valid.
func (g *questionGenerator) ClassifyRole(ctx context.Context, jobRole string) (RoleVerdict, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return "", errors.Wrap(ErrValidation, "job role is required")
	}

	temperature := roleCheckTemperature
	res, err := g.invoker.Invoke(ctx, TextPrompt(g.promptBuilder.BuildRoleValidationPrompt(jobRole)), InvokeOptions{
		MaxOutputTokens: roleCheckMaxOutputTokens,
		Temperature:     &temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to validate job role")
	}

	verdict := RoleValid
	if strings.Contains(strings.ToUpper(res.Text()), string(RoleInvalid)) {
		verdict = RoleInvalid
	}
	g.logger.WithFields(log.Fields{
		"job_role": jobRole,
		"verdict":  verdict,
	}).Info("🔍 Job role classified")

	return verdict, nil
}

// GenerateQuestions implements QuestionGenerator.
func (g *questionGenerator) GenerateQuestions(ctx context.Context, jobRole string) (QuestionSet, error) {
	jobRole = strings.TrimSpace(jobRole)
	if jobRole == "" {
		return QuestionSet{}, errors.Wrap(ErrValidation, "job role is required")
	}

	temperature := questionsTemperature
	res, err := g.invoker.Invoke(ctx, TextPrompt(g.promptBuilder.BuildQuestionsPrompt(jobRole)), InvokeOptions{
		MaxOutputTokens: questionsMaxOutputTokens,
		Temperature:     &temperature,
	})
	if err != nil {
		if errors.Is(err, ErrAllBackendsExhausted) && ClassOf(err) == ClassOverloaded {
			g.logger.WithError(err).Warn("⚠️ Model overloaded, using fallback questions")
			return FallbackQuestions(jobRole, "model overloaded"), nil
		}
		return QuestionSet{}, errors.Wrap(err, "failed to generate questions")
	}

	lines := parseNumberedLines(res.Text())
	if len(lines) < QuestionsPerInterview {
		g.logger.WithField("parsed", len(lines)).Warn("⚠️ Could not parse questions, using fallback questions")
		return FallbackQuestions(jobRole, fmt.Sprintf("parsed %d of %d questions", len(lines), QuestionsPerInterview)), nil
	}

	g.logger.WithField("job_role", jobRole).Info("✅ Questions generated")
	return QuestionSet{Questions: buildQuestions(lines), Source: QuestionSourceParsed}, nil
}

// PrepareInterview implements QuestionGenerator.
func (g *questionGenerator) PrepareInterview(ctx context.Context, jobRole string) (QuestionSet, error) {
	verdict, err := g.ClassifyRole(ctx, jobRole)
	if err != nil {
		return QuestionSet{}, err
	}
	if verdict == RoleInvalid {
		return QuestionSet{}, &RoleRejectedError{Role: strings.TrimSpace(jobRole)}
	}
	return g.GenerateQuestions(ctx, jobRole)
}

// FallbackQuestions returns the built-in question bank for a role.
func FallbackQuestions(jobRole, reason string) QuestionSet {
	lines := make([]string, 0, QuestionsPerInterview)
	for _, tmpl := range fallbackQuestionTemplates {
		if strings.Contains(tmpl, "%s") {
			lines = append(lines, fmt.Sprintf(tmpl, jobRole))
		} else {
			lines = append(lines, tmpl)
		}
	}
	return QuestionSet{Questions: buildQuestions(lines), Source: QuestionSourceFallback, Reason: reason}
}

func parseNumberedLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !numberedLine.MatchString(line) {
			continue
		}
		q := strings.TrimSpace(numberedLine.ReplaceAllString(line, ""))
		q = strings.TrimSpace(strings.Trim(q, "*"))
		if q != "" {
			lines = append(lines, q)
		}
	}
	return lines
}

func buildQuestions(lines []string) []models.Question {
	n := min(len(lines), QuestionsPerInterview)
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, models.Question{
			ID:               i + 1,
			Category:         questionCategories[i],
			Text:             lines[i],
			Difficulty:       questionDifficulties[i],
			TimeLimitSeconds: questionTimeLimits[i],
		})
	}
	return questions
}
