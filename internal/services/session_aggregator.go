package services

import (
	"context"
	"math"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
)

const (
	narrativeMaxOutputTokens = 2048
	narrativeTemperature     = float32(0.7)
)

// ValidateHistory rejects client-supplied evaluations that no extractor or
// evaluator could have produced.
func ValidateHistory(evaluations []models.AnswerEvaluation) error {
	if len(evaluations) == 0 {
		return errors.Wrap(ErrValidation, "interview history is empty")
	}

	for i, e := range evaluations {
		switch {
		case e.Score < 1 || e.Score > 5:
			return errors.Wrapf(ErrValidation, "history[%d]: score %d is outside 1..5", i, e.Score)
		case e.Confidence < 0 || e.Confidence > 1:
			return errors.Wrapf(ErrValidation, "history[%d]: confidence %g is outside [0,1]", i, e.Confidence)
		case e.WordsPerMinute < 0:
			return errors.Wrapf(ErrValidation, "history[%d]: wpm %d is negative", i, e.WordsPerMinute)
		case e.WordCount < 0:
			return errors.Wrapf(ErrValidation, "history[%d]: word count %d is negative", i, e.WordCount)
		case e.PauseCount < 0:
			return errors.Wrapf(ErrValidation, "history[%d]: pause count %d is negative", i, e.PauseCount)
		case e.FillerWordCount < 0:
			return errors.Wrapf(ErrValidation, "history[%d]: filler word count %d is negative", i, e.FillerWordCount)
		case e.DurationSeconds < 0:
			return errors.Wrapf(ErrValidation, "history[%d]: duration %g is negative", i, e.DurationSeconds)
		}
	}
	return nil
}

// Summarize reduces per-answer evaluations into session metrics. It makes no external calls.
func Summarize(evaluations []models.AnswerEvaluation) (models.SessionMetrics, error) {
	if err := ValidateHistory(evaluations); err != nil {
		return models.SessionMetrics{}, err
	}

	var (
		sumWPM        int
		sumScore      int
		sumConfidence float64
		summary       models.SessionMetrics
	)
	for _, e := range evaluations {
		sumWPM += e.WordsPerMinute
		sumScore += e.Score
		sumConfidence += e.Confidence
		summary.TotalPauses += e.PauseCount
		summary.TotalFillerWords += e.FillerWordCount
	}

	n := float64(len(evaluations))
	summary.QuestionsAnswered = len(evaluations)
	summary.AverageWPM = int(math.Round(float64(sumWPM) / n))
	summary.AverageContentScore = math.Round(float64(sumScore)/n*10) / 10
	summary.AverageConfidencePercent = int(math.Round(sumConfidence / n * 100))

	return summary, nil
}

type SessionAggregator interface {
	// Aggregate fails with ErrValidation on an empty history and propagates
	// backend exhaustion; it never returns a report without a narrative.
	Aggregate(ctx context.Context, evaluations []models.AnswerEvaluation, jobRole string) (*models.SessionReport, error)
}

type sessionAggregator struct {
	invoker       InvocationClient
	promptBuilder *PromptBuilder
	logger        *log.Entry
}

func NewSessionAggregator(invoker InvocationClient) SessionAggregator {
	return &sessionAggregator{
		invoker:       invoker,
		promptBuilder: NewPromptBuilder(),
		logger:        log.WithField("component", "aggregator"),
	}
}

// Aggregate implements SessionAggregator.
func (a *sessionAggregator) Aggregate(ctx context.Context, evaluations []models.AnswerEvaluation, jobRole string) (*models.SessionReport, error) {
	summary, err := Summarize(evaluations)
	if err != nil {
		return nil, err
	}

	a.logger.WithFields(log.Fields{
		"questions": summary.QuestionsAnswered,
		"job_role":  jobRole,
	}).Info("📊 Generating final interview analysis")

	prompt := a.promptBuilder.BuildSessionNarrativePrompt(jobRole, summary, evaluations)
	temperature := narrativeTemperature
	res, err := a.invoker.Invoke(ctx, TextPrompt(prompt), InvokeOptions{
		MaxOutputTokens: narrativeMaxOutputTokens,
		Temperature:     &temperature,
	})
	if err != nil {
		a.logger.WithError(err).Error("❌ Final analysis failed")
		return nil, errors.Wrap(err, "failed to generate final analysis")
	}

	narrative := strings.TrimSpace(res.Text())
	if narrative == "" {
		return nil, errors.Wrap(ErrMalformedModelOutput, "final analysis is empty")
	}

	a.logger.WithField("backend", res.Backend()).Info("✅ Final analysis generated")
	return &models.SessionReport{Narrative: narrative, Metrics: summary}, nil
}
