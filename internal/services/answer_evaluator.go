package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
)

const (
	scoringMaxOutputTokens = 1024
	scoringTemperature     = float32(0.3)

	FallbackScore         = 3
	FallbackJustification = "Your response was recorded successfully. Due to technical limitations, detailed content analysis is unavailable at the moment."
)

type AnswerEvaluator interface {
	// Evaluate always returns a usable evaluation, substituting a neutral score when
	// the model is unreachable or its output cannot be parsed.
	Evaluate(ctx context.Context, question string, metrics models.SpeechMetrics, jobRole string) models.AnswerEvaluation
}

type answerEvaluator struct {
	invoker       InvocationClient
	promptBuilder *PromptBuilder
	now           func() time.Time
	logger        *log.Entry
}

func NewAnswerEvaluator(invoker InvocationClient) AnswerEvaluator {
	return &answerEvaluator{
		invoker:       invoker,
		promptBuilder: NewPromptBuilder(),
		now:           time.Now,
		logger:        log.WithField("component", "evaluator"),
	}
}

// Evaluate implements AnswerEvaluator.
func (e *answerEvaluator) Evaluate(ctx context.Context, question string, metrics models.SpeechMetrics, jobRole string) models.AnswerEvaluation {
	result := models.AnswerEvaluation{
		SpeechMetrics: metrics,
		Timestamp:     e.now().UTC(),
	}

	prompt := e.promptBuilder.BuildAnswerScoringPrompt(jobRole, question, metrics)
	e.logger.WithField("prompt_length", len(prompt)).Info("🤖 Scoring answer with LLM...")

	temperature := scoringTemperature
	res, err := e.invoker.Invoke(ctx, TextPrompt(prompt), InvokeOptions{
		MaxOutputTokens: scoringMaxOutputTokens,
		Temperature:     &temperature,
	})
	if err != nil {
		e.logger.WithError(err).Warn("⚠️ Scoring call failed, using neutral score")
		return withFallbackScore(result)
	}

	score, err := parseAnswerScore(res.Text())
	if err != nil {
		e.logger.WithError(err).WithField("backend", res.Backend()).Warn("⚠️ Could not parse scoring response, using neutral score")
		return withFallbackScore(result)
	}

	result.Score = score.Score
	result.Justification = score.Justification
	result.ContentSource = models.ContentSourceModel
	e.logger.WithFields(log.Fields{
		"score":   score.Score,
		"backend": res.Backend(),
	}).Info("✅ Answer scored")

	return result
}

func withFallbackScore(e models.AnswerEvaluation) models.AnswerEvaluation {
	e.Score = FallbackScore
	e.Justification = FallbackJustification
	e.ContentSource = models.ContentSourceFallback
	return e
}
