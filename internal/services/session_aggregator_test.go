package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"alfredoptarigan/interview-coach/internal/models"
)

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	require.ErrorIs(t, err, ErrValidation)
}

func TestSummarize_RejectsImpossibleEvaluations(t *testing.T) {
	valid := evaluation(4, 130, 1, 1, 0.8)
	tests := []struct {
		name   string
		mutate func(e *models.AnswerEvaluation)
		msg    string
	}{
		{"score below range", func(e *models.AnswerEvaluation) { e.Score = 0 }, "score 0 is outside 1..5"},
		{"score above range", func(e *models.AnswerEvaluation) { e.Score = 42 }, "score 42 is outside 1..5"},
		{"negative confidence", func(e *models.AnswerEvaluation) { e.Confidence = -0.1 }, "confidence"},
		{"confidence above one", func(e *models.AnswerEvaluation) { e.Confidence = 7 }, "confidence 7 is outside [0,1]"},
		{"negative wpm", func(e *models.AnswerEvaluation) { e.WordsPerMinute = -50 }, "wpm -50 is negative"},
		{"negative word count", func(e *models.AnswerEvaluation) { e.WordCount = -1 }, "word count"},
		{"negative pauses", func(e *models.AnswerEvaluation) { e.PauseCount = -1 }, "pause count"},
		{"negative fillers", func(e *models.AnswerEvaluation) { e.FillerWordCount = -1 }, "filler word count"},
		{"negative duration", func(e *models.AnswerEvaluation) { e.DurationSeconds = -3 }, "duration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := valid
			tt.mutate(&bad)

			_, err := Summarize([]models.AnswerEvaluation{valid, bad})
			require.ErrorIs(t, err, ErrValidation)
			require.ErrorContains(t, err, "history[1]: "+tt.msg)
		})
	}
}

func TestSummarize_AcceptsBoundaryValues(t *testing.T) {
	_, err := Summarize([]models.AnswerEvaluation{
		evaluation(1, 0, 0, 0, 0),
		evaluation(5, 400, 9, 9, 1),
	})
	require.NoError(t, err)
}

func TestAggregate_InvalidHistoryMakesNoCall(t *testing.T) {
	inv := &fakeInvoker{replies: []fakeReply{ok("narrative")}}

	_, err := NewSessionAggregator(inv).Aggregate(context.Background(), []models.AnswerEvaluation{evaluation(0, 120, 1, 1, 0.7)}, "Chef")
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, inv.calls())
}

func TestSummarize_AveragesScores(t *testing.T) {
	history := []models.AnswerEvaluation{
		evaluation(5, 120, 2, 1, 0.9),
		evaluation(4, 130, 3, 0, 0.8),
		evaluation(3, 140, 1, 2, 0.7),
		evaluation(2, 150, 0, 3, 0.6),
		evaluation(1, 161, 4, 4, 0.55),
	}

	got, err := Summarize(history)
	require.NoError(t, err)
	require.Equal(t, models.SessionMetrics{
		AverageWPM:               140,
		TotalPauses:              10,
		TotalFillerWords:         10,
		AverageContentScore:      3.0,
		AverageConfidencePercent: 71,
		QuestionsAnswered:        5,
	}, got)
}

func TestSummarize_RoundsContentScoreToOneDecimal(t *testing.T) {
	got, err := Summarize([]models.AnswerEvaluation{
		evaluation(4, 100, 0, 0, 0.5),
		evaluation(4, 100, 0, 0, 0.5),
		evaluation(3, 101, 0, 0, 0.5),
	})
	require.NoError(t, err)
	require.Equal(t, 3.7, got.AverageContentScore)
	require.Equal(t, 100, got.AverageWPM)
	require.Equal(t, 50, got.AverageConfidencePercent)
}

func TestAggregate_SingleEvaluation(t *testing.T) {
	inv := &fakeInvoker{replies: []fakeReply{ok("## 🎯 Overall Performance\nSolid.")}}
	agg := NewSessionAggregator(inv)

	report, err := agg.Aggregate(context.Background(), []models.AnswerEvaluation{evaluation(4, 135, 2, 1, 0.88)}, "Data Analyst")
	require.NoError(t, err)
	require.Equal(t, "## 🎯 Overall Performance\nSolid.", report.Narrative)
	require.Equal(t, models.SessionMetrics{
		AverageWPM:               135,
		TotalPauses:              2,
		TotalFillerWords:         1,
		AverageContentScore:      4.0,
		AverageConfidencePercent: 88,
		QuestionsAnswered:        1,
	}, report.Metrics)

	prompt := inv.prompts[0][0].Text
	for _, section := range []string{"Overall Performance", "Strengths", "Areas for Improvement", "Speaking Delivery Tips", "Final Encouragement"} {
		require.Contains(t, prompt, section)
	}
	require.Contains(t, prompt, "Question 1:")
	require.Contains(t, prompt, "'Data Analyst'")
}

func TestAggregate_EmptyHistoryMakesNoCall(t *testing.T) {
	inv := &fakeInvoker{replies: []fakeReply{ok("narrative")}}

	_, err := NewSessionAggregator(inv).Aggregate(context.Background(), []models.AnswerEvaluation{}, "Chef")
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, inv.calls())
}

func TestAggregate_ExhaustionIsTerminal(t *testing.T) {
	inv := &fakeInvoker{replies: []fakeReply{exhausted(ClassOverloaded)}}

	report, err := NewSessionAggregator(inv).Aggregate(context.Background(), []models.AnswerEvaluation{evaluation(3, 120, 1, 1, 0.7)}, "Chef")
	require.Nil(t, report)
	require.ErrorIs(t, err, ErrAllBackendsExhausted)
}

func TestAggregate_NumericFieldsAreIdempotent(t *testing.T) {
	history := []models.AnswerEvaluation{evaluation(5, 150, 1, 0, 0.95), evaluation(2, 110, 5, 6, 0.6)}
	inv := &fakeInvoker{replies: []fakeReply{ok("first narrative"), ok("second narrative")}}
	agg := NewSessionAggregator(inv)

	first, err := agg.Aggregate(context.Background(), history, "Librarian")
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), history, "Librarian")
	require.NoError(t, err)

	require.Equal(t, first.Metrics, second.Metrics)
	require.NotEqual(t, first.Narrative, second.Narrative)
}
