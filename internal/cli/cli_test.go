package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/interview-coach/internal/bootstrap"
	"alfredoptarigan/interview-coach/internal/models"
	"alfredoptarigan/interview-coach/internal/services"
)

type fakeGenerator struct {
	services.QuestionGenerator
	set services.QuestionSet
	err error
}

func (f *fakeGenerator) PrepareInterview(ctx context.Context, jobRole string) (services.QuestionSet, error) {
	return f.set, f.err
}

type fakeAggregator struct {
	history []models.AnswerEvaluation
	jobRole string
}

func (f *fakeAggregator) Aggregate(ctx context.Context, evaluations []models.AnswerEvaluation, jobRole string) (*models.SessionReport, error) {
	f.history, f.jobRole = evaluations, jobRole
	metrics, err := services.Summarize(evaluations)
	if err != nil {
		return nil, err
	}
	return &models.SessionReport{Narrative: "## 🎯 Overall Performance\nSolid.", Metrics: metrics}, nil
}

func run(t *testing.T, p *bootstrap.Pipeline, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	root := NewRootCommand(func(ctx context.Context) (*bootstrap.Pipeline, error) {
		return p, nil
	})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestBackendsCommand(t *testing.T) {
	p := &bootstrap.Pipeline{Backends: []services.ModelBackend{
		{Provider: "gemini", Model: "gemini-2.5-flash", MaxOutputTokens: 2048, Temperature: 0.7},
		{Provider: "bedrock", Model: "amazon.nova-lite-v1:0", MaxOutputTokens: 2048, Temperature: 0.7},
	}}

	out, err := run(t, p, "backends", "--json")
	require.NoError(t, err)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(out), &names))
	require.Equal(t, []string{"gemini:gemini-2.5-flash", "bedrock:amazon.nova-lite-v1:0"}, names)
}

func TestQuestionsCommand(t *testing.T) {
	p := &bootstrap.Pipeline{Generator: &fakeGenerator{set: services.FallbackQuestions("Data Engineer", "model overloaded")}}

	out, err := run(t, p, "questions", "Data", "Engineer")
	require.NoError(t, err)
	require.Contains(t, out, "Interview questions for Data Engineer")
	require.Contains(t, out, "Using fallback questions (model overloaded)")
	require.Contains(t, out, "5. [Leadership")
}

func TestQuestionsCommand_Error(t *testing.T) {
	p := &bootstrap.Pipeline{Generator: &fakeGenerator{err: &services.RoleRejectedError{Role: "Wizard"}}}

	_, err := run(t, p, "questions", "Wizard")
	var rejected *services.RoleRejectedError
	require.True(t, errors.As(err, &rejected))
}

func TestReportCommand(t *testing.T) {
	history := []models.AnswerEvaluation{
		{SpeechMetrics: models.SpeechMetrics{WordsPerMinute: 120, PauseCount: 2, Confidence: 0.8}, Score: 4},
		{SpeechMetrics: models.SpeechMetrics{WordsPerMinute: 140, FillerWordCount: 3, Confidence: 0.9}, Score: 3},
	}
	raw, err := json.Marshal(history)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	agg := &fakeAggregator{}
	out, err := run(t, &bootstrap.Pipeline{Aggregator: agg}, "report", path, "--role", "Chef")
	require.NoError(t, err)
	require.Equal(t, "Chef", agg.jobRole)
	require.Len(t, agg.history, 2)
	require.Contains(t, out, "Session summary (2 questions)")
	require.Contains(t, out, "Average pace: 130 WPM")
	require.Contains(t, out, "Content: 3.5/5")
	require.Contains(t, out, "Solid.")
}

func TestReportCommand_RequiresRole(t *testing.T) {
	_, err := run(t, &bootstrap.Pipeline{Aggregator: &fakeAggregator{}}, "report", "history.json")
	require.Error(t, err)
}
