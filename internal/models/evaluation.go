package models

import "time"

type ContentSource string

const (
	ContentSourceModel    ContentSource = "model"
	ContentSourceFallback ContentSource = "fallback"
)

// AnswerEvaluation is the speech metrics of one answer plus its content score.
type AnswerEvaluation struct {
	SpeechMetrics
	Score         int           `json:"score"`
	Justification string        `json:"justification"`
	ContentSource ContentSource `json:"contentSource"`
	Timestamp     time.Time     `json:"timestamp"`
}

// SessionMetrics holds the numeric part of a session report.
type SessionMetrics struct {
	AverageWPM               int     `json:"avgWpm"`
	TotalPauses              int     `json:"totalPauses"`
	TotalFillerWords         int     `json:"totalFillers"`
	AverageContentScore      float64 `json:"avgContentScore"`
	AverageConfidencePercent int     `json:"avgConfidence"`
	QuestionsAnswered        int     `json:"questionsAnswered"`
}

type SessionReport struct {
	Narrative string         `json:"analysis"`
	Metrics   SessionMetrics `json:"metrics"`
}
