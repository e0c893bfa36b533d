package models

type MetricsSource string

const (
	MetricsSourceTranscription MetricsSource = "transcription"
	MetricsSourceFallback      MetricsSource = "fallback"
)

type WordTiming struct {
	Word      string  `json:"word"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// SpeechMetrics describes the delivery of one recorded answer.
type SpeechMetrics struct {
	Transcript      string        `json:"transcript"`
	Confidence      float64       `json:"confidence"`
	WordsPerMinute  int           `json:"wpm"`
	PauseCount      int           `json:"pauseCount"`
	FillerWordCount int           `json:"fillerCount"`
	DurationSeconds float64       `json:"duration"`
	WordCount       int           `json:"wordCount"`
	Source          MetricsSource `json:"source"`
	Warning         string        `json:"warning,omitempty"`
	Words           []WordTiming  `json:"words,omitempty"`
}

// IsFallback reports whether the metrics were estimated without a transcription.
func (m SpeechMetrics) IsFallback() bool {
	return m.Source == MetricsSourceFallback
}
