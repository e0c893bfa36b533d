package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/models"
)

const (
	pauseGapSeconds   = 0.5
	noSpeechWarning   = "No speech detected in the audio"
	fallbackMinWPM    = 60
	fallbackMaxWPM    = 200
	fallbackMinDurSec = 10
	fallbackMaxDurSec = 300
)

var FillerWords = []string{"um", "uh", "like", "so", "you know", "actually", "basically", "literally", "kind of", "sort of"}

var fillerPatterns = compileFillerPatterns(FillerWords)

func compileFillerPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		parts := strings.Fields(w)
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+strings.Join(parts, `\s+`)+`\b`))
	}
	return patterns
}

// CountFillerWords counts every whole-word, case-insensitive occurrence of a filler term.
func CountFillerWords(transcript string) int {
	count := 0
	for _, p := range fillerPatterns {
		count += len(p.FindAllStringIndex(transcript, -1))
	}
	return count
}

// ComputeSpeechMetrics derives delivery metrics from a transcription with word timings.
func ComputeSpeechMetrics(t *Transcription) models.SpeechMetrics {
	m := models.SpeechMetrics{
		Transcript: t.Transcript,
		Confidence: clamp01(t.Confidence),
		Source:     models.MetricsSourceTranscription,
		Words:      t.Words,
	}
	if strings.TrimSpace(t.Transcript) == "" {
		return m
	}

	m.FillerWordCount = CountFillerWords(t.Transcript)
	if len(t.Words) == 0 {
		m.WordCount = len(strings.Fields(t.Transcript))
		return m
	}

	m.WordCount = len(t.Words)
	m.DurationSeconds = t.Words[len(t.Words)-1].EndTime
	if m.DurationSeconds > 0 {
		m.WordsPerMinute = int(math.Round(float64(m.WordCount) / m.DurationSeconds * 60))
	}
	for i := 1; i < len(t.Words); i++ {
		if t.Words[i].StartTime-t.Words[i-1].EndTime > pauseGapSeconds {
			m.PauseCount++
		}
	}

	return m
}

// EstimateSpeechMetrics is the heuristic used when no transcription is available.
// intn returns a pseudo-random int in [0, n).
func EstimateSpeechMetrics(audioSize int, transcript string, intn func(int) int) models.SpeechMetrics {
	duration := math.Max(fallbackMinDurSec, math.Min(fallbackMaxDurSec, float64(audioSize)/10000))
	transcript = strings.TrimSpace(transcript)

	m := models.SpeechMetrics{
		DurationSeconds: duration,
		Source:          models.MetricsSourceFallback,
		PauseCount:      int(duration/10) + intn(3),
	}

	if transcript != "" {
		m.Transcript = transcript
		m.WordCount = len(strings.Fields(transcript))
		m.FillerWordCount = CountFillerWords(transcript)
		m.Confidence = 0.75
	} else {
		m.Transcript = fmt.Sprintf("[Fallback: Transcript unavailable for %ds audio]", int(duration))
		m.WordCount = audioSize / 1000
		m.FillerWordCount = intn(5)
		m.Confidence = 0.5
	}

	wpm := int(math.Round(float64(m.WordCount) / duration * 60))
	m.WordsPerMinute = max(fallbackMinWPM, min(fallbackMaxWPM, wpm))

	return m
}

type SpeechMetricsExtractor interface {
	// Transcribe calls the transcription service once and fails when it is unavailable.
	Transcribe(ctx context.Context, audio []byte) (models.SpeechMetrics, error)
	// Extract never fails: it degrades to EstimateSpeechMetrics.
	Extract(ctx context.Context, audio []byte, suppliedTranscript string) models.SpeechMetrics
}

type speechMetricsExtractor struct {
	transcriber Transcriber
	audioConfig AudioConfig
	intn        func(int) int
	logger      *log.Entry
}

// NewSpeechMetricsExtractor accepts a nil transcriber, in which case every
// extraction uses the fallback estimator.
func NewSpeechMetricsExtractor(transcriber Transcriber, audioConfig AudioConfig) SpeechMetricsExtractor {
	return &speechMetricsExtractor{
		transcriber: transcriber,
		audioConfig: audioConfig,
		intn:        rand.IntN,
		logger:      log.WithField("component", "speech"),
	}
}

// Transcribe implements SpeechMetricsExtractor.
func (s *speechMetricsExtractor) Transcribe(ctx context.Context, audio []byte) (models.SpeechMetrics, error) {
	if len(audio) == 0 {
		return models.SpeechMetrics{}, errors.Wrap(ErrValidation, "audio is empty")
	}
	if s.transcriber == nil {
		return models.SpeechMetrics{}, errors.New("speech-to-text service is not configured")
	}

	s.logger.WithField("size", len(audio)).Info("🎙️ Sending audio to speech-to-text")
	t, err := s.transcriber.Transcribe(ctx, audio, s.audioConfig)
	if err != nil {
		return models.SpeechMetrics{}, errors.Wrap(err, "transcription failed")
	}

	if strings.TrimSpace(t.Transcript) == "" && len(t.Words) == 0 {
		s.logger.Info("🔇 No transcription results")
		return models.SpeechMetrics{
			Source:  models.MetricsSourceTranscription,
			Warning: noSpeechWarning,
		}, nil
	}

	m := ComputeSpeechMetrics(t)
	s.logger.WithFields(log.Fields{
		"length":     len(m.Transcript),
		"confidence": m.Confidence,
		"word_count": m.WordCount,
	}).Info("✅ Transcription successful")
	return m, nil
}

// Extract implements SpeechMetricsExtractor.
func (s *speechMetricsExtractor) Extract(ctx context.Context, audio []byte, suppliedTranscript string) models.SpeechMetrics {
	m, err := s.Transcribe(ctx, audio)
	if err == nil {
		return m
	}

	s.logger.WithError(err).Warn("⚠️ Using fallback speech analysis")
	return EstimateSpeechMetrics(len(audio), suppliedTranscript, s.intn)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
