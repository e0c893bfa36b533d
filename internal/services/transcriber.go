package services

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"alfredoptarigan/interview-coach/internal/models"
)

type AudioConfig struct {
	Encoding        string
	SampleRateHertz int32
	LanguageCode    string
	Model           string
}

// DefaultAudioConfig matches browser MediaRecorder output.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		Encoding:        "WEBM_OPUS",
		SampleRateHertz: 48000,
		LanguageCode:    "en-US",
		Model:           "default",
	}
}

type Transcription struct {
	Transcript string
	Confidence float64
	Words      []models.WordTiming
}

// Transcriber turns raw audio into a transcript with word timings.
// Zero results is a valid outcome and yields an empty Transcription.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, cfg AudioConfig) (*Transcription, error)
}

type googleTranscriber struct {
	client *speech.Client
}

func NewGoogleTranscriber(ctx context.Context, credentialsFile string) (Transcriber, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	return &googleTranscriber{client: client}, nil
}

// Transcribe implements Transcriber.
func (g *googleTranscriber) Transcribe(ctx context.Context, audio []byte, cfg AudioConfig) (*Transcription, error) {
	encoding, ok := speechpb.RecognitionConfig_AudioEncoding_value[strings.ToUpper(cfg.Encoding)]
	if !ok {
		return nil, fmt.Errorf("unsupported audio encoding: %s", cfg.Encoding)
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_AudioEncoding(encoding),
			SampleRateHertz:            cfg.SampleRateHertz,
			LanguageCode:               cfg.LanguageCode,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
			Model:                      cfg.Model,
			UseEnhanced:                true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("speech recognition failed: %w", err)
	}

	return transcriptionFromResponse(resp), nil
}

func transcriptionFromResponse(resp *speechpb.RecognizeResponse) *Transcription {
	out := &Transcription{}
	if resp == nil {
		return out
	}

	var transcripts []string
	for i, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		best := alternatives[0]
		transcripts = append(transcripts, best.GetTranscript())
		if i == 0 {
			out.Confidence = float64(best.GetConfidence())
		}
		for _, w := range best.GetWords() {
			out.Words = append(out.Words, models.WordTiming{
				Word:      w.GetWord(),
				StartTime: w.GetStartTime().AsDuration().Seconds(),
				EndTime:   w.GetEndTime().AsDuration().Seconds(),
			})
		}
	}
	out.Transcript = strings.Join(transcripts, " ")

	return out
}
