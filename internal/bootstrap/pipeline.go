package bootstrap

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"alfredoptarigan/interview-coach/internal/config"
	"alfredoptarigan/interview-coach/internal/services"
)

// Pipeline holds the stateless assessment components shared by the API and the CLI.
type Pipeline struct {
	Backends   []services.ModelBackend
	Invoker    services.InvocationClient
	Extractor  services.SpeechMetricsExtractor
	Evaluator  services.AnswerEvaluator
	Aggregator services.SessionAggregator
	Generator  services.QuestionGenerator
}

func NewPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	backends, err := cfg.ModelBackends()
	if err != nil {
		return nil, errors.Wrap(err, "invalid LLM_BACKENDS")
	}

	generators, err := newGenerators(ctx, cfg, backends)
	if err != nil {
		return nil, err
	}

	invoker, err := services.NewInvocationClient(backends, generators, services.WithRetryPolicy(cfg.RetryPolicy()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create invocation client")
	}
	log.WithField("backends", len(backends)).Info("✅ Model backends initialized")

	var transcriber services.Transcriber
	if cfg.Speech.Enabled {
		transcriber, err = services.NewGoogleTranscriber(ctx, cfg.Speech.CredentialsFile)
		if err != nil {
			log.WithError(err).Warn("⚠️ Speech-to-text unavailable, using fallback speech analysis")
			transcriber = nil
		} else {
			log.Info("✅ Speech-to-text initialized")
		}
	}

	return &Pipeline{
		Backends:   backends,
		Invoker:    invoker,
		Extractor:  services.NewSpeechMetricsExtractor(transcriber, cfg.AudioConfig()),
		Evaluator:  services.NewAnswerEvaluator(invoker),
		Aggregator: services.NewSessionAggregator(invoker),
		Generator:  services.NewQuestionGenerator(invoker),
	}, nil
}

// newGenerators creates one driver per provider named in the backend list.
func newGenerators(ctx context.Context, cfg *config.Config, backends []services.ModelBackend) ([]services.Generator, error) {
	seen := map[string]bool{}
	var generators []services.Generator
	for _, b := range backends {
		if seen[b.Provider] {
			continue
		}
		seen[b.Provider] = true

		var (
			g   services.Generator
			err error
		)
		switch b.Provider {
		case services.ProviderGemini:
			g, err = services.NewGeminiGenerator(ctx, services.GeminiConfig{
				APIKey:   cfg.Gemini.APIKey,
				Project:  cfg.Gemini.Project,
				Location: cfg.Gemini.Location,
			})
		case services.ProviderBedrock:
			g, err = services.NewBedrockGenerator(ctx, cfg.Bedrock.Region)
		default:
			return nil, errors.Errorf("unknown model provider %q", b.Provider)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to initialize %s", b.Provider)
		}
		generators = append(generators, g)
	}
	return generators, nil
}

// NewRecordingStore returns the configured recording store, ready for writes.
func NewRecordingStore(ctx context.Context, cfg *config.Config) (services.RecordingStore, error) {
	var store services.RecordingStore
	switch cfg.Storage.Driver {
	case services.StorageDriverMinio:
		s, err := services.NewMinioRecordingStore(services.MinioConfig{
			Endpoint:        cfg.Storage.MinioEndpoint,
			AccessKeyID:     cfg.Storage.MinioAccessKey,
			SecretAccessKey: cfg.Storage.MinioSecretKey,
			Bucket:          cfg.Storage.MinioBucket,
			UseSSL:          cfg.Storage.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		store = s
	case services.StorageDriverLocal, "":
		store = services.NewLocalRecordingStore(cfg.Storage.UploadPath)
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err := store.EnsureReady(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
