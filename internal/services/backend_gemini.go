package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const ProviderGemini = "gemini"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiConfig struct {
	APIKey string
	// Project and Location switch the client to Vertex AI with application default credentials.
	Project  string
	Location string
}

type geminiGenerator struct {
	models contentGenerator
}

func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (Generator, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" {
		clientConfig = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
		log.Infof("🔷 Initializing Vertex AI (project: %s, region: %s)", cfg.Project, cfg.Location)
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{models: client.Models}, nil
}

func newGeminiGeneratorWithClient(models contentGenerator) Generator {
	return &geminiGenerator{models: models}
}

func (g *geminiGenerator) Provider() string {
	return ProviderGemini
}

// Generate implements Generator.
func (g *geminiGenerator) Generate(ctx context.Context, model string, prompt Prompt, params GenerationParams) (string, error) {
	temperature := params.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: params.MaxOutputTokens,
	}

	parts := make([]*genai.Part, 0, len(prompt))
	for _, p := range prompt {
		switch {
		case p.InlineData != nil && len(p.InlineData.Data) > 0:
			parts = append(parts, genai.NewPartFromBytes(p.InlineData.Data, p.InlineData.MIMEType))
		case strings.TrimSpace(p.Text) != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", classifyGeminiError(ProviderGemini+":"+model, err)
	}
	if resp == nil {
		return "", &UpstreamError{Backend: ProviderGemini + ":" + model, Class: ClassUnknown, Err: errors.New("no response generated (nil response)")}
	}

	text := resp.Text()
	if text == "" {
		// some responses only carry text inside the candidate parts
		var textParts []string
		for _, candidate := range resp.Candidates {
			if candidate == nil || candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					textParts = append(textParts, part.Text)
				}
			}
		}
		text = strings.Join(textParts, "\n")
	}
	if strings.TrimSpace(text) == "" {
		return "", &UpstreamError{Backend: ProviderGemini + ":" + model, Class: ClassUnknown, Err: errors.New("no text content in response")}
	}

	return text, nil
}

func classifyGeminiError(backend string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		class := classFromStatus(apiErr.Code)
		if class == ClassUnknown {
			class = ClassifyMessage(apiErr.Status + " " + apiErr.Message)
		}
		return &UpstreamError{Backend: backend, Class: class, StatusCode: apiErr.Code, Err: err}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &UpstreamError{Backend: backend, Class: classFromStatus(apiErrPtr.Code), StatusCode: apiErrPtr.Code, Err: err}
	}

	return &UpstreamError{Backend: backend, Class: ClassifyMessage(err.Error()), Err: err}
}
