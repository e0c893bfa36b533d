package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

const ProviderBedrock = "bedrock"

type converseClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type bedrockGenerator struct {
	client converseClient
}

func NewBedrockGenerator(ctx context.Context, region string) (Generator, error) {
	if strings.TrimSpace(region) == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return &bedrockGenerator{client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func newBedrockGeneratorWithClient(client converseClient) Generator {
	return &bedrockGenerator{client: client}
}

func (b *bedrockGenerator) Provider() string {
	return ProviderBedrock
}

// Generate implements Generator.
func (b *bedrockGenerator) Generate(ctx context.Context, model string, prompt Prompt, params GenerationParams) (string, error) {
	backend := ProviderBedrock + ":" + model

	content := make([]brtypes.ContentBlock, 0, len(prompt))
	for _, p := range prompt {
		switch {
		case p.InlineData != nil && len(p.InlineData.Data) > 0:
			format, ok := imageFormat(p.InlineData.MIMEType)
			if !ok {
				return "", &UpstreamError{
					Backend: backend,
					Class:   ClassInvalidRequest,
					Err:     errors.Errorf("unsupported inline data type %q", p.InlineData.MIMEType),
				}
			}
			content = append(content, &brtypes.ContentBlockMemberImage{
				Value: brtypes.ImageBlock{
					Format: format,
					Source: &brtypes.ImageSourceMemberBytes{Value: p.InlineData.Data},
				},
			})
		case strings.TrimSpace(p.Text) != "":
			content = append(content, &brtypes.ContentBlockMemberText{Value: p.Text})
		}
	}

	out, err := b.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		Messages: []brtypes.Message{
			{Role: brtypes.ConversationRoleUser, Content: content},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(params.MaxOutputTokens),
			Temperature: aws.Float32(params.Temperature),
		},
	})
	if err != nil {
		return "", classifyBedrockError(backend, err)
	}

	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return "", &UpstreamError{Backend: backend, Class: ClassUnknown, Err: errors.New("no message in converse output")}
	}
	var texts []string
	for _, block := range msg.Value.Content {
		if text, ok := block.(*brtypes.ContentBlockMemberText); ok {
			texts = append(texts, text.Value)
		}
	}
	if len(texts) == 0 {
		return "", &UpstreamError{Backend: backend, Class: ClassUnknown, Err: errors.New("no text content in converse output")}
	}

	return strings.Join(texts, "\n"), nil
}

func classifyBedrockError(backend string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException", "ServiceQuotaExceededException":
			return &UpstreamError{Backend: backend, Class: ClassRateLimited, StatusCode: 429, Err: err}
		case "ServiceUnavailableException", "ModelNotReadyException":
			return &UpstreamError{Backend: backend, Class: ClassOverloaded, StatusCode: 503, Err: err}
		case "AccessDeniedException", "UnrecognizedClientException":
			return &UpstreamError{Backend: backend, Class: ClassPermission, StatusCode: 403, Err: err}
		case "ValidationException", "ResourceNotFoundException":
			return &UpstreamError{Backend: backend, Class: ClassInvalidRequest, StatusCode: 400, Err: err}
		default:
			return &UpstreamError{Backend: backend, Class: ClassUnknown, Err: err}
		}
	}

	return &UpstreamError{Backend: backend, Class: ClassifyMessage(err.Error()), Err: err}
}

// imageFormat turns "image/jpeg" into "jpeg". Only image types Converse accepts are valid.
func imageFormat(mimeType string) (brtypes.ImageFormat, bool) {
	kind, sub, ok := strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), "/")
	if !ok || kind != "image" {
		return "", false
	}
	format := brtypes.ImageFormat(sub)
	return format, slices.Contains(format.Values(), format)
}
