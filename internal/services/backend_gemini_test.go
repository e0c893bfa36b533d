package services

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestGeminiGenerator_BuildsRequest(t *testing.T) {
	fake := &fakeModels{resp: textResponse("hello")}
	g := newGeminiGeneratorWithClient(fake)

	prompt := Prompt{
		{Text: "describe this"},
		{InlineData: &Blob{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
		{Text: "   "},
	}
	text, err := g.Generate(context.Background(), "gemini-2.5-flash", prompt, GenerationParams{MaxOutputTokens: 256, Temperature: 0.3})
	require.NoError(t, err)
	require.Equal(t, "hello", text)

	require.Equal(t, "gemini-2.5-flash", fake.model)
	require.Len(t, fake.contents, 1)
	require.Len(t, fake.contents[0].Parts, 2)
	require.Equal(t, "describe this", fake.contents[0].Parts[0].Text)
	require.Equal(t, "image/png", fake.contents[0].Parts[1].InlineData.MIMEType)
	require.Equal(t, int32(256), fake.config.MaxOutputTokens)
	require.InDelta(t, 0.3, *fake.config.Temperature, 1e-6)
}

func TestGeminiGenerator_EmptyResponseIsAnError(t *testing.T) {
	g := newGeminiGeneratorWithClient(&fakeModels{resp: &genai.GenerateContentResponse{}})

	_, err := g.Generate(context.Background(), "m", TextPrompt("hi"), GenerationParams{})
	require.Error(t, err)
	require.Equal(t, ClassUnknown, ClassOf(err))
}

func TestGeminiGenerator_ClassifiesAPIErrors(t *testing.T) {
	cases := []struct {
		err  error
		want UpstreamClass
	}{
		{genai.APIError{Code: 503, Message: "The model is overloaded.", Status: "UNAVAILABLE"}, ClassOverloaded},
		{genai.APIError{Code: 429, Message: "Resource exhausted", Status: "RESOURCE_EXHAUSTED"}, ClassRateLimited},
		{genai.APIError{Code: 403, Message: "Permission denied", Status: "PERMISSION_DENIED"}, ClassPermission},
		{genai.APIError{Code: 400, Message: "Invalid argument", Status: "INVALID_ARGUMENT"}, ClassInvalidRequest},
		{errors.New("rpc error: 503 unavailable"), ClassOverloaded},
	}

	for _, tc := range cases {
		g := newGeminiGeneratorWithClient(&fakeModels{err: tc.err})
		_, err := g.Generate(context.Background(), "m", TextPrompt("hi"), GenerationParams{})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.Equal(t, tc.want, upstream.Class, tc.err.Error())
		require.Equal(t, "gemini:m", upstream.Backend)
	}
}

func TestGeminiGenerator_ContextErrorsPassThrough(t *testing.T) {
	g := newGeminiGeneratorWithClient(&fakeModels{err: context.DeadlineExceeded})

	_, err := g.Generate(context.Background(), "m", TextPrompt("hi"), GenerationParams{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	var upstream *UpstreamError
	require.False(t, errors.As(err, &upstream))
}
