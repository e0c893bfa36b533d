package services

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestInvoker(t *testing.T, backends []ModelBackend, gens ...Generator) (InvocationClient, *noSleep, *test.Hook) {
	t.Helper()
	ns := &noSleep{}
	policy := DefaultRetryPolicy()
	policy.Sleep = ns.Sleep

	logger, hook := test.NewNullLogger()
	client, err := NewInvocationClient(backends, gens, WithRetryPolicy(policy), WithLogger(logger))
	require.NoError(t, err)
	return client, ns, hook
}

var twoBackends = []ModelBackend{
	{Provider: "fake", Model: "primary", MaxOutputTokens: 2048, Temperature: 0.7},
	{Provider: "fake", Model: "secondary", MaxOutputTokens: 1024, Temperature: 0.5},
}

func TestInvoke_EmptyPromptMakesNoCalls(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", ok("hi"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	prompts := []Prompt{
		nil,
		TextPrompt(""),
		TextPrompt("   \n\t"),
		{{Text: " "}, {InlineData: &Blob{MIMEType: "image/png"}}},
	}
	for _, p := range prompts {
		res, err := client.Invoke(context.Background(), p, InvokeOptions{})
		require.Nil(t, res)
		require.ErrorIs(t, err, ErrValidation)
	}
	require.Zero(t, gen.totalCalls())
}

func TestInvoke_InlineDataOnlyPromptIsValid(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", ok("a cat"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	res, err := client.Invoke(context.Background(), Prompt{{InlineData: &Blob{MIMEType: "image/png", Data: []byte{0x89, 0x50}}}}, InvokeOptions{})
	require.NoError(t, err)
	require.Equal(t, "a cat", res.Text())
}

func TestInvoke_NormalizesResult(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", ok("hello"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	res, err := client.Invoke(context.Background(), TextPrompt("say hello"), InvokeOptions{})
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Equal(t, "hello", res.Text())
	require.Equal(t, "hello", res.Candidates()[0].Content.Parts[0].Text)
	require.Equal(t, "fake:primary", res.Backend())
	require.Equal(t, 1, res.Attempts())
	require.Zero(t, gen.callsFor("secondary"))
}

func TestInvoke_RetriesOverloadThenSucceeds(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary",
		fail(ClassOverloaded, 503),
		fail(ClassRateLimited, 429),
		ok("third time"),
	)
	client, ns, _ := newTestInvoker(t, twoBackends, gen)

	res, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.NoError(t, err)
	require.Equal(t, "third time", res.Text())
	require.Equal(t, 3, res.Attempts())
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, ns.delays)
}

func TestInvoke_FallsBackAfterRetriesExhausted(t *testing.T) {
	gen := newFakeGenerator("fake").
		on("primary", fail(ClassOverloaded, 503)).
		on("secondary", ok("from secondary"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	res, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.NoError(t, err)
	require.Equal(t, "from secondary", res.Text())
	require.Equal(t, "fake:secondary", res.Backend())
	require.Equal(t, 3, gen.callsFor("primary"))
	require.Equal(t, 1, gen.callsFor("secondary"))
	require.Equal(t, 4, res.Attempts())
}

func TestInvoke_PermissionErrorAdvancesWithoutRetry(t *testing.T) {
	gen := newFakeGenerator("fake").
		on("primary", fail(ClassPermission, 403)).
		on("secondary", ok("ok"))
	client, ns, _ := newTestInvoker(t, twoBackends, gen)

	_, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, gen.callsFor("primary"))
	require.Empty(t, ns.delays)
}

func TestInvoke_AllBackendsExhausted(t *testing.T) {
	gen := newFakeGenerator("fake").
		on("primary", fail(ClassOverloaded, 503)).
		on("secondary", fail(ClassInvalidRequest, 400))
	client, _, hook := newTestInvoker(t, twoBackends, gen)

	res, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrAllBackendsExhausted)

	var exhaustedErr *ExhaustedError
	require.ErrorAs(t, err, &exhaustedErr)
	require.Equal(t, 4, exhaustedErr.Attempts)
	require.Equal(t, ClassInvalidRequest, ClassOf(exhaustedErr.Last))
	require.Equal(t, 3, gen.callsFor("primary"))
	require.Equal(t, 1, gen.callsFor("secondary"))

	require.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	require.Equal(t, "❌ All model backends failed", hook.LastEntry().Message)
}

func TestInvoke_CallParamsOverrideBackendDefaults(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", ok("x"), ok("y"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	_, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.NoError(t, err)
	temperature := float32(0.3)
	_, err = client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{MaxOutputTokens: 100, Temperature: &temperature})
	require.NoError(t, err)

	require.Equal(t, GenerationParams{MaxOutputTokens: 2048, Temperature: 0.7}, gen.calls[0].Params)
	require.Equal(t, GenerationParams{MaxOutputTokens: 100, Temperature: 0.3}, gen.calls[1].Params)
}

func TestInvoke_BackendOverrideList(t *testing.T) {
	gen := newFakeGenerator("fake").on("secondary", ok("y"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	res, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{Backends: twoBackends[1:]})
	require.NoError(t, err)
	require.Equal(t, "fake:secondary", res.Backend())
	require.Zero(t, gen.callsFor("primary"))
}

func TestInvoke_CancelledContextAbandonsFallback(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", ok("x"))
	client, _, _ := newTestInvoker(t, twoBackends, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Invoke(ctx, TextPrompt("hi"), InvokeOptions{})
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrAllBackendsExhausted)
	require.Zero(t, gen.totalCalls())
}

func TestInvoke_LogsRetriesAndSuccess(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", fail(ClassRateLimited, 429), ok("done"))
	client, _, hook := newTestInvoker(t, twoBackends, gen)

	_, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.NoError(t, err)

	var retried, succeeded bool
	for _, e := range hook.AllEntries() {
		if e.Data["error_class"] == ClassRateLimited && e.Level == logrus.WarnLevel {
			retried = true
			require.Equal(t, 1, e.Data["attempt"])
		}
		if e.Message == "✅ Generated content" {
			succeeded = true
			require.Equal(t, "fake:primary", e.Data["backend"])
		}
	}
	require.True(t, retried)
	require.True(t, succeeded)
}

func TestNewInvocationClient_RequiresDriverForEveryProvider(t *testing.T) {
	_, err := NewInvocationClient(nil, nil)
	require.Error(t, err)

	_, err = NewInvocationClient([]ModelBackend{{Provider: "bedrock", Model: "m"}}, []Generator{newFakeGenerator("gemini")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bedrock")
}

func TestInvoke_UnclassifiedErrorUsesMessage(t *testing.T) {
	gen := newFakeGenerator("fake").on("primary", fakeReply{err: errors.New("googleapi: Error 503: model is overloaded")})
	client, _, _ := newTestInvoker(t, twoBackends[:1], gen)

	_, err := client.Invoke(context.Background(), TextPrompt("hi"), InvokeOptions{})
	require.ErrorIs(t, err, ErrAllBackendsExhausted)
	require.Equal(t, 3, gen.callsFor("primary"))
}
