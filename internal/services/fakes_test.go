package services

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"alfredoptarigan/interview-coach/internal/models"
)

type generateCall struct {
	Model  string
	Prompt Prompt
	Params GenerationParams
}

// fakeGenerator replays scripted results per model; the last entry repeats.
type fakeGenerator struct {
	provider string

	mu      sync.Mutex
	replies map[string][]fakeReply
	calls   []generateCall
}

type fakeReply struct {
	text string
	err  error
}

func newFakeGenerator(provider string) *fakeGenerator {
	return &fakeGenerator{provider: provider, replies: map[string][]fakeReply{}}
}

func (f *fakeGenerator) on(model string, replies ...fakeReply) *fakeGenerator {
	f.replies[model] = append(f.replies[model], replies...)
	return f
}

func (f *fakeGenerator) Provider() string { return f.provider }

func (f *fakeGenerator) Generate(ctx context.Context, model string, prompt Prompt, params GenerationParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, generateCall{Model: model, Prompt: prompt, Params: params})
	queue := f.replies[model]
	if len(queue) == 0 {
		return "", &UpstreamError{Backend: f.provider + ":" + model, Class: ClassInvalidRequest, Err: errUnscripted}
	}
	reply := queue[0]
	if len(queue) > 1 {
		f.replies[model] = queue[1:]
	}
	return reply.text, reply.err
}

func (f *fakeGenerator) callsFor(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Model == model {
			n++
		}
	}
	return n
}

func (f *fakeGenerator) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var errUnscripted = errors.New("scripted failure")

func ok(text string) fakeReply { return fakeReply{text: text} }

func fail(class UpstreamClass, status int) fakeReply {
	return fakeReply{err: &UpstreamError{Backend: "fake", Class: class, StatusCode: status, Err: errUnscripted}}
}

// fakeInvoker is an InvocationClient answering from a queue of replies.
type fakeInvoker struct {
	mu      sync.Mutex
	replies []fakeReply
	prompts []Prompt
	opts    []InvokeOptions
}

func (f *fakeInvoker) Invoke(ctx context.Context, prompt Prompt, opts InvokeOptions) (*InvocationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if len(f.replies) == 0 {
		return nil, &ExhaustedError{Attempts: 1, Last: errUnscripted}
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return newInvocationResult("fake:model", reply.text, 1), nil
}

func (f *fakeInvoker) Backends() []ModelBackend {
	return []ModelBackend{{Provider: "fake", Model: "model"}}
}

func (f *fakeInvoker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func exhausted(class UpstreamClass) fakeReply {
	return fakeReply{err: &ExhaustedError{Attempts: 3, Last: &UpstreamError{Backend: "fake:model", Class: class, Err: errUnscripted}}}
}

// noSleep records backoff delays instead of waiting.
type noSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (n *noSleep) Sleep(ctx context.Context, d time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delays = append(n.delays, d)
	return ctx.Err()
}

func evaluation(score, wpm, pauses, fillers int, confidence float64) models.AnswerEvaluation {
	return models.AnswerEvaluation{
		SpeechMetrics: models.SpeechMetrics{
			WordsPerMinute:  wpm,
			PauseCount:      pauses,
			FillerWordCount: fillers,
			Confidence:      confidence,
		},
		Score:         score,
		Justification: "Clear and structured answer.",
	}
}
