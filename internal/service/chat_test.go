package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/adapter/openfoodfacts"
	"github.com/nutriai/nutriai/internal/config"
	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/kb"
	"github.com/nutriai/nutriai/internal/repository"
)

// recordingClient wraps a Client and records every prompt it sees.
type recordingClient struct {
	llm.Client
	prompts []string
}

func (r *recordingClient) GenerateText(ctx context.Context, prompt, systemInstruction string, temperature float32) (string, error) {
	r.prompts = append(r.prompts, prompt)
	return r.Client.GenerateText(ctx, prompt, systemInstruction, temperature)
}

func (r *recordingClient) GenerateStream(ctx context.Context, prompt, systemInstruction string, temperature float32, callback llm.StreamCallback) (string, error) {
	r.prompts = append(r.prompts, prompt)
	return r.Client.GenerateStream(ctx, prompt, systemInstruction, temperature, callback)
}

func (r *recordingClient) intentCalls() int {
	n := 0
	for _, p := range r.prompts {
		if strings.Contains(p, `"user_goal"`) {
			n++
		}
	}
	return n
}

func newTestService(t *testing.T, client llm.Client) (*Service, repository.Store) {
	t.Helper()
	store := repository.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	knowledgeBase := kb.New([]kb.Entry{
		{Name: "Monosodium Glutamate", Aliases: []string{"MSG"}, Category: "flavor_enhancer", Confidence: "high", WhyItMatters: "flavor enhancer"},
		{Name: "Palm Oil", Category: "fat", Confidence: "high", WhyItMatters: "saturated fat"},
	})
	cfg := config.Load()
	off := openfoodfacts.NewClient(cfg.OFFBaseURL, cfg.OFFTimeout, cfg.OFFCacheTTL, zap.NewNop())
	return New(store, client, off, knowledgeBase, cfg, zap.NewNop()), store
}

func TestChatCreatesSessionAndPersistsTurn(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	resp, err := svc.Chat(ctx, domain.ChatRequest{Message: "is maggi healthy?"})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !resp.Success || resp.SessionID == "" || resp.Response == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	messages, err := store.GetMessages(ctx, resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want user + assistant", len(messages))
	}
	if messages[0].Role != domain.RoleUser || messages[0].Content != "is maggi healthy?" {
		t.Errorf("first message = %+v", messages[0])
	}
	if messages[1].Role != domain.RoleAssistant || messages[1].Content != resp.Response {
		t.Errorf("second message = %+v", messages[1])
	}

	contextMap, _ := store.GetContext(ctx, resp.SessionID)
	if _, ok := contextMap["confidence_level"]; !ok {
		t.Error("soft context was not merged into session context")
	}

	intent, state, _ := store.GetIntent(ctx, resp.SessionID)
	if state != domain.IntentInferred || intent == nil {
		t.Errorf("intent state = %q, profile = %v", state, intent)
	}
}

func TestChatEmptyMessage(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockClient())
	if _, err := svc.Chat(context.Background(), domain.ChatRequest{Message: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestChatFallbackStillPersistsState(t *testing.T) {
	svc, store := newTestService(t, &llm.MockClient{FailAll: true})
	ctx := context.Background()

	resp, err := svc.Chat(ctx, domain.ChatRequest{Message: "is this ok for diabetics?"})
	if err != nil {
		t.Fatalf("chat must not error on collaborator failure: %v", err)
	}
	if resp.Response != fallbackReply {
		t.Errorf("response = %q, want fallback", resp.Response)
	}

	messages, _ := store.GetMessages(ctx, resp.SessionID)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, state must persist despite LLM failure", len(messages))
	}
	contextMap, _ := store.GetContext(ctx, resp.SessionID)
	if contextMap["confidence_level"] != "uncertain" {
		t.Errorf("default soft context should be persisted, got %v", contextMap)
	}
	_, state, _ := store.GetIntent(ctx, resp.SessionID)
	if state != domain.IntentInferred {
		t.Errorf("intent state = %q, default intent should still be stored", state)
	}
}

func TestChatIntentInferredOncePerSession(t *testing.T) {
	rec := &recordingClient{Client: llm.NewMockClient()}
	svc, _ := newTestService(t, rec)
	ctx := context.Background()

	resp, err := svc.Chat(ctx, domain.ChatRequest{Message: "I want to lose weight"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Chat(ctx, domain.ChatRequest{Message: "what about snacks?", SessionID: resp.SessionID}); err != nil {
		t.Fatal(err)
	}

	if n := rec.intentCalls(); n != 1 {
		t.Errorf("intent inference calls = %d, want exactly 1 per session", n)
	}
}

func TestChatFollowupReusesFoodContext(t *testing.T) {
	rec := &recordingClient{Client: llm.NewMockClient()}
	svc, store := newTestService(t, rec)
	ctx := context.Background()

	session, _ := store.CreateSession(ctx)
	store.SetFoodContext(ctx, session.ID, &domain.FoodContext{
		ProductName: "Parle-G",
		Ingredients: []string{"wheat flour", "sugar", "palm oil"},
	})

	if _, err := svc.Chat(ctx, domain.ChatRequest{Message: "is it safe for kids?", SessionID: session.ID}); err != nil {
		t.Fatal(err)
	}

	chatPrompt := rec.prompts[len(rec.prompts)-1]
	if !strings.Contains(chatPrompt, "Parle-G") {
		t.Errorf("follow-up prompt should carry the product, got:\n%s", chatPrompt)
	}
}

func TestChatNewProductSkipsFoodContext(t *testing.T) {
	rec := &recordingClient{Client: llm.NewMockClient()}
	svc, store := newTestService(t, rec)
	ctx := context.Background()

	session, _ := store.CreateSession(ctx)
	store.SetFoodContext(ctx, session.ID, &domain.FoodContext{ProductName: "Parle-G"})

	msg := "Compare Maggi Noodles with other instant noodle brands sold across the Indian market for me please"
	if _, err := svc.Chat(ctx, domain.ChatRequest{Message: msg, SessionID: session.ID}); err != nil {
		t.Fatal(err)
	}

	chatPrompt := rec.prompts[len(rec.prompts)-1]
	if strings.Contains(chatPrompt, "Parle-G") {
		t.Errorf("new-product message must not reuse stored context, got:\n%s", chatPrompt)
	}
}

func TestChatStreamPersistsFullText(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	var chunks []string
	resp, err := svc.ChatStream(ctx, domain.ChatRequest{Message: "is this healthy?"}, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if err != nil {
		t.Fatalf("chat stream: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if strings.Join(chunks, "") != resp.Response {
		t.Error("emitted chunks do not reassemble to the response")
	}

	messages, _ := store.GetMessages(ctx, resp.SessionID)
	if len(messages) != 2 || messages[1].Content != resp.Response {
		t.Errorf("full response must be persisted, messages = %+v", messages)
	}
}

func TestChatStreamDisconnectStillPersists(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	disconnect := errors.New("client went away")
	emitted := 0
	resp, err := svc.ChatStream(ctx, domain.ChatRequest{Message: "is this healthy?"}, func(chunk string) error {
		emitted++
		if emitted >= 2 {
			return disconnect
		}
		return nil
	})
	if err != nil {
		t.Fatalf("chat stream: %v", err)
	}
	if resp.Response == "" {
		t.Fatal("buffered text should survive the disconnect")
	}

	messages, _ := store.GetMessages(ctx, resp.SessionID)
	if len(messages) != 2 || messages[1].Content != resp.Response {
		t.Errorf("partial response must still be persisted, messages = %+v", messages)
	}
}

func TestChatStreamFailureEmitsFallback(t *testing.T) {
	svc, _ := newTestService(t, &llm.MockClient{FailAll: true})

	var got strings.Builder
	resp, err := svc.ChatStream(context.Background(), domain.ChatRequest{Message: "hello"}, func(chunk string) error {
		got.WriteString(chunk)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Response != fallbackReply || got.String() != fallbackReply {
		t.Errorf("fallback not streamed: resp=%q emitted=%q", resp.Response, got.String())
	}
}

func TestCheckLLM(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockClient())
	svc.config.GeminiAPIKey = ""
	if err := svc.CheckLLM(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("no key configured: err = %v, want ErrNoAPIKey", err)
	}

	t.Setenv(config.EnvMode, config.ModeMock)
	if err := svc.CheckLLM(); err != nil {
		t.Errorf("mock mode should always be healthy, got %v", err)
	}
}
