package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/domain"
)

func TestInferIntentCreatesSessionAndStores(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	resp, err := svc.InferIntent(ctx, domain.IntentInferRequest{Message: "is this safe for kids?"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected a session to be created")
	}
	if resp.Intent.UserGoal != "health_check" {
		t.Errorf("user_goal = %q, want health_check", resp.Intent.UserGoal)
	}

	stored, state, err := store.GetIntent(ctx, resp.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state != domain.IntentInferred {
		t.Errorf("intent state = %q, want %q", state, domain.IntentInferred)
	}
	if stored.UserGoal != resp.Intent.UserGoal {
		t.Errorf("stored goal = %q, want %q", stored.UserGoal, resp.Intent.UserGoal)
	}
}

func TestInferIntentEmptyMessage(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockClient())

	if _, err := svc.InferIntent(context.Background(), domain.IntentInferRequest{Message: "   "}); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}
}

func TestInferIntentRunsEvenWhenAlreadyInferred(t *testing.T) {
	// A chat turn infers intent once per session; the explicit endpoint is
	// the refresh path and always runs.
	rec := &recordingClient{Client: llm.NewMockClient()}
	svc, _ := newTestService(t, rec)
	ctx := context.Background()

	resp, err := svc.Chat(ctx, domain.ChatRequest{Message: "I want to lose weight"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.InferIntent(ctx, domain.IntentInferRequest{Message: "actually checking for my kid", SessionID: resp.SessionID}); err != nil {
		t.Fatal(err)
	}

	if n := rec.intentCalls(); n != 2 {
		t.Errorf("intent inference calls = %d, want 2", n)
	}
}

func TestGetIntentMissing(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	session, err := store.CreateSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetIntent(ctx, session.ID); !errors.Is(err, ErrIntentNotFound) {
		t.Errorf("err = %v, want ErrIntentNotFound", err)
	}
}
