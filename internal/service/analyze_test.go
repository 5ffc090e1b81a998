package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nutriai/nutriai/internal/adapter/llm"
	"github.com/nutriai/nutriai/internal/domain"
	"github.com/nutriai/nutriai/internal/textproc"
)

func TestAnalyzeTextProducesInsightAndFoodContext(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	resp, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{
		Text: "Ingredients: Wheat Flour, Sugar, Palm Oil, MSG, Salt",
	})
	if err != nil {
		t.Fatalf("analyze text: %v", err)
	}
	if !resp.Success || resp.Insight == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Insight.AIInsightTitle == "" || resp.Insight.QuickVerdict == "" {
		t.Errorf("incomplete insight: %+v", resp.Insight)
	}
	if resp.Analysis == "" {
		t.Error("analysis text missing")
	}

	food, _ := store.GetFoodContext(ctx, resp.SessionID)
	if food == nil {
		t.Fatal("food context not set")
	}
	if len(food.Ingredients) == 0 || food.Ingredients[0] != "Wheat Flour" {
		t.Errorf("food context ingredients = %v", food.Ingredients)
	}

	messages, _ := store.GetMessages(ctx, resp.SessionID)
	if len(messages) != 2 {
		t.Errorf("messages = %d, want analysis exchange recorded", len(messages))
	}
}

func TestAnalyzeTextValidation(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	if _, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: " "}); !errors.Is(err, textproc.ErrEmptyInput) {
		t.Errorf("blank text: err = %v", err)
	}
	long := strings.Repeat("a", textproc.MaxInputLen+1)
	if _, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: long}); !errors.Is(err, textproc.ErrInputTooLong) {
		t.Errorf("long text: err = %v", err)
	}
}

func TestAnalyzeTextFallbackInsight(t *testing.T) {
	svc, store := newTestService(t, &llm.MockClient{FailAll: true})
	ctx := context.Background()

	resp, err := svc.AnalyzeText(ctx, domain.TextAnalysisRequest{Text: "Ingredients: sugar, salt"})
	if err != nil {
		t.Fatalf("collaborator failure must not error: %v", err)
	}
	if resp.Insight == nil || resp.Insight.AIInsightTitle != "Analysis unavailable" {
		t.Errorf("expected fallback insight, got %+v", resp.Insight)
	}

	// State is still persisted on the fallback path.
	if food, _ := store.GetFoodContext(ctx, resp.SessionID); food == nil {
		t.Error("food context should be set even with fallback insight")
	}
}

func TestAnalyzeImageClearsPreviousFoodContext(t *testing.T) {
	svc, store := newTestService(t, llm.NewMockClient())
	ctx := context.Background()

	session, _ := store.CreateSession(ctx)
	store.SetFoodContext(ctx, session.ID, &domain.FoodContext{ProductName: "Old Product"})

	resp, err := svc.AnalyzeImage(ctx, session.ID, []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("analyze image: %v", err)
	}
	if resp.Insight == nil {
		t.Fatal("expected insight")
	}

	food, _ := store.GetFoodContext(ctx, session.ID)
	if food == nil {
		t.Fatal("food context should be replaced, not just cleared")
	}
	if food.ProductName == "Old Product" {
		t.Error("previous product must not survive a new image upload")
	}
}

func TestAnalyzeImageEmpty(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockClient())
	if _, err := svc.AnalyzeImage(context.Background(), "", nil, "image/png"); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("err = %v, want ErrEmptyImage", err)
	}
}

func TestRenderInsight(t *testing.T) {
	card := &domain.InsightCard{QuickVerdict: "Fine occasionally.", AIAdvice: "Enjoy as a treat."}
	if got := renderInsight(card); got != "Fine occasionally. Enjoy as a treat." {
		t.Errorf("renderInsight = %q", got)
	}
	if got := renderInsight(&domain.InsightCard{}); got != fallbackReply {
		t.Errorf("empty card should render fallback, got %q", got)
	}
}
