package jsonguard

import "testing"

type payload struct {
	LikelyGoal   string   `json:"likely_goal"`
	SoftConcerns []string `json:"soft_concerns"`
}

func TestExtractPlainJSON(t *testing.T) {
	var p payload
	err := Extract(`{"likely_goal":"curiosity","soft_concerns":["sugar"]}`, &p)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if p.LikelyGoal != "curiosity" || len(p.SoftConcerns) != 1 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestExtractMarkdownFenced(t *testing.T) {
	var p payload
	text := "Here is the result:\n```json\n{\"likely_goal\": \"child_safety\"}\n```\nHope that helps!"
	if err := Extract(text, &p); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if p.LikelyGoal != "child_safety" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestExtractEmbeddedObject(t *testing.T) {
	var p payload
	text := `The user seems curious. {"likely_goal": "curiosity", "soft_concerns": []} That is my read.`
	if err := Extract(text, &p); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if p.LikelyGoal != "curiosity" {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestExtractTrailingComma(t *testing.T) {
	var p payload
	text := `{"likely_goal": "health_check", "soft_concerns": ["sodium", "sugar",],}`
	if err := Extract(text, &p); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if p.LikelyGoal != "health_check" || len(p.SoftConcerns) != 2 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestExtractNoJSON(t *testing.T) {
	var p payload
	if err := Extract("I could not produce a structured answer, sorry.", &p); err != ErrNoJSON {
		t.Fatalf("expected ErrNoJSON, got %v", err)
	}
}
