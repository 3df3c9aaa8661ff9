package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"dossier-llm/internal/domain"
	"dossier-llm/internal/evidence"
	"dossier-llm/internal/llm"
)

func photoBatch() evidence.Batch {
	return evidence.Batch{Items: []evidence.Item{
		{FileName: "face.jpg", MIME: "image/jpeg", Data: []byte{0xff, 0xd8}},
	}}
}

func TestAnalyzeHappyPath(t *testing.T) {
	client := &llm.MockClient{Response: validDeltaJSON}
	svc := NewAnalysisService(client, zap.NewNop())

	current := domain.NewDefaultProfile(fixedNow())
	delta, err := svc.Analyze(context.Background(), &current, photoBatch(), "subject is a coworker")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if delta.MBTI != "INTJ" {
		t.Fatalf("unexpected delta: %+v", delta)
	}

	if len(client.LastMessages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(client.LastMessages))
	}
	user := client.LastMessages[1]
	if user.Parts[0].Type != "text" || !strings.Contains(user.Parts[0].Text, current.ID) {
		t.Fatalf("expected current profile JSON in prompt, got %q", user.Parts[0].Text)
	}
	if !strings.Contains(user.Parts[0].Text, "subject is a coworker") {
		t.Fatalf("expected analyst context in prompt")
	}
	if user.Parts[1].Type != "image_url" {
		t.Fatalf("expected image part attached, got %q", user.Parts[1].Type)
	}
}

func TestAnalyzeNewSubjectWithoutProfile(t *testing.T) {
	client := &llm.MockClient{Response: validDeltaJSON}
	svc := NewAnalysisService(client, zap.NewNop())

	if _, err := svc.Analyze(context.Background(), nil, photoBatch(), ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(client.LastMessages[1].Parts[0].Text, "new subject") {
		t.Fatalf("expected new-subject context in prompt")
	}
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	svc := NewAnalysisService(&llm.MockClient{}, zap.NewNop())
	if _, err := svc.Analyze(context.Background(), nil, evidence.Batch{}, ""); err == nil {
		t.Fatalf("expected error for empty batch")
	}
}

func TestAnalyzeLLMFailurePropagates(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("quota exceeded")}
	svc := NewAnalysisService(client, zap.NewNop())

	if _, err := svc.Analyze(context.Background(), nil, photoBatch(), ""); err == nil {
		t.Fatalf("expected llm error to propagate")
	}
}

func TestAnalyzeInvalidResponse(t *testing.T) {
	client := &llm.MockClient{Response: "sorry, cannot comply"}
	svc := NewAnalysisService(client, zap.NewNop())

	if _, err := svc.Analyze(context.Background(), nil, photoBatch(), ""); err == nil {
		t.Fatalf("expected error for unparseable response")
	}
}
