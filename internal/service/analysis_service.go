package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"dossier-llm/internal/domain"
	"dossier-llm/internal/evidence"
	"dossier-llm/internal/llm"
)

const analysisSystemPrompt = `You are an expert forensic psychologist building a psychological profile of a subject from submitted evidence (photos, documents, audio, video, screen recordings).

You will receive the subject's current profile as JSON context. Integrate it: your output must be a complete updated synthesis, not an isolated reading of the new evidence.

Return ONLY a JSON object with this exact shape:
{
  "first_name": "optional candidate first name if the evidence reveals it",
  "last_name": "optional candidate last name",
  "date_of_birth": "optional, YYYY-MM-DD",
  "big_five": {"openness": 0-100, "conscientiousness": 0-100, "extraversion": 0-100, "agreeableness": 0-100, "neuroticism": 0-100},
  "mbti": "e.g. INTJ",
  "enneagram": "e.g. Type 5w6",
  "attachment_style": "e.g. Anxious-Avoidant",
  "summary": "full updated narrative assessment",
  "key_traits": ["short trait labels"],
  "new_observations": "what THIS evidence newly revealed",
  "body_language_note": "optional, only if visual evidence shows body language",
  "tone_voice_note": "optional, only if audio evidence shows tone of voice"
}

big_five, mbti, enneagram, attachment_style, summary, key_traits and new_observations are mandatory. Omit identity fields unless the evidence clearly supports them.`

// AnalysisService arma el prompt multimodal, llama al LLM y devuelve un delta
// validado. No toca el store: aplicar el delta es problema del caller, y un
// fallo en cualquier paso deja el perfil exactamente como estaba.
type AnalysisService struct {
	llmClient llm.Client
	logger    *zap.Logger
}

func NewAnalysisService(llmClient llm.Client, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{llmClient: llmClient, logger: logger}
}

// Analyze somete un lote de evidencia y devuelve el delta resultante.
// current puede ser nil para un sujeto sin analisis previos.
func (s *AnalysisService) Analyze(ctx context.Context, current *domain.Profile, batch evidence.Batch, userContext string) (domain.AnalysisDelta, error) {
	if len(batch.Items) == 0 {
		return domain.AnalysisDelta{}, fmt.Errorf("empty evidence batch")
	}

	parts := []llm.Part{llm.TextPart(s.contextText(current, userContext))}
	parts = append(parts, batch.Parts()...)

	messages := []llm.Message{
		{Role: "system", Parts: []llm.Part{llm.TextPart(analysisSystemPrompt)}},
		{Role: "user", Parts: parts},
	}

	raw, err := s.llmClient.Complete(ctx, messages)
	if err != nil {
		return domain.AnalysisDelta{}, fmt.Errorf("llm complete: %w", err)
	}

	delta, err := ParseDelta(raw)
	if err != nil {
		s.logger.Warn("analysis response rejected", zap.Error(err))
		return domain.AnalysisDelta{}, err
	}

	s.logger.Info("analysis completed",
		zap.String("media_type", batch.MediaType()),
		zap.Int("evidence_items", len(batch.Items)),
	)
	return delta, nil
}

func (s *AnalysisService) contextText(current *domain.Profile, userContext string) string {
	var b strings.Builder
	if current != nil {
		if profileJSON, err := json.Marshal(current); err == nil {
			b.WriteString("Current profile of the subject:\n")
			b.Write(profileJSON)
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("This is a new subject with no prior profile.\n\n")
	}
	if strings.TrimSpace(userContext) != "" {
		b.WriteString("Context provided by the analyst: ")
		b.WriteString(strings.TrimSpace(userContext))
		b.WriteString("\n\n")
	}
	b.WriteString("Analyze the attached evidence and update the profile.")
	return b.String()
}
