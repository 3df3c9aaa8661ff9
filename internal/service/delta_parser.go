package service

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"dossier-llm/internal/domain"
)

// ParseDelta convierte la respuesta cruda del LLM en un AnalysisDelta
// validado. Limpia fences y texto alrededor, extrae el primer objeto JSON
// balanceado y exige los campos obligatorios del contrato: big five,
// etiquetas, resumen, rasgos y observaciones nuevas. Falla atomico: o hay un
// delta completo o hay error.
func ParseDelta(raw string) (domain.AnalysisDelta, error) {
	cleaned := cleanJSONResponse(raw)
	obj := extractFirstJSONObject(cleaned)
	if obj == "" {
		return domain.AnalysisDelta{}, fmt.Errorf("no JSON object in llm response")
	}

	var delta domain.AnalysisDelta
	if err := json.Unmarshal([]byte(obj), &delta); err != nil {
		return domain.AnalysisDelta{}, fmt.Errorf("parse llm response: %w", err)
	}

	// La ausencia de big_five no es distinguible de cinco ceros una vez
	// deserializado; se chequea la presencia de la clave aparte.
	var scores struct {
		BigFive *domain.BigFive `json:"big_five"`
	}
	if err := json.Unmarshal([]byte(obj), &scores); err != nil || scores.BigFive == nil {
		return domain.AnalysisDelta{}, fmt.Errorf("delta missing big_five")
	}

	if err := validateDelta(&delta); err != nil {
		return domain.AnalysisDelta{}, err
	}
	return delta, nil
}

func validateDelta(delta *domain.AnalysisDelta) error {
	if strings.TrimSpace(delta.Summary) == "" {
		return fmt.Errorf("delta missing summary")
	}
	if strings.TrimSpace(delta.NewObservations) == "" {
		return fmt.Errorf("delta missing new_observations")
	}
	if strings.TrimSpace(delta.MBTI) == "" || strings.TrimSpace(delta.Enneagram) == "" || strings.TrimSpace(delta.AttachmentStyle) == "" {
		return fmt.Errorf("delta missing classification labels")
	}
	if len(delta.KeyTraits) == 0 {
		return fmt.Errorf("delta missing key_traits")
	}
	delta.BigFive = clampBigFive(delta.BigFive)
	return nil
}

func clampBigFive(b domain.BigFive) domain.BigFive {
	return domain.BigFive{
		Openness:          clampScore(b.Openness),
		Conscientiousness: clampScore(b.Conscientiousness),
		Extraversion:      clampScore(b.Extraversion),
		Agreeableness:     clampScore(b.Agreeableness),
		Neuroticism:       clampScore(b.Neuroticism),
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// cleanJSONResponse quita fences ```json ... ``` y BOM, dejando el contenido usable.
func cleanJSONResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	// Quitar fences tipo ```json ... ``` o ``` ... ```
	reStart := regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	reEnd := regexp.MustCompile("(?is)\\s*```\\s*$")
	s = reStart.ReplaceAllString(s, "")
	s = reEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado,
// ignorando llaves dentro de strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}
