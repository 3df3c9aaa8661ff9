package service

import (
	"strings"
	"testing"
)

const validDeltaJSON = `{
	"big_five": {"openness": 70, "conscientiousness": 55, "extraversion": 30, "agreeableness": 60, "neuroticism": 45},
	"mbti": "INTJ",
	"enneagram": "Type 5w6",
	"attachment_style": "Avoidant",
	"summary": "Reserved and analytical.",
	"key_traits": ["analytical"],
	"new_observations": "Avoids eye contact."
}`

func TestParseDeltaPlainJSON(t *testing.T) {
	delta, err := ParseDelta(validDeltaJSON)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if delta.MBTI != "INTJ" || delta.BigFive.Openness != 70 {
		t.Fatalf("unexpected delta: %+v", delta)
	}
}

func TestParseDeltaStripsFencesAndProse(t *testing.T) {
	raw := "Here is the assessment:\n```json\n" + validDeltaJSON + "\n```\nLet me know if you need more."
	delta, err := ParseDelta(raw)
	if err != nil {
		t.Fatalf("expected fences and prose tolerated, got %v", err)
	}
	if delta.Summary != "Reserved and analytical." {
		t.Fatalf("unexpected summary %q", delta.Summary)
	}
}

func TestParseDeltaRejectsNonJSON(t *testing.T) {
	if _, err := ParseDelta("I cannot analyze this content."); err == nil {
		t.Fatalf("expected error for response without JSON")
	}
}

func TestParseDeltaRejectsMissingMandatoryFields(t *testing.T) {
	cases := map[string]string{
		"big_five":         strings.Replace(validDeltaJSON, `"big_five": {"openness": 70, "conscientiousness": 55, "extraversion": 30, "agreeableness": 60, "neuroticism": 45},`, ``, 1),
		"summary":          strings.Replace(validDeltaJSON, `"summary": "Reserved and analytical.",`, `"summary": "",`, 1),
		"new_observations": strings.Replace(validDeltaJSON, `"new_observations": "Avoids eye contact."`, `"new_observations": ""`, 1),
		"labels":           strings.Replace(validDeltaJSON, `"mbti": "INTJ",`, `"mbti": "",`, 1),
		"key_traits":       strings.Replace(validDeltaJSON, `"key_traits": ["analytical"],`, `"key_traits": [],`, 1),
	}
	for name, raw := range cases {
		if _, err := ParseDelta(raw); err == nil {
			t.Fatalf("expected error for missing %s", name)
		}
	}
}

func TestParseDeltaBigFivePresence(t *testing.T) {
	// Sin la clave big_five el delta se rechaza: aceptar la ausencia haria
	// que el merge pisara puntajes reales con cinco ceros.
	raw := strings.Replace(validDeltaJSON,
		`"big_five": {"openness": 70, "conscientiousness": 55, "extraversion": 30, "agreeableness": 60, "neuroticism": 45},`,
		``, 1)
	if _, err := ParseDelta(raw); err == nil {
		t.Fatalf("expected error for delta without big_five")
	}

	// Cinco ceros explicitos si son validos: vienen del modelo, no de un
	// campo faltante.
	zeroed := strings.Replace(validDeltaJSON,
		`{"openness": 70, "conscientiousness": 55, "extraversion": 30, "agreeableness": 60, "neuroticism": 45}`,
		`{"openness": 0, "conscientiousness": 0, "extraversion": 0, "agreeableness": 0, "neuroticism": 0}`, 1)
	delta, err := ParseDelta(zeroed)
	if err != nil {
		t.Fatalf("expected explicit zero scores accepted, got %v", err)
	}
	if delta.BigFive.Openness != 0 || delta.BigFive.Neuroticism != 0 {
		t.Fatalf("unexpected scores %+v", delta.BigFive)
	}
}

func TestParseDeltaClampsScores(t *testing.T) {
	raw := strings.Replace(validDeltaJSON, `"openness": 70`, `"openness": 140`, 1)
	raw = strings.Replace(raw, `"neuroticism": 45`, `"neuroticism": -5`, 1)

	delta, err := ParseDelta(raw)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if delta.BigFive.Openness != 100 || delta.BigFive.Neuroticism != 0 {
		t.Fatalf("expected scores clamped to [0,100], got %+v", delta.BigFive)
	}
}
