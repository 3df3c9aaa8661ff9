package domain

// AnalysisDelta es la salida estructurada de una llamada de analisis.
// Identidad y notas son opcionales; el resto es obligatorio y reemplaza por
// completo el valor previo del perfil al hacer merge.
type AnalysisDelta struct {
	FirstName        string   `json:"first_name,omitempty"`
	LastName         string   `json:"last_name,omitempty"`
	DateOfBirth      string   `json:"date_of_birth,omitempty"`
	BigFive          BigFive  `json:"big_five"`
	MBTI             string   `json:"mbti"`
	Enneagram        string   `json:"enneagram"`
	AttachmentStyle  string   `json:"attachment_style"`
	Summary          string   `json:"summary"`
	KeyTraits        []string `json:"key_traits"`
	NewObservations  string   `json:"new_observations"`
	BodyLanguageNote string   `json:"body_language_note,omitempty"`
	ToneVoiceNote    string   `json:"tone_voice_note,omitempty"`
}

// EvidenceTag etiqueta el lote de evidencia que produjo un delta, para la
// entrada de historial que deja el merge.
type EvidenceTag struct {
	MediaType string
	FileLabel string
}
