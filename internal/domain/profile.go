package domain

import (
	"time"

	"github.com/google/uuid"
)

// Valores por defecto de un sujeto recien creado. Los merges los tratan como
// sentinelas: un nombre que sigue en su valor por defecto puede ser rellenado
// por el analisis, un nombre ya editado nunca se pisa.
const (
	DefaultFirstName = "New"
	DefaultLastName  = "Subject"
)

// BigFive guarda los cinco rasgos en escala 0-100.
type BigFive struct {
	Openness          int `json:"openness"`
	Conscientiousness int `json:"conscientiousness"`
	Extraversion      int `json:"extraversion"`
	Agreeableness     int `json:"agreeableness"`
	Neuroticism       int `json:"neuroticism"`
}

// HistoryEntry registra un analisis completado sobre el sujeto.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	MediaType string    `json:"media_type"`
	Summary   string    `json:"summary"`
	FileName  string    `json:"file_name,omitempty"`
}

// Profile es el expediente psicologico acumulado de un sujeto.
// BodyLanguageNotes, ToneVoiceNotes e History son append-only: solo crecen,
// salvo que se borre el perfil completo.
type Profile struct {
	ID                string         `json:"id"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	DateOfBirth       string         `json:"date_of_birth"`
	CreatedAt         time.Time      `json:"created_at"`
	LastUpdated       time.Time      `json:"last_updated"`
	BigFive           BigFive        `json:"big_five"`
	MBTI              string         `json:"mbti"`
	Enneagram         string         `json:"enneagram"`
	AttachmentStyle   string         `json:"attachment_style"`
	Summary           string         `json:"summary"`
	KeyTraits         []string       `json:"key_traits"`
	BodyLanguageNotes []string       `json:"body_language_notes"`
	ToneVoiceNotes    []string       `json:"tone_voice_notes"`
	History           []HistoryEntry `json:"history"`
}

// NewDefaultProfile crea un perfil vacio con nombre sentinela y un id nuevo.
func NewDefaultProfile(now time.Time) Profile {
	return Profile{
		ID:          uuid.NewString(),
		FirstName:   DefaultFirstName,
		LastName:    DefaultLastName,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// DisplayName devuelve el nombre legible del sujeto.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName == "" && p.LastName == "":
		return "Unknown Subject"
	case p.LastName == "":
		return p.FirstName
	case p.FirstName == "":
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}

// Clone devuelve una copia profunda; los slices no se comparten con el original.
func (p Profile) Clone() Profile {
	out := p
	out.KeyTraits = append([]string(nil), p.KeyTraits...)
	out.BodyLanguageNotes = append([]string(nil), p.BodyLanguageNotes...)
	out.ToneVoiceNotes = append([]string(nil), p.ToneVoiceNotes...)
	out.History = append([]HistoryEntry(nil), p.History...)
	return out
}

// IsSentinelFirstName indica si el nombre todavia es reemplazable por un
// candidato del analisis.
func IsSentinelFirstName(v string) bool {
	return v == "" || v == DefaultFirstName
}

// IsSentinelLastName indica si el apellido todavia es reemplazable.
// "001" aparece como sentinela en expedientes migrados del formato viejo.
func IsSentinelLastName(v string) bool {
	return v == "" || v == DefaultLastName || v == "001"
}
