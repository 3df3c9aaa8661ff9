package service

import (
	"time"

	"github.com/google/uuid"

	"dossier-llm/internal/domain"
)

// Merge funde un delta de analisis en el perfil actual y devuelve un perfil
// nuevo; el actual nunca se muta.
//
// Politica por campo:
//   - bigFive, mbti, enneagram, attachmentStyle, summary, keyTraits: reemplazo
//     total. El modelo externo ya integro el contexto previo antes de emitir
//     el delta; aca no se promedia ni se suaviza nada.
//   - bodyLanguageNotes / toneVoiceNotes: append solo si el delta trae nota.
//   - firstName / lastName: se rellenan una sola vez, mientras el valor actual
//     siga vacio o en sentinela. Identidad ya establecida no se pisa.
//   - dateOfBirth: solo se fija si esta vacio; una vez fijado, nunca cambia.
//   - history: exactamente una entrada nueva por merge.
func Merge(current domain.Profile, delta domain.AnalysisDelta, tag domain.EvidenceTag, now time.Time) domain.Profile {
	merged := current.Clone()

	merged.BigFive = delta.BigFive
	merged.MBTI = delta.MBTI
	merged.Enneagram = delta.Enneagram
	merged.AttachmentStyle = delta.AttachmentStyle
	merged.Summary = delta.Summary
	merged.KeyTraits = append([]string(nil), delta.KeyTraits...)

	if delta.BodyLanguageNote != "" {
		merged.BodyLanguageNotes = append(merged.BodyLanguageNotes, delta.BodyLanguageNote)
	}
	if delta.ToneVoiceNote != "" {
		merged.ToneVoiceNotes = append(merged.ToneVoiceNotes, delta.ToneVoiceNote)
	}

	if delta.FirstName != "" && domain.IsSentinelFirstName(merged.FirstName) {
		merged.FirstName = delta.FirstName
	}
	if delta.LastName != "" && domain.IsSentinelLastName(merged.LastName) {
		merged.LastName = delta.LastName
	}
	if delta.DateOfBirth != "" && merged.DateOfBirth == "" {
		merged.DateOfBirth = delta.DateOfBirth
	}

	merged.LastUpdated = now
	merged.History = append(merged.History, domain.HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		MediaType: tag.MediaType,
		Summary:   delta.NewObservations,
		FileName:  tag.FileLabel,
	})

	return merged
}
