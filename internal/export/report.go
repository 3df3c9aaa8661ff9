// Package export serializa un perfil a sus tres representaciones de reporte.
// Todo es funcion pura sobre el Profile: sin estado, sin reloj implicito.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dossier-llm/internal/domain"
)

// Format identifica una representacion de reporte.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatHTML Format = "html"
)

// historyPreviewRunes acota el resumen de cada entrada de historial en el
// reporte de texto; el HTML lleva las entradas completas.
const historyPreviewRunes = 160

// Ext devuelve la extension de archivo del formato.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return "txt"
	}
}

// ContentType devuelve el MIME del formato exportado.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// ParseFormat valida el formato pedido por el caller.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatText, "txt":
		return FormatText, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// JSON devuelve la serializacion literal del perfil, con indentacion. Parsear
// el resultado reproduce el perfil campo a campo.
func JSON(p domain.Profile) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Text arma el reporte de texto plano de secciones fijas.
func Text(p domain.Profile) string {
	var b strings.Builder

	b.WriteString("PSYCHOLOGICAL PROFILE REPORT\n")
	b.WriteString("============================\n\n")
	fmt.Fprintf(&b, "Subject: %s\n", p.DisplayName())
	fmt.Fprintf(&b, "Date of birth: %s\n", orUnknown(p.DateOfBirth))
	fmt.Fprintf(&b, "Last updated: %s\n\n", p.LastUpdated.UTC().Format(time.RFC3339))

	b.WriteString("SUMMARY\n-------\n")
	b.WriteString(orUnknown(p.Summary))
	b.WriteString("\n\n")

	b.WriteString("ARCHETYPES\n----------\n")
	fmt.Fprintf(&b, "MBTI: %s\n", orUnknown(p.MBTI))
	fmt.Fprintf(&b, "Enneagram: %s\n", orUnknown(p.Enneagram))
	fmt.Fprintf(&b, "Attachment style: %s\n\n", orUnknown(p.AttachmentStyle))

	b.WriteString("BIG FIVE\n--------\n")
	for _, row := range bigFiveRows(p.BigFive) {
		fmt.Fprintf(&b, "%-18s %3d / 100\n", row.label, row.score)
	}
	b.WriteString("\n")

	b.WriteString("KEY TRAITS\n----------\n")
	writeList(&b, p.KeyTraits)

	b.WriteString("BODY LANGUAGE NOTES\n-------------------\n")
	writeList(&b, p.BodyLanguageNotes)

	b.WriteString("TONE OF VOICE NOTES\n-------------------\n")
	writeList(&b, p.ToneVoiceNotes)

	b.WriteString("ANALYSIS HISTORY\n----------------\n")
	if len(p.History) == 0 {
		b.WriteString("(none)\n")
	}
	// Mas reciente primero.
	for i := len(p.History) - 1; i >= 0; i-- {
		entry := p.History[i]
		fmt.Fprintf(&b, "[%s] %s", entry.Timestamp.UTC().Format("2006-01-02 15:04"), entry.MediaType)
		if entry.FileName != "" {
			fmt.Fprintf(&b, " (%s)", entry.FileName)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s\n", truncate(entry.Summary, historyPreviewRunes))
	}

	return b.String()
}

// FileName produce el nombre determinista del archivo exportado a partir del
// nombre del sujeto y la fecha de exportacion.
func FileName(p domain.Profile, format Format, date time.Time) string {
	name := sanitizeName(p.DisplayName())
	return fmt.Sprintf("%s_profile_%s.%s", name, date.UTC().Format("2006-01-02"), format.Ext())
}

type bigFiveRow struct {
	label string
	score int
}

func bigFiveRows(b domain.BigFive) []bigFiveRow {
	return []bigFiveRow{
		{"Openness", b.Openness},
		{"Conscientiousness", b.Conscientiousness},
		{"Extraversion", b.Extraversion},
		{"Agreeableness", b.Agreeableness},
		{"Neuroticism", b.Neuroticism},
	}
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("(none)\n")
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
