package export

import (
	"html/template"
	"strings"
	"time"

	"dossier-llm/internal/domain"
)

// HTML arma el reporte como documento HTML autocontenido, abrible desde un
// procesador de texto. A diferencia del reporte plano, el historial va
// completo, sin truncar.
func HTML(p domain.Profile) (string, error) {
	var b strings.Builder
	err := reportTemplate.Execute(&b, htmlReport{
		Profile:     p,
		DisplayName: p.DisplayName(),
		DateOfBirth: orUnknown(p.DateOfBirth),
		LastUpdated: p.LastUpdated.UTC().Format(time.RFC3339),
		BigFive:     htmlBigFive(p.BigFive),
		History:     htmlHistory(p.History),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

type htmlReport struct {
	Profile     domain.Profile
	DisplayName string
	DateOfBirth string
	LastUpdated string
	BigFive     []htmlScore
	History     []htmlEntry
}

type htmlScore struct {
	Label string
	Score int
}

type htmlEntry struct {
	When      string
	MediaType string
	FileName  string
	Summary   string
}

func htmlBigFive(b domain.BigFive) []htmlScore {
	rows := bigFiveRows(b)
	out := make([]htmlScore, len(rows))
	for i, row := range rows {
		out[i] = htmlScore{Label: row.label, Score: row.score}
	}
	return out
}

func htmlHistory(entries []domain.HistoryEntry) []htmlEntry {
	out := make([]htmlEntry, 0, len(entries))
	// Mas reciente primero, igual que el reporte de texto.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		out = append(out, htmlEntry{
			When:      e.Timestamp.UTC().Format("2006-01-02 15:04"),
			MediaType: e.MediaType,
			FileName:  e.FileName,
			Summary:   e.Summary,
		})
	}
	return out
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Psychological Profile - {{.DisplayName}}</title>
<style>
body { font-family: Georgia, serif; max-width: 720px; margin: 2em auto; color: #222; }
h1 { border-bottom: 2px solid #222; padding-bottom: 0.3em; }
h2 { margin-top: 1.6em; color: #444; }
table { border-collapse: collapse; }
td, th { border: 1px solid #999; padding: 0.3em 0.8em; text-align: left; }
.meta { color: #666; }
.entry { margin-bottom: 1em; }
.entry .when { font-weight: bold; }
.entry .tag { color: #666; font-style: italic; }
</style>
</head>
<body>
<h1>Psychological Profile: {{.DisplayName}}</h1>
<p class="meta">Date of birth: {{.DateOfBirth}}<br>Last updated: {{.LastUpdated}}</p>

<h2>Summary</h2>
<p>{{.Profile.Summary}}</p>

<h2>Archetypes</h2>
<table>
<tr><th>MBTI</th><td>{{.Profile.MBTI}}</td></tr>
<tr><th>Enneagram</th><td>{{.Profile.Enneagram}}</td></tr>
<tr><th>Attachment style</th><td>{{.Profile.AttachmentStyle}}</td></tr>
</table>

<h2>Big Five</h2>
<table>
{{range .BigFive}}<tr><th>{{.Label}}</th><td>{{.Score}} / 100</td></tr>
{{end}}</table>

<h2>Key Traits</h2>
<ul>
{{range .Profile.KeyTraits}}<li>{{.}}</li>
{{end}}</ul>

<h2>Body Language Notes</h2>
<ul>
{{range .Profile.BodyLanguageNotes}}<li>{{.}}</li>
{{end}}</ul>

<h2>Tone of Voice Notes</h2>
<ul>
{{range .Profile.ToneVoiceNotes}}<li>{{.}}</li>
{{end}}</ul>

<h2>Analysis History</h2>
{{range .History}}<div class="entry">
<span class="when">{{.When}}</span> <span class="tag">{{.MediaType}}{{if .FileName}} ({{.FileName}}){{end}}</span>
<p>{{.Summary}}</p>
</div>
{{end}}
</body>
</html>
`))
