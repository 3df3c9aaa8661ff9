// Package evidence modela un lote de archivos o capturas enviado a analisis y
// su conversion al formato multimodal que habla el cliente LLM. El nucleo no
// sabe nada de pickers ni grabadores: solo recibe bytes con su MIME.
package evidence

import (
	"encoding/base64"
	"fmt"
	"strings"

	"dossier-llm/internal/llm"
)

// Item es un archivo o stream grabado, ya decodificado a bytes.
type Item struct {
	FileName string
	MIME     string
	Data     []byte
}

// Batch es una entrega de evidencia: uno o mas items de un mismo envio.
// Recording marca capturas hechas en vivo (pantalla/microfono) en lugar de
// archivos subidos.
type Batch struct {
	Items     []Item
	Recording bool
}

// Kind clasifica un MIME en la etiqueta de medio del historial.
func Kind(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	default:
		return "document"
	}
}

// MediaType devuelve la etiqueta del lote completo: el tipo comun si todos
// los items coinciden, "mixed" si no, "recording" para capturas en vivo.
func (b Batch) MediaType() string {
	if b.Recording {
		return "recording"
	}
	if len(b.Items) == 0 {
		return "document"
	}
	kind := Kind(b.Items[0].MIME)
	for _, item := range b.Items[1:] {
		if Kind(item.MIME) != kind {
			return "mixed"
		}
	}
	return kind
}

// FileLabel es la etiqueta de archivo de la entrada de historial: el nombre
// literal para un solo archivo, un conteo agregado para lotes.
func (b Batch) FileLabel() string {
	switch len(b.Items) {
	case 0:
		return ""
	case 1:
		return b.Items[0].FileName
	default:
		return fmt.Sprintf("%d files uploaded", len(b.Items))
	}
}

// Parts convierte el lote en partes de contenido para el LLM. Imagenes van
// como data URL, audio como input_audio, texto plano inline, y el resto
// (video, PDFs, documentos) como adjunto file.
func (b Batch) Parts() []llm.Part {
	parts := make([]llm.Part, 0, len(b.Items))
	for _, item := range b.Items {
		parts = append(parts, itemPart(item))
	}
	return parts
}

func itemPart(item Item) llm.Part {
	encoded := base64.StdEncoding.EncodeToString(item.Data)
	switch {
	case strings.HasPrefix(item.MIME, "image/"):
		return llm.Part{
			Type:     "image_url",
			ImageURL: &llm.ImageURL{URL: dataURL(item.MIME, encoded)},
		}
	case strings.HasPrefix(item.MIME, "audio/"):
		return llm.Part{
			Type:       "input_audio",
			InputAudio: &llm.InputAudio{Data: encoded, Format: audioFormat(item.MIME)},
		}
	case strings.HasPrefix(item.MIME, "text/"):
		return llm.TextPart(fmt.Sprintf("Contents of %s:\n%s", item.FileName, string(item.Data)))
	default:
		return llm.Part{
			Type: "file",
			File: &llm.FileData{Filename: item.FileName, FileData: dataURL(item.MIME, encoded)},
		}
	}
}

func dataURL(mimeType, encoded string) string {
	return "data:" + mimeType + ";base64," + encoded
}

// audioFormat extrae el formato que espera input_audio ("mp3", "wav").
func audioFormat(mimeType string) string {
	format := strings.TrimPrefix(mimeType, "audio/")
	if i := strings.IndexByte(format, ';'); i >= 0 {
		format = format[:i]
	}
	if format == "mpeg" {
		return "mp3"
	}
	return format
}
