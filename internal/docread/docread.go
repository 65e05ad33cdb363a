// Package docread turns uploaded files into plain text for extraction.
package docread

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"schedcal/internal/ics"
	appLog "schedcal/internal/log"
)

const (
	MediaPDF      = "application/pdf"
	MediaDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaHTML     = "text/html"
	MediaCalendar = "text/calendar"
	MediaText     = "text/plain"
)

// ErrEmpty is returned when a binary document yields no text at all, such
// as a scanned PDF without a text layer.
var ErrEmpty = errors.New("document has no readable text")

var extMedia = map[string]string{
	".pdf":  MediaPDF,
	".docx": MediaDOCX,
	".html": MediaHTML,
	".htm":  MediaHTML,
	".ics":  MediaCalendar,
}

// MediaTypeFor guesses a media type from a file name's extension.
func MediaTypeFor(name string) string {
	if mt, ok := extMedia[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return MediaText
}

// Detect picks the media type for an upload: a specific declared type wins,
// generic ones defer to the file name.
func Detect(name, declared string) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case MediaPDF, MediaDOCX, MediaHTML, MediaCalendar:
		return mt
	}
	return MediaTypeFor(name)
}

var md = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Decode reads the file at path as mediaType and returns its text.
func Decode(path, mediaType string) (string, error) {
	var (
		text string
		err  error
	)
	switch mediaType {
	case MediaPDF:
		text, err = decodePDF(path)
	case MediaDOCX:
		text, err = decodeDOCX(path)
	case MediaHTML:
		text, err = decodeHTML(path)
	case MediaCalendar:
		text, err = decodeCalendar(path)
	default:
		text, err = decodeText(path)
	}
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", mediaType, err)
	}

	appLog.Debug("document decoded", "media_type", mediaType, "chars", len(text))
	return text, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

func decodeHTML(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	out, err := md.ConvertString(string(data))
	if err != nil {
		return "", fmt.Errorf("html to markdown: %w", err)
	}
	return out, nil
}

// decodeCalendar renders each VEVENT as "summary: date [time]" so the
// extractors see one dated line per event.
func decodeCalendar(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	events, err := ics.ParseEvents(data)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, ev := range events {
		if ev.Date == "" {
			continue
		}
		summary := ev.Summary
		if summary == "" {
			summary = "Event"
		}
		sb.WriteString(summary)
		sb.WriteString(": ")
		sb.WriteString(ev.Date)
		if ev.Time != "" {
			sb.WriteString(" ")
			sb.WriteString(ev.Time)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
