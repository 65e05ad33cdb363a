package docread

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestMediaTypeFor(t *testing.T) {
	assert.Equal(t, MediaPDF, MediaTypeFor("Outline.PDF"))
	assert.Equal(t, MediaDOCX, MediaTypeFor("syllabus.docx"))
	assert.Equal(t, MediaHTML, MediaTypeFor("page.htm"))
	assert.Equal(t, MediaCalendar, MediaTypeFor("shifts.ics"))
	assert.Equal(t, MediaText, MediaTypeFor("notes.txt"))
	assert.Equal(t, MediaText, MediaTypeFor("README"))
}

func TestDetect(t *testing.T) {
	assert.Equal(t, MediaPDF, Detect("blob", "application/pdf"))
	assert.Equal(t, MediaCalendar, Detect("x", "text/calendar; charset=utf-8"))
	assert.Equal(t, MediaPDF, Detect("outline.pdf", "application/octet-stream"))
	assert.Equal(t, MediaText, Detect("notes", ""))
}

func TestDecodeTextStripsBOM(t *testing.T) {
	path := writeFile(t, "a.txt", append([]byte{0xEF, 0xBB, 0xBF}, "Quiz 1 March 3, 2026"...))

	text, err := Decode(path, MediaText)
	require.NoError(t, err)
	assert.Equal(t, "Quiz 1 March 3, 2026", text)
}

func TestDecodeMissingFile(t *testing.T) {
	_, err := Decode(filepath.Join(t.TempDir(), "nope.txt"), MediaText)
	assert.Error(t, err)
}

func TestDecodeCalendar(t *testing.T) {
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:a\r\nDTSTART;VALUE=DATE:20260214\r\nSUMMARY:Quiz 1\r\nEND:VEVENT\r\n" +
		"BEGIN:VEVENT\r\nUID:b\r\nDTSTART:20260314T070000Z\r\nSUMMARY:Opening shift\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	path := writeFile(t, "cal.ics", []byte(body))

	text, err := Decode(path, MediaCalendar)
	require.NoError(t, err)
	assert.Equal(t, "Quiz 1: 2026-02-14\nOpening shift: 2026-03-14 07:00\n", text)
}

func TestDecodeHTML(t *testing.T) {
	path := writeFile(t, "page.html", []byte(
		`<html><body><h1>CS101</h1><p>Quiz 1 on March 3, 2026</p><script>var x = 1;</script></body></html>`,
	))

	text, err := Decode(path, MediaHTML)
	require.NoError(t, err)
	assert.Contains(t, text, "CS101")
	assert.Contains(t, text, "Quiz 1 on March 3, 2026")
	assert.NotContains(t, text, "<p>")
}

func TestDecodeDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Course: CS101</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Quiz 1</w:t></w:r><w:r><w:tab/><w:t>March 3, 2026</w:t></w:r></w:p>` +
		`<w:p></w:p>` +
		`</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	text, err := Decode(path, MediaDOCX)
	require.NoError(t, err)
	assert.Equal(t, "Course: CS101\nQuiz 1\tMarch 3, 2026", text)
}

func TestDecodeDOCXWithoutBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = Decode(path, MediaDOCX)
	assert.Error(t, err)
}

func TestDecodePDFRejectsGarbage(t *testing.T) {
	path := writeFile(t, "bad.pdf", []byte("not a pdf"))
	_, err := Decode(path, MediaPDF)
	assert.Error(t, err)
}

func TestTextFromStream(t *testing.T) {
	stream := strings.Join([]string{
		"BT",
		"/F1 12 Tf",
		"72 720 Td",
		"(Course: CS101) Tj",
		"0 -14 Td",
		`(Quiz 1 \(online\)   March 3, 2026) Tj`,
		"T*",
		"[(Mid) -20 (term)] TJ",
		"ET",
	}, "\n")

	assert.Equal(t, "Course: CS101\nQuiz 1 (online) March 3, 2026\nMidterm", textFromStream([]byte(stream)))
}

func TestDecodePDFString(t *testing.T) {
	assert.Equal(t, `a b\c`, decodePDFString([]byte(`a\040b\\c`)))
	assert.Equal(t, "x\ty", decodePDFString([]byte(`x\ty`)))
}
