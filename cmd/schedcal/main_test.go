package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedcal/internal/model"
)

func TestExtractCommandWritesJSONAndCalendar(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SCHEDCAL_AI_PROVIDER", "")

	dir := t.TempDir()
	outline := filepath.Join(dir, "cs101.txt")
	require.NoError(t, os.WriteFile(outline, []byte("CS101\nMidterm: March 3, 2026 25%\nAssignment 1 due 2026-02-10\n"), 0o600))
	calPath := filepath.Join(dir, "out.ics")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"extract", "--config", filepath.Join(dir, "config.yaml"), "--ics", calPath, outline})
	t.Cleanup(func() { icsOut = "" })

	require.NoError(t, rootCmd.Execute())

	var res model.ProcessResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Courses, 1)
	assert.Equal(t, "CS101", res.Courses[0].CourseName)
	assert.Equal(t, "cs101.txt", res.Courses[0].Source)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "2026-02-10", res.Events[0].Date)
	assert.Equal(t, "2026-03-03", res.Events[1].Date)

	cal, err := os.ReadFile(calPath)
	require.NoError(t, err)
	assert.Contains(t, string(cal), "SUMMARY:CS101 - Midterm")
	assert.Contains(t, string(cal), "DESCRIPTION:Weight 25%")

	// First run writes a default config next to the outline.
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))
}

func TestExtractCommandMissingFile(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"extract", "--config", filepath.Join(dir, "config.yaml"), filepath.Join(dir, "missing.txt")})

	assert.Error(t, rootCmd.Execute())
}
