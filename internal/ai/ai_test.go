package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"schedcal/internal/config"
)

func testRequest() Request {
	return Request{
		Messages: []Message{
			{Role: RoleSystem, Content: "json only"},
			{Role: RoleUser, Content: "extract"},
		},
		Schema: ScheduleSchema(),
	}
}

func TestOpenAIClientSendsSchemaAndCollectsText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"output": [
				{"type": "reasoning", "content": []},
				{"type": "message", "content": [
					{"type": "output_text", "text": "{\"course_name\":"},
					{"type": "refusal", "text": "ignored"},
					{"type": "output_text", "text": "\"CS101\"}"}
				]}
			],
			"error": null
		}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-test"})
	resp, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Nil(t, resp.Parsed)
	assert.Equal(t, []string{`{"course_name":`, `"CS101"}`}, resp.Segments)

	assert.Equal(t, "gpt-test", got["model"])
	input, ok := got["input"].([]any)
	require.True(t, ok)
	assert.Len(t, input, 2)

	format := got["text"].(map[string]any)["format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, ScheduleSchemaName, format["name"])
	assert.NotNil(t, format["schema"])
	assert.Equal(t, true, format["strict"])
}

func TestOpenAIClientPrefersParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"output_parsed": {"course_name": "MATH265", "source": "", "items": []}, "output": []}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	resp, err := c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"course_name": "MATH265", "source": "", "items": []}`, string(resp.Parsed))
}

func TestOpenAIClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	_, err = NewOpenAIClient(OpenAIConfig{}).Complete(context.Background(), testRequest())
	assert.Error(t, err)
}

func TestScheduleSchemaRequiresEveryItemField(t *testing.T) {
	s := ScheduleSchema()
	assert.Equal(t, ScheduleSchemaName, s.Name)

	items := s.Definition["properties"].(map[string]any)["items"].(map[string]any)["items"].(map[string]any)
	assert.ElementsMatch(t,
		[]string{"title", "type", "date", "time", "weight", "notes", "reminders"},
		items["required"],
	)

	enum := items["properties"].(map[string]any)["type"].(map[string]any)["enum"]
	assert.Contains(t, enum, "assignment")
	assert.Contains(t, enum, "other")
}

func TestGeminiSchemaFromScheduleSchema(t *testing.T) {
	s := geminiSchema(ScheduleSchema().Definition)
	require.NotNil(t, s)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"course_name", "source", "items"}, s.Required)

	item := s.Properties["items"].Items
	require.NotNil(t, item)
	assert.Len(t, item.Required, 7)
	assert.Equal(t, genai.TypeNumber, item.Properties["weight"].Type)
	require.NotNil(t, item.Properties["weight"].Nullable)
	assert.True(t, *item.Properties["weight"].Nullable)
	assert.Contains(t, item.Properties["type"].Enum, "assignment")
	assert.Equal(t, genai.TypeString, item.Properties["reminders"].Items.Type)
}

func TestGeminiSchemaFollowsRequest(t *testing.T) {
	// A decoded-JSON definition works the same as a Go literal.
	var def map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"type":"object","properties":{"n":{"type":["integer","null"]}},"required":["n"]}`), &def))

	s := geminiSchema(def)
	require.NotNil(t, s)
	assert.Equal(t, []string{"n"}, s.Required)
	assert.Equal(t, genai.TypeInteger, s.Properties["n"].Type)
	assert.Nil(t, s.Properties["course_name"])

	assert.Nil(t, geminiSchema(nil))
}

func TestNewFromConfigWithoutKey(t *testing.T) {
	c, err := NewFromConfig(context.Background(), config.DefaultConfig().AI)
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewFromConfigOpenAI(t *testing.T) {
	cfg := config.DefaultConfig().AI
	cfg.APIKey = "sk-test"

	c, err := NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)
}

func TestNewFromConfigUnknownProvider(t *testing.T) {
	cfg := config.AIConfig{Provider: "llama", APIKey: "k"}
	_, err := NewFromConfig(context.Background(), cfg)
	assert.Error(t, err)
}
