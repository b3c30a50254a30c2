// ABOUTME: Tests for the text-generation client against a local chat completions stub
// ABOUTME: Covers JSON extraction, auth headers, and upstream error surfaces

package suggest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/store"
)

// chatStub serves a canned assistant reply and records the last request.
func chatStub(t *testing.T, reply string, status int, lastReq **http.Request, lastBody *[]byte) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastReq != nil {
			*lastReq = r.Clone(context.Background())
		}
		if lastBody != nil {
			body, _ := io.ReadAll(r.Body)
			*lastBody = body
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func TestTaskSuggestions(t *testing.T) {
	reply := `[{"title": "Set up CI", "description": "Add a pipeline"}, {"title": "Write docs", "description": "Start with the README"}]`

	var lastReq *http.Request
	var lastBody []byte
	srv := chatStub(t, reply, http.StatusOK, &lastReq, &lastBody)
	defer srv.Close()

	client := newTestClient(srv.URL)
	suggestions, err := client.TaskSuggestions(context.Background(), "My project", "Some description")
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Set up CI", suggestions[0].Title)
	assert.Equal(t, "Start with the README", suggestions[1].Description)

	require.NotNil(t, lastReq)
	assert.Equal(t, "/chat/completions", lastReq.URL.Path)
	assert.Equal(t, "Bearer test-key", lastReq.Header.Get("Authorization"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(lastBody, &sent))
	assert.Equal(t, "test-model", sent["model"])
}

func TestTaskSuggestions_FencedReply(t *testing.T) {
	// Models often wrap the array in prose or code fences
	reply := "Here you go:\n```json\n[{\"title\": \"A\", \"description\": \"B\"}]\n```\nEnjoy!"
	srv := chatStub(t, reply, http.StatusOK, nil, nil)
	defer srv.Close()

	client := newTestClient(srv.URL)
	suggestions, err := client.TaskSuggestions(context.Background(), "P", "D")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "A", suggestions[0].Title)
}

func TestTaskSuggestions_NonJSONReply(t *testing.T) {
	srv := chatStub(t, "I would rather not.", http.StatusOK, nil, nil)
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.TaskSuggestions(context.Background(), "P", "D")
	assert.Error(t, err)
}

func TestTaskSuggestions_UpstreamError(t *testing.T) {
	srv := chatStub(t, "", http.StatusInternalServerError, nil, nil)
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.TaskSuggestions(context.Background(), "P", "D")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAnalyze(t *testing.T) {
	var lastBody []byte
	srv := chatStub(t, "## Assessment\n\nMostly done.", http.StatusOK, nil, &lastBody)
	defer srv.Close()

	hours := 3.0
	tasks := []*store.Task{
		{Title: "Build the thing", Status: store.TaskStatusCompleted, Priority: store.TaskPriorityHigh, EstimatedHours: &hours},
		{Title: "Test the thing", Status: store.TaskStatusTodo, Priority: store.TaskPriorityMedium},
	}

	client := newTestClient(srv.URL)
	analysis, err := client.Analyze(context.Background(), "Widget", tasks)
	require.NoError(t, err)
	assert.Equal(t, "## Assessment\n\nMostly done.", analysis)

	// The prompt carries each task's status and title
	var sent chatRequest
	require.NoError(t, json.Unmarshal(lastBody, &sent))
	require.Len(t, sent.Messages, 1)
	assert.Contains(t, sent.Messages[0].Content, "Build the thing")
	assert.Contains(t, sent.Messages[0].Content, "completed")
}

func TestAnalyze_NoTasks(t *testing.T) {
	var lastBody []byte
	srv := chatStub(t, "Nothing to see.", http.StatusOK, nil, &lastBody)
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.Analyze(context.Background(), "Empty project", nil)
	require.NoError(t, err)

	var sent chatRequest
	require.NoError(t, json.Unmarshal(lastBody, &sent))
	assert.Contains(t, sent.Messages[0].Content, "no tasks yet")
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare array", in: `[1, 2]`, want: `[1, 2]`},
		{name: "fenced", in: "```json\n[1]\n```", want: `[1]`},
		{name: "prose around", in: `Sure: [1] there you go`, want: `[1]`},
		{name: "no array", in: `nothing here`, want: `nothing here`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONArray(tt.in))
		})
	}
}
