package orchestrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/postforge/internal/config"
	"github.com/aleister1102/postforge/internal/datastore"
	"github.com/aleister1102/postforge/internal/workflow"
)

// workflowResultData builds the nested JSON result string the content
// workflow produces
func workflowResultData(t *testing.T) string {
	t.Helper()

	output, err := json.Marshal(map[string]string{
		"title":       "Morning Pages",
		"description": "Thoughts before coffee",
		"summary":     "Short and sleepy",
	})
	require.NoError(t, err)

	output1, err := json.Marshal(map[string][]string{"tags": {"journal"}})
	require.NoError(t, err)

	output3, err := json.Marshal(map[string]map[string]string{
		"data": {
			"image_url":   "https://img.example.com/morning.png",
			"description": "Sunrise",
			"title":       "Morning cover",
		},
	})
	require.NoError(t, err)

	data, err := json.Marshal(map[string]string{
		"output":  string(output),
		"output1": string(output1),
		"output2": "# Morning Pages\n\nContent goes here.",
		"output3": string(output3),
	})
	require.NoError(t, err)

	return string(data)
}

func testConfig(t *testing.T, baseURL string) *config.GlobalConfig {
	t.Helper()

	workDir := t.TempDir()
	cfg := config.NewDefaultGlobalConfig()
	cfg.WorkflowConfig.BaseURL = baseURL
	cfg.PostConfig.ContentDir = filepath.Join(workDir, "content", "posts")
	cfg.PostConfig.FilenameCharset = "hex"
	cfg.PostConfig.FilenameLength = 8
	cfg.HistoryConfig.SQLiteDBPath = filepath.Join(workDir, "history", "publish_history.db")
	cfg.RetryConfig.MaxAttempts = 1
	return cfg
}

func testCredentials() *config.EnvCredentials {
	return &config.EnvCredentials{
		APIToken:   "test-token",
		WorkflowID: "wf-test",
	}
}

func TestPublisher_Publish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/workflow/run", r.URL.Path)

		var req workflow.RunRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "wf-test", req.WorkflowID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(workflow.RunResult{
			Code:     0,
			Msg:      "Success",
			Data:     workflowResultData(t),
			DebugURL: "https://debug.example.com/run/42",
		})
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	publisher, err := NewPublisher(cfg, testCredentials(), zerolog.Nop())
	require.NoError(t, err)
	defer publisher.Close()

	outcome, err := publisher.Publish(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Morning Pages", outcome.Title)
	assert.Equal(t, "https://debug.example.com/run/42", outcome.DebugURL)
	assert.True(t, strings.HasSuffix(outcome.FilePath, ".md"))

	written, err := os.ReadFile(outcome.FilePath)
	require.NoError(t, err)

	doc := string(written)
	assert.True(t, strings.HasPrefix(doc, "---\n"))
	assert.Contains(t, doc, "title: Morning Pages")
	assert.Contains(t, doc, "# Morning Pages\n\nContent goes here.")

	// The run is recorded as published in the history store
	store, err := datastore.NewHistoryStore(cfg.HistoryConfig.SQLiteDBPath, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	entry, err := store.GetEntryBySession(outcome.SessionID)
	require.NoError(t, err)
	assert.Equal(t, datastore.StatusPublished, entry.Status)
	assert.Equal(t, outcome.FilePath, entry.PostFilePath.String)
	assert.Equal(t, "Morning Pages", entry.PostTitle.String)
}

func TestPublisher_Publish_WorkflowFailureRecorded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	publisher, err := NewPublisher(cfg, testCredentials(), zerolog.Nop())
	require.NoError(t, err)
	defer publisher.Close()

	_, err = publisher.Publish(context.Background())
	require.Error(t, err)

	// No post file appears on failure
	entries, readErr := os.ReadDir(cfg.PostConfig.ContentDir)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestPublisher_Publish_MalformedResultData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(workflow.RunResult{Code: 0, Data: "not nested json"})
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	publisher, err := NewPublisher(cfg, testCredentials(), zerolog.Nop())
	require.NoError(t, err)
	defer publisher.Close()

	_, err = publisher.Publish(context.Background())
	assert.Error(t, err)
}

func TestPublisher_HistoryDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(workflow.RunResult{
			Code: 0,
			Data: workflowResultData(t),
		})
	}))
	defer server.Close()

	cfg := testConfig(t, server.URL)
	cfg.HistoryConfig.Enabled = false

	publisher, err := NewPublisher(cfg, testCredentials(), zerolog.Nop())
	require.NoError(t, err)
	defer publisher.Close()

	outcome, err := publisher.Publish(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.FilePath)

	// The history database is never created when disabled
	_, statErr := os.Stat(cfg.HistoryConfig.SQLiteDBPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewPublisher_NilConfig(t *testing.T) {
	_, err := NewPublisher(nil, testCredentials(), zerolog.Nop())
	assert.Error(t, err)

	_, err = NewPublisher(config.NewDefaultGlobalConfig(), nil, zerolog.Nop())
	assert.Error(t, err)
}
