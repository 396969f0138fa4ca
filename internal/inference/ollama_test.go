package inference

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOllamaClient_Generate(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantText   string
		wantSource Source
		wantErr    bool
		wantAPIErr bool
	}{
		{
			name:       "direct response field",
			status:     http.StatusOK,
			body:       `{"model":"codellama:7b-instruct","response":"looks good","done":true}`,
			wantText:   "looks good",
			wantSource: SourceDirect,
		},
		{
			name:       "nested results content",
			status:     http.StatusOK,
			body:       `{"results":[{"content":"nested review"},{"content":"ignored"}]}`,
			wantText:   "nested review",
			wantSource: SourceNested,
		},
		{
			name:       "unknown shape falls back to raw payload",
			status:     http.StatusOK,
			body:       `{"output":"something else"}`,
			wantText:   `{"output":"something else"}`,
			wantSource: SourceRawFallback,
		},
		{
			name:       "empty results list falls back",
			status:     http.StatusOK,
			body:       `{"results":[]}`,
			wantText:   `{"results":[]}`,
			wantSource: SourceRawFallback,
		},
		{
			name:       "non-200 carries raw body",
			status:     http.StatusNotFound,
			body:       `{"error":"model 'codellama:7b-instruct' not found"}`,
			wantErr:    true,
			wantAPIErr: true,
		},
		{
			name:    "malformed success body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewOllamaClient(OllamaConfig{Host: srv.URL}, srv.Client(), testLogger())
			completion, err := client.Generate(t.Context(), "review this").Unpack()

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantAPIErr {
					var apiErr *APIError
					require.True(t, errors.As(err, &apiErr))
					assert.Equal(t, tt.status, apiErr.StatusCode)
					assert.Equal(t, "Ollama API error: "+tt.body, err.Error())
				} else {
					assert.ErrorIs(t, err, ErrMalformedPayload)
				}
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, completion.Text)
			assert.Equal(t, tt.wantSource, completion.Source)
		})
	}
}

func TestOllamaClient_RequestPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"response":"ok"}`)
	}))
	defer srv.Close()

	client := NewOllamaClient(OllamaConfig{
		Host:        srv.URL + "/",
		Temperature: DefaultTemperature,
	}, srv.Client(), testLogger())

	_, err := client.Generate(t.Context(), "the prompt").Unpack()
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, got["model"])
	assert.Equal(t, "the prompt", got["prompt"])
	assert.Equal(t, DefaultTemperature, got["temperature"])
	assert.EqualValues(t, DefaultMaxTokens, got["max_tokens"])
	assert.Equal(t, false, got["stream"])

	opts, ok := got["options"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, DefaultMaxTokens, opts["num_predict"])
}

func TestOllamaClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewOllamaClient(OllamaConfig{Host: url}, nil, testLogger())
	_, err := client.Generate(t.Context(), "prompt").Unpack()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestOllamaClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewOllamaClient(OllamaConfig{Host: srv.URL, Timeout: 50 * time.Millisecond}, srv.Client(), testLogger())
	_, err := client.Generate(t.Context(), "prompt").Unpack()

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}
