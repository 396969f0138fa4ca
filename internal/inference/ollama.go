package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	DefaultHost        = "http://localhost:11434"
	DefaultModel       = "codellama:7b-instruct"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 500

	generatePath = "/api/generate"
)

// OllamaConfig configures an OllamaClient.
type OllamaConfig struct {
	Host        string
	Model       string
	Temperature float64
	MaxTokens   int
	// Timeout bounds a single generate call. Zero disables the bound.
	Timeout time.Duration
}

// OllamaClient calls the Ollama generate endpoint directly so the raw reply
// shape is visible for text extraction.
type OllamaClient struct {
	cfg        OllamaConfig
	httpClient *http.Client
	logger     *slog.Logger
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model       string          `json:"model"`
	Prompt      string          `json:"prompt"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Stream      bool            `json:"stream"`
	Options     generateOptions `json:"options"`
}

// NewOllamaClient creates a client. A nil httpClient selects NewHTTPClient().
func NewOllamaClient(cfg OllamaConfig, httpClient *http.Client, logger *slog.Logger) *OllamaClient {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &OllamaClient{cfg: cfg, httpClient: httpClient, logger: logger}
}

// NewHTTPClient creates an HTTP client with generous timeouts for local
// model serving, which can take a while to answer.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// Generate sends one non-streaming generate request.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) fn.Result[Completion] {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{
		Model:       c.cfg.Model,
		Prompt:      prompt,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			NumPredict:  c.cfg.MaxTokens,
		},
	})
	if err != nil {
		return fn.Err[Completion](fmt.Errorf("failed to encode generate request: %w", err))
	}

	url := strings.TrimSuffix(c.cfg.Host, "/") + generatePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fn.Err[Completion](fmt.Errorf("failed to build generate request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("inference call failed", "model", c.cfg.Model, "error", err)
		return fn.Err[Completion](fmt.Errorf("%w: %w", ErrTransport, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fn.Err[Completion](fmt.Errorf("%w: reading response: %w", ErrTransport, err))
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("inference endpoint returned error", "model", c.cfg.Model, "status", resp.StatusCode)
		return fn.Err[Completion](&APIError{StatusCode: resp.StatusCode, Body: string(raw)})
	}

	completion, err := ExtractCompletion(raw)
	if err != nil {
		return fn.Err[Completion](err)
	}

	c.logger.Debug("inference call completed",
		"model", c.cfg.Model,
		"source", completion.Source.String(),
		"duration", time.Since(start).Round(time.Millisecond))
	return fn.Ok(completion)
}
