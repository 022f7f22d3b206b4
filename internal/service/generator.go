package service

import (
	"bytes"
	"complykit/internal/config"
	"complykit/internal/metrics"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Purpose selects the model and output budget for a generation call
type Purpose string

const (
	PurposeSummary  Purpose = "summary"
	PurposeDocument Purpose = "document"
)

// Generator produces text from a prompt
type Generator interface {
	Generate(ctx context.Context, purpose Purpose, prompt string) (string, error)
}

// NewGenerator returns the Gemini client, or a canned generator when no API
// key is configured
func NewGenerator(cfg *config.AIConfig, log *zap.Logger) Generator {
	if !cfg.IsEnabled() {
		log.Warn("GEMINI_API_KEY not set, using mock generator")
		return &mockGenerator{}
	}
	return NewGeminiClient(cfg, log)
}

// GeminiClient calls the Gemini generateContent REST endpoint
type GeminiClient struct {
	config *config.AIConfig
	client *http.Client
	log    *zap.Logger
}

func NewGeminiClient(cfg *config.AIConfig, log *zap.Logger) *GeminiClient {
	return &GeminiClient{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		log: log,
	}
}

func (g *GeminiClient) limits(purpose Purpose) (string, int) {
	if purpose == PurposeDocument {
		return g.config.Models.Document, g.config.DocumentMaxTokens
	}
	return g.config.Models.Summary, g.config.SummaryMaxTokens
}

func (g *GeminiClient) Generate(ctx context.Context, purpose Purpose, prompt string) (string, error) {
	modelName, maxTokens := g.limits(purpose)

	start := time.Now()
	text, err := g.callGemini(ctx, modelName, prompt, maxTokens)
	metrics.GenerationDuration.WithLabelValues(string(purpose)).Observe(time.Since(start).Seconds())

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case strings.TrimSpace(text) == "":
		outcome = "empty"
	}
	metrics.GenerationCalls.WithLabelValues(string(purpose), outcome).Inc()

	if err != nil {
		g.log.Warn("gemini request failed", zap.String("purpose", string(purpose)), zap.String("model", modelName), zap.Error(err))
	}
	return text, err
}

// callGemini makes a request to the Gemini API
func (g *GeminiClient) callGemini(ctx context.Context, modelName, prompt string, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": maxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	// The key travels in a header: transport errors quote the URL and end up in logs.
	req, err := http.NewRequestWithContext(ctx, "POST", g.config.ModelEndpoint(modelName), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.config.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	// Long answers can be split across parts
	if len(geminiResp.Candidates) > 0 {
		var sb strings.Builder
		for _, p := range geminiResp.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
		return sb.String(), nil
	}
	return "", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// mockGenerator stands in for Gemini in local development
type mockGenerator struct{}

func (m *mockGenerator) Generate(ctx context.Context, purpose Purpose, prompt string) (string, error) {
	metrics.GenerationCalls.WithLabelValues(string(purpose), "mock").Inc()
	if purpose == PurposeDocument {
		return "# Draft document\n\nThis draft was produced without a text generation backend.\n\n" +
			"## Next steps\n\n- Configure `GEMINI_API_KEY` to generate a tailored document.\n", nil
	}
	return "**Key considerations**\n\n- Keep a record of how your AI system is used.\n" +
		"- Tell people when they are interacting with AI.\n\n" +
		"**Next steps**\n\n- Review the obligations for your risk level.\n", nil
}
