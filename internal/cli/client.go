package cli

import (
	"bytes"
	"complykit/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var errNoToken = errors.New("no token: pass --token or set COMPLYKIT_TOKEN")

// apiClient talks to the ComplyKit server
type apiClient struct {
	baseURL  string
	token    string
	clientID string
	http     *http.Client
}

func newAPIClient(baseURL, token, clientID string) *apiClient {
	return &apiClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		clientID: clientID,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// submitResponse is the part of the server's assessment outcome the CLI reads
type submitResponse struct {
	RiskLevel model.RiskLevel `json:"riskLevel"`
	Persisted bool            `json:"persisted"`
	Result    struct {
		ID string `json:"id"`
	} `json:"result"`
}

// submit posts a complete answer set. The server classifies it again with
// the same rules and stores it under the token's user. submissionID lets
// the server drop a repeat of a submission it already has.
func (c *apiClient) submit(ctx context.Context, submissionID string, answers model.AnswerSet) (*submitResponse, error) {
	if c.token == "" {
		return nil, errNoToken
	}

	body, err := json.Marshal(map[string]interface{}{"answers": answers, "submissionId": submissionID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/results", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out submitResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode server response: %w", err)
	}
	return &out, nil
}
