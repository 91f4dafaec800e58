// ABOUTME: HTTP client for an interpreter service exposing POST /api/messages.
// ABOUTME: Sends inbound text as JSON and returns the reply field.

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// messageRequest is the request body for POST /api/messages.
type messageRequest struct {
	Text string `json:"text"`
}

// messageResponse is the success body.
type messageResponse struct {
	Reply string `json:"reply"`
}

// errorResponse is the JSON structure for error bodies.
type errorResponse struct {
	Error string `json:"error"`
}

// HTTP calls an interpreter service over its HTTP API.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates a client for the interpreter at baseURL.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// Handle posts the inbound text and returns the interpreter's reply.
func (h *HTTP) Handle(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(messageRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.baseURL+"/api/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", h.handleErrorResponse(resp)
	}

	var out messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return out.Reply, nil
}

// handleErrorResponse extracts an error message from non-200 responses.
func (h *HTTP) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("interpreter error (%d): %s", resp.StatusCode, errResp.Error)
		}
	}

	return fmt.Errorf("interpreter returned status %d: %s", resp.StatusCode, string(body))
}
