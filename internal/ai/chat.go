package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemInstruction = `You condense audience questions for a live event moderator.
Answer only with a numbered list of questions, one per line, with no preamble.`

const (
	defaultHTTPTimeout = 60 * time.Second
	errorBodyLimit     = 4 << 10
)

// chatMessage is the role/content pair of the chat-completion style APIs.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func promptMessages(prompt string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: prompt},
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// postJSON sends body as JSON and decodes a 2xx reply into out. A non-2xx
// reply becomes an error carrying the head of the response body.
func postJSON(ctx context.Context, client *http.Client, url string, header http.Header, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		head, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		if msg := strings.TrimSpace(string(head)); msg != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
