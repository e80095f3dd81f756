package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIGenerator asks a chat-completion model for artist names similar
// to the correct one. Responses come back as a plain list, one name per
// line; anything else is trimmed away.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewOpenAIGenerator(apiKey, model, baseURL string) *OpenAIGenerator {
	return &OpenAIGenerator{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type openAIChatRequest struct {
	Model       string              `json:"model"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const distractorSystemPrompt = "You name real music artists that sound plausibly similar to a given artist " +
	"(same genre, era, or audience) but are NOT that artist. Respond with exactly the requested number of " +
	"artist names, one per line, no numbering, no commentary."

func (g *OpenAIGenerator) SimilarArtists(ctx context.Context, artist string, n int) ([]string, error) {
	if strings.TrimSpace(g.apiKey) == "" {
		return nil, errors.New("OpenAI API key is not configured")
	}

	reqBody := openAIChatRequest{
		Model: g.model,
		Messages: []openAIChatMessage{
			{Role: "system", Content: distractorSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Give me %d artists similar to %q.", n, artist)},
		},
		Temperature: 0.9,
		MaxTokens:   200,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(g.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d", resp.StatusCode)
	}

	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return nil, fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("openai returned no choices")
	}

	names := parseArtistList(parsed.Choices[0].Message.Content, n)
	if len(names) == 0 {
		return nil, errors.New("openai returned no usable artist names")
	}
	return names, nil
}

func parseArtistList(raw string, limit int) []string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, limit)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.")
		line = strings.TrimSpace(line)
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == limit {
			break
		}
	}
	return out
}
