package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// noTitleSentinel is what the prompt instructs the model to return when it
// cannot produce a usable English title.
const noTitleSentinel = "NO_TITLE_FOUND"

const geminiDelay = 1 * time.Second

// geminiClient asks the Gemini generateContent API for the official English
// title of a Japanese film. It is an optional capability: a nil client (or an
// empty key) simply disables the fallback.
type geminiClient struct {
	apiKey string
	httpc  *http.Client
	delay  time.Duration
}

func newGeminiClient(apiKey string, httpc *http.Client) *geminiClient {
	if httpc == nil {
		httpc = &http.Client{Timeout: 25 * time.Second}
	}
	return &geminiClient{apiKey: strings.TrimSpace(apiKey), httpc: httpc, delay: geminiDelay}
}

func (c *geminiClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// englishTitle asks the model for the common/official English title of the
// film, or a literal translation when none exists. Returns ("", nil) when the
// model answers with the no-title sentinel.
func (c *geminiClient) englishTitle(ctx context.Context, originalTitle string) (string, error) {
	if !c.isConfigured() {
		return "", errors.New("gemini api key not configured")
	}

	prompt := fmt.Sprintf(`You are a film database assistant. A Japanese cinema lists a film under the title %q.

Reply with the film's common or official English-language title. If the film has no English release, reply with a literal English translation of the title. If you cannot identify the film or translate the title, reply with exactly %s.

Reply with ONLY the title (or %s), no quotes, no other text.`, originalTitle, noTitleSentinel, noTitleSentinel)

	endpoint := fmt.Sprintf("%s/models/gemma-3n-e4b-it:generateContent?key=%s", geminiBaseURL, c.apiKey)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.2,
			MaxOutputTokens: 64,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Retry with backoff on transport failures and throttling; a model-level
	// failure just means "no title from the LLM" to the caller.
	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			lastErr = err
			log.Printf("[gemini] http error (attempt %d/3): %v", attempt+1, err)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("gemini request failed: status %d", resp.StatusCode)
			log.Printf("[gemini] rate limited or server error (attempt %d/3): status %d", attempt+1, resp.StatusCode)
			time.Sleep(backoff)
			backoff *= 2
			continue
		}

		defer resp.Body.Close()
		defer c.pause()

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			return "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, string(body))
		}

		var geminiResp geminiResponse
		if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
			return "", fmt.Errorf("decode gemini response: %w", err)
		}
		if geminiResp.Error != nil {
			return "", fmt.Errorf("gemini API error: %s", geminiResp.Error.Message)
		}
		if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
			return "", errors.New("gemini returned empty response")
		}

		answer := strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text)
		// Strip a potential markdown fence or stray quotes around the title.
		answer = strings.TrimPrefix(answer, "```")
		answer = strings.TrimSuffix(answer, "```")
		answer = strings.Trim(strings.TrimSpace(answer), `"'`)

		if answer == "" || strings.EqualFold(answer, noTitleSentinel) {
			return "", nil
		}
		return answer, nil
	}

	return "", fmt.Errorf("gemini request failed after 3 attempts: %w", lastErr)
}

func (c *geminiClient) pause() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}
