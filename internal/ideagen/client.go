package ideagen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/oauth2"
)

const (
	systemPrompt = "You are a creative content strategist. Generate 5 unique, engaging content ideas for digital creators. Return each idea on a new line."
	userPrompt   = "Generate 5 creative content ideas about: %s"
	maxTokens    = 500

	// maxResponseBytes caps how much of the response body is read.
	maxResponseBytes = 1 << 20
)

// Error codes attached to Client errors.
const (
	CodeMissingKey = "GENERATION_MISSING_KEY"
	CodeRequest    = "GENERATION_REQUEST"
	CodeHTTPStatus = "GENERATION_HTTP_STATUS"
	CodeDecode     = "GENERATION_DECODE"
	CodeEmpty      = "GENERATION_EMPTY"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	APIKey  string
	BaseURL string // e.g. https://api.openai.com/v1
	Model   string

	// HTTPClient is the base transport. nil means http.DefaultClient.
	HTTPClient *http.Client
}

// Client calls an OpenAI-compatible chat completion endpoint. The API key
// is attached as a bearer token by an oauth2 transport.
type Client struct {
	http     *http.Client
	endpoint string
	model    string
	hasKey   bool
}

var _ Generator = (*Client)(nil)

// NewClient builds a Client. It does not contact the API.
func NewClient(cfg ClientConfig) *Client {
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})

	return &Client{
		http:     oauth2.NewClient(ctx, src),
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:    cfg.Model,
		hasKey:   cfg.APIKey != "",
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request for topic and returns the
// first choice's text. There are no retries.
func (c *Client) Complete(ctx context.Context, topic string) (string, error) {
	errb := oops.In("ideagen").With("model", c.model)

	if !c.hasKey {
		return "", errb.Code(CodeMissingKey).Errorf("generation API key is not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf(userPrompt, topic)},
		},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", errb.Code(CodeRequest).Wrapf(err, "encoding request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errb.Code(CodeRequest).Wrapf(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errb.Code(CodeRequest).With("endpoint", c.endpoint).Wrapf(err, "calling generation API")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errb.Code(CodeHTTPStatus).
			With("status", resp.StatusCode, "body", string(snippet)).
			Errorf("generation API returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", errb.Code(CodeDecode).Wrapf(err, "decoding generation response")
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", errb.Code(CodeEmpty).Errorf("generation response had no content")
	}

	return out.Choices[0].Message.Content, nil
}
