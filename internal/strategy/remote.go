package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fenilsonani/desk-triage/internal/config"
	"github.com/fenilsonani/desk-triage/internal/scanner"
)

func init() {
	Register("remote", func(cfg *config.StrategyConfig) Strategy {
		return NewRemote(cfg.Remote)
	})
}

// placeholderAPIKey is the value shipped in the example config; it means
// the user never configured a real key
const placeholderAPIKey = "your-api-key-here"

// Remote classifies files by sending batch metadata to an OpenAI-compatible
// chat completion endpoint and parsing the structured JSON reply.
type Remote struct {
	cfg    config.RemoteConfig
	client *openai.Client
	sleep  func(time.Duration)
}

// NewRemote creates the remote strategy. Only file metadata ever leaves
// the machine; file contents are never read or transmitted.
func NewRemote(cfg config.RemoteConfig) *Remote {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 120
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.RetryDelaySeconds < 0 {
		cfg.RetryDelaySeconds = 0
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	return &Remote{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		sleep:  time.Sleep,
	}
}

// Name identifies the strategy for logging
func (r *Remote) Name() string {
	return "remote"
}

// Available reports whether a usable credential is configured. The example
// config's placeholder key does not count.
func (r *Remote) Available() bool {
	return r.cfg.APIKey != "" && r.cfg.APIKey != placeholderAPIKey
}

// Analyze sends the batch to the model, retrying transient failures with a
// linear backoff (delay grows with the attempt number). Authentication
// failures are terminal and never retried.
func (r *Remote) Analyze(ctx context.Context, files []scanner.FileRecord, existingCategories []string) (*Result, error) {
	prompt := buildPrompt(files, existingCategories)

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		content, err := r.complete(ctx, prompt)
		if err == nil {
			result, perr := parseResponse(content)
			if perr != nil {
				return nil, &Error{Strategy: r.Name(), Cause: perr}
			}
			return result, nil
		}

		if isAuthStatus(err) {
			return nil, &Error{Strategy: r.Name(), Cause: fmt.Errorf("%w: %v", ErrAuth, err)}
		}

		lastErr = err
		if attempt < r.cfg.MaxRetries {
			r.sleep(time.Duration(r.cfg.RetryDelaySeconds*attempt) * time.Second)
		}
	}

	return nil, &Error{Strategy: r.Name(), Cause: fmt.Errorf("after %d attempts: %w", r.cfg.MaxRetries, lastErr)}
}

// complete performs one chat completion round trip under its own timeout
func (r *Remote) complete(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: r.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

// isAuthStatus reports whether err is an HTTP 401/403 from the endpoint
func isAuthStatus(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 401 || reqErr.HTTPStatusCode == 403
	}

	return false
}

// buildPrompt renders the batch metadata and the response contract
func buildPrompt(files []scanner.FileRecord, existingCategories []string) string {
	var b strings.Builder

	b.WriteString("你是一个文件整理助手。请分析以下文件列表，为每个文件给出整理建议。\n\n")
	b.WriteString("文件列表:\n")
	for _, f := range files {
		fmt.Fprintf(&b, "- 名称: %s, 大小: %.2fMB, 修改时间: %s\n",
			f.Name, f.SizeMB(), f.ModTime.Format("2006-01-02 15:04"))
	}

	if len(existingCategories) > 0 {
		fmt.Fprintf(&b, "\n已有分类（请尽量复用）: %s\n", strings.Join(existingCategories, "、"))
	}

	b.WriteString(`
请严格按以下 JSON 格式返回，不要附加其他文字:
{
  "suggestions": [
    {
      "file_path": "文件完整路径",
      "action": "delete 或 move 或 keep",
      "reason": "中文说明",
      "category": "分类名称",
      "confidence": 0.0
    }
  ],
  "categories": {
    "分类名称": ["文件名"]
  }
}
`)

	return b.String()
}

// remotePayload is the wire shape expected from the model
type remotePayload struct {
	Suggestions []struct {
		FilePath   string  `json:"file_path"`
		Action     string  `json:"action"`
		Reason     string  `json:"reason"`
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	} `json:"suggestions"`
	Categories map[string][]string `json:"categories"`
}

// parseResponse strips code fences, decodes the payload and coerces it to
// a Result. Missing keys produce empty lists, never an error; unknown
// action strings are normalized to keep.
func parseResponse(content string) (*Result, error) {
	cleaned := stripCodeFences(content)

	var payload remotePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	result := EmptyResult()
	for _, s := range payload.Suggestions {
		result.Suggestions = append(result.Suggestions, Suggestion{
			FilePath:   s.FilePath,
			Action:     NormalizeAction(s.Action),
			Reason:     s.Reason,
			Category:   s.Category,
			Confidence: s.Confidence,
		})
	}
	for label, names := range payload.Categories {
		result.Categories[label] = append(result.Categories[label], names...)
	}

	return result, nil
}

// stripCodeFences removes a leading ```json (or bare ```) fence and the
// trailing ``` that models wrap JSON answers in
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
