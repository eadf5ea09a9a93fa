package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"smokebuddy/internal/types"
)

// lineAPIBase is the default LINE Messaging API base URL.
const lineAPIBase = "https://api.line.me"

// maxLineMessages is the per-request message limit of the reply and push
// endpoints.
const maxLineMessages = 5

// LineClientConfig holds the configuration for creating a LineClient.
type LineClientConfig struct {
	ChannelAccessToken types.SecretString
	BaseURL            string // defaults to lineAPIBase
	Logger             *slog.Logger
}

// lineMessage is the wire form of a text or image message.
type lineMessage struct {
	Type               string `json:"type"`
	Text               string `json:"text,omitempty"`
	OriginalContentURL string `json:"originalContentUrl,omitempty"`
	PreviewImageURL    string `json:"previewImageUrl,omitempty"`
}

type lineReplyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []lineMessage `json:"messages"`
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

// LineClient sends messages through the LINE Messaging API.
type LineClient struct {
	base    *BaseClient
	token   types.SecretString
	baseURL string
	logger  *slog.Logger
	newKey  func() string
}

// Compile-time interface compliance check.
var _ types.Pusher = (*LineClient)(nil)

// NewLineClient creates a LineClient with its own circuit breaker.
func NewLineClient(httpClient *http.Client, cfg LineClientConfig, opts ...BaseClientOption) *LineClient {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := NewBaseClient(
		httpClient,
		"line",
		types.ErrCodeUpstreamMessaging,
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		append([]BaseClientOption{WithLogger(logger)}, opts...)...,
	)
	return NewLineClientWithBase(base, cfg)
}

// NewLineClientWithBase creates a LineClient around a pre-configured
// BaseClient.
func NewLineClientWithBase(base *BaseClient, cfg LineClientConfig) *LineClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = lineAPIBase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LineClient{
		base:    base,
		token:   cfg.ChannelAccessToken,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
		newKey:  func() string { return uuid.NewString() },
	}
}

// Reply answers an inbound event identified by replyToken.
func (c *LineClient) Reply(ctx context.Context, replyToken string, messages ...types.Message) error {
	if replyToken == "" {
		return types.NewAppError(types.ErrCodeValidationMissingField, "reply token is required", nil)
	}
	wire, err := toLineMessages(messages)
	if err != nil {
		return err
	}
	return c.post(ctx, "Reply", "/v2/bot/message/reply", lineReplyRequest{
		ReplyToken: replyToken,
		Messages:   wire,
	}, "")
}

// Push sends unsolicited messages to a user, group or room ID. Each call
// carries a fresh X-Line-Retry-Key so LINE drops duplicates produced by
// BaseClient retries.
func (c *LineClient) Push(ctx context.Context, to string, messages ...types.Message) error {
	if to == "" {
		return types.NewAppError(types.ErrCodeValidationMissingField, "push destination is required", nil)
	}
	wire, err := toLineMessages(messages)
	if err != nil {
		return err
	}
	return c.post(ctx, "Push", "/v2/bot/message/push", linePushRequest{
		To:       to,
		Messages: wire,
	}, c.newKey())
}

// ReplyChannel binds a reply token to the client.
func (c *LineClient) ReplyChannel(replyToken string) types.ReplyChannel {
	return &lineReplyChannel{client: c, token: replyToken}
}

type lineReplyChannel struct {
	client *LineClient
	token  string
}

func (r *lineReplyChannel) Reply(ctx context.Context, messages ...types.Message) error {
	return r.client.Reply(ctx, r.token, messages...)
}

func (c *LineClient) post(ctx context.Context, operation, path string, payload any, retryKey string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode LINE request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create LINE request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token.Unmask())
	if retryKey != "" {
		req.Header.Set("X-Line-Retry-Key", retryKey)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 409 on a push means a previous attempt with the same retry key was
	// already accepted.
	if resp.StatusCode == http.StatusConflict && retryKey != "" {
		c.logger.InfoContext(ctx, "LINE push already accepted", "retry_key", retryKey)
		return nil
	}
	if resp.StatusCode >= 400 {
		bodyStr := readErrorBody(resp)
		c.logger.ErrorContext(ctx, "LINE API error",
			"operation", operation,
			"status_code", resp.StatusCode,
			"response_body", bodyStr,
		)
		return types.NewAppErrorWithDetails(
			types.ErrCodeUpstreamMessaging,
			fmt.Sprintf("LINE %s rejected (%d)", operation, resp.StatusCode),
			fmt.Errorf("LINE %s returned %d: %s", operation, resp.StatusCode, bodyStr),
			map[string]any{"status_code": resp.StatusCode},
		)
	}
	return nil
}

func toLineMessages(messages []types.Message) ([]lineMessage, error) {
	if len(messages) == 0 {
		return nil, types.NewAppError(types.ErrCodeValidationMissingField, "at least one message is required", nil)
	}
	if len(messages) > maxLineMessages {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidEvent,
			fmt.Sprintf("LINE accepts at most %d messages per request, got %d", maxLineMessages, len(messages)),
			nil,
		)
	}

	out := make([]lineMessage, 0, len(messages))
	for _, m := range messages {
		switch m.Kind {
		case types.MessageKindText:
			out = append(out, lineMessage{Type: "text", Text: m.Text})
		case types.MessageKindImage:
			preview := m.PreviewURL
			if preview == "" {
				preview = m.ImageURL
			}
			out = append(out, lineMessage{
				Type:               "image",
				OriginalContentURL: m.ImageURL,
				PreviewImageURL:    preview,
			})
		default:
			return nil, types.NewAppError(
				types.ErrCodeValidationInvalidEvent,
				fmt.Sprintf("unsupported message kind %q", m.Kind),
				nil,
			)
		}
	}
	return out, nil
}
