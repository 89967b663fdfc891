package chatui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bharat-ai/bharatai/internal/domain"
)

// Client talks to the chat API. One instance is shared by the whole UI.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// APIError is a non-2xx response with its decoded {error} body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// ImagePayload is a locally-held image converted to a transferable form.
type ImagePayload struct {
	Data string `json:"data"` // base64, no data-URL prefix
	Type string `json:"type"` // mime type
}

type SendRequest struct {
	Message           string        `json:"message"`
	ChatID            string        `json:"chatId,omitempty"`
	ImageData         *ImagePayload `json:"imageData,omitempty"`
	GeneratedImageURL string        `json:"generatedImageUrl,omitempty"`
}

// TurnResponse is the confirmed result of one turn.
type TurnResponse struct {
	ChatID           string         `json:"chatId"`
	IsNewChat        bool           `json:"isNewChat"`
	UserMessage      domain.Message `json:"userMessage"`
	AssistantMessage domain.Message `json:"assistantMessage"`
	ChatTitle        string         `json:"chatTitle"`
}

func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*TurnResponse, error) {
	var resp TurnResponse
	if err := c.do(ctx, http.MethodPost, "/api/chats", req, &resp); err != nil {
		return nil, err
	}
	resp.UserMessage.Normalize()
	resp.AssistantMessage.Normalize()
	return &resp, nil
}

func (c *Client) ListChats(ctx context.Context) ([]domain.ChatSummary, error) {
	var resp struct {
		Chats []domain.ChatSummary `json:"chats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Chats, nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	var resp struct {
		Chat domain.Chat `json:"chat"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID), nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Chat.Messages {
		resp.Chat.Messages[i].Normalize()
	}
	return &resp.Chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.do(ctx, http.MethodDelete, "/api/chats?chatId="+url.QueryEscape(chatID), nil, nil)
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Size   string `json:"size"`
}

func (c *Client) GenerateImage(ctx context.Context, req GenerateImageRequest) (*domain.GeneratedImage, error) {
	var resp struct {
		Image domain.GeneratedImage `json:"image"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/generate-image", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Image, nil
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, name, bio string) (*domain.User, error) {
	body := map[string]string{"name": name, "bio": bio}
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/user/profile", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) Subscribe(ctx context.Context, sub domain.PushSubscription) error {
	body := map[string]any{
		"subscription": map[string]any{
			"endpoint": sub.Endpoint,
			"keys": map[string]string{
				"p256dh": sub.P256dh,
				"auth":   sub.Auth,
			},
		},
	}
	return c.do(ctx, http.MethodPost, "/api/notifications/subscribe", body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
