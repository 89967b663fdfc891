package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bharat-ai/bharatai/internal/config"
)

// AssistantService calls the AI webhook that produces assistant replies.
// The webhook fronts an automation pipeline, so its response shape varies
// by flow; parsing is deliberately tolerant.
type AssistantService struct {
	webhookURL string
	secret     string
	httpClient *http.Client
}

func NewAssistantService(webhookURL, secret string) *AssistantService {
	return &AssistantService{
		webhookURL: webhookURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: config.WebhookTimeout},
	}
}

// HistoryMessage is one prior turn passed to the provider for context.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ImageInput is an attached image forwarded to the provider as a data URL.
type ImageInput struct {
	Base64   string
	MimeType string
	FileName string
	Size     int
}

type assistantPayload struct {
	Message             string           `json:"message"`
	ConversationHistory []HistoryMessage `json:"conversationHistory"`
	Timestamp           string           `json:"timestamp"`
	Image               string           `json:"image,omitempty"`
	FileName            string           `json:"fileName,omitempty"`
	FileSize            int              `json:"fileSize,omitempty"`
	FileType            string           `json:"fileType,omitempty"`
}

// Reply is a successful assistant response.
type Reply struct {
	Message string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	TotalTokens      int     `json:"totalTokens"`
	TotalCost        float64 `json:"totalCost"`
}

// Generate asks the provider for one assistant reply. History is
// windowed to the most recent entries before sending.
func (s *AssistantService) Generate(ctx context.Context, message string, history []HistoryMessage, image *ImageInput) (*Reply, error) {
	if len(history) > config.HistoryWindow {
		history = history[len(history)-config.HistoryWindow:]
	}

	payload := assistantPayload{
		Message:             message,
		ConversationHistory: history,
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
	}
	if image != nil {
		payload.Image = fmt.Sprintf("data:%s;base64,%s", image.MimeType, image.Base64)
		payload.FileName = image.FileName
		if payload.FileName == "" {
			payload.FileName = "image.jpg"
		}
		payload.FileSize = image.Size
		payload.FileType = image.MimeType
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set("Authorization", "Bearer "+s.secret)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("webhook error: %d - %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	text, usage, err := parseReply(data)
	if err != nil {
		return nil, err
	}
	return &Reply{Message: text, Usage: usage}, nil
}

// parseReply extracts the assistant text from any of the response shapes
// the pipeline has produced over time: a single-element array wrapper,
// {output}, {analysis}, {data:{analysis}}, {text}, {message}, {response},
// or a bare JSON string.
func parseReply(data []byte) (string, Usage, error) {
	var usage Usage

	var raw json.RawMessage = data
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		raw = arr[0]
	}

	var bare string
	if err := json.Unmarshal(raw, &bare); err == nil && bare != "" {
		return bare, usage, nil
	}

	var obj struct {
		Output   string `json:"output"`
		Analysis string `json:"analysis"`
		Data     struct {
			Analysis string `json:"analysis"`
		} `json:"data"`
		Text     string `json:"text"`
		Message  string `json:"message"`
		Response string `json:"response"`
		Usage    Usage  `json:"usage"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", usage, fmt.Errorf("parse webhook response: %w", err)
	}
	usage = obj.Usage

	for _, candidate := range []string{obj.Output, obj.Analysis, obj.Data.Analysis, obj.Text, obj.Message, obj.Response} {
		if candidate != "" {
			return candidate, usage, nil
		}
	}
	return "", usage, fmt.Errorf("unknown webhook response format")
}
