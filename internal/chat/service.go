// Package chat implements the live chat widget: the server-side proxy to an
// OpenAI-compatible chat completions API and the client-side conversation.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultEndpoint is the OpenRouter chat completions endpoint.
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	// DefaultModel is the model requested when none is configured.
	DefaultModel = "openai/gpt-3.5-turbo"

	historyLimit   = 5
	maxContentSize = 4000
	temperature    = 0.7
	maxTokens      = 150
)

// Roles used in chat histories.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyMessage is returned when the user message is blank.
var ErrEmptyMessage = errors.New("user message is missing")

// Message is one turn of a chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Replier produces an assistant reply to message given the prior history.
type Replier interface {
	Reply(ctx context.Context, message string, history []Message) (string, error)
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message *Message `json:"message"`
	} `json:"choices"`
}

// Service answers chat messages by calling the upstream completions API.
type Service struct {
	apiKey     string
	model      string
	persona    string
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewService creates a chat service. Empty endpoint and model fall back to
// the OpenRouter defaults.
func NewService(endpoint, apiKey, model, persona string, log *slog.Logger) *Service {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		apiKey:   apiKey,
		model:    model,
		persona:  persona,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// BuildMessages assembles the upstream prompt: the persona, up to the last
// five usable history entries and the user message. When the combined content
// is too large only the persona and the user message are kept.
func BuildMessages(persona, message string, history []Message) []Message {
	messages := []Message{{Role: RoleSystem, Content: persona}}

	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, m := range history {
		if m.Role == RoleSystem || m.Role == "" || m.Content == "" {
			continue
		}
		role := m.Role
		if role != RoleUser && role != RoleAssistant {
			role = RoleUser
		}
		if role == RoleUser && m.Content == message {
			continue
		}
		messages = append(messages, Message{Role: role, Content: m.Content})
	}
	messages = append(messages, Message{Role: RoleUser, Content: message})

	total := 0
	for _, m := range messages {
		total += len(m.Content)
	}
	if total > maxContentSize {
		messages = []Message{messages[0], messages[len(messages)-1]}
	}
	return messages
}

// Reply asks the upstream model for an answer to message.
func (s *Service) Reply(ctx context.Context, message string, history []Message) (reply string, err error) {
	if message == "" {
		return "", ErrEmptyMessage
	}
	if s.apiKey == "" {
		return "", errors.New("chat API key is not configured")
	}

	messages := BuildMessages(s.persona, message, history)
	s.log.Info("sending chat completion request", "messages", len(messages), "model", s.model)

	var reqBody []byte
	reqBody, err = json.Marshal(completionRequest{
		Model:       s.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		err = errors.Wrap(err, "failed to marshal request")
		return reply, err
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return reply, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	var resp *http.Response
	resp, err = s.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return reply, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return reply, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("API error: %d - %s", resp.StatusCode, truncate(string(respBody), 200))
		return reply, err
	}

	var completion completionResponse
	err = json.Unmarshal(respBody, &completion)
	if err != nil {
		err = errors.Wrap(err, "failed to parse response")
		return reply, err
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message == nil {
		err = errors.New("unexpected response format from chat API")
		return reply, err
	}

	reply = completion.Choices[0].Message.Content
	return reply, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
