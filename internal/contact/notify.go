package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/Zachkp/webresume/internal/store"
)

// Notifier relays a stored message to the site owner.
type Notifier interface {
	Notify(ctx context.Context, msg store.Message) error
}

// Notifiers relays through every notifier in turn and reports all failures.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, msg store.Message) error {
	var failures []string
	for _, n := range ns {
		if err := n.Notify(ctx, msg); err != nil {
			failures = append(failures, err.Error())
		}
	}
	if len(failures) > 0 {
		return errors.Errorf("relay failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

// PlainText strips HTML markup, keeping the text content.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

const telegramAPI = "https://api.telegram.org"

// TelegramNotifier sends messages through the Telegram Bot API.
type TelegramNotifier struct {
	token      string
	chatID     string
	apiBase    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewTelegramNotifier creates a notifier for the bot token and chat.
func NewTelegramNotifier(token, chatID string, log *slog.Logger) *TelegramNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		apiBase: telegramAPI,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

// Notify posts a Markdown message and retries once as plain text, since
// Telegram rejects Markdown it cannot parse.
func (t *TelegramNotifier) Notify(ctx context.Context, msg store.Message) error {
	name := PlainText(msg.SenderName)
	email := PlainText(msg.SenderEmail)
	body := PlainText(msg.Message)

	rich := fmt.Sprintf("*New message from the site:*\n\n*From:* %s\n*Email:* %s\n*Message:* %s\n\n*Date:* %s",
		name, email, body, msg.CreatedAt.Format("2006-01-02 15:04:05"))
	err := t.send(ctx, rich, "Markdown")
	if err == nil {
		return nil
	}
	t.log.Warn("telegram markdown message rejected, retrying as plain text", "error", err)

	plain := fmt.Sprintf("New message from the site from %s (%s): %s", name, email, body)
	err = t.send(ctx, plain, "")
	if err != nil {
		return errors.Wrap(err, "telegram relay failed")
	}
	return nil
}

func (t *TelegramNotifier) send(ctx context.Context, text, parseMode string) error {
	payload := map[string]string{"chat_id": t.chatID, "text": text}
	if parseMode != "" {
		payload["parse_mode"] = parseMode
	}
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return errors.Wrap(err, "failed to create HTTP request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of the error.
		return errors.New("telegram request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	_ = json.Unmarshal(respBody, &result)
	if resp.StatusCode != http.StatusOK || !result.OK {
		return errors.Errorf("telegram API error %d: %s", resp.StatusCode, result.Description)
	}
	return nil
}

// SendMailFunc matches smtp.SendMail.
type SendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier e-mails messages to the site owner.
type SMTPNotifier struct {
	Host     string
	Port     string
	User     string
	Pass     string
	To       string
	SendMail SendMailFunc
	Log      *slog.Logger
}

// Notify sends the contact e-mail.
func (s *SMTPNotifier) Notify(_ context.Context, msg store.Message) error {
	if s.User == "" || s.Pass == "" {
		return errors.New("SMTP credentials not configured")
	}
	send := s.SendMail
	if send == nil {
		send = smtp.SendMail
	}

	name := PlainText(msg.SenderName)
	email := PlainText(msg.SenderEmail)

	subject := fmt.Sprintf("Portfolio Contact: %s", headerSafe(name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, name, email, PlainText(msg.Message))

	raw := []byte("To: " + s.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + s.User + "\r\n" +
		"Reply-To: " + headerSafe(email) + "\r\n" +
		"\r\n" +
		body + "\r\n")

	auth := smtp.PlainAuth("", s.User, s.Pass, s.Host)
	if err := send(s.Host+":"+s.Port, auth, s.User, []string{s.To}, raw); err != nil {
		return errors.Wrap(err, "failed to send contact e-mail")
	}

	if s.Log != nil {
		s.Log.Info("contact e-mail sent", "id", msg.ID)
	}
	return nil
}

// headerSafe keeps visitor input from injecting extra mail headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
