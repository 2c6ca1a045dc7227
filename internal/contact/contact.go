// Package contact accepts visitor messages, stores them and relays them to
// the site owner over Telegram and e-mail.
package contact

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/Zachkp/webresume/internal/store"
)

// Submission is a contact form post. The JSON names follow the REST API and
// the form names follow the site's HTML form.
type Submission struct {
	Name    string `json:"sender_name" form:"fullName"`
	Email   string `json:"sender_email" form:"email"`
	Message string `json:"message" form:"message"`
}

// MissingFieldsError lists the required fields a submission left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Validate trims the submission and reports blank required fields.
func (s *Submission) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Message = strings.TrimSpace(s.Message)

	var missing []string
	if s.Name == "" {
		missing = append(missing, "sender_name")
	}
	if s.Email == "" {
		missing = append(missing, "sender_email")
	}
	if s.Message == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// MessageStore persists submissions.
type MessageStore interface {
	CreateMessage(ctx context.Context, name, email, body string) (store.Message, error)
}

// Service stores submissions and relays them.
type Service struct {
	store    MessageStore
	notifier Notifier
	log      *slog.Logger
}

// NewService creates a contact service. A nil notifier disables relaying.
func NewService(s MessageStore, n Notifier, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	if n == nil {
		n = Notifiers{}
	}
	return &Service{store: s, notifier: n, log: log}
}

// Submit validates and stores the submission, then relays it. A relay
// failure is logged and does not fail the submission: the message is safe in
// the database either way.
func (s *Service) Submit(ctx context.Context, sub Submission) (msg store.Message, err error) {
	err = sub.Validate()
	if err != nil {
		return msg, err
	}

	msg, err = s.store.CreateMessage(ctx, sub.Name, sub.Email, sub.Message)
	if err != nil {
		err = errors.Wrap(err, "failed to save message")
		return msg, err
	}

	if relayErr := s.notifier.Notify(ctx, msg); relayErr != nil {
		s.log.Warn("failed to relay contact message", "id", msg.ID, "error", relayErr)
	} else {
		s.log.Info("contact message received", "id", msg.ID)
	}
	return msg, nil
}
