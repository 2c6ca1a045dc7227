package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// Message is a contact-form submission.
type Message struct {
	ID          int64     `json:"id"`
	SenderName  string    `json:"sender_name"`
	SenderEmail string    `json:"sender_email"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	IsRead      bool      `json:"is_read"`
}

const messageSelect = `SELECT id, sender_name, sender_email, message, created_at, is_read FROM messages`

func scanMessage(row scanner) (m Message, err error) {
	err = row.Scan(&m.ID, &m.SenderName, &m.SenderEmail, &m.Message, &m.CreatedAt, &m.IsRead)
	return m, err
}

// CreateMessage stores an unread message and returns it.
func (s *Store) CreateMessage(ctx context.Context, name, email, body string) (m Message, err error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (sender_name, sender_email, message, created_at, is_read)
		VALUES (?, ?, ?, ?, 0)
	`, name, email, body, now)
	if err != nil {
		return m, errors.Wrap(err, "failed to store message")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return m, errors.Wrap(err, "failed to read message id")
	}
	return s.GetMessage(ctx, id)
}

// GetMessage returns one message.
func (s *Store) GetMessage(ctx context.Context, id int64) (m Message, err error) {
	m, err = scanMessage(s.db.QueryRowContext(ctx, messageSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return m, ErrNotFound
	}
	if err != nil {
		return m, errors.Wrapf(err, "failed to load message %d", id)
	}
	return m, nil
}

// ListMessages returns up to limit messages, newest first. limit <= 0 means all.
func (s *Store) ListMessages(ctx context.Context, limit int) ([]Message, error) {
	query := messageSelect + ` ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	messages := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkMessageRead flags a message as read.
func (s *Store) MarkMessageRead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "failed to mark message %d read", id)
	}
	return affectedOne(res)
}

// DeleteMessage removes a message.
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "failed to delete message %d", id)
	}
	return affectedOne(res)
}
