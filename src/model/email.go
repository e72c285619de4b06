package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var ErrEmailNotFound = errors.New("email not found")

// NullTime wraps sql.NullTime so absent times marshal as null.
type NullTime sql.NullTime

func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return nt.Time.MarshalJSON()
}

// Email is a stored bank notification.
type Email struct {
	ID         string    `json:"id"`
	MessageID  string    `json:"message_id"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	ReceivedAt NullTime  `json:"received_at"`
	Body       string    `json:"body"`
	TextBody   string    `json:"text_body"`
	CreatedAt  time.Time `json:"created_at"`
}

var htmlMarker = regexp.MustCompile(`(?i)<\s*(html|body|table|td|div|p|br|span)\b`)

// IsHTML reports whether Body carries markup.
func (e *Email) IsHTML() bool {
	return htmlMarker.MatchString(e.Body)
}

// EmailStore persists notifications in SQLite.
type EmailStore struct {
	DB *sql.DB
}

func NewEmailStore(db *sql.DB) *EmailStore {
	return &EmailStore{DB: db}
}

// Insert stores e. A message whose MessageID is already present is not stored
// again and inserted is false.
func (s *EmailStore) Insert(ctx context.Context, e *Email) (inserted bool, err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now().UTC()

	var messageID sql.NullString
	if e.MessageID != "" {
		messageID = sql.NullString{String: e.MessageID, Valid: true}
	}

	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO emails (id, message_id, sender, subject, received_at, body, text_body, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(message_id) DO NOTHING`,
		e.ID, messageID, e.From, e.Subject, sql.NullTime(e.ReceivedAt), e.Body, e.TextBody, e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert email: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

const emailColumns = `id, message_id, sender, subject, received_at, body, text_body, created_at`

func scanEmail(row interface{ Scan(...any) error }) (*Email, error) {
	var (
		e          Email
		messageID  sql.NullString
		receivedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &messageID, &e.From, &e.Subject, &receivedAt, &e.Body, &e.TextBody, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.MessageID = messageID.String
	e.ReceivedAt = NullTime(receivedAt)
	return &e, nil
}

// List returns up to limit emails, most recently received first.
func (s *EmailStore) List(ctx context.Context, limit int) ([]Email, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `SELECT `+emailColumns+` FROM emails
	ORDER BY COALESCE(received_at, created_at) DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	defer rows.Close()

	emails := []Email{}
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		emails = append(emails, *e)
	}
	return emails, rows.Err()
}

func (s *EmailStore) GetByID(ctx context.Context, id string) (*Email, error) {
	e, err := scanEmail(s.DB.QueryRowContext(ctx, `SELECT `+emailColumns+` FROM emails WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmailNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get email %s: %w", id, err)
	}
	return e, nil
}
