package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/extractos/backend/src/extraction"
	"github.com/username/extractos/backend/src/logger"
	"github.com/username/extractos/backend/src/model"
	"github.com/username/extractos/backend/src/models"
	"github.com/username/extractos/backend/src/security/validation"
)

const (
	ckParsedEmail = "parsed_email_%s"

	operationSuffixLength = 6
	unknownSender         = "Unknown"
)

// EmailInput is one notification pushed in by an external fetcher.
type EmailInput struct {
	MessageID  string     `json:"message_id"`
	From       string     `json:"from"`
	Subject    string     `json:"subject"`
	ReceivedAt *time.Time `json:"received_at"`
	Body       string     `json:"body"`
	TextBody   string     `json:"text_body"`
}

// ParsedFields are the extracted fields of a notification plus the short
// operation number shown in listings.
type ParsedFields struct {
	models.ExtractedFields
	OperationShort string `json:"operation_short"`
}

// ParsedEmail is a stored email with its extracted fields.
type ParsedEmail struct {
	model.Email
	FromName string       `json:"from_name"`
	Parsed   ParsedFields `json:"parsed"`
}

type emailServiceImpl struct {
	emails      EmailRepository
	parsedCache *cache.Cache
}

func NewEmailService(emails EmailRepository, parsedCache *cache.Cache) EmailService {
	return &emailServiceImpl{emails: emails, parsedCache: parsedCache}
}

// Ingest stores in. created is false when an email with the same message id
// was already stored; the returned email is then the submitted one, unsaved.
func (s *emailServiceImpl) Ingest(ctx context.Context, in EmailInput) (*model.Email, bool, error) {
	if strings.TrimSpace(in.Body) == "" && strings.TrimSpace(in.TextBody) == "" {
		return nil, false, fmt.Errorf("%w: Body or TextBody is required", validation.ErrValidationFailed)
	}
	e := &model.Email{
		MessageID: strings.TrimSpace(in.MessageID),
		From:      validation.StripUnprintable(strings.TrimSpace(in.From)), // "Name <addr>" is not markup
		Subject:   validation.SanitizeText(validation.StripUnprintable(strings.TrimSpace(in.Subject))),
		Body:      in.Body,
		TextBody:  in.TextBody,
	}
	if in.ReceivedAt != nil {
		e.ReceivedAt = model.NullTime{Time: in.ReceivedAt.UTC(), Valid: true}
	}

	created, err := s.emails.Insert(ctx, e)
	if err != nil {
		return nil, false, fmt.Errorf("failed to store email: %w", err)
	}
	logger.FromContext(ctx).Info("Email ingested", "emailID", e.ID, "messageID", e.MessageID, "created", created)
	return e, created, nil
}

// List returns the most recent emails with their fields extracted.
func (s *emailServiceImpl) List(ctx context.Context, limit int) ([]ParsedEmail, error) {
	emails, err := s.emails.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ParsedEmail, 0, len(emails))
	for _, e := range emails {
		out = append(out, ParsedEmail{
			Email:    e,
			FromName: senderFirstWord(e.From),
			Parsed:   s.parsedFor(&e),
		})
	}
	return out, nil
}

func (s *emailServiceImpl) Parse(body string, isHTML bool) ParsedFields {
	f := extraction.ParseEmail(body, isHTML)
	return ParsedFields{ExtractedFields: f, OperationShort: operationSuffix(f.OperationNumber)}
}

// parsedFor caches by email id; stored emails are never modified.
func (s *emailServiceImpl) parsedFor(e *model.Email) ParsedFields {
	key := fmt.Sprintf(ckParsedEmail, e.ID)
	if cached, found := s.parsedCache.Get(key); found {
		return cached.(ParsedFields)
	}
	body := e.Body
	isHTML := e.IsHTML()
	// Text-only notifications arrive with an empty Body.
	if !isHTML && strings.TrimSpace(e.TextBody) != "" {
		body = e.TextBody
	}
	parsed := s.Parse(body, isHTML)
	s.parsedCache.Set(key, parsed, cache.DefaultExpiration)
	return parsed
}

func senderFirstWord(from string) string {
	fields := strings.Fields(from)
	if len(fields) == 0 {
		return unknownSender
	}
	return fields[0]
}

func operationSuffix(op string) string {
	if op == models.Sentinel || len(op) <= operationSuffixLength {
		return op
	}
	return op[len(op)-operationSuffixLength:]
}
