package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Stager creates Gmail drafts carrying rendered quotes. Drafts are never
// sent automatically; a human reviews and sends from the mailbox.
type Stager struct {
	service *gmail.Service
	from    string
}

// NewStager creates a Stager authenticated by the given token source.
// from is the sender address shown on staged drafts.
func NewStager(ctx context.Context, ts oauth2.TokenSource, from string) (*Stager, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &Stager{service: service, from: from}, nil
}

// StageDraft builds a MIME message with the attachment and creates a Gmail
// draft in the authenticated mailbox. Returns the draft ID. Credential
// problems surface as ErrAuthExpired.
func (s *Stager) StageDraft(ctx context.Context, to, subject, body, attachmentPath string) (string, error) {
	raw, err := BuildMessage(s.from, to, subject, body, attachmentPath)
	if err != nil {
		return "", &StagingError{Message: "failed to build message", Cause: err}
	}

	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw: base64.RawURLEncoding.EncodeToString(raw),
		},
	}

	created, err := s.service.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return "", classifyError(err)
	}
	return created.Id, nil
}
