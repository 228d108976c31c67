// Package gmail implements the mail source on top of the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/caaosorio/expenses/pkg/api"
)

const user = "me"

// Source fetches raw notification emails from a Gmail mailbox. It
// satisfies api.MailSource.
type Source struct {
	service *gmail.Service
	logger  *slog.Logger
}

// New creates a Gmail source using an authenticated HTTP client.
func New(httpClient *http.Client, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = slog.Default()
	}

	service, err := gmail.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	return &Source{service: service, logger: logger}, nil
}

// FetchSince returns the raw messages received from the sender since the
// given instant, most recent first (the listing order Gmail already
// uses). A limit of 0 fetches everything in the window.
func (s *Source) FetchSince(ctx context.Context, from string, since time.Time, limit int) ([]api.Mail, error) {
	query := fmt.Sprintf("from:%s after:%d", from, since.Unix())
	logger := s.logger.With("from", from, "query", query)

	ids, err := s.listIDs(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	logger.Info("found candidate messages", "count", len(ids))

	mails := make([]api.Mail, 0, len(ids))
	for _, id := range ids {
		raw, err := s.fetchRaw(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching message %s: %w", id, err)
		}
		mails = append(mails, api.Mail{ID: id, Raw: raw})
	}

	return mails, nil
}

func (s *Source) listIDs(ctx context.Context, query string, limit int) ([]string, error) {
	var ids []string
	pageToken := ""

	for {
		var resp *gmail.ListMessagesResponse
		err := s.withRetry(func() error {
			call := s.service.Users.Messages.List(user).Q(query).Context(ctx)
			if pageToken != "" {
				call = call.PageToken(pageToken)
			}
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, msg := range resp.Messages {
			ids = append(ids, msg.Id)
			if limit > 0 && len(ids) >= limit {
				return ids, nil
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return ids, nil
		}
	}
}

func (s *Source) fetchRaw(ctx context.Context, id string) ([]byte, error) {
	var msg *gmail.Message
	err := s.withRetry(func() error {
		var err error
		msg, err = s.service.Users.Messages.Get(user, id).Format("raw").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	raw, err := base64.URLEncoding.DecodeString(msg.Raw)
	if err != nil {
		return nil, fmt.Errorf("decoding raw payload: %w", err)
	}
	return raw, nil
}

// withRetry retries rate-limited and transient server failures; anything
// else fails immediately.
func (s *Source) withRetry(fn func() error) error {
	return retry.Do(fn,
		retry.RetryIf(func(err error) bool {
			if retryable(err) {
				s.logger.Warn("retrying gmail call", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(2*time.Second),
		retry.LastErrorOnly(true),
	)
}

// retryable reports whether a Gmail API error is worth retrying: rate
// limiting and transient server failures only.
func retryable(err error) bool {
	apiErr, ok := err.(*googleapi.Error)
	if !ok {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
}
