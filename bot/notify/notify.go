// Package notify forwards order summaries to the operator chat through the
// Bot API sendMessage method.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tg "github.com/m3rciful/themebot/core/telegram"
)

// DefaultAPIBase is the public Bot API endpoint.
const DefaultAPIBase = "https://api.telegram.org"

// Prefix is prepended to every notification.
const Prefix = "🔔 "

// ErrDelivery marks failed notifications.
var ErrDelivery = errors.New("notification delivery failed")

// DeliveryError carries the HTTP status (0 when no response arrived).
type DeliveryError struct {
	Status int
	Err    error
}

func (e *DeliveryError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("notify: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("notify: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

func (e *DeliveryError) Is(target error) bool { return target == ErrDelivery }

func (e *DeliveryError) Code() string { return "NOTIFY_DELIVERY" }

// Options configures a Notifier.
type Options struct {
	Token   string
	ChatID  int64
	APIBase string
	Timeout time.Duration
	// ResponseTimeout bounds the wait for response headers; zero keeps the
	// client default.
	ResponseTimeout time.Duration
	Client          *http.Client
}

// Notifier posts messages to a fixed chat.
type Notifier struct {
	endpoint string
	chatID   int64
	client   *http.Client
}

// New validates opts and builds a notifier.
func New(opts Options) (*Notifier, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("notify: empty bot token")
	}
	if opts.ChatID == 0 {
		return nil, errors.New("notify: operator chat id is not set")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.APIBase), "/")
	if base == "" {
		base = DefaultAPIBase
	}
	client := opts.Client
	if client == nil {
		// A timed-out sendMessage may already be delivered, so it is never resent.
		client = tg.BuildHTTPClientWith(tg.HTTPClientOptions{
			Timeout:         opts.Timeout,
			ResponseTimeout: opts.ResponseTimeout,
			NoRetry:         true,
		})
	}
	return &Notifier{
		endpoint: fmt.Sprintf("%s/bot%s/sendMessage", base, opts.Token),
		chatID:   opts.ChatID,
		client:   client,
	}, nil
}

type sendMessage struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Notify sends text as HTML. Any non-200 answer is a *DeliveryError.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessage{ChatID: n.chatID, Text: Prefix + text, ParseMode: "HTML"})
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return &DeliveryError{Err: redact(err, n.endpoint)}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		var api apiResponse
		msg := resp.Status
		if json.Unmarshal(raw, &api) == nil && api.Description != "" {
			msg = api.Description
		}
		return &DeliveryError{Status: resp.StatusCode, Err: errors.New(msg)}
	}
	return nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// redact keeps the bot token out of transport errors.
func redact(err error, endpoint string) error {
	msg := err.Error()
	if !strings.Contains(msg, endpoint) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(msg, endpoint, "<sendMessage>"), err: err}
}
