package messaging

import (
	"context"
	"encoding/json"
	"strings"
)

// Email is a single outgoing message. HTML is optional.
type Email struct {
	To      Recipients `json:"to"`
	Subject string     `json:"subject"`
	Text    string     `json:"text"`
	HTML    string     `json:"html,omitempty"`
}

// Sender delivers an Email
type Sender interface {
	Send(ctx context.Context, email Email) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, email Email) error

func (f SenderFunc) Send(ctx context.Context, email Email) error {
	return f(ctx, email)
}

// Recipients accepts either a single address or a list in JSON
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*r = splitAddresses(single)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}

	out := make([]string, 0, len(list))
	for _, addr := range list {
		out = append(out, splitAddresses(addr)...)
	}
	*r = out
	return nil
}

// String joins the addresses the way a To header lists them
func (r Recipients) String() string {
	return strings.Join(r, ", ")
}

func splitAddresses(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
