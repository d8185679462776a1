package messaging

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// ConsoleSender prints messages instead of sending them. Used when no SMTP
// relay is configured.
type ConsoleSender struct {
	mu  sync.Mutex
	out io.Writer
}

var _ Sender = (*ConsoleSender)(nil)

// NewConsoleSender writes to out, or stdout when out is nil
func NewConsoleSender(out io.Writer) *ConsoleSender {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleSender{out: out}
}

func (s *ConsoleSender) Send(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgYellow)

	s.mu.Lock()
	defer s.mu.Unlock()

	header.Fprintln(s.out, "──── email ────")
	label.Fprint(s.out, "To:      ")
	io.WriteString(s.out, email.To.String()+"\n")
	label.Fprint(s.out, "Subject: ")
	io.WriteString(s.out, email.Subject+"\n\n")
	io.WriteString(s.out, email.Text+"\n")
	header.Fprintln(s.out, "───────────────")
	return nil
}
