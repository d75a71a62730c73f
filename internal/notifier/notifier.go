package notifier

import (
	"context"
	"fmt"
)

// Notifier delivers a human-readable report.
type Notifier interface {
	Send(text string) error
}

// StdoutNotifier prints reports to standard output, where the invoking
// scheduler (or a messaging relay) picks them up. Default delivery.
type StdoutNotifier struct{}

func NewStdoutNotifier() *StdoutNotifier { return &StdoutNotifier{} }

func (s *StdoutNotifier) Send(text string) error {
	fmt.Println(text)
	return nil
}

// RetryNotifier adapts a TelegramNotifier to the Notifier interface with
// bounded exponential-backoff retries per message.
type RetryNotifier struct {
	Telegram   *TelegramNotifier
	MaxRetries int
}

func NewRetryNotifier(t *TelegramNotifier, maxRetries int) *RetryNotifier {
	return &RetryNotifier{Telegram: t, MaxRetries: maxRetries}
}

func (r *RetryNotifier) Send(text string) error {
	return r.Telegram.SendWithRetry(context.Background(), text, r.MaxRetries)
}
