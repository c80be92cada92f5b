// Package delivery sends snapshot pages to the catalog service.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Deliverer hands one page payload to a downstream consumer.
type Deliverer interface {
	Deliver(ctx context.Context, payload any) error
}

// Error is a failed delivery. Status is the HTTP status when the service
// answered, zero for transport failures.
type Error struct {
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("delivery failed: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrStatus is wrapped by Error for non-2xx answers.
var ErrStatus = errors.New("unexpected status")

// Noop discards every payload.
type Noop struct{}

func (Noop) Deliver(context.Context, any) error { return nil }

// LogOnly records a summary of each payload instead of sending it.
type LogOnly struct {
	Logger logrus.FieldLogger
}

// Summary is implemented by payloads that can describe themselves for logs.
type Summary interface {
	LogFields() logrus.Fields
}

func (l LogOnly) Deliver(_ context.Context, payload any) error {
	if l.Logger == nil {
		return nil
	}
	fields := logrus.Fields{"payload": fmt.Sprintf("%T", payload)}
	if s, ok := payload.(Summary); ok {
		for k, v := range s.LogFields() {
			fields[k] = v
		}
	}
	l.Logger.WithFields(fields).Info("delivery skipped, payload logged")
	return nil
}

// Mode selects a Deliverer.
type Mode string

const (
	ModeOff  Mode = "off"
	ModeLog  Mode = "log"
	ModeHTTP Mode = "http"
)

// Options configures New.
type Options struct {
	Mode    Mode
	BaseURL string
	Path    string
	Timeout int // milliseconds
	Logger  logrus.FieldLogger
}

// New builds the Deliverer for opts.Mode. An empty mode means log.
func New(opts Options) (Deliverer, error) {
	switch opts.Mode {
	case ModeOff:
		return Noop{}, nil
	case ModeLog, "":
		return LogOnly{Logger: opts.Logger}, nil
	case ModeHTTP:
		return NewHTTPClient(opts.BaseURL, opts.Path, msDuration(opts.Timeout))
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", opts.Mode)
	}
}
