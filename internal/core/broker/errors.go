package broker

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures surfaced to the user.
type Kind string

const (
	KindTransport  Kind = "transport"
	KindValidation Kind = "validation"
	KindCancelled  Kind = "cancelled"
)

var (
	ErrQueueNameRequired = errors.New("queue name is required")
	ErrUnknownTransport  = errors.New("unknown transport")
	ErrClientClosed      = errors.New("client is closed")
)

// OpError is an operation failure tagged with its Kind. It renders as "{kind}: {detail}".
type OpError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Transport tags err as a transport failure of op. Errors that are already classified
// keep their kind, and context cancellation is tagged as cancelled.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return &OpError{Kind: KindCancelled, Op: op, Err: err}
	}
	return &OpError{Kind: KindTransport, Op: op, Err: err}
}

// Validation tags err as a validation failure of op.
func Validation(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: KindValidation, Op: op, Err: err}
}

// KindOf returns the kind of err, defaulting to transport for unclassified errors.
func KindOf(err error) Kind {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindTransport
}

// Classify renders err as user-facing text. It returns "" for nil.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	return fmt.Sprintf("%s: %v", KindOf(err), err)
}

// ValidateQueueName rejects missing or blank queue names before any network call.
func ValidateQueueName(name string) error {
	if strings.TrimSpace(name) == "" {
		return Validation("", ErrQueueNameRequired)
	}
	return nil
}
