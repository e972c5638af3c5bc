package domain

import (
	"errors"
	"fmt"
	"slices"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

var (
	ErrInvalidStatus     = errors.New("order status is invalid")
	ErrInvalidTransition = errors.New("order status transition is not allowed")
)

// forwardTransitions holds the single legal forward step for every non-terminal status.
var forwardTransitions = map[Status]Status{
	StatusPending:    StatusProcessing,
	StatusProcessing: StatusShipped,
	StatusShipped:    StatusDelivered,
}

var cancellableStatuses = []Status{StatusPending, StatusProcessing}

// ParseStatus accepts the transport label for a status.
func ParseStatus(raw string) (Status, error) {
	status := Status(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// IsValid reports whether the status is one of the known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Next returns the forward successor of s, if any.
func (s Status) Next() (Status, bool) {
	next, ok := forwardTransitions[s]
	return next, ok
}

// IsTerminal is true for DELIVERED and CANCELLED.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether an order in status s may still be cancelled.
func (s Status) Cancellable() bool {
	return slices.Contains(cancellableStatuses, s)
}

// CheckTransition validates a move from s to target against the lifecycle graph.
func (s Status) CheckTransition(target Status) error {
	if !target.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}
	if target == StatusCancelled {
		if s.Cancellable() {
			return nil
		}
		return fmt.Errorf("%w: cannot cancel from %s", ErrInvalidTransition, s)
	}
	next, ok := s.Next()
	if !ok || next != target {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}
	return nil
}
