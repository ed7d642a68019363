package market

import (
	"context"
	"errors"
)

var (
	// ErrEmptyID is returned when a link carried no digits.
	ErrEmptyID = errors.New("empty item id")
	// ErrRateLimited is returned when the upstream kept answering 429 past the retry cap.
	ErrRateLimited = errors.New("upstream rate limit not lifted")
	// ErrUnexpectedStatus is returned for any non-200, non-429 response.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	// ErrUnknownState is returned when item_state is neither paid nor active.
	ErrUnknownState = errors.New("unknown item state")
	// ErrMalformedBody is returned when a 200 body cannot be read as an item.
	ErrMalformedBody = errors.New("malformed item body")
)

// failureReason maps a lookup error to a metrics label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyID):
		return "empty_id"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, ErrUnknownState):
		return "unknown_state"
	case errors.Is(err, ErrMalformedBody):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "transport"
	}
}
