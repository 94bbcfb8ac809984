package processor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/claimdesk/internal/model"
)

type BreakerSettings struct {
	MinRequests  uint32
	FailureRatio float64
	OpenTimeout  time.Duration
	// HalfOpenMaxCalls defaults to one probe call.
	HalfOpenMaxCalls uint32
}

// Breaker fails fast with ErrUnavailable once the processing service keeps
// failing. Rejected documents (4xx) and cancelled requests do not count as
// failures.
type Breaker struct {
	next Processor
	cb   *gobreaker.CircuitBreaker[*model.Result]
}

func NewBreaker(next Processor, s BreakerSettings) *Breaker {
	if s.HalfOpenMaxCalls == 0 {
		s.HalfOpenMaxCalls = 1
	}
	settings := gobreaker.Settings{
		Name:        "processor",
		MaxRequests: s.HalfOpenMaxCalls,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}
	return &Breaker{next: next, cb: gobreaker.NewCircuitBreaker[*model.Result](settings)}
}

func (b *Breaker) Process(ctx context.Context, doc model.Document) (*model.Result, error) {
	result, err := b.cb.Execute(func() (*model.Result, error) {
		return b.next.Process(ctx, doc)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return result, err
}

// Open reports whether calls are currently being refused.
func (b *Breaker) Open() bool {
	return b.cb.State() == gobreaker.StateOpen
}

func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		return !serverErr.Temporary()
	}
	return false
}
