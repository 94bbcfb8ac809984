package processor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimdesk/internal/model"
)

type stubProcessor struct {
	calls int
	err   error
}

func (s *stubProcessor) Process(ctx context.Context, doc model.Document) (*model.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &model.Result{}, nil
}

func TestBreakerOpensAfterServiceFailures(t *testing.T) {
	stub := &stubProcessor{err: newServerError(503, "")}
	b := NewBreaker(stub, BreakerSettings{MinRequests: 2, FailureRatio: 0.5, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := b.Process(context.Background(), claimPDF())
		require.Error(t, err)
	}
	assert.True(t, b.Open())

	_, err := b.Process(context.Background(), claimPDF())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, "unavailable", Outcome(err))
}

func TestBreakerIgnoresRejectedDocuments(t *testing.T) {
	stub := &stubProcessor{err: newServerError(400, "Document quality is too low: 30%")}
	b := NewBreaker(stub, BreakerSettings{MinRequests: 1, FailureRatio: 0.1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := b.Process(context.Background(), claimPDF())
		require.EqualError(t, err, "Document quality is too low: 30%")
	}
	assert.False(t, b.Open())
	assert.Equal(t, 3, stub.calls)
}

func TestBreakerPassesResults(t *testing.T) {
	b := NewBreaker(&stubProcessor{}, BreakerSettings{MinRequests: 1, FailureRatio: 1, OpenTimeout: time.Minute})

	result, err := b.Process(context.Background(), claimPDF())
	require.NoError(t, err)
	assert.NotNil(t, result)
}

type recordingObserver struct {
	outcomes []string
}

func (r *recordingObserver) ObserveProcess(_ time.Duration, outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestInstrumentReportsOutcome(t *testing.T) {
	obs := &recordingObserver{}

	_, _ = Instrument(&stubProcessor{}, obs).Process(context.Background(), claimPDF())
	_, _ = Instrument(&stubProcessor{err: errors.New("dial tcp: connection refused")}, obs).Process(context.Background(), claimPDF())

	assert.Equal(t, []string{"ok", "request_failed"}, obs.outcomes)
}
