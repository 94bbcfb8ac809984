package processor

import (
	"context"
	"time"

	"github.com/claimdesk/internal/model"
)

// Observer records the duration and outcome of processing calls.
type Observer interface {
	ObserveProcess(duration time.Duration, outcome string)
}

type instrumented struct {
	next     Processor
	observer Observer
}

// Instrument reports every call made through p to observer.
func Instrument(p Processor, observer Observer) Processor {
	return &instrumented{next: p, observer: observer}
}

func (i *instrumented) Process(ctx context.Context, doc model.Document) (*model.Result, error) {
	start := time.Now()
	result, err := i.next.Process(ctx, doc)
	i.observer.ObserveProcess(time.Since(start), Outcome(err))
	return result, err
}
