package incident

import (
	"context"
	"errors"
	"sync"

	"github.com/koscakluka/ema-helpline/core/events"
)

// Sink receives the report of a finished call. verification is nil when
// the second opinion could not be obtained.
type Sink func(streamSID string, report Report, verification *Verification)

// Reporter extracts a report in the background for every call that ends
// with at least one caller turn.
type Reporter struct {
	extractor *Extractor
	sink      Sink

	ctx context.Context
	wg  sync.WaitGroup
}

func NewReporter(ctx context.Context, extractor *Extractor, sink Sink) *Reporter {
	return &Reporter{extractor: extractor, sink: sink, ctx: context.WithoutCancel(ctx)}
}

// HandleEvent satisfies events.Handler.
func (r *Reporter) HandleEvent(event events.Event) {
	ended, ok := event.(events.CallEnded)
	if !ok {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.report(ended)
	}()
}

func (r *Reporter) report(ended events.CallEnded) {
	report, err := r.extractor.Extract(r.ctx, ended.Turns)
	if errors.Is(err, ErrNoCallerTurns) {
		return
	} else if err != nil {
		logger.ErrorContext(r.ctx, "failed to extract incident report",
			"call_id", ended.CallID(),
			"error", err)
		return
	}

	verification, err := r.extractor.Verify(r.ctx, *report, ended.Turns)
	if err != nil {
		logger.WarnContext(r.ctx, "failed to verify incident report",
			"call_id", ended.CallID(),
			"error", err)
		verification = nil
	}
	r.sink(ended.StreamSID, *report, verification)
}

// Wait blocks until every started extraction has finished.
func (r *Reporter) Wait() {
	r.wg.Wait()
}
