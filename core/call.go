package orchestration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/koscakluka/ema-helpline/core/events"
)

// call runs the workers of one session and coordinates their shutdown.
type call struct {
	session *CallSession

	responder    Responder
	textToSpeech TextToSpeech
	emitEvent    eventEmitter
	gracePeriod  time.Duration

	utterances chan string
	closeCh    chan struct{}
	closeOnce  sync.Once
}

func newCall(o *Orchestrator, session *CallSession) *call {
	return &call{
		session:      session,
		responder:    o.responder,
		textToSpeech: o.textToSpeech,
		emitEvent:    newEventEmitter(o.eventHandlers),
		gracePeriod:  o.closeGracePeriod,
		utterances:   make(chan string, o.queueCapacity),
		closeCh:      make(chan struct{}),
	}
}

func (c *call) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Replies outlive the call context by up to the grace period.
	replyCtx, cancelReplies := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelReplies()

	var (
		workerErrs   []error
		workerErrsMu sync.Mutex
	)
	addWorkerErr := func(err error) {
		workerErrsMu.Lock()
		defer workerErrsMu.Unlock()
		workerErrs = append(workerErrs, err)
	}

	run := func(ctx context.Context, name string, f func(context.Context) error) {
		defer c.beginClose()
		if err := panicSafeNamedWorker(name, f)(ctx); err != nil {
			addWorkerErr(err)
		}
	}

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		run(ctx, "frame relay", c.relayFrames)
	}()
	go func() {
		defer wg.Done()
		run(ctx, "transcript reader", c.readTranscripts)
	}()

	replyDone := make(chan struct{})
	go func() {
		defer close(replyDone)
		run(replyCtx, "reply", c.processUtterances)
	}()

	select {
	case <-c.closeCh:
	case <-ctx.Done():
		c.beginClose()
	}
	cancel()

	select {
	case <-replyDone:
	case <-time.After(c.gracePeriod):
		logger.WarnContext(ctx, "abandoning in-flight reply",
			"call_id", c.session.ID,
			"state", c.session.State().String())
		cancelReplies()
	}

	releaseErr := c.session.release()
	<-replyDone
	wg.Wait()
	c.session.setClosed()

	err := errors.Join(append(workerErrs, releaseErr)...)
	c.emitEvent(events.NewCallEnded(c.session.ID, c.session.StreamSID(), c.session.Turns(), err))
	return err
}

func (c *call) beginClose() {
	c.closeOnce.Do(func() { close(c.closeCh) })
}

func (c *call) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

// enqueue blocks while the queue is full. It reports false once the call is
// closing.
func (c *call) enqueue(utterance string) bool {
	if c.isClosed() {
		return false
	}

	select {
	case <-c.closeCh:
		return false
	case c.utterances <- utterance:
		return true
	}
}

func (c *call) dropQueued() {
	for {
		select {
		case utterance := <-c.utterances:
			c.emitEvent(events.NewTurnCancelled(c.session.ID, utterance))
		default:
			return
		}
	}
}
