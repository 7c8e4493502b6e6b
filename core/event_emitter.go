package orchestration

import "github.com/koscakluka/ema-helpline/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newEventEmitter(handlers []events.Handler) eventEmitter {
	if len(handlers) == 0 {
		return noopEventEmitter
	}

	return func(event events.Event) {
		for _, handler := range handlers {
			handler(event)
		}
	}
}
