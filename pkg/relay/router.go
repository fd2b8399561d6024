package relay

import (
	"errors"

	"github.com/webtools/peerlink/pkg/logger"
)

// Router delivers signal messages from one role of a session to the other.
type Router struct {
	registry *Registry
	log      *logger.Logger
}

func NewRouter(registry *Registry, log *logger.Logger) *Router {
	if log == nil {
		log = registry.log
	}
	return &Router{registry: registry, log: log}
}

// Route puts msg on the queue of the role opposite to sender.
//
// Anyone not declared host is taken for the guest, so a missing or unknown
// sender role lands the message in the host queue. A full destination queue
// returns ErrBackpressure and the message is not kept.
func (rt *Router) Route(code string, sender Role, msg SignalMessage) error {
	m := rt.registry.metrics
	if err := msg.Validate(); err != nil {
		m.signalRejected("malformed")
		return err
	}
	s, err := rt.registry.Lookup(code)
	if err != nil {
		m.signalRejected("not_found")
		return err
	}
	to := Host
	if sender == Host {
		to = Guest
	}
	switch err = s.enqueue(to, msg); {
	case err == nil:
		m.signalRouted()
		rt.log.Debug().Str(logger.CodeField, s.code).Str("to", to.String()).Str("type", msg.Type).Msg("signal routed")
	case errors.Is(err, ErrBackpressure):
		m.signalRejected("backpressure")
		rt.log.Warn().Str(logger.CodeField, s.code).Str("to", to.String()).Str("type", msg.Type).Msg("signal queue is full")
	default:
		m.signalRejected("not_found")
	}
	return err
}
