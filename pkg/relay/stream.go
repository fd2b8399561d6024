package relay

import (
	"context"
	"sync"
	"time"

	"github.com/webtools/peerlink/pkg/logger"
)

// Sink writes frames to one connected client.
type Sink interface {
	Send(msg SignalMessage) error
	// Ping keeps an idle connection open and surfaces dead ones.
	Ping() error
}

// Binding ties one client stream to a role of a session.
type Binding struct {
	registry *Registry
	session  *Session
	role     Role
	once     sync.Once
}

func (b *Binding) Code() string { return b.session.code }
func (b *Binding) Role() Role   { return b.role }

// Messages yields queued messages for the bound role in FIFO order.
// The channel is closed when the session is destroyed.
func (b *Binding) Messages() <-chan SignalMessage { return b.session.queue(b.role) }

// Connected is the acknowledgement frame sent first on every stream.
func (b *Binding) Connected() SignalMessage {
	return notice(TypeConnected, connectedInfo{Code: b.session.code, Role: b.role})
}

// Detach runs the disconnect transition once: the presence flag drops, the
// other side gets peer_left and the session goes away when it is empty.
// On a destroyed session it does nothing.
func (b *Binding) Detach() {
	b.once.Do(func() {
		if b.session.detach(b.role) {
			b.registry.destroyIfEmpty(b.session)
		}
		b.registry.log.Debug().Str(logger.CodeField, b.session.code).Str(logger.RoleField, b.role.String()).Msg("stream detached")
	})
}

// Pump sends the acknowledgement and then every queued message to sink until
// ctx is done, the session is destroyed or the sink fails. The binding is
// detached on return. A destroyed session yields ErrSessionClosed.
func (b *Binding) Pump(ctx context.Context, sink Sink, keepalive time.Duration) error {
	defer b.Detach()

	if err := sink.Send(b.Connected()); err != nil {
		return err
	}

	var tick <-chan time.Time
	if keepalive > 0 {
		ticker := time.NewTicker(keepalive)
		defer ticker.Stop()
		tick = ticker.C
	}

	messages := b.Messages()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return ErrSessionClosed
			}
			if err := sink.Send(msg); err != nil {
				return err
			}
		case <-tick:
			if err := sink.Ping(); err != nil {
				return err
			}
		}
	}
}
