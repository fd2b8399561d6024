package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/webtools/peerlink/pkg/com"
	"github.com/webtools/peerlink/pkg/logger"
	"github.com/webtools/peerlink/pkg/network/websocket"
	"github.com/webtools/peerlink/pkg/relay"
)

type wsSink struct {
	conn *websocket.Conn
}

func (s wsSink) Send(msg relay.SignalMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.conn.Write(data)
}

func (s wsSink) Ping() error { return s.conn.Ping() }

// ws streams the queue of one role over a websocket.
// Frames coming from the client are routed with the role the socket is
// bound to, so one socket carries both directions.
func (h *Handler) ws(w http.ResponseWriter, r *http.Request) {
	role, err := queryRole(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !websocket.IsUpgrade(r) {
		writeError(w, errNotUpgrade)
		return
	}
	if _, ok := w.(http.Hijacker); !ok {
		writeError(w, ErrStreamingUnsupported)
		return
	}

	b, err := h.registry.Attach(r.PathValue("code"), role)
	if err != nil {
		writeError(w, err)
		return
	}
	log := h.log.ForSession(b.Code(), role.String(), com.NewConnId().Short())

	conn, err := websocket.Upgrade(w, r, h.conf.MaxMessageSize)
	if err != nil {
		// the upgrader has already replied
		b.Detach()
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer h.registry.Metrics().TrackStream("ws")()

	// the request context isn't canceled for hijacked connections,
	// the read pump tells when the client is gone
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sink := wsSink{conn: conn}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.readPump(sink, b, log)
	}()

	log.Debug().Msg("ws stream open")
	err = b.Pump(ctx, sink, websocket.PingTime)
	if errors.Is(err, relay.ErrSessionClosed) {
		_ = conn.CloseWith(websocket.CloseNormal, relay.ErrSessionClosed.Error())
	}
	_ = conn.Close()
	<-done
	log.Debug().Err(err).Msg("ws stream closed")
}

// readPump routes client frames until the connection breaks.
// Routing failures are reported back on the socket and don't end it.
func (h *Handler) readPump(sink wsSink, b *relay.Binding, log *logger.Logger) {
	for {
		data, err := sink.conn.Read()
		if err != nil {
			if websocket.IsUnexpectedClose(err) {
				log.Warn().Err(err).Msg("ws read")
			}
			return
		}
		var msg relay.SignalMessage
		if err = json.Unmarshal(data, &msg); err != nil {
			err = fmt.Errorf("%w: %v", relay.ErrMalformed, err)
		} else {
			err = h.router.Route(b.Code(), b.Role(), msg)
		}
		if err != nil {
			log.Debug().Err(err).Msg("ws signal rejected")
			if err = sink.Send(relay.ErrorMessage(err)); err != nil {
				return
			}
		}
	}
}
