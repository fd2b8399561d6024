package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/tmaxmax/go-sse"
	"github.com/webtools/peerlink/pkg/com"
	"github.com/webtools/peerlink/pkg/relay"
)

// sseSink writes relay messages as Server-Sent Events.
// The event name is the message type and the data is the whole message.
type sseSink struct {
	sess *sse.Session
	seq  int
}

func (s *sseSink) Send(msg relay.SignalMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.seq++
	e := &sse.Message{ID: sse.ID(strconv.Itoa(s.seq)), Type: sse.Type(msg.Type)}
	e.AppendData(string(data))
	return s.send(e)
}

func (s *sseSink) Ping() error {
	e := &sse.Message{}
	e.AppendComment("ping")
	return s.send(e)
}

func (s *sseSink) send(e *sse.Message) error {
	if err := s.sess.Send(e); err != nil {
		return err
	}
	return s.sess.Flush()
}

// events streams the queue of one role as Server-Sent Events.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	role, err := queryRole(r)
	if err != nil {
		writeError(w, err)
		return
	}
	// nothing is touched when the writer can't flush
	if _, ok := w.(http.Flusher); !ok {
		writeError(w, ErrStreamingUnsupported)
		return
	}

	b, err := h.registry.Attach(r.PathValue("code"), role)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := sse.Upgrade(w, r)
	if err != nil {
		b.Detach()
		writeError(w, fmt.Errorf("%w: %v", ErrStreamingUnsupported, err))
		return
	}

	log := h.log.ForSession(b.Code(), role.String(), com.NewConnId().Short())
	defer h.registry.Metrics().TrackStream("sse")()

	log.Debug().Msg("sse stream open")
	err = b.Pump(r.Context(), &sseSink{sess: sess}, h.conf.Keepalive)
	log.Debug().Err(err).Msg("sse stream closed")
}
