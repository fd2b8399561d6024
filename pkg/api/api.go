// Package api exposes the relay over HTTP.
//
// Sessions are created and joined with small JSON requests. Signals are
// posted one message per request, and each peer reads its own queue as a
// long-lived event stream, either Server-Sent Events or a WebSocket.
//
//	POST   /api/session                  -> 201 {"code":"ABC234"}
//	GET    /api/session/{code}           -> 200 snapshot
//	DELETE /api/session/{code}           -> 204
//	POST   /api/session/{code}/join      -> 200 {"code":"ABC234","role":"guest"}
//	POST   /api/session/{code}/signal    -> 202, ?role=host|guest
//	GET    /api/session/{code}/events    -> text/event-stream, ?role=host|guest
//	GET    /api/session/{code}/ws        -> websocket, ?role=host|guest
//	GET    /api/ice                      -> 200 {"iceServers":[...]}
//	GET    /health                       -> 200
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/webtools/peerlink/pkg/config"
	"github.com/webtools/peerlink/pkg/ice"
	"github.com/webtools/peerlink/pkg/logger"
	"github.com/webtools/peerlink/pkg/network/httpx"
	"github.com/webtools/peerlink/pkg/relay"
)

// ErrStreamingUnsupported means the connection can't deliver events
// incrementally, so no stream is opened on it.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

var (
	errInvalidRole = errors.New("role must be host or guest")
	errTooLarge    = errors.New("message is too large")
	errNotUpgrade  = errors.New("websocket upgrade expected")
	errInternal    = errors.New("internal error")
)

type Handler struct {
	registry *relay.Registry
	router   *relay.Router
	ice      *ice.List
	conf     config.Stream
	log      *logger.Logger
}

func New(registry *relay.Registry, router *relay.Router, iceServers *ice.List, conf config.Stream, log *logger.Logger) *Handler {
	if iceServers == nil {
		iceServers = ice.NewList(nil)
	}
	if log == nil {
		log = logger.Default()
	}
	return &Handler{registry: registry, router: router, ice: iceServers, conf: conf, log: log}
}

// Routes adds all relay request routes.
func (h *Handler) Routes(mux *httpx.Mux) {
	mux.HandleFunc("POST /api/session", h.create)
	mux.HandleFunc("GET /api/session/{code}", h.status)
	mux.HandleFunc("DELETE /api/session/{code}", h.remove)
	mux.HandleFunc("POST /api/session/{code}/join", h.join)
	mux.HandleFunc("POST /api/session/{code}/signal", h.signal)
	mux.HandleFunc("GET /api/session/{code}/events", h.events)
	mux.HandleFunc("GET /api/session/{code}/ws", h.ws)
	mux.HandleFunc("GET /api/ice", h.iceServers)
	mux.HandleW("GET /health", func(w http.ResponseWriter) { _, _ = w.Write([]byte("ok")) })
}

// Recover turns a handler panic into a 500 for that request only.
func Recover(next http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("handler crashed")
				writeError(w, errInternal)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusOf maps relay errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, relay.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, relay.ErrSessionFull), errors.Is(err, relay.ErrRoleBound):
		return http.StatusConflict
	case errors.Is(err, relay.ErrBackpressure):
		return http.StatusTooManyRequests
	case errors.Is(err, relay.ErrMalformed), errors.Is(err, errInvalidRole), errors.Is(err, errNotUpgrade):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, relay.ErrTooManySessions):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), errorResponse{Error: err.Error()})
}

// decode reads a JSON body of at most limit bytes into v.
func decode(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("%w: limit is %d bytes", errTooLarge, tooBig.Limit)
		}
		return fmt.Errorf("%w: %v", relay.ErrMalformed, err)
	}
	return nil
}

func queryRole(r *http.Request) (relay.Role, error) {
	role, ok := relay.ParseRole(r.URL.Query().Get("role"))
	if !ok {
		return "", errInvalidRole
	}
	return role, nil
}
