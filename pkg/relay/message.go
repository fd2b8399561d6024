package relay

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	Host  Role = "host"
	Guest Role = "guest"
)

// ParseRole returns the role named by s, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case Host, Guest:
		return r, true
	}
	return "", false
}

func (r Role) Other() Role {
	if r == Host {
		return Guest
	}
	return Host
}

func (r Role) String() string { return string(r) }

// Message types emitted by the relay itself. Clients can't send them.
const (
	TypeConnected  = "connected"
	TypePeerJoined = "peer_joined"
	TypePeerLeft   = "peer_left"
	TypeError      = "error"
)

const maxTypeLen = 64

// SignalMessage is a single control message exchanged between two peers.
// The payload is carried as is.
type SignalMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func IsReserved(t string) bool {
	switch t {
	case TypeConnected, TypePeerJoined, TypePeerLeft, TypeError:
		return true
	}
	return false
}

// Validate checks that a client message can be relayed.
// Types are short tokens of letters, digits, '_', '-' and '.'.
func (m SignalMessage) Validate() error {
	if m.Type == "" {
		return fmt.Errorf("%w: missing type", ErrMalformed)
	}
	if len(m.Type) > maxTypeLen {
		return fmt.Errorf("%w: type is longer than %d", ErrMalformed, maxTypeLen)
	}
	for _, c := range m.Type {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.') {
			return fmt.Errorf("%w: bad type %q", ErrMalformed, m.Type)
		}
	}
	if IsReserved(m.Type) {
		return fmt.Errorf("%w: type %q is reserved", ErrMalformed, m.Type)
	}
	if len(m.Payload) > 0 && !json.Valid(m.Payload) {
		return fmt.Errorf("%w: payload is not JSON", ErrMalformed)
	}
	return nil
}

type peerInfo struct {
	Role Role `json:"role"`
}

type connectedInfo struct {
	Code string `json:"code"`
	Role Role   `json:"role"`
}

func notice(t string, payload any) SignalMessage {
	data, _ := json.Marshal(payload)
	return SignalMessage{Type: t, Payload: data}
}

func peerJoined(r Role) SignalMessage { return notice(TypePeerJoined, peerInfo{Role: r}) }
func peerLeft(r Role) SignalMessage   { return notice(TypePeerLeft, peerInfo{Role: r}) }

// ErrorMessage wraps err into an error frame for a stream client.
func ErrorMessage(err error) SignalMessage {
	return notice(TypeError, struct {
		Error string `json:"error"`
	}{Error: err.Error()})
}
