package relay

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		role Role
		ok   bool
	}{
		{in: "host", role: Host, ok: true},
		{in: "Guest", role: Guest, ok: true},
		{in: " HOST ", role: Host, ok: true},
		{in: ""},
		{in: "admin"},
	}
	for _, test := range tests {
		role, ok := ParseRole(test.in)
		if role != test.role || ok != test.ok {
			t.Errorf("%q: expected %v %v, got %v %v", test.in, test.role, test.ok, role, ok)
		}
	}
	if Host.Other() != Guest || Guest.Other() != Host {
		t.Errorf("wrong opposite roles")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		msg  SignalMessage
		ok   bool
	}{
		{name: "offer", msg: SignalMessage{Type: "offer", Payload: json.RawMessage(`{"sdp":"v=0"}`)}, ok: true},
		{name: "no payload", msg: SignalMessage{Type: "ice-candidate.v2"}, ok: true},
		{name: "empty type", msg: SignalMessage{}},
		{name: "spaces", msg: SignalMessage{Type: "an offer"}},
		{name: "newline", msg: SignalMessage{Type: "offer\nevent: x"}},
		{name: "long", msg: SignalMessage{Type: strings.Repeat("a", 65)}},
		{name: "reserved", msg: SignalMessage{Type: TypePeerJoined}},
		{name: "bad payload", msg: SignalMessage{Type: "offer", Payload: json.RawMessage(`{`)}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.msg.Validate()
			if test.ok && err != nil {
				t.Errorf("unexpected error %v", err)
			}
			if !test.ok && !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestNotices(t *testing.T) {
	b, _ := json.Marshal(peerLeft(Host))
	if string(b) != `{"type":"peer_left","payload":{"role":"host"}}` {
		t.Errorf("peer_left: %s", b)
	}
	b, _ = json.Marshal(ErrorMessage(ErrBackpressure))
	if string(b) != `{"type":"error","payload":{"error":"peer is not draining messages"}}` {
		t.Errorf("error: %s", b)
	}
}
