package api

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/webtools/peerlink/pkg/relay"
)

type sseEvent struct {
	id    string
	event string
	data  string
}

func (e sseEvent) message(t *testing.T) relay.SignalMessage {
	t.Helper()
	var msg relay.SignalMessage
	if err := json.Unmarshal([]byte(e.data), &msg); err != nil {
		t.Fatalf("bad event data %q: %v", e.data, err)
	}
	return msg
}

type sseClient struct {
	resp   *http.Response
	events chan sseEvent
}

func (tr *testRelay) openEvents(t *testing.T, code, role string) *sseClient {
	t.Helper()
	resp, status := tr.openEventsStatus(t, code, role)
	if status != http.StatusOK {
		t.Fatalf("events: expected 200, got %v", status)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("events: content type %q", ct)
	}
	c := &sseClient{resp: resp, events: make(chan sseEvent, 32)}
	go c.read()
	t.Cleanup(c.close)
	return c
}

func (tr *testRelay) openEventsStatus(t *testing.T, code, role string) (*http.Response, int) {
	t.Helper()
	resp, err := tr.Client().Get(tr.URL + "/api/session/" + code + "/events?role=" + role)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
	}
	return resp, resp.StatusCode
}

func (c *sseClient) read() {
	defer close(c.events)
	sc := bufio.NewScanner(c.resp.Body)
	var e sseEvent
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if e.event != "" || e.data != "" {
				c.events <- e
			}
			e = sseEvent{}
		case strings.HasPrefix(line, ":"):
		default:
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "id":
				e.id = value
			case "event":
				e.event = value
			case "data":
				e.data += value
			}
		}
	}
}

func (c *sseClient) next(t *testing.T) sseEvent {
	t.Helper()
	select {
	case e, ok := <-c.events:
		if !ok {
			t.Fatal("stream is closed")
		}
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event")
	}
	return sseEvent{}
}

func (c *sseClient) expect(t *testing.T, typ string) relay.SignalMessage {
	t.Helper()
	e := c.next(t)
	if e.event != typ {
		t.Fatalf("expected %v event, got %v (%s)", typ, e.event, e.data)
	}
	msg := e.message(t)
	if msg.Type != typ {
		t.Fatalf("event %v carries a %v message", typ, msg.Type)
	}
	return msg
}

func (c *sseClient) expectClosed(t *testing.T) {
	t.Helper()
	select {
	case e, ok := <-c.events:
		if ok {
			t.Fatalf("expected the end of stream, got %v", e.event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("stream is still open")
	}
}

func (c *sseClient) close() { _ = c.resp.Body.Close() }

func TestEventsConnected(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)

	host := tr.openEvents(t, code, "host")
	e := host.next(t)
	if e.event != relay.TypeConnected || e.id != "1" {
		t.Fatalf("unexpected first event %+v", e)
	}
	if want := `{"type":"connected","payload":{"code":"` + code + `","role":"host"}}`; e.data != want {
		t.Errorf("expected %v, got %v", want, e.data)
	}
}

func TestEventsPeerJoined(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)

	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)
	guest := tr.openEvents(t, code, "guest")
	guest.expect(t, relay.TypeConnected)

	msg := host.expect(t, relay.TypePeerJoined)
	if string(msg.Payload) != `{"role":"guest"}` {
		t.Errorf("unexpected payload %s", msg.Payload)
	}
}

func TestEventsRelayInOrder(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)
	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)

	for i := 0; i < 5; i++ {
		body := `{"type":"candidate","payload":{"n":` + string(rune('0'+i)) + `}}`
		if got := tr.signal(t, code, "guest", body); got != http.StatusAccepted {
			t.Fatalf("signal #%d: %v", i, got)
		}
	}
	for i := 0; i < 5; i++ {
		msg := host.expect(t, "candidate")
		if want := `{"n":` + string(rune('0'+i)) + `}`; string(msg.Payload) != want {
			t.Errorf("message #%d: expected %v, got %s", i, want, msg.Payload)
		}
	}
}

func TestEventsUnknownRoleGoesToHost(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)
	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)

	for _, role := range []string{"", "nobody"} {
		if got := tr.signal(t, code, role, `{"type":"offer"}`); got != http.StatusAccepted {
			t.Fatalf("role %q: %v", role, got)
		}
		host.expect(t, "offer")
	}
}

func TestEventsDisconnect(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)

	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)
	guest := tr.openEvents(t, code, "guest")
	guest.expect(t, relay.TypeConnected)
	host.expect(t, relay.TypePeerJoined)

	host.close()
	msg := guest.expect(t, relay.TypePeerLeft)
	if string(msg.Payload) != `{"role":"host"}` {
		t.Errorf("unexpected payload %s", msg.Payload)
	}
	s, err := tr.registry.Lookup(code)
	if err != nil {
		t.Fatalf("session should stay while the guest is there: %v", err)
	}
	if snap := s.Snapshot(); snap.HasHost || !snap.HasGuest {
		t.Errorf("unexpected presence %+v", snap)
	}

	guest.close()
	waitFor(t, "session destroy", func() bool {
		_, err := tr.registry.Lookup(code)
		return err != nil
	})
	if status, _ := tr.do(t, http.MethodGet, "/api/session/"+code, ""); status != http.StatusNotFound {
		t.Errorf("expected 404, got %v", status)
	}
}

func TestEventsEndOnDestroy(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)
	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)

	tr.do(t, http.MethodDelete, "/api/session/"+code, "")
	host.expectClosed(t)
}

func TestEventsEndOnLifetime(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)
	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)

	tr.clock.Advance(11 * time.Minute)
	if n := tr.registry.Sweep(tr.clock.Now()); n != 1 {
		t.Fatalf("expected 1 reaped session, got %v", n)
	}
	host.expectClosed(t)
}

func TestEventsErrors(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)
	host := tr.openEvents(t, code, "host")
	host.expect(t, relay.TypeConnected)

	tests := []struct {
		name   string
		code   string
		role   string
		status int
	}{
		{name: "no role", code: code, role: "", status: http.StatusBadRequest},
		{name: "bad role", code: code, role: "admin", status: http.StatusBadRequest},
		{name: "unknown code", code: "ZZZZZZ", role: "host", status: http.StatusNotFound},
		{name: "role bound", code: code, role: "host", status: http.StatusConflict},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, got := tr.openEventsStatus(t, test.code, test.role); got != test.status {
				t.Errorf("expected %v, got %v", test.status, got)
			}
		})
	}
}

// plainWriter can't flush.
type plainWriter struct {
	header http.Header
	status int
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) Write(b []byte) (int, error) { return len(b), nil }
func (w *plainWriter) WriteHeader(status int)      { w.status = status }

func TestEventsNeedFlusher(t *testing.T) {
	tr := newTestRelay(t, relay.DefaultOptions())
	code := tr.create(t)

	r := httptest.NewRequest(http.MethodGet, "/api/session/"+code+"/events?role=host", nil)
	r.SetPathValue("code", code)
	w := &plainWriter{header: http.Header{}}
	tr.handler.events(w, r)

	if w.status != http.StatusInternalServerError {
		t.Errorf("expected 500, got %v", w.status)
	}
	s, err := tr.registry.Lookup(code)
	if err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().HasHost {
		t.Errorf("a failed stream must not mark the host present")
	}
}
