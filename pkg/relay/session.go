package relay

import (
	"sync"
	"time"
)

// Session is the relay state shared by one host and one guest.
//
// Each role owns an outbound queue that only the other role (through the
// router) or the relay itself writes to. The presence flags and the closing
// of the queues are guarded by mu, so a send never races a close.
type Session struct {
	code      string
	createdAt time.Time
	metrics   *Metrics

	hostQueue  chan SignalMessage
	guestQueue chan SignalMessage

	mu         sync.Mutex
	hasHost    bool
	hasGuest   bool
	hostBound  bool
	guestBound bool
	closed     bool
}

// Snapshot is a point-in-time view of a session.
type Snapshot struct {
	Code      string    `json:"code"`
	HasHost   bool      `json:"hasHost"`
	HasGuest  bool      `json:"hasGuest"`
	CreatedAt time.Time `json:"createdAt"`
	Pending   struct {
		Host  int `json:"host"`
		Guest int `json:"guest"`
	} `json:"pending"`
}

func newSession(code string, queueSize int, now time.Time, m *Metrics) *Session {
	return &Session{
		code:       code,
		createdAt:  now,
		metrics:    m,
		hostQueue:  make(chan SignalMessage, queueSize),
		guestQueue: make(chan SignalMessage, queueSize),
	}
}

func (s *Session) Code() string         { return s.code }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Code: s.code, HasHost: s.hasHost, HasGuest: s.hasGuest, CreatedAt: s.createdAt}
	snap.Pending.Host = len(s.hostQueue)
	snap.Pending.Guest = len(s.guestQueue)
	return snap
}

func (s *Session) queue(r Role) chan SignalMessage {
	if r == Host {
		return s.hostQueue
	}
	return s.guestQueue
}

func (s *Session) presentLocked(r Role) bool {
	if r == Host {
		return s.hasHost
	}
	return s.hasGuest
}

func (s *Session) setPresentLocked(r Role, v bool) {
	if r == Host {
		s.hasHost = v
	} else {
		s.hasGuest = v
	}
}

func (s *Session) boundLocked(r Role) bool {
	if r == Host {
		return s.hostBound
	}
	return s.guestBound
}

func (s *Session) setBoundLocked(r Role, v bool) {
	if r == Host {
		s.hostBound = v
	} else {
		s.guestBound = v
	}
}

// enqueue puts msg on the queue of role to without blocking.
// A full queue is reported to the caller as ErrBackpressure.
func (s *Session) enqueue(to Role, msg SignalMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	select {
	case s.queue(to) <- msg:
		return nil
	default:
		return ErrBackpressure
	}
}

// notifyLocked is the best-effort send used for presence notifications.
// A full queue drops the message.
func (s *Session) notifyLocked(to Role, msg SignalMessage) bool {
	if s.closed {
		return false
	}
	select {
	case s.queue(to) <- msg:
		return true
	default:
		s.metrics.notificationDropped()
		return false
	}
}

// Join admits a guest. Only one guest can be present at a time.
func (s *Session) Join() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	if s.hasGuest {
		return ErrSessionFull
	}
	s.arriveLocked(Guest)
	return nil
}

// arriveLocked raises the presence flag of r and announces the arrival to
// the other side if it is there to hear it.
func (s *Session) arriveLocked(r Role) {
	if s.presentLocked(r) {
		return
	}
	s.setPresentLocked(r, true)
	if s.presentLocked(r.Other()) {
		s.notifyLocked(r.Other(), peerJoined(r))
	}
}

func (s *Session) attach(r Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrNotFound
	}
	if s.boundLocked(r) {
		return ErrRoleBound
	}
	s.setBoundLocked(r, true)
	s.arriveLocked(r)
	return nil
}

// detach runs the disconnect transition for r and reports whether both
// sides are now gone. It does nothing on a closed session.
func (s *Session) detach(r Role) (empty bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.setBoundLocked(r, false)
	s.setPresentLocked(r, false)
	if s.presentLocked(r.Other()) {
		s.notifyLocked(r.Other(), peerLeft(r))
	}
	return s.emptyLocked()
}

func (s *Session) emptyLocked() bool { return !s.hasHost && !s.hasGuest }

// closeLocked closes both queues once. Bound streams see the closed channel
// and stop.
func (s *Session) closeLocked() bool {
	if s.closed {
		return false
	}
	s.closed = true
	close(s.hostQueue)
	close(s.guestQueue)
	return true
}

// expiredLocked checks the two reaper predicates.
func (s *Session) expiredLocked(now time.Time, emptyGrace, maxLifetime time.Duration) (string, bool) {
	age := now.Sub(s.createdAt)
	if maxLifetime > 0 && age > maxLifetime {
		return ReasonLifetime, true
	}
	if s.emptyLocked() && age > emptyGrace {
		return ReasonEmpty, true
	}
	return "", false
}
