package relay

import (
	"sync"
	"time"

	"github.com/webtools/peerlink/pkg/logger"
)

type Options struct {
	// QueueSize is the capacity of each role's outbound queue.
	QueueSize int
	// CodeLength is the number of characters in a session code.
	CodeLength int
	// EmptyGrace is how long a session may stay with nobody attached.
	EmptyGrace time.Duration
	// MaxLifetime caps the age of any session. Zero disables the cap.
	MaxLifetime time.Duration
	// MaxSessions limits live sessions. Zero means no limit.
	MaxSessions int
}

func DefaultOptions() Options {
	return Options{
		QueueSize:   10,
		CodeLength:  6,
		EmptyGrace:  30 * time.Second,
		MaxLifetime: 10 * time.Minute,
	}
}

func (o *Options) withDefaults() {
	def := DefaultOptions()
	if o.QueueSize <= 0 {
		o.QueueSize = def.QueueSize
	}
	if o.CodeLength <= 0 {
		o.CodeLength = def.CodeLength
	}
	if o.EmptyGrace <= 0 {
		o.EmptyGrace = def.EmptyGrace
	}
}

type Option func(*Registry)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now func() time.Time) Option { return func(r *Registry) { r.now = now } }

// Registry maps session codes to live sessions.
//
// Lock order is registry then session. Nothing holding a session lock ever
// reaches for the registry lock.
type Registry struct {
	opts    Options
	log     *logger.Logger
	metrics *Metrics
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(opts Options, log *logger.Logger, m *Metrics, options ...Option) *Registry {
	opts.withDefaults()
	if m == nil {
		m = NewMetrics(nil)
	}
	if log == nil {
		log = logger.Default()
	}
	r := &Registry{
		opts:     opts,
		log:      log,
		metrics:  m,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Registry) Options() Options  { return r.opts }
func (r *Registry) Metrics() *Metrics { return r.metrics }
func (r *Registry) Now() time.Time    { return r.now() }

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Create mints a new session and returns its code.
// Collisions with live codes are retried until a free code comes up.
func (r *Registry) Create() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.opts.MaxSessions > 0 && len(r.sessions) >= r.opts.MaxSessions {
		return "", ErrTooManySessions
	}
	for {
		code, err := newCode(r.opts.CodeLength)
		if err != nil {
			return "", err
		}
		if _, ok := r.sessions[code]; ok {
			continue
		}
		r.sessions[code] = newSession(code, r.opts.QueueSize, r.now(), r.metrics)
		r.metrics.sessionCreated()
		r.log.Info().Str(logger.CodeField, code).Int("live", len(r.sessions)).Msg("session created")
		return code, nil
	}
}

func (r *Registry) Lookup(code string) (*Session, error) {
	code = NormalizeCode(code)
	r.mu.RLock()
	s, ok := r.sessions[code]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Join admits a guest into the session with the given code.
func (r *Registry) Join(code string) error {
	s, err := r.Lookup(code)
	if err != nil {
		return err
	}
	if err = s.Join(); err == nil {
		r.log.Info().Str(logger.CodeField, s.code).Msg("guest joined")
	}
	return err
}

// Delete destroys the session if it exists. It is safe to call repeatedly.
func (r *Registry) Delete(code string) bool {
	return r.remove(NormalizeCode(code), nil, ReasonDeleted)
}

// remove closes the session under code and drops it from the map when
// keep is nil or returns true for it.
func (r *Registry) remove(code string, keep func(*Session) bool, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	if !ok {
		return false
	}
	s.mu.Lock()
	if keep != nil && !keep(s) {
		s.mu.Unlock()
		return false
	}
	s.closeLocked()
	s.mu.Unlock()
	r.dropLocked(code, reason)
	return true
}

func (r *Registry) dropLocked(code, reason string) {
	delete(r.sessions, code)
	r.metrics.sessionDestroyed(reason)
	r.log.Info().Str(logger.CodeField, code).Str("reason", reason).Int("live", len(r.sessions)).Msg("session destroyed")
}

// destroyIfEmpty removes s after a disconnect if nobody came back in the
// meantime.
func (r *Registry) destroyIfEmpty(s *Session) bool {
	return r.remove(s.code, func(cur *Session) bool { return cur == s && cur.emptyLocked() }, ReasonDisconnect)
}

// Sweep destroys every session that has been empty past the grace period or
// has outlived the lifetime cap. It returns the number of sessions removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for code, s := range r.sessions {
		s.mu.Lock()
		reason, expired := s.expiredLocked(now, r.opts.EmptyGrace, r.opts.MaxLifetime)
		if expired {
			s.closeLocked()
		}
		s.mu.Unlock()
		if expired {
			r.dropLocked(code, reason)
			n++
		}
	}
	return n
}

// Close destroys all sessions, ending any bound streams.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for code, s := range r.sessions {
		s.mu.Lock()
		s.closeLocked()
		s.mu.Unlock()
		r.dropLocked(code, ReasonShutdown)
	}
}

// Attach binds a stream for role to the session with the given code.
func (r *Registry) Attach(code string, role Role) (*Binding, error) {
	s, err := r.Lookup(code)
	if err != nil {
		return nil, err
	}
	if err = s.attach(role); err != nil {
		return nil, err
	}
	r.log.Debug().Str(logger.CodeField, s.code).Str(logger.RoleField, role.String()).Msg("stream attached")
	return &Binding{registry: r, session: s, role: role}, nil
}
