package relay

import (
	"context"
	"sync"
	"time"

	"github.com/webtools/peerlink/pkg/logger"
)

const DefaultReapInterval = time.Second

// Reaper periodically sweeps the registry for abandoned and overaged
// sessions. It is the backstop for clients that vanish without a clean
// disconnect.
type Reaper struct {
	registry *Registry
	interval time.Duration
	log      *logger.Logger

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewReaper(registry *Registry, interval time.Duration, log *logger.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	if log == nil {
		log = registry.log
	}
	return &Reaper{registry: registry, interval: interval, log: log, stop: make(chan struct{})}
}

func (r *Reaper) Run() {
	r.wg.Add(1)
	go r.loop()
}

func (r *Reaper) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if n := r.registry.Sweep(r.registry.Now()); n > 0 {
				r.log.Debug().Int("reaped", n).Int("live", r.registry.Len()).Msg("sweep")
			}
		}
	}
}

func (r *Reaper) Shutdown(ctx context.Context) error {
	r.once.Do(func() { close(r.stop) })
	done := make(chan struct{})
	go func() { r.wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Reaper) String() string { return "reaper::" + r.interval.String() }
