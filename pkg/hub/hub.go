// Package hub puts the relay parts together into one runnable service group.
package hub

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/webtools/peerlink/pkg/api"
	"github.com/webtools/peerlink/pkg/config"
	"github.com/webtools/peerlink/pkg/ice"
	"github.com/webtools/peerlink/pkg/logger"
	"github.com/webtools/peerlink/pkg/monitoring"
	"github.com/webtools/peerlink/pkg/network/httpx"
	"github.com/webtools/peerlink/pkg/relay"
	"github.com/webtools/peerlink/pkg/service"
)

type Hub struct {
	log      *logger.Logger
	registry *relay.Registry
	ice      *ice.List
	metrics  *prometheus.Registry
	server   *httpx.Server
	services service.Group
}

// sessions closes every live session when the hub stops,
// so that bound streams end before the server waits for them.
type sessions struct{ *relay.Registry }

func (s sessions) Run() {}
func (s sessions) Shutdown(context.Context) error {
	s.Close()
	return nil
}
func (s sessions) String() string { return "sessions" }

func New(conf config.Config, log *logger.Logger, options ...relay.Option) (*Hub, error) {
	if log == nil {
		log = logger.Default()
	}
	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sc := conf.Relay.Session
	registry := relay.NewRegistry(relay.Options{
		QueueSize:   sc.QueueSize,
		CodeLength:  sc.CodeLength,
		EmptyGrace:  sc.EmptyGrace,
		MaxLifetime: sc.MaxLifetime,
		MaxSessions: sc.MaxSessions,
	}, log, relay.NewMetrics(metrics), options...)

	servers, err := ice.FromConfig(conf.Webrtc)
	if err != nil {
		return nil, fmt.Errorf("ice servers: %w", err)
	}
	iceList := ice.NewList(servers)

	handler := api.New(registry, relay.NewRouter(registry, log), iceList, conf.Relay.Stream, log)
	server, err := httpx.NewServer(
		conf.Relay.Server.GetAddr(),
		func(*httpx.Server) httpx.Handler {
			mux := httpx.NewServeMux("")
			handler.Routes(mux)
			return api.Recover(mux, log)
		},
		httpx.WithServerConfig(conf.Relay.Server),
		// event streams stay open for the whole session
		httpx.WithWriteTimeout(0),
		httpx.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("relay server: %w", err)
	}

	h := &Hub{log: log, registry: registry, ice: iceList, metrics: metrics, server: server}
	h.services.Add(
		sessions{registry},
		relay.NewReaper(registry, sc.ReapInterval, log),
		server,
	)
	if conf.Relay.Monitoring.IsEnabled() {
		mon, err := monitoring.New(conf.Relay.Monitoring, metrics, log)
		if err != nil {
			return nil, fmt.Errorf("monitoring: %w", err)
		}
		h.services.Add(mon)
	}
	return h, nil
}

func (h *Hub) Start() {
	h.log.Info().Int("services", h.services.Len()).Msg("starting relay")
	h.services.Start()
}

func (h *Hub) Shutdown(ctx context.Context) error { return h.services.Shutdown(ctx) }

// ReloadIce swaps the ICE servers handed to clients. A bad list
// keeps the current one.
func (h *Hub) ReloadIce(conf config.Config) error {
	servers, err := ice.FromConfig(conf.Webrtc)
	if err != nil {
		h.log.Warn().Err(err).Msg("ice servers were not reloaded")
		return err
	}
	h.ice.Store(servers)
	h.log.Info().Int("servers", len(servers)).Msg("ice servers reloaded")
	return nil
}

func (h *Hub) Registry() *relay.Registry     { return h.registry }
func (h *Hub) Gatherer() prometheus.Gatherer { return h.metrics }
func (h *Hub) Addr() string                  { return h.server.Addr }
func (h *Hub) Port() int                     { return h.server.GetPort() }
