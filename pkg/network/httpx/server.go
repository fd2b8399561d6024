package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/webtools/peerlink/pkg/logger"
	"golang.org/x/crypto/acme/autocert"
)

// Server is an http.Server with its own listener, optional TLS
// and an optional plain HTTP companion that redirects to it.
type Server struct {
	http.Server

	opts     Options
	listener *Listener
	certs    *autocert.Manager
	redirect *Server
	log      *logger.Logger
}

// NewServer binds address right away, so the real port is known
// (see GetPort) before Run. The handler func gets the server to read
// its final address from.
func NewServer(address string, handler func(*Server) Handler, options ...Option) (*Server, error) {
	opts := defaultOptions()
	opts.override(options...)
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}

	s := &Server{
		Server: http.Server{
			Addr:         address,
			IdleTimeout:  opts.IdleTimeout,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		opts: opts,
		log:  opts.Logger,
	}

	if opts.Https && opts.IsAutoHttpsCert() {
		s.certs = newCertManager(opts.HttpsDomain, opts.HttpsCertCache)
		s.TLSConfig = s.certs.TLSConfig()
	}

	bind := address
	if bind == "" {
		bind = ":" + s.GetProtocol()
		s.log.Warn().Msgf("Empty server address has been changed to %v", bind)
	}
	ls, err := NewListener(bind, opts.PortRoll)
	if err != nil {
		return nil, err
	}
	s.listener = ls
	s.Addr = buildAddress(address, *ls)
	s.Handler = handler(s)
	s.log.Info().Msgf("httpx %v (%v)", s.Addr, address)
	return s, nil
}

func (s *Server) Run() { go s.serve() }

func (s *Server) serve() {
	protocol := s.GetProtocol()
	s.log.Debug().Msgf("Starting %s server on %s", protocol, s.Addr)

	if s.opts.Https && s.opts.HttpsRedirect {
		if rdr, err := s.redirection(); err != nil {
			s.log.Error().Err(err).Msg("couldn't init redirection server")
		} else {
			s.redirect = rdr
			rdr.Run()
		}
	}

	var err error
	if s.opts.Https {
		err = s.ServeTLS(s.listener, s.opts.HttpsCert, s.opts.HttpsKey)
	} else {
		err = s.Serve(s.listener)
	}
	if errors.Is(err, http.ErrServerClosed) {
		s.log.Debug().Msgf("%s server was closed", protocol)
		return
	}
	s.log.Error().Err(err).Msgf("%s server has failed", protocol)
}

// Shutdown stops accepting connections and waits for active requests.
// Hijacked connections like websockets are not waited for.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redirect != nil {
		_ = s.redirect.Shutdown(ctx)
	}
	return s.Server.Shutdown(ctx)
}

func (s *Server) GetPort() int { return s.listener.GetPort() }

func (s *Server) GetProtocol() string {
	if s.opts.Https {
		return "https"
	}
	return "http"
}

func (s *Server) String() string { return fmt.Sprintf("httpx::%s://%s", s.GetProtocol(), s.Addr) }

// redirection makes the plain HTTP server that sends clients over to
// HTTPS and answers ACME challenges when certificates are automatic.
func (s *Server) redirection() (*Server, error) {
	host := s.Addr
	if s.opts.HttpsDomain != "" {
		host = buildAddress(s.opts.HttpsDomain, *s.listener)
	}
	to := func(w ResponseWriter, r *Request) {
		u := url.URL{Scheme: "https", Host: host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
		s.log.Debug().Str("from", r.Host+r.URL.String()).Str("to", u.String()).Msg("Redirect")
		http.Redirect(w, r, u.String(), http.StatusFound)
	}
	srv, err := NewServer(s.opts.HttpsRedirectAddress, func(*Server) Handler {
		var h Handler = HandlerFunc(to)
		if s.certs != nil {
			h = s.certs.HTTPHandler(h)
		}
		return h
	}, WithLogger(s.log))
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("to", host).Msg("Start HTTPS redirect server")
	return srv, nil
}
