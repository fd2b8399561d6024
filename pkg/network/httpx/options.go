package httpx

import (
	"time"

	"github.com/webtools/peerlink/pkg/config"
	"github.com/webtools/peerlink/pkg/logger"
)

type (
	Options struct {
		Https                bool
		HttpsRedirect        bool
		HttpsRedirectAddress string
		HttpsCert            string
		HttpsKey             string
		HttpsDomain          string
		HttpsCertCache       string
		PortRoll             bool
		IdleTimeout          time.Duration
		ReadTimeout          time.Duration
		WriteTimeout         time.Duration
		Logger               *logger.Logger
	}
	Option func(*Options)
)

func defaultOptions() Options {
	return Options{
		HttpsRedirect: true,
		IdleTimeout:   120 * time.Second,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  30 * time.Second,
	}
}

func (o *Options) override(options ...Option) {
	for _, opt := range options {
		opt(o)
	}
}

// IsAutoHttpsCert tells whether certificates come from Let's Encrypt
// rather than from files.
func (o *Options) IsAutoHttpsCert() bool { return o.HttpsCert == "" || o.HttpsKey == "" }

func WithPortRoll(roll bool) Option      { return func(o *Options) { o.PortRoll = roll } }
func WithLogger(log *logger.Logger) Option { return func(o *Options) { o.Logger = log } }

// WithWriteTimeout sets the response write timeout, 0 turns it off for
// responses that stream for as long as the client stays.
func WithWriteTimeout(t time.Duration) Option { return func(o *Options) { o.WriteTimeout = t } }

// WithServerConfig applies the TLS part of a server config. The plain
// address becomes the redirect address when HTTPS is on.
func WithServerConfig(conf config.Server) Option {
	return func(o *Options) {
		o.Https = conf.Https
		o.HttpsCert = conf.Tls.HttpsCert
		o.HttpsKey = conf.Tls.HttpsKey
		o.HttpsDomain = conf.Tls.Domain
		o.HttpsCertCache = conf.Tls.CertCache
		o.HttpsRedirectAddress = conf.Address
	}
}
