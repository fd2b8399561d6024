package config

import (
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	Relay  Relay
	Webrtc Webrtc
}

type Relay struct {
	Debug      bool
	Console    bool
	Monitoring Monitoring
	Server     Server
	Session    Session
	Stream     Stream
}

type Session struct {
	// number of characters in a session code
	CodeLength int `default:"6"`
	// capacity of each role's message queue
	QueueSize int `default:"10"`
	// how long a session may stay with nobody attached
	EmptyGrace time.Duration `default:"30s"`
	// absolute cap on a session's age, 0 disables it
	MaxLifetime time.Duration `default:"10m"`
	// how often the reaper sweeps
	ReapInterval time.Duration `default:"1s"`
	// 0 is unlimited
	MaxSessions int
}

type Stream struct {
	// interval of keepalive pings on open event streams
	Keepalive time.Duration `default:"15s"`
	// max size of a signal message body in bytes
	MaxMessageSize int64 `default:"65536"`
}

type Monitoring struct {
	Port             int    `default:"6601"`
	URLPrefix        string `default:"/relay"`
	MetricEnabled    bool   `json:"metric_enabled"`
	ProfilingEnabled bool   `json:"profiling_enabled"`
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

type Server struct {
	Address string `default:":8000"`
	Https   bool
	Tls     struct {
		Address   string `default:":443"`
		Domain    string
		// where autocert keeps issued certificates
		CertCache string `default:"certs"`
		HttpsKey  string
		HttpsCert string
	}
}

func (s *Server) GetAddr() string {
	if s.Https {
		return s.Tls.Address
	}
	return s.Address
}

type Webrtc struct {
	// STUN/TURN servers handed to the browsers, the relay never talks to them
	IceServers []IceServer
	// values for {placeholder} substitution in ice server urls
	IceReplacements map[string]string
}

type IceServer struct {
	Urls       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

// Flags are the command line overrides of a config.
// Only the flags set explicitly win over the file and env values.
type Flags struct {
	fs   *pflag.FlagSet
	Path string
}

func NewFlags(name string) *Flags {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f := &Flags{fs: fs}
	fs.StringVarP(&f.Path, "config", "c", "", "Set custom configuration file path")
	fs.String("address", "", "HTTP server address (host:port)")
	fs.String("httpsAddress", "", "HTTPS server address (host:port)")
	fs.Bool("debug", false, "Enable debug logging")
	fs.Bool("console", false, "Use human readable console logs")
	fs.Int("monitoring.port", 0, "Monitoring server port")
	fs.BoolP("monitoring.metric", "m", false, "Enable prometheus metric for server")
	fs.BoolP("monitoring.pprof", "p", false, "Enable golang pprof for server")
	return f
}

func (f *Flags) FlagSet() *pflag.FlagSet { return f.fs }

func (f *Flags) Parse(args []string) error { return f.fs.Parse(args) }

// Apply copies every explicitly set flag into c.
func (f *Flags) Apply(c *Config) {
	fs := f.fs
	if fs.Changed("address") {
		c.Relay.Server.Address, _ = fs.GetString("address")
	}
	if fs.Changed("httpsAddress") {
		c.Relay.Server.Tls.Address, _ = fs.GetString("httpsAddress")
	}
	if fs.Changed("debug") {
		c.Relay.Debug, _ = fs.GetBool("debug")
	}
	if fs.Changed("console") {
		c.Relay.Console, _ = fs.GetBool("console")
	}
	if fs.Changed("monitoring.port") {
		c.Relay.Monitoring.Port, _ = fs.GetInt("monitoring.port")
	}
	if fs.Changed("monitoring.metric") {
		c.Relay.Monitoring.MetricEnabled, _ = fs.GetBool("monitoring.metric")
	}
	if fs.Changed("monitoring.pprof") {
		c.Relay.Monitoring.ProfilingEnabled, _ = fs.GetBool("monitoring.pprof")
	}
}

// NewConfig parses args, loads the config file and env, then applies flags.
// The returned path is the config file that was read, if any.
func NewConfig(args []string) (conf Config, path string, err error) {
	flags := NewFlags("relay")
	if err = flags.Parse(args); err != nil {
		return
	}
	if path, err = LoadConfig(&conf, flags.Path); err != nil {
		return
	}
	flags.Apply(&conf)
	return
}
