package ice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	pice "github.com/pion/ice/v2"
	"github.com/pion/webrtc/v3"
	"github.com/webtools/peerlink/pkg/config"
)

var (
	ErrNoUrls         = errors.New("ice server has no urls")
	ErrNoCredentials  = errors.New("turn server needs username and credential")
	ErrUnknownPattern = errors.New("unresolved placeholder")
)

type Replacement struct {
	From string
	To   string
}

// Replacements turns a placeholder map into a stable list.
func Replacements(m map[string]string) []Replacement {
	rr := make([]Replacement, 0, len(m))
	for k, v := range m {
		rr = append(rr, Replacement{From: k, To: v})
	}
	sort.Slice(rr, func(i, j int) bool { return rr[i].From < rr[j].From })
	return rr
}

func replace(url string, replacements []Replacement) string {
	for _, r := range replacements {
		url = strings.ReplaceAll(url, "{"+r.From+"}", r.To)
	}
	return url
}

// Build resolves {placeholders} in the server urls and checks
// that every url is a valid stun(s)/turn(s) one.
func Build(servers []config.IceServer, replacements ...Replacement) ([]webrtc.ICEServer, error) {
	out := make([]webrtc.ICEServer, 0, len(servers))
	for i, s := range servers {
		if len(s.Urls) == 0 {
			return nil, fmt.Errorf("ice server #%d: %w", i, ErrNoUrls)
		}
		server := webrtc.ICEServer{URLs: make([]string, 0, len(s.Urls))}
		for _, raw := range s.Urls {
			url := replace(raw, replacements)
			if strings.ContainsAny(url, "{}") {
				return nil, fmt.Errorf("ice server #%d %q: %w", i, url, ErrUnknownPattern)
			}
			u, err := pice.ParseURL(url)
			if err != nil {
				return nil, fmt.Errorf("ice server #%d %q: %w", i, url, err)
			}
			if (u.Scheme == pice.SchemeTypeTURN || u.Scheme == pice.SchemeTypeTURNS) &&
				(s.Username == "" || s.Credential == "") {
				return nil, fmt.Errorf("ice server #%d %q: %w", i, url, ErrNoCredentials)
			}
			server.URLs = append(server.URLs, url)
		}
		if s.Username != "" {
			server.Username = s.Username
		}
		if s.Credential != "" {
			server.Credential = s.Credential
		}
		out = append(out, server)
	}
	return out, nil
}

// FromConfig builds the list from the webrtc section of the config.
func FromConfig(conf config.Webrtc) ([]webrtc.ICEServer, error) {
	return Build(conf.IceServers, Replacements(conf.IceReplacements)...)
}

// List holds the current set of ice servers, safe to swap
// while handlers read it.
type List struct {
	v atomic.Pointer[[]webrtc.ICEServer]
}

func NewList(servers []webrtc.ICEServer) *List {
	l := &List{}
	l.Store(servers)
	return l
}

func (l *List) Load() []webrtc.ICEServer {
	if p := l.v.Load(); p != nil {
		return *p
	}
	return nil
}

func (l *List) Store(servers []webrtc.ICEServer) {
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	l.v.Store(&servers)
}
