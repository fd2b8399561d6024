package httpx

import (
	"net/http"
	"strings"
)

type (
	Handler        = http.Handler
	HandlerFunc    = http.HandlerFunc
	ResponseWriter = http.ResponseWriter
	Request        = http.Request
)

// Mux is a ServeMux that mounts every route under a common prefix.
// Patterns may start with a method, as in "POST /api/session".
type Mux struct {
	*http.ServeMux
	prefix string
}

func NewServeMux(prefix string) *Mux {
	return &Mux{ServeMux: http.NewServeMux(), prefix: strings.TrimSuffix(prefix, "/")}
}

func (m *Mux) pattern(p string) string {
	if method, path, ok := strings.Cut(p, " "); ok {
		return method + " " + m.prefix + path
	}
	return m.prefix + p
}

func (m *Mux) Handle(pattern string, handler Handler) *Mux {
	m.ServeMux.Handle(m.pattern(pattern), handler)
	return m
}

func (m *Mux) HandleFunc(pattern string, handler func(ResponseWriter, *Request)) *Mux {
	m.ServeMux.HandleFunc(m.pattern(pattern), handler)
	return m
}

// HandleW is for handlers that don't look at the request.
func (m *Mux) HandleW(pattern string, h func(ResponseWriter)) *Mux {
	return m.HandleFunc(pattern, func(w ResponseWriter, _ *Request) { h(w) })
}
