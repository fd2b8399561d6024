package api

import (
	"net/http"

	"github.com/webtools/peerlink/pkg/relay"
)

type codeResponse struct {
	Code string     `json:"code"`
	Role relay.Role `json:"role,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, _ *http.Request) {
	code, err := h.registry.Create()
	if err != nil {
		h.log.Warn().Err(err).Msg("couldn't create session")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, codeResponse{Code: code})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	s, err := h.registry.Lookup(r.PathValue("code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	h.registry.Delete(r.PathValue("code"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	code := relay.NormalizeCode(r.PathValue("code"))
	if err := h.registry.Join(code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codeResponse{Code: code, Role: relay.Guest})
}

// signal routes one message to the peer of the sender.
// A missing or unknown role is taken for the guest.
func (h *Handler) signal(w http.ResponseWriter, r *http.Request) {
	sender, _ := relay.ParseRole(r.URL.Query().Get("role"))
	var msg relay.SignalMessage
	if err := decode(w, r, h.conf.MaxMessageSize, &msg); err != nil {
		writeError(w, err)
		return
	}
	if err := h.router.Route(r.PathValue("code"), sender, msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type iceServer struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential any      `json:"credential,omitempty"`
}

func (h *Handler) iceServers(w http.ResponseWriter, _ *http.Request) {
	servers := h.ice.Load()
	out := make([]iceServer, 0, len(servers))
	for _, s := range servers {
		out = append(out, iceServer{URLs: s.URLs, Username: s.Username, Credential: s.Credential})
	}
	writeJSON(w, http.StatusOK, struct {
		IceServers []iceServer `json:"iceServers"`
	}{IceServers: out})
}
