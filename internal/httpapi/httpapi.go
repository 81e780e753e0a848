// Package httpapi wires the proxy's HTTP surface: allowlist admission,
// the fixed routes (health, providers, credential), registry-based
// proxy dispatch, and the 403/404 floor. See spec.md §6.
package httpapi

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/thesystem/agentauth/internal/accesslog"
	"github.com/thesystem/agentauth/internal/allowlist"
	"github.com/thesystem/agentauth/internal/provider"
	"github.com/thesystem/agentauth/internal/proxyengine"
	"github.com/thesystem/agentauth/internal/secretstore"
)

// Handler is the proxy's single HTTP entry point.
type Handler struct {
	Allow  *allowlist.List
	Store  *secretstore.Store
	Access *accesslog.Logger
	Engine *proxyengine.Engine
	Port   int
}

// New wires a Handler from its components.
func New(allow *allowlist.List, store *secretstore.Store, access *accesslog.Logger, port int) *Handler {
	return &Handler{
		Allow:  allow,
		Store:  store,
		Access: access,
		Engine: proxyengine.New(store, access),
		Port:   port,
	}
}

// ServeHTTP implements spec.md §4.6: admission runs before any other
// work, including for routes that would otherwise be public — the
// allowlist is the proxy's only authentication boundary.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := remoteIP(r)
	if !h.Allow.Allowed(r.RemoteAddr) {
		h.Access.Denied(ip, r.Method, r.URL.Path)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	switch {
	case r.URL.Path == "/agentauth/health":
		h.handleHealth(w, r)
		return
	case r.URL.Path == "/agentauth/providers":
		h.handleProviders(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/agentauth/credential/"):
		h.handleCredential(w, r)
		return
	}

	id, remainder, ok := splitProviderRoute(r.URL.Path)
	if ok {
		if d, found := provider.Get(id); found {
			h.Engine.Handle(w, r, d, remainder)
			return
		}
	}

	h.Access.Admitted(ip, r.Method, r.URL.Path, "-", http.StatusNotFound, 0)
	http.Error(w, "not found", http.StatusNotFound)
}

// splitProviderRoute matches spec.md §4.5 step 2: the first path segment
// is the provider id, case-sensitive, exact match; everything after it
// (including its leading slash) is passed through verbatim.
func splitProviderRoute(path string) (id string, remainder string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", "", false
	}
	slash := strings.IndexByte(trimmed, '/')
	if slash < 0 {
		return trimmed, "", true
	}
	return trimmed[:slash], trimmed[slash:], true
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"backends": provider.Names(),
		"port":     h.Port,
	})
	h.Access.Admitted(remoteIP(r), r.Method, r.URL.Path, "-", http.StatusOK, time.Since(start))
}

func (h *Handler) handleProviders(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	writeJSON(w, http.StatusOK, provider.Names())
	h.Access.Admitted(remoteIP(r), r.Method, r.URL.Path, "-", http.StatusOK, time.Since(start))
}

// handleCredential serves the git-credential-helper route. This is the
// only handler that returns a raw secret in the response body; it is
// gated solely by the allowlist check already applied in ServeHTTP.
func (h *Handler) handleCredential(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ip := remoteIP(r)
	id := strings.TrimPrefix(r.URL.Path, "/agentauth/credential/")
	if id == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no_credential", "message": "missing provider id"})
		h.Access.Error(ip, r.Method, r.URL.Path, "missing provider id")
		return
	}

	secret, err := h.Store.Read(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no_credential", "message": "no credential stored for " + id})
		h.Access.Error(ip, r.Method, r.URL.Path, "no credential for provider "+id)
		return
	}
	defer secret.Wipe()

	writeJSON(w, http.StatusOK, map[string]string{"token": string(secret.Bytes())})
	h.Access.Admitted(ip, r.Method, r.URL.Path, "-", http.StatusOK, time.Since(start))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
