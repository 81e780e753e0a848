// Package proxyengine implements spec.md §4.5: body capture, credential
// injection, the upstream call, and response streaming for one matched
// provider route. Route matching and allowlist admission happen one
// layer up, in internal/httpapi — this package starts from "the request
// already matched provider d" and ends at "the response finished
// streaming".
package proxyengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/thesystem/agentauth/internal/accesslog"
	"github.com/thesystem/agentauth/internal/provider"
	"github.com/thesystem/agentauth/internal/secretstore"
)

// MaxBodySize bounds how much of a request body the engine will buffer.
// spec.md §4.5 step 3 does not mandate a cap but permits one; this keeps
// a single oversized client request from exhausting memory on a fleet
// host shared with the VM and the other agent containers.
const MaxBodySize = 32 << 20

// UpstreamTimeout bounds a single upstream call, per spec.md §5: it must
// cover the longest expected streaming completion, not just
// first-byte latency.
const UpstreamTimeout = 600 * time.Second

// Engine serves matched provider routes.
type Engine struct {
	Store  *secretstore.Store
	Access *accesslog.Logger
	Client *http.Client
}

// New returns an Engine with a client tuned for long-lived SSE streams:
// no transport-level proxy (the proxy itself is the egress point and
// must not recurse through another layer) and no redirect-following
// (spec.md §4.5 step 8 requires 3xx responses pass through verbatim).
func New(store *secretstore.Store, access *accesslog.Logger) *Engine {
	return &Engine{
		Store:  store,
		Access: access,
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy: nil,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Handle serves one proxied request for provider descriptor d. remainder
// is the request path after the provider's URL-prefix segment (e.g.
// "/v1/messages"), including its leading slash; it may be empty.
func (e *Engine) Handle(w http.ResponseWriter, r *http.Request, d provider.Descriptor, remainder string) {
	start := time.Now()
	ip := remoteIP(r)
	routePath := "/" + d.ID + remainder

	// Step 3: capture the full request body before touching the
	// keystore. This bounds credential exposure to "the client has
	// already committed its payload".
	body, truncated, err := readBody(r.Body, MaxBodySize)
	if err != nil {
		e.Access.Error(ip, r.Method, routePath, "reading request body")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if truncated {
		e.Access.Error(ip, r.Method, routePath, "request body exceeds size limit")
		http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	// Step 4: best-effort model extraction, for logging only.
	model := extractModel(body)

	// Step 5: provider-specific sanitizer.
	if d.Sanitize != nil {
		if out, changed := d.Sanitize(body); changed {
			body = out
		}
	}

	// Step 6: exactly one keystore read, after body capture and before
	// upstream connect.
	ctx, cancel := context.WithTimeout(r.Context(), UpstreamTimeout)
	defer cancel()
	secret, err := e.Store.Read(ctx, d.ID)
	if err != nil {
		e.Access.Error(ip, r.Method, routePath, fmt.Sprintf("no credential for provider %s", d.ID))
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer secret.Wipe()

	upstreamURL := d.UpstreamBase + remainder
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	var reqBody io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		reqBody = bytes.NewReader(body)
	}

	upstreamReq, err := http.NewRequestWithContext(ctx, r.Method, upstreamURL, reqBody)
	if err != nil {
		e.Access.Error(ip, r.Method, routePath, "building upstream request")
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	// Step 7: headers, built from an empty set — nothing is copied
	// blanket-style, so host/authorization/x-api-key from the caller
	// never reach the upstream request.
	if ct := r.Header.Get("Content-Type"); ct != "" {
		upstreamReq.Header.Set("Content-Type", ct)
	}
	for _, name := range d.PassthroughHeaders {
		if v := r.Header.Get(name); v != "" {
			upstreamReq.Header.Set(name, v)
		}
	}
	for name, value := range d.DefaultHeaders {
		if upstreamReq.Header.Get(name) == "" {
			upstreamReq.Header.Set(name, value)
		}
	}
	injectCredential(upstreamReq, d.AuthStyle, secret)

	// Step 8/9: issue the call, stream the response.
	resp, err := e.Client.Do(upstreamReq)
	if err != nil {
		e.Access.Error(ip, r.Method, routePath, "upstream connect failed")
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyResponseHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	streamBody(w, resp.Body)

	// Step 10: the body stream has ended, successfully or via upstream
	// disconnect — either way, exactly one log line with final status
	// and total duration.
	e.Access.Admitted(ip, r.Method, routePath, model, resp.StatusCode, time.Since(start))
}

func readBody(r io.ReadCloser, max int64) (body []byte, truncated bool, err error) {
	defer r.Close()
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > max {
		return nil, true, nil
	}
	return data, false, nil
}

// extractModel is a best-effort JSON decode of the body's "model" field
// for logging only; any failure yields "-" and never blocks the request.
func extractModel(body []byte) string {
	if len(body) == 0 {
		return "-"
	}
	var doc struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || doc.Model == "" {
		return "-"
	}
	return doc.Model
}

func injectCredential(req *http.Request, style provider.AuthStyle, secret secretstore.Secret) {
	value := string(secret.Bytes())
	switch style {
	case provider.AuthXAPIKey:
		req.Header.Set("x-api-key", value)
	case provider.AuthXGoogAPIKey:
		req.Header.Set("x-goog-api-key", value)
	default:
		req.Header.Set("Authorization", "Bearer "+value)
	}
}

// copyResponseHeaders copies every response header except
// content-encoding and transfer-encoding: the HTTP client has already
// decompressed the body, so re-advertising the encoding would cause
// double-decompression at the caller.
func copyResponseHeaders(dst, src http.Header) {
	for key, values := range src {
		switch strings.ToLower(key) {
		case "content-encoding", "transfer-encoding":
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

// streamBody copies body to w a chunk at a time, flushing after every
// write so SSE and other chunked streaming responses are delivered
// incrementally instead of buffered.
func streamBody(w http.ResponseWriter, body io.Reader) {
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}
	buf := make([]byte, 4096)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			_, _ = w.Write(buf[:n])
			if canFlush {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
