package service

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

var (
	errInvalidHost   = errors.New("invalid host")
	errInvalidOrigin = errors.New("invalid origin")
)

// hostPolicy is the set of extra hostnames, lowercased and without port, that
// may address the server besides loopback. It keeps a local server out of
// reach of DNS rebinding.
type hostPolicy map[string]struct{}

func newHostPolicy(hosts []string) hostPolicy {
	policy := make(hostPolicy, len(hosts))
	for _, host := range hosts {
		if host = strings.ToLower(strings.TrimSpace(host)); host != "" {
			policy[host] = struct{}{}
		}
	}
	return policy
}

// admits reports whether a Host or Origin authority names loopback or a
// configured host.
func (p hostPolicy) admits(authority string) bool {
	host, ok := hostname(authority)
	if !ok {
		return false
	}
	host = strings.ToLower(host)
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}
	_, ok = p[host]
	return ok
}

// check validates the Host header and, when present, the Origin header.
func (p hostPolicy) check(r *http.Request) error {
	if !p.admits(r.Host) {
		return errInvalidHost
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}
	parsed, err := url.Parse(origin)
	if err != nil || !p.admits(parsed.Host) {
		return errInvalidOrigin
	}
	return nil
}

// hostname strips the port and IPv6 brackets from an authority.
func hostname(authority string) (string, bool) {
	authority = strings.TrimSpace(authority)
	if authority == "" {
		return "", false
	}
	if host, _, err := net.SplitHostPort(authority); err == nil {
		return host, host != ""
	}
	if strings.HasPrefix(authority, "[") {
		if !strings.HasSuffix(authority, "]") {
			return "", false
		}
		return authority[1 : len(authority)-1], true
	}
	return authority, true
}

// authorizeRequest enforces the bearer token when one is configured and
// writes the 401 itself.
func (t *HTTPTransport) authorizeRequest(w http.ResponseWriter, r *http.Request) bool {
	if t.authToken == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		t.writeUnauthorized(w, "authorization required")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(t.authToken)) != 1 {
		t.writeUnauthorized(w, "invalid access token")
		return false
	}
	return true
}

func (t *HTTPTransport) writeUnauthorized(w http.ResponseWriter, reason string) {
	t.logger.Warn("rejected MCP request", "reason", reason)
	body := newAuthenticationBody(t.locale, reason)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(body.Status)
	_ = json.NewEncoder(w).Encode(body)
}

// handleHealth answers GET /health with "OK". It skips the bearer check.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := t.hosts.check(r); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, err := w.Write([]byte("OK")); err != nil {
		t.logger.Warn("write health response", "error", err)
	}
}
