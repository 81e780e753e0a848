// Package allowlist implements the proxy's source-network admission check.
//
// The set is built once at startup from a compile-time list and never
// mutates, so Allowed is safe to call from concurrent request handlers
// without synchronization.
package allowlist

import (
	"net"
	"strings"
)

// defaultCIDRs covers loopback (v4 and v6), RFC1918 private ranges, and
// the IPv4-mapped IPv6 loopback range.
var defaultCIDRs = []string{
	"127.0.0.0/8",
	"::1/128",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
}

// List is an immutable set of permitted source networks.
type List struct {
	nets []*net.IPNet
}

// New parses a fixed set of CIDRs into a List. Entries that fail to parse
// are a programmer error (the set is compile-time constant) and panic,
// matching the teacher's convention of failing fast on invalid constant
// CIDR literals rather than silently dropping them.
func New(cidrs []string) *List {
	l := &List{nets: make([]*net.IPNet, 0, len(cidrs))}
	for _, c := range cidrs {
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			panic("allowlist: invalid CIDR literal " + c + ": " + err.Error())
		}
		l.nets = append(l.nets, ipnet)
	}
	return l
}

// Default returns the allowlist required by spec: loopback, RFC1918, and
// the IPv4-mapped IPv6 loopback range (handled via normalization below,
// since ::ffff:127.0.0.1 is normalized to 127.0.0.1 before matching).
func Default() *List {
	return New(defaultCIDRs)
}

// Allowed reports whether remoteAddr (an IP, optionally with a port, as
// returned by http.Request.RemoteAddr) matches any entry in the list.
func (l *List) Allowed(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = normalize(host)

	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}

	for _, n := range l.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// normalize strips a leading "::ffff:" IPv4-mapped-IPv6 prefix so that
// dual-stack loopback connections compare correctly against v4 CIDRs.
func normalize(host string) string {
	const prefix = "::ffff:"
	if strings.HasPrefix(host, prefix) {
		return host[len(prefix):]
	}
	return host
}
