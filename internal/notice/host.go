package notice

import (
	"net"
	"net/url"
	"strings"
)

// hostOnly strips an optional port and IPv6 brackets from a host[:port] value.
func hostOnly(hostport string) string {
	h := strings.TrimSpace(hostport)
	if h == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return strings.TrimSuffix(strings.TrimPrefix(h, "["), "]")
}

func isIP(host string) bool {
	return host != "" && net.ParseIP(host) != nil
}

// hostOfURL returns the hostname (no port) of a scheme://host[:port] value.
func hostOfURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// schemeAndHost splits an absolute URI into lower-cased scheme and hostname,
// ignoring the port and the query string.
func schemeAndHost(raw string) (string, string, bool) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "", "", false
	}
	return strings.ToLower(u.Scheme), strings.ToLower(u.Hostname()), true
}
