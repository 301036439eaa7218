package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"noticeboard/pkg/logx"
)

var storageDrivers = map[string]bool{"": true, "none": true, "file": true, "sqlite": true, "sqlite3": true}

// Validate checks what the schema cannot express. All problems are reported
// together; the result wraps ErrInvalid.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalid)
	}
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	s := cfg.Server
	if _, _, err := net.SplitHostPort(s.Addr); err != nil {
		add("server.addr: %v", err)
	} else if !isLoopbackAddr(s.Addr) && strings.TrimSpace(s.Token) == "" && !s.AllowInsecure {
		add("server.addr: %q is not loopback; set server.token or server.allow_insecure", s.Addr)
	}
	if strings.ContainsAny(s.CanonicalHost, "/ ") {
		add("server.canonical_host: %q must be a bare host", s.CanonicalHost)
	}
	if s.MountPath != "" && !strings.HasPrefix(s.MountPath, "/") {
		add("server.mount_path: must start with /")
	}
	for _, d := range []struct{ name, raw string }{
		{"server.read_timeout", s.ReadTimeout},
		{"server.write_timeout", s.WriteTimeout},
		{"server.idle_timeout", s.IdleTimeout},
	} {
		if _, err := ParseDurationField(d.name, d.raw); err != nil {
			errs = append(errs, err)
		}
	}

	seen := map[string]bool{}
	for i, ct := range cfg.Site.ContentTypes {
		if strings.TrimSpace(ct.Slug) == "" {
			add("site.content_types[%d].slug: required", i)
			continue
		}
		if seen[ct.Slug] {
			add("site.content_types[%d].slug: duplicate %q", i, ct.Slug)
		}
		seen[ct.Slug] = true
	}
	seen = map[string]bool{}
	for i, tx := range cfg.Site.Taxonomies {
		if strings.TrimSpace(tx.Slug) == "" {
			add("site.taxonomies[%d].slug: required", i)
			continue
		}
		if seen[tx.Slug] {
			add("site.taxonomies[%d].slug: duplicate %q", i, tx.Slug)
		}
		seen[tx.Slug] = true
	}

	if !logx.ValidLevel(cfg.Logging.Level) {
		add("logging.level: unknown level %q", cfg.Logging.Level)
	}
	if cfg.Logging.File.Enabled && strings.TrimSpace(cfg.Logging.File.Path) == "" {
		add("logging.file.path: required when logging.file.enabled")
	}

	if st := cfg.Storage; st != nil {
		d := strings.ToLower(strings.TrimSpace(st.Driver))
		if !storageDrivers[d] {
			add("storage.driver: unknown driver %q", st.Driver)
		} else if d != "" && d != "none" && strings.TrimSpace(st.Path) == "" {
			add("storage.path: required for driver %q", d)
		}
		if _, err := ParseDurationField("storage.busy_timeout", st.BusyTimeout); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func isLoopbackAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
