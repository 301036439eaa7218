package config

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultBackendPath     = "/bolt"
	DefaultCanonicalScheme = "https"
	DefaultRatePerSec      = 5
	DefaultLogLevel        = "info"

	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Default folder locations, relative to the site root.
var defaultFolders = map[string]string{
	"files":    "public/files",
	"cache":    "var/cache",
	"database": "var/database",
	"thumbs":   "public/thumbs",
}

// ApplyDefaults fills in every optional field that has a default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	s := &cfg.Server
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = DefaultAddr
	}
	if strings.TrimSpace(s.BackendPath) == "" {
		s.BackendPath = DefaultBackendPath
	}
	s.BackendPath = "/" + strings.Trim(s.BackendPath, "/")
	s.MountPath = strings.TrimRight(strings.TrimSpace(s.MountPath), "/")
	if s.CanonicalScheme == "" {
		s.CanonicalScheme = DefaultCanonicalScheme
	}
	s.CanonicalHost = strings.ToLower(strings.TrimSpace(s.CanonicalHost))
	if s.RatePerSec == 0 {
		s.RatePerSec = DefaultRatePerSec
	}

	cfg.Runtime.Environment = strings.TrimSpace(cfg.Runtime.Environment)
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))

	for i := range cfg.Site.ContentTypes {
		ct := &cfg.Site.ContentTypes[i]
		if ct.SingularSlug == "" {
			ct.SingularSlug = ct.Slug
		}
		if ct.Name == "" {
			ct.Name = ct.Slug
		}
	}
	for i := range cfg.Site.Taxonomies {
		tx := &cfg.Site.Taxonomies[i]
		if tx.SingularSlug == "" {
			tx.SingularSlug = tx.Slug
		}
		if tx.Name == "" {
			tx.Name = tx.Slug
		}
	}

	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if !cfg.Logging.Console && !cfg.Logging.File.Enabled {
		cfg.Logging.Console = true
	}
}

// ImageEnabled reports a capability flag; unset means available.
func ImageEnabled(v *bool) bool { return v == nil || *v }

// ResolvePaths returns the absolute site root and the absolute path of each
// logical folder. configPath is the file the config was loaded from; the
// config folder defaults to its directory.
func (c *Config) ResolvePaths(configPath string) (string, map[string]string) {
	base := "."
	if configPath != "" {
		base = filepath.Dir(configPath)
	}
	base = absOr(base)

	root := strings.TrimSpace(c.Paths.Root)
	switch {
	case root == "":
		root = base
	case !filepath.IsAbs(root):
		root = filepath.Join(base, root)
	}
	root = filepath.Clean(root)

	at := func(p, def string) string {
		p = strings.TrimSpace(p)
		if p == "" {
			p = def
		}
		if p == "" {
			return ""
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(root, p)
	}

	folders := map[string]string{
		"files":    at(c.Paths.Files, defaultFolders["files"]),
		"cache":    at(c.Paths.Cache, defaultFolders["cache"]),
		"database": at(c.Paths.Database, defaultFolders["database"]),
		"thumbs":   at(c.Paths.Thumbs, defaultFolders["thumbs"]),
	}
	if p := strings.TrimSpace(c.Paths.Config); p != "" {
		folders["config"] = at(p, "")
	} else {
		folders["config"] = base
	}
	return root, folders
}

func absOr(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
