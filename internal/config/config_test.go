package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalJSON = `{
  "runtime": {"environment": "prod"},
  "database": {"driver": "sqlite"},
  "site": {"content_types": [{"slug": "pages", "singular_slug": "page", "name": "Pages"}]}
}`

const minimalYAML = `
runtime:
  environment: prod
database:
  driver: sqlite
site:
  content_types:
    - slug: pages
      singular_slug: page
      name: Pages
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := ParseBytes("config.json", []byte(minimalJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("addr=%q", cfg.Server.Addr)
	}
	if cfg.Server.BackendPath != "/bolt" || cfg.Server.CanonicalScheme != "https" {
		t.Fatalf("server defaults not applied: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "info" || !cfg.Logging.Console {
		t.Fatalf("logging defaults not applied: %+v", cfg.Logging)
	}
	if !ImageEnabled(cfg.Image.GD) {
		t.Fatalf("unset image capability must default to enabled")
	}
}

func TestParseYAMLMatchesJSON(t *testing.T) {
	j, err := ParseBytes("config.json", []byte(minimalJSON))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	y, err := ParseBytes("config.yaml", []byte(minimalYAML))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if Hash(j) != Hash(y) {
		t.Fatalf("hash mismatch: json=%x yaml=%x", Hash(j), Hash(y))
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	body := strings.Replace(minimalJSON, `"driver": "sqlite"`, `"driver": "sqlite", "dsn": "x"`, 1)
	_, err := ParseBytes("config.json", []byte(body))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestParseRejectsMissingSection(t *testing.T) {
	_, err := ParseBytes("config.yaml", []byte("runtime:\n  environment: dev\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	_, err := ParseBytes("config.json", []byte(minimalJSON+`{}`))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg, err := ParseBytes("config.json", []byte(minimalJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Server.Addr = "0.0.0.0:8080"
	cfg.Server.ReadTimeout = "soon"
	cfg.Site.ContentTypes = append(cfg.Site.ContentTypes, ContentTypeConfig{Slug: "pages"})

	err = Validate(cfg)
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	for _, want := range []string{"server.addr", "server.read_timeout", "duplicate \"pages\""} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidateAcceptsTokenOnPublicAddr(t *testing.T) {
	cfg, err := ParseBytes("config.json", []byte(minimalJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Server.Addr = "0.0.0.0:8080"
	cfg.Server.Token = "s3cret"
	if err := Validate(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateStorage(t *testing.T) {
	cfg, err := ParseBytes("config.json", []byte(minimalJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg.Storage = &StorageConfig{Driver: "redis", Path: "x"}
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	cfg.Storage = &StorageConfig{Driver: "sqlite"}
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "storage.path") {
		t.Fatalf("expected storage.path error, got %v", err)
	}
	cfg.Storage = &StorageConfig{Driver: "none"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("none driver: %v", err)
	}
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config", "noticeboard.yaml")
	cfg := &Config{Paths: PathsConfig{Root: "..", Cache: "/var/cache/site"}}

	root, folders := cfg.ResolvePaths(cfgPath)
	if root != dir {
		t.Fatalf("root=%q want %q", root, dir)
	}
	if got := folders["config"]; got != filepath.Join(dir, "config") {
		t.Fatalf("config folder=%q", got)
	}
	if got := folders["cache"]; got != "/var/cache/site" {
		t.Fatalf("absolute folder must be kept, got %q", got)
	}
	if got := folders["files"]; got != filepath.Join(dir, "public", "files") {
		t.Fatalf("files folder=%q", got)
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	oldCfg, _ := ParseBytes("config.json", []byte(minimalJSON))
	newCfg, _ := ParseBytes("config.json", []byte(minimalJSON))

	changed, _ := SummarizeConfigChange(oldCfg, newCfg)
	if len(changed) != 0 {
		t.Fatalf("expected no change, got %v", changed)
	}

	newCfg.Server.Token = "rotated"
	newCfg.Site.MaintenanceMode = true
	newCfg.Storage = &StorageConfig{Driver: "file", Path: "x.json"}
	changed, attrs := SummarizeConfigChange(oldCfg, newCfg)
	if strings.Join(changed, ",") != "server,site,storage" {
		t.Fatalf("changed=%v", changed)
	}
	if len(attrs) == 0 {
		t.Fatalf("expected attrs")
	}
}

func TestManagerReloadSkipsUnchanged(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.json", minimalJSON)
	m := NewConfigManager(p)
	if _, err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	published, err := m.Reload(context.Background())
	if err != nil || published {
		t.Fatalf("reload of same content: published=%v err=%v", published, err)
	}

	writeFile(t, filepath.Dir(p), "config.json", strings.Replace(minimalJSON, `"prod"`, `"dev"`, 1))
	published, err = m.Reload(context.Background())
	if err != nil || !published {
		t.Fatalf("reload of new content: published=%v err=%v", published, err)
	}
	select {
	case cfg := <-ch:
		if cfg.Runtime.Environment != "dev" {
			t.Fatalf("environment=%q", cfg.Runtime.Environment)
		}
	default:
		t.Fatalf("subscriber did not receive config")
	}
}

func TestManagerValidatorRejects(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.json", minimalJSON)
	m := NewConfigManager(p)
	if _, err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	m.SetValidator(func(context.Context, *Config) error { return errors.New("nope") })

	writeFile(t, filepath.Dir(p), "config.json", strings.Replace(minimalJSON, `"prod"`, `"dev"`, 1))
	if _, err := m.Reload(context.Background()); err == nil {
		t.Fatalf("expected validator error")
	}
	if got := m.Get().Runtime.Environment; got != "prod" {
		t.Fatalf("rejected config was committed: %q", got)
	}
}

func TestManagerWatchPublishesChanges(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.json", minimalJSON)
	m := NewConfigManager(p)
	if _, err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	body := strings.Replace(minimalJSON, `"site": {`, `"site": {"maintenance_mode": true, `, 1)

	// One write, after the startup reload has settled. Repeated writes would
	// keep restarting the reload debounce.
	time.Sleep(2 * reloadDebounce)
	writeFile(t, filepath.Dir(p), "config.json", body)

	select {
	case cfg := <-ch:
		if !cfg.Site.MaintenanceMode {
			t.Fatalf("unexpected config published")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no config published after file change")
	}
}

func TestManagerWatchPicksUpEarlierWrite(t *testing.T) {
	p := writeFile(t, t.TempDir(), "config.json", minimalJSON)
	m := NewConfigManager(p)
	if _, err := m.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	// Written after Load but before any watcher exists.
	writeFile(t, filepath.Dir(p), "config.json",
		strings.Replace(minimalJSON, `"site": {`, `"site": {"maintenance_mode": true, `, 1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case cfg := <-ch:
		if !cfg.Site.MaintenanceMode {
			t.Fatalf("unexpected config published")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("startup reload did not publish the earlier write")
	}
}
