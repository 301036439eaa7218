package config

import (
	"reflect"
	"sort"
	"strings"

	"noticeboard/pkg/logx"
)

// SummarizeConfigChange returns a sorted list of changed sections and safe
// structured attrs for logging. Secrets (server.token) are never included;
// only whether one is set.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 20)

	// A rotated token counts as a change; only its presence is logged.
	nSrv := newCfg.Server
	if oldCfg.Server != nSrv {
		changed = append(changed, "server")
		attrs = append(attrs,
			logx.String("server.addr", nSrv.Addr),
			logx.String("server.backend_path", nSrv.BackendPath),
			logx.Bool("server.trust_proxy", nSrv.TrustProxy),
			logx.Bool("server.token_set", strings.TrimSpace(nSrv.Token) != ""),
			logx.String("server.canonical_host", nSrv.CanonicalHost),
		)
	}

	if oldCfg.Runtime != newCfg.Runtime {
		changed = append(changed, "runtime")
		attrs = append(attrs,
			logx.String("runtime.environment", newCfg.Runtime.Environment),
			logx.Bool("runtime.debug", newCfg.Runtime.Debug),
		)
	}

	if oldCfg.Database != newCfg.Database {
		changed = append(changed, "database")
		attrs = append(attrs, logx.String("database.driver", newCfg.Database.Driver))
	}

	if oldCfg.Paths != newCfg.Paths {
		changed = append(changed, "paths")
		attrs = append(attrs, logx.String("paths.root", newCfg.Paths.Root))
	}

	if !reflect.DeepEqual(oldCfg.Site, newCfg.Site) {
		changed = append(changed, "site")
		attrs = append(attrs,
			logx.Bool("site.maintenance_mode", newCfg.Site.MaintenanceMode),
			logx.Int("site.content_type_count", len(newCfg.Site.ContentTypes)),
			logx.Int("site.taxonomy_count", len(newCfg.Site.Taxonomies)),
		)
	}

	if !reflect.DeepEqual(oldCfg.Notices, newCfg.Notices) {
		changed = append(changed, "notices")
		attrs = append(attrs, logx.Int("notices.local_domain_count", len(newCfg.Notices.LocalDomains)))
	}

	if ImageEnabled(oldCfg.Image.EXIF) != ImageEnabled(newCfg.Image.EXIF) ||
		ImageEnabled(oldCfg.Image.FileInfo) != ImageEnabled(newCfg.Image.FileInfo) ||
		ImageEnabled(oldCfg.Image.GD) != ImageEnabled(newCfg.Image.GD) {
		changed = append(changed, "image")
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	oSt, nSt := derefStorage(oldCfg.Storage), derefStorage(newCfg.Storage)
	if oSt != nSt {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", nSt.Driver),
			logx.Bool("storage.path_set", nSt.Path != ""),
			logx.String("storage.busy_timeout", nSt.BusyTimeout),
		)
	}

	sort.Strings(changed)
	return changed, attrs
}

func derefStorage(st *StorageConfig) StorageConfig {
	if st == nil {
		return StorageConfig{}
	}
	return StorageConfig{
		Driver:      strings.ToLower(strings.TrimSpace(st.Driver)),
		Path:        strings.TrimSpace(st.Path),
		BusyTimeout: strings.TrimSpace(st.BusyTimeout),
	}
}

// LogConfig converts the logging section for logx.
func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File: logx.FileConfig{
			Enabled: c.Logging.File.Enabled,
			Path:    c.Logging.File.Path,
		},
	}
}
